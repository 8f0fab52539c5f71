package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/pysentry/pkg/analyzer"
	"github.com/panbanda/pysentry/pkg/config"
	"github.com/panbanda/pysentry/pkg/fixer"
	"github.com/panbanda/pysentry/pkg/validator"
	"go.uber.org/zap"
)

// Server wraps the MCP server and registers the pysentry tools.
type Server struct {
	server *mcp.Server
	config *config.Config
	logger *zap.Logger
	engine *analyzer.Engine
	rules  fixer.Rules
	ledger *validator.RollbackLedger
}

// Option configures a Server.
type Option func(*Server)

// WithConfig sets the configuration used by every tool.
func WithConfig(cfg *config.Config) Option {
	return func(s *Server) {
		if cfg != nil {
			s.config = cfg
		}
	}
}

// WithLogger sets the logger. Logging must not go to stdout, which carries
// the protocol.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRules sets the fixer rule table.
func WithRules(r fixer.Rules) Option {
	return func(s *Server) {
		if r != nil {
			s.rules = r
		}
	}
}

// NewServer creates a new MCP server with all tools and prompts registered.
func NewServer(version string, opts ...Option) *Server {
	if version == "" {
		version = "dev"
	}
	s := &Server{
		config: config.DefaultConfig(),
		logger: zap.NewNop(),
		rules:  fixer.DefaultRules(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = analyzer.New(s.config, analyzer.WithLogger(s.logger))
	s.ledger = validator.NewRollbackLedger(s.logger)

	s.server = mcp.NewServer(
		&mcp.Implementation{
			Name:    "pysentry",
			Version: version,
		},
		nil,
	)
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_source",
		Description: describeAnalyzeSource(),
	}, s.handleAnalyzeSource)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_paths",
		Description: describeAnalyzePaths(),
	}, s.handleAnalyzePaths)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "validate_fix",
		Description: describeValidateFix(),
	}, s.handleValidateFix)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "fix_source",
		Description: describeFixSource(),
	}, s.handleFixSource)
}
