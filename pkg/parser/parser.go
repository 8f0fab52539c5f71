package parser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/panbanda/pysentry/pkg/ast"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Parser wraps tree-sitter for parsing Python source.
// A Parser is not safe for concurrent use; create one per goroutine.
type Parser struct {
	parser *sitter.Parser
}

// Result is the outcome of parsing one source text. Exactly one of Tree and
// Err is set: Tree when the source parsed, Err when it did not.
type Result struct {
	Tree   *ast.Node
	Err    *SyntaxError
	Source []byte
	Path   string
}

// OK reports whether parsing produced a tree.
func (r *Result) OK() bool {
	return r != nil && r.Tree != nil
}

// New creates a new parser instance.
func New() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &Parser{parser: p}
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// ParseFile reads and parses a source file.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Result, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	result, err := p.Parse(ctx, source)
	if err != nil {
		return nil, err
	}
	result.Path = path
	return result, nil
}

// Parse parses source. A syntax failure is reported through Result.Err, not
// the returned error, which is reserved for the parser itself failing
// (for example a cancelled context).
func (p *Parser) Parse(ctx context.Context, source []byte) (*Result, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}
	root := tree.RootNode()
	if root == nil {
		return nil, ErrEmptyTree
	}

	result := &Result{Source: source}
	if synErr := diagnose(root, source); synErr != nil {
		result.Err = synErr
		return result, nil
	}
	result.Tree = lower(root, source)
	return result, nil
}

// ParseString parses source with a short-lived parser.
func ParseString(source string) *Result {
	p := New()
	defer p.Close()

	result, err := p.Parse(context.Background(), []byte(source))
	if err != nil {
		return &Result{
			Source: []byte(source),
			Err:    &SyntaxError{Kind: KindSyntaxError, Msg: err.Error(), Line: 1, Column: 1},
		}
	}
	return result
}

// IsSource reports whether path has one of the given extensions. With no
// extensions the default Python extensions are used.
func IsSource(path string, extensions ...string) bool {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// DefaultExtensions lists the file extensions analyzed by default.
var DefaultExtensions = []string{".py", ".pyw", ".pyi"}

// GetNodeText extracts the source text for a node.
// Returns empty string if node is nil or byte offsets are out of bounds.
func GetNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}
