package models

// Status is the validator verdict.
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
)

// RiskLevel buckets the relative size change between original and fixed text.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// Readiness is the human-facing verdict derived from the trust score.
type Readiness string

const (
	ReadinessProduction Readiness = "Production Ready"
	ReadinessSafe       Readiness = "Safe to Run"
	ReadinessReview     Readiness = "Needs Review"
	ReadinessUnsafe     Readiness = "Unsafe"
)

// Category groups validator messages.
type Category string

const (
	CategorySyntax          Category = "Syntax"
	CategorySecurity        Category = "Security"
	CategoryLogic           Category = "Logic"
	CategoryReliability     Category = "Reliability"
	CategoryStability       Category = "Stability"
	CategorySemantic        Category = "Semantic"
	CategoryMaintainability Category = "Maintainability"
	CategoryOther           Category = "Other"
)

// Categories lists every category in declaration order, overflow last.
var Categories = []Category{
	CategorySyntax,
	CategorySecurity,
	CategoryLogic,
	CategoryReliability,
	CategoryStability,
	CategorySemantic,
	CategoryMaintainability,
	CategoryOther,
}

// ValidationResult is the outcome of validating a fixed source against its
// original.
type ValidationResult struct {
	Version          string                `json:"version"`
	Status           Status                `json:"status"`
	TrustScore       int                   `json:"trust_score"`
	RiskLevel        RiskLevel             `json:"risk_level"`
	Readiness        Readiness             `json:"readiness"`
	Warnings         []string              `json:"warnings"`
	Errors           []string              `json:"errors"`
	RollbackRequired bool                  `json:"rollback_required"`
	Metrics          ValidationMetrics     `json:"metrics"`
	Categories       map[Category][]string `json:"categories"`
}

// ValidationMetrics are the measurements collected during validation.
type ValidationMetrics struct {
	ValidatorVersion    string   `json:"validator_version"`
	SyntaxOK            bool     `json:"syntax_ok"`
	ASTNodeCount        int      `json:"ast_node_count"`
	OriginalLines       int      `json:"original_lines"`
	FixedLines          int      `json:"fixed_lines"`
	RemovalRatio        *float64 `json:"removal_ratio,omitempty"`
	TrustScore          int      `json:"trust_score"`
	ErrorCount          int      `json:"error_count"`
	WarningCount        int      `json:"warning_count"`
	PhasesFailed        int      `json:"phases_failed"`
	OriginalFingerprint string   `json:"original_fingerprint"`
	FixedFingerprint    string   `json:"fixed_fingerprint"`
}
