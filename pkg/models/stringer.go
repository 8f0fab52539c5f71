package models

// String methods for the custom string types.
// These are required for toon serialization, which uses fmt.Stringer.

// IssueType
func (t IssueType) String() string { return string(t) }

// Severity
func (s Severity) String() string { return string(s) }

// Status
func (s Status) String() string { return string(s) }

// RiskLevel
func (r RiskLevel) String() string { return string(r) }

// Readiness
func (r Readiness) String() string { return string(r) }

// Category
func (c Category) String() string { return string(c) }
