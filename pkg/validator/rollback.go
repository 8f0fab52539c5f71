package validator

import (
	"sync"

	"github.com/panbanda/pysentry/pkg/models"
	"go.uber.org/zap"
)

// RollbackRecord is one recorded rollback recommendation.
type RollbackRecord struct {
	Fingerprint string `json:"fingerprint"`
	Reason      string `json:"reason"`
}

// RollbackLedger remembers which fixed sources were recommended for
// rollback. Decisions are keyed by the fixed source fingerprint, so asking
// again about the same text returns the recorded decision without adding
// to the history. A ledger is safe for concurrent use.
type RollbackLedger struct {
	mu        sync.Mutex
	logger    *zap.Logger
	decisions map[string]bool
	history   []RollbackRecord
}

// NewRollbackLedger creates an empty ledger.
func NewRollbackLedger(logger *zap.Logger) *RollbackLedger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RollbackLedger{
		logger:    logger,
		decisions: make(map[string]bool),
	}
}

// Recommend records a rollback recommendation for fingerprint and returns
// true.
func (l *RollbackLedger) Recommend(fingerprint, reason string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if decision, ok := l.decisions[fingerprint]; ok {
		l.logger.Debug("rollback decision reused", zap.String("fingerprint", fingerprint))
		return decision
	}

	l.logger.Warn("rollback recommended", zap.String("fingerprint", fingerprint), zap.String("reason", reason))
	l.decisions[fingerprint] = true
	l.history = append(l.history, RollbackRecord{Fingerprint: fingerprint, Reason: reason})
	return true
}

// Review records the result when it requires rollback and reports whether
// it does. The reason is the first error, or the readiness verdict when
// there are none.
func (l *RollbackLedger) Review(result *models.ValidationResult) bool {
	if !result.RollbackRequired {
		return false
	}
	reason := string(result.Readiness)
	if len(result.Errors) > 0 {
		reason = result.Errors[0]
	}
	return l.Recommend(result.Metrics.FixedFingerprint, reason)
}

// History returns the recorded recommendations in the order they were made.
func (l *RollbackLedger) History() []RollbackRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]RollbackRecord(nil), l.history...)
}
