package validator

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollbackLedgerRecommend(t *testing.T) {
	l := NewRollbackLedger(nil)

	assert.True(t, l.Recommend("abc", "trust too low"))
	assert.True(t, l.Recommend("abc", "asked again"))
	assert.True(t, l.Recommend("def", "syntax"))

	assert.Equal(t, []RollbackRecord{
		{Fingerprint: "abc", Reason: "trust too low"},
		{Fingerprint: "def", Reason: "syntax"},
	}, l.History())
}

func TestRollbackLedgerReview(t *testing.T) {
	l := NewRollbackLedger(nil)

	pass := Validate(program, program)
	assert.False(t, l.Review(pass))
	assert.Empty(t, l.History())

	fail := Validate(program, "def f(:\n")
	require.True(t, fail.RollbackRequired)
	assert.True(t, l.Review(fail))

	history := l.History()
	require.Len(t, history, 1)
	assert.Equal(t, fail.Metrics.FixedFingerprint, history[0].Fingerprint)
	assert.Equal(t, fail.Errors[0], history[0].Reason)
}

func TestRollbackLedgersAreIndependent(t *testing.T) {
	a := NewRollbackLedger(nil)
	b := NewRollbackLedger(nil)
	a.Recommend("abc", "x")
	assert.Empty(t, b.History())
}

func TestRollbackLedgerConcurrent(t *testing.T) {
	l := NewRollbackLedger(nil)
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Recommend("same", "race")
		}()
	}
	wg.Wait()
	assert.Len(t, l.History(), 1)
}

func TestRollbackHistoryIsCopy(t *testing.T) {
	l := NewRollbackLedger(nil)
	l.Recommend("abc", "x")
	h := l.History()
	h[0].Reason = "changed"
	assert.Equal(t, "x", l.History()[0].Reason)
}
