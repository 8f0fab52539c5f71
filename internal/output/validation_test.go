package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/panbanda/pysentry/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationViewText(t *testing.T) {
	result := validator.Validate("x = 2", "eval('2+2')")

	var buf bytes.Buffer
	require.NoError(t, NewWriterFormatter(FormatText, &buf, false).Output(&ValidationView{Result: result}))

	out := buf.String()
	assert.Contains(t, out, "Validation (v5.1.0)")
	assert.Contains(t, out, "57")
	assert.Contains(t, out, "Needs Review")
	assert.Contains(t, out, "Errors:")
	assert.Contains(t, out, "Security violation: use of eval()")
	assert.Contains(t, out, "Warnings:")
}

func TestValidationViewJSON(t *testing.T) {
	result := validator.Validate("x = 1\ny = 2\nprint(x, y)\n", "x = 1\ny = 2\nprint(x, y)\n")

	var buf bytes.Buffer
	require.NoError(t, NewWriterFormatter(FormatJSON, &buf, false).Output(&ValidationView{Result: result}))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "PASS", decoded["status"])
	assert.Equal(t, float64(100), decoded["trust_score"])
	assert.Equal(t, "Production Ready", decoded["readiness"])
	metrics := decoded["metrics"].(map[string]any)
	assert.Equal(t, "5.1.0", metrics["validator_version"])
}

func TestValidationViewMarkdown(t *testing.T) {
	result := validator.Validate("", "while True:\n    pass")

	var buf bytes.Buffer
	require.NoError(t, (&ValidationView{Result: result}).RenderMarkdown(&buf))
	assert.Contains(t, buf.String(), "## Findings")
	assert.Contains(t, buf.String(), "| Logic | Infinite loop risk: while True without break |")
}

func TestFixViewText(t *testing.T) {
	view := &FixView{
		Path:       "a.py",
		Log:        []string{"Fixed Line 1: Applied MissingColon"},
		Written:    true,
		Validation: validator.Validate("if x\n    pass\n", "if x:\n    pass\n"),
	}

	var buf bytes.Buffer
	require.NoError(t, view.RenderText(&buf, false))
	out := buf.String()
	assert.Contains(t, out, "Fixes for a.py:")
	assert.Contains(t, out, "* Fixed Line 1: Applied MissingColon")
	assert.Contains(t, out, "Wrote a.py")
}
