package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidMode(t *testing.T) {
	assert.True(t, ValidMode("auto"))
	assert.True(t, ValidMode("text"))
	assert.True(t, ValidMode("markdown"))
	assert.True(t, ValidMode("json"))
	assert.True(t, ValidMode(""))
	assert.False(t, ValidMode("xml"))
}

func TestRenderer_EffectiveMode(t *testing.T) {
	var buf bytes.Buffer

	// Explicit modes pass through untouched.
	assert.Equal(t, ModeJSON, NewRenderer(&buf, &buf, ModeJSON).EffectiveMode())
	assert.Equal(t, ModeText, NewRenderer(&buf, &buf, ModeText).EffectiveMode())

	// Auto on a non-terminal writer falls back to markdown.
	assert.Equal(t, ModeMarkdown, NewRenderer(&buf, &buf, ModeAuto).EffectiveMode())
	assert.Equal(t, ModeMarkdown, NewRenderer(&buf, &buf, "").EffectiveMode())
}

func TestRenderer_Header(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, &buf, ModeMarkdown)
	r.Header(1, "Variables")
	assert.Contains(t, buf.String(), "# Variables")

	buf.Reset()
	r = NewRenderer(&buf, &buf, ModeText)
	r.Header(1, "Variables")
	assert.Contains(t, buf.String(), "Variables\n=========")
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "## Oscillators", FormatHeader(2, "Oscillators"))
	assert.Equal(t, "- **Frequency**: 220 Hz", FormatKeyValue("Frequency", "220 Hz"))
}
