package highlight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChroma_HighlightScript(t *testing.T) {
	out, err := NewChroma().Highlight(Script, "var answer = 42;")
	require.NoError(t, err)

	assert.Contains(t, out, "answer")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, `class="`)
	assert.False(t, strings.HasPrefix(out, "<pre"))
}

func TestChroma_HighlightMarkupEscapes(t *testing.T) {
	out, err := NewChroma().Highlight(Markup, "<p>x</p>")
	require.NoError(t, err)

	assert.Contains(t, out, "&lt;")
	assert.NotContains(t, out, "<p>")
}

func TestChroma_UnknownLanguageFallsBack(t *testing.T) {
	out, err := NewChroma().Highlight("no-such-language", "plain text")
	require.NoError(t, err)

	assert.Contains(t, out, "plain text")
}

func TestChroma_CSS(t *testing.T) {
	css, err := NewChroma().CSS()
	require.NoError(t, err)

	assert.Contains(t, css, ".chroma")
}
