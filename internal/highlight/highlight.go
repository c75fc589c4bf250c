// Package highlight turns source text into syntax-highlighted HTML.
package highlight

import (
	"bytes"
	"fmt"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Language tags understood by every Highlighter.
const (
	Markup = "html"
	Script = "javascript"
)

// Highlighter returns highlighted markup for source written in lang.
type Highlighter interface {
	Highlight(lang, source string) (string, error)
}

// Chroma highlights with chroma lexers and emits CSS classes.
type Chroma struct {
	Style string
}

// NewChroma creates a chroma highlighter using the "friendly" style.
func NewChroma() *Chroma {
	return &Chroma{Style: "friendly"}
}

// Highlight implements Highlighter. Output is not wrapped in <pre>.
func (c *Chroma) Highlight(lang, source string) (string, error) {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return "", fmt.Errorf("tokenise %s: %w", lang, err)
	}

	var w bytes.Buffer
	formatter := html.New(html.WithClasses(true), html.PreventSurroundingPre(true))
	if err := formatter.Format(&w, styles.Get(c.Style), iterator); err != nil {
		return "", fmt.Errorf("format %s: %w", lang, err)
	}
	return w.String(), nil
}

// CSS writes the stylesheet matching the classes Highlight emits.
func (c *Chroma) CSS() (string, error) {
	var w bytes.Buffer
	formatter := html.New(html.WithClasses(true))
	if err := formatter.WriteCSS(&w, styles.Get(c.Style)); err != nil {
		return "", err
	}
	return w.String(), nil
}
