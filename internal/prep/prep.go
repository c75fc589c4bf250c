// Package prep highlights the preparation code of a test page.
//
// Initialization markup may embed <script> regions. Highlighting the whole
// document as HTML would tokenise those bodies as markup, so each body is
// highlighted on its own as script, a placeholder takes its place while the
// surrounding markup is highlighted, and the bodies are then put back.
package prep

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"benchshare/internal/highlight"
)

// placeholder marks where a highlighted script body goes back in. NUL is not
// valid HTML text and is removed from input before assembly.
const placeholder = "\x00"

// errorPlaceholder is the placeholder as chroma emits it. No lexer accepts NUL,
// so it comes back as an error token and the wrapper is dropped on the way in.
const errorPlaceholder = `<span class="err">` + placeholder + `</span>`

// ErrPlaceholderMismatch means the highlighted markup did not carry exactly
// one placeholder per script region.
var ErrPlaceholderMismatch = errors.New("prep: placeholder count does not match script regions")

var scriptPattern = regexp.MustCompile(`(?is)(<script[^>]*>)(.*?)(</script>)`)

// Result is the derived, per-request view of a page's preparation code.
type Result struct {
	HighlightedMarkup  string
	HasPrep            bool
	HasSetupOrTeardown bool
	// StrippedMarkup is nil when the page has no prep.
	StrippedMarkup *string
}

// Assembler builds Results with a Highlighter.
type Assembler struct {
	Highlighter highlight.Highlighter
}

// NewAssembler creates an Assembler.
func NewAssembler(h highlight.Highlighter) *Assembler {
	return &Assembler{Highlighter: h}
}

// Assemble computes the Result for the given markup and setup/teardown fragments.
// Any highlighter error aborts the whole computation.
func (a *Assembler) Assemble(initHTML string, setup, teardown []string) (Result, error) {
	var res Result
	res.HasSetupOrTeardown = anyNonEmpty(setup) || anyNonEmpty(teardown)
	res.HasPrep = initHTML != "" || res.HasSetupOrTeardown
	if !res.HasPrep {
		return res, nil
	}

	markup := strings.ReplaceAll(initHTML, placeholder, "")
	stripped := scriptPattern.ReplaceAllString(markup, "$1$3")
	res.StrippedMarkup = &stripped

	highlighted, err := a.recombine(markup)
	if err != nil {
		return Result{}, err
	}
	res.HighlightedMarkup = highlighted
	return res, nil
}

func (a *Assembler) recombine(markup string) (string, error) {
	// Bodies are inserted at the front and taken from the back, which hands
	// them out in document order.
	var pending []string
	var working strings.Builder
	last := 0
	for _, m := range scriptPattern.FindAllStringSubmatchIndex(markup, -1) {
		open, body, closing := markup[m[2]:m[3]], markup[m[4]:m[5]], markup[m[6]:m[7]]

		highlightedBody, err := a.Highlighter.Highlight(highlight.Script, body)
		if err != nil {
			return "", fmt.Errorf("highlight script region: %w", err)
		}
		highlightedBody = trimNBSP(highlightedBody)
		pending = append([]string{highlightedBody}, pending...)

		working.WriteString(markup[last:m[0]])
		working.WriteString(open)
		working.WriteString(placeholder)
		working.WriteString(closing)
		last = m[1]
	}
	working.WriteString(markup[last:])

	highlighted, err := a.Highlighter.Highlight(highlight.Markup, working.String())
	if err != nil {
		return "", fmt.Errorf("highlight markup: %w", err)
	}
	highlighted = strings.ReplaceAll(highlighted, errorPlaceholder, placeholder)

	if n := strings.Count(highlighted, placeholder); n != len(pending) {
		return "", fmt.Errorf("%w: %d placeholders, %d regions", ErrPlaceholderMismatch, n, len(pending))
	}

	var out strings.Builder
	for {
		i := strings.Index(highlighted, placeholder)
		if i < 0 {
			break
		}
		out.WriteString(highlighted[:i])
		out.WriteString(pending[len(pending)-1])
		pending = pending[:len(pending)-1]
		highlighted = highlighted[i+len(placeholder):]
	}
	out.WriteString(highlighted)
	return out.String(), nil
}

func trimNBSP(s string) string {
	if t, ok := strings.CutSuffix(s, "&nbsp;"); ok {
		return t
	}
	if t, ok := strings.CutSuffix(s, "\u00a0"); ok {
		return t
	}
	return s
}

func anyNonEmpty(fragments []string) bool {
	for _, f := range fragments {
		if f != "" {
			return true
		}
	}
	return false
}
