package renderer

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"benchshare/internal/highlight"

	"github.com/niklasfasching/go-org/org"
)

//go:embed templates
var templateFiles embed.FS

// NewHTMLWriterWithChroma returns an org writer whose code blocks go through h.
// A block that fails to highlight is shown as plain source.
func NewHTMLWriterWithChroma(h highlight.Highlighter) *org.HTMLWriter {
	w := org.NewHTMLWriter()
	w.HighlightCodeBlock = func(source, lang string, inline bool, params map[string]string) string {
		out, err := h.Highlight(lang, source)
		if err != nil {
			return "<pre>" + template.HTMLEscapeString(source) + "</pre>"
		}
		if inline {
			return `<code class="chroma">` + out + "</code>"
		}
		return `<pre class="chroma">` + out + "</pre>"
	}
	return w
}

// Org renders org-mode text to HTML.
type Org struct {
	Highlighter highlight.Highlighter
}

// Render converts content to HTML. Empty content renders to nothing.
func (o *Org) Render(content string) (template.HTML, error) {
	if strings.TrimSpace(content) == "" {
		return "", nil
	}
	out, err := org.New().Parse(strings.NewReader(content), "").Write(NewHTMLWriterWithChroma(o.Highlighter))
	if err != nil {
		return "", fmt.Errorf("render org content: %w", err)
	}
	return template.HTML(out), nil
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string { return t.UTC().Format("2 January 2006") },
}

// Templates parses the page template sets, one per page, each with the layout.
func Templates() (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template)
	for _, name := range []string{"view.html", "diff.html", "create.html", "login.html", "register.html"} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFiles, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		templates[name] = t
	}
	return templates, nil
}

// Feed parses the Atom feed template.
func Feed() (*texttemplate.Template, error) {
	return texttemplate.New("feed.atom").Funcs(texttemplate.FuncMap{
		"xml":     template.HTMLEscapeString,
		"rfc3339": func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
	}).ParseFS(templateFiles, "templates/feed.atom")
}
