package controller

import (
	"io"
	"net/http"

	"benchshare/internal/highlight"
	"benchshare/internal/web/renderer"

	"go.uber.org/zap"
)

// Misc provides miscellaneous handlers
type Misc struct {
	Org         *renderer.Org
	Highlighter *highlight.Chroma
	Logger      *zap.Logger
}

// Register registers the misc routes
func (m *Misc) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /_preview", m.preview)
	mux.HandleFunc("GET /static/chroma.css", m.css)
}

// preview renders a page description the way the test page will show it.
func (m *Misc) preview(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		http.Error(w, "Error reading request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	html, err := m.Org.Render(string(body))
	if err != nil {
		m.Logger.Warn("preview failed", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

func (m *Misc) css(w http.ResponseWriter, r *http.Request) {
	css, err := m.Highlighter.CSS()
	if err != nil {
		m.Logger.Error("chroma css failed", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Write([]byte(css))
}
