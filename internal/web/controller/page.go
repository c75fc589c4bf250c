package controller

import (
	"bytes"
	"errors"
	"html/template"
	"net"
	"net/http"
	"strconv"
	"strings"
	texttemplate "text/template"

	"benchshare/internal/access"
	"benchshare/internal/apperr"
	"benchshare/internal/comment"
	"benchshare/internal/models"
	"benchshare/internal/page"
	"benchshare/internal/session"
	"benchshare/internal/testpage"
	"benchshare/internal/web/viewmodels"

	"github.com/sergi/go-diff/diffmatchpatch"
	"go.uber.org/zap"
)

// Page provides the test page handlers
type Page struct {
	Builder   *testpage.Builder
	PageRepo  *page.Repository
	Comments  *comment.Workflow
	Sessions  session.Store
	Templates map[string]*template.Template
	Feed      *texttemplate.Template
	Logger    *zap.Logger
}

// Register registers the page routes
func (p *Page) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", p.new)
	mux.HandleFunc("POST /{$}", p.create)
	mux.HandleFunc("GET /{slug}", p.view)
	mux.HandleFunc("GET /{slug}/{rev}", p.view)
	mux.HandleFunc("POST /{slug}", p.comment)
	mux.HandleFunc("POST /{slug}/{rev}", p.comment)
	mux.HandleFunc("GET /{slug}/{rev}/publish", p.publish)
	mux.HandleFunc("GET /{slug}/{rev}/diff", p.diff)
}

// revision reads the {rev} path value. A missing value means revision 1.
func revision(r *http.Request) (int, bool) {
	raw := r.PathValue("rev")
	if raw == "" {
		return 1, true
	}
	rev, err := strconv.Atoi(raw)
	if err != nil || rev < 1 {
		return 0, false
	}
	return rev, true
}

func currentSession(r *http.Request) session.State {
	st, _ := session.FromContext(r.Context())
	return st
}

// remoteAddress prefers the first X-Forwarded-For entry over the peer address.
func remoteAddress(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func formValues(r *http.Request) map[string]string {
	raw := make(map[string]string, len(r.PostForm))
	for key := range r.PostForm {
		raw[key] = r.PostForm.Get(key)
	}
	return raw
}

// fail answers NotFound with 404 and everything else with 500.
func (p *Page) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, apperr.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	p.Logger.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func (p *Page) render(w http.ResponseWriter, r *http.Request, name string, status int, data any) {
	var buf bytes.Buffer
	if err := p.Templates[name].ExecuteTemplate(&buf, "layout.html", data); err != nil {
		p.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (p *Page) view(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if feedSlug, ok := strings.CutSuffix(slug, ".atom"); ok && r.PathValue("rev") == "" {
		p.feed(w, r, feedSlug)
		return
	}

	rev, ok := revision(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	model, err := p.Builder.Build(r.Context(), slug, rev, currentSession(r))
	if err != nil {
		p.fail(w, r, err)
		return
	}
	p.render(w, r, "view.html", http.StatusOK, model)
}

func (p *Page) comment(w http.ResponseWriter, r *http.Request) {
	st := currentSession(r)
	if !st.Authenticated() {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	rev, ok := revision(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	model, err := p.Builder.Build(r.Context(), r.PathValue("slug"), rev, st)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	out := p.Comments.Submit(r.Context(), model, remoteAddress(r), formValues(r))
	p.render(w, r, "view.html", out.Status(), out.Model)
}

// publish answers exactly like a missing page when the viewer may not publish.
func (p *Page) publish(w http.ResponseWriter, r *http.Request) {
	rev, ok := revision(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	rec, err := p.PageRepo.GetBySlug(r.Context(), r.PathValue("slug"), rev)
	if err != nil {
		p.fail(w, r, apperr.Upstream("get page", err))
		return
	}

	if !access.Evaluate(rec.Page, currentSession(r)).CanPublish() {
		http.NotFound(w, r)
		return
	}

	if err := p.PageRepo.Publish(r.Context(), rec.Page.ID); err != nil {
		p.fail(w, r, apperr.Upstream("publish page", err))
		return
	}

	p.Logger.Info("page published", zap.String("slug", rec.Page.Slug), zap.Int("revision", rec.Page.Revision))
	http.Redirect(w, r, rec.Page.URL(), http.StatusFound)
}

func (p *Page) feed(w http.ResponseWriter, r *http.Request, slug string) {
	model, err := p.Builder.Feed(r.Context(), slug)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := p.Feed.Execute(&buf, model); err != nil {
		p.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/atom+xml;charset=UTF-8")
	w.Header().Set("Last-Modified", model.LastModified.UTC().Format(http.TimeFormat))
	w.Write(buf.Bytes())
}

func prepSource(pg models.Page) string {
	parts := []string{pg.InitHTML}
	parts = append(parts, pg.Setup...)
	parts = append(parts, pg.Teardown...)
	return strings.Join(parts, "\n")
}

func (p *Page) diff(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	to, ok := revision(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	from := to - 1
	if raw := r.URL.Query().Get("from"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "Invalid 'from' revision", http.StatusBadRequest)
			return
		}
		from = n
	}
	if from < 1 || from == to {
		http.NotFound(w, r)
		return
	}

	st := currentSession(r)
	toRec, err := p.PageRepo.GetBySlug(r.Context(), slug, to)
	if err != nil {
		p.fail(w, r, apperr.Upstream("get page", err))
		return
	}
	fromRec, err := p.PageRepo.GetBySlug(r.Context(), slug, from)
	if err != nil {
		p.fail(w, r, apperr.Upstream("get page", err))
		return
	}
	if !access.Evaluate(toRec.Page, st).CanView(toRec.Page) || !access.Evaluate(fromRec.Page, st).CanView(fromRec.Page) {
		http.NotFound(w, r)
		return
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(prepSource(fromRec.Page), prepSource(toRec.Page), true)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var buff bytes.Buffer
	for _, diff := range diffs {
		text := template.HTMLEscapeString(diff.Text)
		switch diff.Type {
		case diffmatchpatch.DiffInsert:
			buff.WriteString("<ins>" + text + "</ins>")
		case diffmatchpatch.DiffDelete:
			buff.WriteString("<del>" + text + "</del>")
		case diffmatchpatch.DiffEqual:
			buff.WriteString("<span>" + text + "</span>")
		}
	}

	p.render(w, r, "diff.html", http.StatusOK, viewmodels.Diff{
		Page:       toRec.Page,
		From:       fromRec.Revision,
		To:         toRec.Revision,
		Content:    template.HTML(buff.String()),
		Authorized: st.Authenticated(),
	})
}

func (p *Page) new(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, "create.html", http.StatusOK, viewmodels.Form{
		Authorized: currentSession(r).Authenticated(),
	})
}

func (p *Page) create(w http.ResponseWriter, r *http.Request) {
	st := currentSession(r)
	if !st.Authenticated() {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}
	raw := formValues(r)

	in := page.InputFromForm(raw)
	if err := in.Validate(); err != nil {
		var verr *apperr.ValidationError
		if !errors.As(err, &verr) {
			p.fail(w, r, err)
			return
		}
		p.render(w, r, "create.html", http.StatusOK, viewmodels.Form{Values: raw, Errors: verr.Fields, Authorized: true})
		return
	}

	pg := in.Page(st.UserID)
	if err := p.PageRepo.Create(r.Context(), &pg); err != nil {
		p.fail(w, r, apperr.Upstream("create page", err))
		return
	}
	if err := session.MarkOwn(r.Context(), p.Sessions, st.ID, pg.ID); err != nil {
		p.fail(w, r, apperr.Upstream("mark own", err))
		return
	}

	http.Redirect(w, r, pg.URL(), http.StatusSeeOther)
}
