package controller

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"benchshare/internal/comment"
	"benchshare/internal/database"
	"benchshare/internal/highlight"
	"benchshare/internal/models"
	"benchshare/internal/page"
	"benchshare/internal/prep"
	"benchshare/internal/session"
	"benchshare/internal/testpage"
	"benchshare/internal/web/renderer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type noopRecorder struct{}

func (noopRecorder) RecordView(context.Context, string, int64) {}

// recordingStore keeps the address of the last submission and answers with err.
type recordingStore struct {
	remoteAddr string
	err        error
}

func (s *recordingStore) Create(_ context.Context, pageID int64, remoteAddr string, in comment.Input) (models.Comment, error) {
	s.remoteAddr = remoteAddr
	if s.err != nil {
		return models.Comment{}, s.err
	}
	return models.Comment{ID: 1, PageID: pageID, Author: in.Author, Content: in.Content}, nil
}

func newPageHandler(t *testing.T, store comment.Store, st session.State) (http.Handler, *page.Repository) {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	templates, err := renderer.Templates()
	require.NoError(t, err)

	repo := page.NewRepository(db)
	h := highlight.NewChroma()
	p := &Page{
		Builder: &testpage.Builder{
			Pages: repo,
			Prep:  prep.NewAssembler(h),
			Hits:  noopRecorder{},
			Info:  &renderer.Org{Highlighter: h},
		},
		PageRepo:  repo,
		Comments:  comment.NewWorkflow(store, zap.NewNop()),
		Sessions:  session.NewRepository(db),
		Templates: templates,
		Logger:    zap.NewNop(),
	}
	mux := http.NewServeMux()
	p.Register(mux)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), st)))
	}), repo
}

func postComment(h http.Handler, path string, form url.Values, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "192.0.2.10:53211"
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

var loggedIn = session.State{UserID: 1, Own: map[int64]bool{}, Hits: map[int64]bool{}}

func TestRemoteAddress(t *testing.T) {
	tests := []struct {
		name      string
		forwarded string
		peer      string
		want      string
	}{
		{"peer only", "", "192.0.2.10:53211", "192.0.2.10"},
		{"first forwarded entry", "203.0.113.5, 10.0.0.1", "192.0.2.10:53211", "203.0.113.5"},
		{"single forwarded entry", " 203.0.113.7 ", "192.0.2.10:53211", "203.0.113.7"},
		{"blank forwarded entry", " , 10.0.0.1", "192.0.2.10:53211", "192.0.2.10"},
		{"peer without port", "", "192.0.2.10", "192.0.2.10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/loops", nil)
			req.RemoteAddr = tt.peer
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, remoteAddress(req))
		})
	}
}

func TestComment_StoresForwardedAddress(t *testing.T) {
	store := &recordingStore{}
	h, repo := newPageHandler(t, store, loggedIn)
	require.NoError(t, repo.Create(context.Background(), &models.Page{Slug: "loops", Title: "Loops", Published: true}))

	rec := postComment(h, "/loops", url.Values{"author": {"Ann"}, "content": {"Nice"}},
		http.Header{"X-Forwarded-For": {"203.0.113.5, 10.0.0.1"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "203.0.113.5", store.remoteAddr)
	assert.Contains(t, rec.Body.String(), "Nice")
}

func TestComment_StoreFailureAnswers400(t *testing.T) {
	store := &recordingStore{err: errors.New("disk full")}
	h, repo := newPageHandler(t, store, loggedIn)
	require.NoError(t, repo.Create(context.Background(), &models.Page{Slug: "loops", Title: "Loops", Published: true}))

	rec := postComment(h, "/loops/1", url.Values{"author": {"Ann"}, "content": {"Kept text"}}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "192.0.2.10", store.remoteAddr)
	body := rec.Body.String()
	assert.Contains(t, body, "Kept text")
	assert.Contains(t, body, `value="Ann"`)
	assert.NotContains(t, body, "disk full")
}

func TestComment_MissingPage(t *testing.T) {
	store := &recordingStore{}
	h, _ := newPageHandler(t, store, loggedIn)

	rec := postComment(h, "/missing", url.Values{"author": {"Ann"}, "content": {"hi"}}, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, store.remoteAddr)
}

func TestComment_Unauthenticated(t *testing.T) {
	store := &recordingStore{}
	h, _ := newPageHandler(t, store, session.State{ID: "sid"})

	rec := postComment(h, "/missing", url.Values{"author": {"Ann"}, "content": {"hi"}}, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, store.remoteAddr)
}
