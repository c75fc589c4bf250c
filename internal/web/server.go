package web

import (
	"database/sql"
	"html/template"
	"net/http"
	texttemplate "text/template"

	"benchshare/internal/auth"
	"benchshare/internal/comment"
	"benchshare/internal/highlight"
	"benchshare/internal/hits"
	"benchshare/internal/logging"
	"benchshare/internal/page"
	"benchshare/internal/prep"
	"benchshare/internal/session"
	"benchshare/internal/testpage"
	"benchshare/internal/web/renderer"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// Server holds the dependencies for the web server.
type Server struct {
	db          *sql.DB
	logger      *zap.Logger
	templates   map[string]*template.Template
	feed        *texttemplate.Template
	highlighter *highlight.Chroma
	org         *renderer.Org
	sessions    *session.Manager
	authService *auth.Service
	pageRepo    *page.Repository
	hits        *hits.Tracker
	builder     *testpage.Builder
	comments    *comment.Workflow
	handler     http.Handler
}

// NewServer creates a new server with the given dependencies.
func NewServer(db *sql.DB, cookies sessions.Store, logger *zap.Logger) (*Server, error) {
	logger = logging.OrNop(logger)

	templates, err := renderer.Templates()
	if err != nil {
		return nil, err
	}
	feed, err := renderer.Feed()
	if err != nil {
		return nil, err
	}

	sessionRepo := session.NewRepository(db)
	pageRepo := page.NewRepository(db)
	highlighter := highlight.NewChroma()
	org := &renderer.Org{Highlighter: highlighter}
	tracker := hits.NewTracker(pageRepo, sessionRepo, logger)

	s := &Server{
		db:          db,
		logger:      logger,
		templates:   templates,
		feed:        feed,
		highlighter: highlighter,
		org:         org,
		sessions:    session.NewManager(cookies, sessionRepo),
		authService: auth.NewService(auth.NewRepository(db), sessionRepo),
		pageRepo:    pageRepo,
		hits:        tracker,
		builder: &testpage.Builder{
			Pages: pageRepo,
			Prep:  prep.NewAssembler(highlighter),
			Hits:  tracker,
			Info:  org,
		},
		comments: comment.NewWorkflow(comment.NewRepository(db), logger),
	}
	s.handler = s.routes()
	return s, nil
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Wait blocks until background view count updates have finished.
func (s *Server) Wait() {
	s.hits.Wait()
}
