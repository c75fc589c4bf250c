package web

import (
	"net/http"

	"benchshare/internal/web/controller"
	"benchshare/internal/web/middleware"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", StaticFileServer()))
	mux.Handle("GET /metrics", promhttp.Handler())

	miscController := controller.Misc{Org: s.org, Highlighter: s.highlighter, Logger: s.logger}
	miscController.Register(mux)

	sessionMux := http.NewServeMux()
	authController := controller.Auth{
		AuthService: s.authService,
		Sessions:    s.sessions,
		Templates:   s.templates,
		Logger:      s.logger,
	}
	authController.Register(sessionMux)

	pageController := controller.Page{
		Builder:   s.builder,
		PageRepo:  s.pageRepo,
		Comments:  s.comments,
		Sessions:  s.sessions.Values,
		Templates: s.templates,
		Feed:      s.feed,
		Logger:    s.logger,
	}
	pageController.Register(sessionMux)

	mux.Handle("/", middleware.WithSession(s.sessions, s.logger)(sessionMux))

	return middleware.Logging(s.logger)(mux)
}
