// Package server wires the application together: database, services,
// handlers, middleware and routes. It is the composition root — every
// dependency is constructed here and injected downward, so the rest of the
// codebase never reaches for globals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/portfolio/internal/auth"
	"github.com/sakif/portfolio/internal/config"
	"github.com/sakif/portfolio/internal/handler"
	"github.com/sakif/portfolio/internal/middleware"
	sqliteRepo "github.com/sakif/portfolio/internal/repository/sqlite"
	"github.com/sakif/portfolio/internal/service"
)

// Server owns the router, the configuration and the database handle. The
// database is closed during graceful shutdown in Start.
type Server struct {
	router *chi.Mux
	cfg    config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New builds a fully wired Server from the given configuration.
//
// The dependency chain is assembled top to bottom:
//
//	sqlite.DB → repositories → services → handlers → routes
//
// Services receive repository interfaces, handlers receive services, and
// nothing below the handler layer ever sees HTTP.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and the full route tree.
//
// Read endpoints (comment listing, replies, the playlist) are public.
// Every mutation sits behind RequireAuth; ownership on top of that is the
// service layer's job.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// Static assets, including the music files the playlist points at.
	s.router.Handle("/static/*", http.StripPrefix("/static/",
		http.FileServer(http.Dir(s.cfg.StaticDir))))
	s.router.Handle("/music/*", http.StripPrefix("/music/",
		http.FileServer(http.Dir(s.cfg.MusicDir))))

	tokens, err := auth.NewTokenService(s.cfg.JWTSecret, s.cfg.SessionTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	var google *auth.GoogleProvider
	if s.cfg.GoogleEnabled() {
		google = auth.NewGoogleProvider(
			s.cfg.GoogleClientID,
			s.cfg.GoogleClientSecret,
			s.cfg.GoogleCallbackURL,
		)
	}

	authService := service.NewAuthService(s.db.Users(), tokens, passwords, s.logger)
	threadService := service.NewThreadService(s.db.Users(), s.db.Comments(), s.db.Replies(), s.logger)

	authHandler := handler.NewAuthHandler(google, authService, s.cfg.SessionTTL, s.logger)
	threadHandler := handler.NewThreadHandler(threadService, s.logger)
	musicHandler := handler.NewMusicHandler(s.cfg.MusicDir, s.logger)

	requireAuth := auth.RequireAuth(tokens)
	optionalAuth := auth.OptionalAuth(tokens)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)
		r.With(requireAuth).Get("/me", authHandler.HandleMe)

		r.Get("/music", musicHandler.HandleList)

		r.Route("/comments", func(r chi.Router) {
			r.With(optionalAuth).Get("/", threadHandler.HandleListComments)
			r.With(requireAuth).Post("/", threadHandler.HandleCreateComment)

			r.Route("/{id}", func(r chi.Router) {
				r.With(requireAuth).Patch("/", threadHandler.HandleUpdateComment)
				r.With(requireAuth).Delete("/", threadHandler.HandleDeleteComment)

				r.With(optionalAuth).Get("/replies", threadHandler.HandleListReplies)
				r.With(requireAuth).Post("/replies", threadHandler.HandleCreateReply)
				r.With(requireAuth).Patch("/replies/{replyId}", threadHandler.HandleUpdateReply)
				r.With(requireAuth).Delete("/replies/{replyId}", threadHandler.HandleDeleteReply)
			})
		})
	})

	// Browser-facing OAuth routes live outside /api — they respond with
	// redirects, not JSON. Only registered when a client is configured.
	if google != nil {
		s.router.Get("/auth/google/login", authHandler.HandleGoogleLogin)
		s.router.Get("/auth/google/callback", authHandler.HandleGoogleCallback)
	} else {
		s.logger.Warn("Google OAuth not configured — /auth/google routes disabled")
	}

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30
// seconds, close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("database", s.cfg.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

// Router exposes the configured router for handler-level tests.
func (s *Server) Router() http.Handler {
	return s.router
}
