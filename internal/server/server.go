// Package server is the composition root: it opens the database, builds the
// services and handlers, and declares the route table. Routes are grouped
// into an ungated public set and a protected set behind the bearer-token
// middleware, so a route's exposure is decided where it is declared, never
// inside its handler.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tuanvq/soundrise/internal/apperror"
	"github.com/tuanvq/soundrise/internal/auth"
	"github.com/tuanvq/soundrise/internal/config"
	"github.com/tuanvq/soundrise/internal/handler"
	"github.com/tuanvq/soundrise/internal/middleware"
	sqliteRepo "github.com/tuanvq/soundrise/internal/repository/sqlite"
	"github.com/tuanvq/soundrise/internal/service"
)

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown so the WAL is flushed before exit.
type Server struct {
	router   *chi.Mux
	config   config.Config
	logger   *slog.Logger
	db       *sqliteRepo.DB
	sessions *service.SessionService
}

// New assembles the full dependency chain: database, token and password
// services, domain services, handlers, routes.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.JWTIssuer, s.config.AccessTokenTTL)
	if err != nil {
		return err
	}
	passwords := auth.NewPasswordService()

	s.sessions = service.NewSessionService(s.db.Users(), tokens, passwords, s.logger)
	users := service.NewUserService(s.db.Users(), passwords, s.logger)
	tracks := service.NewTrackService(s.db.Tracks(), s.config.UploadDir, s.logger)
	playlists := service.NewPlaylistService(s.db.Playlists(), s.db.Tracks(), s.logger)
	comments := service.NewCommentService(s.db.Comments(), s.db.Tracks(), s.logger)
	likes := service.NewLikeService(s.db.Likes(), s.db.Tracks(), s.logger)
	uploads := service.NewUploadService(s.db.Files(), s.config.UploadDir, s.logger)

	authHandler := handler.NewAuthHandler(s.sessions, s.config.Production, s.logger)
	userHandler := handler.NewUserHandler(users, s.logger)
	trackHandler := handler.NewTrackHandler(tracks, comments, s.logger)
	playlistHandler := handler.NewPlaylistHandler(playlists, s.logger)
	commentHandler := handler.NewCommentHandler(comments, s.logger)
	likeHandler := handler.NewLikeHandler(likes, s.logger)
	fileHandler := handler.NewFileHandler(uploads, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// Uploaded files are served straight from disk.
	fileServer := http.FileServer(http.Dir(s.config.UploadDir))
	s.router.Handle("/public/*", http.StripPrefix("/public/", fileServer))

	s.router.Route("/api", func(r chi.Router) {
		// Public routes: no token required.
		r.Group(func(r chi.Router) {
			r.Post("/auth/login", authHandler.HandleLogin)
			r.Post("/auth/register", authHandler.HandleRegister)
			r.Post("/auth/refresh", authHandler.HandleRefresh)
			r.Post("/auth/social-media", authHandler.HandleSocialMedia)

			r.Get("/users/{id}", userHandler.HandleGet)

			r.Get("/tracks/{id}", trackHandler.HandleGet)
			r.Post("/tracks/top", trackHandler.HandleTop)
			r.Post("/tracks/search", trackHandler.HandleSearch)
			r.Post("/tracks/increase-view", trackHandler.HandleIncreaseView)
			r.Post("/tracks/comments", trackHandler.HandleComments)
			r.Post("/tracks/users", trackHandler.HandleByUser)

			r.Get("/playlists", playlistHandler.HandleList)
			r.Get("/playlists/{id}", playlistHandler.HandleGet)
			r.Get("/playlists/{id}/tracks", playlistHandler.HandleTracks)

			r.Get("/comments", commentHandler.HandleList)
		})

		// Protected routes: bearer token verified before any handler runs.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/auth/account", authHandler.HandleAccount)
			r.Post("/auth/logout", authHandler.HandleLogout)

			r.Post("/users", userHandler.HandleCreate)
			r.Get("/users", userHandler.HandleList)
			r.Get("/users/all", userHandler.HandleListAll)
			r.Patch("/users", userHandler.HandlePatch)
			r.Delete("/users/{id}", userHandler.HandleDelete)

			r.Get("/tracks", trackHandler.HandleList)
			r.Post("/tracks", trackHandler.HandleCreate)
			r.Get("/tracks/users", trackHandler.HandleMine)
			r.Patch("/tracks/{id}", trackHandler.HandlePatch)
			r.Delete("/tracks/{id}", trackHandler.HandleDelete)

			r.Post("/playlists", playlistHandler.HandleCreate)
			r.Post("/playlists/empty", playlistHandler.HandleCreateEmpty)
			r.Post("/playlists/by-user", playlistHandler.HandleMine)
			r.Patch("/playlists", playlistHandler.HandlePatch)
			r.Delete("/playlists/{id}", playlistHandler.HandleDelete)

			r.Post("/comments", commentHandler.HandleCreate)
			r.Delete("/comments/{id}", commentHandler.HandleDelete)

			r.Post("/likes", likeHandler.HandleToggle)
			r.Get("/likes", likeHandler.HandleListMine)

			r.Post("/files/upload", fileHandler.HandleUpload)
			r.Get("/files/my-files", fileHandler.HandleListMine)
			r.Delete("/files/{id}", fileHandler.HandleDelete)
		})
	})

	return nil
}

// Router exposes the assembled handler, mainly for tests that drive the
// server through httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Close releases the database connection. Start does this itself; Close is
// for callers that use Router directly.
func (s *Server) Close() error {
	return s.db.Close()
}

// EnsureAdmin promotes the configured admin account if it exists. A missing
// account is not an error; the operator may simply not have registered yet.
func (s *Server) EnsureAdmin(ctx context.Context) error {
	if s.config.AdminEmail == "" {
		return nil
	}
	err := s.sessions.PromoteToAdmin(ctx, s.config.AdminEmail)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return fmt.Errorf("promoting admin account: %w", err)
	}
	return nil
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully:
// stop accepting connections, drain in-flight requests, close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.String("uploads", s.config.UploadDir),
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
