// Package server wires the application together: it owns the router,
// the route table, the middleware chains and the graceful shutdown.
// All dependencies are assembled here, the composition root; main.go
// only reads config and calls Start.
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

	"github.com/vellt/eduinfo-api/internal/auth"
	"github.com/vellt/eduinfo-api/internal/handler"
	"github.com/vellt/eduinfo-api/internal/middleware"
	"github.com/vellt/eduinfo-api/internal/model"
	"github.com/vellt/eduinfo-api/internal/repository"
	sqliteRepo "github.com/vellt/eduinfo-api/internal/repository/sqlite"
	"github.com/vellt/eduinfo-api/internal/service"
	"github.com/vellt/eduinfo-api/internal/upload"
)

// Config holds the runtime configuration of the server.
type Config struct {
	Port      int
	DBPath    string
	UploadDir string
}

// Server owns the router and the resources that must be released on
// shutdown: the database connection and nothing else, uploads are
// plain files.
type Server struct {
	router  *chi.Mux
	config  Config
	logger  *slog.Logger
	db      *sqliteRepo.DB
	uploads *upload.Store
}

// New opens the database and the upload store and builds the full
// route table. The returned server is ready to Start.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	uploads, err := upload.NewStore(cfg.UploadDir, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("opening upload store: %w", err)
	}

	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		db:      db,
		uploads: uploads,
	}
	s.setupRoutes()
	return s, nil
}

// Router exposes the assembled handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// Uploaded images are served straight from disk; filenames are
	// opaque ids, so there is nothing to guess.
	fileServer := http.FileServer(http.Dir(s.uploads.Dir()))
	s.router.Handle("/uploads/*", http.StripPrefix("/uploads/", fileServer))

	// The sqlite.DB value implements every repository interface, so it
	// is handed to each service as the narrow slice that service asks
	// for.
	gates := auth.NewMiddleware(s.db, s.db, s.logger)
	passwords := auth.NewPasswordService()
	issuer := auth.NewIssuer(s.db)

	authService := service.NewAuthService(s.db, s.db, issuer, passwords, s.logger)
	adminService := service.NewAdminService(s.db, s.logger)
	accountService := service.NewAccountService(s.db, s.db, passwords, s.uploads, s.logger)
	institutionService := service.NewInstitutionService(
		s.db, s.db, s.db, s.db, s.db, s.db, s.uploads, s.logger,
	)
	personService := service.NewPersonService(s.db, s.db, s.db, s.db, s.db, s.logger)
	messagingService := service.NewMessagingService(s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	adminHandler := handler.NewAdminHandler(adminService, institutionService, s.logger)
	institutionHandler := handler.NewInstitutionHandler(
		institutionService, accountService, messagingService, s.uploads, s.logger,
	)
	personHandler := handler.NewPersonHandler(
		personService, institutionService, accountService, messagingService, s.uploads, s.logger,
	)

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/standard_login", authHandler.StandardLogin)
		r.Post("/admin_reg", authHandler.RegisterAdmin)

		r.Group(func(r chi.Router) {
			r.Use(gates.RequireToken)
			r.Post("/token_login", authHandler.TokenLogin)
			r.Put("/logout", authHandler.Logout)
			r.With(gates.ResolveRole).Get("/role", authHandler.Role)
		})
	})

	s.router.Route("/admin", func(r chi.Router) {
		// Tokenless public page; lives under /admin for historical
		// reasons in the client apps.
		r.Get("/institution/{institution_id}", adminHandler.Institution)

		r.Group(func(r chi.Router) {
			r.Use(gates.GateForRole(model.RoleAdmin)...)
			r.Get("/users", adminHandler.Users)
			r.Put("/disable_institution/{institution_id}", adminHandler.DisableInstitution)
			r.Put("/enable_institution/{institution_id}", adminHandler.EnableInstitution)
			r.Put("/accept_institution/{institution_id}", adminHandler.AcceptInstitution)
			r.Put("/disable_person/{person_id}", adminHandler.DisablePerson)
			r.Put("/enable_person/{person_id}", adminHandler.EnablePerson)
		})
	})

	s.router.Route("/institution", func(r chi.Router) {
		r.Get("/categories", institutionHandler.Categories)

		r.Group(func(r chi.Router) {
			r.Use(gates.GateForRole(model.RoleInstitution)...)

			r.Get("/profile", institutionHandler.Profile)
			r.Delete("/profile", institutionHandler.DeleteProfile)

			r.Post("/news", institutionHandler.CreateNews)
			r.Put("/news/{news_id}", institutionHandler.UpdateNews)
			r.Delete("/news/{news_id}", institutionHandler.DeleteNews)

			r.Post("/event", institutionHandler.CreateEvent)
			r.Put("/event/{event_id}", institutionHandler.UpdateEvent)
			r.Delete("/event/{event_id}", institutionHandler.DeleteEvent)

			r.Put("/institution_categories", institutionHandler.ReplaceCategories)

			r.Put("/avatar", institutionHandler.UpdateAvatar)
			r.Put("/banner", institutionHandler.UpdateBanner)
			r.Put("/name", institutionHandler.UpdateName)
			r.Put("/email", institutionHandler.UpdateEmail)
			r.Put("/password", institutionHandler.UpdatePassword)

			r.Post("/public/email", institutionHandler.AddContact(repository.ContactEmail))
			r.Put("/public/email/{email_id}", institutionHandler.UpdateContact(repository.ContactEmail, "email_id"))
			r.Delete("/public/email/{email_id}", institutionHandler.DeleteContact(repository.ContactEmail, "email_id"))
			r.Post("/public/phone", institutionHandler.AddContact(repository.ContactPhone))
			r.Put("/public/phone/{phone_id}", institutionHandler.UpdateContact(repository.ContactPhone, "phone_id"))
			r.Delete("/public/phone/{phone_id}", institutionHandler.DeleteContact(repository.ContactPhone, "phone_id"))
			r.Post("/public/website", institutionHandler.AddContact(repository.ContactWebsite))
			r.Put("/public/website/{website_id}", institutionHandler.UpdateContact(repository.ContactWebsite, "website_id"))
			r.Delete("/public/website/{website_id}", institutionHandler.DeleteContact(repository.ContactWebsite, "website_id"))

			r.Get("/messages_version", institutionHandler.MessagesVersion)
			r.Get("/messaging_rooms", institutionHandler.Rooms)
			r.Get("/messaging_rooms/{messaging_room_id}", institutionHandler.Room)
			r.Post("/send_message/{person_id}", institutionHandler.SendMessage)
		})
	})

	s.router.Route("/person", func(r chi.Router) {
		r.Get("/categories", personHandler.Categories)
		r.Get("/institutions_by_category/{category_id}", personHandler.InstitutionsByCategory)

		// Flag probes run partial gate chains on purpose: each one
		// checks a single flag so the client can tell the two apart.
		personKind := repository.KindForRole(model.RolePerson)
		r.With(
			gates.RequireToken,
			gates.RequireEnabled(personKind),
			gates.ResolveRole,
			gates.RequireRole(model.RolePerson),
		).Get("/enabled", personHandler.Enabled)
		r.With(
			gates.RequireToken,
			gates.RequireAccepted(personKind),
			gates.ResolveRole,
			gates.RequireRole(model.RolePerson),
		).Get("/accepted", personHandler.Accepted)

		r.Group(func(r chi.Router) {
			r.Use(gates.GateForRole(model.RolePerson)...)

			r.Get("/home", personHandler.Home)
			r.Get("/events", personHandler.Events)
			r.Get("/institutions/{institution_id}", personHandler.Institution)

			r.Post("/follow/{institution_id}", personHandler.Follow)
			r.Delete("/unfollow/{institution_id}", personHandler.Unfollow)
			r.Post("/like/{news_id}", personHandler.Like)
			r.Delete("/unlike/{news_id}", personHandler.Unlike)

			r.Get("/profile", personHandler.Profile)
			r.Delete("/profile", personHandler.DeleteProfile)
			r.Put("/avatar", personHandler.UpdateAvatar)
			r.Put("/name", personHandler.UpdateName)
			r.Put("/email", personHandler.UpdateEmail)
			r.Put("/password", personHandler.UpdatePassword)

			r.Get("/messages_version", personHandler.MessagesVersion)
			r.Get("/messaging_rooms", personHandler.Rooms)
			r.Get("/messaging_rooms/{messaging_room_id}", personHandler.Room)
			r.Post("/send_message/{institution_id}", personHandler.SendMessage)
			r.Get("/find_messaging_rooms/{institution_id}", personHandler.FindRoom)
		})
	})
}

// Start runs the server until SIGINT or SIGTERM, then drains in-flight
// requests for up to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
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
