package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/NuvaGit/CaitlinPortfolio/internal/config"
	"github.com/NuvaGit/CaitlinPortfolio/internal/db"
	"github.com/NuvaGit/CaitlinPortfolio/internal/handlers"
	"github.com/NuvaGit/CaitlinPortfolio/internal/media"
	appmiddleware "github.com/NuvaGit/CaitlinPortfolio/internal/middleware"
	"github.com/NuvaGit/CaitlinPortfolio/internal/pdftext"
)

func main() {
	cfg := config.Load()

	ctx := context.Background()
	store, err := db.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer store.Close()

	if err := store.Init(ctx); err != nil {
		log.Fatalf("db init failed: %v", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.CorsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	secret := []byte(cfg.JWTSecret)
	postsHandler := handlers.NewPostsHandler(store)
	authHandler := handlers.NewAuthHandler(store, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName, secret)
	pdfHandler := handlers.NewPDFHandler(pdftext.NewExtractor())

	var uploadHandler *handlers.UploadHandler
	if cfg.CloudinaryURL != "" {
		uploader, err := media.NewCloudinary(cfg.CloudinaryURL)
		if err != nil {
			log.Fatalf("cloudinary init failed: %v", err)
		}
		uploadHandler = handlers.NewUploadHandler(uploader, cfg.UploadDir)
	} else {
		log.Println("CLOUDINARY_URL not set; upload endpoints disabled")
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(appmiddleware.Session(secret))

		// In-memory rate limiter: 5 login attempts per minute per IP
		loginRateLimiter := appmiddleware.NewRateLimiter(5, time.Minute)
		r.With(loginRateLimiter.Limit).Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)

		// Less restrictive rate limiter: 30 requests per minute per IP for public reads
		publicLimiter := appmiddleware.NewRateLimiter(30, time.Minute)
		r.With(publicLimiter.Limit).Get("/posts", postsHandler.List)
		r.Get("/posts/slug/{slug}", postsHandler.GetBySlug)
		r.Get("/posts/{id}", postsHandler.GetByID)

		// Anyone may like or comment; the client tracks repeat likes.
		r.Put("/posts/{id}/like", postsHandler.Like)
		r.Post("/posts/{id}/comment", postsHandler.Comment)

		// Admin-only mutations
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.AdminOnly)
			r.Post("/posts", postsHandler.Create)
			r.Put("/posts/{id}", postsHandler.Update)
			r.Delete("/posts/{id}", postsHandler.Delete)
			r.Post("/extract-pdf", pdfHandler.Extract)
			if uploadHandler != nil {
				r.Post("/upload", uploadHandler.Image)
				r.Post("/upload-pdf", uploadHandler.PDF)
			}
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
