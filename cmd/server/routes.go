package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"wardrobe-be/internal/config"
	"wardrobe-be/internal/garment"
	"wardrobe-be/internal/logger"
	"wardrobe-be/internal/metrics"
	"wardrobe-be/internal/middleware"
	"wardrobe-be/internal/order"
	"wardrobe-be/internal/storage"
	"wardrobe-be/internal/transport"
	"wardrobe-be/internal/user"
	"wardrobe-be/internal/wishlist"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type deps struct {
	cfg      *config.Config
	db       *sql.DB
	disk     storage.Disk
	authn    middleware.Authenticator
	users    *user.Handler
	garments *garment.Handler
	orders   *order.Handler
	wishlist *wishlist.Handler
}

func buildDeps(cfg *config.Config, database *sql.DB, disk storage.Disk) deps {
	userSvc := user.NewService(user.NewRepository(database), disk, cfg.JWTSecret)
	garmentSvc := garment.NewService(garment.NewRepository(database), disk)
	orderSvc := order.NewService(order.NewRepository(database))
	wishlistSvc := wishlist.NewService(wishlist.NewRepository(database))

	return deps{
		cfg:      cfg,
		db:       database,
		disk:     disk,
		authn:    userSvc,
		users:    user.NewHandler(userSvc, cfg.BaseURL, cfg.MaxUploadBytes, cfg.IsProduction()),
		garments: garment.NewHandler(garmentSvc, cfg.BaseURL, cfg.MaxUploadBytes),
		orders:   order.NewHandler(orderSvc, cfg.BaseURL),
		wishlist: wishlist.NewHandler(wishlistSvc, cfg.BaseURL),
	}
}

func setupRouter(ctx context.Context, d deps) http.Handler {
	limiter := middleware.NewRateLimiter("/users/login", "/users/signup")
	go limiter.Run(ctx, time.Minute)

	r := chi.NewRouter()
	if d.cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions(d.cfg.CORSOrigin)))
	r.Use(limiter.Middleware)

	r.Get("/healthz", healthHandler(d.db))
	r.Handle("/metrics", metrics.Handler())
	r.Get("/assets/{userID}/imgs/{name}", transport.AssetHandler(d.disk))

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(d.cfg.RequestTimeout))

		r.Post("/users/signup", d.users.Signup)
		r.Post("/users/login", d.users.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(d.authn))
			r.Use(limiter.PerUser)

			r.Route("/users", func(r chi.Router) {
				r.Post("/logout", d.users.Logout)
				r.Post("/logoutAll", d.users.LogoutAll)
				r.Get("/me", d.users.Me)
				r.Patch("/me", d.users.UpdateMe)
				r.Delete("/me", d.users.DeleteMe)
			})

			r.Route("/garment", func(r chi.Router) {
				r.Post("/", d.garments.Create)
				r.Get("/", d.garments.List)
				r.Get("/{id}", d.garments.Get)
				r.Delete("/{id}", d.garments.Delete)
			})

			r.Route("/order", func(r chi.Router) {
				r.Post("/", d.orders.Place)
				r.Get("/", d.orders.List)
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", d.wishlist.List)
				r.Post("/{id}", d.wishlist.Add)
				r.Delete("/{id}", d.wishlist.Remove)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		transport.NotFound(w, "Route not found")
	})

	return r
}

type healthResponse struct {
	Status string `json:"status"`
}

func healthHandler(database *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := database.PingContext(ctx); err != nil {
			logger.FromCtx(r.Context()).Warn("health check failed", zap.Error(err))
			transport.Error(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		transport.JSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}
}
