package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/dardanh/fieldhub/internal/auth"
	"github.com/dardanh/fieldhub/internal/cache"
	"github.com/dardanh/fieldhub/internal/config"
	"github.com/dardanh/fieldhub/internal/http/handlers"
	"github.com/dardanh/fieldhub/internal/http/middlewares"
	"github.com/dardanh/fieldhub/internal/observability"
	"github.com/dardanh/fieldhub/internal/queue/redisclient"
	"github.com/dardanh/fieldhub/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// NewRouter is the composition root for the API process: repositories,
// handlers, middleware chain and routes are all wired here.
func NewRouter(cfg config.Config, log *slog.Logger, pool *pgxpool.Pool, rc *redisclient.Client, prom *observability.Prom, reg *prometheus.Registry) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware, outermost first

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(otelgin.Middleware("fieldhub-api"))

	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
	}

	// health and metrics

	ping := func(ctx context.Context) error {
		if pool == nil {
			return nil
		}

		return pool.Ping(ctx)
	}

	healthHandler := handlers.NewHealthHandler(ping)
	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/readyz", healthHandler.Readyz)

	if reg != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	// uploaded field images
	r.Static("/uploads", cfg.UploadDir)

	// repositories

	usersRepo := postgres.NewUsersRepo(pool)
	refreshRepo := postgres.NewRefreshTokensRepo(pool)
	fieldsRepo := postgres.NewFieldsRepo(pool, prom)
	rentalsRepo := postgres.NewRentalsRepo(pool, prom)
	jobsRepo := postgres.NewJobsRepo(pool, prom)

	// handlers

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL(), cfg.RefreshTTL())
	authMW := middlewares.NewAuthMiddleware(jwtManager)

	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, jwtManager, refreshRepo, cfg)
	fieldsHandler := handlers.NewFieldsHandler(fieldsRepo, cache.New(10*time.Second), cfg.UploadDir)
	availability := handlers.NewAvailabilityCache(rc, 30*time.Second)
	rentalsHandler := handlers.NewRentalsHandler(rentalsRepo, jobsRepo, availability, cfg.RentalOverlapGuard)
	paymentsHandler := handlers.NewPaymentsHandler(jobsRepo)
	usersHandler := handlers.NewUsersHandler(usersRepo)

	requireJSON := middlewares.RequireJSON()
	maxBody := middlewares.MaxBodyBytes(1 << 20)

	authLimiter := middlewares.NewRateLimiter(10, time.Minute)
	writeLimiter := middlewares.NewRateLimiter(60, time.Minute)

	// auth

	authGroup := r.Group("/auth")
	authGroup.Use(authLimiter.RateLimiterMiddleware(middlewares.KeyByIP))
	{
		authGroup.POST("/register", requireJSON, maxBody, authHandler.Register)
		authGroup.POST("/login", requireJSON, maxBody, authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	// sport fields: reads are public, writes are admin-only

	r.GET("/sportfields", fieldsHandler.ListFields)
	r.GET("/sportfields/:identifier", fieldsHandler.GetByIdentifier)

	fieldsAdmin := r.Group("/sportfields")
	fieldsAdmin.Use(authMW.RequireAuth(), authMW.RequireRole("admin"))
	{
		fieldsAdmin.POST("", fieldsHandler.CreateField)
		fieldsAdmin.PUT("/:id", fieldsHandler.UpdateField)
		fieldsAdmin.DELETE("/:id", fieldsHandler.DeleteField)
	}

	// rentals

	rentals := r.Group("/rentals")
	rentals.Use(authMW.RequireAuth())
	{
		rentals.GET("", authMW.RequireRole("admin"), rentalsHandler.ListAll)
		rentals.GET("/user", rentalsHandler.ListMine)
		rentals.GET("/dateFilter", rentalsHandler.DateFilter)
		rentals.GET("/activeFromDate", rentalsHandler.ActiveFromDate)
		rentals.POST("",
			requireJSON, maxBody,
			writeLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP),
			rentalsHandler.Create)
		rentals.DELETE("/cancel/:id", rentalsHandler.Cancel)
		rentals.POST("/processPayment",
			requireJSON, maxBody,
			writeLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP),
			paymentsHandler.ProcessPayment)
	}

	// users

	users := r.Group("/users")
	users.Use(authMW.RequireAuth(), authMW.RequireRole("admin"))
	{
		users.GET("", usersHandler.ListUsers)
		users.GET("/is-admin/:id", usersHandler.IsAdmin)
	}

	log.Info("router wired",
		"overlapGuard", cfg.RentalOverlapGuard,
		"origins", cfg.AllowedOrigins,
	)

	return r
}
