package api

import (
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/managerate/managerate/internal/app"
	iauth "github.com/managerate/managerate/internal/auth"
	"github.com/managerate/managerate/internal/handlers"
	"github.com/managerate/managerate/internal/middleware"
	"github.com/managerate/managerate/internal/services"
	"github.com/managerate/managerate/pkg/mail"
	"github.com/managerate/managerate/web"
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config, mailer mail.Mailer) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	userSvc, err := services.NewUserService(db)
	if err != nil {
		return nil, err
	}
	managerSvc, err := services.NewManagerService(db)
	if err != nil {
		return nil, err
	}
	reviewSvc, err := services.NewReviewService(db)
	if err != nil {
		return nil, err
	}
	verificationSvc, err := services.NewVerificationService(db, mailer)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())

	rateLimit := cfg.Server.RateLimit
	if rateLimit.MaxRequests > 0 && rateLimit.Window > 0 {
		r.Use(middleware.RateLimit(rateLimit.MaxRequests, rateLimit.Window))
	} else {
		// Basic fallback: 100 requests/minute per IP+path
		r.Use(middleware.RateLimit(100, time.Minute))
	}

	authHandler := handlers.NewAuthHandler(userSvc, jwt)
	managerHandler := handlers.NewManagerHandler(managerSvc)
	reviewHandler := handlers.NewReviewHandler(reviewSvc)
	verificationHandler := handlers.NewVerificationHandler(verificationSvc, !cfg.Email.SMTP.Enabled)
	userHandler := handlers.NewUserHandler(userSvc)

	requireAuth := middleware.Auth(jwt)
	optionalAuth := middleware.OptionalAuth(jwt)

	r.GET("/api/health", handlers.Health())

	auth := r.Group("/api/auth")
	{
		auth.POST("/signup", authHandler.SignUp)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
	}

	managers := r.Group("/api/managers")
	{
		managers.GET("/search", managerHandler.Search)
		managers.GET("/trending", managerHandler.Trending)
		managers.GET("/companies", managerHandler.Companies)
		managers.GET("/:id", optionalAuth, managerHandler.Get)
		managers.POST("", requireAuth, managerHandler.Create)
	}

	reviews := r.Group("/api/reviews")
	{
		reviews.GET("/manager/:managerId", reviewHandler.ListByManager)
		reviews.POST("", requireAuth, reviewHandler.Create)
	}

	verification := r.Group("/api/verification")
	verification.Use(requireAuth)
	{
		verification.POST("/request", verificationHandler.Request)
		verification.POST("/confirm", verificationHandler.Confirm)
	}

	user := r.Group("/api/user")
	user.Use(requireAuth)
	{
		user.GET("/me", userHandler.Me)
		user.GET("/dashboard", userHandler.Dashboard)
	}

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	registerSPA(r)

	return r, nil
}

// registerSPA serves the embedded frontend for anything that is not an API
// route, falling back to index.html so client-side routing works.
func registerSPA(r *gin.Engine) {
	assets, err := web.FS()
	if err != nil {
		r.NoRoute(middleware.NotFoundHandler)
		return
	}

	fileServer := http.FileServer(http.FS(assets))

	r.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/") || path == "/api" {
			middleware.NotFoundHandler(c)
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			middleware.NotFoundHandler(c)
			return
		}

		trimmed := strings.TrimPrefix(path, "/")
		if trimmed != "" {
			if _, statErr := fs.Stat(assets, trimmed); statErr == nil {
				fileServer.ServeHTTP(c.Writer, c.Request)
				return
			}
		}

		c.Request.URL.Path = "/"
		fileServer.ServeHTTP(c.Writer, c.Request)
	})
}
