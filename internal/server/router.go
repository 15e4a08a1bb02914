package server

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"github.com/junhak/teamfiles/internal/audit"
	"github.com/junhak/teamfiles/internal/auth"
	"github.com/junhak/teamfiles/internal/config"
	"github.com/junhak/teamfiles/internal/logger"
	"github.com/junhak/teamfiles/internal/metrics"
	"github.com/junhak/teamfiles/internal/repository"
	"github.com/junhak/teamfiles/internal/roster"
)

// Dependencies groups the services required by the HTTP router.
type Dependencies struct {
	Config      config.Config
	Log         *zap.Logger
	DB          *pgxpool.Pool
	ObjectStore *minio.Client
	AuthService *auth.Service
	Hub         *repository.Hub
	Roster      *roster.Client
	Audit       *audit.Repository
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.Middleware())
	if deps.Log != nil {
		router.Use(logger.RequestLogger(deps.Log))
	}
	router.Use(metrics.Middleware())

	registerHealthRoutes(router, deps)
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	api := router.Group("/v1")
	if deps.AuthService != nil && deps.Hub != nil {
		protected := api.Group("/")
		protected.Use(auth.AuthMiddleware(deps.AuthService))
		repository.RegisterRoutes(protected, deps.Hub, deps.Roster, deps.Log)

		if deps.Audit != nil {
			repository.RegisterAuditRoutes(protected, deps.Audit, deps.Log)
		}
	}

	return router
}
