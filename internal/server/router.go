package server

import (
	"github.com/abduss/fieldservice/internal/catalog"
	"github.com/abduss/fieldservice/internal/config"
	"github.com/abduss/fieldservice/internal/logger"
	"github.com/abduss/fieldservice/internal/metrics"
	"github.com/abduss/fieldservice/internal/partpics"
	"github.com/abduss/fieldservice/internal/workorder"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Dependencies groups the services required by the HTTP router.
// DB and ObjectStore may be nil; the readiness probe then skips them.
type Dependencies struct {
	Config       config.Config
	DB           *pgxpool.Pool
	ObjectStore  *minio.Client
	WorkOrders   *workorder.Service
	Catalog      *catalog.Service
	PartPictures *partpics.Service
	Logger       *zap.Logger
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.Middleware(log))
	router.Use(metrics.Middleware())
	router.SetHTMLTemplate(workorder.AlbumTemplate)

	registerHealthRoutes(router, deps)
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	api := router.Group("/")
	maxUpload := deps.Config.Media.MaxUploadBytes
	if deps.WorkOrders != nil {
		workorder.RegisterRoutes(api, deps.WorkOrders, maxUpload, log)
	}
	if deps.Catalog != nil {
		catalog.RegisterRoutes(api, deps.Catalog, log)
	}
	if deps.PartPictures != nil {
		partpics.RegisterRoutes(api, deps.PartPictures, maxUpload, log)
	}

	return router
}
