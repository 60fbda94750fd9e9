package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/timmy/docclass/internal/api/handler"
	"github.com/timmy/docclass/internal/api/middleware"
	"github.com/timmy/docclass/internal/config"
	"github.com/timmy/docclass/internal/logger"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Classifier handler.DocumentClassifier
	Stats      handler.StatsProvider
	Runs       handler.RunStore // nil when the run ledger is disabled
	Logger     *logger.Logger
	Backend    string
	Mode       string
	CORS       config.CORSConfig
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(deps *RouterDeps) *gin.Engine {
	switch deps.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(deps.Logger))
	r.Use(middleware.CORS(deps.CORS))
	r.Use(middleware.PrometheusMiddleware())

	healthHandler := handler.NewHealthHandler(deps.Backend)
	statsHandler := handler.NewStatsHandler(deps.Stats)
	classifyHandler := handler.NewClassifyHandler(deps.Classifier)

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/stats", statsHandler.GetStats)

		// Classification
		v1.POST("/classify", classifyHandler.Preview)
		v1.POST("/documents/classify", classifyHandler.ClassifyDocument)

		// Run history
		if deps.Runs != nil {
			runHandler := handler.NewRunHandler(deps.Runs)
			v1.GET("/runs", runHandler.ListRuns)
			v1.GET("/runs/summary", runHandler.Summary)
			v1.GET("/runs/:id", runHandler.GetRun)
		}
	}

	return r
}
