package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-admin/internal/middleware"
	"github.com/noah-isme/academy-admin/internal/service"
	"github.com/noah-isme/academy-admin/pkg/config"
	"github.com/noah-isme/academy-admin/pkg/logger"
	corsmiddleware "github.com/noah-isme/academy-admin/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/academy-admin/pkg/middleware/requestid"
)

// Handlers groups every route handler of the console.
type Handlers struct {
	Pages        *PageHandler
	Students     *StudentHandler
	Payments     *PaymentHandler
	ClassOptions *ClassOptionHandler
	Audit        *AuditHandler
	Ops          *MetricsHandler
}

// NewRouter mounts the HTML pages, the JSON API under cfg.APIPrefix and the
// ops endpoints.
func NewRouter(cfg *config.Config, log *zap.Logger, metrics *service.MetricsService, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(log))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", h.Ops.Health)
	r.GET("/ready", h.Ops.Ready)
	r.GET("/metrics", h.Ops.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.GET("/", h.Pages.Home)
	r.GET("/students", h.Pages.Students)
	r.POST("/students/rows/:rowID/click", h.Pages.RowClick)

	api := r.Group(cfg.APIPrefix, middleware.ResponseMeta())
	{
		students := api.Group("/students")
		students.GET("", h.Students.List)
		students.POST("", h.Students.Create)
		students.GET("/export", h.Students.Export)
		students.GET("/:id", h.Students.Get)
		students.PATCH("/:id", h.Students.Update)
		students.GET("/:id/enrollments", h.Students.Enrollments)
		students.GET("/:id/payment", h.Payments.Current)

		api.GET("/class-options", h.ClassOptions.List)

		payments := api.Group("/payments")
		payments.POST("/:id/preview", h.Payments.Preview)
		payments.POST("/:id/finalize", h.Payments.Finalize)

		api.GET("/audit", h.Audit.History)
	}

	return r
}
