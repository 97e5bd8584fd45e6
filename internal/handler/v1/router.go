package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/dmehra2102/prod-golang-projects/cabinet/config"
	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/middleware"
	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/service"
	"github.com/dmehra2102/prod-golang-projects/cabinet/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type RouterDeps struct {
	Config       *config.Config
	Log          *zap.Logger
	Metrics      *metrics.Collector
	Appointments *service.AppointmentService
	Patients     *service.PatientService
	Dossiers     *service.DossierService
	// Auth may be nil when authentication is disabled.
	Auth *service.AuthService
}

// NewRouter wires middleware and every route. The rate limiters' idle-client
// sweepers run until ctx is done.
func NewRouter(ctx context.Context, d RouterDeps) *gin.Engine {
	cfg := d.Config
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	global := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.BurstSize)
	go global.Run(ctx, time.Minute)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(d.Log),
		middleware.Recovery(d.Log),
		middleware.Tracing(),
		middleware.Metrics(d.Metrics),
		middleware.CORS(cfg.CORS),
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": cfg.App.Version})
	})
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	api := r.Group("/api/v1", middleware.RateLimit(global, d.Metrics))

	if d.Auth != nil {
		strict := middleware.PerMinute(max(cfg.RateLimit.AuthRequestsPerMinute, 1))
		go strict.Run(ctx, time.Minute)
		NewAuthHandler(d.Auth).Register(api.Group("", middleware.RateLimit(strict, d.Metrics), middleware.Caller()))
	}

	protected := api.Group("")
	if cfg.Auth.Enabled && d.Auth != nil {
		protected.Use(middleware.Auth(d.Auth))
	}
	protected.Use(middleware.Caller())

	NewAppointmentHandler(d.Appointments).Register(protected)
	NewPatientHandler(d.Patients, d.Dossiers).Register(protected)

	return r
}
