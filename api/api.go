package api

import (
	"context"
	"net/http"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/peerhaven/audit-backend/api/middleware"
	"github.com/peerhaven/audit-backend/usecases"
	"github.com/peerhaven/audit-backend/utils"
)

type Configuration struct {
	Env                 string
	AppName             string
	Port                string
	RequestLoggingLevel string
	DefaultTimeout      time.Duration
}

func corsOption(env string) cors.Config {
	allowedOrigins := []string{"*"}

	if env == "development" {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://localhost:5173")
	}

	return cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{http.MethodOptions, http.MethodHead, http.MethodGet, http.MethodPost},
		AllowHeaders:     []string{"Authorization", "Content-Type", "baggage", "sentry-trace"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
}

// InitRouterMiddlewares builds the gin engine and its middleware stack. Route
// registration happens in NewServer so tests can wire an engine without
// binding a port.
func InitRouterMiddlewares(ctx context.Context, conf Configuration) *gin.Engine {
	if conf.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := utils.LoggerFromContext(ctx)
	loggingMiddleware := middleware.RequestLogger(logger, "/liveness")

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	r.Use(cors.New(corsOption(conf.Env)))
	if conf.RequestLoggingLevel != "none" {
		r.Use(loggingMiddleware)
	}
	r.Use(utils.StoreLoggerInContextMiddleware(logger))

	return r
}

func NewServer(router *gin.Engine, conf Configuration, uc usecases.Usecases) *http.Server {
	router.GET("/liveness", HandleLivenessProbe)

	router.POST("/audit-entries", handleCreateAuditEntry(uc))
	router.GET("/audit-entries", handleListAuditEntries(uc))
	router.GET("/audit-entries/:sequence_id", handleGetAuditEntry(uc))
	router.GET("/audit-entries/hash/:entry_hash", handleGetAuditEntryByHash(uc))

	router.GET("/integrity/last-check", handleGetLastIntegrityCheck(uc))
	router.GET("/integrity/checks", handleListIntegrityChecks(uc))
	router.POST("/integrity/checks", handleTriggerIntegrityCheck(uc))

	return &http.Server{
		Addr:              ":" + conf.Port,
		Handler:           router,
		ReadHeaderTimeout: conf.DefaultTimeout,
	}
}
