package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Alxzu/bcu-usd-billete/internal/bcu"
	"github.com/Alxzu/bcu-usd-billete/internal/logger"
	"github.com/Alxzu/bcu-usd-billete/internal/metrics"
	"github.com/Alxzu/bcu-usd-billete/internal/middleware"
	"github.com/Alxzu/bcu-usd-billete/internal/models"
	"github.com/Alxzu/bcu-usd-billete/internal/ratelimit"
	"github.com/Alxzu/bcu-usd-billete/internal/service"
)

// UpstreamHealth reports whether the BCU services are answering.
type UpstreamHealth interface {
	HealthCheck(ctx context.Context) error
}

// Handlers contains all HTTP handlers
type Handlers struct {
	ratesService *service.RatesService
	health       UpstreamHealth
	logger       *logger.Logger
	startTime    time.Time
	rateLimiter  *ratelimit.Limiter
}

// HandlerConfig bundles the collaborators handlers depend on.
type HandlerConfig struct {
	Logger       *logger.Logger
	RatesService *service.RatesService
	Health       UpstreamHealth
	RateLimiter  *ratelimit.Limiter
}

// NewHandlers creates a new handlers instance
func NewHandlers(handlerConfig HandlerConfig) *Handlers {
	return &Handlers{
		ratesService: handlerConfig.RatesService,
		health:       handlerConfig.Health,
		logger:       handlerConfig.Logger,
		rateLimiter:  handlerConfig.RateLimiter,
		startTime:    time.Now(),
	}
}

// SetupRoutes configures all the routes using Gin
func (handlers *Handlers) SetupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.RequestLogger(handlers.logger))
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestID())
	router.Use(handlers.corsMiddleware())

	if handlers.rateLimiter != nil {
		router.Use(handlers.rateLimitMiddleware())
	}

	// Health check endpoint
	router.GET("/health", handlers.HealthCheck)

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes. Gin cannot register a static /rate/latest next to the
	// /rate/:date wildcard, so GetRate dispatches on the parameter.
	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/currency", handlers.GetCurrency)
		apiV1.GET("/rate/:date", handlers.GetRate)
	}

	// Legacy routes from the pre-/api/v1 deployment, kept as permanent
	// redirects for old clients.
	router.GET("/latest", func(context *gin.Context) {
		context.Redirect(http.StatusMovedPermanently, "/api/v1/rate/latest")
	})
	router.GET("/rate/:date", func(context *gin.Context) {
		context.Redirect(http.StatusMovedPermanently, "/api/v1/rate/"+context.Param("date"))
	})

	return router
}

// HealthCheck handles health check requests
func (handlers *Handlers) HealthCheck(context *gin.Context) {
	requestContext := context.Request.Context()

	healthStatus := "healthy"
	if handlers.health != nil {
		if healthError := handlers.health.HealthCheck(requestContext); healthError != nil {
			healthStatus = "unhealthy"
			handlers.logger.Warnf("Upstream health check failed: %v", healthError)
		}
	}

	healthCheckResponse := models.HealthCheck{
		Status:    healthStatus,
		Timestamp: time.Now(),
		Version:   "1.0.0",
		Uptime:    time.Since(handlers.startTime).String(),
	}

	context.JSON(http.StatusOK, healthCheckResponse)
}

// GetCurrency returns the resolved USD cash catalog entry
func (handlers *Handlers) GetCurrency(context *gin.Context) {
	requestContext := context.Request.Context()

	currency, resolveError := handlers.ratesService.GetCurrencyCode(requestContext)
	if resolveError != nil {
		metrics.Lookups.WithLabelValues("currency", "error").Inc()
		handlers.writeUpstreamError(context, "failed to resolve currency", resolveError)
		return
	}

	metrics.Lookups.WithLabelValues("currency", "hit").Inc()
	context.JSON(http.StatusOK, currency)
}

// GetRate serves /rate/:date, where the literal "latest" selects the most
// recent available quotation.
func (handlers *Handlers) GetRate(context *gin.Context) {
	if context.Param("date") == "latest" {
		handlers.GetLatestRate(context)
		return
	}
	handlers.GetRateForDate(context)
}

// GetLatestRate returns the most recent available USD cash rate
func (handlers *Handlers) GetLatestRate(context *gin.Context) {
	requestContext := context.Request.Context()

	currency, resolveError := handlers.ratesService.GetCurrencyCode(requestContext)
	if resolveError != nil {
		metrics.Lookups.WithLabelValues("latest", "error").Inc()
		handlers.writeUpstreamError(context, "failed to resolve currency", resolveError)
		return
	}

	record, fetchError := handlers.ratesService.GetLatestRate(requestContext, currency.Code)
	if fetchError != nil {
		metrics.Lookups.WithLabelValues("latest", "error").Inc()
		handlers.writeUpstreamError(context, "failed to fetch latest rate", fetchError)
		return
	}
	if record == nil {
		metrics.Lookups.WithLabelValues("latest", "miss").Inc()
		handlers.writeErrorResponse(context, http.StatusNotFound, "no rate available", "no quotation inside the lookback window")
		return
	}

	metrics.Lookups.WithLabelValues("latest", "hit").Inc()
	context.JSON(http.StatusOK, record)
}

// GetRateForDate returns the USD cash rate for one business day
func (handlers *Handlers) GetRateForDate(context *gin.Context) {
	date, parseError := models.ParseDate(context.Param("date"))
	if parseError != nil {
		handlers.writeErrorResponse(context, http.StatusBadRequest, "invalid date", "date must be YYYY-MM-DD")
		return
	}

	requestContext := context.Request.Context()

	currency, resolveError := handlers.ratesService.GetCurrencyCode(requestContext)
	if resolveError != nil {
		metrics.Lookups.WithLabelValues("date", "error").Inc()
		handlers.writeUpstreamError(context, "failed to resolve currency", resolveError)
		return
	}

	record, fetchError := handlers.ratesService.GetRateForDate(requestContext, currency.Code, date)
	if fetchError != nil {
		metrics.Lookups.WithLabelValues("date", "error").Inc()
		handlers.writeUpstreamError(context, "failed to fetch rate", fetchError)
		return
	}
	if record == nil {
		metrics.Lookups.WithLabelValues("date", "miss").Inc()
		handlers.writeErrorResponse(context, http.StatusNotFound, "no rate for date", "no quotation exists for "+date.String())
		return
	}

	metrics.Lookups.WithLabelValues("date", "hit").Inc()
	context.JSON(http.StatusOK, record)
}

// writeUpstreamError maps propagated lookup failures onto 502. The upstream
// status code, when one exists, is kept in the message for diagnostics.
func (handlers *Handlers) writeUpstreamError(context *gin.Context, errorMessage string, cause error) {
	handlers.logger.Errorf("%s: %v", errorMessage, cause)

	var upstreamError *bcu.UpstreamError
	if errors.As(cause, &upstreamError) {
		handlers.writeErrorResponse(context, http.StatusBadGateway, errorMessage, upstreamError.Error())
		return
	}
	if errors.Is(cause, bcu.ErrCurrencyNotFound) {
		handlers.writeErrorResponse(context, http.StatusBadGateway, errorMessage, bcu.ErrCurrencyNotFound.Error())
		return
	}
	handlers.writeErrorResponse(context, http.StatusBadGateway, errorMessage, cause.Error())
}

// writeErrorResponse writes an error response using Gin context
func (handlers *Handlers) writeErrorResponse(context *gin.Context, statusCode int, errorMessage, errorDetails string) {
	errorResponse := models.ErrorResponse{
		Error:   errorMessage,
		Message: errorDetails,
		Code:    statusCode,
	}

	context.JSON(statusCode, errorResponse)
}

// corsMiddleware adds CORS headers using Gin middleware
func (handlers *Handlers) corsMiddleware() gin.HandlerFunc {
	return func(context *gin.Context) {
		context.Header("Access-Control-Allow-Origin", "*")
		context.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		context.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if context.Request.Method == "OPTIONS" {
			context.AbortWithStatus(http.StatusOK)
			return
		}

		context.Next()
	}
}

// rateLimitMiddleware provides rate limiting using Gin middleware
func (handlers *Handlers) rateLimitMiddleware() gin.HandlerFunc {
	return func(context *gin.Context) {
		clientIP := handlers.rateLimiter.GetClientIP(context.Request)

		if !handlers.rateLimiter.Allow(clientIP) {
			handlers.logger.Warnf("Rate limit exceeded for IP: %s", clientIP)
			context.Header("X-RateLimit-Limit", strconv.Itoa(handlers.rateLimiter.Configuration.RateLimitRequests))
			context.Header("X-RateLimit-Remaining", "0")
			context.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(handlers.rateLimiter.Configuration.RateLimitWindow).Unix(), 10))
			context.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			context.Abort()
			return
		}

		context.Next()
	}
}
