package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Default BCU web service endpoints. They are GeneXus SOAP servlets published
// by the central bank and only change when the bank migrates infrastructure.
const (
	DefaultCurrenciesURL  = "https://cotizaciones.bcu.gub.uy/wscotizaciones/servlet/awsbcumonedas"
	DefaultQuotationsURL  = "https://cotizaciones.bcu.gub.uy/wscotizaciones/servlet/awsbcucotizaciones"
	DefaultLastClosingURL = "https://cotizaciones.bcu.gub.uy/wscotizaciones/servlet/awsultimocierre"
)

// Config holds all configuration for the application
type Config struct {
	Port     string
	LogLevel string

	// Upstream BCU services
	CurrenciesURL  string
	QuotationsURL  string
	LastClosingURL string

	// Group selects the quotation classification; 2 is "local exchange
	// rates", the only group this service queries.
	Group int

	// MaxLookbackDays bounds the historical window scanned when the
	// last-closing service cannot provide a date.
	MaxLookbackDays int

	UpstreamTimeout time.Duration
	RetryCount      int
	RetryDelay      time.Duration

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitBurst    int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:     getEnv("PORT", "8081"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		CurrenciesURL:  getEnv("BCU_CURRENCIES_URL", DefaultCurrenciesURL),
		QuotationsURL:  getEnv("BCU_QUOTATIONS_URL", DefaultQuotationsURL),
		LastClosingURL: getEnv("BCU_LAST_CLOSING_URL", DefaultLastClosingURL),

		Group:           mustAtoi(getEnv("BCU_GROUP", "2"), 2),
		MaxLookbackDays: mustAtoi(getEnv("MAX_LOOKBACK_DAYS", "31"), 31),

		UpstreamTimeout: time.Duration(mustAtoi(getEnv("UPSTREAM_TIMEOUT_SECONDS", "30"), 30)) * time.Second,
		RetryCount:      mustAtoi(getEnv("UPSTREAM_RETRY_COUNT", "3"), 3),
		RetryDelay:      time.Duration(mustAtoi(getEnv("UPSTREAM_RETRY_DELAY_SECONDS", "1"), 1)) * time.Second,

		RateLimitEnabled:  getEnv("RATE_LIMIT_ENABLED", "true") == "true",
		RateLimitRequests: mustAtoi(getEnv("RATE_LIMIT_REQUESTS", "100"), 100),
		RateLimitWindow:   time.Duration(mustAtoi(getEnv("RATE_LIMIT_WINDOW_SECONDS", "60"), 60)) * time.Second,
		RateLimitBurst:    mustAtoi(getEnv("RATE_LIMIT_BURST", "10"), 10),
	}, nil
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func mustAtoi(s string, fallback int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return i
}
