package testutils

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Alxzu/bcu-usd-billete/internal/config"
	"github.com/Alxzu/bcu-usd-billete/internal/logger"
	"github.com/Alxzu/bcu-usd-billete/internal/models"
)

// MockLogger creates a silent logger for testing
func MockLogger() *logger.Logger {
	return logger.Discard()
}

// MockConfig creates a mock configuration for testing
func MockConfig() *config.Config {
	return &config.Config{
		Port:     "8081",
		LogLevel: "debug",

		CurrenciesURL:  "http://localhost:9000/awsbcumonedas",
		QuotationsURL:  "http://localhost:9000/awsbcucotizaciones",
		LastClosingURL: "http://localhost:9000/awsultimocierre",

		Group:           2,
		MaxLookbackDays: 31,

		UpstreamTimeout: 5 * time.Second,
		RetryCount:      1,
		RetryDelay:      time.Millisecond,

		RateLimitEnabled:  true,
		RateLimitRequests: 100,
		RateLimitWindow:   60 * time.Second,
		RateLimitBurst:    10,
	}
}

// MockRateRecord creates a canonical rate record for testing
func MockRateRecord() *models.RateRecord {
	arbitrage := decimal.RequireFromString("1.0817")
	return &models.RateRecord{
		Date:            models.NewDate(2024, time.March, 15),
		Currency:        "DLS. USA BILLETE",
		ISOCode:         "USD",
		Issuer:          "EE.UU.",
		Buy:             decimal.RequireFromString("38.55"),
		Sell:            decimal.RequireFromString("40.95"),
		Arbitrage:       &arbitrage,
		ArbitrageMethod: "MULTIPLICAR",
	}
}

// MockCurrencyInfo creates the resolved USD cash catalog entry for testing
func MockCurrencyInfo() models.CurrencyInfo {
	return models.CurrencyInfo{Code: 2225, Name: "DLS. USA BILLETE"}
}

// MockContext creates a mock context for testing
func MockContext() context.Context {
	return context.Background()
}

// MockContextWithTimeout creates a mock context with timeout for testing
func MockContextWithTimeout(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}
