package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Save original environment
	originalEnv := make(map[string]string)
	for _, key := range []string{
		"PORT", "LOG_LEVEL",
		"BCU_CURRENCIES_URL", "BCU_QUOTATIONS_URL", "BCU_LAST_CLOSING_URL",
		"BCU_GROUP", "MAX_LOOKBACK_DAYS",
		"UPSTREAM_TIMEOUT_SECONDS", "UPSTREAM_RETRY_COUNT", "UPSTREAM_RETRY_DELAY_SECONDS",
		"RATE_LIMIT_ENABLED", "RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW_SECONDS", "RATE_LIMIT_BURST",
	} {
		originalEnv[key] = os.Getenv(key)
		os.Unsetenv(key)
	}

	// Clean up after test
	defer func() {
		for key, value := range originalEnv {
			if value == "" {
				os.Unsetenv(key)
			} else {
				os.Setenv(key, value)
			}
		}
	}()

	tests := []struct {
		name     string
		envVars  map[string]string
		expected func(*Config) bool
	}{
		{
			name:    "default configuration",
			envVars: map[string]string{},
			expected: func(cfg *Config) bool {
				return cfg.Port == "8081" &&
					cfg.LogLevel == "info" &&
					cfg.CurrenciesURL == DefaultCurrenciesURL &&
					cfg.QuotationsURL == DefaultQuotationsURL &&
					cfg.LastClosingURL == DefaultLastClosingURL &&
					cfg.Group == 2 &&
					cfg.MaxLookbackDays == 31 &&
					cfg.UpstreamTimeout == 30*time.Second &&
					cfg.RetryCount == 3 &&
					cfg.RetryDelay == 1*time.Second &&
					cfg.RateLimitEnabled == true &&
					cfg.RateLimitRequests == 100 &&
					cfg.RateLimitWindow == 60*time.Second &&
					cfg.RateLimitBurst == 10
			},
		},
		{
			name: "custom configuration",
			envVars: map[string]string{
				"PORT":                         "9090",
				"LOG_LEVEL":                    "debug",
				"BCU_CURRENCIES_URL":           "http://localhost:9000/monedas",
				"BCU_QUOTATIONS_URL":           "http://localhost:9000/cotizaciones",
				"BCU_LAST_CLOSING_URL":         "http://localhost:9000/cierre",
				"BCU_GROUP":                    "1",
				"MAX_LOOKBACK_DAYS":            "14",
				"UPSTREAM_TIMEOUT_SECONDS":     "5",
				"UPSTREAM_RETRY_COUNT":         "5",
				"UPSTREAM_RETRY_DELAY_SECONDS": "2",
				"RATE_LIMIT_ENABLED":           "false",
			},
			expected: func(cfg *Config) bool {
				return cfg.Port == "9090" &&
					cfg.LogLevel == "debug" &&
					cfg.CurrenciesURL == "http://localhost:9000/monedas" &&
					cfg.QuotationsURL == "http://localhost:9000/cotizaciones" &&
					cfg.LastClosingURL == "http://localhost:9000/cierre" &&
					cfg.Group == 1 &&
					cfg.MaxLookbackDays == 14 &&
					cfg.UpstreamTimeout == 5*time.Second &&
					cfg.RetryCount == 5 &&
					cfg.RetryDelay == 2*time.Second &&
					cfg.RateLimitEnabled == false
			},
		},
		{
			name: "malformed numeric falls back to default",
			envVars: map[string]string{
				"BCU_GROUP":         "local",
				"MAX_LOOKBACK_DAYS": "a month",
			},
			expected: func(cfg *Config) bool {
				return cfg.Group == 2 && cfg.MaxLookbackDays == 31
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key := range originalEnv {
				os.Unsetenv(key)
			}
			for key, value := range tt.envVars {
				os.Setenv(key, value)
			}

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}

			if !tt.expected(cfg) {
				t.Errorf("Load() configuration does not match expected values: %+v", cfg)
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		fallback string
		envValue string
		expected string
	}{
		{
			name:     "environment variable exists",
			key:      "TEST_VAR",
			fallback: "default",
			envValue: "env_value",
			expected: "env_value",
		},
		{
			name:     "environment variable does not exist",
			key:      "NONEXISTENT_VAR",
			fallback: "default",
			envValue: "",
			expected: "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			result := getEnv(tt.key, tt.fallback)
			if result != tt.expected {
				t.Errorf("getEnv() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustAtoi(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		fallback int
		expected int
	}{
		{
			name:     "valid integer",
			input:    "123",
			fallback: 7,
			expected: 123,
		},
		{
			name:     "invalid integer",
			input:    "abc",
			fallback: 7,
			expected: 7,
		},
		{
			name:     "empty string",
			input:    "",
			fallback: 31,
			expected: 31,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := mustAtoi(tt.input, tt.fallback)
			if result != tt.expected {
				t.Errorf("mustAtoi() = %v, want %v", result, tt.expected)
			}
		})
	}
}
