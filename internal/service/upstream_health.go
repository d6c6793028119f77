package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Alxzu/bcu-usd-billete/internal/config"
	"github.com/Alxzu/bcu-usd-billete/internal/logger"
)

// HealthChecker probes the upstream BCU services for the /health endpoint.
type HealthChecker struct {
	configuration *config.Config
	logger        *logger.Logger
	httpClient    *http.Client
}

// NewHealthChecker creates an upstream health checker.
func NewHealthChecker(configuration *config.Config, logger *logger.Logger) *HealthChecker {
	httpTransport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
		DisableCompression:  false,
	}
	return &HealthChecker{
		configuration: configuration,
		logger:        logger,
		httpClient:    &http.Client{Timeout: configuration.UpstreamTimeout, Transport: httpTransport},
	}
}

// HealthCheck asks the quotations servlet for its WSDL. A served document
// means the upstream is answering; no SOAP round-trip is spent on it.
func (healthChecker *HealthChecker) HealthCheck(ctx context.Context) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, healthChecker.configuration.QuotationsURL+"?wsdl", nil)
	if err != nil {
		return err
	}

	response, err := healthChecker.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("upstream health check failed with status: %d", response.StatusCode)
	}

	return nil
}
