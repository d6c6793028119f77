package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/Alxzu/bcu-usd-billete/internal/config"
	"github.com/Alxzu/bcu-usd-billete/internal/logger"
	"github.com/Alxzu/bcu-usd-billete/internal/models"
)

// RatesService is the lookup surface served to HTTP and CLI callers. It holds
// no cache: every answer is a live round-trip to the BCU services, with
// concurrent identical latest-rate lookups collapsed into one upstream chain.
type RatesService struct {
	configuration *config.Config
	logger        *logger.Logger
	lookups       lookups

	singleFlightGroup singleflight.Group
}

// NewRatesService dials the BCU services and builds the façade.
func NewRatesService(ctx context.Context, configuration *config.Config, logger *logger.Logger) (*RatesService, error) {
	built, err := buildLookups(ctx, configuration, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to BCU services: %w", err)
	}
	return &RatesService{
		configuration: configuration,
		logger:        logger,
		lookups:       built,
	}, nil
}

// NewRatesServiceWith builds the façade over explicit lookup implementations.
func NewRatesServiceWith(configuration *config.Config, logger *logger.Logger, currencies CurrencyResolver, rates RateFetcher, latest LatestResolver) *RatesService {
	return &RatesService{
		configuration: configuration,
		logger:        logger,
		lookups:       lookups{currencies: currencies, rates: rates, latest: latest},
	}
}

// GetCurrencyCode resolves the USD-cash catalog entry. The catalog is read
// fresh on every call; caching it is deliberately out of scope.
func (ratesService *RatesService) GetCurrencyCode(ctx context.Context) (models.CurrencyInfo, error) {
	descriptor, err := ratesService.lookups.currencies.Resolve(ctx)
	if err != nil {
		return models.CurrencyInfo{}, err
	}
	return models.CurrencyInfo{Code: descriptor.Code, Name: descriptor.Name}, nil
}

// GetRateForDate returns the record for one business day, or nil when the
// upstream has no data for it.
func (ratesService *RatesService) GetRateForDate(ctx context.Context, currencyCode int, date models.Date) (*models.RateRecord, error) {
	return ratesService.lookups.rates.FetchForDate(ctx, currencyCode, date)
}

// GetLatestRate returns the most recent available record, or nil when the
// whole lookback window is empty. Concurrent callers asking for the same
// currency share one resolution; nothing is kept once the flight lands.
func (ratesService *RatesService) GetLatestRate(ctx context.Context, currencyCode int) (*models.RateRecord, error) {
	key := fmt.Sprintf("latest:%d", currencyCode)
	result, err, shared := ratesService.singleFlightGroup.Do(key, func() (interface{}, error) {
		return ratesService.lookups.latest.ResolveLatest(ctx, currencyCode)
	})
	if shared {
		ratesService.logger.Debugf("Latest-rate lookup for currency %d shared an in-flight resolution", currencyCode)
	}
	if err != nil {
		return nil, err
	}
	return result.(*models.RateRecord), nil
}
