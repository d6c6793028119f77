package service

import (
	"context"

	"github.com/Alxzu/bcu-usd-billete/internal/bcu"
	"github.com/Alxzu/bcu-usd-billete/internal/config"
	"github.com/Alxzu/bcu-usd-billete/internal/logger"
	"github.com/Alxzu/bcu-usd-billete/internal/models"
	"github.com/Alxzu/bcu-usd-billete/internal/soap"
)

// CurrencyResolver locates the USD-cash entry in the upstream catalog.
type CurrencyResolver interface {
	Resolve(ctx context.Context) (bcu.CurrencyDescriptor, error)
}

// RateFetcher answers dated quotation lookups.
type RateFetcher interface {
	FetchForDate(ctx context.Context, currencyCode int, date models.Date) (*models.RateRecord, error)
}

// LatestResolver answers "most recent closing rate" lookups.
type LatestResolver interface {
	ResolveLatest(ctx context.Context, currencyCode int) (*models.RateRecord, error)
}

// lookups bundles the three ports the façade serves from.
type lookups struct {
	currencies CurrencyResolver
	rates      RateFetcher
	latest     LatestResolver
}

// buildLookups dials the three BCU endpoints and wires the lookup core over
// them. Dialing retries per the configured policy; a service that stays
// unreachable through every attempt fails startup.
func buildLookups(ctx context.Context, configuration *config.Config, logger *logger.Logger) (lookups, error) {
	pool := soap.NewPool(soap.Options{
		Timeout:    configuration.UpstreamTimeout,
		RetryCount: configuration.RetryCount,
		RetryDelay: configuration.RetryDelay,
	}, logger)

	currencies, err := pool.Get(ctx, configuration.CurrenciesURL)
	if err != nil {
		return lookups{}, err
	}
	quotations, err := pool.Get(ctx, configuration.QuotationsURL)
	if err != nil {
		return lookups{}, err
	}
	closing, err := pool.Get(ctx, configuration.LastClosingURL)
	if err != nil {
		return lookups{}, err
	}

	fetcher := bcu.NewRateFetcher(quotations, configuration.Group, logger)
	return lookups{
		currencies: bcu.NewCurrencyResolver(currencies, logger),
		rates:      fetcher,
		latest:     bcu.NewLatestResolver(closing, fetcher, configuration.MaxLookbackDays, logger),
	}, nil
}
