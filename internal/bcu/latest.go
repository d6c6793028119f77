package bcu

import (
	"context"
	"fmt"
	"sort"

	"github.com/Alxzu/bcu-usd-billete/internal/logger"
	"github.com/Alxzu/bcu-usd-billete/internal/metrics"
	"github.com/Alxzu/bcu-usd-billete/internal/models"
	"github.com/Alxzu/bcu-usd-billete/internal/soap"
)

// LatestResolver finds the most recent closing rate for a currency. The
// last-closing service gives the exact date in one cheap call but is the less
// reliable of the two, so a bounded scan of recent days backs it up.
type LatestResolver struct {
	closing      Invoker
	fetcher      *RateFetcher
	lookbackDays int
	logger       *logger.Logger

	// today is swappable for tests.
	today func() models.Date
}

// NewLatestResolver creates a latest-rate resolver. lookbackDays bounds the
// fallback window.
func NewLatestResolver(closing Invoker, fetcher *RateFetcher, lookbackDays int, logger *logger.Logger) *LatestResolver {
	return &LatestResolver{
		closing:      closing,
		fetcher:      fetcher,
		lookbackDays: lookbackDays,
		logger:       logger,
		today:        models.Today,
	}
}

// ResolveLatest returns the newest available record for the currency, or nil
// when no business day inside the lookback window produced one.
//
// Phase 1 asks the last-closing service for the exact date and fetches that
// single day. Every phase 1 failure, transport or otherwise, only degrades to
// phase 2. Phase 2 scans [today-lookback, today] in one quotations call and
// picks the newest record; its errors propagate.
func (resolver *LatestResolver) ResolveLatest(ctx context.Context, currencyCode int) (*models.RateRecord, error) {
	if record := resolver.fromLastClosing(ctx, currencyCode); record != nil {
		return record, nil
	}

	metrics.FallbackActivations.Inc()

	today := resolver.today()
	from := today.AddDays(-resolver.lookbackDays)
	records, err := resolver.fetcher.FetchRange(ctx, currencyCode, from, today)
	if err != nil {
		return nil, fmt.Errorf("lookback scan %s..%s: %w", from, today, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	// Date-typed comparison; the fixed-width ISO strings would happen to
	// sort the same way, but nothing here should rely on that.
	sort.Slice(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date)
	})
	return &records[0], nil
}

// fromLastClosing runs phase 1. It never returns an error: any failure is
// logged as a degradation and answered with nil so the scan takes over.
func (resolver *LatestResolver) fromLastClosing(ctx context.Context, currencyCode int) *models.RateRecord {
	date, err := resolver.lastClosingDate(ctx)
	if err != nil {
		resolver.logger.Warnf("Last-closing service degraded, falling back to lookback scan: %v", err)
		return nil
	}

	record, err := resolver.fetcher.FetchForDate(ctx, currencyCode, date)
	if err != nil {
		resolver.logger.Warnf("Fetch for last-closing date %s degraded, falling back to lookback scan: %v", date, err)
		return nil
	}
	if record == nil {
		resolver.logger.Debugf("Last-closing date %s carried no record for currency %d", date, currencyCode)
	}
	return record
}

func (resolver *LatestResolver) lastClosingDate(ctx context.Context) (models.Date, error) {
	response, err := resolver.closing.Invoke(ctx, lastClosingOperations, soap.Params{})
	if err != nil {
		return models.Date{}, err
	}

	for _, key := range []string{"Salida", "Fecha", "Ultimocierre"} {
		if child := childValue(response, key); child != nil {
			response = child
		}
	}
	text := stringValue(response)
	if text == "" {
		return models.Date{}, fmt.Errorf("last-closing response carried no date")
	}
	return models.ParseDate(text)
}
