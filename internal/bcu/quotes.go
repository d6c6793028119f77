package bcu

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Alxzu/bcu-usd-billete/internal/logger"
	"github.com/Alxzu/bcu-usd-billete/internal/models"
	"github.com/Alxzu/bcu-usd-billete/internal/soap"
)

// RateFetcher queries the quotations service and turns its loosely-shaped
// answers into canonical rate records.
type RateFetcher struct {
	invoker Invoker
	group   int
	logger  *logger.Logger
}

// NewRateFetcher creates a rate fetcher bound to one quotation group.
func NewRateFetcher(invoker Invoker, group int, logger *logger.Logger) *RateFetcher {
	return &RateFetcher{
		invoker: invoker,
		group:   group,
		logger:  logger,
	}
}

// FetchForDate returns the rate record for one currency on one business day,
// or nil when the upstream has no data for that date (sentinel 100: weekend
// or holiday). Any other non-zero status becomes an UpstreamError.
func (fetcher *RateFetcher) FetchForDate(ctx context.Context, currencyCode int, date models.Date) (*models.RateRecord, error) {
	records, err := fetcher.FetchRange(ctx, currencyCode, date, date)
	if err != nil {
		return nil, err
	}

	// A single query can return rows for adjacent dates or other currencies
	// depending on service version; never trust the response to hold exactly
	// the requested row.
	for i := range records {
		if records[i].Date.Equal(date) {
			return &records[i], nil
		}
	}
	return nil, nil
}

// FetchRange returns every record for the currency inside [from, to],
// in upstream order.
func (fetcher *RateFetcher) FetchRange(ctx context.Context, currencyCode int, from, to models.Date) ([]models.RateRecord, error) {
	response, err := fetcher.invoker.Invoke(ctx, quotationOperations, soap.Params{
		{Name: "Entrada", Value: soap.Params{
			{Name: "Moneda", Value: []int{currencyCode}},
			{Name: "FechaDesde", Value: from.String()},
			{Name: "FechaHasta", Value: to.String()},
			{Name: "Grupo", Value: fetcher.group},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch quotations: %w", err)
	}

	status := extractStatus(response)
	if status.errorCode == noDataErrorCode {
		fetcher.logger.Debugf("No quotations for %s..%s (upstream code %d)", from, to, status.errorCode)
		return nil, nil
	}
	if status.errorCode != 0 {
		return nil, &UpstreamError{Code: status.errorCode, Message: status.message}
	}

	rows := extractRecords(response, quotationShape)
	if len(rows) == 0 {
		// Status said success but no shape matched: distinguishable in logs
		// from a legitimate empty day, folded into "no record" for callers.
		fetcher.logger.Warnf("Quotation response for %s..%s matched no known envelope shape", from, to)
		return nil, nil
	}

	records := make([]models.RateRecord, 0, len(rows))
	for _, row := range rows {
		if intField(row["Moneda"]) != currencyCode {
			continue
		}
		parsed, err := parseRecord(row)
		if err != nil {
			return nil, fmt.Errorf("parse quotation row: %w", err)
		}
		records = append(records, parsed)
	}
	return records, nil
}

// parseRecord coerces one upstream row. Rates that fail numeric coercion or
// come back negative are defects to surface, never rows to drop.
func parseRecord(row record) (models.RateRecord, error) {
	date, err := models.ParseDate(stringValue(row["Fecha"]))
	if err != nil {
		return models.RateRecord{}, err
	}

	buy, err := parseRate("TCC", row["TCC"])
	if err != nil {
		return models.RateRecord{}, err
	}
	sell, err := parseRate("TCV", row["TCV"])
	if err != nil {
		return models.RateRecord{}, err
	}

	parsed := models.RateRecord{
		Date:            date,
		Currency:        stringValue(row["Nombre"]),
		ISOCode:         stringValue(row["CodigoISO"]),
		Issuer:          stringValue(row["Emisor"]),
		Buy:             buy,
		Sell:            sell,
		ArbitrageMethod: stringValue(row["FormaArbitrar"]),
	}

	if text := stringValue(row["ArbAct"]); text != "" {
		arbitrage, err := decimal.NewFromString(text)
		if err != nil {
			return models.RateRecord{}, fmt.Errorf("field ArbAct: %w", err)
		}
		parsed.Arbitrage = &arbitrage
	}

	return parsed, nil
}

func parseRate(field string, value soap.Value) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(stringValue(value))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("field %s: %w", field, err)
	}
	if rate.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("field %s: negative rate %s", field, rate)
	}
	return rate, nil
}
