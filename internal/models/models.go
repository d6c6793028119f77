package models

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Date is a calendar date without a time-of-day component. BCU quotations are
// keyed by business day, so everything downstream compares whole days in UTC.
type Date struct{ time.Time }

// NewDate builds a Date at UTC midnight.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current date in UTC.
func Today() Date {
	return DateOf(time.Now())
}

// DateOf truncates an instant to its UTC calendar date.
func DateOf(t time.Time) Date {
	tt := t.UTC()
	return NewDate(tt.Year(), tt.Month(), tt.Day())
}

// ParseDate parses a YYYY-MM-DD string. Upstream sometimes appends a
// timestamp ("2023-12-29T00:00:00"), so anything past the date part is
// ignored.
func ParseDate(value string) (Date, error) {
	s := strings.TrimSpace(value)
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return DateOf(t), nil
}

// AddDays returns the date shifted by the given number of days.
func (d Date) AddDays(days int) Date {
	return DateOf(d.Time.AddDate(0, 0, days))
}

// Equal reports whether two dates fall on the same calendar day.
func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}

// After reports whether d is a later calendar day than other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Time.Format(dateLayout)
}

func (d *Date) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}
	s := strings.Trim(string(b), "\"")
	if strings.TrimSpace(s) == "" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = parsed.Time
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("%q", d.String())), nil
}

// RateRecord is one settled quotation for one currency on one business day,
// already normalized from whichever envelope shape the upstream used.
type RateRecord struct {
	Date            Date             `json:"date"`
	Currency        string           `json:"currency"`
	ISOCode         string           `json:"iso_code,omitempty"`
	Issuer          string           `json:"issuer,omitempty"`
	Buy             decimal.Decimal  `json:"buy"`
	Sell            decimal.Decimal  `json:"sell"`
	Arbitrage       *decimal.Decimal `json:"arbitrage,omitempty"`
	ArbitrageMethod string           `json:"arbitrage_method,omitempty"`
}

// CurrencyInfo identifies a currency in the BCU catalog.
type CurrencyInfo struct {
	Code int    `json:"code"`
	Name string `json:"name"`
}

// HealthCheck represents the health check response
type HealthCheck struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}
