package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Alxzu/bcu-usd-billete/internal/bcu"
	"github.com/Alxzu/bcu-usd-billete/internal/models"
	"github.com/Alxzu/bcu-usd-billete/internal/service"
	"github.com/Alxzu/bcu-usd-billete/internal/testutils"
)

type mockHealth struct {
	err error
}

func (m *mockHealth) HealthCheck(ctx context.Context) error {
	return m.err
}

type mockCurrencies struct {
	descriptor bcu.CurrencyDescriptor
	err        error
}

func (m *mockCurrencies) Resolve(ctx context.Context) (bcu.CurrencyDescriptor, error) {
	return m.descriptor, m.err
}

type mockRates struct {
	record *models.RateRecord
	err    error
}

func (m *mockRates) FetchForDate(ctx context.Context, currencyCode int, date models.Date) (*models.RateRecord, error) {
	return m.record, m.err
}

type mockLatest struct {
	record *models.RateRecord
	err    error
}

func (m *mockLatest) ResolveLatest(ctx context.Context, currencyCode int) (*models.RateRecord, error) {
	return m.record, m.err
}

func newTestHandlers(currencies *mockCurrencies, rates *mockRates, latest *mockLatest, health UpstreamHealth) *Handlers {
	ratesService := service.NewRatesServiceWith(testutils.MockConfig(), testutils.MockLogger(), currencies, rates, latest)
	return NewHandlers(HandlerConfig{
		Logger:       testutils.MockLogger(),
		RatesService: ratesService,
		Health:       health,
	})
}

func usdCurrencies() *mockCurrencies {
	return &mockCurrencies{descriptor: bcu.CurrencyDescriptor{Code: 2225, Name: "DLS. USA BILLETE"}}
}

func TestHandlers_HealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		healthErr  error
		wantStatus string
	}{
		{name: "upstream healthy", healthErr: nil, wantStatus: "healthy"},
		{name: "upstream unreachable", healthErr: errors.New("connection refused"), wantStatus: "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlers := newTestHandlers(usdCurrencies(), &mockRates{}, &mockLatest{}, &mockHealth{err: tt.healthErr})

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/health", nil)

			handlers.HealthCheck(c)

			if w.Code != http.StatusOK {
				t.Errorf("HealthCheck() status = %v, want %v", w.Code, http.StatusOK)
			}

			var response models.HealthCheck
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("HealthCheck() response unmarshal error = %v", err)
			}
			if response.Status != tt.wantStatus {
				t.Errorf("HealthCheck() status field = %q, want %q", response.Status, tt.wantStatus)
			}
			if response.Uptime == "" {
				t.Error("HealthCheck() response missing uptime")
			}
		})
	}
}

func TestHandlers_GetCurrency(t *testing.T) {
	handlers := newTestHandlers(usdCurrencies(), &mockRates{}, &mockLatest{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/v1/currency", nil)

	handlers.GetCurrency(c)

	if w.Code != http.StatusOK {
		t.Fatalf("GetCurrency() status = %v, want %v", w.Code, http.StatusOK)
	}

	var currency models.CurrencyInfo
	if err := json.Unmarshal(w.Body.Bytes(), &currency); err != nil {
		t.Fatalf("GetCurrency() response unmarshal error = %v", err)
	}
	if currency.Code != 2225 {
		t.Errorf("GetCurrency() code = %d, want 2225", currency.Code)
	}
}

func TestHandlers_GetCurrencyNotFound(t *testing.T) {
	handlers := newTestHandlers(&mockCurrencies{err: bcu.ErrCurrencyNotFound}, &mockRates{}, &mockLatest{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/v1/currency", nil)

	handlers.GetCurrency(c)

	if w.Code != http.StatusBadGateway {
		t.Errorf("GetCurrency() status = %v, want %v", w.Code, http.StatusBadGateway)
	}
}

func TestHandlers_GetRateForDate(t *testing.T) {
	tests := []struct {
		name      string
		dateParam string
		rates     *mockRates
		wantCode  int
	}{
		{
			name:      "record found",
			dateParam: "2024-03-15",
			rates:     &mockRates{record: testutils.MockRateRecord()},
			wantCode:  http.StatusOK,
		},
		{
			name:      "no data for date",
			dateParam: "2024-03-17",
			rates:     &mockRates{},
			wantCode:  http.StatusNotFound,
		},
		{
			name:      "invalid date",
			dateParam: "not-a-date",
			rates:     &mockRates{},
			wantCode:  http.StatusBadRequest,
		},
		{
			name:      "upstream error",
			dateParam: "2024-03-15",
			rates:     &mockRates{err: &bcu.UpstreamError{Code: 250, Message: "error interno"}},
			wantCode:  http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlers := newTestHandlers(usdCurrencies(), tt.rates, &mockLatest{}, nil)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/api/v1/rate/"+tt.dateParam, nil)
			c.Params = gin.Params{{Key: "date", Value: tt.dateParam}}

			handlers.GetRateForDate(c)

			if w.Code != tt.wantCode {
				t.Errorf("GetRateForDate() status = %v, want %v", w.Code, tt.wantCode)
			}
		})
	}
}

func TestHandlers_GetLatestRate(t *testing.T) {
	handlers := newTestHandlers(usdCurrencies(), &mockRates{}, &mockLatest{record: testutils.MockRateRecord()}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/v1/rate/latest", nil)

	handlers.GetLatestRate(c)

	if w.Code != http.StatusOK {
		t.Fatalf("GetLatestRate() status = %v, want %v", w.Code, http.StatusOK)
	}

	var record models.RateRecord
	if err := json.Unmarshal(w.Body.Bytes(), &record); err != nil {
		t.Fatalf("GetLatestRate() response unmarshal error = %v", err)
	}
	if record.Date.String() != "2024-03-15" {
		t.Errorf("GetLatestRate() date = %s, want 2024-03-15", record.Date)
	}
}

func TestHandlers_GetLatestRateEmptyWindow(t *testing.T) {
	handlers := newTestHandlers(usdCurrencies(), &mockRates{}, &mockLatest{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/v1/rate/latest", nil)

	handlers.GetLatestRate(c)

	if w.Code != http.StatusNotFound {
		t.Errorf("GetLatestRate() status = %v, want %v", w.Code, http.StatusNotFound)
	}
}

func TestSetupRoutesLegacyRedirects(t *testing.T) {
	handlers := newTestHandlers(usdCurrencies(), &mockRates{}, &mockLatest{}, nil)
	router := handlers.SetupRoutes()

	tests := []struct {
		path string
		want string
	}{
		{path: "/latest", want: "/api/v1/rate/latest"},
		{path: "/rate/2024-03-15", want: "/api/v1/rate/2024-03-15"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("GET", tt.path, nil))

			if w.Code != http.StatusMovedPermanently {
				t.Errorf("GET %s status = %v, want %v", tt.path, w.Code, http.StatusMovedPermanently)
			}
			if location := w.Header().Get("Location"); location != tt.want {
				t.Errorf("GET %s location = %q, want %q", tt.path, location, tt.want)
			}
		})
	}
}

func TestSetupRoutesServesMetrics(t *testing.T) {
	handlers := newTestHandlers(usdCurrencies(), &mockRates{}, &mockLatest{}, nil)
	router := handlers.SetupRoutes()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Errorf("GET /metrics status = %v, want %v", w.Code, http.StatusOK)
	}
}
