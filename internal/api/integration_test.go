package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Alxzu/bcu-usd-billete/internal/models"
	"github.com/Alxzu/bcu-usd-billete/internal/ratelimit"
	"github.com/Alxzu/bcu-usd-billete/internal/service"
	"github.com/Alxzu/bcu-usd-billete/internal/testutils"
)

// newIntegrationRouter wires the real service stack against a mock BCU
// upstream and returns the assembled router.
func newIntegrationRouter(t *testing.T, mockServer *testutils.MockBCUServer) http.Handler {
	t.Helper()

	cfg := testutils.MockConfigWithServer(mockServer.URL())
	log := testutils.MockLogger()

	ratesService, err := service.NewRatesService(context.Background(), cfg, log)
	if err != nil {
		t.Fatalf("NewRatesService() error = %v", err)
	}

	handlers := NewHandlers(HandlerConfig{
		Logger:       log,
		RatesService: ratesService,
		Health:       service.NewHealthChecker(cfg, log),
	})
	return handlers.SetupRoutes()
}

func TestIntegration_LatestRateEndpoint(t *testing.T) {
	mockServer := testutils.NewMockBCUServer()
	defer mockServer.Close()
	router := newIntegrationRouter(t, mockServer)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/rate/latest", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/v1/rate/latest status = %v, want %v: %s", w.Code, http.StatusOK, w.Body)
	}

	var record models.RateRecord
	if err := json.Unmarshal(w.Body.Bytes(), &record); err != nil {
		t.Fatalf("response unmarshal error = %v", err)
	}
	if record.Date.String() != "2024-03-15" || record.Buy.String() != "38.55" {
		t.Errorf("latest record = %+v, want 2024-03-15 buy 38.55", record)
	}
}

func TestIntegration_RateForDateEndpoint(t *testing.T) {
	mockServer := testutils.NewMockBCUServer()
	defer mockServer.Close()
	router := newIntegrationRouter(t, mockServer)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/rate/2024-03-15", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/v1/rate/2024-03-15 status = %v, want %v: %s", w.Code, http.StatusOK, w.Body)
	}
}

func TestIntegration_HolidayReturns404(t *testing.T) {
	mockServer := testutils.NewMockBCUServer()
	defer mockServer.Close()

	mockServer.SetResponse(testutils.QuotationsPath, testutils.NoDataQuotationsXML)
	router := newIntegrationRouter(t, mockServer)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/rate/2024-03-17", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("holiday lookup status = %v, want %v", w.Code, http.StatusNotFound)
	}
}

func TestIntegration_HealthEndpoint(t *testing.T) {
	mockServer := testutils.NewMockBCUServer()
	defer mockServer.Close()
	router := newIntegrationRouter(t, mockServer)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("GET /health status = %v, want %v", w.Code, http.StatusOK)
	}

	var health models.HealthCheck
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatalf("response unmarshal error = %v", err)
	}
	if health.Status != "healthy" {
		t.Errorf("health status = %q, want healthy", health.Status)
	}
}

// Concurrent requests share no mutable state; run with -race.
func TestIntegration_ConcurrentRequests(t *testing.T) {
	mockServer := testutils.NewMockBCUServer()
	defer mockServer.Close()
	router := newIntegrationRouter(t, mockServer)

	paths := []string{
		"/api/v1/rate/latest",
		"/api/v1/rate/2024-03-15",
		"/api/v1/currency",
		"/health",
	}

	var waitGroup sync.WaitGroup
	for i := 0; i < 12; i++ {
		path := paths[i%len(paths)]
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
			if w.Code != http.StatusOK {
				t.Errorf("GET %s status = %v, want %v", path, w.Code, http.StatusOK)
			}
		}()
	}
	waitGroup.Wait()
}

func TestIntegration_RateLimiting(t *testing.T) {
	mockServer := testutils.NewMockBCUServer()
	defer mockServer.Close()

	cfg := testutils.MockConfigWithServer(mockServer.URL())
	cfg.RateLimitBurst = 2
	log := testutils.MockLogger()

	ratesService, err := service.NewRatesService(context.Background(), cfg, log)
	if err != nil {
		t.Fatalf("NewRatesService() error = %v", err)
	}
	limiter := ratelimit.NewLimiter(cfg, log)
	defer limiter.Stop()

	handlers := NewHandlers(HandlerConfig{
		Logger:       log,
		RatesService: ratesService,
		RateLimiter:  limiter,
	})
	router := handlers.SetupRoutes()

	var limited bool
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		request := httptest.NewRequest("GET", "/health", nil)
		request.RemoteAddr = "10.0.0.9:4321"
		router.ServeHTTP(w, request)
		if w.Code == http.StatusTooManyRequests {
			limited = true
		}
	}
	if !limited {
		t.Error("no request was rate limited after exhausting the burst")
	}
}
