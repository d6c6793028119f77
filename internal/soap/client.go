package soap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Alxzu/bcu-usd-billete/internal/logger"
	"github.com/Alxzu/bcu-usd-billete/internal/metrics"
)

var errMalformedResponse = errors.New("malformed SOAP response")

// Fault is a SOAP fault reported by the upstream servlet.
type Fault struct {
	Code   string
	Reason string
}

func (fault *Fault) Error() string {
	return fmt.Sprintf("soap fault %s: %s", fault.Code, fault.Reason)
}

// statusError is a non-2xx HTTP answer from the servlet. It usually means the
// operation name does not exist on this deployment, so Invoke moves on to the
// next candidate.
type statusError struct {
	code int
}

func (statusError *statusError) Error() string {
	return fmt.Sprintf("upstream returned HTTP %d", statusError.code)
}

// Options configures client construction and per-call behavior.
type Options struct {
	Timeout    time.Duration
	RetryCount int
	RetryDelay time.Duration
}

// Client invokes operations on one BCU servlet endpoint. A Client is
// immutable after construction and safe for concurrent use.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *logger.Logger
}

// Pool hands out one Client per endpoint, creating it on first use. Creation
// probes the servlet and is the only layer that retries; the map is guarded
// so concurrent first requests build a single client.
type Pool struct {
	options Options
	logger  *logger.Logger

	mu      sync.Mutex
	clients map[string]*Client
}

// NewPool creates a client pool with the given dial options.
func NewPool(options Options, logger *logger.Logger) *Pool {
	return &Pool{
		options: options,
		logger:  logger,
		clients: make(map[string]*Client),
	}
}

// Get returns the cached client for the endpoint, dialing it if needed.
func (pool *Pool) Get(ctx context.Context, endpoint string) (*Client, error) {
	pool.mu.Lock()
	defer pool.mu.Unlock()

	if client, exists := pool.clients[endpoint]; exists {
		return client, nil
	}

	client, err := dial(ctx, endpoint, pool.options, pool.logger)
	if err != nil {
		return nil, err
	}
	pool.clients[endpoint] = client
	return client, nil
}

// dial verifies the servlet answers before handing out a client. GeneXus
// servlets publish their WSDL on a plain GET, which makes a cheap reachability
// probe. Transient connection failures are retried with exponential backoff.
func dial(ctx context.Context, endpoint string, options Options, logger *logger.Logger) (*Client, error) {
	httpClient := &http.Client{Timeout: options.Timeout}

	attempts := options.RetryCount
	if attempts < 1 {
		attempts = 1
	}

	delay := options.RetryDelay
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			logger.Warnf("Retrying connection to %s (attempt %d/%d): %v", endpoint, attempt, attempts, lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		if lastErr = probe(ctx, httpClient, endpoint); lastErr == nil {
			return &Client{
				endpoint:   endpoint,
				httpClient: httpClient,
				logger:     logger,
			}, nil
		}
	}

	return nil, fmt.Errorf("dial %s: %w", endpoint, lastErr)
}

// probe checks that the servlet is reachable and serving.
func probe(ctx context.Context, httpClient *http.Client, endpoint string) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?wsdl", nil)
	if err != nil {
		return err
	}

	response, err := httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode >= http.StatusInternalServerError {
		return &statusError{code: response.StatusCode}
	}
	return nil
}

// Invoke tries each candidate operation name in order and returns the decoded
// body of the first one that answers cleanly. The same logical operation is
// published under different names across BCU deployments, so a SOAP fault, a
// non-2xx status or an undecodable body means "try the next name". Exhausting
// every candidate yields (nil, nil); network failures abort immediately.
func (client *Client) Invoke(ctx context.Context, candidates []string, params Params) (Value, error) {
	for _, operation := range candidates {
		started := time.Now()
		value, err := client.call(ctx, operation, params)
		if err != nil {
			if retriable(err) {
				metrics.UpstreamRequests.WithLabelValues(operation, "rejected").Inc()
				client.logger.Debugf("Operation %s rejected on %s, trying next candidate: %v", operation, client.endpoint, err)
				continue
			}
			metrics.UpstreamRequests.WithLabelValues(operation, "error").Inc()
			return nil, fmt.Errorf("invoke %s on %s: %w", operation, client.endpoint, err)
		}
		metrics.UpstreamRequests.WithLabelValues(operation, "ok").Inc()
		metrics.UpstreamLatency.WithLabelValues(operation).Observe(time.Since(started).Seconds())
		return value, nil
	}
	return nil, nil
}

// retriable reports whether the failure is specific to the attempted
// operation name rather than the network path.
func retriable(err error) bool {
	var fault *Fault
	if errors.As(err, &fault) {
		return true
	}
	var status *statusError
	if errors.As(err, &status) {
		return true
	}
	return errors.Is(err, errMalformedResponse)
}

func (client *Client) call(ctx context.Context, operation string, params Params) (Value, error) {
	envelope, err := buildEnvelope(operation, params)
	if err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, client.endpoint, strings.NewReader(envelope))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "text/xml; charset=utf-8")
	request.Header.Set("SOAPAction", operation)

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	// Servlets answer faults with 500 and a fault body; decode those before
	// giving up on the status code.
	if response.StatusCode != http.StatusOK && response.StatusCode != http.StatusInternalServerError {
		return nil, &statusError{code: response.StatusCode}
	}

	value, err := decodeBody(response.Body)
	if err != nil {
		return nil, err
	}
	if response.StatusCode != http.StatusOK && value == nil {
		return nil, &statusError{code: response.StatusCode}
	}
	return value, nil
}

func buildEnvelope(operation string, params Params) (string, error) {
	var body strings.Builder
	body.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	body.WriteString(`<SOAP-ENV:Envelope xmlns:SOAP-ENV="http://schemas.xmlsoap.org/soap/envelope/"><SOAP-ENV:Body>`)
	body.WriteString(`<m:`)
	body.WriteString(operation)
	body.WriteString(` xmlns:m="BCU">`)
	if err := params.appendXML(&body); err != nil {
		return "", err
	}
	body.WriteString(`</m:`)
	body.WriteString(operation)
	body.WriteString(`></SOAP-ENV:Body></SOAP-ENV:Envelope>`)
	return body.String(), nil
}
