package bcu

import (
	"errors"
	"fmt"
)

// noDataErrorCode is the upstream sentinel for "no quotation exists for the
// requested date" (holidays, weekends). It is a normal outcome, never an
// error, and must not be retried.
const noDataErrorCode = 100

// ErrCurrencyNotFound means no USD-cash candidate survived the full matching
// pass over the upstream currency catalog.
var ErrCurrencyNotFound = errors.New("USD cash currency not found in upstream catalog")

// UpstreamError is a non-zero, non-sentinel status reported inside a service
// response envelope. Code and message are preserved verbatim for diagnostics.
type UpstreamError struct {
	Code    int
	Message string
}

func (upstreamError *UpstreamError) Error() string {
	if upstreamError.Message == "" {
		return fmt.Sprintf("upstream error %d", upstreamError.Code)
	}
	return fmt.Sprintf("upstream error %d: %s", upstreamError.Code, upstreamError.Message)
}
