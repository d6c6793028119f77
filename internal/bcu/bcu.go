// Package bcu implements the rate-lookup core over the Banco Central del
// Uruguay SOAP services: envelope normalization, USD-cash currency
// resolution, dated quotation fetches and the two-phase latest-rate
// resolution.
package bcu

import (
	"context"

	"github.com/Alxzu/bcu-usd-billete/internal/soap"
)

// Invoker is the transport contract the lookup core depends on. The soap
// package's Client satisfies it; tests substitute canned responses.
type Invoker interface {
	Invoke(ctx context.Context, candidates []string, params soap.Params) (soap.Value, error)
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(ctx context.Context, candidates []string, params soap.Params) (soap.Value, error)

func (invoke InvokerFunc) Invoke(ctx context.Context, candidates []string, params soap.Params) (soap.Value, error) {
	return invoke(ctx, candidates, params)
}

// Each logical operation is published under different names across BCU
// deployments; candidates are tried in order.
var (
	currencyOperations    = []string{"Execute", "awsbcumonedas.Execute"}
	quotationOperations   = []string{"Execute", "awsbcucotizaciones.Execute"}
	lastClosingOperations = []string{"Execute", "awsultimocierre.Execute"}
)

// CurrencyDescriptor identifies one entry of the upstream currency catalog.
type CurrencyDescriptor struct {
	Code int
	Name string
}
