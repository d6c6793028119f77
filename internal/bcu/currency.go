package bcu

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/Alxzu/bcu-usd-billete/internal/logger"
	"github.com/Alxzu/bcu-usd-billete/internal/soap"
)

// CurrencyResolver locates the catalog entry for USD cash ("dólar billete")
// among whatever names the upstream currently publishes.
type CurrencyResolver struct {
	invoker Invoker
	logger  *logger.Logger
}

// NewCurrencyResolver creates a currency resolver over the currencies service.
func NewCurrencyResolver(invoker Invoker, logger *logger.Logger) *CurrencyResolver {
	return &CurrencyResolver{
		invoker: invoker,
		logger:  logger,
	}
}

// Resolve fetches the currency catalog and returns the USD-cash descriptor.
func (resolver *CurrencyResolver) Resolve(ctx context.Context) (CurrencyDescriptor, error) {
	response, err := resolver.invoker.Invoke(ctx, currencyOperations, soap.Params{
		{Name: "Entrada", Value: soap.Params{{Name: "Grupo", Value: 0}}},
	})
	if err != nil {
		return CurrencyDescriptor{}, fmt.Errorf("fetch currency catalog: %w", err)
	}

	descriptors := parseDescriptors(response)
	return resolver.match(descriptors)
}

func parseDescriptors(response soap.Value) []CurrencyDescriptor {
	records := extractRecords(response, currencyShape)
	descriptors := make([]CurrencyDescriptor, 0, len(records))
	for _, row := range records {
		name := stringValue(row["Nombre"])
		if name == "" {
			continue
		}
		descriptors = append(descriptors, CurrencyDescriptor{
			Code: intField(row["Codigo"]),
			Name: name,
		})
	}
	return descriptors
}

// usdNeedles match against the diacritic-stripped, upper-cased name.
var usdNeedles = []string{"DOLAR USA", "DLS USA", "DLS. USA"}

// match applies the USD-cash heuristic: a descriptor is a candidate when its
// normalized name contains one of the known spellings, or when its raw name
// contains the literal "DLS. USA" (kept as a second check in case a locale
// variant ever folds the period away during normalization). Among candidates
// the cash denomination wins; otherwise upstream order decides.
func (resolver *CurrencyResolver) match(descriptors []CurrencyDescriptor) (CurrencyDescriptor, error) {
	var candidates []CurrencyDescriptor
	for _, descriptor := range descriptors {
		normalized := normalizeName(descriptor.Name)
		if containsAny(normalized, usdNeedles) || strings.Contains(descriptor.Name, "DLS. USA") {
			candidates = append(candidates, descriptor)
		}
	}

	if len(candidates) == 0 {
		names := make([]string, len(descriptors))
		for i, descriptor := range descriptors {
			names[i] = descriptor.Name
		}
		resolver.logger.WithField("considered", names).Error("No USD cash candidate in upstream currency catalog")
		return CurrencyDescriptor{}, ErrCurrencyNotFound
	}

	for _, candidate := range candidates {
		normalized := normalizeName(candidate.Name)
		if strings.Contains(normalized, "BILLETE") || strings.Contains(normalized, "CASH") {
			return candidate, nil
		}
	}
	return candidates[0], nil
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}

var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeName strips diacritics, upper-cases and trims a display name.
func normalizeName(name string) string {
	stripped, _, err := transform.String(stripDiacritics, name)
	if err != nil {
		stripped = name
	}
	return strings.ToUpper(strings.TrimSpace(stripped))
}
