package bcu

import (
	"strconv"
	"strings"

	"github.com/Alxzu/bcu-usd-billete/internal/soap"
)

// The BCU services answer the same logical query with structurally different
// envelopes depending on deployed version and operation. All shape knowledge
// lives here; the fetchers only ever see flat record lists.

// recordShape names the extraction hypotheses for one operation's records:
// a wrapper element holding a repeated item, and an alternate outer wrapper
// some versions add around everything.
type recordShape struct {
	wrapper   string
	item      string
	alternate string
}

var (
	quotationShape = recordShape{wrapper: "datoscotizaciones", item: "datoscotizacion", alternate: "Salida"}
	currencyShape  = recordShape{wrapper: "Salida", item: "Moneda", alternate: "Salida"}
)

// record is one loosely-typed upstream row.
type record = map[string]soap.Value

// extractRecords tries each known envelope shape in a fixed priority order
// and returns the first non-empty record list. No match yields an empty list,
// not an error: whether absence means "no data" or "broken response" is
// decided by the caller from the status envelope.
func extractRecords(response soap.Value, shape recordShape) []record {
	if response == nil {
		return nil
	}

	// Wrapped array under the expected key, possibly inside the alternate
	// outer wrapper.
	for _, root := range []soap.Value{response, childValue(response, shape.alternate)} {
		if wrapper := childValue(root, shape.wrapper); wrapper != nil {
			if records := asRecords(childValue(wrapper, shape.item)); len(records) > 0 {
				return records
			}
			// Some versions put the rows directly under the wrapper.
			if records := asRecords(wrapper); len(records) > 0 {
				return records
			}
		}
		// Or skip the wrapper element entirely.
		if records := asRecords(childValue(root, shape.item)); len(records) > 0 {
			return records
		}
	}

	// Top-level array.
	if list, isList := response.([]soap.Value); isList {
		if records := asRecords(list); len(records) > 0 {
			return records
		}
	}

	// A mapping whose values are the records. Envelope and status elements
	// are record-shaped too and must not be mistaken for rows.
	if mapping, isMap := response.(record); isMap {
		var records []record
		for key, value := range mapping {
			if key == shape.wrapper || key == shape.alternate || key == "respuestastatus" {
				continue
			}
			if row, isRecord := value.(record); isRecord {
				records = append(records, row)
			}
		}
		if len(records) > 0 {
			return records
		}
	}

	return nil
}

// asRecords flattens a value into a record list. A single-date query delivers
// its one row as a lone object instead of a one-element list; that object is
// wrapped, never iterated field-by-field.
func asRecords(value soap.Value) []record {
	switch typed := value.(type) {
	case []soap.Value:
		records := make([]record, 0, len(typed))
		for _, item := range typed {
			if row, isRecord := item.(record); isRecord {
				records = append(records, row)
			}
		}
		return records
	case record:
		return []record{typed}
	default:
		return nil
	}
}

// serviceStatus is the status triple carried inside a response envelope.
type serviceStatus struct {
	errorCode int
	message   string
}

// statusPaths are tried in order when locating the status element.
var statusPaths = [][]string{
	{"Salida", "respuestastatus"},
	{"respuestastatus"},
	{},
}

// extractStatus locates the response status. A missing status element is
// treated as success: older envelopes only carry one on failure.
func extractStatus(response soap.Value) serviceStatus {
	for _, path := range statusPaths {
		node := response
		for _, key := range path {
			node = childValue(node, key)
		}
		mapping, isMap := node.(record)
		if !isMap {
			continue
		}
		code, exists := mapping["codigoerror"]
		if !exists {
			continue
		}
		return serviceStatus{
			errorCode: intField(code),
			message:   stringValue(mapping["mensaje"]),
		}
	}
	return serviceStatus{}
}

func childValue(value soap.Value, key string) soap.Value {
	if key == "" {
		return nil
	}
	if mapping, isMap := value.(record); isMap {
		return mapping[key]
	}
	return nil
}

func stringValue(value soap.Value) string {
	text, isString := value.(string)
	if !isString {
		return ""
	}
	return strings.TrimSpace(text)
}

func intField(value soap.Value) int {
	parsed, err := strconv.Atoi(stringValue(value))
	if err != nil {
		return 0
	}
	return parsed
}
