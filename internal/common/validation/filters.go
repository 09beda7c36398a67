// internal/common/validation/filters.go
package validation

// FilterSetSchema describes a FilterSet (and the storage-only query
// fields) on the wire.
var FilterSetSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"make":         map[string]interface{}{"type": "string"},
		"model":        map[string]interface{}{"type": "string"},
		"body_type":    map[string]interface{}{"type": "string"},
		"fuel_type":    map[string]interface{}{"type": "string"},
		"state":        map[string]interface{}{"type": "string", "pattern": "^[A-Z]{2}$"},
		"year_min":     map[string]interface{}{"type": "integer"},
		"year_max":     map[string]interface{}{"type": "integer"},
		"price_max":    map[string]interface{}{"type": "integer", "minimum": 0},
		"limit":        map[string]interface{}{"type": "integer"},
		"transmission": map[string]interface{}{"type": "string"},
		"color":        map[string]interface{}{"type": "string"},
		"city":         map[string]interface{}{"type": "string"},
		"price_min":    map[string]interface{}{"type": "number", "minimum": 0},
		"mileage_max":  map[string]interface{}{"type": "integer", "minimum": 0},
	},
	"additionalProperties": false,
}

// QueryPayloadSchema is the payload of a "query" envelope. A missing
// filters object means no filters.
var QueryPayloadSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"filters": FilterSetSchema,
	},
}

var (
	filterSetValidator    = MustValidator(FilterSetSchema)
	queryPayloadValidator = MustValidator(QueryPayloadSchema)
)

// ValidateFilters checks a decoded filter map.
func ValidateFilters(doc interface{}) *ValidationResult {
	return filterSetValidator.Validate(doc)
}

// ValidateQueryPayload checks the raw payload of a query envelope.
func ValidateQueryPayload(raw []byte) *ValidationResult {
	return queryPayloadValidator.ValidateJSON(raw)
}
