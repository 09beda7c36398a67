// internal/common/validation/envelope.go
package validation

// EnvelopeSchema is one JSON-Lines protocol message.
var EnvelopeSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"kind", "id", "payload"},
	"properties": map[string]interface{}{
		"protocol_mcp": map[string]interface{}{"enum": []interface{}{"mcp-min-0.1"}},
		"kind":         map[string]interface{}{"enum": []interface{}{"query", "result", "error"}},
		"id":           map[string]interface{}{"type": "string"},
		"payload":      map[string]interface{}{"type": "object"},
	},
}

var envelopeValidator = MustValidator(EnvelopeSchema)

// ValidateEnvelope checks one raw message line.
func ValidateEnvelope(raw []byte) *ValidationResult {
	return envelopeValidator.ValidateJSON(raw)
}
