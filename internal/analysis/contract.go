package analysis

import (
	"fmt"
	"strings"

	"iedi-workers/internal/common/validation"
)

// payloadSchema is the backend contract for POST /api/analyses: exactly one of the two shapes.
var payloadSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["name", "query"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "query": {"type": "string", "minLength": 1},
    "bank_names": {"type": "array", "minItems": 1, "items": {"type": "string", "minLength": 1}},
    "start_date": {"type": "string", "format": "date-time"},
    "end_date": {"type": "string", "format": "date-time"},
    "custom_bank_dates": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["bank_name", "start_date", "end_date"],
        "properties": {
          "bank_name": {"type": "string", "minLength": 1},
          "start_date": {"type": "string", "format": "date-time"},
          "end_date": {"type": "string", "format": "date-time"},
          "category_detail": {"type": "string"}
        },
        "additionalProperties": false
      }
    }
  },
  "additionalProperties": false,
  "oneOf": [
    {"required": ["bank_names", "start_date", "end_date"], "not": {"required": ["custom_bank_dates"]}},
    {"required": ["custom_bank_dates"], "not": {"anyOf": [
      {"required": ["bank_names"]}, {"required": ["start_date"]}, {"required": ["end_date"]}
    ]}}
  ]
}`)

// ValidatePayload checks a request against the backend contract before it leaves the process.
// Requests produced by Builder always pass; hand-assembled ones may not.
func ValidatePayload(req *AnalysisRequest) error {
	if req == nil {
		return fmt.Errorf("nil analysis request")
	}
	res, err := payloadSchema.Validate(req)
	if err != nil {
		return err
	}
	if !res.Valid {
		return fmt.Errorf("analysis request violates backend contract: %s", strings.Join(res.GetErrorMessages(), "; "))
	}
	return nil
}
