package createanalysis

import "iedi-workers/internal/common/validation"

// inputSchema only checks shape. Emptiness and date rules belong to the builder so
// the process gets the specific validation code instead of a generic schema failure.
var inputSchema = validation.MustCompile(`{
  "type": "object",
  "properties": {
    "name": {"type": "string"},
    "query": {"type": "string"},
    "mode": {"type": "string"},
    "bankNames": {"type": "array", "items": {"type": "string"}},
    "startDate": {"type": "string"},
    "endDate": {"type": "string"},
    "bankPeriods": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "bankName": {"type": "string"},
          "startDate": {"type": "string"},
          "endDate": {"type": "string"},
          "categoryDetail": {"type": "string"}
        }
      }
    }
  }
}`)

func GetInputSchema() *validation.Schema {
	return inputSchema
}
