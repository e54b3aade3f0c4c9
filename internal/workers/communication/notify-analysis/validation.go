package notifyanalysis

import "iedi-workers/internal/common/validation"

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["analysisId", "analysisStatus"],
  "properties": {
    "analysisId": {"type": "string", "minLength": 1},
    "analysisName": {"type": "string"},
    "analysisStatus": {"type": "string", "minLength": 1},
    "isCustomDates": {"type": "boolean"},
    "bankResults": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["bankName"],
        "properties": {
          "bankName": {"type": "string"},
          "totalMentions": {"type": "integer", "minimum": 0},
          "iediScore": {"type": ["number", "null"]}
        }
      }
    },
    "recipients": {"type": "array", "items": {"type": "string", "format": "email"}}
  }
}`)

func GetInputSchema() *validation.Schema {
	return inputSchema
}
