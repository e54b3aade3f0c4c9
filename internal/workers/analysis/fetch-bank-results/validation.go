package fetchbankresults

import "iedi-workers/internal/common/validation"

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["analysisId"],
  "properties": {
    "analysisId": {"type": "string", "minLength": 1, "pattern": "\\S"}
  }
}`)

func GetInputSchema() *validation.Schema {
	return inputSchema
}
