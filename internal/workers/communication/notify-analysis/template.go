package notifyanalysis

import (
	"strings"
	"text/template"

	"iedi-workers/internal/analysis"
)

var bodyTemplate = template.Must(template.New("summary").Funcs(template.FuncMap{
	"score": analysis.FormatScore,
}).Parse(`Análise: {{.Name}}
ID: {{.ID}}
Tipo: {{.Type}}
Status: {{.StatusLabel}}
{{- if .Banks}}

Resultados por banco:
{{- range .Banks}}
- {{.BankName}}: IEDI {{score .IEDIScore}} ({{.TotalMentions}} menções)
{{- end}}
{{- end}}
`))

type summary struct {
	ID          string
	Name        string
	Type        string
	StatusLabel string
	Banks       []BankResult
}

func newSummary(input *Input) summary {
	name := strings.TrimSpace(input.AnalysisName)
	if name == "" {
		name = input.AnalysisID
	}
	return summary{
		ID:          input.AnalysisID,
		Name:        name,
		Type:        analysis.TypeLabel(input.IsCustomDates),
		StatusLabel: analysis.NormalizeStatus(input.AnalysisStatus).Label(),
		Banks:       input.BankResults,
	}
}

func (s summary) subject() string {
	return "[IEDI] " + s.Name + ": " + s.StatusLabel
}

func (s summary) render() (string, error) {
	var b strings.Builder
	if err := bodyTemplate.Execute(&b, s); err != nil {
		return "", err
	}
	return b.String(), nil
}
