package backend

import (
	"sort"

	"iedi-workers/internal/analysis"
)

// Analysis is a stored analysis as listed by the backend.
type Analysis struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	QueryName     string          `json:"query_name"`
	Status        analysis.Status `json:"status"`
	IsCustomDates bool            `json:"is_custom_dates"`
	CreatedAt     string          `json:"created_at,omitempty"`
}

// TypeLabel is "Customizado" or "Padrão".
func (a Analysis) TypeLabel() string {
	return analysis.TypeLabel(a.IsCustomDates)
}

// BankAnalysis is the per-bank result of an analysis. Score fields stay nil until processing ends.
type BankAnalysis struct {
	ID             string   `json:"id"`
	AnalysisID     string   `json:"analysis_id"`
	BankName       string   `json:"bank_name"`
	StartDate      string   `json:"start_date,omitempty"`
	EndDate        string   `json:"end_date,omitempty"`
	TotalMentions  int      `json:"total_mentions"`
	PositiveVolume *float64 `json:"positive_volume"`
	NegativeVolume *float64 `json:"negative_volume"`
	IEDIMean       *float64 `json:"iedi_mean"`
	IEDIScore      *float64 `json:"iedi_score"`
}

// SortByScore orders rows by IEDI score, highest first. Rows without a score go last, by bank name.
func SortByScore(rows []BankAnalysis) []BankAnalysis {
	out := append([]BankAnalysis(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].IEDIScore, out[j].IEDIScore
		switch {
		case a != nil && b != nil:
			return *a > *b
		case a != nil:
			return true
		case b != nil:
			return false
		default:
			return out[i].BankName < out[j].BankName
		}
	})
	return out
}

type banksResponse struct {
	Banks []analysis.Bank `json:"banks"`
}

type analysesResponse struct {
	Analyses []Analysis `json:"analyses"`
}

type analysisResponse struct {
	Message  string    `json:"message,omitempty"`
	Analysis *Analysis `json:"analysis"`
}

type bankAnalysesResponse struct {
	BankAnalyses []BankAnalysis `json:"bank_analyses"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func normalize(a *Analysis) {
	a.Status = analysis.NormalizeStatus(string(a.Status))
}
