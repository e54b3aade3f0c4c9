package fetchbankresults

import (
	"context"

	"iedi-workers/internal/backend"
	"iedi-workers/internal/common/logger"
)

type Input struct {
	AnalysisID string `json:"analysisId"`
}

// BankResult is one row as handed to the process, with display strings next to the raw numbers.
type BankResult struct {
	BankName       string   `json:"bankName"`
	StartDate      string   `json:"startDate,omitempty"`
	EndDate        string   `json:"endDate,omitempty"`
	TotalMentions  int      `json:"totalMentions"`
	PositiveVolume *float64 `json:"positiveVolume"`
	NegativeVolume *float64 `json:"negativeVolume"`
	IEDIMean       *float64 `json:"iediMean"`
	IEDIScore      *float64 `json:"iediScore"`
	ScoreLabel     string   `json:"iediScoreLabel"`
}

type Output struct {
	AnalysisID    string       `json:"analysisId"`
	BankResults   []BankResult `json:"bankResults"`
	BankCount     int          `json:"bankCount"`
	TotalMentions int          `json:"totalMentions"`
	TopBank       string       `json:"topBank,omitempty"`
	TopScore      *float64     `json:"topScore,omitempty"`
}

type BankAnalysesGetter interface {
	GetBankAnalyses(ctx context.Context, id string) ([]backend.BankAnalysis, error)
}

type ServiceDependencies struct {
	Backend BankAnalysesGetter
	Logger  logger.Logger
}
