package checkanalysisstatus

import (
	"context"

	"iedi-workers/internal/analysis"
	"iedi-workers/internal/backend"
	"iedi-workers/internal/common/logger"
)

type Input struct {
	AnalysisID string `json:"analysisId"`
}

type Output struct {
	AnalysisID     string          `json:"analysisId"`
	AnalysisName   string          `json:"analysisName"`
	AnalysisStatus analysis.Status `json:"analysisStatus"`
	StatusLabel    string          `json:"analysisStatusLabel"`
	Terminal       bool            `json:"analysisTerminal"`
	IsCustomDates  bool            `json:"isCustomDates"`
}

type AnalysisGetter interface {
	GetAnalysis(ctx context.Context, id string) (*backend.Analysis, error)
}

type ServiceDependencies struct {
	Backend AnalysisGetter
	Logger  logger.Logger
}
