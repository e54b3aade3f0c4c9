package createanalysis

import (
	"context"

	"iedi-workers/internal/analysis"
	"iedi-workers/internal/backend"
	"iedi-workers/internal/common/logger"
)

// Input is the form state carried in the process variables.
type Input = analysis.Input

type Output struct {
	AnalysisID     string          `json:"analysisId"`
	AnalysisName   string          `json:"analysisName"`
	AnalysisStatus analysis.Status `json:"analysisStatus"`
	IsCustomDates  bool            `json:"isCustomDates"`
	Banks          []string        `json:"banks"`
}

// AnalysisCreator posts a built request; *backend.Client satisfies it.
type AnalysisCreator interface {
	CreateAnalysis(ctx context.Context, req *analysis.AnalysisRequest) (*backend.Analysis, error)
}

// BankChecker reports names the backend does not track; *cache.BankCatalog satisfies it.
type BankChecker interface {
	Unknown(ctx context.Context, names []string) ([]string, error)
}

type ServiceDependencies struct {
	Backend AnalysisCreator
	Banks   BankChecker
	Builder *analysis.Builder
	Logger  logger.Logger
}
