package deleteanalysis

import (
	"context"

	"iedi-workers/internal/common/logger"
)

type Input struct {
	AnalysisID string `json:"analysisId"`
}

type Output struct {
	AnalysisID     string `json:"analysisId"`
	Deleted        bool   `json:"analysisDeleted"`
	AlreadyDeleted bool   `json:"analysisAlreadyDeleted"`
}

type AnalysisDeleter interface {
	DeleteAnalysis(ctx context.Context, id string) error
}

type ServiceDependencies struct {
	Backend AnalysisDeleter
	Logger  logger.Logger
}
