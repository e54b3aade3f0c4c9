package deleteanalysis

import (
	"context"

	"iedi-workers/internal/backend"
	"iedi-workers/internal/common/logger"
)

type Service struct {
	config  *Config
	logger  logger.Logger
	backend AnalysisDeleter
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{config: config, logger: deps.Logger, backend: deps.Backend}
}

// Execute deletes the analysis. A 404 counts as success so a retried job stays idempotent.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	err := s.backend.DeleteAnalysis(ctx, input.AnalysisID)
	switch {
	case err == nil:
		s.logger.Info("Analysis deleted", map[string]interface{}{"analysisId": input.AnalysisID})
		return &Output{AnalysisID: input.AnalysisID, Deleted: true}, nil
	case backend.IsNotFound(err):
		s.logger.Info("Analysis already gone", map[string]interface{}{"analysisId": input.AnalysisID})
		return &Output{AnalysisID: input.AnalysisID, Deleted: true, AlreadyDeleted: true}, nil
	default:
		return nil, backend.Classify(err, backend.EndpointDeleteAnalysis, input.AnalysisID)
	}
}
