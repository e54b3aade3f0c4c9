package checkanalysisstatus

import (
	"context"

	"iedi-workers/internal/backend"
	"iedi-workers/internal/common/logger"
)

type Service struct {
	config  *Config
	logger  logger.Logger
	backend AnalysisGetter
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{config: config, logger: deps.Logger, backend: deps.Backend}
}

// Execute reads the stored status. Polling cadence is the process model's concern.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	a, err := s.backend.GetAnalysis(ctx, input.AnalysisID)
	if err != nil {
		return nil, backend.Classify(err, backend.EndpointGetAnalysis, input.AnalysisID)
	}

	if !a.Status.Valid() {
		s.logger.Warn("Backend reported an unrecognized status", map[string]interface{}{
			"analysisId": a.ID,
			"status":     string(a.Status),
		})
	}

	return &Output{
		AnalysisID:     a.ID,
		AnalysisName:   a.Name,
		AnalysisStatus: a.Status,
		StatusLabel:    a.Status.Label(),
		Terminal:       a.Status.IsTerminal(),
		IsCustomDates:  a.IsCustomDates,
	}, nil
}
