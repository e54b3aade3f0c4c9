package createanalysis

import (
	"context"
	"fmt"

	"iedi-workers/internal/analysis"
	"iedi-workers/internal/backend"
	"iedi-workers/internal/common/errors"
	"iedi-workers/internal/common/logger"
	"iedi-workers/internal/common/metrics"
)

type Service struct {
	config  *Config
	logger  logger.Logger
	backend AnalysisCreator
	banks   BankChecker
	builder *analysis.Builder
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	builder := deps.Builder
	if builder == nil {
		builder = analysis.NewBuilder(nil)
	}
	return &Service{
		config:  config,
		logger:  deps.Logger,
		backend: deps.Backend,
		banks:   deps.Banks,
		builder: builder,
	}
}

// Execute builds the request, checks bank names and posts it. Only one backend call
// is made per job; retries are left to the engine.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	req, err := s.builder.Build(*input)
	if err != nil {
		return nil, s.rejected(err)
	}

	if s.config.CheckBanks && s.banks != nil {
		unknown, err := s.banks.Unknown(ctx, req.Banks())
		if err != nil {
			return nil, backend.Classify(err, backend.EndpointListBanks, "")
		}
		if len(unknown) > 0 {
			metrics.RequestValidationFailures.WithLabelValues(string(errors.ErrCodeUnknownBank)).Inc()
			s.logger.Warn("Analysis request names unknown banks", map[string]interface{}{
				"unknownBanks": unknown,
			})
			return nil, errors.NewUnknownBankError(unknown)
		}
	}

	created, err := s.backend.CreateAnalysis(ctx, req)
	if err != nil {
		return nil, backend.Classify(err, backend.EndpointCreateAnalysis, "")
	}

	return &Output{
		AnalysisID:     created.ID,
		AnalysisName:   req.Name,
		AnalysisStatus: created.Status,
		IsCustomDates:  req.Mode() == analysis.ModeCustom,
		Banks:          req.Banks(),
	}, nil
}

func (s *Service) rejected(err error) error {
	verr, ok := err.(*analysis.ValidationError)
	if !ok {
		return errors.NewInternalError(fmt.Errorf("build analysis request: %w", err))
	}

	code := verr.Kind.Code()
	metrics.RequestValidationFailures.WithLabelValues(code).Inc()
	s.logger.Info("Analysis request rejected", map[string]interface{}{
		"kind":   string(verr.Kind),
		"period": verr.Period,
	})
	return errors.NewValidationError(code, verr.Message, verr.Period)
}
