package fetchbankresults

import (
	"context"

	"iedi-workers/internal/analysis"
	"iedi-workers/internal/backend"
	"iedi-workers/internal/common/errors"
	"iedi-workers/internal/common/logger"
)

type Service struct {
	config  *Config
	logger  logger.Logger
	backend BankAnalysesGetter
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{config: config, logger: deps.Logger, backend: deps.Backend}
}

// Execute fetches per-bank rows and ranks them by IEDI score.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	rows, err := s.backend.GetBankAnalyses(ctx, input.AnalysisID)
	if err != nil {
		return nil, backend.Classify(err, backend.EndpointGetBankAnalyses, input.AnalysisID)
	}
	if len(rows) == 0 && !s.config.AllowEmpty {
		return nil, errors.NewResultsNotReadyError(input.AnalysisID)
	}

	out := &Output{
		AnalysisID:  input.AnalysisID,
		BankResults: make([]BankResult, 0, len(rows)),
		BankCount:   len(rows),
	}
	for _, r := range backend.SortByScore(rows) {
		out.TotalMentions += r.TotalMentions
		out.BankResults = append(out.BankResults, BankResult{
			BankName:       r.BankName,
			StartDate:      r.StartDate,
			EndDate:        r.EndDate,
			TotalMentions:  r.TotalMentions,
			PositiveVolume: r.PositiveVolume,
			NegativeVolume: r.NegativeVolume,
			IEDIMean:       r.IEDIMean,
			IEDIScore:      r.IEDIScore,
			ScoreLabel:     analysis.FormatScore(r.IEDIScore),
		})
	}
	if len(out.BankResults) > 0 && out.BankResults[0].IEDIScore != nil {
		out.TopBank = out.BankResults[0].BankName
		out.TopScore = out.BankResults[0].IEDIScore
	}

	s.logger.Info("Bank results fetched", map[string]interface{}{
		"analysisId": input.AnalysisID,
		"banks":      out.BankCount,
		"topBank":    out.TopBank,
	})
	return out, nil
}
