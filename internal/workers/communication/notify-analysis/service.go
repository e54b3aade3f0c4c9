package notifyanalysis

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"iedi-workers/internal/analysis"
	"iedi-workers/internal/common/config"
	"iedi-workers/internal/common/errors"
	"iedi-workers/internal/common/logger"
)

// SNS rejects subjects longer than this.
const maxSubjectRunes = 100

type Service struct {
	config    *Config
	logger    logger.Logger
	publisher Publisher
	mailer    Mailer
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:    config,
		logger:    deps.Logger,
		publisher: deps.Publisher,
		mailer:    deps.Mailer,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if !s.config.Enabled {
		return &Output{Sent: false}, nil
	}

	sum := newSummary(input)
	body, err := sum.render()
	if err != nil {
		return nil, errors.NewInternalError(fmt.Errorf("render summary: %w", err))
	}
	subject := truncate(sum.subject(), maxSubjectRunes)

	channel := strings.ToLower(s.config.Channel)
	var id string
	switch channel {
	case config.ChannelSNS:
		if s.publisher == nil {
			return nil, errors.NewInternalError(fmt.Errorf("sns publisher not configured"))
		}
		id, err = s.publisher.PublishMessage(ctx, s.config.TopicARN, subject, body, map[string]string{
			"analysisId": input.AnalysisID,
			"status":     string(analysis.NormalizeStatus(input.AnalysisStatus)),
		})
	case config.ChannelSES:
		if s.mailer == nil {
			return nil, errors.NewInternalError(fmt.Errorf("ses mailer not configured"))
		}
		to := input.Recipients
		if len(to) == 0 {
			to = s.config.ToEmails
		}
		if len(to) == 0 {
			return nil, errors.NewInvalidInputError("no recipients configured for the ses channel")
		}
		id, err = s.mailer.SendText(ctx, s.config.FromEmail, to, subject, body)
	default:
		return nil, errors.NewInternalError(fmt.Errorf("unsupported channel %q", s.config.Channel))
	}
	if err != nil {
		return nil, errors.NewNotificationSendFailedError(channel, err)
	}

	s.logger.Info("Analysis notification sent", map[string]interface{}{
		"analysisId":     input.AnalysisID,
		"channel":        channel,
		"notificationId": id,
	})
	return &Output{Sent: true, NotificationID: id, Channel: channel}, nil
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}
