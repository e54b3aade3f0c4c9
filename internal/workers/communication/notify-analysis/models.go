package notifyanalysis

import (
	"context"

	"iedi-workers/internal/common/logger"
)

// BankResult is the subset of a fetched result row the summary prints.
type BankResult struct {
	BankName      string   `json:"bankName"`
	TotalMentions int      `json:"totalMentions"`
	IEDIScore     *float64 `json:"iediScore"`
}

type Input struct {
	AnalysisID     string       `json:"analysisId"`
	AnalysisName   string       `json:"analysisName"`
	AnalysisStatus string       `json:"analysisStatus"`
	IsCustomDates  bool         `json:"isCustomDates"`
	BankResults    []BankResult `json:"bankResults,omitempty"`
	// Recipients overrides the configured SES addresses for this job.
	Recipients []string `json:"recipients,omitempty"`
}

type Output struct {
	Sent           bool   `json:"notificationSent"`
	NotificationID string `json:"notificationId,omitempty"`
	Channel        string `json:"notificationChannel,omitempty"`
}

// Publisher is satisfied by *aws.SNSClient.
type Publisher interface {
	PublishMessage(ctx context.Context, topicARN, subject, message string, attributes map[string]string) (string, error)
}

// Mailer is satisfied by *aws.SESClient.
type Mailer interface {
	SendText(ctx context.Context, from string, to []string, subject, body string) (string, error)
}

type ServiceDependencies struct {
	Publisher Publisher
	Mailer    Mailer
	Logger    logger.Logger
}
