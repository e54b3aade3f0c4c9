package fetchbankresults

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"

	"iedi-workers/internal/backend"
	"iedi-workers/internal/common/config"
	"iedi-workers/internal/common/errors"
	"iedi-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGetter struct {
	mock.Mock
}

func (m *MockGetter) GetBankAnalyses(ctx context.Context, id string) ([]backend.BankAnalysis, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]backend.BankAnalysis), args.Error(1)
}

// ==========================
// Test Helper Functions
// ==========================

func score(v float64) *float64 { return &v }

func createMockJob(variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:       7,
		Type:      TaskType,
		Retries:   3,
		Variables: string(variablesJSON),
	}}
}

func createTestHandler(t *testing.T, getter *MockGetter, cfg *Config) *Handler {
	t.Helper()
	if cfg == nil {
		cfg = DefaultConfig()
	}
	h, err := NewHandler(HandlerOptions{
		CustomConfig: cfg,
		Dependencies: ServiceDependencies{Backend: getter},
		Logger:       logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

func sampleRows() []backend.BankAnalysis {
	return []backend.BankAnalysis{
		{BankName: "Bradesco", TotalMentions: 40, IEDIScore: score(5.25)},
		{BankName: "Itaú", TotalMentions: 100, IEDIScore: score(7.456), IEDIMean: score(8.1)},
		{BankName: "Santander", TotalMentions: 0},
	}
}

// ==========================
// Tests
// ==========================

func TestHandler_Execute_RanksByScore(t *testing.T) {
	getter := new(MockGetter)
	getter.On("GetBankAnalyses", mock.Anything, "a-1").Return(sampleRows(), nil)

	out, err := createTestHandler(t, getter, nil).Execute(context.Background(), &Input{AnalysisID: "a-1"})
	require.NoError(t, err)

	assert.Equal(t, 3, out.BankCount)
	assert.Equal(t, 140, out.TotalMentions)
	assert.Equal(t, "Itaú", out.TopBank)
	assert.InDelta(t, 7.456, *out.TopScore, 1e-9)

	require.Len(t, out.BankResults, 3)
	assert.Equal(t, "Itaú", out.BankResults[0].BankName)
	assert.Equal(t, "7.46", out.BankResults[0].ScoreLabel)
	assert.Equal(t, "Bradesco", out.BankResults[1].BankName)
	assert.Equal(t, "-", out.BankResults[2].ScoreLabel)
}

func TestHandler_Execute_NoScoresYet(t *testing.T) {
	getter := new(MockGetter)
	getter.On("GetBankAnalyses", mock.Anything, "a-1").Return([]backend.BankAnalysis{{BankName: "Itaú"}}, nil)

	out, err := createTestHandler(t, getter, nil).Execute(context.Background(), &Input{AnalysisID: "a-1"})
	require.NoError(t, err)
	assert.Empty(t, out.TopBank)
	assert.Nil(t, out.TopScore)
}

func TestHandler_Execute_Empty(t *testing.T) {
	getter := new(MockGetter)
	getter.On("GetBankAnalyses", mock.Anything, "a-1").Return([]backend.BankAnalysis{}, nil)

	_, err := createTestHandler(t, getter, nil).Execute(context.Background(), &Input{AnalysisID: "a-1"})
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeResultsNotReady, stdErr.Code)

	cfg := DefaultConfig()
	cfg.AllowEmpty = true
	out, err := createTestHandler(t, getter, cfg).Execute(context.Background(), &Input{AnalysisID: "a-1"})
	require.NoError(t, err)
	assert.Zero(t, out.BankCount)
	assert.NotNil(t, out.BankResults)
}

func TestHandler_Execute_BackendError(t *testing.T) {
	getter := new(MockGetter)
	getter.On("GetBankAnalyses", mock.Anything, "a-1").Return(nil, stderrors.New("connection reset by peer"))

	_, err := createTestHandler(t, getter, nil).Execute(context.Background(), &Input{AnalysisID: "a-1"})
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeBackendUnavailable, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestHandler_ParseInput(t *testing.T) {
	h := createTestHandler(t, new(MockGetter), nil)

	input, err := h.parseInput(createMockJob(map[string]interface{}{"analysisId": "a-9"}))
	require.NoError(t, err)
	assert.Equal(t, "a-9", input.AnalysisID)

	_, err = h.parseInput(createMockJob(map[string]interface{}{"analysis_id": "a-9"}))
	assert.Error(t, err)
}

func TestOutput_Variables(t *testing.T) {
	out := &Output{
		AnalysisID:  "a-1",
		BankResults: []BankResult{{BankName: "Itaú", IEDIScore: score(7), ScoreLabel: "7.00"}},
		BankCount:   1,
		TopBank:     "Itaú",
		TopScore:    score(7),
	}

	raw, err := json.Marshal(out)
	require.NoError(t, err)

	var vars map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &vars))
	assert.Equal(t, "Itaú", vars["topBank"])
	assert.EqualValues(t, 1, vars["bankCount"])
	assert.Len(t, vars["bankResults"], 1)
}

func TestCreateConfigFromAppConfig(t *testing.T) {
	on := true
	appConfig := &config.Config{Workers: map[string]config.WorkerConfig{
		WorkerName: {Enabled: true, MaxJobsActive: 3, AllowEmpty: &on},
	}}

	cfg := createConfigFromAppConfig(appConfig, nil)
	assert.True(t, cfg.AllowEmpty)
	assert.Equal(t, 3, cfg.MaxJobsActive)

	assert.False(t, createConfigFromAppConfig(nil, nil).AllowEmpty)
}
