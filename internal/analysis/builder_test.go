package analysis

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var fixedNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func createTestBuilder() *Builder {
	return NewBuilder(func() time.Time { return fixedNow })
}

func standardInput() Input {
	return Input{
		Name:      "Q1",
		Query:     "q",
		Mode:      ModeStandard,
		BankNames: []string{"ITAU"},
		StartDate: "2024-01-01T00:00",
		EndDate:   "2024-01-31T00:00",
	}
}

func customInput(periods ...PeriodInput) Input {
	return Input{
		Name:    "Q1",
		Query:   "q",
		Mode:    ModeCustom,
		Periods: periods,
	}
}

func period(bank, start, end string) PeriodInput {
	return PeriodInput{BankName: bank, StartDate: start, EndDate: end}
}

func requireKind(t *testing.T, err error, want Kind) *ValidationError {
	t.Helper()
	require.Error(t, err)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected *ValidationError, got %T", err)
	assert.Equal(t, want, ve.Kind)
	assert.NotEmpty(t, ve.Message)
	return ve
}

// ==========================
// Core Functionality Tests
// ==========================

func TestBuilder_Build_Standard(t *testing.T) {
	req, err := createTestBuilder().Build(standardInput())
	require.NoError(t, err)

	assert.Equal(t, &AnalysisRequest{
		Name:      "Q1",
		Query:     "q",
		BankNames: []string{"ITAU"},
		StartDate: "2024-01-01T00:00:00Z",
		EndDate:   "2024-01-31T00:00:00Z",
	}, req)
	assert.Equal(t, ModeStandard, req.Mode())
}

func TestBuilder_Build_StandardPayloadShape(t *testing.T) {
	req, err := createTestBuilder().Build(standardInput())
	require.NoError(t, err)

	raw, err := json.Marshal(req)
	require.NoError(t, err)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Len(t, payload, 5)
	assert.Contains(t, payload, "bank_names")
	assert.NotContains(t, payload, "custom_bank_dates")
	assert.NoError(t, ValidatePayload(req))
}

func TestBuilder_Build_Custom(t *testing.T) {
	in := customInput(
		period("ITAU", "2024-01-01T00:00", "2024-02-01T00:00"),
		period("BRADESCO", "2024-03-01T00:00", "2024-04-01T00:00"),
	)

	req, err := createTestBuilder().Build(in)
	require.NoError(t, err)

	assert.Equal(t, ModeCustom, req.Mode())
	assert.Empty(t, req.BankNames)
	assert.Empty(t, req.StartDate)
	assert.Empty(t, req.EndDate)
	require.Len(t, req.CustomBankDates, 2)
	assert.Equal(t, CustomBankDate{
		BankName:  "ITAU",
		StartDate: "2024-01-01T00:00:00Z",
		EndDate:   "2024-02-01T00:00:00Z",
	}, req.CustomBankDates[0])
	assert.Equal(t, "BRADESCO", req.CustomBankDates[1].BankName)
	assert.Equal(t, []string{"ITAU", "BRADESCO"}, req.Banks())
	assert.NoError(t, ValidatePayload(req))
}

func TestBuilder_Build_CustomPayloadShape(t *testing.T) {
	req, err := createTestBuilder().Build(customInput(period("ITAU", "2024-01-01T00:00", "2024-02-01T00:00")))
	require.NoError(t, err)

	raw, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "Q1",
		"query": "q",
		"custom_bank_dates": [
			{"bank_name": "ITAU", "start_date": "2024-01-01T00:00:00Z", "end_date": "2024-02-01T00:00:00Z"}
		]
	}`, string(raw))
}

func TestBuilder_Build_TrimsNameAndQuery(t *testing.T) {
	in := standardInput()
	in.Name = "  Q1 \t"
	in.Query = "\n q "

	req, err := createTestBuilder().Build(in)
	require.NoError(t, err)
	assert.Equal(t, "Q1", req.Name)
	assert.Equal(t, "q", req.Query)
}

func TestBuilder_Build_StandardSelectionIsASet(t *testing.T) {
	in := standardInput()
	in.BankNames = []string{" ITAU", "BRADESCO", "ITAU", "", "SANTANDER "}

	req, err := createTestBuilder().Build(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"ITAU", "BRADESCO", "SANTANDER"}, req.BankNames)
}

func TestBuilder_Build_CategoryDetail(t *testing.T) {
	p := period("ITAU", "2024-01-01T00:00", "2024-02-01T00:00")
	p.CategoryDetail = "  Sustentabilidade "

	req, err := createTestBuilder().Build(customInput(p))
	require.NoError(t, err)
	assert.Equal(t, "Sustentabilidade", req.CustomBankDates[0].CategoryDetail)
}

func TestBuilder_Build_EndEqualToNowIsAccepted(t *testing.T) {
	in := standardInput()
	in.EndDate = "2025-01-01T00:00"

	req, err := createTestBuilder().Build(in)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01T00:00:00Z", req.EndDate)
}

func TestBuilder_Build_ZeroModeIsStandard(t *testing.T) {
	in := standardInput()
	in.Mode = ""

	req, err := createTestBuilder().Build(in)
	require.NoError(t, err)
	assert.Equal(t, ModeStandard, req.Mode())
}

// ==========================
// Validation Tests
// ==========================

func TestBuilder_Build_ValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *Input)
		kind   Kind
	}{
		{"blank name", func(in *Input) { in.Name = "   " }, MissingName},
		{"blank query", func(in *Input) { in.Query = "" }, MissingQuery},
		{"no banks", func(in *Input) { in.BankNames = nil }, NoBankSelected},
		{"only blank banks", func(in *Input) { in.BankNames = []string{" ", ""} }, NoBankSelected},
		{"missing start", func(in *Input) { in.StartDate = "" }, MissingDates},
		{"missing end", func(in *Input) { in.EndDate = " " }, MissingDates},
		{"unreadable start", func(in *Input) { in.StartDate = "yesterday" }, MissingDates},
		{"start equals end", func(in *Input) { in.EndDate = in.StartDate }, InvalidRange},
		{"start after end", func(in *Input) {
			in.StartDate = "2024-02-01T00:00"
			in.EndDate = "2024-01-01T00:00"
		}, InvalidRange},
		{"future end", func(in *Input) { in.EndDate = "2025-01-01T00:01" }, FutureEndDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := standardInput()
			tt.mutate(&in)

			req, err := createTestBuilder().Build(in)
			assert.Nil(t, req)
			ve := requireKind(t, err, tt.kind)
			assert.Zero(t, ve.Period)
		})
	}
}

func TestBuilder_Build_CustomValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		periods []PeriodInput
		kind    Kind
		period  int
	}{
		{"no periods", nil, NoBankSelected, 0},
		{"missing bank", []PeriodInput{period(" ", "2024-01-01T00:00", "2024-02-01T00:00")}, MissingBank, 1},
		{"missing dates on second", []PeriodInput{
			period("ITAU", "2024-01-01T00:00", "2024-02-01T00:00"),
			period("BRADESCO", "", "2024-02-01T00:00"),
		}, MissingDates, 2},
		{"inverted range", []PeriodInput{period("ITAU", "2024-02-01T00:00", "2024-01-01T00:00")}, InvalidRange, 1},
		{"future end", []PeriodInput{period("ITAU", "2024-12-01T00:00", "2025-06-01T00:00")}, FutureEndDate, 1},
		{"duplicate bank", []PeriodInput{
			period("ITAU", "2024-01-01T00:00", "2024-02-01T00:00"),
			period("ITAU", "2024-03-01T00:00", "2024-04-01T00:00"),
		}, DuplicateBank, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := createTestBuilder().Build(customInput(tt.periods...))
			assert.Nil(t, req)
			ve := requireKind(t, err, tt.kind)
			assert.Equal(t, tt.period, ve.Period)
		})
	}
}

func TestBuilder_Build_CheckOrder(t *testing.T) {
	builder := createTestBuilder()

	t.Run("name before query", func(t *testing.T) {
		_, err := builder.Build(Input{Mode: ModeStandard})
		requireKind(t, err, MissingName)
	})

	t.Run("query before banks", func(t *testing.T) {
		_, err := builder.Build(Input{Name: "Q1", Mode: ModeStandard})
		requireKind(t, err, MissingQuery)
	})

	t.Run("banks before dates", func(t *testing.T) {
		_, err := builder.Build(Input{Name: "Q1", Query: "q", Mode: ModeStandard})
		requireKind(t, err, NoBankSelected)
	})

	t.Run("range before future", func(t *testing.T) {
		in := standardInput()
		in.StartDate = "2026-02-01T00:00"
		in.EndDate = "2026-01-01T00:00"
		_, err := builder.Build(in)
		requireKind(t, err, InvalidRange)
	})

	t.Run("earlier period wins", func(t *testing.T) {
		_, err := builder.Build(customInput(
			period("ITAU", "2024-02-01T00:00", "2024-01-01T00:00"),
			period("", "2024-01-01T00:00", "2024-02-01T00:00"),
		))
		ve := requireKind(t, err, InvalidRange)
		assert.Equal(t, 1, ve.Period)
	})

	t.Run("period errors before duplicates", func(t *testing.T) {
		_, err := builder.Build(customInput(
			period("ITAU", "2024-01-01T00:00", "2024-02-01T00:00"),
			period("ITAU", "2024-01-01T00:00", "2099-02-01T00:00"),
		))
		requireKind(t, err, FutureEndDate)
	})
}

func TestBuilder_Build_SentinelMatching(t *testing.T) {
	_, err := createTestBuilder().Build(customInput(
		period("ITAU", "2024-01-01T00:00", "2024-02-01T00:00"),
		period("ITAU", "2024-03-01T00:00", "2024-04-01T00:00"),
	))

	assert.ErrorIs(t, err, ErrDuplicateBank)
	assert.NotErrorIs(t, err, ErrMissingBank)

	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, DuplicateBank, kind)
}

// ==========================
// Clock and Location Tests
// ==========================

func TestBuilder_Build_UsesInjectedClock(t *testing.T) {
	in := standardInput()
	in.EndDate = "2030-01-01T00:00"

	_, err := createTestBuilder().Build(in)
	requireKind(t, err, FutureEndDate)

	later := NewBuilder(func() time.Time { return time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC) })
	req, err := later.Build(in)
	require.NoError(t, err)
	assert.Equal(t, "2030-01-01T00:00:00Z", req.EndDate)
}

func TestBuilder_Build_WithLocation(t *testing.T) {
	saoPaulo := time.FixedZone("BRT", -3*60*60)
	builder := NewBuilder(func() time.Time { return fixedNow }, WithLocation(saoPaulo))
	assert.Equal(t, saoPaulo, builder.Location())

	req, err := builder.Build(standardInput())
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01T03:00:00Z", req.StartDate)
	assert.Equal(t, "2024-01-31T03:00:00Z", req.EndDate)
}

func TestNewBuilder_Defaults(t *testing.T) {
	builder := NewBuilder(nil, WithLocation(nil))
	assert.Equal(t, time.UTC, builder.Location())

	req, err := builder.Build(standardInput())
	require.NoError(t, err)
	assert.NotNil(t, req)
}

// ==========================
// Property Tests
// ==========================

func TestBuilder_Build_IsDeterministic(t *testing.T) {
	builder := createTestBuilder()
	in := customInput(
		period("ITAU", "2024-01-01T00:00", "2024-02-01T00:00"),
		period("SANTANDER", "2024-01-15T08:30", "2024-02-15T18:45"),
	)

	first, err := builder.Build(in)
	require.NoError(t, err)
	second, err := builder.Build(in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuilder_Build_CanonicalOutputRebuilds(t *testing.T) {
	builder := createTestBuilder()
	first, err := builder.Build(standardInput())
	require.NoError(t, err)

	again := standardInput()
	again.StartDate = first.StartDate
	again.EndDate = first.EndDate
	second, err := builder.Build(again)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuilder_Build_ConcurrentUse(t *testing.T) {
	builder := createTestBuilder()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := standardInput()
			if i%2 == 1 {
				in.Name = ""
			}
			req, err := builder.Build(in)
			if i%2 == 1 {
				assert.ErrorIs(t, err, ErrMissingName)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, "Q1", req.Name)
		}(i)
	}
	wg.Wait()
}

func BenchmarkBuilder_Build(b *testing.B) {
	builder := createTestBuilder()
	in := standardInput()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = builder.Build(in)
	}
}

func TestBuilder_Build_ModeCaseInsensitive(t *testing.T) {
	b := createTestBuilder()

	for _, mode := range []DateMode{"custom", " Custom "} {
		in := customInput(period("ITAU", "2024-01-01T00:00", "2024-01-31T00:00"))
		in.Mode = mode

		req, err := b.Build(in)
		require.NoError(t, err, "mode %q", mode)
		assert.Equal(t, ModeCustom, req.Mode())
		assert.Equal(t, []string{"ITAU"}, req.Banks())
	}

	in := standardInput()
	in.Mode = ""
	req, err := b.Build(in)
	require.NoError(t, err)
	assert.Equal(t, ModeStandard, req.Mode())
}
