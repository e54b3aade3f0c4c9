package analysis

import (
	"fmt"
	"strings"
)

// DateMode selects between one shared date range and per-bank ranges.
type DateMode string

const (
	ModeStandard DateMode = "STANDARD"
	ModeCustom   DateMode = "CUSTOM"
)

// ParseDateMode is case-insensitive; an empty value means ModeStandard.
func ParseDateMode(raw string) (DateMode, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", string(ModeStandard):
		return ModeStandard, nil
	case string(ModeCustom):
		return ModeCustom, nil
	default:
		return "", fmt.Errorf("unknown date mode %q", raw)
	}
}

// PeriodInput is one raw per-bank range as typed by the user.
type PeriodInput struct {
	BankName       string `json:"bankName"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	CategoryDetail string `json:"categoryDetail,omitempty"`
}

// Input is the raw form state handed to the Builder.
// BankNames, StartDate and EndDate are read in ModeStandard; Periods in ModeCustom.
type Input struct {
	Name      string        `json:"name"`
	Query     string        `json:"query"`
	Mode      DateMode      `json:"mode"`
	BankNames []string      `json:"bankNames,omitempty"`
	StartDate string        `json:"startDate,omitempty"`
	EndDate   string        `json:"endDate,omitempty"`
	Periods   []PeriodInput `json:"bankPeriods,omitempty"`
}

// CustomBankDate is one normalized per-bank range of a custom request.
type CustomBankDate struct {
	BankName       string `json:"bank_name"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	CategoryDetail string `json:"category_detail,omitempty"`
}

// AnalysisRequest is the body of POST /api/analyses.
type AnalysisRequest struct {
	Name            string           `json:"name"`
	Query           string           `json:"query"`
	BankNames       []string         `json:"bank_names,omitempty"`
	StartDate       string           `json:"start_date,omitempty"`
	EndDate         string           `json:"end_date,omitempty"`
	CustomBankDates []CustomBankDate `json:"custom_bank_dates,omitempty"`
}

func (r *AnalysisRequest) Mode() DateMode {
	if len(r.CustomBankDates) > 0 {
		return ModeCustom
	}
	return ModeStandard
}

// Banks lists the bank tokens the request covers, in payload order.
func (r *AnalysisRequest) Banks() []string {
	if r.Mode() == ModeStandard {
		return append([]string(nil), r.BankNames...)
	}
	out := make([]string, 0, len(r.CustomBankDates))
	for _, d := range r.CustomBankDates {
		out = append(out, d.BankName)
	}
	return out
}
