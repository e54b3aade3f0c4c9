package cli

import (
	"context"
	"fmt"
	"strings"

	"iedi-workers/internal/analysis"

	"github.com/spf13/cobra"
)

// requestFlags are shared by create and submit.
type requestFlags struct {
	name    string
	query   string
	banks   []string
	start   string
	end     string
	periods []string
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Analysis name")
	cmd.Flags().StringVar(&f.query, "query", "", "Brandwatch query name")
	cmd.Flags().StringArrayVar(&f.banks, "bank", nil, "Bank for a standard analysis (repeatable)")
	cmd.Flags().StringVar(&f.start, "start", "", "Start of the shared period, e.g. 2024-01-01T00:00")
	cmd.Flags().StringVar(&f.end, "end", "", "End of the shared period")
	cmd.Flags().StringArrayVar(&f.periods, "period", nil, "Per-bank period BANK,START,END[,CATEGORY] (repeatable, makes the analysis custom)")
}

func (f *requestFlags) input() (analysis.Input, error) {
	in := analysis.Input{Name: f.name, Query: f.query, Mode: analysis.ModeStandard}
	if len(f.periods) == 0 {
		in.BankNames = f.banks
		in.StartDate = f.start
		in.EndDate = f.end
		return in, nil
	}

	if len(f.banks) > 0 || f.start != "" || f.end != "" {
		return in, fmt.Errorf("--period cannot be combined with --bank, --start or --end")
	}
	in.Mode = analysis.ModeCustom
	for i, raw := range f.periods {
		p, err := parsePeriod(raw)
		if err != nil {
			return in, fmt.Errorf("--period #%d: %w", i+1, err)
		}
		in.Periods = append(in.Periods, p)
	}
	return in, nil
}

// parsePeriod reads BANK,START,END[,CATEGORY]. Empty fields are kept so the builder reports them.
func parsePeriod(raw string) (analysis.PeriodInput, error) {
	parts := strings.SplitN(raw, ",", 4)
	if len(parts) < 3 {
		return analysis.PeriodInput{}, fmt.Errorf("expected BANK,START,END[,CATEGORY], got %q", raw)
	}
	p := analysis.PeriodInput{
		BankName:  strings.TrimSpace(parts[0]),
		StartDate: strings.TrimSpace(parts[1]),
		EndDate:   strings.TrimSpace(parts[2]),
	}
	if len(parts) == 4 {
		p.CategoryDetail = strings.TrimSpace(parts[3])
	}
	return p, nil
}

// buildChecked runs the builder and the bank existence check.
func buildChecked(ctx context.Context, deps *Deps, f *requestFlags) (*analysis.AnalysisRequest, error) {
	in, err := f.input()
	if err != nil {
		return nil, err
	}

	req, err := deps.Builder.Build(in)
	if err != nil {
		return nil, err
	}

	unknown, err := deps.Catalog.Unknown(ctx, req.Banks())
	if err != nil {
		return nil, fmt.Errorf("check banks: %w", err)
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown banks: %s", strings.Join(unknown, ", "))
	}
	return req, nil
}

// processVariables carries the normalized request into the analysis process, in the
// variable layout the analysis.create worker reads.
func processVariables(req *analysis.AnalysisRequest) map[string]interface{} {
	vars := map[string]interface{}{
		"name":  req.Name,
		"query": req.Query,
		"mode":  string(req.Mode()),
	}
	if req.Mode() == analysis.ModeStandard {
		vars["bankNames"] = req.BankNames
		vars["startDate"] = req.StartDate
		vars["endDate"] = req.EndDate
		return vars
	}

	periods := make([]map[string]interface{}, 0, len(req.CustomBankDates))
	for _, d := range req.CustomBankDates {
		p := map[string]interface{}{
			"bankName":  d.BankName,
			"startDate": d.StartDate,
			"endDate":   d.EndDate,
		}
		if d.CategoryDetail != "" {
			p["categoryDetail"] = d.CategoryDetail
		}
		periods = append(periods, p)
	}
	vars["bankPeriods"] = periods
	return vars
}
