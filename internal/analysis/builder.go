package analysis

import (
	"strings"
	"time"
)

// Clock supplies the instant end dates are checked against.
type Clock func() time.Time

// Builder validates raw form input and produces a backend-ready AnalysisRequest.
// It performs no I/O and holds no mutable state, so one Builder can serve concurrent callers.
type Builder struct {
	now      Clock
	location *time.Location
}

type Option func(*Builder)

// WithLocation sets the zone wall-clock inputs are read in. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(b *Builder) {
		if loc != nil {
			b.location = loc
		}
	}
}

// NewBuilder uses now for every end-date check; a nil clock falls back to time.Now.
func NewBuilder(now Clock, opts ...Option) *Builder {
	if now == nil {
		now = time.Now
	}
	b := &Builder{now: now, location: time.UTC}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Location is the zone wall-clock inputs are read in.
func (b *Builder) Location() *time.Location {
	return b.location
}

// Build runs the checks in order and stops at the first failure, which is always a *ValidationError.
// Mode is matched case-insensitively; anything other than CUSTOM builds a standard request.
func (b *Builder) Build(in Input) (*AnalysisRequest, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fail(MissingName)
	}
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return nil, fail(MissingQuery)
	}

	now := b.now()
	if mode, _ := ParseDateMode(string(in.Mode)); mode == ModeCustom {
		return b.buildCustom(name, query, in.Periods, now)
	}
	return b.buildStandard(name, query, in, now)
}

func (b *Builder) buildStandard(name, query string, in Input, now time.Time) (*AnalysisRequest, error) {
	banks := selection(in.BankNames)
	if len(banks) == 0 {
		return nil, fail(NoBankSelected)
	}

	start, end, verr := b.checkRange(in.StartDate, in.EndDate, now)
	if verr != nil {
		return nil, verr
	}

	return &AnalysisRequest{
		Name:      name,
		Query:     query,
		BankNames: banks,
		StartDate: CanonicalTimestamp(start),
		EndDate:   CanonicalTimestamp(end),
	}, nil
}

func (b *Builder) buildCustom(name, query string, periods []PeriodInput, now time.Time) (*AnalysisRequest, error) {
	if len(periods) == 0 {
		return nil, failPeriod(NoBankSelected, 0)
	}

	dates := make([]CustomBankDate, 0, len(periods))
	for i, p := range periods {
		bank := strings.TrimSpace(p.BankName)
		if bank == "" {
			return nil, failPeriod(MissingBank, i+1)
		}
		start, end, verr := b.checkRange(p.StartDate, p.EndDate, now)
		if verr != nil {
			return nil, failPeriod(verr.Kind, i+1)
		}
		dates = append(dates, CustomBankDate{
			BankName:       bank,
			StartDate:      CanonicalTimestamp(start),
			EndDate:        CanonicalTimestamp(end),
			CategoryDetail: strings.TrimSpace(p.CategoryDetail),
		})
	}

	seen := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		seen[d.BankName] = struct{}{}
	}
	if len(seen) < len(dates) {
		return nil, failPeriod(DuplicateBank, 0)
	}

	return &AnalysisRequest{
		Name:            name,
		Query:           query,
		CustomBankDates: dates,
	}, nil
}

// checkRange applies the date rules shared by both modes. An unreadable date counts as missing.
func (b *Builder) checkRange(rawStart, rawEnd string, now time.Time) (time.Time, time.Time, *ValidationError) {
	if strings.TrimSpace(rawStart) == "" || strings.TrimSpace(rawEnd) == "" {
		return time.Time{}, time.Time{}, fail(MissingDates)
	}
	start, err := ParseLocalTime(rawStart, b.location)
	if err != nil {
		return time.Time{}, time.Time{}, fail(MissingDates)
	}
	end, err := ParseLocalTime(rawEnd, b.location)
	if err != nil {
		return time.Time{}, time.Time{}, fail(MissingDates)
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fail(InvalidRange)
	}
	if end.After(now) {
		return time.Time{}, time.Time{}, fail(FutureEndDate)
	}
	return start, end, nil
}

// selection turns checkbox values into a set, keeping first-seen order and dropping blanks.
func selection(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
