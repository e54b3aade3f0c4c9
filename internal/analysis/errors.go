package analysis

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Kind classifies a request validation failure.
type Kind string

const (
	MissingName    Kind = "MissingName"
	MissingQuery   Kind = "MissingQuery"
	NoBankSelected Kind = "NoBankSelected"
	MissingBank    Kind = "MissingBank"
	MissingDates   Kind = "MissingDates"
	InvalidRange   Kind = "InvalidRange"
	FutureEndDate  Kind = "FutureEndDate"
	DuplicateBank  Kind = "DuplicateBank"
)

// Kinds lists every validation kind in check order.
func Kinds() []Kind {
	return []Kind{
		MissingName, MissingQuery, NoBankSelected, MissingBank,
		MissingDates, InvalidRange, FutureEndDate, DuplicateBank,
	}
}

// Code is the SCREAMING_SNAKE form used for BPMN error codes and metric labels.
func (k Kind) Code() string {
	var b strings.Builder
	for i, r := range string(k) {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// ValidationError is the single failure returned by Builder.Build.
// Period is the 1-based position of the offending custom period, 0 otherwise.
type ValidationError struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Period  int    `json:"period,omitempty"`
}

func (e *ValidationError) Error() string {
	if e.Period > 0 {
		return fmt.Sprintf("%s (period %d): %s", e.Kind, e.Period, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is lets errors.Is match on kind alone.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// KindOf returns the validation kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind, true
	}
	return "", false
}

// Sentinel values for errors.Is.
var (
	ErrMissingName    = &ValidationError{Kind: MissingName}
	ErrMissingQuery   = &ValidationError{Kind: MissingQuery}
	ErrNoBankSelected = &ValidationError{Kind: NoBankSelected}
	ErrMissingBank    = &ValidationError{Kind: MissingBank}
	ErrMissingDates   = &ValidationError{Kind: MissingDates}
	ErrInvalidRange   = &ValidationError{Kind: InvalidRange}
	ErrFutureEndDate  = &ValidationError{Kind: FutureEndDate}
	ErrDuplicateBank  = &ValidationError{Kind: DuplicateBank}
)

const periodSuffix = " para todos os bancos"

var messages = map[Kind]string{
	MissingName:    "Nome da análise é obrigatório",
	MissingQuery:   "Query Brandwatch é obrigatória",
	NoBankSelected: "Selecione pelo menos um banco",
	MissingBank:    "Selecione um banco para todos os períodos customizados",
	MissingDates:   "Datas de início e fim são obrigatórias",
	InvalidRange:   "Data de início deve ser anterior à data de fim",
	FutureEndDate:  "Data de fim deve ser anterior à data atual",
	DuplicateBank:  "Não é permitido adicionar o mesmo banco mais de uma vez",
}

func fail(kind Kind) *ValidationError {
	return &ValidationError{Kind: kind, Message: messages[kind]}
}

// failPeriod words the message for the custom form, where every bank carries its own range.
func failPeriod(kind Kind, period int) *ValidationError {
	msg := messages[kind]
	switch kind {
	case NoBankSelected:
		msg = "Adicione pelo menos um banco com período customizado"
	case MissingDates:
		msg = "Preencha as datas de início e fim" + periodSuffix
	case InvalidRange, FutureEndDate:
		msg += periodSuffix
	}
	return &ValidationError{Kind: kind, Message: msg, Period: period}
}
