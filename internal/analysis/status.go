package analysis

import (
	"fmt"
	"strings"
)

// Status is the analysis lifecycle state owned by the backend.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

var statusLabels = map[Status]string{
	StatusPending:    "Pendente",
	StatusProcessing: "Processando",
	StatusCompleted:  "Concluída",
	StatusFailed:     "Falhou",
}

// ParseStatus normalizes the casing drift between backend variants (pending vs PENDING).
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := statusLabels[s]; !ok {
		return "", fmt.Errorf("unknown analysis status %q", raw)
	}
	return s, nil
}

// NormalizeStatus is ParseStatus without the error; unknown values are upper-cased and kept.
func NormalizeStatus(raw string) Status {
	if s, err := ParseStatus(raw); err == nil {
		return s
	}
	return Status(strings.ToUpper(strings.TrimSpace(raw)))
}

// Label returns the pt-BR label shown to users; unknown statuses echo themselves.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// IsTerminal reports whether the backend will no longer change the status.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}
