package analysis

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// BankName is the stable enum token the backend uses to identify a tracked bank.
type BankName string

const (
	BancoDoBrasil BankName = "BANCO_DO_BRASIL"
	Bradesco      BankName = "BRADESCO"
	Itau          BankName = "ITAU"
	Santander     BankName = "SANTANDER"
)

// knownBanks keeps declaration order; the display value is what the backend stores as the bank name.
var knownBanks = []struct {
	name    BankName
	display string
}{
	{BancoDoBrasil, "Banco do Brasil"},
	{Bradesco, "Bradesco"},
	{Itau, "Itaú"},
	{Santander, "Santander"},
}

// KnownBanks returns the tracked bank tokens in declaration order.
func KnownBanks() []BankName {
	out := make([]BankName, 0, len(knownBanks))
	for _, b := range knownBanks {
		out = append(out, b.name)
	}
	return out
}

// ParseBankName accepts either the enum token or the display value.
func ParseBankName(value string) (BankName, error) {
	value = strings.TrimSpace(value)
	for _, b := range knownBanks {
		if string(b.name) == value || b.display == value {
			return b.name, nil
		}
	}
	return "", fmt.Errorf("no bank with name or value %q", value)
}

// Display returns the canonical display value, or a title-cased token for banks outside the catalog.
func (n BankName) Display() string {
	for _, b := range knownBanks {
		if b.name == n {
			return b.display
		}
	}
	return FormatBankName(string(n))
}

// Bank is one entry of GET /api/banks.
type Bank struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name,omitempty"`
	Variations  []string `json:"variations,omitempty"`
}

// Label is what selection inputs show for the bank.
func (b Bank) Label() string {
	if b.DisplayName != "" {
		return b.DisplayName
	}
	return FormatBankName(b.Name)
}

// FormatBankName turns BANCO_DO_BRASIL into "Banco Do Brasil".
func FormatBankName(token string) string {
	parts := strings.Split(token, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(p)
		parts[i] = string(unicode.ToUpper(r)) + strings.ToLower(p[size:])
	}
	return strings.Join(parts, " ")
}

// BankNameSet collects the enum tokens of a bank list. Display names are not accepted:
// the backend only parses tokens.
func BankNameSet(banks []Bank) map[string]struct{} {
	set := make(map[string]struct{}, len(banks))
	for _, b := range banks {
		set[b.Name] = struct{}{}
	}
	return set
}

// UnknownBanks returns the names absent from set, in input order.
func UnknownBanks(set map[string]struct{}, names []string) []string {
	var unknown []string
	for _, n := range names {
		if _, ok := set[n]; !ok {
			unknown = append(unknown, n)
		}
	}
	return unknown
}
