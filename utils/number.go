package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a price as it arrives from either store: a JSON number, a numeric
// string, null, or occasionally free text. Numeric inputs are normalised so
// that 10, "10" and "10.00" compare equal.
type Amount struct {
	Decimal decimal.Decimal
	Valid   bool
	Raw     string
}

// groupedNumber matches numbers written with well-formed thousands separators.
var groupedNumber = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+(\.\d+)?$`)

// ParseAmount reads raw as a decimal. Commas are accepted only as thousands
// separators; anything else that is not a plain number is kept as text.
func ParseAmount(raw string) Amount {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Amount{}
	}
	clean := raw
	if groupedNumber.MatchString(clean) {
		clean = strings.ReplaceAll(clean, ",", "")
	}
	if strings.ContainsAny(clean, ", \t") {
		return Amount{Raw: raw}
	}
	if d, err := decimal.NewFromString(clean); err == nil {
		return Amount{Decimal: d, Valid: true, Raw: raw}
	}
	return Amount{Raw: raw}
}

func AmountFromNullDecimal(d decimal.NullDecimal) Amount {
	if !d.Valid {
		return Amount{}
	}
	return Amount{Decimal: d.Decimal, Valid: true, Raw: d.Decimal.String()}
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = Amount{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = ParseAmount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	*a = ParseAmount(n.String())
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if a.IsNull() {
		return []byte("null"), nil
	}
	if a.Valid {
		return []byte(a.Decimal.String()), nil
	}
	return json.Marshal(a.Raw)
}

func (a Amount) IsNull() bool {
	return !a.Valid && a.Raw == ""
}

// Equal compares numerically when both sides are numbers and textually otherwise.
func (a Amount) Equal(b Amount) bool {
	if a.Valid && b.Valid {
		return a.Decimal.Equal(b.Decimal)
	}
	if a.Valid != b.Valid {
		return false
	}
	return a.Raw == b.Raw
}

func (a Amount) String() string {
	if a.Valid {
		return a.Decimal.String()
	}
	return a.Raw
}
