package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// Validation messages surfaced to end users verbatim.
const (
	MsgZeroAmount    = "Amount cannot be zero"
	MsgInvalidAmount = "Please enter a valid amount"
)

// decimalRe matches plain decimal literals: optional sign, digits, optional
// fractional part. "5.", ".5" and "-0.25" match; "1e3", "0x10" and "NaN" do not.
var decimalRe = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// parseDecimal returns the value of s and whether s is a decimal literal.
func parseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if !decimalRe.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Out of float64 range.
		return 0, false
	}
	if v == 0 && strings.ContainsAny(s, "123456789") {
		// Nonzero text that underflows to zero.
		return 0, false
	}
	return v, true
}

// ValidateAmount checks raw amount text before conversion. It returns
// (true, "") for a usable amount, otherwise false and the message to show.
func ValidateAmount(raw string) (bool, string) {
	v, ok := parseDecimal(raw)
	switch {
	case ok && v == 0:
		return false, MsgZeroAmount
	case !ok:
		return false, MsgInvalidAmount
	default:
		return true, ""
	}
}

// ParseAmount validates raw and returns its numeric value.
func ParseAmount(raw string) (float64, error) {
	if ok, msg := ValidateAmount(raw); !ok {
		return 0, invalidInput(msg)
	}
	v, _ := parseDecimal(raw)
	return v, nil
}

// FormatValue renders v as the shortest plain decimal that parses back to v,
// so a result can be fed straight back in as an amount.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
