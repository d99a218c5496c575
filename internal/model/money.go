package model

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidAmount is returned when an amount cannot be parsed.
var ErrInvalidAmount = errors.New("must be a numeric amount")

// amountPattern accepts "12", "12.5", "12,50", "-3.10".
var amountPattern = regexp.MustCompile(`^-?\d+([.,]\d{1,2})?$`)

// Cents is a monetary amount stored as an integer number of cents.
// On the wire it is a decimal number with two places.
type Cents int64

// MaxCents bounds amounts accepted by the entity schemas: 100 million
// in currency units.
const MaxCents Cents = 100_000_000_00

// ParseCents parses a decimal string into Cents. Both "." and "," are
// accepted as the decimal separator. Digits are converted exactly, so
// values that do not fit in an int64 are rejected instead of wrapping.
func ParseCents(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	if !amountPattern.MatchString(s) {
		return 0, ErrInvalidAmount
	}

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	whole, frac, _ := strings.Cut(strings.Replace(s, ",", ".", 1), ".")
	frac = (frac + "00")[:2]

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units > (math.MaxInt64-99)/100 {
		return 0, ErrInvalidAmount
	}
	cents, _ := strconv.ParseInt(frac, 10, 64)

	v := units*100 + cents
	if neg {
		v = -v
	}
	return Cents(v), nil
}

// fromFloat converts a JSON number that is not a plain two-place decimal,
// such as 1e3 or 0.125, rounding to the nearest cent.
func fromFloat(f float64) (Cents, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= float64(math.MaxInt64/100) {
		return 0, ErrInvalidAmount
	}
	return Cents(math.Round(f * 100)), nil
}

// String formats the amount as a decimal with two places.
func (c Cents) String() string {
	sign := ""
	v := uint64(c)
	if c < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON encodes the amount as a JSON number.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (c *Cents) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}

	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return ErrInvalidAmount
		}
		parsed, err := ParseCents(unquoted)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	if amountPattern.MatchString(s) && !strings.Contains(s, ",") {
		parsed, err := ParseCents(s)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return ErrInvalidAmount
	}
	parsed, err := fromFloat(f)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
