// Package parse normalizes scraped indicator fields into nullable decimals.
package parse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrMalformed marks input that is neither a known null sentinel nor a
// parseable number.
var ErrMalformed = errors.New("malformed numeric value")

// Suffix multipliers used by the calendar source ("224K", "1.2M").
var suffixExponents = map[byte]int32{
	'K': 3,
	'M': 6,
	'B': 9,
	'T': 12,
}

// ParseValue converts a raw scraped field into a decimal. Null sentinels
// ("", "N/A", "-", "n/a") yield (nil, nil). Percent signs, thousands
// separators and leading currency letters are stripped; a trailing K/M/B/T
// scales the value.
func ParseValue(raw string) (*decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if isNullSentinel(s) {
		return nil, nil
	}

	var exp int32
	if n := len(s); n > 0 {
		if e, ok := suffixExponents[upperByte(s[n-1])]; ok {
			exp = e
			s = strings.TrimSpace(s[:n-1])
		}
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "%", "")
	s = strings.TrimSpace(s)

	// Some cells carry a unit prefix like "$" or "¥".
	s = strings.TrimLeft(s, "$€£¥ ")

	if s == "" || s == "-" || s == "+" {
		return nil, fmt.Errorf("%w: %q", ErrMalformed, raw)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrMalformed, raw)
	}
	if exp != 0 {
		d = d.Shift(exp)
	}
	return &d, nil
}

func isNullSentinel(s string) bool {
	switch strings.ToLower(s) {
	case "", "n/a", "-", "--", "na":
		return true
	}
	return false
}

func upperByte(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
