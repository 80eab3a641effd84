package price

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Amount is a price in the storefront's display currency, rounded to whole units
type Amount int64

// ErrParseDegraded is returned by Parse when the text holds no digit at all
var ErrParseDegraded = errors.New("price text does not contain a number")

// MaxAmount is the largest representable amount
const MaxAmount = Amount(math.MaxInt64)

// maxFloat is 2^63, the first float64 that no longer fits an int64
const maxFloat = float64(1 << 63)

// Normalize converts loosely formatted price text such as "$1,234.56" into a whole amount.
// Anything that is not a digit or a dot is discarded before parsing. Text that still
// fails to parse, or is too large for an Amount, degrades to zero. Halves round away from zero.
func Normalize(raw string) Amount {
	a, _ := normalize(raw)
	return a
}

// Parse behaves like Normalize but reports ErrParseDegraded for non-blank text without digits
// and for numbers too large for an Amount. Blank text is an empty field, not a malformed one,
// and yields zero.
func Parse(raw string) (Amount, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	if !strings.ContainsFunc(raw, isDigit) {
		return 0, fmt.Errorf("%w: %q", ErrParseDegraded, raw)
	}
	a, inRange := normalize(raw)
	if !inRange {
		return 0, fmt.Errorf("%w: %q exceeds %s", ErrParseDegraded, raw, MaxAmount)
	}
	return a, nil
}

// normalize reports false only when the text parses but does not fit an Amount
func normalize(raw string) (Amount, bool) {
	cleaned := strip(raw)
	if cleaned == "" {
		return 0, true
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if math.IsInf(value, 0) {
		return 0, false
	}
	if errors.Is(err, strconv.ErrRange) {
		// underflow
		return 0, true
	}
	if err != nil || math.IsNaN(value) {
		return 0, true
	}

	value = math.Round(value)
	if value >= maxFloat {
		return 0, false
	}
	return Amount(value), true
}

// Sum adds the given amounts, saturating at MaxAmount instead of wrapping
func Sum(amounts ...Amount) Amount {
	var total Amount
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Add returns a+b, saturating at MaxAmount. Both operands are expected to be non-negative.
func (a Amount) Add(b Amount) Amount {
	if b > 0 && a > MaxAmount-b {
		return MaxAmount
	}
	return a + b
}

// String renders the amount the way the storefront displays it
func (a Amount) String() string {
	return fmt.Sprintf("$%d", int64(a))
}

// strip keeps only ASCII digits and dots
func strip(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if isDigit(r) || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isDigit(r rune) bool {
	return r <= unicode.MaxASCII && unicode.IsDigit(r)
}
