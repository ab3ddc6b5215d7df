package pricing

import (
	"math"
	"strconv"
	"strings"
)

// roundEpsilon nudges values sitting on a half-cent boundary off the binary
// representation error before rounding (0.615*100 is 61.49999... in float64).
const roundEpsilon = 1e-9

// ParseNumber converts a raw form value into a float64. Quote documents come
// from the browser, so a numeric field may arrive as a JSON number, a
// comma-decimal string ("1.234,56"), a dot-decimal string ("1,234.56"), a
// currency-prefixed string ("R$ 12,50"), or be missing entirely. Anything
// that cannot be read as a finite number is 0; ParseNumber never fails.
func ParseNumber(value any) float64 {
	switch v := value.(type) {
	case float64:
		return finiteOrZero(v)
	case float32:
		return finiteOrZero(float64(v))
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		return parseNumericString(v)
	}
	return 0
}

// parseNumericString strips everything except digits and separators, then
// decides which separator is decimal: when both appear the rightmost one
// wins and the other is treated as thousands grouping; a lone comma is
// always decimal.
func parseNumericString(raw string) float64 {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" {
		return 0
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		s = strings.ReplaceAll(s, ",", ".")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return finiteOrZero(f)
}

// Round2 rounds half away from zero to two decimals. Non-finite input is 0,
// so a pathological intermediate value degrades instead of poisoning the
// whole result.
func Round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return math.Round(x*100+math.Copysign(roundEpsilon, x)) / 100
}

func finiteOrZero(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}
