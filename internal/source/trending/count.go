package trending

import (
	"math"
	"strconv"
	"strings"
)

// ParseAbbreviatedCount normalizes listing counters such as "12,345", "1.2k"
// or "3M" to an integer. Unparseable input yields 0.
func ParseAbbreviatedCount(text string) int {
	text = strings.ToLower(strings.Join(strings.Fields(strings.ReplaceAll(text, ",", "")), ""))
	if text == "" {
		return 0
	}

	multiplier := 1.0
	switch {
	case strings.Contains(text, "k"):
		multiplier = 1e3
		text = strings.ReplaceAll(text, "k", "")
	case strings.Contains(text, "m"):
		multiplier = 1e6
		text = strings.ReplaceAll(text, "m", "")
	default:
		n, err := strconv.Atoi(text)
		if err != nil || n < 0 {
			return 0
		}
		return n
	}

	// ParseFloat accepts hex mantissas; listings only print decimals.
	if strings.Contains(text, "x") {
		return 0
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}

	// 1e-6 absorbs binary representation error, e.g. 4.1*1000 = 4099.999...
	v := math.Floor(f*multiplier + 1e-6)
	if v >= math.MaxInt {
		return 0
	}
	return int(v)
}
