package source

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	numberRe = regexp.MustCompile(`\d[\d.,]*`)
	unitRe   = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(kg|kgs|kilo|kilos|grs|gr|g|lts|lt|l|litros?|ml|cc|un|unid|unidades|u)\b`)
)

// ParsePrice reads a local-currency price such as "$1.290", "1.290,50" or
// "CLP 990". Dots and commas are told apart by position: the last one is a
// decimal separator unless exactly three digits follow it.
func ParsePrice(raw string) (float64, error) {
	num := numberRe.FindString(raw)
	if num == "" {
		return 0, fmt.Errorf("%w: no digits in price %q", ErrParse, raw)
	}
	num = strings.TrimRight(num, ".,")

	lastDot := strings.LastIndexByte(num, '.')
	lastComma := strings.LastIndexByte(num, ',')
	sep := lastDot
	if lastComma > sep {
		sep = lastComma
	}

	var normalized string
	switch {
	case sep < 0:
		normalized = num
	case lastDot >= 0 && lastComma >= 0:
		intPart := stripSeparators(num[:sep])
		normalized = intPart + "." + num[sep+1:]
	case len(num)-sep-1 == 3:
		// Single separator kind followed by three digits: thousands.
		normalized = stripSeparators(num)
	case strings.Count(num, string(num[sep])) > 1:
		normalized = stripSeparators(num)
	default:
		normalized = num[:sep] + "." + num[sep+1:]
	}

	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: price %q: %v", ErrParse, raw, err)
	}
	return v, nil
}

func stripSeparators(s string) string {
	return strings.NewReplacer(".", "", ",", "").Replace(s)
}

// ParseUnit extracts a size and unit ("500 g", "1 kg", "1.5 l") from a
// listing label. Labels without a recognizable unit yield "".
func ParseUnit(label string) string {
	m := unitRe.FindStringSubmatch(label)
	if m == nil {
		return ""
	}
	size := strings.ReplaceAll(m[1], ",", ".")
	return size + " " + canonicalUnit(m[2])
}

func canonicalUnit(u string) string {
	switch strings.ToLower(u) {
	case "kg", "kgs", "kilo", "kilos":
		return "kg"
	case "g", "gr", "grs":
		return "g"
	case "l", "lt", "lts", "litro", "litros":
		return "l"
	case "ml", "cc":
		return "ml"
	default:
		return "un"
	}
}
