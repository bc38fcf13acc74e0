package view

import (
	"math"
	"strconv"
	"strings"
)

// FormatValue prints a float for hover text: shortest round-trip digits,
// always with a decimal part, exponent notation below 1e-4 and from 1e16 up
// ("5.0", "0.125", "1e-05").
func FormatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
