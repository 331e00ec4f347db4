package service

import (
	"math"
	"strconv"
	"strings"
)

// CoerceInput turns the text of a number field into a value the engine
// accepts. Empty text is 0, text that is not a number is NaN (the engine
// stores it as 0).
func CoerceInput(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
