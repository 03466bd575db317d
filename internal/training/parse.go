// ABOUTME: Free-text numeric parsing for body weight and warm-up entry.
// ABOUTME: Accepts a comma as the decimal separator.
package training

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrInvalidNumber is returned for text that is not a usable number.
	ErrInvalidNumber = errors.New("invalid number")
	// ErrOutOfRange is returned for numbers outside the accepted range.
	ErrOutOfRange = errors.New("value out of range")
)

// ParseDecimal parses a non-negative decimal, accepting "72,4" as 72.4.
func ParseDecimal(text string) (float64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	if s == "" {
		return 0, ErrInvalidNumber
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidNumber
	}
	if v < 0 {
		return 0, ErrOutOfRange
	}
	return v, nil
}

// ParseBodyWeight parses a body weight in kg within [20,400], rounded to two decimals.
func ParseBodyWeight(text string) (float64, error) {
	v, err := ParseDecimal(text)
	if err != nil {
		return 0, err
	}
	if v < MinBodyWeight || v > MaxBodyWeight {
		return 0, ErrOutOfRange
	}
	return Round(v, 2), nil
}

// ParseWarmup parses "minutes distance_km". Minutes must be in (0,300] and
// distance in [0,200]. Values are rounded like the pickers round them.
func ParseWarmup(text string) (minutes, distance float64, err error) {
	parts := strings.Fields(text)
	if len(parts) != 2 {
		return 0, 0, ErrInvalidNumber
	}
	minutes, err = ParseDecimal(parts[0])
	if err != nil {
		return 0, 0, err
	}
	distance, err = ParseDecimal(parts[1])
	if err != nil {
		return 0, 0, err
	}
	if minutes <= 0 || minutes > MaxWarmupMinutes || distance > MaxWarmupDistance {
		return 0, 0, ErrOutOfRange
	}
	return ClampWarmupMinutes(minutes), ClampWarmupDistance(distance), nil
}
