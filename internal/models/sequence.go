// ABOUTME: Per-set sequences stored as space-separated text columns.
// ABOUTME: IntSequence holds reps, FloatSequence holds weights with two decimals.
package models

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// IntSequence is an ordered list of per-set reps.
type IntSequence []int

// String renders the sequence as "8 8 6".
func (s IntSequence) String() string {
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " ")
}

// Sum returns the total of all values.
func (s IntSequence) Sum() int {
	total := 0
	for _, v := range s {
		total += v
	}
	return total
}

// Value implements driver.Valuer. Empty sequences are stored as NULL.
func (s IntSequence) Value() (driver.Value, error) {
	if len(s) == 0 {
		return nil, nil
	}
	return s.String(), nil
}

// Scan implements sql.Scanner.
func (s *IntSequence) Scan(src any) error {
	text, ok, err := sequenceText(src)
	if err != nil || !ok {
		*s = nil
		return err
	}
	parsed, err := ParseIntSequence(text)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseIntSequence parses a space-separated list of integers.
func ParseIntSequence(text string) (IntSequence, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, nil
	}
	out := make(IntSequence, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("parse reps sequence %q: %w", text, err)
		}
		out[i] = v
	}
	return out, nil
}

// FloatSequence is an ordered list of per-set weights in kg.
type FloatSequence []float64

// String renders the sequence as "40.00 40.00 45.00".
func (s FloatSequence) String() string {
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = strconv.FormatFloat(v, 'f', 2, 64)
	}
	return strings.Join(parts, " ")
}

// Max returns the largest value, or zero for an empty sequence.
func (s FloatSequence) Max() float64 {
	if len(s) == 0 {
		return 0
	}
	m := s[0]
	for _, v := range s[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Value implements driver.Valuer. Empty sequences are stored as NULL.
func (s FloatSequence) Value() (driver.Value, error) {
	if len(s) == 0 {
		return nil, nil
	}
	return s.String(), nil
}

// Scan implements sql.Scanner.
func (s *FloatSequence) Scan(src any) error {
	text, ok, err := sequenceText(src)
	if err != nil || !ok {
		*s = nil
		return err
	}
	parsed, err := ParseFloatSequence(text)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseFloatSequence parses a space-separated list of decimals.
func ParseFloatSequence(text string) (FloatSequence, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, nil
	}
	out := make(FloatSequence, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("parse weight sequence %q: %w", text, err)
		}
		out[i] = v
	}
	return out, nil
}

func sequenceText(src any) (string, bool, error) {
	switch v := src.(type) {
	case nil:
		return "", false, nil
	case string:
		return v, true, nil
	case []byte:
		return string(v), true, nil
	default:
		return "", false, fmt.Errorf("unsupported sequence column type %T", src)
	}
}
