// ABOUTME: Numeric picker ranges, clamping and rounding rules.
// ABOUTME: Every adjust-and-confirm value passes through these helpers.
package training

import (
	"math"
)

// Picker bounds.
const (
	MinBodyWeight = 20.0
	MaxBodyWeight = 400.0

	MinWeight = 1.0
	MaxWeight = 500.0

	MinWarmupMinutes = 0.0
	MaxWarmupMinutes = 300.0

	MinWarmupDistance = 0.0
	MaxWarmupDistance = 200.0

	MinSets = 1
	MaxSets = 6

	MinReps = 1
	MaxReps = 100
)

// Picker seeds used when nothing better is known.
const (
	DefaultBodyWeight = 70.0
	DefaultWeight     = 20.0
	DefaultSets       = 3
	DefaultReps       = 10

	StrengthWarmupMinutes  = 5.0
	StrengthWarmupDistance = 1.0
	RunningWarmupMinutes   = 20.0
	RunningWarmupDistance  = 3.0
)

// Round rounds v half away from zero to the given number of decimals.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(math.Max(v, lo), hi)
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// ClampBodyWeight bounds body weight to [20,400] kg with two decimals.
func ClampBodyWeight(v float64) float64 {
	return Round(clampFloat(v, MinBodyWeight, MaxBodyWeight), 2)
}

// ClampWeight bounds a set weight to [1,500] kg with two decimals.
func ClampWeight(v float64) float64 {
	return Round(clampFloat(v, MinWeight, MaxWeight), 2)
}

// ClampWarmupMinutes bounds warm-up time to [0,300] minutes with two decimals.
func ClampWarmupMinutes(v float64) float64 {
	return Round(clampFloat(v, MinWarmupMinutes, MaxWarmupMinutes), 2)
}

// ClampWarmupDistance bounds warm-up distance to [0,200] km with one decimal.
func ClampWarmupDistance(v float64) float64 {
	return Round(clampFloat(v, MinWarmupDistance, MaxWarmupDistance), 1)
}

// ClampSets bounds the set count to [1,6].
func ClampSets(v int) int {
	return clampInt(v, MinSets, MaxSets)
}

// ClampReps bounds reps to [1,100].
func ClampReps(v int) int {
	return clampInt(v, MinReps, MaxReps)
}
