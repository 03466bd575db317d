// ABOUTME: Aggregate read models derived from sessions and exercise entries.
// ABOUTME: Totals, windowed summaries, personal records and history rows.
package models

import (
	"time"
)

// SessionTotals aggregates the entries of one session.
type SessionTotals struct {
	Count  int     `json:"count" yaml:"count"`
	Volume float64 `json:"volume" yaml:"volume"`
}

// Summary aggregates a user's training over a [Start, End) window.
type Summary struct {
	Start          time.Time          `json:"start" yaml:"start"`
	End            time.Time          `json:"end" yaml:"end"`
	SessionCount   int                `json:"session_count" yaml:"session_count"`
	ExerciseCount  int                `json:"exercise_count" yaml:"exercise_count"`
	TotalVolume    float64            `json:"total_volume" yaml:"total_volume"`
	GroupVolumes   map[string]float64 `json:"group_volumes" yaml:"group_volumes"`
	WarmupCount    int                `json:"warmup_count" yaml:"warmup_count"`
	WarmupMinutes  float64            `json:"warmup_minutes_total" yaml:"warmup_minutes_total"`
	WarmupDistance float64            `json:"warmup_distance_total" yaml:"warmup_distance_total"`
}

// RunningTotals sums warm-up/running time and distance over a window.
type RunningTotals struct {
	Minutes    float64 `json:"minutes" yaml:"minutes"`
	DistanceKm float64 `json:"distance_km" yaml:"distance_km"`
}

// PersonalRecord is the heaviest weight a user logged for an exercise.
type PersonalRecord struct {
	Name      string  `json:"name" yaml:"name"`
	MaxWeight float64 `json:"max_weight" yaml:"max_weight"`
}

// CompletedWorkout is a closed session with its entry aggregates.
type CompletedWorkout struct {
	SessionID     int64      `json:"session_id" yaml:"session_id"`
	MuscleGroup   string     `json:"muscle_group" yaml:"muscle_group"`
	EndedAt       *time.Time `json:"ended_at,omitempty" yaml:"ended_at,omitempty"`
	BodyWeightKg  *float64   `json:"body_weight_kg,omitempty" yaml:"body_weight_kg,omitempty"`
	ExerciseCount int        `json:"exercise_count" yaml:"exercise_count"`
	TotalVolume   float64    `json:"total_volume" yaml:"total_volume"`
}

// HistoryRow joins an entry with the session fields exported to CSV.
type HistoryRow struct {
	Entry            ExerciseEntry
	BodyWeightKg     *float64
	WarmupDone       bool
	WarmupMinutes    *float64
	WarmupDistanceKm *float64
}
