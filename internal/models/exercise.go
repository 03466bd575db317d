// ABOUTME: ExerciseEntry model for one logged exercise within a session.
// ABOUTME: An entry is built from its per-set reps and weights.
package models

import (
	"math"
	"time"
)

// ExerciseEntry is one exercise logged within a workout session.
type ExerciseEntry struct {
	ID             int64
	SessionID      int64
	UserID         int64
	MuscleGroup    string
	Name           string
	Sets           int
	Reps           int
	RepsSequence   IntSequence
	Weight         float64
	WeightSequence FloatSequence
	Volume         float64
	CreatedAt      time.Time
}

// NewExerciseEntry creates an entry for the given session and exercise name.
// CreatedAt is left zero so the store stamps it when saving.
func NewExerciseEntry(sessionID, userID int64, muscleGroup, name string) *ExerciseEntry {
	return &ExerciseEntry{
		SessionID:   sessionID,
		UserID:      userID,
		MuscleGroup: muscleGroup,
		Name:        name,
	}
}

// WithSetLog fills sets, representative reps and weight from per-set values.
// Reps is the rounded mean (at least 1) and weight is the heaviest set.
func (e *ExerciseEntry) WithSetLog(reps []int, weights []float64) *ExerciseEntry {
	e.RepsSequence = append(IntSequence(nil), reps...)
	e.WeightSequence = append(FloatSequence(nil), weights...)
	e.Sets = len(reps)
	if len(reps) > 0 {
		mean := float64(e.RepsSequence.Sum()) / float64(len(reps))
		e.Reps = max(1, int(math.Round(mean)))
	}
	e.Weight = e.WeightSequence.Max()
	return e
}

// WithTotals sets flat sets/reps/weight for entries without a set log.
func (e *ExerciseEntry) WithTotals(sets, reps int, weight float64) *ExerciseEntry {
	e.Sets = sets
	e.Reps = reps
	e.Weight = weight
	return e
}

// WithCreatedAt overrides the creation timestamp.
func (e *ExerciseEntry) WithCreatedAt(t time.Time) *ExerciseEntry {
	e.CreatedAt = t.UTC()
	return e
}
