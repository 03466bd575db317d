// ABOUTME: Training volume computation for logged exercise entries.
// ABOUTME: Volume is the reps x weight work proxy with legacy fallbacks.
package training

import (
	"github.com/harperreed/gymbot/internal/models"
)

// Volume computes the training volume of an entry.
//
// With equal-length reps and weight sequences it is the sum of reps_i * weight_i.
// With a reps sequence only (or sequences of different length) it is the total
// reps times the representative weight. Without sequences it is sets * reps * weight.
func Volume(sets, reps int, weight float64, repsSeq []int, weightSeq []float64) float64 {
	if len(repsSeq) > 0 && len(weightSeq) > 0 && len(repsSeq) == len(weightSeq) {
		total := 0.0
		for i, r := range repsSeq {
			total += float64(r) * weightSeq[i]
		}
		return total
	}
	if len(repsSeq) > 0 {
		return float64(models.IntSequence(repsSeq).Sum()) * weight
	}
	return float64(sets*reps) * weight
}

// EntryVolume computes Volume from an entry's fields.
func EntryVolume(e *models.ExerciseEntry) float64 {
	return Volume(e.Sets, e.Reps, e.Weight, e.RepsSequence, e.WeightSequence)
}
