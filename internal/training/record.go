// ABOUTME: Personal record detection for newly logged exercise weights.
// ABOUTME: Compares the new weight against the prior max read before insert.
package training

// RecordKind classifies a personal record event.
type RecordKind int

const (
	// RecordNone means the weight did not beat the prior max.
	RecordNone RecordKind = iota
	// RecordFirst means no prior weight existed for the exercise.
	RecordFirst
	// RecordNew means the weight strictly exceeded the prior max.
	RecordNew
)

func (k RecordKind) String() string {
	switch k {
	case RecordFirst:
		return "first"
	case RecordNew:
		return "new"
	default:
		return "none"
	}
}

// RecordEvent describes the outcome of a PR check.
type RecordEvent struct {
	Kind     RecordKind
	Previous float64
	Current  float64
}

// IsRecord reports whether the event should be surfaced to the user.
func (e RecordEvent) IsRecord() bool {
	return e.Kind != RecordNone
}

// DetectRecord compares weight against the prior max, nil meaning no history.
func DetectRecord(priorMax *float64, weight float64) RecordEvent {
	if priorMax == nil {
		return RecordEvent{Kind: RecordFirst, Current: weight}
	}
	if weight > *priorMax {
		return RecordEvent{Kind: RecordNew, Previous: *priorMax, Current: weight}
	}
	return RecordEvent{Kind: RecordNone, Previous: *priorMax, Current: weight}
}
