package session

// State is a step of the workout conversation.
type State int

const (
	StateTerminal State = iota
	StateSelectMode
	StateSelectMuscle
	StateBodyWeightInput
	StateWarmupChoice
	StateWarmupInput
	StateSelectExercise
	StateSets
	StateReps
	StateWeight
	StatePostAction
)

var stateNames = map[State]string{
	StateTerminal:        "TERMINAL",
	StateSelectMode:      "SELECT_MODE",
	StateSelectMuscle:    "SELECT_MUSCLE",
	StateBodyWeightInput: "BODYWEIGHT_INPUT",
	StateWarmupChoice:    "WARMUP_CHOICE",
	StateWarmupInput:     "WARMUP_INPUT",
	StateSelectExercise:  "SELECT_EXERCISE",
	StateSets:            "SETS",
	StateReps:            "REPS",
	StateWeight:          "WEIGHT",
	StatePostAction:      "POST_ACTION",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsTerminal reports whether the conversation is over.
func (s State) IsTerminal() bool {
	return s == StateTerminal
}
