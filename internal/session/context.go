// ABOUTME: Ephemeral per-user working state of an in-progress workout conversation.
// ABOUTME: Never persisted; the engine clones it before every transition.
package session

import (
	"time"

	"github.com/harperreed/gymbot/internal/models"
)

// WarmupStage is the sub-step of WARMUP_INPUT.
type WarmupStage int

const (
	WarmupMinutes WarmupStage = iota
	WarmupDistance
)

// SessionContext is the working state for one user's conversation.
type SessionContext struct {
	UserID   int64
	Language models.Language
	State    State

	// SessionID is zero until a workout session row exists.
	SessionID int64
	// Group is the working muscle group; it can differ from the session's
	// group after the user switches groups mid-workout.
	Group  string
	Recent []string

	BodyWeight   float64
	BodyWeightKg *float64

	WarmupStage    WarmupStage
	WarmupMinutes  float64
	WarmupDistance float64

	Exercise     string
	Illustration string
	SetsTarget   int
	CurrentSets  int
	CurrentReps  int
	CurrentKg    float64
	Reps         []int
	Weights      []float64

	LastEntryID int64
	UpdatedAt   time.Time
}

func newContext(userID int64, lang models.Language, now time.Time) *SessionContext {
	return &SessionContext{
		UserID:    userID,
		Language:  lang,
		State:     StateSelectMode,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy so a failed transition never leaks partial writes.
func (c *SessionContext) Clone() *SessionContext {
	out := *c
	if c.Recent != nil {
		out.Recent = append([]string(nil), c.Recent...)
	}
	if c.BodyWeightKg != nil {
		kg := *c.BodyWeightKg
		out.BodyWeightKg = &kg
	}
	if c.Reps != nil {
		out.Reps = append([]int(nil), c.Reps...)
	}
	if c.Weights != nil {
		out.Weights = append([]float64(nil), c.Weights...)
	}
	return &out
}

// HasSession reports whether a workout session row has been opened.
func (c *SessionContext) HasSession() bool {
	return c.SessionID != 0
}

// SetNumber is the 1-based set currently being entered.
func (c *SessionContext) SetNumber() int {
	return len(c.Reps) + 1
}

// clearPending drops the unsaved exercise, keeping the carried sets and reps.
func (c *SessionContext) clearPending() {
	c.Exercise = ""
	c.Illustration = ""
	c.SetsTarget = 0
	c.CurrentKg = 0
	c.Reps = nil
	c.Weights = nil
}
