// ABOUTME: Actions a user can send to the session engine, as a tagged union.
// ABOUTME: Callback tokens are parsed into actions once, at the transport boundary.
package session

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidToken is returned for callback data that is not an action token.
var ErrInvalidToken = errors.New("invalid action token")

// Field names a numeric picker.
type Field string

const (
	FieldBodyWeight Field = "bw"
	FieldMinutes    Field = "min"
	FieldDistance   Field = "km"
	FieldSets       Field = "sets"
	FieldReps       Field = "reps"
	FieldWeight     Field = "w"
)

// Scope names the list a selection index points into.
type Scope string

const (
	ScopeMode     Scope = "mode"
	ScopeMuscle   Scope = "grp"
	ScopeWarmup   Scope = "wu"
	ScopeExercise Scope = "ex"
	ScopeSets     Scope = "sets"
	ScopePost     Scope = "post"
	ScopeWeight   Scope = "wsc"
)

// Selection indexes inside the fixed scopes.
const (
	ModeRunning  = 0
	ModeStrength = 1
	ModeSkipDay  = 2

	WarmupYes = 0
	WarmupNo  = 1

	PostNext    = 0
	PostReplace = 1

	WeightCopyPrevious = 0
	WeightBodyweight   = 1
)

// Action is one user input to the engine.
type Action interface {
	// Token is the callback data that parses back into this action.
	Token() string
}

// Adjust nudges the picker for Field by Delta.
type Adjust struct {
	Field Field
	Delta float64
}

// Select picks entry Index from the list named by Scope.
type Select struct {
	Scope Scope
	Index int
}

// Confirm accepts the current picker value.
type Confirm struct{}

// Back returns to the previous list, dropping unsaved input.
type Back struct{}

// Finish ends the workout from any state.
type Finish struct{}

// Text is free-form typed input.
type Text struct {
	Raw string
}

// Noop is sent by display-only buttons.
type Noop struct{}

func (a Adjust) Token() string {
	return "adj:" + string(a.Field) + ":" + strconv.FormatFloat(a.Delta, 'f', -1, 64)
}

func (a Select) Token() string {
	return "sel:" + string(a.Scope) + ":" + strconv.Itoa(a.Index)
}

func (Confirm) Token() string { return "ok" }
func (Back) Token() string    { return "back" }
func (Finish) Token() string  { return "end" }
func (Noop) Token() string    { return "noop" }

// Token for free text is empty; text never travels as callback data.
func (Text) Token() string { return "" }

var knownFields = map[Field]bool{
	FieldBodyWeight: true,
	FieldMinutes:    true,
	FieldDistance:   true,
	FieldSets:       true,
	FieldReps:       true,
	FieldWeight:     true,
}

var knownScopes = map[Scope]bool{
	ScopeMode:     true,
	ScopeMuscle:   true,
	ScopeWarmup:   true,
	ScopeExercise: true,
	ScopeSets:     true,
	ScopePost:     true,
	ScopeWeight:   true,
}

// ParseAction decodes callback data into an Action.
func ParseAction(token string) (Action, error) {
	token = strings.TrimSpace(token)
	switch token {
	case "ok":
		return Confirm{}, nil
	case "back":
		return Back{}, nil
	case "end":
		return Finish{}, nil
	case "noop":
		return Noop{}, nil
	}

	parts := strings.Split(token, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidToken, token)
	}
	switch parts[0] {
	case "adj":
		field := Field(parts[1])
		if !knownFields[field] {
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidToken, parts[1])
		}
		delta, err := strconv.ParseFloat(parts[2], 64)
		if err != nil || math.IsNaN(delta) || math.IsInf(delta, 0) {
			return nil, fmt.Errorf("%w: bad delta %q", ErrInvalidToken, parts[2])
		}
		return Adjust{Field: field, Delta: delta}, nil
	case "sel":
		scope := Scope(parts[1])
		if !knownScopes[scope] {
			return nil, fmt.Errorf("%w: unknown scope %q", ErrInvalidToken, parts[1])
		}
		idx, err := strconv.Atoi(parts[2])
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("%w: bad index %q", ErrInvalidToken, parts[2])
		}
		return Select{Scope: scope, Index: idx}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidToken, token)
}
