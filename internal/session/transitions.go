package session

import (
	"context"
	"errors"
	"math"

	"github.com/harperreed/gymbot/internal/i18n"
	"github.com/harperreed/gymbot/internal/models"
	"github.com/harperreed/gymbot/internal/storage"
	"github.com/harperreed/gymbot/internal/telemetry"
	"github.com/harperreed/gymbot/internal/training"
)

// transition applies action to t.sc and returns the next state. Errors
// are always *EngineError.
func (e *Engine) transition(ctx context.Context, t *turn, action Action) (State, error) {
	state := t.sc.State
	switch action.(type) {
	case Noop:
		return state, nil
	case Finish:
		return e.finish(ctx, t)
	}

	switch state {
	case StateSelectMode:
		return e.onSelectMode(ctx, t, action)
	case StateSelectMuscle:
		return e.onSelectMuscle(ctx, t, action)
	case StateBodyWeightInput:
		return e.onBodyWeight(ctx, t, action)
	case StateWarmupChoice:
		return e.onWarmupChoice(ctx, t, action)
	case StateWarmupInput:
		return e.onWarmupInput(ctx, t, action)
	case StateSelectExercise:
		return e.onSelectExercise(ctx, t, action)
	case StateSets:
		return e.onSets(t, action)
	case StateReps:
		return e.onReps(ctx, t, action)
	case StateWeight:
		return e.onWeight(ctx, t, action)
	case StatePostAction:
		return e.onPostAction(ctx, t, action)
	}
	return state, desyncErr("session_incomplete_restart")
}

func (e *Engine) onSelectMode(ctx context.Context, t *turn, action Action) (State, error) {
	sel, ok := action.(Select)
	if !ok || sel.Scope != ScopeMode {
		return StateSelectMode, inputErr("invalid_selection")
	}
	sc := t.sc
	switch sel.Index {
	case ModeRunning:
		if err := e.openSession(ctx, t, training.RunningGroup); err != nil {
			return StateSelectMode, err
		}
		return StateBodyWeightInput, nil
	case ModeStrength:
		if err := e.loadRecent(ctx, sc); err != nil {
			return StateSelectMode, err
		}
		return StateSelectMuscle, nil
	case ModeSkipDay:
		text, err := e.skipDay(ctx, sc.UserID, sc.Language)
		if err != nil {
			return StateSelectMode, err
		}
		t.final = text
		return StateTerminal, nil
	}
	return StateSelectMode, inputErr("invalid_selection")
}

func (e *Engine) onSelectMuscle(ctx context.Context, t *turn, action Action) (State, error) {
	sc := t.sc
	switch a := action.(type) {
	case Back:
		if sc.HasSession() {
			return StateSelectExercise, nil
		}
		return StateSelectMode, nil
	case Select:
		if a.Scope != ScopeMuscle {
			return StateSelectMuscle, inputErr("invalid_selection")
		}
		groups := e.catalog.MuscleGroups()
		if a.Index >= len(groups) {
			return StateSelectMuscle, inputErr("unknown_group")
		}
		group := groups[a.Index]
		if sc.HasSession() {
			// Switching groups mid-workout keeps the session and its entries.
			sc.Group = group
			sc.clearPending()
			return StateSelectExercise, nil
		}
		if err := e.openSession(ctx, t, group); err != nil {
			return StateSelectMuscle, err
		}
		return StateBodyWeightInput, nil
	}
	return StateSelectMuscle, inputErr("invalid_selection")
}

// openSession cancels any active session and opens a new one for group,
// seeding the body weight picker.
func (e *Engine) openSession(ctx context.Context, t *turn, group string) error {
	sc := t.sc
	if _, err := e.cancelActive(ctx, sc.UserID); err != nil {
		return err
	}
	id, err := e.store.CreateSession(ctx, sc.UserID, group, models.StatusActive)
	if errors.Is(err, storage.ErrActiveSessionExists) {
		// Lost a race with another start; cancel the winner and retry once.
		if _, err := e.cancelActive(ctx, sc.UserID); err != nil {
			return err
		}
		id, err = e.store.CreateSession(ctx, sc.UserID, group, models.StatusActive)
	}
	if err != nil {
		return storageErr("create session", err)
	}

	last, err := e.store.LastBodyWeight(ctx, sc.UserID)
	if err != nil {
		return storageErr("last body weight", err)
	}
	sc.SessionID = id
	sc.Group = group
	sc.BodyWeight = training.DefaultBodyWeight
	if last != nil {
		sc.BodyWeight = training.ClampBodyWeight(*last)
	}
	t.note(e.tr(sc, "workout_started", i18n.Params{"group": e.text.Group(sc.Language, group)}))
	return nil
}

func (e *Engine) loadRecent(ctx context.Context, sc *SessionContext) error {
	recent, err := e.store.RecentGroups(ctx, sc.UserID, RecentGroupCount)
	if err != nil {
		return storageErr("recent groups", err)
	}
	sc.Recent = recent
	return nil
}

func (e *Engine) onBodyWeight(ctx context.Context, t *turn, action Action) (State, error) {
	sc := t.sc
	if !sc.HasSession() {
		return StateBodyWeightInput, desyncErr("no_active_session")
	}
	switch a := action.(type) {
	case Adjust:
		if a.Field != FieldBodyWeight {
			return StateBodyWeightInput, inputErr("invalid_option")
		}
		sc.BodyWeight = training.ClampBodyWeight(sc.BodyWeight + a.Delta)
		return StateBodyWeightInput, nil
	case Text:
		kg, err := training.ParseBodyWeight(a.Raw)
		if err != nil {
			return StateBodyWeightInput, inputErr("invalid_body_weight")
		}
		sc.BodyWeight = kg
		return e.saveBodyWeight(ctx, t)
	case Confirm:
		return e.saveBodyWeight(ctx, t)
	}
	return StateBodyWeightInput, inputErr("invalid_option")
}

func (e *Engine) saveBodyWeight(ctx context.Context, t *turn) (State, error) {
	sc := t.sc
	kg := training.ClampBodyWeight(sc.BodyWeight)
	if err := e.store.SetBodyWeight(ctx, sc.SessionID, kg); err != nil {
		return StateBodyWeightInput, sessionWriteErr("set body weight", err)
	}
	sc.BodyWeightKg = &kg
	t.note(e.tr(sc, "body_weight_saved", i18n.Params{"body_weight": kg}))

	if sc.Group == training.RunningGroup {
		e.seedWarmup(sc, training.RunningWarmupMinutes, training.RunningWarmupDistance)
		return StateWarmupInput, nil
	}
	return StateWarmupChoice, nil
}

func (e *Engine) seedWarmup(sc *SessionContext, minutes, distance float64) {
	sc.WarmupStage = WarmupMinutes
	sc.WarmupMinutes = minutes
	sc.WarmupDistance = distance
}

func (e *Engine) onWarmupChoice(ctx context.Context, t *turn, action Action) (State, error) {
	sc := t.sc
	sel, ok := action.(Select)
	if !ok || sel.Scope != ScopeWarmup {
		return StateWarmupChoice, inputErr("invalid_option")
	}
	switch sel.Index {
	case WarmupYes:
		e.seedWarmup(sc, training.StrengthWarmupMinutes, training.StrengthWarmupDistance)
		return StateWarmupInput, nil
	case WarmupNo:
		if err := e.store.SetWarmup(ctx, sc.SessionID, false, nil, nil); err != nil {
			return StateWarmupChoice, sessionWriteErr("skip warm-up", err)
		}
		t.note(e.tr(sc, "warmup_skipped", nil))
		return StateSelectExercise, nil
	}
	return StateWarmupChoice, inputErr("invalid_option")
}

func (e *Engine) onWarmupInput(ctx context.Context, t *turn, action Action) (State, error) {
	sc := t.sc
	switch a := action.(type) {
	case Adjust:
		switch {
		case a.Field == FieldMinutes && sc.WarmupStage == WarmupMinutes:
			sc.WarmupMinutes = training.ClampWarmupMinutes(sc.WarmupMinutes + a.Delta)
		case a.Field == FieldDistance && sc.WarmupStage == WarmupDistance:
			sc.WarmupDistance = training.ClampWarmupDistance(sc.WarmupDistance + a.Delta)
		default:
			return StateWarmupInput, inputErr("invalid_option")
		}
		return StateWarmupInput, nil
	case Back:
		if sc.WarmupStage != WarmupDistance {
			return StateWarmupInput, inputErr("invalid_option")
		}
		sc.WarmupStage = WarmupMinutes
		return StateWarmupInput, nil
	case Confirm:
		if sc.WarmupMinutes <= 0 {
			return StateWarmupInput, inputErr("time_positive")
		}
		if sc.WarmupStage == WarmupMinutes {
			sc.WarmupStage = WarmupDistance
			return StateWarmupInput, nil
		}
		return e.saveWarmup(ctx, t)
	case Text:
		minutes, distance, err := training.ParseWarmup(a.Raw)
		if err != nil {
			return StateWarmupInput, inputErr("warmup_format_error")
		}
		sc.WarmupMinutes, sc.WarmupDistance = minutes, distance
		return e.saveWarmup(ctx, t)
	}
	return StateWarmupInput, inputErr("invalid_option")
}

func (e *Engine) saveWarmup(ctx context.Context, t *turn) (State, error) {
	sc := t.sc
	minutes := training.ClampWarmupMinutes(sc.WarmupMinutes)
	distance := training.ClampWarmupDistance(sc.WarmupDistance)
	if err := e.store.SetWarmup(ctx, sc.SessionID, true, &minutes, &distance); err != nil {
		if sc.Group == training.RunningGroup && errors.Is(err, storage.ErrNotFound) {
			return e.finish(ctx, t)
		}
		return StateWarmupInput, sessionWriteErr("save warm-up", err)
	}
	t.note(e.tr(sc, "warmup_saved", i18n.Params{"minutes": minutes, "distance": distance}))
	if sc.Group == training.RunningGroup {
		return e.finish(ctx, t)
	}
	return StateSelectExercise, nil
}

func (e *Engine) onSelectExercise(ctx context.Context, t *turn, action Action) (State, error) {
	sc := t.sc
	switch a := action.(type) {
	case Back:
		sc.clearPending()
		if err := e.loadRecent(ctx, sc); err != nil {
			return StateSelectExercise, err
		}
		t.note(e.tr(sc, "back_exercise_done", nil))
		return StateSelectMuscle, nil
	case Select:
		if a.Scope != ScopeExercise {
			return StateSelectExercise, inputErr("invalid_selection")
		}
		ex, err := e.catalog.Exercise(sc.Group, a.Index)
		if err != nil {
			return StateSelectExercise, inputErr("exercise_not_found")
		}
		sc.clearPending()
		sc.Exercise = ex.Name
		sc.Illustration = ex.Illustration
		if sc.CurrentSets == 0 {
			sc.CurrentSets = training.DefaultSets
		}
		t.note(e.tr(sc, "exercise_selected", i18n.Params{"exercise": e.text.Exercise(sc.Language, ex.Name)}))
		return StateSets, nil
	}
	return StateSelectExercise, inputErr("invalid_selection")
}

func (e *Engine) onSets(t *turn, action Action) (State, error) {
	sc := t.sc
	if sc.Exercise == "" {
		return StateSets, desyncErr("session_incomplete_restart")
	}
	switch a := action.(type) {
	case Adjust:
		step, ok := wholeDelta(a, FieldSets)
		if !ok {
			return StateSets, inputErr("invalid_option")
		}
		sc.CurrentSets = training.ClampSets(sc.CurrentSets + step)
		return StateSets, nil
	case Select:
		if a.Scope != ScopeSets {
			return StateSets, inputErr("invalid_selection")
		}
		if a.Index < training.MinSets || a.Index > training.MaxSets {
			return StateSets, inputErr("sets_range")
		}
		sc.CurrentSets = a.Index
		return e.confirmSets(t)
	case Confirm:
		return e.confirmSets(t)
	case Back:
		sc.clearPending()
		return StateSelectExercise, nil
	}
	return StateSets, inputErr("invalid_option")
}

func (e *Engine) confirmSets(t *turn) (State, error) {
	sc := t.sc
	sc.SetsTarget = training.ClampSets(sc.CurrentSets)
	sc.CurrentSets = sc.SetsTarget
	sc.Reps, sc.Weights = nil, nil
	if sc.CurrentReps == 0 {
		sc.CurrentReps = training.DefaultReps
	}
	t.note(e.tr(sc, "sets_selected", i18n.Params{"sets": sc.SetsTarget}))
	return StateReps, nil
}

func (e *Engine) onReps(ctx context.Context, t *turn, action Action) (State, error) {
	sc := t.sc
	if sc.Exercise == "" || sc.SetsTarget <= 0 {
		return StateReps, desyncErr("sets_missing_restart")
	}
	switch a := action.(type) {
	case Adjust:
		step, ok := wholeDelta(a, FieldReps)
		if !ok {
			return StateReps, inputErr("invalid_option")
		}
		sc.CurrentReps = training.ClampReps(sc.CurrentReps + step)
		return StateReps, nil
	case Confirm:
		if len(sc.Reps) >= sc.SetsTarget || len(sc.Reps) != len(sc.Weights) {
			return StateReps, desyncErr("all_sets_entered_restart")
		}
		rep := training.ClampReps(sc.CurrentReps)
		sc.Reps = append(sc.Reps, rep)
		t.note(e.tr(sc, "set_reps_selected", i18n.Params{"set_no": len(sc.Reps), "sets": sc.SetsTarget, "rep": rep}))
		return e.seedWeight(ctx, sc)
	case Back:
		sc.clearPending()
		return StateSelectExercise, nil
	}
	return StateReps, inputErr("invalid_option")
}

// seedWeight picks the starting weight: previous set, then last logged
// weight for the exercise, then the default.
func (e *Engine) seedWeight(ctx context.Context, sc *SessionContext) (State, error) {
	switch {
	case len(sc.Weights) > 0:
		sc.CurrentKg = sc.Weights[len(sc.Weights)-1]
	default:
		last, err := e.store.LastWeight(ctx, sc.UserID, sc.Exercise)
		if err != nil {
			return StateReps, storageErr("last weight", err)
		}
		sc.CurrentKg = training.DefaultWeight
		if last != nil {
			sc.CurrentKg = *last
		}
	}
	sc.CurrentKg = training.ClampWeight(sc.CurrentKg)
	return StateWeight, nil
}

func (e *Engine) onWeight(ctx context.Context, t *turn, action Action) (State, error) {
	sc := t.sc
	if sc.Exercise == "" || sc.SetsTarget <= 0 || len(sc.Reps) == 0 || len(sc.Reps) != len(sc.Weights)+1 {
		return StateWeight, desyncErr("set_context_missing_restart")
	}
	switch a := action.(type) {
	case Adjust:
		if a.Field != FieldWeight {
			return StateWeight, inputErr("invalid_weight_adjustment")
		}
		sc.CurrentKg = training.ClampWeight(sc.CurrentKg + a.Delta)
		return StateWeight, nil
	case Select:
		if a.Scope != ScopeWeight {
			return StateWeight, inputErr("invalid_selection")
		}
		switch a.Index {
		case WeightCopyPrevious:
			if len(sc.Weights) == 0 {
				return StateWeight, inputErr("no_prev_weight")
			}
			sc.CurrentKg = sc.Weights[len(sc.Weights)-1]
		case WeightBodyweight:
			if !e.bodyweightShortcut(sc) {
				return StateWeight, inputErr("no_body_weight_value")
			}
			sc.CurrentKg = training.ClampWeight(*sc.BodyWeightKg)
		default:
			return StateWeight, inputErr("invalid_selection")
		}
		return StateWeight, nil
	case Confirm:
		weight := training.ClampWeight(sc.CurrentKg)
		sc.Weights = append(sc.Weights, weight)
		t.note(e.tr(sc, "set_weight_saved", i18n.Params{"set_no": len(sc.Weights), "sets": sc.SetsTarget, "weight": weight}))
		if len(sc.Weights) < sc.SetsTarget {
			return StateReps, nil
		}
		return e.saveEntry(ctx, t)
	case Back:
		sc.clearPending()
		return StateSelectExercise, nil
	}
	return StateWeight, inputErr("invalid_option")
}

func (e *Engine) bodyweightShortcut(sc *SessionContext) bool {
	return e.catalog.HasBodyweight() && sc.BodyWeightKg != nil
}

// saveEntry persists the pending sets as one entry and reports any PR.
func (e *Engine) saveEntry(ctx context.Context, t *turn) (State, error) {
	sc := t.sc
	prior, err := e.store.MaxWeight(ctx, sc.UserID, sc.Exercise)
	if err != nil {
		return StateWeight, storageErr("max weight", err)
	}
	entry := models.NewExerciseEntry(sc.SessionID, sc.UserID, sc.Group, sc.Exercise).
		WithSetLog(sc.Reps, sc.Weights).
		WithCreatedAt(e.now())
	id, volume, err := e.store.AddExercise(ctx, entry)
	if err != nil {
		return StateWeight, storageErr("add exercise", err)
	}
	telemetry.RecordExercise(sc.Group)

	name := e.text.Exercise(sc.Language, sc.Exercise)
	record := training.DetectRecord(prior, entry.Weight)
	prLine := ""
	switch record.Kind {
	case training.RecordFirst:
		prLine = e.tr(sc, "first_pr", i18n.Params{"name": name, "weight": record.Current})
	case training.RecordNew:
		prLine = e.tr(sc, "new_pr", i18n.Params{"name": name, "old": record.Previous, "new": record.Current})
	}
	if record.IsRecord() {
		telemetry.RecordPersonalRecord(record.Kind.String())
	}
	t.note(e.tr(sc, "saved_line", i18n.Params{"name": name, "volume": volume, "pr_line": prLine}))

	sc.LastEntryID = id
	sc.CurrentReps = sc.Reps[len(sc.Reps)-1]
	sc.clearPending()
	return StatePostAction, nil
}

func (e *Engine) onPostAction(ctx context.Context, t *turn, action Action) (State, error) {
	sc := t.sc
	sel, ok := action.(Select)
	if !ok || sel.Scope != ScopePost {
		return StatePostAction, inputErr("invalid_option")
	}
	switch sel.Index {
	case PostNext:
		t.note(e.tr(sc, "add_next_exercise", nil))
		return StateSelectExercise, nil
	case PostReplace:
		if sc.LastEntryID == 0 {
			return StatePostAction, notFoundErr("replace_none")
		}
		removed, err := e.store.DeleteExercise(ctx, sc.LastEntryID, sc.UserID)
		if err != nil {
			return StatePostAction, storageErr("delete exercise", err)
		}
		sc.LastEntryID = 0
		if !removed {
			return StatePostAction, notFoundErr("replace_not_found")
		}
		t.note(e.tr(sc, "replace_pick", nil))
		return StateSelectExercise, nil
	}
	return StatePostAction, inputErr("invalid_option")
}

// wholeDelta accepts an integer step for field.
func wholeDelta(a Adjust, field Field) (int, bool) {
	if a.Field != field || a.Delta != math.Trunc(a.Delta) {
		return 0, false
	}
	return int(a.Delta), true
}

// sessionWriteErr reports a write to a session closed elsewhere as a desync.
func sessionWriteErr(op string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return desyncErr("no_active_session")
	}
	return storageErr(op, err)
}
