package session

import (
	"context"
	"errors"
	"strings"

	"github.com/harperreed/gymbot/internal/i18n"
	"github.com/harperreed/gymbot/internal/models"
	"github.com/harperreed/gymbot/internal/report"
	"github.com/harperreed/gymbot/internal/storage"
	"github.com/harperreed/gymbot/internal/telemetry"
	"github.com/harperreed/gymbot/internal/training"
)

// finish closes the session. It completes when an entry was saved, or for
// a running session with a timed warm-up; otherwise it is cancelled.
// Completion and the rotation advance commit together, and a session found
// already completed by this conversation only has its summary rendered again.
func (e *Engine) finish(ctx context.Context, t *turn) (State, error) {
	sc := t.sc
	state := sc.State
	if !sc.HasSession() {
		t.final = e.tr(sc, "workout_ended", nil)
		return StateTerminal, nil
	}

	session, err := e.store.GetSession(ctx, sc.SessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return state, desyncErr("no_active_session")
	}
	if err != nil {
		return state, storageErr("get session", err)
	}
	totals, err := e.store.SessionTotals(ctx, sc.SessionID)
	if err != nil {
		return state, storageErr("session totals", err)
	}

	running := session.MuscleGroup == training.RunningGroup &&
		session.WarmupDone && session.WarmupMinutesValue() > 0

	switch {
	case session.Status == models.StatusCompleted:
		// An earlier finish committed; only its summary is missing.
	case !session.IsActive():
		return state, desyncErr("no_active_session")
	case totals.Count > 0 || running:
		if _, err := e.store.CompleteSession(ctx, sc.SessionID, sc.UserID, session.MuscleGroup); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return state, desyncErr("no_active_session")
			}
			return state, storageErr("complete session", err)
		}
		telemetry.RecordSessionClosed(string(models.StatusCompleted))
	default:
		// Cancelling changes neither the recent groups nor the rotation.
		text, err := e.emptyFinishText(ctx, sc)
		if err != nil {
			return state, err
		}
		if err := e.store.CloseSession(ctx, sc.SessionID, models.StatusCancelled); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return state, desyncErr("no_active_session")
			}
			return state, storageErr("close session", err)
		}
		telemetry.RecordSessionClosed(string(models.StatusCancelled))
		t.final = text
		return StateTerminal, nil
	}

	t.final, err = e.finishText(ctx, sc, session, totals)
	if err != nil {
		return state, err
	}
	return StateTerminal, nil
}

func (e *Engine) emptyFinishText(ctx context.Context, sc *SessionContext) (string, error) {
	recent, next, err := e.rotationInfo(ctx, sc.UserID)
	if err != nil {
		return "", err
	}
	return e.tr(sc, "workout_finish_empty", i18n.Params{
		"recent":     e.text.Groups(sc.Language, recent),
		"next_group": e.text.Group(sc.Language, next),
	}), nil
}

func (e *Engine) finishText(ctx context.Context, sc *SessionContext, session *models.WorkoutSession, totals models.SessionTotals) (string, error) {
	lang := sc.Language
	recent, next, err := e.rotationInfo(ctx, sc.UserID)
	if err != nil {
		return "", err
	}

	warmupLine := ""
	if session.WarmupDone {
		warmupLine = e.tr(sc, "warmup_line", i18n.Params{
			"minutes":  session.WarmupMinutesValue(),
			"distance": session.WarmupDistanceValue(),
		})
	}

	var b strings.Builder
	b.WriteString(e.tr(sc, "workout_finish", i18n.Params{
		"count":       totals.Count,
		"volume":      totals.Volume,
		"warmup_line": warmupLine,
		"recent":      e.text.Groups(lang, recent),
		"next_group":  e.text.Group(lang, next),
	}))

	completed, err := e.store.LastCompletedWorkouts(ctx, sc.UserID, 2)
	if err != nil {
		return "", storageErr("last completed workouts", err)
	}
	if len(completed) > 0 {
		current := completed[0].BodyWeightKg
		var previous *float64
		if len(completed) > 1 {
			previous = completed[1].BodyWeightKg
		}
		b.WriteString(e.tr(sc, "body_weight_line", i18n.Params{
			"body_weight": report.BodyWeightText(e.text, lang, current),
			"delta":       report.BodyWeightChange(e.text, lang, current, previous),
		}))
	}

	now := e.now()
	week := report.Week(now)
	month := report.Month(now)
	weekRun, err := e.store.RunningTotals(ctx, sc.UserID, week.Start, week.End)
	if err != nil {
		return "", storageErr("running totals", err)
	}
	monthRun, err := e.store.RunningTotals(ctx, sc.UserID, month.Start, month.End)
	if err != nil {
		return "", storageErr("running totals", err)
	}
	b.WriteString(e.tr(sc, "running_week_line", i18n.Params{"minutes": weekRun.Minutes, "distance": weekRun.DistanceKm}))
	b.WriteString(e.tr(sc, "running_month_line", i18n.Params{"minutes": monthRun.Minutes, "distance": monthRun.DistanceKm}))

	total, err := e.store.TotalVolume(ctx, sc.UserID)
	if err != nil {
		return "", storageErr("total volume", err)
	}
	b.WriteString(e.tr(sc, "volume_total_line", i18n.Params{"volume": total}))
	return b.String(), nil
}

func (e *Engine) rotationInfo(ctx context.Context, userID int64) ([]string, string, error) {
	recent, err := e.store.RecentGroups(ctx, userID, RecentGroupCount)
	if err != nil {
		return nil, "", storageErr("recent groups", err)
	}
	next, err := e.store.NextMuscleGroup(ctx, userID)
	if err != nil {
		return nil, "", storageErr("next muscle group", err)
	}
	return recent, next, nil
}
