// ABOUTME: Workout session persistence: create, close, warm-up and body weight.
// ABOUTME: Each call is its own transaction; none spans a conversational turn.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/harperreed/gymbot/internal/models"
	"github.com/harperreed/gymbot/internal/training"
)

type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type sessionRow struct {
	ID               int64           `db:"id"`
	UserID           int64           `db:"user_id"`
	MuscleGroup      string          `db:"muscle_group"`
	StartedAt        string          `db:"started_at"`
	EndedAt          sql.NullString  `db:"ended_at"`
	BodyWeightKg     sql.NullFloat64 `db:"body_weight_kg"`
	WarmupDone       bool            `db:"warmup_done"`
	WarmupMinutes    sql.NullFloat64 `db:"warmup_minutes"`
	WarmupDistanceKm sql.NullFloat64 `db:"warmup_distance_km"`
	Status           string          `db:"status"`
}

func (r sessionRow) toModel() (*models.WorkoutSession, error) {
	started, err := parseTime(r.StartedAt)
	if err != nil {
		return nil, err
	}
	ended, err := parseNullTime(r.EndedAt)
	if err != nil {
		return nil, err
	}
	return &models.WorkoutSession{
		ID:               r.ID,
		UserID:           r.UserID,
		MuscleGroup:      r.MuscleGroup,
		StartedAt:        started,
		EndedAt:          ended,
		BodyWeightKg:     floatPtr(r.BodyWeightKg),
		WarmupDone:       r.WarmupDone,
		WarmupMinutes:    floatPtr(r.WarmupMinutes),
		WarmupDistanceKm: floatPtr(r.WarmupDistanceKm),
		Status:           models.SessionStatus(r.Status),
	}, nil
}

const sessionColumns = `id, user_id, muscle_group, started_at, ended_at, body_weight_kg,
	warmup_done, warmup_minutes, warmup_distance_km, status`

// CreateSession opens a session for group. Non-active statuses are closed immediately.
func (d *DB) CreateSession(ctx context.Context, userID int64, group string, status models.SessionStatus) (int64, error) {
	return createSession(ctx, d.db, userID, group, status, formatTime(d.now()))
}

func createSession(ctx context.Context, ex sqlExecer, userID int64, group string, status models.SessionStatus, now string) (int64, error) {
	if !status.IsValid() {
		return 0, fmt.Errorf("create session: unknown status %q", status)
	}
	var ended sql.NullString
	if status.IsTerminal() {
		ended = sql.NullString{String: now, Valid: true}
	}
	res, err := ex.ExecContext(ctx, `
		INSERT INTO workout_sessions (user_id, muscle_group, started_at, ended_at, status)
		VALUES (?, ?, ?, ?, ?)`,
		userID, group, now, ended, string(status),
	)
	if err != nil {
		if status == models.StatusActive && isUniqueViolation(err) {
			return 0, fmt.Errorf("create session for user %d: %w", userID, ErrActiveSessionExists)
		}
		return 0, fmt.Errorf("create session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

// GetSession retrieves a session by id.
func (d *DB) GetSession(ctx context.Context, id int64) (*models.WorkoutSession, error) {
	var row sessionRow
	err := d.db.GetContext(ctx, &row, `SELECT `+sessionColumns+` FROM workout_sessions WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return row.toModel()
}

// GetActiveSession returns the user's newest active session.
func (d *DB) GetActiveSession(ctx context.Context, userID int64) (*models.WorkoutSession, error) {
	var row sessionRow
	err := d.db.GetContext(ctx, &row, `
		SELECT `+sessionColumns+`
		FROM workout_sessions
		WHERE user_id = ? AND status = 'active'
		ORDER BY id DESC
		LIMIT 1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("active session for user %d: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get active session: %w", err)
	}
	return row.toModel()
}

// CloseSession moves an active session to a terminal status and stamps ended_at.
func (d *DB) CloseSession(ctx context.Context, id int64, status models.SessionStatus) error {
	if !status.IsTerminal() {
		return fmt.Errorf("close session: %q is not a closing status", status)
	}
	res, err := d.db.ExecContext(ctx, `
		UPDATE workout_sessions
		SET status = ?, ended_at = ?
		WHERE id = ? AND status = 'active'`,
		string(status), formatTime(d.now()), id,
	)
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("active session %d", id))
}

// CompleteSession marks an active session completed and advances the user's
// rotation past group in the same transaction. It reports whether the
// rotation moved.
func (d *DB) CompleteSession(ctx context.Context, id, userID int64, group string) (advanced bool, err error) {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("complete session: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := formatTime(d.now())
	res, err := tx.ExecContext(ctx, `
		UPDATE workout_sessions
		SET status = 'completed', ended_at = ?
		WHERE id = ? AND user_id = ? AND status = 'active'`,
		now, id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("complete session: %w", err)
	}
	if err = requireAffected(res, fmt.Sprintf("active session %d", id)); err != nil {
		return false, err
	}
	if advanced, err = advanceRotation(ctx, tx, userID, group, now); err != nil {
		return false, err
	}
	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("complete session: commit: %w", err)
	}
	return advanced, nil
}

// SetWarmup records the warm-up outcome of an active session.
func (d *DB) SetWarmup(ctx context.Context, id int64, done bool, minutes, distanceKm *float64) error {
	if !done {
		minutes, distanceKm = nil, nil
	}
	res, err := d.db.ExecContext(ctx, `
		UPDATE workout_sessions
		SET warmup_done = ?, warmup_minutes = ?, warmup_distance_km = ?
		WHERE id = ? AND status = 'active'`,
		done, nullFloat(minutes), nullFloat(distanceKm), id,
	)
	if err != nil {
		return fmt.Errorf("set warmup: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("active session %d", id))
}

// SetBodyWeight records the user's body weight for an active session.
func (d *DB) SetBodyWeight(ctx context.Context, id int64, kg float64) error {
	res, err := d.db.ExecContext(ctx,
		`UPDATE workout_sessions SET body_weight_kg = ? WHERE id = ? AND status = 'active'`,
		training.ClampBodyWeight(kg), id)
	if err != nil {
		return fmt.Errorf("set body weight: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("active session %d", id))
}

// LastBodyWeight returns the most recently recorded body weight, if any.
func (d *DB) LastBodyWeight(ctx context.Context, userID int64) (*float64, error) {
	var kg float64
	err := d.db.GetContext(ctx, &kg, `
		SELECT body_weight_kg
		FROM workout_sessions
		WHERE user_id = ? AND body_weight_kg IS NOT NULL
		ORDER BY COALESCE(ended_at, started_at) DESC, id DESC
		LIMIT 1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get last body weight: %w", err)
	}
	return &kg, nil
}

// SkipDay records a skipped session for the user's next rotation group and
// advances the rotation, returning the skipped and the new next group.
func (d *DB) SkipDay(ctx context.Context, userID int64) (skipped, next string, err error) {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", "", fmt.Errorf("skip day: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var idx int
	if err = tx.GetContext(ctx, &idx, `SELECT rotation_index FROM users WHERE user_id = ?`, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = fmt.Errorf("user %d: %w", userID, ErrNotFound)
			return "", "", err
		}
		return "", "", fmt.Errorf("skip day: %w", err)
	}

	now := formatTime(d.now())
	skipped = training.GroupAt(idx)
	if _, err = createSession(ctx, tx, userID, skipped, models.StatusSkipped, now); err != nil {
		return "", "", err
	}
	if _, err = advanceRotation(ctx, tx, userID, skipped, now); err != nil {
		return "", "", err
	}
	if err = tx.Commit(); err != nil {
		return "", "", fmt.Errorf("skip day: commit: %w", err)
	}

	nextIdx, _ := training.NextRotationIndex(skipped)
	return skipped, training.GroupAt(nextIdx), nil
}

// RecentGroups returns the muscle groups of the latest completed sessions, newest first.
func (d *DB) RecentGroups(ctx context.Context, userID int64, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 3
	}
	var groups []string
	err := d.db.SelectContext(ctx, &groups, `
		SELECT muscle_group
		FROM workout_sessions
		WHERE user_id = ? AND status = 'completed' AND muscle_group != ''
		ORDER BY ended_at DESC, id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent groups: %w", err)
	}
	return groups, nil
}

// ListSessions returns the user's sessions, newest first. Zero limit means all.
func (d *DB) ListSessions(ctx context.Context, userID int64, limit int) ([]*models.WorkoutSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM workout_sessions WHERE user_id = ? ORDER BY id DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	var rows []sessionRow
	if err := d.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	sessions := make([]*models.WorkoutSession, 0, len(rows))
	for _, r := range rows {
		s, err := r.toModel()
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// LastCompletedWorkouts returns completed sessions with entry aggregates, newest first.
func (d *DB) LastCompletedWorkouts(ctx context.Context, userID int64, limit int) ([]models.CompletedWorkout, error) {
	if limit <= 0 {
		limit = 3
	}
	var rows []struct {
		ID            int64           `db:"id"`
		MuscleGroup   string          `db:"muscle_group"`
		EndedAt       sql.NullString  `db:"ended_at"`
		BodyWeightKg  sql.NullFloat64 `db:"body_weight_kg"`
		ExerciseCount int             `db:"exercise_count"`
		TotalVolume   float64         `db:"total_volume"`
	}
	err := d.db.SelectContext(ctx, &rows, `
		SELECT
			ws.id,
			ws.muscle_group,
			ws.ended_at,
			ws.body_weight_kg,
			COUNT(e.id) AS exercise_count,
			COALESCE(SUM(e.volume), 0) AS total_volume
		FROM workout_sessions ws
		LEFT JOIN exercises e ON e.session_id = ws.id
		WHERE ws.user_id = ? AND ws.status = 'completed'
		GROUP BY ws.id, ws.muscle_group, ws.ended_at, ws.body_weight_kg
		ORDER BY ws.ended_at DESC, ws.id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("last completed workouts: %w", err)
	}
	out := make([]models.CompletedWorkout, 0, len(rows))
	for _, r := range rows {
		ended, err := parseNullTime(r.EndedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, models.CompletedWorkout{
			SessionID:     r.ID,
			MuscleGroup:   r.MuscleGroup,
			EndedAt:       ended,
			BodyWeightKg:  floatPtr(r.BodyWeightKg),
			ExerciseCount: r.ExerciseCount,
			TotalVolume:   r.TotalVolume,
		})
	}
	return out, nil
}
