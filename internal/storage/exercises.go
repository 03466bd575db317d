// ABOUTME: Exercise entry persistence and per-exercise lookups.
// ABOUTME: Volume is computed here so stored rows always agree with it.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/harperreed/gymbot/internal/models"
	"github.com/harperreed/gymbot/internal/training"
)

type exerciseRow struct {
	ID             int64                `db:"id"`
	SessionID      int64                `db:"session_id"`
	UserID         int64                `db:"user_id"`
	MuscleGroup    string               `db:"muscle_group"`
	Name           string               `db:"name"`
	Sets           int                  `db:"sets"`
	Reps           int                  `db:"reps"`
	RepsSequence   models.IntSequence   `db:"reps_sequence"`
	Weight         float64              `db:"weight"`
	WeightSequence models.FloatSequence `db:"weight_sequence"`
	Volume         float64              `db:"volume"`
	CreatedAt      string               `db:"created_at"`
}

func (r exerciseRow) toModel() (*models.ExerciseEntry, error) {
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &models.ExerciseEntry{
		ID:             r.ID,
		SessionID:      r.SessionID,
		UserID:         r.UserID,
		MuscleGroup:    r.MuscleGroup,
		Name:           r.Name,
		Sets:           r.Sets,
		Reps:           r.Reps,
		RepsSequence:   r.RepsSequence,
		Weight:         r.Weight,
		WeightSequence: r.WeightSequence,
		Volume:         r.Volume,
		CreatedAt:      created,
	}, nil
}

const exerciseColumns = `id, session_id, user_id, muscle_group, name, sets, reps,
	reps_sequence, weight, weight_sequence, volume, created_at`

// AddExercise stores an entry and returns its id and computed volume.
// A zero CreatedAt is stamped with the store clock.
func (d *DB) AddExercise(ctx context.Context, e *models.ExerciseEntry) (int64, float64, error) {
	if e.Sets <= 0 || e.Reps <= 0 || e.Weight < 0 {
		return 0, 0, fmt.Errorf("sets=%d reps=%d weight=%.2f: %w", e.Sets, e.Reps, e.Weight, ErrInvalidEntry)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = d.now()
	}
	e.Volume = training.EntryVolume(e)

	res, err := d.db.ExecContext(ctx, `
		INSERT INTO exercises (session_id, user_id, muscle_group, name, sets, reps,
			reps_sequence, weight, weight_sequence, volume, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.UserID, e.MuscleGroup, e.Name, e.Sets, e.Reps,
		e.RepsSequence, e.Weight, e.WeightSequence, e.Volume, formatTime(e.CreatedAt),
	)
	if err != nil {
		return 0, 0, fmt.Errorf("add exercise: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, 0, fmt.Errorf("add exercise: %w", err)
	}
	e.ID = id
	return id, e.Volume, nil
}

// GetExercise retrieves an entry by id.
func (d *DB) GetExercise(ctx context.Context, id int64) (*models.ExerciseEntry, error) {
	var row exerciseRow
	err := d.db.GetContext(ctx, &row, `SELECT `+exerciseColumns+` FROM exercises WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("exercise %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get exercise: %w", err)
	}
	return row.toModel()
}

// DeleteExercise removes an entry owned by userID. It reports whether a row
// was removed, so repeating the call is harmless.
func (d *DB) DeleteExercise(ctx context.Context, id, userID int64) (bool, error) {
	res, err := d.db.ExecContext(ctx, `DELETE FROM exercises WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete exercise: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete exercise: %w", err)
	}
	return n > 0, nil
}

// SessionExercises lists the entries of a session in logging order.
func (d *DB) SessionExercises(ctx context.Context, sessionID int64) ([]*models.ExerciseEntry, error) {
	var rows []exerciseRow
	err := d.db.SelectContext(ctx, &rows, `
		SELECT `+exerciseColumns+`
		FROM exercises
		WHERE session_id = ?
		ORDER BY created_at, id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session exercises: %w", err)
	}
	return toEntries(rows)
}

// SessionTotals counts a session's entries and sums their volume.
func (d *DB) SessionTotals(ctx context.Context, sessionID int64) (models.SessionTotals, error) {
	var totals models.SessionTotals
	err := d.db.QueryRowxContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(volume), 0)
		FROM exercises
		WHERE session_id = ?`, sessionID).Scan(&totals.Count, &totals.Volume)
	if err != nil {
		return models.SessionTotals{}, fmt.Errorf("session totals: %w", err)
	}
	return totals, nil
}

// LastWeight returns the weight of the user's latest entry for an exercise.
func (d *DB) LastWeight(ctx context.Context, userID int64, name string) (*float64, error) {
	var w float64
	err := d.db.GetContext(ctx, &w, `
		SELECT weight
		FROM exercises
		WHERE user_id = ? AND name = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, userID, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last weight: %w", err)
	}
	return &w, nil
}

// MaxWeight returns the heaviest weight the user logged for an exercise.
func (d *DB) MaxWeight(ctx context.Context, userID int64, name string) (*float64, error) {
	var w sql.NullFloat64
	err := d.db.GetContext(ctx, &w, `
		SELECT MAX(weight)
		FROM exercises
		WHERE user_id = ? AND name = ?`, userID, name)
	if err != nil {
		return nil, fmt.Errorf("max weight: %w", err)
	}
	return floatPtr(w), nil
}

// PersonalRecords returns the best weight per exercise, heaviest first.
func (d *DB) PersonalRecords(ctx context.Context, userID int64) ([]models.PersonalRecord, error) {
	var records []models.PersonalRecord
	rows, err := d.db.QueryxContext(ctx, `
		SELECT name, MAX(weight) AS max_weight
		FROM exercises
		WHERE user_id = ?
		GROUP BY name
		ORDER BY max_weight DESC, name COLLATE NOCASE`, userID)
	if err != nil {
		return nil, fmt.Errorf("personal records: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var pr models.PersonalRecord
		if err := rows.Scan(&pr.Name, &pr.MaxWeight); err != nil {
			return nil, fmt.Errorf("scan personal record: %w", err)
		}
		records = append(records, pr)
	}
	return records, rows.Err()
}

// ExerciseHistory pages through the user's entries, newest first.
func (d *DB) ExerciseHistory(ctx context.Context, userID int64, limit, offset int) ([]*models.ExerciseEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	var rows []exerciseRow
	err := d.db.SelectContext(ctx, &rows, `
		SELECT `+exerciseColumns+`
		FROM exercises
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("exercise history: %w", err)
	}
	return toEntries(rows)
}

func toEntries(rows []exerciseRow) ([]*models.ExerciseEntry, error) {
	entries := make([]*models.ExerciseEntry, 0, len(rows))
	for _, r := range rows {
		e, err := r.toModel()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}
