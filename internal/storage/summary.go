// ABOUTME: Windowed aggregates over sessions and exercise entries.
// ABOUTME: Windows are half-open [start, end) in UTC.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harperreed/gymbot/internal/models"
)

// Summary aggregates the user's training between start and end.
func (d *DB) Summary(ctx context.Context, userID int64, start, end time.Time) (*models.Summary, error) {
	from, to := formatTime(start), formatTime(end)
	s := &models.Summary{
		Start:        start.UTC(),
		End:          end.UTC(),
		GroupVolumes: map[string]float64{},
	}

	err := d.db.QueryRowxContext(ctx, `
		SELECT COUNT(*)
		FROM workout_sessions
		WHERE user_id = ? AND status = 'completed' AND ended_at >= ? AND ended_at < ?`,
		userID, from, to).Scan(&s.SessionCount)
	if err != nil {
		return nil, fmt.Errorf("summary sessions: %w", err)
	}

	var groups []struct {
		MuscleGroup string  `db:"muscle_group"`
		Count       int     `db:"cnt"`
		Volume      float64 `db:"vol"`
	}
	err = d.db.SelectContext(ctx, &groups, `
		SELECT muscle_group, COUNT(*) AS cnt, COALESCE(SUM(volume), 0) AS vol
		FROM exercises
		WHERE user_id = ? AND created_at >= ? AND created_at < ?
		GROUP BY muscle_group`,
		userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("summary exercises: %w", err)
	}
	for _, g := range groups {
		s.ExerciseCount += g.Count
		s.TotalVolume += g.Volume
		s.GroupVolumes[g.MuscleGroup] = g.Volume
	}

	err = d.db.QueryRowxContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(warmup_minutes), 0), COALESCE(SUM(warmup_distance_km), 0)
		FROM workout_sessions
		WHERE user_id = ? AND warmup_done = 1 AND status != 'cancelled'
			AND started_at >= ? AND started_at < ?`,
		userID, from, to).Scan(&s.WarmupCount, &s.WarmupMinutes, &s.WarmupDistance)
	if err != nil {
		return nil, fmt.Errorf("summary warmups: %w", err)
	}
	return s, nil
}

// RunningTotals sums warm-up minutes and distance of sessions in the window,
// whatever their status, placed by end time or start time when still open.
func (d *DB) RunningTotals(ctx context.Context, userID int64, start, end time.Time) (models.RunningTotals, error) {
	var t models.RunningTotals
	err := d.db.QueryRowxContext(ctx, `
		SELECT COALESCE(SUM(warmup_minutes), 0), COALESCE(SUM(warmup_distance_km), 0)
		FROM workout_sessions
		WHERE user_id = ? AND warmup_done = 1
			AND COALESCE(ended_at, started_at) >= ? AND COALESCE(ended_at, started_at) < ?`,
		userID, formatTime(start), formatTime(end)).Scan(&t.Minutes, &t.DistanceKm)
	if err != nil {
		return models.RunningTotals{}, fmt.Errorf("running totals: %w", err)
	}
	return t, nil
}

// TotalVolume sums the volume of every entry the user ever logged.
func (d *DB) TotalVolume(ctx context.Context, userID int64) (float64, error) {
	var v float64
	err := d.db.GetContext(ctx, &v, `SELECT COALESCE(SUM(volume), 0) FROM exercises WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("total volume: %w", err)
	}
	return v, nil
}

// HistoryRows returns every entry of the user joined with its session, oldest first.
func (d *DB) HistoryRows(ctx context.Context, userID int64) ([]models.HistoryRow, error) {
	var rows []struct {
		exerciseRow
		BodyWeightKg     sql.NullFloat64 `db:"body_weight_kg"`
		WarmupDone       bool            `db:"warmup_done"`
		WarmupMinutes    sql.NullFloat64 `db:"warmup_minutes"`
		WarmupDistanceKm sql.NullFloat64 `db:"warmup_distance_km"`
	}
	err := d.db.SelectContext(ctx, &rows, `
		SELECT
			e.id, e.session_id, e.user_id, e.muscle_group, e.name, e.sets, e.reps,
			e.reps_sequence, e.weight, e.weight_sequence, e.volume, e.created_at,
			ws.body_weight_kg, ws.warmup_done, ws.warmup_minutes, ws.warmup_distance_km
		FROM exercises e
		JOIN workout_sessions ws ON ws.id = e.session_id
		WHERE e.user_id = ?
		ORDER BY e.created_at ASC, e.id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("history rows: %w", err)
	}
	out := make([]models.HistoryRow, 0, len(rows))
	for _, r := range rows {
		e, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, models.HistoryRow{
			Entry:            *e,
			BodyWeightKg:     floatPtr(r.BodyWeightKg),
			WarmupDone:       r.WarmupDone,
			WarmupMinutes:    floatPtr(r.WarmupMinutes),
			WarmupDistanceKm: floatPtr(r.WarmupDistanceKm),
		})
	}
	return out, nil
}
