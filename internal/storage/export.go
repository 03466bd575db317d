// ABOUTME: Per-user export of training data.
// ABOUTME: Supports CSV history, JSON and YAML formats.
package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/harperreed/gymbot/internal/models"
	"gopkg.in/yaml.v3"
)

// HistoryHeader is the column order of the CSV history export.
var HistoryHeader = []string{
	"timestamp_utc", "muscle_group", "exercise", "sets", "reps", "reps_sequence",
	"weight_kg", "weight_sequence", "body_weight_kg", "warmup_done",
	"warmup_minutes", "warmup_distance_km", "volume", "session_id",
}

// ExportData represents the full export format for one user.
type ExportData struct {
	Version    string                  `json:"version" yaml:"version"`
	ExportedAt time.Time               `json:"exported_at" yaml:"exported_at"`
	Tool       string                  `json:"tool" yaml:"tool"`
	User       *models.User            `json:"user" yaml:"user"`
	Sessions   []exportSession         `json:"sessions" yaml:"sessions"`
	Records    []models.PersonalRecord `json:"personal_records" yaml:"personal_records"`
}

type exportSession struct {
	ID               int64            `json:"id" yaml:"id"`
	MuscleGroup      string           `json:"muscle_group" yaml:"muscle_group"`
	Status           string           `json:"status" yaml:"status"`
	StartedAt        string           `json:"started_at" yaml:"started_at"`
	EndedAt          string           `json:"ended_at,omitempty" yaml:"ended_at,omitempty"`
	BodyWeightKg     *float64         `json:"body_weight_kg,omitempty" yaml:"body_weight_kg,omitempty"`
	WarmupDone       bool             `json:"warmup_done" yaml:"warmup_done"`
	WarmupMinutes    *float64         `json:"warmup_minutes,omitempty" yaml:"warmup_minutes,omitempty"`
	WarmupDistanceKm *float64         `json:"warmup_distance_km,omitempty" yaml:"warmup_distance_km,omitempty"`
	Exercises        []exportExercise `json:"exercises,omitempty" yaml:"exercises,omitempty"`
}

type exportExercise struct {
	Name           string    `json:"name" yaml:"name"`
	Sets           int       `json:"sets" yaml:"sets"`
	Reps           int       `json:"reps" yaml:"reps"`
	RepsSequence   []int     `json:"reps_sequence,omitempty" yaml:"reps_sequence,omitempty,flow"`
	Weight         float64   `json:"weight_kg" yaml:"weight_kg"`
	WeightSequence []float64 `json:"weight_sequence,omitempty" yaml:"weight_sequence,omitempty,flow"`
	Volume         float64   `json:"volume" yaml:"volume"`
	CreatedAt      string    `json:"created_at" yaml:"created_at"`
}

// GetAllData gathers everything stored for a user, oldest session first.
func (d *DB) GetAllData(ctx context.Context, userID int64) (*ExportData, error) {
	user, err := d.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sessions, err := d.ListSessions(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	records, err := d.PersonalRecords(ctx, userID)
	if err != nil {
		return nil, err
	}

	data := &ExportData{
		Version:    "1.0",
		ExportedAt: d.now().UTC(),
		Tool:       "gymbot",
		User:       user,
		Sessions:   make([]exportSession, 0, len(sessions)),
		Records:    records,
	}
	for i := len(sessions) - 1; i >= 0; i-- {
		s := sessions[i]
		es := exportSession{
			ID:               s.ID,
			MuscleGroup:      s.MuscleGroup,
			Status:           string(s.Status),
			StartedAt:        s.StartedAt.Format(time.RFC3339),
			BodyWeightKg:     s.BodyWeightKg,
			WarmupDone:       s.WarmupDone,
			WarmupMinutes:    s.WarmupMinutes,
			WarmupDistanceKm: s.WarmupDistanceKm,
		}
		if s.EndedAt != nil {
			es.EndedAt = s.EndedAt.Format(time.RFC3339)
		}
		entries, err := d.SessionExercises(ctx, s.ID)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			es.Exercises = append(es.Exercises, exportExercise{
				Name:           e.Name,
				Sets:           e.Sets,
				Reps:           e.Reps,
				RepsSequence:   e.RepsSequence,
				Weight:         e.Weight,
				WeightSequence: e.WeightSequence,
				Volume:         e.Volume,
				CreatedAt:      e.CreatedAt.Format(time.RFC3339),
			})
		}
		data.Sessions = append(data.Sessions, es)
	}
	return data, nil
}

// ExportJSON exports a user's data as JSON.
func (d *DB) ExportJSON(ctx context.Context, userID int64) ([]byte, error) {
	data, err := d.GetAllData(ctx, userID)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML exports a user's data as YAML.
func (d *DB) ExportYAML(ctx context.Context, userID int64) ([]byte, error) {
	data, err := d.GetAllData(ctx, userID)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(data)
}

// WriteHistoryCSV writes every entry of the user as CSV, oldest first,
// and returns the number of data rows written.
func (d *DB) WriteHistoryCSV(ctx context.Context, w io.Writer, userID int64) (int, error) {
	rows, err := d.HistoryRows(ctx, userID)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(HistoryHeader); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(historyRecord(r)); err != nil {
			return 0, fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flush csv: %w", err)
	}
	return len(rows), nil
}

func historyRecord(r models.HistoryRow) []string {
	e := r.Entry
	warmup := "0"
	if r.WarmupDone {
		warmup = "1"
	}
	bodyWeight := ""
	if r.BodyWeightKg != nil {
		bodyWeight = fixed2(*r.BodyWeightKg)
	}
	return []string{
		formatTime(e.CreatedAt),
		e.MuscleGroup,
		e.Name,
		strconv.Itoa(e.Sets),
		strconv.Itoa(e.Reps),
		e.RepsSequence.String(),
		fixed2(e.Weight),
		e.WeightSequence.String(),
		bodyWeight,
		warmup,
		fixed2(valueOrZero(r.WarmupMinutes)),
		fixed2(valueOrZero(r.WarmupDistanceKm)),
		fixed2(e.Volume),
		strconv.FormatInt(e.SessionID, 10),
	}
}

func fixed2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
