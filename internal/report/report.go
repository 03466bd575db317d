// ABOUTME: Renders summaries, personal records and recent workouts as chat text.
// ABOUTME: Reads aggregates from storage and localizes them through i18n.
package report

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/gymbot/internal/i18n"
	"github.com/harperreed/gymbot/internal/models"
)

// LastWorkoutCount is how many completed workouts the recent list shows.
const LastWorkoutCount = 3

// Kind selects the heading of a summary.
type Kind string

const (
	KindToday  Kind = "today"
	KindWeek   Kind = "week"
	KindMonth  Kind = "month"
	KindPeriod Kind = "period"
)

// Store is the read side the reporter needs.
type Store interface {
	Summary(ctx context.Context, userID int64, start, end time.Time) (*models.Summary, error)
	PersonalRecords(ctx context.Context, userID int64) ([]models.PersonalRecord, error)
	LastCompletedWorkouts(ctx context.Context, userID int64, limit int) ([]models.CompletedWorkout, error)
}

// Reporter builds localized report text.
type Reporter struct {
	store Store
	text  *i18n.Translator
}

func New(store Store, text *i18n.Translator) *Reporter {
	return &Reporter{store: store, text: text}
}

// Summary renders the aggregate for w under the heading for kind.
func (r *Reporter) Summary(ctx context.Context, userID int64, lang models.Language, kind Kind, w Window) (string, error) {
	s, err := r.store.Summary(ctx, userID, w.Start, w.End)
	if err != nil {
		return "", fmt.Errorf("summary: %w", err)
	}
	return r.text.Text(lang, string(kind)+"_summary", i18n.Params{
		"start_date":            w.Start.Format(DateLayout),
		"end_date":              w.LastDay().Format(DateLayout),
		"session_count":         s.SessionCount,
		"exercise_count":        s.ExerciseCount,
		"total_volume":          s.TotalVolume,
		"warmup_count":          s.WarmupCount,
		"warmup_minutes_total":  s.WarmupMinutes,
		"warmup_distance_total": s.WarmupDistance,
		"group_lines":           r.groupLines(lang, s.GroupVolumes),
	}), nil
}

func (r *Reporter) groupLines(lang models.Language, volumes map[string]float64) string {
	if len(volumes) == 0 {
		return "-"
	}
	groups := make([]string, 0, len(volumes))
	for g := range volumes {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return strings.ToLower(groups[i]) < strings.ToLower(groups[j])
	})
	lines := make([]string, len(groups))
	for i, g := range groups {
		lines[i] = fmt.Sprintf("%s: %.2f", r.text.Group(lang, g), volumes[g])
	}
	return strings.Join(lines, "\n")
}

// PersonalRecords renders the max weight per exercise.
func (r *Reporter) PersonalRecords(ctx context.Context, userID int64, lang models.Language) (string, error) {
	records, err := r.store.PersonalRecords(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("personal records: %w", err)
	}
	if len(records) == 0 {
		return r.text.Text(lang, "no_prs", nil), nil
	}
	lines := []string{r.text.Text(lang, "pr_header", nil)}
	for _, rec := range records {
		lines = append(lines, r.text.Text(lang, "pr_line", i18n.Params{
			"name":   r.text.Exercise(lang, rec.Name),
			"weight": rec.MaxWeight,
		}))
	}
	return strings.Join(lines, "\n"), nil
}

// LastWorkouts renders the most recent completed workouts with the body
// weight change against the workout before each one.
func (r *Reporter) LastWorkouts(ctx context.Context, userID int64, lang models.Language) (string, error) {
	// One extra row gives the oldest shown workout something to compare with.
	workouts, err := r.store.LastCompletedWorkouts(ctx, userID, LastWorkoutCount+1)
	if err != nil {
		return "", fmt.Errorf("last workouts: %w", err)
	}
	if len(workouts) == 0 {
		return r.text.Text(lang, "no_last_workouts", nil), nil
	}

	shown := min(len(workouts), LastWorkoutCount)
	lines := []string{r.text.Text(lang, "last_header", nil)}
	for i := 0; i < shown; i++ {
		w := workouts[i]
		var previous *float64
		if i+1 < len(workouts) {
			previous = workouts[i+1].BodyWeightKg
		}
		ended := "-"
		if w.EndedAt != nil {
			ended = w.EndedAt.UTC().Format("2006-01-02 15:04")
		}
		lines = append(lines, r.text.Text(lang, "last_line", i18n.Params{
			"idx":            i + 1,
			"ended":          ended,
			"group":          r.text.Group(lang, w.MuscleGroup),
			"exercise_count": w.ExerciseCount,
			"total_volume":   w.TotalVolume,
			"body_weight":    BodyWeightText(r.text, lang, w.BodyWeightKg),
			"delta":          BodyWeightChange(r.text, lang, w.BodyWeightKg, previous),
		}))
	}
	return strings.Join(lines, "\n"), nil
}

// BodyWeightChange describes current against the previous workout's weight.
func BodyWeightChange(text *i18n.Translator, lang models.Language, current, previous *float64) string {
	if current == nil {
		return text.Text(lang, "body_weight_change_unknown", nil)
	}
	if previous == nil {
		return text.Text(lang, "body_weight_change_first", nil)
	}
	delta := *current - *previous
	switch {
	case math.Abs(delta) < 0.01:
		return text.Text(lang, "body_weight_change_same", nil)
	case delta > 0:
		return text.Text(lang, "body_weight_change_gain", i18n.Params{"delta": delta})
	default:
		return text.Text(lang, "body_weight_change_loss", i18n.Params{"delta": delta})
	}
}

// BodyWeightText formats a recorded body weight for display.
func BodyWeightText(text *i18n.Translator, lang models.Language, kg *float64) string {
	if kg == nil {
		return text.Text(lang, "no_body_weight_value", nil)
	}
	return fmt.Sprintf("%.2f kg", *kg)
}
