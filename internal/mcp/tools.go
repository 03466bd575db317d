// ABOUTME: MCP tool implementations for gymbot statistics.
// ABOUTME: Summaries, personal records, recent workouts, history and rotation.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/gymbot/internal/models"
	"github.com/harperreed/gymbot/internal/report"
)

const (
	defaultWorkoutLimit = 3
	defaultHistoryLimit = 50
	recentGroupLimit    = 3
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_summary",
		Description: "Training summary for today, this week, this month or a custom UTC date range",
	}, s.handleGetSummary)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_personal_records",
		Description: "Heaviest weight logged per exercise, heaviest first",
	}, s.handleListPersonalRecords)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_last_workouts",
		Description: "Most recent completed workouts with exercise count, volume and body weight",
	}, s.handleListLastWorkouts)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "exercise_history",
		Description: "Logged exercises, newest first, with paging",
	}, s.handleExerciseHistory)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "next_muscle_group",
		Description: "Next muscle group in the rotation and the recently trained groups",
	}, s.handleNextMuscleGroup)
}

// Tool input/output types

type userInput struct {
	UserID int64 `json:"user_id,omitempty" jsonschema:"Telegram user id; defaults to the configured user"`
}

type summaryInput struct {
	UserID int64  `json:"user_id,omitempty" jsonschema:"Telegram user id; defaults to the configured user"`
	Period string `json:"period,omitempty" jsonschema:"today, week, month or period (default week)"`
	From   string `json:"from,omitempty" jsonschema:"First day YYYY-MM-DD when period is 'period'"`
	To     string `json:"to,omitempty" jsonschema:"Last day YYYY-MM-DD (inclusive) when period is 'period'"`
}

type summaryOutput struct {
	Period         string             `json:"period"`
	StartDate      string             `json:"start_date"`
	EndDate        string             `json:"end_date"`
	SessionCount   int                `json:"session_count"`
	ExerciseCount  int                `json:"exercise_count"`
	TotalVolume    float64            `json:"total_volume"`
	GroupVolumes   map[string]float64 `json:"group_volumes"`
	WarmupCount    int                `json:"warmup_count"`
	WarmupMinutes  float64            `json:"warmup_minutes_total"`
	WarmupDistance float64            `json:"warmup_distance_total"`
}

type recordsOutput struct {
	Records []models.PersonalRecord `json:"records"`
}

type lastWorkoutsInput struct {
	UserID int64 `json:"user_id,omitempty" jsonschema:"Telegram user id; defaults to the configured user"`
	Limit  int   `json:"limit,omitempty" jsonschema:"Max workouts (default 3)"`
}

type lastWorkout struct {
	SessionID     int64    `json:"session_id"`
	MuscleGroup   string   `json:"muscle_group"`
	EndedAt       string   `json:"ended_at,omitempty"`
	BodyWeightKg  *float64 `json:"body_weight_kg,omitempty"`
	ExerciseCount int      `json:"exercise_count"`
	TotalVolume   float64  `json:"total_volume"`
}

type lastWorkoutsOutput struct {
	Workouts []lastWorkout `json:"workouts"`
}

type historyInput struct {
	UserID int64 `json:"user_id,omitempty" jsonschema:"Telegram user id; defaults to the configured user"`
	Limit  int   `json:"limit,omitempty" jsonschema:"Page size (default 50)"`
	Offset int   `json:"offset,omitempty" jsonschema:"Entries to skip"`
}

type historyEntry struct {
	ID             int64     `json:"id"`
	SessionID      int64     `json:"session_id"`
	CreatedAt      string    `json:"created_at"`
	MuscleGroup    string    `json:"muscle_group"`
	Name           string    `json:"name"`
	Sets           int       `json:"sets"`
	Reps           int       `json:"reps"`
	RepsSequence   []int     `json:"reps_sequence"`
	Weight         float64   `json:"weight_kg"`
	WeightSequence []float64 `json:"weight_sequence"`
	Volume         float64   `json:"volume"`
}

type historyOutput struct {
	Entries []historyEntry `json:"entries"`
}

type rotationOutput struct {
	NextGroup    string   `json:"next_group"`
	RecentGroups []string `json:"recent_groups"`
}

// Tool handlers

func (s *Server) handleGetSummary(ctx context.Context, req *mcp.CallToolRequest, input summaryInput) (*mcp.CallToolResult, summaryOutput, error) {
	userID, err := s.user(input.UserID)
	if err != nil {
		return nil, summaryOutput{}, err
	}
	period := input.Period
	if period == "" {
		period = string(report.KindWeek)
	}
	w, err := s.window(period, input.From, input.To)
	if err != nil {
		return nil, summaryOutput{}, err
	}
	out, err := s.summary(ctx, userID, period, w)
	if err != nil {
		return nil, summaryOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) window(period, from, to string) (report.Window, error) {
	now := s.now()
	switch report.Kind(period) {
	case report.KindToday:
		return report.Today(now), nil
	case report.KindWeek:
		return report.Week(now), nil
	case report.KindMonth:
		return report.Month(now), nil
	case report.KindPeriod:
		return report.ParsePeriod(from, to)
	}
	return report.Window{}, fmt.Errorf("unknown period %q (want today, week, month or period)", period)
}

func (s *Server) summary(ctx context.Context, userID int64, period string, w report.Window) (summaryOutput, error) {
	sum, err := s.store.Summary(ctx, userID, w.Start, w.End)
	if err != nil {
		return summaryOutput{}, fmt.Errorf("failed to load summary: %w", err)
	}
	return summaryOutput{
		Period:         period,
		StartDate:      w.Start.Format(report.DateLayout),
		EndDate:        w.LastDay().Format(report.DateLayout),
		SessionCount:   sum.SessionCount,
		ExerciseCount:  sum.ExerciseCount,
		TotalVolume:    sum.TotalVolume,
		GroupVolumes:   sum.GroupVolumes,
		WarmupCount:    sum.WarmupCount,
		WarmupMinutes:  sum.WarmupMinutes,
		WarmupDistance: sum.WarmupDistance,
	}, nil
}

func (s *Server) handleListPersonalRecords(ctx context.Context, req *mcp.CallToolRequest, input userInput) (*mcp.CallToolResult, recordsOutput, error) {
	userID, err := s.user(input.UserID)
	if err != nil {
		return nil, recordsOutput{}, err
	}
	records, err := s.records(ctx, userID)
	if err != nil {
		return nil, recordsOutput{}, err
	}
	return nil, records, nil
}

func (s *Server) records(ctx context.Context, userID int64) (recordsOutput, error) {
	records, err := s.store.PersonalRecords(ctx, userID)
	if err != nil {
		return recordsOutput{}, fmt.Errorf("failed to list personal records: %w", err)
	}
	if records == nil {
		records = []models.PersonalRecord{}
	}
	return recordsOutput{Records: records}, nil
}

func (s *Server) handleListLastWorkouts(ctx context.Context, req *mcp.CallToolRequest, input lastWorkoutsInput) (*mcp.CallToolResult, lastWorkoutsOutput, error) {
	userID, err := s.user(input.UserID)
	if err != nil {
		return nil, lastWorkoutsOutput{}, err
	}
	if input.Limit <= 0 {
		input.Limit = defaultWorkoutLimit
	}

	workouts, err := s.store.LastCompletedWorkouts(ctx, userID, input.Limit)
	if err != nil {
		return nil, lastWorkoutsOutput{}, fmt.Errorf("failed to list workouts: %w", err)
	}

	out := lastWorkoutsOutput{Workouts: make([]lastWorkout, 0, len(workouts))}
	for _, w := range workouts {
		lw := lastWorkout{
			SessionID:     w.SessionID,
			MuscleGroup:   w.MuscleGroup,
			BodyWeightKg:  w.BodyWeightKg,
			ExerciseCount: w.ExerciseCount,
			TotalVolume:   w.TotalVolume,
		}
		if w.EndedAt != nil {
			lw.EndedAt = w.EndedAt.UTC().Format(time.RFC3339)
		}
		out.Workouts = append(out.Workouts, lw)
	}
	return nil, out, nil
}

func (s *Server) handleExerciseHistory(ctx context.Context, req *mcp.CallToolRequest, input historyInput) (*mcp.CallToolResult, historyOutput, error) {
	userID, err := s.user(input.UserID)
	if err != nil {
		return nil, historyOutput{}, err
	}
	if input.Limit <= 0 {
		input.Limit = defaultHistoryLimit
	}

	entries, err := s.store.ExerciseHistory(ctx, userID, input.Limit, input.Offset)
	if err != nil {
		return nil, historyOutput{}, fmt.Errorf("failed to load exercise history: %w", err)
	}

	out := historyOutput{Entries: make([]historyEntry, 0, len(entries))}
	for _, e := range entries {
		out.Entries = append(out.Entries, historyEntry{
			ID:             e.ID,
			SessionID:      e.SessionID,
			CreatedAt:      e.CreatedAt.UTC().Format(time.RFC3339),
			MuscleGroup:    e.MuscleGroup,
			Name:           e.Name,
			Sets:           e.Sets,
			Reps:           e.Reps,
			RepsSequence:   []int(e.RepsSequence),
			Weight:         e.Weight,
			WeightSequence: []float64(e.WeightSequence),
			Volume:         e.Volume,
		})
	}
	return nil, out, nil
}

func (s *Server) handleNextMuscleGroup(ctx context.Context, req *mcp.CallToolRequest, input userInput) (*mcp.CallToolResult, rotationOutput, error) {
	userID, err := s.user(input.UserID)
	if err != nil {
		return nil, rotationOutput{}, err
	}
	next, err := s.store.NextMuscleGroup(ctx, userID)
	if err != nil {
		return nil, rotationOutput{}, fmt.Errorf("failed to get next muscle group: %w", err)
	}
	recent, err := s.store.RecentGroups(ctx, userID, recentGroupLimit)
	if err != nil {
		return nil, rotationOutput{}, fmt.Errorf("failed to get recent groups: %w", err)
	}
	if recent == nil {
		recent = []string{}
	}
	return nil, rotationOutput{NextGroup: next, RecentGroups: recent}, nil
}
