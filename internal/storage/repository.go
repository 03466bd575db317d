// ABOUTME: Repository interface for workout data storage.
// ABOUTME: Defines the contract for users, sessions, entries and aggregates.
package storage

import (
	"context"
	"io"
	"time"

	"github.com/harperreed/gymbot/internal/models"
)

// Repository defines the storage interface for workout data.
// This interface allows swapping implementations (e.g., for testing).
type Repository interface {
	// User operations
	UpsertUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	ListReminderTargets(ctx context.Context) ([]*models.User, error)
	SetLanguage(ctx context.Context, userID int64, lang models.Language) error
	Language(ctx context.Context, userID int64) (models.Language, error)
	NextMuscleGroup(ctx context.Context, userID int64) (string, error)
	AdvanceRotation(ctx context.Context, userID int64, group string) (bool, error)

	// Session operations
	CreateSession(ctx context.Context, userID int64, group string, status models.SessionStatus) (int64, error)
	GetSession(ctx context.Context, id int64) (*models.WorkoutSession, error)
	GetActiveSession(ctx context.Context, userID int64) (*models.WorkoutSession, error)
	CloseSession(ctx context.Context, id int64, status models.SessionStatus) error
	CompleteSession(ctx context.Context, id, userID int64, group string) (bool, error)
	SetWarmup(ctx context.Context, id int64, done bool, minutes, distanceKm *float64) error
	SetBodyWeight(ctx context.Context, id int64, kg float64) error
	LastBodyWeight(ctx context.Context, userID int64) (*float64, error)
	SkipDay(ctx context.Context, userID int64) (skipped, next string, err error)
	RecentGroups(ctx context.Context, userID int64, limit int) ([]string, error)
	LastCompletedWorkouts(ctx context.Context, userID int64, limit int) ([]models.CompletedWorkout, error)

	// Exercise operations
	AddExercise(ctx context.Context, e *models.ExerciseEntry) (int64, float64, error)
	DeleteExercise(ctx context.Context, id, userID int64) (bool, error)
	SessionTotals(ctx context.Context, sessionID int64) (models.SessionTotals, error)
	LastWeight(ctx context.Context, userID int64, name string) (*float64, error)
	MaxWeight(ctx context.Context, userID int64, name string) (*float64, error)
	PersonalRecords(ctx context.Context, userID int64) ([]models.PersonalRecord, error)
	ExerciseHistory(ctx context.Context, userID int64, limit, offset int) ([]*models.ExerciseEntry, error)

	// Aggregates
	Summary(ctx context.Context, userID int64, start, end time.Time) (*models.Summary, error)
	RunningTotals(ctx context.Context, userID int64, start, end time.Time) (models.RunningTotals, error)
	TotalVolume(ctx context.Context, userID int64) (float64, error)

	// Export
	WriteHistoryCSV(ctx context.Context, w io.Writer, userID int64) (int, error)
	ExportJSON(ctx context.Context, userID int64) ([]byte, error)
	ExportYAML(ctx context.Context, userID int64) ([]byte, error)

	// Lifecycle
	Close() error
}

var _ Repository = (*DB)(nil)
