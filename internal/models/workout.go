// ABOUTME: WorkoutSession model and its lifecycle status.
// ABOUTME: A session is one workout attempt from start to close.
package models

import (
	"time"
)

// SessionStatus is the lifecycle state of a workout session.
type SessionStatus string

const (
	StatusActive    SessionStatus = "active"
	StatusCompleted SessionStatus = "completed"
	StatusSkipped   SessionStatus = "skipped"
	StatusCancelled SessionStatus = "cancelled"
)

// IsValid reports whether s is one of the known statuses.
func (s SessionStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusSkipped, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether a session in this status is closed.
func (s SessionStatus) IsTerminal() bool {
	return s.IsValid() && s != StatusActive
}

// WorkoutSession represents a single training day.
type WorkoutSession struct {
	ID               int64
	UserID           int64
	MuscleGroup      string
	StartedAt        time.Time
	EndedAt          *time.Time
	BodyWeightKg     *float64
	WarmupDone       bool
	WarmupMinutes    *float64
	WarmupDistanceKm *float64
	Status           SessionStatus
}

// NewWorkoutSession creates an active session for the given group starting now.
func NewWorkoutSession(userID int64, muscleGroup string) *WorkoutSession {
	return &WorkoutSession{
		UserID:      userID,
		MuscleGroup: muscleGroup,
		StartedAt:   time.Now().UTC(),
		Status:      StatusActive,
	}
}

// WithStatus sets the initial status. Non-active sessions are closed at start time.
func (s *WorkoutSession) WithStatus(status SessionStatus) *WorkoutSession {
	s.Status = status
	if status.IsTerminal() {
		ended := s.StartedAt
		s.EndedAt = &ended
	} else {
		s.EndedAt = nil
	}
	return s
}

// WithStartedAt overrides the start timestamp.
func (s *WorkoutSession) WithStartedAt(t time.Time) *WorkoutSession {
	s.StartedAt = t.UTC()
	if s.EndedAt != nil {
		ended := s.StartedAt
		s.EndedAt = &ended
	}
	return s
}

// IsActive reports whether the session is still open.
func (s *WorkoutSession) IsActive() bool {
	return s.Status == StatusActive
}

// WarmupMinutesValue returns the warm-up minutes or zero.
func (s *WorkoutSession) WarmupMinutesValue() float64 {
	if s.WarmupMinutes == nil {
		return 0
	}
	return *s.WarmupMinutes
}

// WarmupDistanceValue returns the warm-up distance or zero.
func (s *WorkoutSession) WarmupDistanceValue() float64 {
	if s.WarmupDistanceKm == nil {
		return 0
	}
	return *s.WarmupDistanceKm
}
