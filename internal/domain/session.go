package domain

import (
	"context"
	"time"
)

// ============================================================================
// Tutoring Sessions
// ============================================================================

// SessionStatus represents the lifecycle state of a tutoring session
type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// ValidSessionStatuses returns all valid session statuses
func ValidSessionStatuses() []SessionStatus {
	return []SessionStatus{SessionScheduled, SessionCompleted, SessionCancelled}
}

// IsValid checks if the session status is valid
func (s SessionStatus) IsValid() bool {
	for _, valid := range ValidSessionStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

type Session struct {
	ID              string        `json:"id"` // UUID
	TutorID         string        `json:"tutor_id"`
	StudentID       string        `json:"student_id"`
	Subject         string        `json:"subject"`
	ScheduledAt     time.Time     `json:"scheduled_at"`
	DurationMinutes int           `json:"duration_minutes"`
	Status          SessionStatus `json:"status"`
	Notes           *string       `json:"notes,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// ScheduleSessionRequest is the payload for booking a new session
type ScheduleSessionRequest struct {
	StudentID       string  `json:"student_id" validate:"required,uuid4"`
	Subject         string  `json:"subject" validate:"required,min=2,max=100"`
	ScheduledAt     string  `json:"scheduled_at" validate:"required"` // RFC 3339
	DurationMinutes int     `json:"duration_minutes" validate:"required,min=15,max=480"`
	Notes           *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// CompleteSessionResult carries the completed session plus any achievements
// the completion unlocked (completing a session advances the tutor's
// sessions_count and hours_taught counters).
type CompleteSessionResult struct {
	Session              *Session                `json:"session"`
	UnlockedAchievements []AchievementDefinition `json:"unlocked_achievements"`
}

// ============================================================================
// Repository Interface
// ============================================================================

type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	GetByID(ctx context.Context, id string) (*Session, error)
	ListByTutor(ctx context.Context, tutorID string, status *SessionStatus, limit, offset int) ([]Session, error)
	UpdateStatus(ctx context.Context, id string, status SessionStatus) error

	// Aggregates feeding the achievement counters
	CountCompletedByTutor(ctx context.Context, tutorID string) (int64, error)
	SumCompletedHoursByTutor(ctx context.Context, tutorID string) (float64, error)
}

// ============================================================================
// Usecase Interface
// ============================================================================

type SessionUsecase interface {
	Schedule(ctx context.Context, tutorID string, req *ScheduleSessionRequest) (*Session, error)
	GetByID(ctx context.Context, tutorID, sessionID string) (*Session, error)
	ListByTutor(ctx context.Context, tutorID string, status string, limit, offset int) ([]Session, error)
	Cancel(ctx context.Context, tutorID, sessionID string) error

	// Complete marks the session done, recounts the tutor's completed
	// sessions and taught hours, and runs both through the achievement
	// engine. Newly unlocked achievements ride back on the result.
	Complete(ctx context.Context, tutorID, sessionID string) (*CompleteSessionResult, error)
}
