package domain

import (
	"context"
	"time"
)

// ============================================================================
// Student Roster
// ============================================================================

type Student struct {
	ID         string    `json:"id"` // UUID
	TutorID    string    `json:"tutor_id"`
	FullName   string    `json:"full_name"`
	Email      *string   `json:"email,omitempty"`
	Subjects   []string  `json:"subjects"`
	GradeLevel *string   `json:"grade_level,omitempty"`
	Archived   bool      `json:"archived"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UpsertStudentRequest is the payload for adding or updating a roster entry
type UpsertStudentRequest struct {
	FullName   string   `json:"full_name" validate:"required,min=2,max=100,valid_name"`
	Email      *string  `json:"email,omitempty" validate:"omitempty,email"`
	Subjects   []string `json:"subjects" validate:"required,min=1,max=10,dive,min=2,max=50"`
	GradeLevel *string  `json:"grade_level,omitempty" validate:"omitempty,max=30"`
}

// ============================================================================
// Repository Interface
// ============================================================================

type StudentRepository interface {
	Create(ctx context.Context, student *Student) error
	GetByID(ctx context.Context, id string) (*Student, error)
	ListByTutor(ctx context.Context, tutorID string, includeArchived bool) ([]Student, error)
	Update(ctx context.Context, student *Student) error
	SetArchived(ctx context.Context, id string, archived bool) error
}

// ============================================================================
// Usecase Interface
// ============================================================================

type StudentUsecase interface {
	Add(ctx context.Context, tutorID string, req *UpsertStudentRequest) (*Student, error)
	GetByID(ctx context.Context, tutorID, studentID string) (*Student, error)
	ListByTutor(ctx context.Context, tutorID string, includeArchived bool) ([]Student, error)
	Update(ctx context.Context, tutorID, studentID string, req *UpsertStudentRequest) (*Student, error)
	Archive(ctx context.Context, tutorID, studentID string) error
}
