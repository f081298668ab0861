package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"go-tutoring-backend/internal/domain"
	"go-tutoring-backend/pkg/apperror"
	"go-tutoring-backend/pkg/validation"
)

type studentUsecase struct {
	repo     domain.StudentRepository
	validate *validator.Validate
}

func NewStudentUsecase(repo domain.StudentRepository, validate *validator.Validate) domain.StudentUsecase {
	return &studentUsecase{
		repo:     repo,
		validate: validate,
	}
}

func (u *studentUsecase) Add(ctx context.Context, tutorID string, req *domain.UpsertStudentRequest) (*domain.Student, error) {
	if err := u.validateRequest(req); err != nil {
		return nil, err
	}

	now := time.Now()
	student := &domain.Student{
		ID:         uuid.NewString(),
		TutorID:    tutorID,
		FullName:   req.FullName,
		Email:      req.Email,
		Subjects:   normalizeSubjects(req.Subjects),
		GradeLevel: req.GradeLevel,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := u.repo.Create(ctx, student); err != nil {
		return nil, apperror.New(http.StatusInternalServerError, "Failed to add student: "+err.Error(), err)
	}
	return student, nil
}

func (u *studentUsecase) GetByID(ctx context.Context, tutorID, studentID string) (*domain.Student, error) {
	student, err := u.repo.GetByID(ctx, studentID)
	if err != nil {
		return nil, apperror.New(http.StatusInternalServerError, "Failed to load student: "+err.Error(), err)
	}
	if student == nil || student.TutorID != tutorID {
		return nil, apperror.NotFound("Student not found")
	}
	return student, nil
}

func (u *studentUsecase) ListByTutor(ctx context.Context, tutorID string, includeArchived bool) ([]domain.Student, error) {
	students, err := u.repo.ListByTutor(ctx, tutorID, includeArchived)
	if err != nil {
		return nil, apperror.New(http.StatusInternalServerError, "Failed to list students: "+err.Error(), err)
	}
	return students, nil
}

func (u *studentUsecase) Update(ctx context.Context, tutorID, studentID string, req *domain.UpsertStudentRequest) (*domain.Student, error) {
	if err := u.validateRequest(req); err != nil {
		return nil, err
	}

	student, err := u.GetByID(ctx, tutorID, studentID)
	if err != nil {
		return nil, err
	}

	student.FullName = req.FullName
	student.Email = req.Email
	student.Subjects = normalizeSubjects(req.Subjects)
	student.GradeLevel = req.GradeLevel
	student.UpdatedAt = time.Now()

	if err := u.repo.Update(ctx, student); err != nil {
		return nil, apperror.New(http.StatusInternalServerError, "Failed to update student: "+err.Error(), err)
	}
	return student, nil
}

func (u *studentUsecase) Archive(ctx context.Context, tutorID, studentID string) error {
	student, err := u.GetByID(ctx, tutorID, studentID)
	if err != nil {
		return err
	}
	if student.Archived {
		return apperror.Conflict("Student is already archived")
	}

	if err := u.repo.SetArchived(ctx, studentID, true); err != nil {
		return apperror.New(http.StatusInternalServerError, "Failed to archive student: "+err.Error(), err)
	}
	return nil
}

func (u *studentUsecase) validateRequest(req *domain.UpsertStudentRequest) error {
	if err := u.validate.Struct(req); err != nil {
		msgs := validation.FormatValidationErrors(err)
		return apperror.New(http.StatusBadRequest, "Validation failed: "+strings.Join(msgs, "; "), err)
	}
	return nil
}

// normalizeSubjects trims whitespace and drops duplicates, preserving order
func normalizeSubjects(subjects []string) []string {
	seen := make(map[string]bool, len(subjects))
	out := make([]string, 0, len(subjects))
	for _, s := range subjects {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
