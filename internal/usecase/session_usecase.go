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
	"go-tutoring-backend/pkg/email"
	"go-tutoring-backend/pkg/logger"
	"go-tutoring-backend/pkg/validation"
)

type sessionUsecase struct {
	sessionRepo   domain.SessionRepository
	studentRepo   domain.StudentRepository
	userRepo      domain.UserRepository
	achievementUC domain.AchievementUsecase
	emailService  *email.EmailService
	validate      *validator.Validate
}

func NewSessionUsecase(
	sessionRepo domain.SessionRepository,
	studentRepo domain.StudentRepository,
	userRepo domain.UserRepository,
	achievementUC domain.AchievementUsecase,
	emailService *email.EmailService,
	validate *validator.Validate,
) domain.SessionUsecase {
	return &sessionUsecase{
		sessionRepo:   sessionRepo,
		studentRepo:   studentRepo,
		userRepo:      userRepo,
		achievementUC: achievementUC,
		emailService:  emailService,
		validate:      validate,
	}
}

// ============================================================================
// Schedule
// ============================================================================

func (u *sessionUsecase) Schedule(ctx context.Context, tutorID string, req *domain.ScheduleSessionRequest) (*domain.Session, error) {
	if err := u.validate.Struct(req); err != nil {
		msgs := validation.FormatValidationErrors(err)
		return nil, apperror.New(http.StatusBadRequest, "Validation failed: "+strings.Join(msgs, "; "), err)
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return nil, apperror.BadRequest("Scheduled time must be RFC 3339, e.g. 2026-09-01T15:00:00Z")
	}
	if scheduledAt.Before(time.Now()) {
		return nil, apperror.BadRequest("Scheduled time must be in the future")
	}

	// The student must be on this tutor's roster
	student, err := u.studentRepo.GetByID(ctx, req.StudentID)
	if err != nil {
		return nil, apperror.New(http.StatusInternalServerError, "Failed to load student: "+err.Error(), err)
	}
	if student == nil || student.TutorID != tutorID {
		return nil, apperror.NotFound("Student not found on your roster")
	}
	if student.Archived {
		return nil, apperror.Conflict("Student is archived; restore them before scheduling")
	}

	now := time.Now()
	session := &domain.Session{
		ID:              uuid.NewString(),
		TutorID:         tutorID,
		StudentID:       req.StudentID,
		Subject:         req.Subject,
		ScheduledAt:     scheduledAt,
		DurationMinutes: req.DurationMinutes,
		Status:          domain.SessionScheduled,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := u.sessionRepo.Create(ctx, session); err != nil {
		return nil, apperror.New(http.StatusInternalServerError, "Failed to schedule session: "+err.Error(), err)
	}

	// Best-effort confirmation email; scheduling must not fail on SMTP issues
	u.sendConfirmation(ctx, tutorID, student.FullName, session)

	return session, nil
}

func (u *sessionUsecase) sendConfirmation(ctx context.Context, tutorID, studentName string, session *domain.Session) {
	if u.emailService == nil || !u.emailService.IsConfigured() {
		return
	}
	tutor, err := u.userRepo.GetByID(ctx, tutorID)
	if err != nil || tutor == nil || tutor.Email == "" {
		return
	}
	if err := u.emailService.SendSessionConfirmation(email.SessionConfirmationData{
		RecipientEmail: tutor.Email,
		StudentName:    studentName,
		Subject:        session.Subject,
		ScheduledAt:    session.ScheduledAt,
		DurationMin:    session.DurationMinutes,
	}); err != nil {
		logger.Log.Warn("Failed to send session confirmation", "session_id", session.ID, "error", err)
	}
}

// ============================================================================
// Queries
// ============================================================================

func (u *sessionUsecase) GetByID(ctx context.Context, tutorID, sessionID string) (*domain.Session, error) {
	session, err := u.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, apperror.New(http.StatusInternalServerError, "Failed to load session: "+err.Error(), err)
	}
	if session == nil || session.TutorID != tutorID {
		return nil, apperror.NotFound("Session not found")
	}
	return session, nil
}

func (u *sessionUsecase) ListByTutor(ctx context.Context, tutorID string, status string, limit, offset int) ([]domain.Session, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var statusFilter *domain.SessionStatus
	if status != "" {
		s := domain.SessionStatus(status)
		if !s.IsValid() {
			return nil, apperror.BadRequest("Invalid session status: " + status)
		}
		statusFilter = &s
	}

	sessions, err := u.sessionRepo.ListByTutor(ctx, tutorID, statusFilter, limit, offset)
	if err != nil {
		return nil, apperror.New(http.StatusInternalServerError, "Failed to list sessions: "+err.Error(), err)
	}
	return sessions, nil
}

// ============================================================================
// Lifecycle
// ============================================================================

func (u *sessionUsecase) Cancel(ctx context.Context, tutorID, sessionID string) error {
	session, err := u.GetByID(ctx, tutorID, sessionID)
	if err != nil {
		return err
	}
	if session.Status != domain.SessionScheduled {
		return apperror.Conflict("Only scheduled sessions can be cancelled")
	}

	if err := u.sessionRepo.UpdateStatus(ctx, sessionID, domain.SessionCancelled); err != nil {
		return apperror.New(http.StatusInternalServerError, "Failed to cancel session: "+err.Error(), err)
	}
	return nil
}

// Complete marks the session done and feeds the tutor's refreshed counters
// through the achievement engine. Unlock results ride back to the caller so
// the dashboard can celebrate immediately instead of waiting for a refetch.
func (u *sessionUsecase) Complete(ctx context.Context, tutorID, sessionID string) (*domain.CompleteSessionResult, error) {
	session, err := u.GetByID(ctx, tutorID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == domain.SessionCompleted {
		return nil, apperror.Conflict("Session is already completed")
	}
	if session.Status == domain.SessionCancelled {
		return nil, apperror.Conflict("Cancelled sessions cannot be completed")
	}

	if err := u.sessionRepo.UpdateStatus(ctx, sessionID, domain.SessionCompleted); err != nil {
		return nil, apperror.New(http.StatusInternalServerError, "Failed to complete session: "+err.Error(), err)
	}
	session.Status = domain.SessionCompleted
	session.UpdatedAt = time.Now()

	unlocked, err := u.refreshAchievements(ctx, tutorID)
	if err != nil {
		// The session state change already landed; achievement bookkeeping
		// failing must not look like a failed completion.
		logger.Log.Error("Achievement refresh failed after session completion", "tutor_id", tutorID, "error", err)
		unlocked = []domain.AchievementDefinition{}
	}

	return &domain.CompleteSessionResult{
		Session:              session,
		UnlockedAchievements: unlocked,
	}, nil
}

// refreshAchievements recounts the tutor's completed sessions and taught
// hours and reports both counters to the achievement engine.
func (u *sessionUsecase) refreshAchievements(ctx context.Context, tutorID string) ([]domain.AchievementDefinition, error) {
	count, err := u.sessionRepo.CountCompletedByTutor(ctx, tutorID)
	if err != nil {
		return nil, err
	}
	hours, err := u.sessionRepo.SumCompletedHoursByTutor(ctx, tutorID)
	if err != nil {
		return nil, err
	}

	unlocked, err := u.achievementUC.CheckProgress(ctx, tutorID, domain.ConditionSessionsCount, float64(count))
	if err != nil {
		return nil, err
	}
	fromHours, err := u.achievementUC.CheckProgress(ctx, tutorID, domain.ConditionHoursTaught, hours)
	if err != nil {
		return nil, err
	}

	return append(unlocked, fromHours...), nil
}
