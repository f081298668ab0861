package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-tutoring-backend/internal/domain"
	"go-tutoring-backend/internal/usecase"
	"go-tutoring-backend/pkg/apperror"
	"go-tutoring-backend/pkg/validation"
)

// Mock Repositories

type MockSessionRepo struct {
	mock.Mock
}

func (m *MockSessionRepo) Create(ctx context.Context, session *domain.Session) error {
	return m.Called(ctx, session).Error(0)
}

func (m *MockSessionRepo) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionRepo) ListByTutor(ctx context.Context, tutorID string, status *domain.SessionStatus, limit, offset int) ([]domain.Session, error) {
	args := m.Called(ctx, tutorID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Session), args.Error(1)
}

func (m *MockSessionRepo) UpdateStatus(ctx context.Context, id string, status domain.SessionStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockSessionRepo) CountCompletedByTutor(ctx context.Context, tutorID string) (int64, error) {
	args := m.Called(ctx, tutorID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSessionRepo) SumCompletedHoursByTutor(ctx context.Context, tutorID string) (float64, error) {
	args := m.Called(ctx, tutorID)
	return args.Get(0).(float64), args.Error(1)
}

type MockStudentRepo struct {
	mock.Mock
}

func (m *MockStudentRepo) Create(ctx context.Context, student *domain.Student) error {
	return m.Called(ctx, student).Error(0)
}

func (m *MockStudentRepo) GetByID(ctx context.Context, id string) (*domain.Student, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Student), args.Error(1)
}

func (m *MockStudentRepo) ListByTutor(ctx context.Context, tutorID string, includeArchived bool) ([]domain.Student, error) {
	args := m.Called(ctx, tutorID, includeArchived)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Student), args.Error(1)
}

func (m *MockStudentRepo) Update(ctx context.Context, student *domain.Student) error {
	return m.Called(ctx, student).Error(0)
}

func (m *MockStudentRepo) SetArchived(ctx context.Context, id string, archived bool) error {
	return m.Called(ctx, id, archived).Error(0)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepo) UpdateAvatarURL(ctx context.Context, userID, avatarURL string) error {
	return m.Called(ctx, userID, avatarURL).Error(0)
}

type MockAchievementUC struct {
	mock.Mock
}

func (m *MockAchievementUC) CheckProgress(ctx context.Context, userID string, conditionType domain.ConditionType, value float64) ([]domain.AchievementDefinition, error) {
	args := m.Called(ctx, userID, conditionType, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AchievementDefinition), args.Error(1)
}

func (m *MockAchievementUC) GroupByTier(items []domain.AchievementProgressItem) []domain.AchievementTierGroup {
	args := m.Called(items)
	return args.Get(0).([]domain.AchievementTierGroup)
}

func (m *MockAchievementUC) ListForUser(ctx context.Context, userID string) ([]domain.AchievementTierGroup, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AchievementTierGroup), args.Error(1)
}

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	validation.RegisterValidators(v)
	return v
}

// ============================================================================
// Schedule
// ============================================================================

func TestScheduleSession_Success(t *testing.T) {
	sessionRepo := new(MockSessionRepo)
	studentRepo := new(MockStudentRepo)
	userRepo := new(MockUserRepo)
	achievementUC := new(MockAchievementUC)

	uc := usecase.NewSessionUsecase(sessionRepo, studentRepo, userRepo, achievementUC, nil, newValidator(t))

	studentID := "3f0d8b9e-97a2-4a61-b3a7-0f6cbbd0a001"
	studentRepo.On("GetByID", mock.Anything, studentID).
		Return(&domain.Student{ID: studentID, TutorID: "tutor-1", FullName: "Ada"}, nil)
	sessionRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil)

	session, err := uc.Schedule(context.Background(), "tutor-1", &domain.ScheduleSessionRequest{
		StudentID:       studentID,
		Subject:         "Algebra",
		ScheduledAt:     time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		DurationMinutes: 60,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.SessionScheduled, session.Status)
	assert.Equal(t, "tutor-1", session.TutorID)
	assert.NotEmpty(t, session.ID)
	sessionRepo.AssertExpectations(t)
}

func TestScheduleSession_RejectsPastTime(t *testing.T) {
	uc := usecase.NewSessionUsecase(new(MockSessionRepo), new(MockStudentRepo), new(MockUserRepo), new(MockAchievementUC), nil, newValidator(t))

	_, err := uc.Schedule(context.Background(), "tutor-1", &domain.ScheduleSessionRequest{
		StudentID:       "3f0d8b9e-97a2-4a61-b3a7-0f6cbbd0a001",
		Subject:         "Algebra",
		ScheduledAt:     time.Now().Add(-time.Hour).Format(time.RFC3339),
		DurationMinutes: 60,
	})

	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.Code)
}

func TestScheduleSession_StudentMustBeOnRoster(t *testing.T) {
	sessionRepo := new(MockSessionRepo)
	studentRepo := new(MockStudentRepo)
	uc := usecase.NewSessionUsecase(sessionRepo, studentRepo, new(MockUserRepo), new(MockAchievementUC), nil, newValidator(t))

	studentID := "3f0d8b9e-97a2-4a61-b3a7-0f6cbbd0a001"
	// Student belongs to another tutor
	studentRepo.On("GetByID", mock.Anything, studentID).
		Return(&domain.Student{ID: studentID, TutorID: "someone-else"}, nil)

	_, err := uc.Schedule(context.Background(), "tutor-1", &domain.ScheduleSessionRequest{
		StudentID:       studentID,
		Subject:         "Algebra",
		ScheduledAt:     time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		DurationMinutes: 60,
	})

	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.Code)
	sessionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// ============================================================================
// Complete
// ============================================================================

func TestCompleteSession_FeedsAchievementCounters(t *testing.T) {
	sessionRepo := new(MockSessionRepo)
	achievementUC := new(MockAchievementUC)
	uc := usecase.NewSessionUsecase(sessionRepo, new(MockStudentRepo), new(MockUserRepo), achievementUC, nil, newValidator(t))

	session := &domain.Session{ID: "sess-1", TutorID: "tutor-1", Status: domain.SessionScheduled, DurationMinutes: 60}
	sessionRepo.On("GetByID", mock.Anything, "sess-1").Return(session, nil)
	sessionRepo.On("UpdateStatus", mock.Anything, "sess-1", domain.SessionCompleted).Return(nil)
	sessionRepo.On("CountCompletedByTutor", mock.Anything, "tutor-1").Return(int64(10), nil)
	sessionRepo.On("SumCompletedHoursByTutor", mock.Anything, "tutor-1").Return(12.5, nil)

	bronze := domain.AchievementDefinition{ID: "ses-bronze", ConditionType: domain.ConditionSessionsCount, ConditionValue: 10}
	achievementUC.On("CheckProgress", mock.Anything, "tutor-1", domain.ConditionSessionsCount, 10.0).
		Return([]domain.AchievementDefinition{bronze}, nil)
	achievementUC.On("CheckProgress", mock.Anything, "tutor-1", domain.ConditionHoursTaught, 12.5).
		Return([]domain.AchievementDefinition{}, nil)

	result, err := uc.Complete(context.Background(), "tutor-1", "sess-1")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCompleted, result.Session.Status)
	require.Len(t, result.UnlockedAchievements, 1)
	assert.Equal(t, "ses-bronze", result.UnlockedAchievements[0].ID)

	sessionRepo.AssertExpectations(t)
	achievementUC.AssertExpectations(t)
}

func TestCompleteSession_AlreadyCompletedIsConflict(t *testing.T) {
	sessionRepo := new(MockSessionRepo)
	uc := usecase.NewSessionUsecase(sessionRepo, new(MockStudentRepo), new(MockUserRepo), new(MockAchievementUC), nil, newValidator(t))

	sessionRepo.On("GetByID", mock.Anything, "sess-1").
		Return(&domain.Session{ID: "sess-1", TutorID: "tutor-1", Status: domain.SessionCompleted}, nil)

	_, err := uc.Complete(context.Background(), "tutor-1", "sess-1")
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, 409, appErr.Code)
	sessionRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelSession_OnlyScheduled(t *testing.T) {
	sessionRepo := new(MockSessionRepo)
	uc := usecase.NewSessionUsecase(sessionRepo, new(MockStudentRepo), new(MockUserRepo), new(MockAchievementUC), nil, newValidator(t))

	sessionRepo.On("GetByID", mock.Anything, "sess-1").
		Return(&domain.Session{ID: "sess-1", TutorID: "tutor-1", Status: domain.SessionCancelled}, nil)

	err := uc.Cancel(context.Background(), "tutor-1", "sess-1")
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, 409, appErr.Code)
}
