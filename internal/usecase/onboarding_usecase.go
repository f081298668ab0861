package usecase

import (
	"context"
	"net/http"
	"time"

	"go-tutoring-backend/internal/domain"
	"go-tutoring-backend/pkg/apperror"
)

type onboardingUsecase struct {
	repo        domain.OnboardingRepository
	catalog     *domain.StepCatalog
	stepMinutes int // fixed per-step estimate for trackProgress
}

func NewOnboardingUsecase(repo domain.OnboardingRepository, catalog *domain.StepCatalog, stepMinutes int) domain.OnboardingUsecase {
	if stepMinutes <= 0 {
		stepMinutes = 5
	}
	return &onboardingUsecase{
		repo:        repo,
		catalog:     catalog,
		stepMinutes: stepMinutes,
	}
}

// ============================================================================
// Complete Step
// ============================================================================

// CompleteStep enforces the ordered onboarding flow. Preconditions are
// checked in a fixed order: unknown step, re-completion, missing
// prerequisite. Re-completion is a conflict, not a silent no-op, so callers
// can distinguish a genuine advance from a stale retry.
func (u *onboardingUsecase) CompleteStep(ctx context.Context, userID, stepID string) (*domain.OnboardingStatus, error) {
	step, ok := u.catalog.Step(stepID)
	if !ok {
		return nil, apperror.New(http.StatusBadRequest, "Unknown onboarding step: "+stepID, domain.ErrInvalidStep)
	}

	status, err := u.repo.GetStatus(ctx, userID)
	if err != nil {
		return nil, apperror.New(http.StatusInternalServerError, "Failed to load onboarding status: "+err.Error(), err)
	}

	var completed []string
	startedAt := time.Now()
	if status != nil {
		completed = status.CompletedSteps
		if status.StartedAt != nil {
			startedAt = *status.StartedAt
		}
	}

	done := make(map[string]bool, len(completed))
	for _, id := range completed {
		done[id] = true
	}

	if done[stepID] {
		return nil, apperror.New(http.StatusConflict, "Step already completed: "+stepID, domain.ErrStepAlreadyCompleted)
	}

	// Every step with a lower order must already be complete
	for _, prior := range u.catalog.Steps() {
		if prior.Order >= step.Order {
			break
		}
		if !done[prior.ID] {
			return nil, apperror.New(http.StatusConflict, "Complete previous steps first", domain.ErrStepOutOfOrder)
		}
	}

	// The guarded upsert re-checks the completed count so two concurrent
	// completions for the same user cannot both land.
	updated, err := u.repo.AppendCompletedStep(ctx, userID, stepID, len(completed), startedAt)
	if err != nil {
		if err == domain.ErrStepAlreadyCompleted {
			return nil, apperror.New(http.StatusConflict, "Step already completed: "+stepID, domain.ErrStepAlreadyCompleted)
		}
		return nil, apperror.New(http.StatusInternalServerError, "Failed to save onboarding progress: "+err.Error(), err)
	}

	u.decorate(updated)
	return updated, nil
}

// ============================================================================
// Status Queries
// ============================================================================

// GetStatus returns the not-started default for users with no recorded
// progress; it never fails for an unknown user.
func (u *onboardingUsecase) GetStatus(ctx context.Context, userID string) (*domain.OnboardingStatus, error) {
	status, err := u.repo.GetStatus(ctx, userID)
	if err != nil {
		return nil, apperror.New(http.StatusInternalServerError, "Failed to load onboarding status: "+err.Error(), err)
	}

	if status == nil {
		status = &domain.OnboardingStatus{
			UserID:         userID,
			CompletedSteps: []string{},
		}
	}

	u.decorate(status)
	return status, nil
}

func (u *onboardingUsecase) IsComplete(ctx context.Context, userID string) (bool, error) {
	status, err := u.GetStatus(ctx, userID)
	if err != nil {
		return false, err
	}
	return len(status.CompletedSteps) == u.catalog.Size(), nil
}

// TrackProgress projects the status into the dashboard widget shape. The
// time estimate is remaining steps times a fixed per-step constant; it is
// configuration, not measurement.
func (u *onboardingUsecase) TrackProgress(ctx context.Context, userID string) (*domain.ProgressReport, error) {
	status, err := u.GetStatus(ctx, userID)
	if err != nil {
		return nil, err
	}

	remaining := u.catalog.RemainingSteps(status.CompletedSteps)

	return &domain.ProgressReport{
		CurrentStep:          status.CurrentStep,
		CompletedSteps:       status.CompletedSteps,
		RemainingSteps:       remaining,
		PercentComplete:      status.PercentComplete,
		EstimatedMinutesLeft: len(remaining) * u.stepMinutes,
	}, nil
}

// decorate fills the derived fields from the catalog. Stored values are
// never trusted for these; they are recomputed on every read.
func (u *onboardingUsecase) decorate(status *domain.OnboardingStatus) {
	if status.CompletedSteps == nil {
		status.CompletedSteps = []string{}
	}
	status.TotalSteps = u.catalog.Size()
	status.CurrentStep = u.catalog.CurrentStep(status.CompletedSteps)
	status.PercentComplete = int(float64(len(status.CompletedSteps)) / float64(u.catalog.Size()) * 100)
}
