package domain

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

// ============================================================================
// Onboarding Steps
// ============================================================================

// StepCompleted is the sentinel value of CurrentStep once every catalog
// step has been completed.
const StepCompleted = "completed"

// Onboarding step completion errors. Usecases wrap these into AppErrors so
// handlers can surface a distinct message per failure kind.
var (
	ErrInvalidStep          = errors.New("unknown onboarding step")
	ErrStepAlreadyCompleted = errors.New("onboarding step already completed")
	ErrStepOutOfOrder       = errors.New("onboarding steps must be completed in order")
)

// OnboardingStep is one unit of the onboarding sequence. The catalog is
// static configuration: loaded once at startup and never mutated.
type OnboardingStep struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
	Title string `json:"title"`
}

// DefaultOnboardingSteps is the production step sequence for new tutors.
func DefaultOnboardingSteps() []OnboardingStep {
	return []OnboardingStep{
		{ID: "welcome", Order: 0, Title: "Welcome Tour"},
		{ID: "profile_setup", Order: 1, Title: "Set Up Your Profile"},
		{ID: "availability", Order: 2, Title: "Add Your Availability"},
		{ID: "best_practices", Order: 3, Title: "Tutoring Best Practices"},
		{ID: "first_session", Order: 4, Title: "Schedule Your First Session"},
	}
}

// StepCatalog is an immutable, totally ordered set of onboarding steps.
// Build one with NewStepCatalog and inject it into the onboarding usecase.
type StepCatalog struct {
	steps   []OnboardingStep // sorted ascending by Order
	byID    map[string]OnboardingStep
	ordered []string // step ids in completion order
}

// NewStepCatalog validates and indexes a step list. Steps must have unique
// ids and contiguous orders starting at 0.
func NewStepCatalog(steps []OnboardingStep) (*StepCatalog, error) {
	if len(steps) == 0 {
		return nil, errors.New("step catalog cannot be empty")
	}

	sorted := make([]OnboardingStep, len(steps))
	copy(sorted, steps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	byID := make(map[string]OnboardingStep, len(sorted))
	ordered := make([]string, 0, len(sorted))
	for i, step := range sorted {
		if step.ID == "" {
			return nil, fmt.Errorf("step at order %d has an empty id", step.Order)
		}
		if step.Order != i {
			return nil, fmt.Errorf("step orders must be contiguous from 0, got %d at position %d", step.Order, i)
		}
		if _, exists := byID[step.ID]; exists {
			return nil, fmt.Errorf("duplicate step id: %s", step.ID)
		}
		byID[step.ID] = step
		ordered = append(ordered, step.ID)
	}

	return &StepCatalog{steps: sorted, byID: byID, ordered: ordered}, nil
}

// Steps returns the catalog steps in completion order. The returned slice is
// a copy; callers cannot mutate the catalog.
func (c *StepCatalog) Steps() []OnboardingStep {
	out := make([]OnboardingStep, len(c.steps))
	copy(out, c.steps)
	return out
}

// Step looks up a step definition by id.
func (c *StepCatalog) Step(id string) (OnboardingStep, bool) {
	step, ok := c.byID[id]
	return step, ok
}

// Size returns the number of steps in the catalog.
func (c *StepCatalog) Size() int {
	return len(c.steps)
}

// CurrentStep returns the id of the lowest-order step not yet completed,
// or StepCompleted if every step is done.
func (c *StepCatalog) CurrentStep(completed []string) string {
	done := make(map[string]bool, len(completed))
	for _, id := range completed {
		done[id] = true
	}
	for _, id := range c.ordered {
		if !done[id] {
			return id
		}
	}
	return StepCompleted
}

// RemainingSteps returns the steps not yet completed, in completion order.
func (c *StepCatalog) RemainingSteps(completed []string) []OnboardingStep {
	done := make(map[string]bool, len(completed))
	for _, id := range completed {
		done[id] = true
	}
	remaining := []OnboardingStep{}
	for _, step := range c.steps {
		if !done[step.ID] {
			remaining = append(remaining, step)
		}
	}
	return remaining
}

// ============================================================================
// Per-User Onboarding Status
// ============================================================================

// OnboardingStatus is the per-user onboarding state. TotalSteps and
// PercentComplete are derived from the catalog on every read; storage only
// holds the completed step ids and the start timestamp.
type OnboardingStatus struct {
	UserID          string     `json:"user_id"`
	CompletedSteps  []string   `json:"completed_steps"`
	CurrentStep     string     `json:"current_step"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	TotalSteps      int        `json:"total_steps"`
	PercentComplete int        `json:"percent_complete"`
}

// ProgressReport is the dashboard progress-widget projection: status plus
// the remaining steps and a fixed-rate time estimate.
type ProgressReport struct {
	CurrentStep          string           `json:"current_step"`
	CompletedSteps       []string         `json:"completed_steps"`
	RemainingSteps       []OnboardingStep `json:"remaining_steps"`
	PercentComplete      int              `json:"percent_complete"`
	EstimatedMinutesLeft int              `json:"estimated_minutes_left"`
}

// ============================================================================
// Repository Interface
// ============================================================================

// OnboardingRepository persists per-user onboarding rows. GetStatus returns
// (nil, nil) for a user with no recorded progress.
//
// AppendCompletedStep must be a single atomic guarded upsert: the step is
// appended only if it is not already present AND the stored completed-step
// count still equals priorCount (the count the caller validated against).
// It returns ErrStepAlreadyCompleted when the guard rejects the write, which
// serializes concurrent completions for the same user at the storage layer.
type OnboardingRepository interface {
	GetStatus(ctx context.Context, userID string) (*OnboardingStatus, error)
	AppendCompletedStep(ctx context.Context, userID, stepID string, priorCount int, startedAt time.Time) (*OnboardingStatus, error)
}

// ============================================================================
// Usecase Interface
// ============================================================================

type OnboardingUsecase interface {
	// CompleteStep marks a step done for the user. Fails with a 400 for an
	// unknown step and 409 for re-completion or out-of-order attempts.
	CompleteStep(ctx context.Context, userID, stepID string) (*OnboardingStatus, error)

	// GetStatus never fails for an unknown user; it returns the not-started
	// default state instead.
	GetStatus(ctx context.Context, userID string) (*OnboardingStatus, error)

	// IsComplete reports whether the user finished every catalog step.
	IsComplete(ctx context.Context, userID string) (bool, error)

	// TrackProgress projects the status into the dashboard progress widget
	// shape, including an estimated-minutes-remaining figure.
	TrackProgress(ctx context.Context, userID string) (*ProgressReport, error)
}
