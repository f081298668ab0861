package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"go-tutoring-backend/internal/domain"
)

type onboardingRepo struct {
	db *pgxpool.Pool
}

func NewOnboardingRepository(db *pgxpool.Pool) domain.OnboardingRepository {
	return &onboardingRepo{db: db}
}

// ============================================================================
// Status
// ============================================================================

func (r *onboardingRepo) GetStatus(ctx context.Context, userID string) (*domain.OnboardingStatus, error) {
	query := `
		SELECT user_id, completed_steps, started_at
		FROM tutor_onboarding_status
		WHERE user_id = $1
	`

	status := &domain.OnboardingStatus{}
	var completed []string
	var startedAt *time.Time
	err := r.db.QueryRow(ctx, query, userID).Scan(&status.UserID, pq.Array(&completed), &startedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			// No recorded progress; the usecase treats this as "not started"
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get onboarding status: %w", err)
	}

	status.CompletedSteps = completed
	status.StartedAt = startedAt
	return status, nil
}

// ============================================================================
// Guarded Append
// ============================================================================

// AppendCompletedStep appends in a single atomic upsert. The guard only
// lets the write land when the step is absent and the stored count still
// matches what the caller validated against, so two racing completions for
// one user cannot both succeed.
func (r *onboardingRepo) AppendCompletedStep(ctx context.Context, userID, stepID string, priorCount int, startedAt time.Time) (*domain.OnboardingStatus, error) {
	query := `
		INSERT INTO tutor_onboarding_status (user_id, completed_steps, started_at)
		VALUES ($1, ARRAY[$2]::text[], $3)
		ON CONFLICT (user_id) DO UPDATE
		SET completed_steps = array_append(tutor_onboarding_status.completed_steps, $2)
		WHERE NOT tutor_onboarding_status.completed_steps @> ARRAY[$2]::text[]
		  AND cardinality(tutor_onboarding_status.completed_steps) = $4
		RETURNING user_id, completed_steps, started_at
	`

	status := &domain.OnboardingStatus{}
	var completed []string
	var started *time.Time
	err := r.db.QueryRow(ctx, query, userID, stepID, startedAt, priorCount).
		Scan(&status.UserID, pq.Array(&completed), &started)
	if err != nil {
		if err == pgx.ErrNoRows {
			// Guard rejected the write: duplicate step or concurrent append
			return nil, domain.ErrStepAlreadyCompleted
		}
		return nil, fmt.Errorf("failed to append completed step: %w", err)
	}

	status.CompletedSteps = completed
	status.StartedAt = started
	return status, nil
}
