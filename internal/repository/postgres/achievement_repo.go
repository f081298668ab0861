package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-tutoring-backend/internal/domain"
)

type achievementRepo struct {
	db *pgxpool.Pool
}

func NewAchievementRepository(db *pgxpool.Pool) domain.AchievementRepository {
	return &achievementRepo{db: db}
}

// ============================================================================
// Definitions
// ============================================================================

func (r *achievementRepo) ListDefinitions(ctx context.Context) ([]domain.AchievementDefinition, error) {
	query := `
		SELECT id, title, description, icon, condition_type, condition_value, xp_reward, rarity, created_at
		FROM achievement_definitions
		ORDER BY condition_type, condition_value
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievement definitions: %w", err)
	}
	defer rows.Close()

	var defs []domain.AchievementDefinition
	for rows.Next() {
		var d domain.AchievementDefinition
		err := rows.Scan(&d.ID, &d.Title, &d.Description, &d.Icon, &d.ConditionType, &d.ConditionValue, &d.XPReward, &d.Rarity, &d.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan achievement definition: %w", err)
		}
		defs = append(defs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate achievement definitions: %w", err)
	}

	return defs, nil
}

// ============================================================================
// Progress
// ============================================================================

func (r *achievementRepo) GetProgressByUser(ctx context.Context, userID string) ([]domain.AchievementProgress, error) {
	query := `
		SELECT user_id, achievement_id, progress, unlocked_at, updated_at
		FROM tutor_achievement_progress
		WHERE user_id = $1
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get achievement progress: %w", err)
	}
	defer rows.Close()

	return scanProgressRows(rows)
}

func (r *achievementRepo) GetProgressForDefinitions(ctx context.Context, userID string, achievementIDs []string) ([]domain.AchievementProgress, error) {
	if len(achievementIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT user_id, achievement_id, progress, unlocked_at, updated_at
		FROM tutor_achievement_progress
		WHERE user_id = $1 AND achievement_id = ANY($2)
	`

	rows, err := r.db.Query(ctx, query, userID, achievementIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get achievement progress: %w", err)
	}
	defer rows.Close()

	return scanProgressRows(rows)
}

// UpsertProgress writes one progress row. The COALESCE keeps the original
// unlock timestamp once set, so an achievement can never relock or move
// its unlock time.
func (r *achievementRepo) UpsertProgress(ctx context.Context, progress *domain.AchievementProgress) error {
	query := `
		INSERT INTO tutor_achievement_progress (user_id, achievement_id, progress, unlocked_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, achievement_id) DO UPDATE
		SET progress = EXCLUDED.progress,
		    unlocked_at = COALESCE(tutor_achievement_progress.unlocked_at, EXCLUDED.unlocked_at),
		    updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Exec(ctx, query,
		progress.UserID,
		progress.AchievementID,
		progress.Progress,
		progress.UnlockedAt,
		progress.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert achievement progress: %w", err)
	}

	return nil
}

func scanProgressRows(rows pgx.Rows) ([]domain.AchievementProgress, error) {
	var items []domain.AchievementProgress
	for rows.Next() {
		var p domain.AchievementProgress
		err := rows.Scan(&p.UserID, &p.AchievementID, &p.Progress, &p.UnlockedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan achievement progress: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate achievement progress: %w", err)
	}

	return items, nil
}
