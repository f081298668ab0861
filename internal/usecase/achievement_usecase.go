package usecase

import (
	"context"
	"math"
	"net/http"
	"sort"
	"time"

	"go-tutoring-backend/internal/domain"
	"go-tutoring-backend/pkg/apperror"
)

type achievementUsecase struct {
	repo    domain.AchievementRepository
	catalog []domain.AchievementDefinition // immutable, loaded once at startup
	byType  map[domain.ConditionType][]domain.AchievementDefinition
}

// NewAchievementUsecase indexes the definition catalog by condition type,
// each ladder sorted ascending by threshold. The catalog is treated as
// immutable for the process lifetime.
func NewAchievementUsecase(repo domain.AchievementRepository, catalog []domain.AchievementDefinition) domain.AchievementUsecase {
	byType := make(map[domain.ConditionType][]domain.AchievementDefinition)
	for _, def := range catalog {
		byType[def.ConditionType] = append(byType[def.ConditionType], def)
	}
	for ct := range byType {
		ladder := byType[ct]
		sort.Slice(ladder, func(i, j int) bool { return ladder[i].ConditionValue < ladder[j].ConditionValue })
		byType[ct] = ladder
	}

	return &achievementUsecase{
		repo:    repo,
		catalog: catalog,
		byType:  byType,
	}
}

// ============================================================================
// Check Progress
// ============================================================================

// CheckProgress records the latest observed counter value against every
// definition of the condition type, latching unlocks. On unlock the stored
// progress is clamped to the threshold, not the raw observed value; the
// tier-grouping math relies on stored progress being comparable to
// thresholds, so overshoot is intentionally not recorded.
func (u *achievementUsecase) CheckProgress(ctx context.Context, userID string, conditionType domain.ConditionType, value float64) ([]domain.AchievementDefinition, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return nil, apperror.BadRequest("Progress value must be a non-negative finite number")
	}

	ladder := u.byType[conditionType]
	if len(ladder) == 0 {
		// No configured achievements for this metric; nothing to do
		return []domain.AchievementDefinition{}, nil
	}

	ids := make([]string, len(ladder))
	for i, def := range ladder {
		ids[i] = def.ID
	}

	rows, err := u.repo.GetProgressForDefinitions(ctx, userID, ids)
	if err != nil {
		return nil, apperror.New(http.StatusInternalServerError, "Failed to load achievement progress: "+err.Error(), err)
	}

	byID := make(map[string]*domain.AchievementProgress, len(rows))
	for i := range rows {
		byID[rows[i].AchievementID] = &rows[i]
	}

	newlyUnlocked := []domain.AchievementDefinition{}
	now := time.Now()

	for _, def := range ladder {
		existing := byID[def.ID]
		if existing.Unlocked() {
			// Unlock is a one-way latch: never re-unlock, never re-emit
			continue
		}

		row := &domain.AchievementProgress{
			UserID:        userID,
			AchievementID: def.ID,
			Progress:      value,
			UpdatedAt:     now,
		}
		if value >= def.ConditionValue {
			row.Progress = def.ConditionValue // clamp on unlock
			unlockedAt := now
			row.UnlockedAt = &unlockedAt
		}

		if err := u.repo.UpsertProgress(ctx, row); err != nil {
			return nil, apperror.New(http.StatusInternalServerError, "Failed to save achievement progress: "+err.Error(), err)
		}

		if row.UnlockedAt != nil {
			newlyUnlocked = append(newlyUnlocked, def)
		}
	}

	return newlyUnlocked, nil
}

// ============================================================================
// Tier Grouping
// ============================================================================

// GroupByTier is a pure display-data transform. It groups definitions by
// condition type into ascending tier ladders, locates the user's current
// tier, and computes percent-progress toward the next one. Condition types
// with no tier configuration degrade to a group with an empty ladder rather
// than failing.
func (u *achievementUsecase) GroupByTier(items []domain.AchievementProgressItem) []domain.AchievementTierGroup {
	type bucket struct {
		tiers    []domain.AchievementDefinition
		progress []*domain.AchievementProgress
	}

	buckets := make(map[domain.ConditionType]*bucket)
	order := []domain.ConditionType{}
	for _, item := range items {
		ct := item.Definition.ConditionType
		b, ok := buckets[ct]
		if !ok {
			b = &bucket{}
			buckets[ct] = b
			order = append(order, ct)
		}
		b.tiers = append(b.tiers, item.Definition)
		b.progress = append(b.progress, item.Progress)
	}

	// One group per distinct condition type, deterministically ordered
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	groups := make([]domain.AchievementTierGroup, 0, len(buckets))
	for _, ct := range order {
		b := buckets[ct]

		// Progress is recorded per-definition but represents one underlying
		// counter; take the max defensively in case rows drifted.
		var highest float64
		for _, p := range b.progress {
			if p != nil && p.Progress > highest {
				highest = p.Progress
			}
		}

		// Tier ladder ascends by threshold
		sort.Slice(b.tiers, func(i, j int) bool { return b.tiers[i].ConditionValue < b.tiers[j].ConditionValue })

		group := domain.AchievementTierGroup{
			ConditionType:    ct,
			Tiers:            b.tiers,
			HighestProgress:  highest,
			CurrentTierIndex: -1,
		}

		if len(b.tiers) == 0 {
			groups = append(groups, group)
			continue
		}

		for i, tier := range b.tiers {
			if tier.ConditionValue <= highest {
				group.CurrentTierIndex = i
				group.TotalXP += tier.XPReward
			}
		}

		if group.CurrentTierIndex+1 < len(b.tiers) {
			next := b.tiers[group.CurrentTierIndex+1]
			group.NextTier = &next

			// Percent progress across the span from the current tier's
			// threshold (0 if below the first tier) to the next one's
			lower := 0.0
			if group.CurrentTierIndex >= 0 {
				lower = b.tiers[group.CurrentTierIndex].ConditionValue
			}
			span := next.ConditionValue - lower
			if span > 0 {
				group.ProgressPercent = (highest - lower) / span * 100
			}
		} else {
			// Max tier reached
			group.ProgressPercent = 100
		}

		groups = append(groups, group)
	}

	return groups
}

// ============================================================================
// User-Facing Listing
// ============================================================================

// ListForUser joins the static catalog with the user's progress rows and
// returns the grouped tier ladders the dashboard renders.
func (u *achievementUsecase) ListForUser(ctx context.Context, userID string) ([]domain.AchievementTierGroup, error) {
	rows, err := u.repo.GetProgressByUser(ctx, userID)
	if err != nil {
		return nil, apperror.New(http.StatusInternalServerError, "Failed to load achievement progress: "+err.Error(), err)
	}

	byID := make(map[string]*domain.AchievementProgress, len(rows))
	for i := range rows {
		byID[rows[i].AchievementID] = &rows[i]
	}

	items := make([]domain.AchievementProgressItem, 0, len(u.catalog))
	for _, def := range u.catalog {
		items = append(items, domain.AchievementProgressItem{
			Definition: def,
			Progress:   byID[def.ID],
		})
	}

	return u.GroupByTier(items), nil
}
