package usecase_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-tutoring-backend/internal/domain"
	"go-tutoring-backend/internal/usecase"
)

// fakeAchievementRepo keeps progress rows in memory, honoring the one-way
// unlocked_at latch the same way the SQL upsert does.
type fakeAchievementRepo struct {
	defs []domain.AchievementDefinition
	rows map[string]*domain.AchievementProgress // keyed by userID|achievementID
}

func newFakeAchievementRepo(defs []domain.AchievementDefinition) *fakeAchievementRepo {
	return &fakeAchievementRepo{defs: defs, rows: make(map[string]*domain.AchievementProgress)}
}

func (f *fakeAchievementRepo) key(userID, achievementID string) string {
	return userID + "|" + achievementID
}

func (f *fakeAchievementRepo) ListDefinitions(ctx context.Context) ([]domain.AchievementDefinition, error) {
	return f.defs, nil
}

func (f *fakeAchievementRepo) GetProgressByUser(ctx context.Context, userID string) ([]domain.AchievementProgress, error) {
	var out []domain.AchievementProgress
	for _, row := range f.rows {
		if row.UserID == userID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeAchievementRepo) GetProgressForDefinitions(ctx context.Context, userID string, ids []string) ([]domain.AchievementProgress, error) {
	var out []domain.AchievementProgress
	for _, id := range ids {
		if row, ok := f.rows[f.key(userID, id)]; ok {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeAchievementRepo) UpsertProgress(ctx context.Context, row *domain.AchievementProgress) error {
	k := f.key(row.UserID, row.AchievementID)
	if existing, ok := f.rows[k]; ok && existing.UnlockedAt != nil {
		// latch: unlocked_at survives any later write
		row.UnlockedAt = existing.UnlockedAt
	}
	cp := *row
	f.rows[k] = &cp
	return nil
}

// sessionsLadder is the Bronze/Silver/Gold/Diamond ladder used across the
// tier arithmetic tests: thresholds 10/50/100/500, rewards 100/500/2000/5000.
func sessionsLadder() []domain.AchievementDefinition {
	return []domain.AchievementDefinition{
		{ID: "ses-bronze", Title: "First Steps", ConditionType: domain.ConditionSessionsCount, ConditionValue: 10, XPReward: 100, Rarity: domain.RarityCommon},
		{ID: "ses-silver", Title: "Regular", ConditionType: domain.ConditionSessionsCount, ConditionValue: 50, XPReward: 500, Rarity: domain.RarityRare},
		{ID: "ses-gold", Title: "Dedicated", ConditionType: domain.ConditionSessionsCount, ConditionValue: 100, XPReward: 2000, Rarity: domain.RarityEpic},
		{ID: "ses-diamond", Title: "Legend", ConditionType: domain.ConditionSessionsCount, ConditionValue: 500, XPReward: 5000, Rarity: domain.RarityLegendary},
	}
}

func progressItems(defs []domain.AchievementDefinition, progress float64) []domain.AchievementProgressItem {
	items := make([]domain.AchievementProgressItem, len(defs))
	for i, def := range defs {
		items[i] = domain.AchievementProgressItem{
			Definition: def,
			Progress:   &domain.AchievementProgress{UserID: "tutor-1", AchievementID: def.ID, Progress: progress},
		}
	}
	return items
}

// ============================================================================
// GroupByTier
// ============================================================================

func TestGroupByTier_MidLadder(t *testing.T) {
	uc := usecase.NewAchievementUsecase(newFakeAchievementRepo(nil), nil)

	groups := uc.GroupByTier(progressItems(sessionsLadder(), 75))
	require.Len(t, groups, 1)

	g := groups[0]
	assert.Equal(t, domain.ConditionSessionsCount, g.ConditionType)
	assert.Equal(t, 1, g.CurrentTierIndex) // Silver (50)
	require.NotNil(t, g.NextTier)
	assert.Equal(t, "ses-gold", g.NextTier.ID)
	assert.InDelta(t, 50.0, g.ProgressPercent, 1e-9) // (75-50)/(100-50)
	assert.Equal(t, 600, g.TotalXP)                  // 100 + 500
}

func TestGroupByTier_MaxTierSaturation(t *testing.T) {
	uc := usecase.NewAchievementUsecase(newFakeAchievementRepo(nil), nil)

	groups := uc.GroupByTier(progressItems(sessionsLadder(), 600))
	require.Len(t, groups, 1)

	g := groups[0]
	assert.Equal(t, 3, g.CurrentTierIndex)
	assert.Nil(t, g.NextTier)
	assert.InDelta(t, 100.0, g.ProgressPercent, 1e-9)
	assert.Equal(t, 7600, g.TotalXP) // every tier cleared
}

func TestGroupByTier_BelowFirstTier(t *testing.T) {
	uc := usecase.NewAchievementUsecase(newFakeAchievementRepo(nil), nil)

	groups := uc.GroupByTier(progressItems(sessionsLadder(), 4))
	require.Len(t, groups, 1)

	g := groups[0]
	assert.Equal(t, -1, g.CurrentTierIndex)
	require.NotNil(t, g.NextTier)
	assert.Equal(t, "ses-bronze", g.NextTier.ID)
	assert.InDelta(t, 40.0, g.ProgressPercent, 1e-9) // 4/10
	assert.Equal(t, 0, g.TotalXP)
}

func TestGroupByTier_XPCountsOnlyClearedTiers(t *testing.T) {
	uc := usecase.NewAchievementUsecase(newFakeAchievementRepo(nil), nil)

	groups := uc.GroupByTier(progressItems(sessionsLadder(), 60))
	require.Len(t, groups, 1)
	assert.Equal(t, 600, groups[0].TotalXP) // Gold and Diamond not reached
}

func TestGroupByTier_TakesMaxProgressAcrossRows(t *testing.T) {
	uc := usecase.NewAchievementUsecase(newFakeAchievementRepo(nil), nil)

	// Rows for one condition type are meant to stay in sync, but the
	// aggregator takes the max defensively when they drift.
	defs := sessionsLadder()
	items := []domain.AchievementProgressItem{
		{Definition: defs[0], Progress: &domain.AchievementProgress{AchievementID: defs[0].ID, Progress: 10}},
		{Definition: defs[1], Progress: &domain.AchievementProgress{AchievementID: defs[1].ID, Progress: 75}},
		{Definition: defs[2], Progress: nil}, // no row yet
		{Definition: defs[3], Progress: &domain.AchievementProgress{AchievementID: defs[3].ID, Progress: 30}},
	}

	groups := uc.GroupByTier(items)
	require.Len(t, groups, 1)
	assert.InDelta(t, 75.0, groups[0].HighestProgress, 1e-9)
	assert.Equal(t, 1, groups[0].CurrentTierIndex)
}

func TestGroupByTier_GroupsSortedByConditionType(t *testing.T) {
	uc := usecase.NewAchievementUsecase(newFakeAchievementRepo(nil), nil)

	items := []domain.AchievementProgressItem{
		{Definition: domain.AchievementDefinition{ID: "s1", ConditionType: domain.ConditionStreakDays, ConditionValue: 7}},
		{Definition: domain.AchievementDefinition{ID: "h1", ConditionType: domain.ConditionHoursTaught, ConditionValue: 10}},
		{Definition: domain.AchievementDefinition{ID: "c1", ConditionType: domain.ConditionSessionsCount, ConditionValue: 10}},
	}

	groups := uc.GroupByTier(items)
	require.Len(t, groups, 3)
	assert.Equal(t, domain.ConditionHoursTaught, groups[0].ConditionType)
	assert.Equal(t, domain.ConditionSessionsCount, groups[1].ConditionType)
	assert.Equal(t, domain.ConditionStreakDays, groups[2].ConditionType)
}

func TestGroupByTier_EmptyInput(t *testing.T) {
	uc := usecase.NewAchievementUsecase(newFakeAchievementRepo(nil), nil)
	assert.Empty(t, uc.GroupByTier(nil))
}

// ============================================================================
// CheckProgress
// ============================================================================

func TestCheckProgress_UnlocksAndClampsToThreshold(t *testing.T) {
	defs := sessionsLadder()
	repo := newFakeAchievementRepo(defs)
	uc := usecase.NewAchievementUsecase(repo, defs)
	ctx := context.Background()

	unlocked, err := uc.CheckProgress(ctx, "tutor-1", domain.ConditionSessionsCount, 15)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "ses-bronze", unlocked[0].ID)

	// Stored progress is the threshold, not the raw observed 15
	row := repo.rows[repo.key("tutor-1", "ses-bronze")]
	require.NotNil(t, row)
	assert.InDelta(t, 10.0, row.Progress, 1e-9)
	assert.NotNil(t, row.UnlockedAt)

	// Locked tiers track the raw value
	silver := repo.rows[repo.key("tutor-1", "ses-silver")]
	require.NotNil(t, silver)
	assert.InDelta(t, 15.0, silver.Progress, 1e-9)
	assert.Nil(t, silver.UnlockedAt)
}

func TestCheckProgress_UnlockIsIdempotent(t *testing.T) {
	defs := sessionsLadder()
	repo := newFakeAchievementRepo(defs)
	uc := usecase.NewAchievementUsecase(repo, defs)
	ctx := context.Background()

	unlocked, err := uc.CheckProgress(ctx, "tutor-1", domain.ConditionSessionsCount, 12)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	firstUnlockAt := *repo.rows[repo.key("tutor-1", "ses-bronze")].UnlockedAt

	// Same value again: nothing new unlocks
	unlocked, err = uc.CheckProgress(ctx, "tutor-1", domain.ConditionSessionsCount, 12)
	require.NoError(t, err)
	assert.Empty(t, unlocked)

	// Higher value: unlocks the next tier only, bronze stays latched
	time.Sleep(time.Millisecond)
	unlocked, err = uc.CheckProgress(ctx, "tutor-1", domain.ConditionSessionsCount, 55)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "ses-silver", unlocked[0].ID)
	assert.Equal(t, firstUnlockAt, *repo.rows[repo.key("tutor-1", "ses-bronze")].UnlockedAt)
}

func TestCheckProgress_CrossingSeveralThresholdsUnlocksAll(t *testing.T) {
	defs := sessionsLadder()
	uc := usecase.NewAchievementUsecase(newFakeAchievementRepo(defs), defs)

	unlocked, err := uc.CheckProgress(context.Background(), "tutor-1", domain.ConditionSessionsCount, 120)
	require.NoError(t, err)
	require.Len(t, unlocked, 3)
	assert.Equal(t, "ses-bronze", unlocked[0].ID)
	assert.Equal(t, "ses-silver", unlocked[1].ID)
	assert.Equal(t, "ses-gold", unlocked[2].ID)
}

func TestCheckProgress_RejectsInvalidValues(t *testing.T) {
	defs := sessionsLadder()
	uc := usecase.NewAchievementUsecase(newFakeAchievementRepo(defs), defs)
	ctx := context.Background()

	for _, value := range []float64{-1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := uc.CheckProgress(ctx, "tutor-1", domain.ConditionSessionsCount, value)
		assert.Error(t, err, "value %v", value)
	}
}

func TestCheckProgress_UnknownConditionTypeIsNoOp(t *testing.T) {
	defs := sessionsLadder()
	uc := usecase.NewAchievementUsecase(newFakeAchievementRepo(defs), defs)

	unlocked, err := uc.CheckProgress(context.Background(), "tutor-1", "mystery_metric", 9999)
	require.NoError(t, err)
	assert.Empty(t, unlocked)
}

// ============================================================================
// ListForUser
// ============================================================================

func TestListForUser_JoinsCatalogWithProgress(t *testing.T) {
	defs := append(sessionsLadder(),
		domain.AchievementDefinition{ID: "hrs-bronze", ConditionType: domain.ConditionHoursTaught, ConditionValue: 5, XPReward: 50},
	)
	repo := newFakeAchievementRepo(defs)
	uc := usecase.NewAchievementUsecase(repo, defs)
	ctx := context.Background()

	_, err := uc.CheckProgress(ctx, "tutor-1", domain.ConditionSessionsCount, 75)
	require.NoError(t, err)

	groups, err := uc.ListForUser(ctx, "tutor-1")
	require.NoError(t, err)
	require.Len(t, groups, 2)

	// hours_taught sorts first; no progress rows yet
	assert.Equal(t, domain.ConditionHoursTaught, groups[0].ConditionType)
	assert.Equal(t, -1, groups[0].CurrentTierIndex)
	assert.InDelta(t, 0.0, groups[0].ProgressPercent, 1e-9)

	sessions := groups[1]
	assert.Equal(t, domain.ConditionSessionsCount, sessions.ConditionType)
	assert.Equal(t, 1, sessions.CurrentTierIndex)
	assert.Equal(t, 600, sessions.TotalXP)
}
