package domain

import (
	"context"
	"time"
)

// ============================================================================
// Achievement Definitions
// ============================================================================

// ConditionType is the metric category an achievement tracks. The known
// constants cover the built-in ladders; unrecognized values coming from the
// database degrade gracefully in the tier aggregator instead of failing.
type ConditionType string

const (
	ConditionSessionsCount ConditionType = "sessions_count"
	ConditionHoursTaught   ConditionType = "hours_taught"
	ConditionStudentRating ConditionType = "student_rating"
	ConditionStreakDays    ConditionType = "streak_days"
)

// Rarity is display-only metadata on a definition.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// ValidRarities returns all recognized rarity values.
func ValidRarities() []Rarity {
	return []Rarity{RarityCommon, RarityRare, RarityEpic, RarityLegendary}
}

// IsValid checks if the rarity is a recognized value.
func (r Rarity) IsValid() bool {
	for _, valid := range ValidRarities() {
		if r == valid {
			return true
		}
	}
	return false
}

// AchievementDefinition is one row of the static achievement catalog.
// Definitions sharing a ConditionType form a tier ladder ordered by
// ConditionValue (e.g. Bronze 10 < Silver 50 < Gold 100 < Diamond 500).
type AchievementDefinition struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Icon           string        `json:"icon"`
	ConditionType  ConditionType `json:"condition_type"`
	ConditionValue float64       `json:"condition_value"`
	XPReward       int           `json:"xp_reward"`
	Rarity         Rarity        `json:"rarity"`
	CreatedAt      time.Time     `json:"created_at"`
}

// ============================================================================
// Per-User Progress
// ============================================================================

// AchievementProgress is the per-user, per-definition progress row.
// UnlockedAt is a one-way latch: once set it is never cleared, even if the
// underlying counter were to regress.
type AchievementProgress struct {
	UserID        string     `json:"user_id"`
	AchievementID string     `json:"achievement_id"`
	Progress      float64    `json:"progress"`
	UnlockedAt    *time.Time `json:"unlocked_at,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Unlocked reports whether the latch has been set.
func (p *AchievementProgress) Unlocked() bool {
	return p != nil && p.UnlockedAt != nil
}

// AchievementProgressItem pairs a definition with the user's progress row
// (nil when the user has no row yet). This is the tier aggregator's input.
type AchievementProgressItem struct {
	Definition AchievementDefinition `json:"definition"`
	Progress   *AchievementProgress  `json:"progress,omitempty"`
}

// ============================================================================
// Tier Groups (computed, never persisted)
// ============================================================================

// AchievementTierGroup is one tier ladder with the user's position on it.
// CurrentTierIndex is -1 when no tier threshold has been met yet; NextTier
// is nil at the top of the ladder.
type AchievementTierGroup struct {
	ConditionType    ConditionType           `json:"condition_type"`
	Tiers            []AchievementDefinition `json:"tiers"`
	HighestProgress  float64                 `json:"highest_progress"`
	CurrentTierIndex int                     `json:"current_tier_index"`
	NextTier         *AchievementDefinition  `json:"next_tier,omitempty"`
	ProgressPercent  float64                 `json:"progress_percent"`
	TotalXP          int                     `json:"total_xp"`
}

// ReportProgressRequest is the payload for reporting a raw counter value.
type ReportProgressRequest struct {
	ConditionType string  `json:"condition_type" validate:"required"`
	Value         float64 `json:"value"`
}

// ============================================================================
// Repository Interface
// ============================================================================

// AchievementRepository reads the definition catalog and reads/writes
// per-user progress rows. UpsertProgress must be a single atomic upsert
// keyed on (user_id, achievement_id), and must preserve an existing
// unlocked_at (the latch is enforced in SQL as well as in the usecase).
type AchievementRepository interface {
	ListDefinitions(ctx context.Context) ([]AchievementDefinition, error)
	GetProgressByUser(ctx context.Context, userID string) ([]AchievementProgress, error)
	GetProgressForDefinitions(ctx context.Context, userID string, achievementIDs []string) ([]AchievementProgress, error)
	UpsertProgress(ctx context.Context, row *AchievementProgress) error
}

// ============================================================================
// Usecase Interface
// ============================================================================

type AchievementUsecase interface {
	// CheckProgress records the latest observed value for every definition
	// of the given condition type and returns exactly the definitions that
	// transitioned from locked to unlocked in this call. Safe to call
	// repeatedly with non-decreasing values: a definition unlocks once.
	CheckProgress(ctx context.Context, userID string, conditionType ConditionType, value float64) ([]AchievementDefinition, error)

	// GroupByTier converts definition/progress pairs into tier ladders.
	// Pure transform: it never fails, and unknown condition types produce a
	// group with an empty ladder.
	GroupByTier(items []AchievementProgressItem) []AchievementTierGroup

	// ListForUser loads the catalog with the user's progress attached,
	// already grouped into tier ladders for display.
	ListForUser(ctx context.Context, userID string) ([]AchievementTierGroup, error)
}
