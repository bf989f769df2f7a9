package fame

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/verity-social/verity/models"
)

// RankEntry is one leaderboard row: a user and the numeric value of their
// fame level in the area the entry was ranked under.
type RankEntry struct {
	User             models.User `json:"user"`
	FameLevelNumeric int64       `json:"fame_level_numeric"`
}

// Rankings builds per-area leaderboards from the ledger. Pure reads, no
// caching: every call reflects ledger state at call time.
type Rankings struct {
	db *gorm.DB
}

func NewRankings(db *gorm.DB) *Rankings {
	return &Rankings{db: db}
}

// Experts returns, for each expertise area with at least one positive ledger
// entry, the users holding positive fame there. Highest fame first; ties
// broken by most recently joined user first. Areas with no expert are
// omitted entirely.
func (r *Rankings) Experts(ctx context.Context) (map[string][]RankEntry, error) {
	return r.rank(ctx, "fame_levels.numeric_value > 0", "fame_levels.numeric_value desc, users.date_joined desc")
}

// Bullshitters is the negative counterpart of Experts: lowest fame first,
// same tiebreak.
func (r *Rankings) Bullshitters(ctx context.Context) (map[string][]RankEntry, error) {
	return r.rank(ctx, "fame_levels.numeric_value < 0", "fame_levels.numeric_value asc, users.date_joined desc")
}

func (r *Rankings) rank(ctx context.Context, cond, order string) (map[string][]RankEntry, error) {
	var areas []models.ExpertiseArea
	if err := r.db.WithContext(ctx).Find(&areas).Error; err != nil {
		return nil, fmt.Errorf("listing expertise areas: %w", err)
	}

	out := make(map[string][]RankEntry)
	for _, area := range areas {
		var recs []models.Fame
		err := r.db.WithContext(ctx).
			Joins("JOIN fame_levels ON fame_levels.id = fames.fame_level_id").
			Joins("JOIN users ON users.id = fames.user_id").
			Where("fames.expertise_area_id = ?", area.ID).
			Where(cond).
			Order(order).
			Preload("User").
			Preload("FameLevel").
			Find(&recs).Error
		if err != nil {
			return nil, fmt.Errorf("ranking area %q: %w", area.Label, err)
		}
		if len(recs) == 0 {
			continue
		}
		entries := make([]RankEntry, 0, len(recs))
		for _, rec := range recs {
			entries = append(entries, RankEntry{
				User:             rec.User,
				FameLevelNumeric: rec.FameLevel.NumericValue,
			})
		}
		out[area.Label] = entries
	}
	return out, nil
}
