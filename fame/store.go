package fame

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/verity-social/verity/models"
)

// Store is the gorm-backed fame ledger. It holds no state of its own; every
// method is a fresh read or write against the handle it was built with, so a
// caller running inside a transaction passes the transaction handle in.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Find returns the ledger entry for (user, area), with its level preloaded.
// Returns gorm.ErrRecordNotFound if the user has no standing in the area.
func (s *Store) Find(ctx context.Context, userID, areaID uint) (*models.Fame, error) {
	var rec models.Fame
	err := s.db.WithContext(ctx).
		Preload("FameLevel").
		Where("user_id = ? AND expertise_area_id = ?", userID, areaID).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateAt inserts a new ledger entry for (user, area) at the given rung.
// The (user, area) unique index rejects a second entry for the same pair.
func (s *Store) CreateAt(ctx context.Context, userID, areaID uint, level *models.FameLevel) (*models.Fame, error) {
	rec := models.Fame{
		UserID:          userID,
		ExpertiseAreaID: areaID,
		FameLevelID:     level.ID,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, fmt.Errorf("creating fame record: %w", err)
	}
	rec.FameLevel = *level
	return &rec, nil
}

// Move updates an existing ledger entry to the given rung.
func (s *Store) Move(ctx context.Context, rec *models.Fame, to *models.FameLevel) error {
	err := s.db.WithContext(ctx).Model(rec).Update("fame_level_id", to.ID).Error
	if err != nil {
		return fmt.Errorf("moving fame record: %w", err)
	}
	rec.FameLevelID = to.ID
	rec.FameLevel = *to
	return nil
}

// HasNegativeStanding reports whether the user holds a ledger entry with a
// negative level in any expertise area.
func (s *Store) HasNegativeStanding(ctx context.Context, userID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Fame{}).
		Joins("JOIN fame_levels ON fame_levels.id = fames.fame_level_id").
		Where("fames.user_id = ? AND fame_levels.numeric_value < 0", userID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("checking negative standing: %w", err)
	}
	return n > 0, nil
}

// ListForUser returns all of the user's ledger entries with their areas and
// levels preloaded.
func (s *Store) ListForUser(ctx context.Context, userID uint) ([]models.Fame, error) {
	var recs []models.Fame
	err := s.db.WithContext(ctx).
		Preload("ExpertiseArea").
		Preload("FameLevel").
		Where("user_id = ?", userID).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}
