package fame

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/verity-social/verity/models"
)

var (
	// ErrAtFloor means the level has no lower rung. Callers downgrading a
	// ledger entry treat this as the ban transition.
	ErrAtFloor = errors.New("fame level is already the lowest rung")

	// ErrAtCeiling means the level has no higher rung.
	ErrAtCeiling = errors.New("fame level is already the highest rung")
)

// Ladder is a pure lookup over the fame level reference rows. Levels form a
// strict total order by numeric value.
type Ladder struct {
	db *gorm.DB
}

func NewLadder(db *gorm.DB) *Ladder {
	return &Ladder{db: db}
}

// NextLower returns the adjacent rung with the next smaller numeric value,
// or ErrAtFloor if level is already the lowest.
func (l *Ladder) NextLower(ctx context.Context, level *models.FameLevel) (*models.FameLevel, error) {
	var next models.FameLevel
	err := l.db.WithContext(ctx).
		Where("numeric_value < ?", level.NumericValue).
		Order("numeric_value desc").
		First(&next).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAtFloor
	}
	if err != nil {
		return nil, fmt.Errorf("looking up next lower fame level: %w", err)
	}
	return &next, nil
}

// NextHigher returns the adjacent rung with the next larger numeric value,
// or ErrAtCeiling if level is already the highest.
func (l *Ladder) NextHigher(ctx context.Context, level *models.FameLevel) (*models.FameLevel, error) {
	var next models.FameLevel
	err := l.db.WithContext(ctx).
		Where("numeric_value > ?", level.NumericValue).
		Order("numeric_value asc").
		First(&next).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAtCeiling
	}
	if err != nil {
		return nil, fmt.Errorf("looking up next higher fame level: %w", err)
	}
	return &next, nil
}

// ByName looks up a single rung by its unique name.
func (l *Ladder) ByName(ctx context.Context, name string) (*models.FameLevel, error) {
	var level models.FameLevel
	if err := l.db.WithContext(ctx).Where("name = ?", name).First(&level).Error; err != nil {
		return nil, fmt.Errorf("looking up fame level %q: %w", name, err)
	}
	return &level, nil
}

// All returns every rung ordered from lowest to highest.
func (l *Ladder) All(ctx context.Context) ([]models.FameLevel, error) {
	var levels []models.FameLevel
	if err := l.db.WithContext(ctx).Order("numeric_value asc").Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}
