package fame

import (
	"gorm.io/gorm"

	"github.com/verity-social/verity/models"
)

// Names of the two rungs the mutation engine creates ledger entries at.
// LevelConfuser is the soft-landing rung for a first confirmed falsehood; it
// sits one above the bottom of the default ladder. LevelApprentice is the
// lowest positive rung, used when positive fame is first awarded.
const (
	LevelConfuser   = "Confuser"
	LevelApprentice = "Apprentice"
)

// DefaultLevels is the reference ladder, lowest rung first.
func DefaultLevels() []models.FameLevel {
	return []models.FameLevel{
		{Name: "Dangerous Bullshitter", NumericValue: -100},
		{Name: LevelConfuser, NumericValue: -10},
		{Name: LevelApprentice, NumericValue: 10},
		{Name: "Knowledgeable", NumericValue: 100},
		{Name: "Expert", NumericValue: 1000},
		{Name: "Super Pro", NumericValue: 10000},
	}
}

// SeedLevels inserts any missing ladder rungs. Existing rungs are left
// untouched, so re-running is safe.
func SeedLevels(db *gorm.DB, levels []models.FameLevel) error {
	for i := range levels {
		level := levels[i]
		err := db.Where(models.FameLevel{Name: level.Name}).
			FirstOrCreate(&level).Error
		if err != nil {
			return err
		}
	}
	return nil
}
