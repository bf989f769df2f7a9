package fame

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/verity-social/verity/models"
)

func levelByName(t *testing.T, db *gorm.DB, name string) *models.FameLevel {
	t.Helper()
	level, err := NewLadder(db).ByName(context.Background(), name)
	require.NoError(t, err)
	return level
}

func TestExpertsOrderingAndTiebreak(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	db := testDB(t)
	store := NewStore(db)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	veteran := testUser(t, db, "veteran@example.com", base)
	rookie := testUser(t, db, "rookie@example.com", base.AddDate(0, 6, 0))
	pro := testUser(t, db, "pro@example.com", base.AddDate(0, 1, 0))

	history := testArea(t, db, "History")

	apprentice := levelByName(t, db, LevelApprentice)
	expert := levelByName(t, db, "Expert")

	// veteran and rookie tie at Apprentice, pro outranks both
	_, err := store.CreateAt(ctx, veteran.ID, history.ID, apprentice)
	require.NoError(t, err)
	_, err = store.CreateAt(ctx, rookie.ID, history.ID, apprentice)
	require.NoError(t, err)
	_, err = store.CreateAt(ctx, pro.ID, history.ID, expert)
	require.NoError(t, err)

	out, err := NewRankings(db).Experts(ctx)
	require.NoError(t, err)
	require.Contains(t, out, "History")
	entries := out["History"]
	require.Len(t, entries, 3)

	assert.Equal(pro.ID, entries[0].User.ID)
	assert.Equal(expert.NumericValue, entries[0].FameLevelNumeric)
	// tie broken by most recently joined first
	assert.Equal(rookie.ID, entries[1].User.ID)
	assert.Equal(veteran.ID, entries[2].User.ID)
}

func TestBullshittersOrdering(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	db := testDB(t)
	store := NewStore(db)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	mild := testUser(t, db, "mild@example.com", base)
	worst := testUser(t, db, "worst@example.com", base.AddDate(0, 1, 0))

	physics := testArea(t, db, "Physics")

	confuser := levelByName(t, db, LevelConfuser)
	floor := levelByName(t, db, "Dangerous Bullshitter")

	_, err := store.CreateAt(ctx, mild.ID, physics.ID, confuser)
	require.NoError(t, err)
	_, err = store.CreateAt(ctx, worst.ID, physics.ID, floor)
	require.NoError(t, err)

	out, err := NewRankings(db).Bullshitters(ctx)
	require.NoError(t, err)
	require.Contains(t, out, "Physics")
	entries := out["Physics"]
	require.Len(t, entries, 2)

	// most negative first
	assert.Equal(worst.ID, entries[0].User.ID)
	assert.Equal(floor.NumericValue, entries[0].FameLevelNumeric)
	assert.Equal(mild.ID, entries[1].User.ID)
}

func TestRankingsOmitEmptyAreas(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	db := testDB(t)
	store := NewStore(db)

	user := testUser(t, db, "alice@example.com", time.Now())
	history := testArea(t, db, "History")
	// exists as a reference entity but has no fame records at all
	testArea(t, db, "Gardening")
	// has only a negative record, so it must not show up under experts
	physics := testArea(t, db, "Physics")

	_, err := store.CreateAt(ctx, user.ID, history.ID, levelByName(t, db, LevelApprentice))
	require.NoError(t, err)
	_, err = store.CreateAt(ctx, user.ID, physics.ID, levelByName(t, db, LevelConfuser))
	require.NoError(t, err)

	experts, err := NewRankings(db).Experts(ctx)
	require.NoError(t, err)
	assert.Contains(experts, "History")
	assert.NotContains(experts, "Gardening")
	assert.NotContains(experts, "Physics")

	bullshitters, err := NewRankings(db).Bullshitters(ctx)
	require.NoError(t, err)
	assert.Contains(bullshitters, "Physics")
	assert.NotContains(bullshitters, "Gardening")
	assert.NotContains(bullshitters, "History")
}
