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

func testUser(t *testing.T, db *gorm.DB, email string, joined time.Time) *models.User {
	t.Helper()
	user := models.User{
		Email:      email,
		IsActive:   true,
		DateJoined: joined,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func testArea(t *testing.T, db *gorm.DB, label string) *models.ExpertiseArea {
	t.Helper()
	area := models.ExpertiseArea{Label: label}
	require.NoError(t, db.Create(&area).Error)
	return &area
}

func TestStoreFindAndCreate(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	db := testDB(t)
	store := NewStore(db)
	ladder := NewLadder(db)

	user := testUser(t, db, "alice@example.com", time.Now())
	area := testArea(t, db, "History")

	_, err := store.Find(ctx, user.ID, area.ID)
	assert.ErrorIs(err, gorm.ErrRecordNotFound)

	confuser, err := ladder.ByName(ctx, LevelConfuser)
	require.NoError(t, err)

	rec, err := store.CreateAt(ctx, user.ID, area.ID, confuser)
	require.NoError(t, err)
	assert.Equal(confuser.ID, rec.FameLevelID)

	found, err := store.Find(ctx, user.ID, area.ID)
	require.NoError(t, err)
	assert.Equal(rec.ID, found.ID)
	assert.Equal(LevelConfuser, found.FameLevel.Name)
}

func TestStoreUniquePerUserAndArea(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	db := testDB(t)
	store := NewStore(db)
	ladder := NewLadder(db)

	user := testUser(t, db, "alice@example.com", time.Now())
	area := testArea(t, db, "History")

	confuser, err := ladder.ByName(ctx, LevelConfuser)
	require.NoError(t, err)

	_, err = store.CreateAt(ctx, user.ID, area.ID, confuser)
	require.NoError(t, err)

	_, err = store.CreateAt(ctx, user.ID, area.ID, confuser)
	assert.Error(err)

	var n int64
	require.NoError(t, db.Model(&models.Fame{}).Where("user_id = ?", user.ID).Count(&n).Error)
	assert.Equal(int64(1), n)
}

func TestStoreMove(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	db := testDB(t)
	store := NewStore(db)
	ladder := NewLadder(db)

	user := testUser(t, db, "alice@example.com", time.Now())
	area := testArea(t, db, "History")

	confuser, err := ladder.ByName(ctx, LevelConfuser)
	require.NoError(t, err)
	rec, err := store.CreateAt(ctx, user.ID, area.ID, confuser)
	require.NoError(t, err)

	lower, err := ladder.NextLower(ctx, &rec.FameLevel)
	require.NoError(t, err)
	require.NoError(t, store.Move(ctx, rec, lower))

	found, err := store.Find(ctx, user.ID, area.ID)
	require.NoError(t, err)
	assert.Equal(lower.Name, found.FameLevel.Name)
}

func TestStoreNegativeStanding(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	db := testDB(t)
	store := NewStore(db)
	ladder := NewLadder(db)

	user := testUser(t, db, "alice@example.com", time.Now())
	history := testArea(t, db, "History")
	physics := testArea(t, db, "Physics")

	neg, err := store.HasNegativeStanding(ctx, user.ID)
	require.NoError(t, err)
	assert.False(neg)

	// positive standing alone does not count
	apprentice, err := ladder.ByName(ctx, LevelApprentice)
	require.NoError(t, err)
	_, err = store.CreateAt(ctx, user.ID, physics.ID, apprentice)
	require.NoError(t, err)

	neg, err = store.HasNegativeStanding(ctx, user.ID)
	require.NoError(t, err)
	assert.False(neg)

	confuser, err := ladder.ByName(ctx, LevelConfuser)
	require.NoError(t, err)
	_, err = store.CreateAt(ctx, user.ID, history.ID, confuser)
	require.NoError(t, err)

	neg, err = store.HasNegativeStanding(ctx, user.ID)
	require.NoError(t, err)
	assert.True(neg)

	recs, err := store.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(recs, 2)
}
