package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email      string `gorm:"uniqueindex"`
	FirstName  string
	LastName   string
	Password   string `json:"-"`
	IsActive   bool
	DateJoined time.Time `gorm:"index"`
}

// ExpertiseArea is a topical category posts and reputations are scoped to.
type ExpertiseArea struct {
	gorm.Model
	Label string `gorm:"uniqueindex"`
}

// FameLevel is one rung of the reputation ladder. The sign of NumericValue
// determines expert vs bullshitter standing, the magnitude the rank within
// it. Reference data, seeded once and never mutated at runtime.
type FameLevel struct {
	gorm.Model
	Name         string `gorm:"uniqueindex"`
	NumericValue int64  `gorm:"uniqueindex"`
}

// Fame is a ledger entry: the current fame level one user holds in one
// expertise area. At most one row exists per (user, area) pair.
type Fame struct {
	gorm.Model
	UserID          uint `gorm:"index:idx_fame_user_area,unique"`
	User            User
	ExpertiseAreaID uint `gorm:"index:idx_fame_user_area,unique"`
	ExpertiseArea   ExpertiseArea
	FameLevelID     uint
	FameLevel       FameLevel
}

type Post struct {
	gorm.Model
	AuthorID  uint `gorm:"index"`
	Content   string
	Published bool
	Submitted time.Time `gorm:"index"`
	CitesID   *uint
	RepliesTo *uint
}

// PostExpertiseRating is one (area, truth rating) pair the classifier
// assigned to a post at creation time. TruthRating is signed; negative means
// the content was judged false for that area.
type PostExpertiseRating struct {
	gorm.Model
	PostID          uint `gorm:"index:idx_rating_post_area,unique"`
	ExpertiseAreaID uint `gorm:"index:idx_rating_post_area,unique"`
	ExpertiseArea   ExpertiseArea
	TruthRating     int64
}

type FollowRecord struct {
	gorm.Model
	FollowerID uint `gorm:"index:idx_follow_pair,unique"`
	TargetID   uint `gorm:"index:idx_follow_pair,unique"`
}

// UserRating is a peer rating of a post (likes, informativeness, etc).
// Re-rating with the same type updates the row in place.
type UserRating struct {
	gorm.Model
	UserID      uint   `gorm:"index:idx_userrating_key,unique"`
	PostID      uint   `gorm:"index:idx_userrating_key,unique"`
	RatingType  string `gorm:"index:idx_userrating_key,unique"`
	RatingScore int
}

func MigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&ExpertiseArea{},
		&FameLevel{},
		&Fame{},
		&Post{},
		&PostExpertiseRating{},
		&FollowRecord{},
		&UserRating{},
	)
}
