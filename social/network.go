// Package social implements the core operations of the network: post
// submission with fame mutation, peer ratings, follow relations, and the
// fame views. It holds no in-memory state across calls; every operation
// re-reads store state, so correctness only depends on the storage layer's
// per-row consistency.
package social

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/verity-social/verity/classify"
	"github.com/verity-social/verity/fame"
	"github.com/verity-social/verity/models"
)

// ErrPermission is returned when the resolved identity does not correspond
// to a usable user record, or when a user attempts an operation on their own
// content that only peers may perform.
var ErrPermission = errors.New("permission denied")

type Network struct {
	db         *gorm.DB
	classifier classify.Classifier

	log *slog.Logger
}

func NewNetwork(db *gorm.DB, classifier classify.Classifier) *Network {
	return &Network{
		db:         db,
		classifier: classifier,
		log:        slog.Default().With("system", "social"),
	}
}

// resolveUser loads a user row, propagating gorm.ErrRecordNotFound so the
// caller can map it to "not found".
func resolveUser(db *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// activeUser resolves an authenticated identity to an active user record.
func activeUser(db *gorm.DB, userID uint) (*models.User, error) {
	user, err := resolveUser(db, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user does not exist", ErrPermission)
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account is deactivated", ErrPermission)
	}
	return user, nil
}

// Fame returns the user and all of their ledger entries.
func (n *Network) Fame(ctx context.Context, userID uint) (*models.User, []models.Fame, error) {
	user, err := resolveUser(n.db.WithContext(ctx), userID)
	if err != nil {
		return nil, nil, err
	}
	recs, err := fame.NewStore(n.db).ListForUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return user, recs, nil
}

// Experts returns the per-area expert leaderboards.
func (n *Network) Experts(ctx context.Context) (map[string][]fame.RankEntry, error) {
	return fame.NewRankings(n.db).Experts(ctx)
}

// Bullshitters returns the per-area bullshitter leaderboards.
func (n *Network) Bullshitters(ctx context.Context) (map[string][]fame.RankEntry, error) {
	return fame.NewRankings(n.db).Bullshitters(ctx)
}

// Timeline returns posts by users the given user follows (filtered to the
// given published state) together with the user's own posts, newest first.
func (n *Network) Timeline(ctx context.Context, userID uint, published bool) ([]models.Post, error) {
	follows := n.db.Model(&models.FollowRecord{}).
		Select("target_id").
		Where("follower_id = ?", userID)

	var posts []models.Post
	err := n.db.WithContext(ctx).
		Where("(author_id IN (?) AND published = ?) OR author_id = ?", follows, published, userID).
		Order("submitted desc").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Search returns posts in the given published state whose content or author
// email or name contains the keyword, newest first.
func (n *Network) Search(ctx context.Context, keyword string, published bool) ([]models.Post, error) {
	pattern := "%" + keyword + "%"
	var posts []models.Post
	err := n.db.WithContext(ctx).
		Joins("JOIN users ON users.id = posts.author_id").
		Where("posts.published = ?", published).
		Where(
			n.db.Where("posts.content LIKE ?", pattern).
				Or("users.email LIKE ?", pattern).
				Or("users.first_name LIKE ?", pattern).
				Or("users.last_name LIKE ?", pattern),
		).
		Order("posts.submitted desc").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

type FollowResult struct {
	Followed bool `json:"followed"`
}

// Follow makes user follow target. Reports whether anything changed.
func (n *Network) Follow(ctx context.Context, userID, targetID uint) (*FollowResult, error) {
	rec := models.FollowRecord{FollowerID: userID, TargetID: targetID}
	res := n.db.WithContext(ctx).
		Where(models.FollowRecord{FollowerID: userID, TargetID: targetID}).
		FirstOrCreate(&rec)
	if res.Error != nil {
		return nil, res.Error
	}
	return &FollowResult{Followed: res.RowsAffected > 0}, nil
}

type UnfollowResult struct {
	Unfollowed bool `json:"unfollowed"`
}

// Unfollow removes the follow relation if present.
func (n *Network) Unfollow(ctx context.Context, userID, targetID uint) (*UnfollowResult, error) {
	res := n.db.WithContext(ctx).
		Where("follower_id = ? AND target_id = ?", userID, targetID).
		Delete(&models.FollowRecord{})
	if res.Error != nil {
		return nil, res.Error
	}
	return &UnfollowResult{Unfollowed: res.RowsAffected > 0}, nil
}

// Follows lists the users the given user follows.
func (n *Network) Follows(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := n.db.WithContext(ctx).
		Joins("JOIN follow_records ON follow_records.target_id = users.id").
		Where("follow_records.follower_id = ?", userID).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Followers lists the users following the given user.
func (n *Network) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := n.db.WithContext(ctx).
		Joins("JOIN follow_records ON follow_records.follower_id = users.id").
		Where("follow_records.target_id = ?", userID).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

type RateResult struct {
	Rated bool   `json:"rated"`
	Type  string `json:"type"`
}

// RatePost records a peer rating of a post. Rating your own post is a
// permission error; re-rating with the same type updates the score in place.
func (n *Network) RatePost(ctx context.Context, userID, postID uint, ratingType string, score int) (*RateResult, error) {
	var post models.Post
	if err := n.db.WithContext(ctx).First(&post, postID).Error; err != nil {
		return nil, err
	}
	if post.AuthorID == userID {
		return nil, fmt.Errorf("%w: you cannot rate your own post", ErrPermission)
	}

	var existing models.UserRating
	err := n.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ? AND rating_type = ?", userID, postID, ratingType).
		First(&existing).Error
	switch {
	case err == nil:
		if err := n.db.WithContext(ctx).Model(&existing).Update("rating_score", score).Error; err != nil {
			return nil, err
		}
		return &RateResult{Rated: true, Type: "update"}, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		rating := models.UserRating{
			UserID:      userID,
			PostID:      postID,
			RatingType:  ratingType,
			RatingScore: score,
		}
		if err := n.db.WithContext(ctx).Create(&rating).Error; err != nil {
			return nil, err
		}
		return &RateResult{Rated: true, Type: "new"}, nil
	default:
		return nil, err
	}
}
