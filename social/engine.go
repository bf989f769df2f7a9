package social

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/verity-social/verity/classify"
	"github.com/verity-social/verity/fame"
	"github.com/verity-social/verity/models"
)

type PublishResult struct {
	ID        uint `json:"id"`
	Published bool `json:"published"`
}

// SubmitReceipt is the outcome of a post submission: the publish decision,
// the raw area ratings from the classifier, and whether the author was
// banned during processing and must be redirected to a logged-out state.
type SubmitReceipt struct {
	Post      PublishResult         `json:"post"`
	Ratings   []classify.AreaRating `json:"ratings"`
	LoggedOut bool                  `json:"logged_out"`
}

// SubmitPost creates a post, classifies it exactly once, and runs the fame
// mutation rules:
//
//  1. The post starts unpublished if any area judged it false.
//  2. An author with negative standing in any area gets the post forced
//     unpublished regardless of this post's ratings (blanket suspicion until
//     their standing recovers).
//  3. Each negatively rated area downgrades the author's ledger entry for
//     that area by one rung, creating it at the Confuser rung on a first
//     offense. A downgrade below the lowest rung is the ban transition: the
//     account is deactivated and every post by the author is retracted. The
//     loop keeps processing remaining areas; ban writes are absolute, so
//     repeating them is safe.
//  4. Each positively rated area upgrades the entry by one rung, creating it
//     at the Apprentice rung; the top of the ladder is a no-op.
//
// The whole mutation runs in one transaction, which serializes concurrent
// read-modify-write on the same ledger row.
func (n *Network) SubmitPost(ctx context.Context, authorID uint, content string, cites, repliesTo *uint) (*SubmitReceipt, error) {
	start := time.Now()

	var receipt *SubmitReceipt
	err := n.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		author, err := activeUser(tx, authorID)
		if err != nil {
			return err
		}

		post := models.Post{
			AuthorID:  author.ID,
			Content:   content,
			Submitted: time.Now(),
			CitesID:   cites,
			RepliesTo: repliesTo,
		}
		if err := tx.Create(&post).Error; err != nil {
			return fmt.Errorf("creating post: %w", err)
		}

		ratings, err := n.classifier.Classify(ctx, content)
		if err != nil {
			return fmt.Errorf("classifying post: %w", err)
		}

		// persist the per-area ratings; areas are created on first use
		areaIDs := make(map[string]uint, len(ratings))
		for _, r := range ratings {
			area := models.ExpertiseArea{Label: r.Area}
			if err := tx.Where(models.ExpertiseArea{Label: r.Area}).FirstOrCreate(&area).Error; err != nil {
				return fmt.Errorf("resolving expertise area %q: %w", r.Area, err)
			}
			areaIDs[r.Area] = area.ID
			rating := models.PostExpertiseRating{
				PostID:          post.ID,
				ExpertiseAreaID: area.ID,
				TruthRating:     r.Rating,
			}
			if err := tx.Create(&rating).Error; err != nil {
				return fmt.Errorf("persisting area rating: %w", err)
			}
		}

		published := !classify.AnyNegative(ratings)

		store := fame.NewStore(tx)
		ladder := fame.NewLadder(tx)

		// standing override, evaluated against the ledger as it was before
		// this post's downgrades
		negative, err := store.HasNegativeStanding(ctx, author.ID)
		if err != nil {
			return err
		}
		if negative {
			published = false
		}

		loggedOut := false
		for _, r := range ratings {
			if r.Rating >= 0 {
				continue
			}
			areaID := areaIDs[r.Area]
			rec, err := store.Find(ctx, author.ID, areaID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// first offense in this area: soft landing, one rung above
				// the floor
				confuser, err := ladder.ByName(ctx, fame.LevelConfuser)
				if err != nil {
					return err
				}
				if _, err := store.CreateAt(ctx, author.ID, areaID, confuser); err != nil {
					return err
				}
				fameDowngradeCount.Inc()
				continue
			}
			if err != nil {
				return err
			}

			lower, err := ladder.NextLower(ctx, &rec.FameLevel)
			if errors.Is(err, fame.ErrAtFloor) {
				// ban transition: deactivate the account and retract every
				// post by this author, not just the current one
				if err := tx.Model(&models.User{}).Where("id = ?", author.ID).Update("is_active", false).Error; err != nil {
					return fmt.Errorf("deactivating banned user: %w", err)
				}
				if err := tx.Model(&models.Post{}).Where("author_id = ?", author.ID).Update("published", false).Error; err != nil {
					return fmt.Errorf("retracting posts of banned user: %w", err)
				}
				loggedOut = true
				banCount.Inc()
				n.log.Info("user banned", "user", author.ID, "area", r.Area)
				continue
			}
			if err != nil {
				return err
			}
			if err := store.Move(ctx, rec, lower); err != nil {
				return err
			}
			fameDowngradeCount.Inc()
		}

		for _, r := range ratings {
			if r.Rating <= 0 {
				continue
			}
			areaID := areaIDs[r.Area]
			rec, err := store.Find(ctx, author.ID, areaID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apprentice, err := ladder.ByName(ctx, fame.LevelApprentice)
				if err != nil {
					return err
				}
				if _, err := store.CreateAt(ctx, author.ID, areaID, apprentice); err != nil {
					return err
				}
				fameUpgradeCount.Inc()
				continue
			}
			if err != nil {
				return err
			}

			higher, err := ladder.NextHigher(ctx, &rec.FameLevel)
			if errors.Is(err, fame.ErrAtCeiling) {
				// already at the top; nothing to award
				continue
			}
			if err != nil {
				return err
			}
			if err := store.Move(ctx, rec, higher); err != nil {
				return err
			}
			fameUpgradeCount.Inc()
		}

		if loggedOut {
			published = false
		}
		if err := tx.Model(&post).Update("published", published).Error; err != nil {
			return fmt.Errorf("persisting publish state: %w", err)
		}

		receipt = &SubmitReceipt{
			Post:      PublishResult{ID: post.ID, Published: published},
			Ratings:   ratings,
			LoggedOut: loggedOut,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	postProcessDuration.Observe(time.Since(start).Seconds())
	postProcessCount.WithLabelValues(strconv.FormatBool(receipt.Post.Published)).Inc()
	return receipt, nil
}
