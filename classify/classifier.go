// Package classify is the boundary to the automated truth classifier. The
// classifier labels a post's content with one or more expertise areas and a
// signed truth rating per area; it is invoked exactly once per post, at
// submission time.
package classify

import "context"

// AreaRating is one (expertise area, truth rating) pair assigned to a piece
// of content. A negative rating means the content was judged false for that
// area.
type AreaRating struct {
	Area   string `json:"expertise_area"`
	Rating int64  `json:"truth_rating"`
}

type Classifier interface {
	Classify(ctx context.Context, content string) ([]AreaRating, error)
}

// AnyNegative reports whether any area judged the content false. It drives
// the initial publish decision for a new post.
func AnyNegative(ratings []AreaRating) bool {
	for _, r := range ratings {
		if r.Rating < 0 {
			return true
		}
	}
	return false
}
