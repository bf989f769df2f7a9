package classify

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonTokenChars = regexp.MustCompile(`[^\pL\pN\s]+`)

// TokenizeText splits free-form text into lower-cased, unicode-normalized
// tokens for matching against keyword tables.
func TokenizeText(text string) []string {
	// the transform chain is stateful, so build it per call
	normFunc := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	bare := strings.ToLower(nonTokenChars.ReplaceAllString(text, " "))
	folded, _, err := transform.String(normFunc, bare)
	if err != nil {
		slog.Warn("unicode normalization error", "err", err)
		folded = bare
	}
	return strings.Fields(folded)
}

// KeywordRule assigns Rating for Area whenever any of Tokens appears in the
// content.
type KeywordRule struct {
	Area   string
	Tokens []string
	Rating int64
}

// KeywordClassifier is a deterministic table-driven classifier for local and
// test use. When several rules hit the same area, the lowest (most damning)
// rating wins.
type KeywordClassifier struct {
	Rules []KeywordRule
}

func NewKeywordClassifier(rules []KeywordRule) *KeywordClassifier {
	return &KeywordClassifier{Rules: rules}
}

func (c *KeywordClassifier) Classify(ctx context.Context, content string) ([]AreaRating, error) {
	tokens := TokenizeText(content)
	present := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		present[tok] = true
	}

	byArea := make(map[string]int64)
	var order []string
	for _, rule := range c.Rules {
		hit := false
		for _, tok := range rule.Tokens {
			if present[tok] {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}
		prev, seen := byArea[rule.Area]
		if !seen {
			order = append(order, rule.Area)
			byArea[rule.Area] = rule.Rating
		} else if rule.Rating < prev {
			byArea[rule.Area] = rule.Rating
		}
	}

	out := make([]AreaRating, 0, len(order))
	for _, area := range order {
		out = append(out, AreaRating{Area: area, Rating: byArea[area]})
	}
	return out, nil
}
