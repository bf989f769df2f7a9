package classify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeText(t *testing.T) {
	assert := assert.New(t)

	assert.Equal([]string{"hello", "world"}, TokenizeText("Hello, World!"))
	assert.Equal([]string{"cafe", "naive"}, TokenizeText("Café naïve"))
	assert.Empty(TokenizeText("!!! ..."))
}

func TestKeywordClassifier(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	c := NewKeywordClassifier([]KeywordRule{
		{Area: "History", Tokens: []string{"rome"}, Rating: 5},
		{Area: "History", Tokens: []string{"atlantis"}, Rating: -5},
		{Area: "Physics", Tokens: []string{"gravity"}, Rating: 3},
	})

	ratings, err := c.Classify(ctx, "Rome was not built in a day")
	assert.NoError(err)
	assert.Equal([]AreaRating{{Area: "History", Rating: 5}}, ratings)
	assert.False(AnyNegative(ratings))

	ratings, err = c.Classify(ctx, "Gravity pulled Atlantis under, as Rome knew")
	assert.NoError(err)
	assert.Len(ratings, 2)
	assert.True(AnyNegative(ratings))
	// several hits for the same area keep the most damning rating
	for _, r := range ratings {
		if r.Area == "History" {
			assert.Equal(int64(-5), r.Rating)
		}
	}

	ratings, err = c.Classify(ctx, "nothing relevant here")
	assert.NoError(err)
	assert.Empty(ratings)
	assert.False(AnyNegative(ratings))
}
