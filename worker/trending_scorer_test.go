package worker

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/plaza-social/plaza/model"
	"github.com/plaza-social/plaza/utils"
)

// fakeBoard captures the leaderboard swap instead of hitting redis.
type fakeBoard struct {
	scores map[string]float64
}

func (b *fakeBoard) ReplaceTrending(scores map[string]float64) error {
	b.scores = scores
	return nil
}

func TestRecomputeTrending(t *testing.T) {
	db, _ := utils.CreateTempDB(t)

	hot := model.Post{
		Id:        uuid.New().String(),
		CreatedAt: time.Now().Add(-time.Hour),
		AuthorID:  "author",
		Content:   "hot",
		LikeCount: 50, CommentCount: 20, RepostCount: 10,
	}
	cold := model.Post{
		Id:        uuid.New().String(),
		CreatedAt: time.Now().Add(-time.Hour),
		AuthorID:  "author",
		Content:   "cold",
	}
	outside := model.Post{
		Id:        uuid.New().String(),
		CreatedAt: time.Now().Add(-100 * time.Hour),
		AuthorID:  "author",
		Content:   "ancient",
		LikeCount: 500,
	}
	require.NoError(t, db.Create(&hot).Error)
	require.NoError(t, db.Create(&cold).Error)
	require.NoError(t, db.Create(&outside).Error)

	board := &fakeBoard{}
	scorer := NewTrendingScorer(TrendingScorerConfig{
		Name:     "scorer",
		Interval: time.Minute,
		Window:   48 * time.Hour,
	}, db, board)

	require.NoError(t, scorer.RecomputeTrending())

	// The hot post makes the board, the zero-engagement one does not,
	// and the post outside the window was never scored.
	require.Contains(t, board.scores, hot.Id)
	require.NotContains(t, board.scores, cold.Id)
	require.NotContains(t, board.scores, outside.Id)
}

func TestRecomputeTrendingEmptyWindow(t *testing.T) {
	db, _ := utils.CreateTempDB(t)

	board := &fakeBoard{}
	scorer := NewTrendingScorer(TrendingScorerConfig{
		Name:     "scorer",
		Interval: time.Minute,
		Window:   time.Hour,
	}, db, board)

	require.NoError(t, scorer.RecomputeTrending())
	require.Empty(t, board.scores)
}
