// Package rank scores posts for the trending leaderboard.
package rank

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Engagement weights. A repost spreads content, so it counts the
// most; saves signal stronger intent than likes.
const (
	likeWeight    = 1.0
	commentWeight = 2.0
	repostWeight  = 3.0
	saveWeight    = 1.5
)

// DefaultHalfLife is the decay half-life used when the worker config
// does not override it: a post loses half its engagement weight every
// 6 hours, which keeps the board fresh within a day.
const DefaultHalfLife = 6 * time.Hour

// PostSignal is one post's engagement snapshot fed into the ranker.
type PostSignal struct {
	Id           string
	LikeCount    int32
	CommentCount int32
	RepostCount  int32
	SaveCount    int32
	Age          time.Duration
}

// Score computes the time-decayed engagement score of a single post.
func Score(sig PostSignal, halfLife time.Duration) float64 {
	raw := likeWeight*float64(sig.LikeCount) +
		commentWeight*float64(sig.CommentCount) +
		repostWeight*float64(sig.RepostCount) +
		saveWeight*float64(sig.SaveCount)

	if raw == 0 {
		return 0
	}

	decay := math.Exp2(-sig.Age.Hours() / halfLife.Hours())
	return raw * decay
}

// Scores ranks a batch of posts and returns the trending set: decayed
// scores for every post whose score clears the batch mean. Cutting at
// the mean keeps the board selective regardless of how busy the
// window was.
func Scores(signals []PostSignal, halfLife time.Duration) map[string]float64 {
	if len(signals) == 0 {
		return map[string]float64{}
	}

	all := make([]float64, 0, len(signals))
	byId := make(map[string]float64, len(signals))
	for _, sig := range signals {
		s := Score(sig, halfLife)
		all = append(all, s)
		byId[sig.Id] = s
	}

	mean := stat.Mean(all, nil)

	trending := map[string]float64{}
	for id, s := range byId {
		if s > 0 && s >= mean {
			trending[id] = s
		}
	}
	return trending
}
