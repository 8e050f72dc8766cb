package worker

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/plaza-social/plaza/model"
	"github.com/plaza-social/plaza/rank"
	Logger "github.com/plaza-social/plaza/utils/log"
)

type TrendingScorerConfig struct {
	// Name of this module instance.
	Name string
	// Recompute every other interval.
	Interval time.Duration
	// Only posts created within this window are scored.
	Window time.Duration
	// Engagement decay half-life, 0 falls back to rank.DefaultHalfLife.
	HalfLife time.Duration
}

// TrendingBoard is where the computed leaderboard lands. Satisfied by
// utils.RedisStore.
type TrendingBoard interface {
	ReplaceTrending(scores map[string]float64) error
}

// TrendingScorer periodically recomputes the trending leaderboard from
// recent post engagement and swaps it into redis.
type TrendingScorer struct {
	Config TrendingScorerConfig

	DB    *gorm.DB
	Board TrendingBoard
}

func NewTrendingScorer(config TrendingScorerConfig, db *gorm.DB, board TrendingBoard) *TrendingScorer {
	if config.HalfLife == 0 {
		config.HalfLife = rank.DefaultHalfLife
	}
	return &TrendingScorer{
		Config: config,
		DB:     db,
		Board:  board,
	}
}

func (s *TrendingScorer) RunModule(ctx context.Context) error {
	ticker := time.NewTicker(s.Config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.RecomputeTrending(); err != nil {
				Logger.Log.Errorf("trending recompute failed: %v", err)
			}
		}
	}
}

// RecomputeTrending scores every post in the window and replaces the
// leaderboard.
func (s *TrendingScorer) RecomputeTrending() error {
	var posts []model.Post
	since := time.Now().Add(-s.Config.Window)
	if err := s.DB.Model(&model.Post{}).Where("created_at > ?", since).Find(&posts).Error; err != nil {
		return err
	}

	now := time.Now()
	signals := make([]rank.PostSignal, 0, len(posts))
	for _, post := range posts {
		signals = append(signals, rank.PostSignal{
			Id:           post.Id,
			LikeCount:    post.LikeCount,
			CommentCount: post.CommentCount,
			RepostCount:  post.RepostCount,
			SaveCount:    post.SaveCount,
			Age:          now.Sub(post.CreatedAt),
		})
	}

	scores := rank.Scores(signals, s.Config.HalfLife)
	Logger.Log.Infof("trending scorer ranked %d posts, %d made the board", len(signals), len(scores))
	return s.Board.ReplaceTrending(scores)
}

func (s *TrendingScorer) Name() string {
	return s.Config.Name
}
