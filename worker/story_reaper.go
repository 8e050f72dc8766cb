package worker

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/plaza-social/plaza/model"
	Logger "github.com/plaza-social/plaza/utils/log"
)

type StoryReaperConfig struct {
	// Name of this module instance.
	Name string
	// Sweep every other interval.
	Interval time.Duration
}

// StoryReaper soft-deletes stories past their 24h expiry. Listings
// already filter on ExpiresAt at query time, the reaper just keeps the
// table from accumulating dead rows in the hot set.
type StoryReaper struct {
	Config StoryReaperConfig

	DB *gorm.DB
}

func NewStoryReaper(config StoryReaperConfig, db *gorm.DB) *StoryReaper {
	return &StoryReaper{
		Config: config,
		DB:     db,
	}
}

func (r *StoryReaper) RunModule(ctx context.Context) error {
	ticker := time.NewTicker(r.Config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			reaped, err := r.ReapExpiredStories()
			if err != nil {
				Logger.Log.Errorf("story reaper sweep failed: %v", err)
				continue
			}
			if reaped > 0 {
				Logger.Log.Infof("story reaper removed %d expired stories", reaped)
			}
		}
	}
}

// ReapExpiredStories soft-deletes every story whose expiry has passed
// and returns how many rows were affected.
func (r *StoryReaper) ReapExpiredStories() (int64, error) {
	res := r.DB.Where("expires_at <= ?", time.Now()).Delete(&model.Story{})
	return res.RowsAffected, res.Error
}

func (r *StoryReaper) Name() string {
	return r.Config.Name
}
