package worker

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/plaza-social/plaza/model"
	"github.com/plaza-social/plaza/utils"
	"github.com/plaza-social/plaza/utils/dotenv"
)

func TestMain(m *testing.M) {
	dotenv.LoadDotEnvsInTests()
	os.Exit(m.Run())
}

func TestReapExpiredStories(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	reaper := NewStoryReaper(StoryReaperConfig{Name: "reaper", Interval: time.Minute}, db)

	fresh := model.Story{
		Id:        uuid.New().String(),
		CreatedAt: time.Now(),
		AuthorID:  "author",
		MediaUrl:  "https://cdn.plaza.social/s/fresh.jpg",
		MediaType: model.MediaTypeImage,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	stale := model.Story{
		Id:        uuid.New().String(),
		CreatedAt: time.Now().Add(-25 * time.Hour),
		AuthorID:  "author",
		MediaUrl:  "https://cdn.plaza.social/s/stale.jpg",
		MediaType: model.MediaTypeImage,
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, db.Create(&fresh).Error)
	require.NoError(t, db.Create(&stale).Error)

	reaped, err := reaper.ReapExpiredStories()
	require.NoError(t, err)
	require.Equal(t, int64(1), reaped)

	var remaining []model.Story
	db.Find(&remaining)
	require.Len(t, remaining, 1)
	require.Equal(t, fresh.Id, remaining[0].Id)

	// A second sweep finds nothing.
	reaped, err = reaper.ReapExpiredStories()
	require.NoError(t, err)
	require.Equal(t, int64(0), reaped)
}
