package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/plaza-social/plaza/model"
	"github.com/plaza-social/plaza/server/handlers"
)

func TestStoryReelsFollowScopeAndExpiry(t *testing.T) {
	db, router := PrepareTestForRestAPIs(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	doRequest(router, "POST", "/users/"+bob.Id+"/follow", alice.Id, nil)

	w := doRequest(router, "POST", "/stories", bob.Id, map[string]string{
		"media_url":  "https://cdn.plaza.social/s/1.jpg",
		"media_type": string(model.MediaTypeImage),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var story model.Story
	decodeBody(t, w, &story)
	require.WithinDuration(t, time.Now().Add(model.StoryTTL), story.ExpiresAt, time.Minute)

	// Carol isn't followed, her story stays out of alice's reels.
	doRequest(router, "POST", "/stories", carol.Id, map[string]string{
		"media_url":  "https://cdn.plaza.social/s/2.jpg",
		"media_type": string(model.MediaTypeImage),
	})

	// An already expired story from bob is filtered at query time.
	expired := model.Story{
		Id:        "expired-story",
		CreatedAt: time.Now().Add(-25 * time.Hour),
		AuthorID:  bob.Id,
		MediaUrl:  "https://cdn.plaza.social/s/0.jpg",
		MediaType: model.MediaTypeImage,
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, db.Create(&expired).Error)

	var reels []handlers.StoryReel
	w = doRequest(router, "GET", "/stories", alice.Id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &reels)
	require.Len(t, reels, 1)
	require.Equal(t, bob.Id, reels[0].Author.Id)
	require.Len(t, reels[0].Stories, 1)
	require.Equal(t, story.Id, reels[0].Stories[0].Id)
}

func TestStoryViewDedup(t *testing.T) {
	db, router := PrepareTestForRestAPIs(t)
	author := createTestUser(t, db, "author")
	viewer := createTestUser(t, db, "viewer")

	w := doRequest(router, "POST", "/stories", author.Id, map[string]string{
		"media_url":  "https://cdn.plaza.social/s/3.mp4",
		"media_type": string(model.MediaTypeVideo),
	})
	var story model.Story
	decodeBody(t, w, &story)

	var out struct {
		ViewCount int32 `json:"view_count"`
	}
	w = doRequest(router, "POST", "/stories/"+story.Id+"/view", viewer.Id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &out)
	require.Equal(t, int32(1), out.ViewCount)

	// Watching again does not double count.
	w = doRequest(router, "POST", "/stories/"+story.Id+"/view", viewer.Id, nil)
	decodeBody(t, w, &out)
	require.Equal(t, int32(1), out.ViewCount)

	// Only the author sees the viewer list.
	w = doRequest(router, "GET", "/stories/"+story.Id+"/viewers", viewer.Id, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	var viewers []model.User
	w = doRequest(router, "GET", "/stories/"+story.Id+"/viewers", author.Id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &viewers)
	require.Len(t, viewers, 1)
	require.Equal(t, viewer.Id, viewers[0].Id)
}
