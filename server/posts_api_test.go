package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plaza-social/plaza/model"
	"github.com/plaza-social/plaza/server/handlers"
)

func TestLikeDislikeToggle(t *testing.T) {
	db, router := PrepareTestForRestAPIs(t)
	author := createTestUser(t, db, "author")
	viewer := createTestUser(t, db, "viewer")
	post := createTestPost(t, db, author.Id, "hello plaza")

	like := func() handlers.InteractionState {
		w := doRequest(router, "POST", "/posts/"+post.Id+"/like", viewer.Id, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var state handlers.InteractionState
		decodeBody(t, w, &state)
		return state
	}
	dislike := func() handlers.InteractionState {
		w := doRequest(router, "POST", "/posts/"+post.Id+"/dislike", viewer.Id, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var state handlers.InteractionState
		decodeBody(t, w, &state)
		return state
	}

	// Like, then like again to undo.
	state := like()
	require.True(t, state.Liked)
	require.Equal(t, int32(1), state.LikeCount)

	state = like()
	require.False(t, state.Liked)
	require.Equal(t, int32(0), state.LikeCount)

	// Like then dislike flips, both counters move together.
	state = like()
	require.True(t, state.Liked)

	state = dislike()
	require.False(t, state.Liked)
	require.True(t, state.Disliked)
	require.Equal(t, int32(0), state.LikeCount)
	require.Equal(t, int32(1), state.DislikeCount)

	// At most one reaction row per (user, post).
	var count int64
	db.Model(&model.UserPostReaction{}).
		Where("user_id = ? AND post_id = ?", viewer.Id, post.Id).Count(&count)
	require.Equal(t, int64(1), count)
}

func TestSaveToggle(t *testing.T) {
	db, router := PrepareTestForRestAPIs(t)
	author := createTestUser(t, db, "author")
	viewer := createTestUser(t, db, "viewer")
	post := createTestPost(t, db, author.Id, "bookmark me")

	w := doRequest(router, "POST", "/posts/"+post.Id+"/save", viewer.Id, nil)
	var state handlers.InteractionState
	decodeBody(t, w, &state)
	require.True(t, state.Saved)
	require.Equal(t, int32(1), state.SaveCount)

	// Toggle off, then on again. The join row's primary key is reused.
	w = doRequest(router, "POST", "/posts/"+post.Id+"/save", viewer.Id, nil)
	decodeBody(t, w, &state)
	require.False(t, state.Saved)
	require.Equal(t, int32(0), state.SaveCount)

	w = doRequest(router, "POST", "/posts/"+post.Id+"/save", viewer.Id, nil)
	decodeBody(t, w, &state)
	require.True(t, state.Saved)
	require.Equal(t, int32(1), state.SaveCount)
}

func TestRepostToggle(t *testing.T) {
	db, router := PrepareTestForRestAPIs(t)
	author := createTestUser(t, db, "author")
	viewer := createTestUser(t, db, "viewer")
	post := createTestPost(t, db, author.Id, "worth sharing")

	w := doRequest(router, "POST", "/posts/"+post.Id+"/repost", viewer.Id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var state handlers.InteractionState
	decodeBody(t, w, &state)
	require.True(t, state.Reposted)
	require.Equal(t, int32(1), state.RepostCount)

	// A repost is a real post pointing back at the origin.
	var repost model.Post
	require.Equal(t, int64(1),
		db.Where("author_id = ? AND shared_from_post_id = ?", viewer.Id, post.Id).
			First(&repost).RowsAffected)

	// Toggling again retracts it.
	w = doRequest(router, "POST", "/posts/"+post.Id+"/repost", viewer.Id, nil)
	decodeBody(t, w, &state)
	require.False(t, state.Reposted)
	require.Equal(t, int32(0), state.RepostCount)
}

func TestDeleteRepostReleasesOriginCount(t *testing.T) {
	db, router := PrepareTestForRestAPIs(t)
	author := createTestUser(t, db, "author")
	viewer := createTestUser(t, db, "viewer")
	post := createTestPost(t, db, author.Id, "worth sharing")

	w := doRequest(router, "POST", "/posts/"+post.Id+"/repost", viewer.Id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var repost model.Post
	require.Equal(t, int64(1),
		db.Where("author_id = ? AND shared_from_post_id = ?", viewer.Id, post.Id).
			First(&repost).RowsAffected)

	// Deleting the repost post itself must give the origin its count
	// back, same as retracting through the toggle.
	w = doRequest(router, "DELETE", "/posts/"+repost.Id, viewer.Id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var state handlers.InteractionState
	w = doRequest(router, "POST", "/posts/"+post.Id+"/like", viewer.Id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &state)
	require.False(t, state.Reposted)
	require.Equal(t, int32(0), state.RepostCount)

	// The origin is repostable again from scratch.
	w = doRequest(router, "POST", "/posts/"+post.Id+"/repost", viewer.Id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &state)
	require.True(t, state.Reposted)
	require.Equal(t, int32(1), state.RepostCount)
}

func TestDeletePostPermission(t *testing.T) {
	db, router := PrepareTestForRestAPIs(t)
	author := createTestUser(t, db, "author")
	other := createTestUser(t, db, "other")
	post := createTestPost(t, db, author.Id, "mine")

	w := doRequest(router, "DELETE", "/posts/"+post.Id, other.Id, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(router, "DELETE", "/posts/"+post.Id, author.Id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, "GET", "/posts/"+post.Id, author.Id, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestToggleUnknownPost(t *testing.T) {
	db, router := PrepareTestForRestAPIs(t)
	viewer := createTestUser(t, db, "viewer")

	w := doRequest(router, "POST", "/posts/no-such-post/like", viewer.Id, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
