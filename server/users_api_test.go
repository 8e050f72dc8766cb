package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plaza-social/plaza/model"
)

func TestFollowUnfollow(t *testing.T) {
	db, router := PrepareTestForRestAPIs(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	w := doRequest(router, "POST", "/users/"+bob.Id+"/follow", alice.Id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Re-follow is a no-op, counters stay put.
	w = doRequest(router, "POST", "/users/"+bob.Id+"/follow", alice.Id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var followee, follower model.User
	db.Where("id = ?", bob.Id).First(&followee)
	db.Where("id = ?", alice.Id).First(&follower)
	require.Equal(t, int32(1), followee.FollowerCount)
	require.Equal(t, int32(1), follower.FollowingCount)

	var listed []model.User
	w = doRequest(router, "GET", "/users/"+bob.Id+"/followers", alice.Id, nil)
	decodeBody(t, w, &listed)
	require.Len(t, listed, 1)
	require.Equal(t, alice.Id, listed[0].Id)

	w = doRequest(router, "DELETE", "/users/"+bob.Id+"/follow", alice.Id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	// Unfollowing twice stays at zero.
	w = doRequest(router, "DELETE", "/users/"+bob.Id+"/follow", alice.Id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	db.Where("id = ?", bob.Id).First(&followee)
	db.Where("id = ?", alice.Id).First(&follower)
	require.Equal(t, int32(0), followee.FollowerCount)
	require.Equal(t, int32(0), follower.FollowingCount)
}

func TestSelfFollowRejected(t *testing.T) {
	db, router := PrepareTestForRestAPIs(t)
	alice := createTestUser(t, db, "alice")

	w := doRequest(router, "POST", "/users/"+alice.Id+"/follow", alice.Id, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateProfile(t *testing.T) {
	db, router := PrepareTestForRestAPIs(t)
	alice := createTestUser(t, db, "alice")

	w := doRequest(router, "PATCH", "/users/me", alice.Id, map[string]string{
		"display_name": "Alice in Plaza",
		"bio":          "hello",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var user model.User
	db.Where("id = ?", alice.Id).First(&user)
	require.Equal(t, "Alice in Plaza", user.DisplayName)
	require.Equal(t, "hello", user.Bio)
	// The handle is immutable, only profile fields moved.
	require.Equal(t, "alice", user.Username)
}
