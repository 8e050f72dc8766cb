package server

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plaza-social/plaza/server/handlers"
)

func TestHomeFeedScope(t *testing.T) {
	db, router := PrepareTestForRestAPIs(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	createTestPost(t, db, alice.Id, "from alice")
	createTestPost(t, db, bob.Id, "from bob")
	createTestPost(t, db, carol.Id, "from carol")

	doRequest(router, "POST", "/users/"+bob.Id+"/follow", alice.Id, nil)

	// Alice sees her own post and bob's, never carol's.
	w := doRequest(router, "GET", "/feed/home", alice.Id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var feed handlers.FeedOutput
	decodeBody(t, w, &feed)
	require.Len(t, feed.Posts, 2)
	for _, item := range feed.Posts {
		require.NotEqual(t, carol.Id, item.Post.AuthorID)
	}
}

func TestHomeFeedPaging(t *testing.T) {
	db, router := PrepareTestForRestAPIs(t)
	alice := createTestUser(t, db, "alice")
	for i := 0; i < 5; i++ {
		createTestPost(t, db, alice.Id, "post")
	}

	w := doRequest(router, "GET", "/feed/home?limit=2", alice.Id, nil)
	var page handlers.FeedOutput
	decodeBody(t, w, &page)
	require.Len(t, page.Posts, 2)

	// Newest first. Paging down from the last cursor never repeats.
	require.Greater(t, page.Posts[0].Cursor, page.Posts[1].Cursor)
	lowest := page.Posts[1].Cursor

	w = doRequest(router, "GET",
		"/feed/home?limit=10&direction=bottom&cursor="+strconv.Itoa(int(lowest)), alice.Id, nil)
	var rest handlers.FeedOutput
	decodeBody(t, w, &rest)
	require.Len(t, rest.Posts, 3)
	for _, item := range rest.Posts {
		require.Less(t, item.Cursor, lowest)
	}

	// Nothing newer than the top of the feed.
	top := page.Posts[0].Cursor
	w = doRequest(router, "GET",
		"/feed/home?direction=top&cursor="+strconv.Itoa(int(top)), alice.Id, nil)
	var newer handlers.FeedOutput
	decodeBody(t, w, &newer)
	require.Empty(t, newer.Posts)
}
