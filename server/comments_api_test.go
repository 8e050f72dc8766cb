package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plaza-social/plaza/model"
)

func TestCommentLifecycle(t *testing.T) {
	db, router := PrepareTestForRestAPIs(t)
	author := createTestUser(t, db, "author")
	commenter := createTestUser(t, db, "commenter")
	post := createTestPost(t, db, author.Id, "discuss")

	w := doRequest(router, "POST", "/posts/"+post.Id+"/comments", commenter.Id, map[string]string{
		"content": "first!",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var comment model.Comment
	decodeBody(t, w, &comment)

	var fresh model.Post
	db.Where("id = ?", post.Id).First(&fresh)
	require.Equal(t, int32(1), fresh.CommentCount)

	// A reply nests under the comment.
	w = doRequest(router, "POST", "/posts/"+post.Id+"/comments", author.Id, map[string]interface{}{
		"content":     "thanks",
		"reply_to_id": comment.Id,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var reply model.Comment
	decodeBody(t, w, &reply)

	// But replies to replies are rejected, nesting is one level deep.
	w = doRequest(router, "POST", "/posts/"+post.Id+"/comments", commenter.Id, map[string]interface{}{
		"content":     "deeper",
		"reply_to_id": reply.Id,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var listed []model.Comment
	w = doRequest(router, "GET", "/posts/"+post.Id+"/comments", commenter.Id, nil)
	decodeBody(t, w, &listed)
	require.Len(t, listed, 2)

	// The post author may delete anyone's comment on their post.
	w = doRequest(router, "DELETE", "/comments/"+comment.Id, author.Id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	db.Where("id = ?", post.Id).First(&fresh)
	require.Equal(t, int32(1), fresh.CommentCount)
}

func TestCommentLikeToggle(t *testing.T) {
	db, router := PrepareTestForRestAPIs(t)
	author := createTestUser(t, db, "author")
	post := createTestPost(t, db, author.Id, "discuss")

	w := doRequest(router, "POST", "/posts/"+post.Id+"/comments", author.Id, map[string]string{
		"content": "self reply",
	})
	var comment model.Comment
	decodeBody(t, w, &comment)

	var out struct {
		Liked     bool  `json:"liked"`
		LikeCount int32 `json:"like_count"`
	}

	w = doRequest(router, "POST", "/comments/"+comment.Id+"/like", author.Id, nil)
	decodeBody(t, w, &out)
	require.True(t, out.Liked)
	require.Equal(t, int32(1), out.LikeCount)

	w = doRequest(router, "POST", "/comments/"+comment.Id+"/like", author.Id, nil)
	decodeBody(t, w, &out)
	require.False(t, out.Liked)
	require.Equal(t, int32(0), out.LikeCount)
}

func TestCommentOnForeignPostParent(t *testing.T) {
	db, router := PrepareTestForRestAPIs(t)
	author := createTestUser(t, db, "author")
	postA := createTestPost(t, db, author.Id, "post a")
	postB := createTestPost(t, db, author.Id, "post b")

	w := doRequest(router, "POST", "/posts/"+postA.Id+"/comments", author.Id, map[string]string{
		"content": "on a",
	})
	var comment model.Comment
	decodeBody(t, w, &comment)

	// The parent must live on the same post.
	w = doRequest(router, "POST", "/posts/"+postB.Id+"/comments", author.Id, map[string]interface{}{
		"content":     "crossed",
		"reply_to_id": comment.Id,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}
