package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plaza-social/plaza/model"
	"github.com/plaza-social/plaza/utils"
)

const (
	FeedDirectionTop    = "top"
	FeedDirectionBottom = "bottom"
)

type MarkReadInput struct {
	PostIds []string `json:"post_ids" binding:"required"`
}

// PostInFeedOutput pairs a post with its paging cursor and the
// caller's read mark.
type PostInFeedOutput struct {
	Post   *model.Post `json:"post"`
	Cursor int32       `json:"cursor"`
	Read   bool        `json:"read"`
}

type FeedOutput struct {
	Posts []*PostInFeedOutput `json:"posts"`
}

// GetHomeFeed returns the caller's timeline: posts authored or
// reposted by followed users plus their own, in global cursor order.
// direction=top fetches newer than the cursor, bottom fetches older.
func (h *Handler) GetHomeFeed(c *gin.Context) {
	userId := currentUserId(c)
	cursor := cursorQuery(c)
	direction := c.DefaultQuery("direction", FeedDirectionBottom)

	followees := h.DB.Model(&model.UserFollow{}).
		Select("followee_id").
		Where("follower_id = ?", userId)

	query := h.DB.Preload("Author").Preload("SharedFromPost").Preload("SharedFromPost.Author").
		Where("author_id IN (?) OR author_id = ?", followees, userId)

	if direction == FeedDirectionTop {
		query = query.Where("cursor > ?", cursor)
	} else if cursor != defaultCursor {
		query = query.Where("cursor < ?", cursor)
	}

	var posts []*model.Post
	if err := query.Order("cursor desc").Limit(limitQuery(c)).Find(&posts).Error; err != nil {
		abortInternal(c, err)
		return
	}

	c.JSON(http.StatusOK, h.buildFeedOutput(userId, posts))
}

// GetTrendingFeed serves the leaderboard the worker maintains in redis.
func (h *Handler) GetTrendingFeed(c *gin.Context) {
	userId := currentUserId(c)

	postIds, err := h.Redis.GetTrending(int64(limitQuery(c)))
	if err != nil {
		abortInternal(c, err)
		return
	}
	if len(postIds) == 0 {
		c.JSON(http.StatusOK, &FeedOutput{Posts: []*PostInFeedOutput{}})
		return
	}

	var posts []*model.Post
	if err := h.DB.Preload("Author").Where("id IN ?", postIds).Find(&posts).Error; err != nil {
		abortInternal(c, err)
		return
	}

	// Restore leaderboard order, the IN query does not preserve it.
	byId := map[string]*model.Post{}
	for _, post := range posts {
		byId[post.Id] = post
	}
	ordered := []*model.Post{}
	for _, id := range postIds {
		if post, ok := byId[id]; ok {
			ordered = append(ordered, post)
		}
	}

	c.JSON(http.StatusOK, h.buildFeedOutput(userId, ordered))
}

// MarkPostsRead records read marks for a batch of feed posts.
func (h *Handler) MarkPostsRead(c *gin.Context) {
	var input MarkReadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, http.StatusBadRequest, utils.ErrorInvalidArgument, err.Error())
		return
	}

	if err := h.Redis.SetItemsReadStatus(input.PostIds, currentUserId(c), true); err != nil {
		abortInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": len(input.PostIds)})
}

func (h *Handler) buildFeedOutput(userId string, posts []*model.Post) *FeedOutput {
	postIds := []string{}
	for _, post := range posts {
		postIds = append(postIds, post.Id)
	}

	var readStatus []bool
	if h.Redis != nil {
		readStatus, _ = h.Redis.GetItemsReadStatus(postIds, userId)
	}
	if len(readStatus) != len(posts) {
		// Read marks are a decoration, serve the feed without them.
		readStatus = make([]bool, len(posts))
	}

	out := FeedOutput{Posts: []*PostInFeedOutput{}}
	for i, post := range posts {
		out.Posts = append(out.Posts, &PostInFeedOutput{
			Post:   post,
			Cursor: post.Cursor,
			Read:   readStatus[i],
		})
	}
	return &out
}
