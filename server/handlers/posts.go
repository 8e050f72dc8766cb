package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/plaza-social/plaza/model"
	"github.com/plaza-social/plaza/unfurl"
	"github.com/plaza-social/plaza/utils"
	Logger "github.com/plaza-social/plaza/utils/log"
)

type NewPostInput struct {
	Content   string   `json:"content" binding:"required"`
	ImageUrls []string `json:"image_urls"`
}

// InteractionState is the authoritative per-user state of a post,
// returned from every toggle so an optimistic client can reconcile.
type InteractionState struct {
	PostID       string `json:"post_id"`
	Liked        bool   `json:"liked"`
	Disliked     bool   `json:"disliked"`
	Saved        bool   `json:"saved"`
	Reposted     bool   `json:"reposted"`
	LikeCount    int32  `json:"like_count"`
	DislikeCount int32  `json:"dislike_count"`
	RepostCount  int32  `json:"repost_count"`
	SaveCount    int32  `json:"save_count"`
}

// CreatePost writes a new post. When the content carries a URL the
// first one is unfurled into a link preview, best-effort.
func (h *Handler) CreatePost(c *gin.Context) {
	var input NewPostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, http.StatusBadRequest, utils.ErrorInvalidArgument, err.Error())
		return
	}

	imageUrls, err := json.Marshal(input.ImageUrls)
	if err != nil {
		abortInternal(c, err)
		return
	}

	post := model.Post{
		Id:        uuid.New().String(),
		CreatedAt: time.Now(),
		AuthorID:  currentUserId(c),
		Content:   input.Content,
		ImageUrls: datatypes.JSON(imageUrls),
	}

	if url := unfurl.FirstURL(input.Content); url != "" && h.Unfurler != nil {
		if preview, err := h.Unfurler.Fetch(url); err != nil {
			Logger.Log.Infof("fail to unfurl %s: %v", url, err)
		} else if raw, err := json.Marshal(preview); err == nil {
			post.LinkPreview = datatypes.JSON(raw)
		}
	}

	if err := h.DB.Create(&post).Error; err != nil {
		abortInternal(c, err)
		return
	}

	c.JSON(http.StatusCreated, &post)
}

// GetPost fetches a single post with its author and repost origin.
func (h *Handler) GetPost(c *gin.Context) {
	var post model.Post
	res := h.DB.Preload("Author").Preload("SharedFromPost").Preload("SharedFromPost.Author").
		Where("id = ?", c.Param("id")).First(&post)
	if res.RowsAffected == 0 {
		abortWithError(c, http.StatusNotFound, utils.ErrorNotFound, "post not found")
		return
	}
	c.JSON(http.StatusOK, &post)
}

// DeletePost soft-deletes the caller's own post.
func (h *Handler) DeletePost(c *gin.Context) {
	var post model.Post
	if h.DB.Where("id = ?", c.Param("id")).First(&post).RowsAffected == 0 {
		abortWithError(c, http.StatusNotFound, utils.ErrorNotFound, "post not found")
		return
	}
	if post.AuthorID != currentUserId(c) {
		abortWithError(c, http.StatusForbidden, utils.ErrorPermissionDeny, "not the author")
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&post).Error; err != nil {
			return err
		}
		if post.SharedFromPostID == nil {
			return nil
		}
		// The post was a repost, its origin just lost one.
		return tx.Model(&model.Post{}).Where("id = ? AND repost_count > 0", *post.SharedFromPostID).
			UpdateColumn("repost_count", gorm.Expr("repost_count - 1")).Error
	})
	if err != nil {
		abortInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// LikePost toggles the caller's like on a post. Liking clears an
// existing dislike.
func (h *Handler) LikePost(c *gin.Context) {
	h.togglePostReaction(c, model.ReactionKindLike)
}

// DislikePost toggles the caller's dislike on a post. Disliking clears
// an existing like.
func (h *Handler) DislikePost(c *gin.Context) {
	h.togglePostReaction(c, model.ReactionKindDislike)
}

// togglePostReaction flips the (user, post) reaction row and keeps the
// denormalized counters in lockstep inside one transaction. Repeating
// the same reaction removes it.
func (h *Handler) togglePostReaction(c *gin.Context, kind string) {
	userId := currentUserId(c)
	postId := c.Param("id")

	var post model.Post
	if h.DB.Where("id = ?", postId).First(&post).RowsAffected == 0 {
		abortWithError(c, http.StatusNotFound, utils.ErrorNotFound, "post not found")
		return
	}

	nowHeld := false
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var existing model.UserPostReaction
		res := tx.Where("user_id = ? AND post_id = ?", userId, postId).First(&existing)

		switch {
		case res.RowsAffected == 0:
			// No reaction yet, add one.
			if err := tx.Create(&model.UserPostReaction{
				UserID:    userId,
				PostID:    postId,
				Kind:      kind,
				CreatedAt: time.Now(),
			}).Error; err != nil {
				return err
			}
			nowHeld = true
			return bumpReactionCounter(tx, postId, kind, 1)

		case existing.Kind == kind:
			// Same reaction again, toggle it off.
			if err := tx.Unscoped().Where("user_id = ? AND post_id = ?", userId, postId).
				Delete(&model.UserPostReaction{}).Error; err != nil {
				return err
			}
			return bumpReactionCounter(tx, postId, kind, -1)

		default:
			// Switching sides: flip the row, move both counters.
			if err := tx.Model(&model.UserPostReaction{}).
				Where("user_id = ? AND post_id = ?", userId, postId).
				Update("kind", kind).Error; err != nil {
				return err
			}
			if err := bumpReactionCounter(tx, postId, existing.Kind, -1); err != nil {
				return err
			}
			nowHeld = true
			return bumpReactionCounter(tx, postId, kind, 1)
		}
	})
	if err != nil {
		abortInternal(c, err)
		return
	}

	if nowHeld && kind == model.ReactionKindLike {
		h.publishEvent(&model.Event{
			Type:        model.EventTypePostLike,
			ActorID:     userId,
			RecipientID: post.AuthorID,
			SubjectType: model.SubjectTypePost,
			SubjectID:   postId,
		})
	}

	h.respondInteractionState(c, userId, postId)
}

func bumpReactionCounter(tx *gorm.DB, postId string, kind string, delta int) error {
	column := "like_count"
	if kind == model.ReactionKindDislike {
		column = "dislike_count"
	}
	if delta < 0 {
		return tx.Model(&model.Post{}).Where("id = ? AND "+column+" > 0", postId).
			UpdateColumn(column, gorm.Expr(column+" - 1")).Error
	}
	return tx.Model(&model.Post{}).Where("id = ?", postId).
		UpdateColumn(column, gorm.Expr(column+" + 1")).Error
}

// SavePost toggles the caller's bookmark on a post.
func (h *Handler) SavePost(c *gin.Context) {
	userId := currentUserId(c)
	postId := c.Param("id")

	var post model.Post
	if h.DB.Where("id = ?", postId).First(&post).RowsAffected == 0 {
		abortWithError(c, http.StatusNotFound, utils.ErrorNotFound, "post not found")
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var existing model.UserPostSave
		if tx.Where("user_id = ? AND post_id = ?", userId, postId).First(&existing).RowsAffected > 0 {
			if err := tx.Unscoped().Where("user_id = ? AND post_id = ?", userId, postId).
				Delete(&model.UserPostSave{}).Error; err != nil {
				return err
			}
			return tx.Model(&model.Post{}).Where("id = ? AND save_count > 0", postId).
				UpdateColumn("save_count", gorm.Expr("save_count - 1")).Error
		}

		if err := tx.Create(&model.UserPostSave{
			UserID:    userId,
			PostID:    postId,
			CreatedAt: time.Now(),
		}).Error; err != nil {
			return err
		}
		return tx.Model(&model.Post{}).Where("id = ?", postId).
			UpdateColumn("save_count", gorm.Expr("save_count + 1")).Error
	})
	if err != nil {
		abortInternal(c, err)
		return
	}

	h.respondInteractionState(c, userId, postId)
}

// RepostPost toggles a repost: creates a new post pointing back at the
// origin, or removes the caller's existing repost of it.
func (h *Handler) RepostPost(c *gin.Context) {
	userId := currentUserId(c)
	originId := c.Param("id")

	var origin model.Post
	if h.DB.Where("id = ?", originId).First(&origin).RowsAffected == 0 {
		abortWithError(c, http.StatusNotFound, utils.ErrorNotFound, "post not found")
		return
	}

	reposted := false
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var existing model.Post
		res := tx.Where("author_id = ? AND shared_from_post_id = ?", userId, originId).First(&existing)
		if res.RowsAffected > 0 {
			// Undo the repost.
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			return tx.Model(&model.Post{}).Where("id = ? AND repost_count > 0", originId).
				UpdateColumn("repost_count", gorm.Expr("repost_count - 1")).Error
		}

		repost := model.Post{
			Id:               uuid.New().String(),
			CreatedAt:        time.Now(),
			AuthorID:         userId,
			SharedFromPostID: &originId,
		}
		if err := tx.Create(&repost).Error; err != nil {
			return err
		}
		reposted = true
		return tx.Model(&model.Post{}).Where("id = ?", originId).
			UpdateColumn("repost_count", gorm.Expr("repost_count + 1")).Error
	})
	if err != nil {
		abortInternal(c, err)
		return
	}

	if reposted {
		h.publishEvent(&model.Event{
			Type:        model.EventTypePostRepost,
			ActorID:     userId,
			RecipientID: origin.AuthorID,
			SubjectType: model.SubjectTypePost,
			SubjectID:   originId,
		})
	}

	h.respondInteractionState(c, userId, originId)
}

// respondInteractionState reads back the live state after a toggle.
func (h *Handler) respondInteractionState(c *gin.Context, userId string, postId string) {
	state, err := h.getInteractionState(userId, postId)
	if err != nil {
		abortInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *Handler) getInteractionState(userId string, postId string) (*InteractionState, error) {
	var post model.Post
	if err := h.DB.Where("id = ?", postId).First(&post).Error; err != nil {
		return nil, err
	}

	state := InteractionState{
		PostID:       postId,
		LikeCount:    post.LikeCount,
		DislikeCount: post.DislikeCount,
		RepostCount:  post.RepostCount,
		SaveCount:    post.SaveCount,
	}

	var reaction model.UserPostReaction
	if h.DB.Where("user_id = ? AND post_id = ?", userId, postId).First(&reaction).RowsAffected > 0 {
		state.Liked = reaction.Kind == model.ReactionKindLike
		state.Disliked = reaction.Kind == model.ReactionKindDislike
	}

	var save model.UserPostSave
	state.Saved = h.DB.Where("user_id = ? AND post_id = ?", userId, postId).First(&save).RowsAffected > 0

	var repost model.Post
	state.Reposted = h.DB.Where("author_id = ? AND shared_from_post_id = ?", userId, postId).
		First(&repost).RowsAffected > 0

	return &state, nil
}
