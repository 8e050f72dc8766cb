package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/plaza-social/plaza/model"
	"github.com/plaza-social/plaza/utils"
)

type NewCommentInput struct {
	Content   string  `json:"content" binding:"required"`
	ReplyToID *string `json:"reply_to_id"`
}

// CreateComment adds a comment (or a one-level nested reply) on a post
// and bumps the post's comment counter in the same transaction.
func (h *Handler) CreateComment(c *gin.Context) {
	var input NewCommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, http.StatusBadRequest, utils.ErrorInvalidArgument, err.Error())
		return
	}

	postId := c.Param("id")
	var post model.Post
	if h.DB.Where("id = ?", postId).First(&post).RowsAffected == 0 {
		abortWithError(c, http.StatusNotFound, utils.ErrorNotFound, "post not found")
		return
	}

	if input.ReplyToID != nil {
		var parent model.Comment
		res := h.DB.Where("id = ? AND post_id = ?", *input.ReplyToID, postId).First(&parent)
		if res.RowsAffected == 0 {
			abortWithError(c, http.StatusBadRequest, utils.ErrorInvalidArgument, "parent comment not found")
			return
		}
		if parent.ReplyToID != nil {
			abortWithError(c, http.StatusBadRequest, utils.ErrorInvalidArgument, "replies nest only one level")
			return
		}
	}

	comment := model.Comment{
		Id:        uuid.New().String(),
		CreatedAt: time.Now(),
		PostID:    postId,
		AuthorID:  currentUserId(c),
		ReplyToID: input.ReplyToID,
		Content:   input.Content,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&model.Post{}).Where("id = ?", postId).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error
	})
	if err != nil {
		abortInternal(c, err)
		return
	}

	h.publishEvent(&model.Event{
		Type:        model.EventTypeCommentNew,
		ActorID:     comment.AuthorID,
		RecipientID: post.AuthorID,
		SubjectType: model.SubjectTypePost,
		SubjectID:   postId,
	})

	c.JSON(http.StatusCreated, &comment)
}

// ListComments pages through a post's comments in cursor order.
func (h *Handler) ListComments(c *gin.Context) {
	cursor := cursorQuery(c)

	query := h.DB.Preload("Author").Where("post_id = ?", c.Param("id"))
	if cursor != defaultCursor {
		query = query.Where("cursor < ?", cursor)
	}

	var comments []model.Comment
	if err := query.Order("cursor desc").Limit(limitQuery(c)).Find(&comments).Error; err != nil {
		abortInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// DeleteComment removes a comment. Allowed for the comment author and
// the post author.
func (h *Handler) DeleteComment(c *gin.Context) {
	var comment model.Comment
	if h.DB.Where("id = ?", c.Param("id")).First(&comment).RowsAffected == 0 {
		abortWithError(c, http.StatusNotFound, utils.ErrorNotFound, "comment not found")
		return
	}

	var post model.Post
	h.DB.Where("id = ?", comment.PostID).First(&post)

	userId := currentUserId(c)
	if comment.AuthorID != userId && post.AuthorID != userId {
		abortWithError(c, http.StatusForbidden, utils.ErrorPermissionDeny, "not allowed to delete this comment")
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&model.Post{}).Where("id = ? AND comment_count > 0", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count - 1")).Error
	})
	if err != nil {
		abortInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// LikeComment toggles the caller's like on a comment.
func (h *Handler) LikeComment(c *gin.Context) {
	userId := currentUserId(c)
	commentId := c.Param("id")

	var comment model.Comment
	if h.DB.Where("id = ?", commentId).First(&comment).RowsAffected == 0 {
		abortWithError(c, http.StatusNotFound, utils.ErrorNotFound, "comment not found")
		return
	}

	liked := false
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var existing model.UserCommentLike
		if tx.Where("user_id = ? AND comment_id = ?", userId, commentId).First(&existing).RowsAffected > 0 {
			if err := tx.Where("user_id = ? AND comment_id = ?", userId, commentId).
				Delete(&model.UserCommentLike{}).Error; err != nil {
				return err
			}
			return tx.Model(&model.Comment{}).Where("id = ? AND like_count > 0", commentId).
				UpdateColumn("like_count", gorm.Expr("like_count - 1")).Error
		}

		if err := tx.Create(&model.UserCommentLike{
			UserID:    userId,
			CommentID: commentId,
			CreatedAt: time.Now(),
		}).Error; err != nil {
			return err
		}
		liked = true
		return tx.Model(&model.Comment{}).Where("id = ?", commentId).
			UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
	})
	if err != nil {
		abortInternal(c, err)
		return
	}

	if liked {
		h.publishEvent(&model.Event{
			Type:        model.EventTypeCommentLike,
			ActorID:     userId,
			RecipientID: comment.AuthorID,
			SubjectType: model.SubjectTypeComment,
			SubjectID:   commentId,
		})
	}

	var fresh model.Comment
	h.DB.Where("id = ?", commentId).First(&fresh)
	c.JSON(http.StatusOK, gin.H{"liked": liked, "like_count": fresh.LikeCount})
}
