package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"gorm.io/gorm"

	"github.com/plaza-social/plaza/model"
	"github.com/plaza-social/plaza/utils"
)

type UpdateProfileInput struct {
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
	AvatarUrl   *string `json:"avatar_url"`
}

// UserOutput is the public profile payload: the user row plus volatile
// presence.
type UserOutput struct {
	model.User
	Online bool `json:"online"`
}

// GetUser returns a public profile with live presence.
func (h *Handler) GetUser(c *gin.Context) {
	var user model.User
	res := h.DB.Where("id = ?", c.Param("id")).First(&user)
	if res.RowsAffected == 0 {
		abortWithError(c, http.StatusNotFound, utils.ErrorNotFound, "user not found")
		return
	}

	out := UserOutput{}
	if err := copier.Copy(&out.User, &user); err != nil {
		abortInternal(c, err)
		return
	}
	if h.Redis != nil {
		if online, err := h.Redis.GetOnlineStatus([]string{user.Id}); err == nil && len(online) == 1 {
			out.Online = online[0]
		}
	}

	c.JSON(http.StatusOK, &out)
}

// UpdateProfile edits the caller's own profile fields.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, http.StatusBadRequest, utils.ErrorInvalidArgument, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if input.DisplayName != nil {
		updates["display_name"] = *input.DisplayName
	}
	if input.Bio != nil {
		updates["bio"] = *input.Bio
	}
	if input.AvatarUrl != nil {
		updates["avatar_url"] = *input.AvatarUrl
	}
	if len(updates) == 0 {
		abortWithError(c, http.StatusBadRequest, utils.ErrorInvalidArgument, "no fields to update")
		return
	}

	userId := currentUserId(c)
	if err := h.DB.Model(&model.User{}).Where("id = ?", userId).Updates(updates).Error; err != nil {
		abortInternal(c, err)
		return
	}

	var user model.User
	h.DB.Where("id = ?", userId).First(&user)
	c.JSON(http.StatusOK, &user)
}

// Follow makes the caller follow the target user. Idempotent: re-follow
// is a no-op.
func (h *Handler) Follow(c *gin.Context) {
	followerId := currentUserId(c)
	followeeId := c.Param("id")

	if followerId == followeeId {
		abortWithError(c, http.StatusBadRequest, utils.ErrorInvalidArgument, "cannot follow yourself")
		return
	}

	var followee model.User
	if h.DB.Where("id = ?", followeeId).First(&followee).RowsAffected == 0 {
		abortWithError(c, http.StatusNotFound, utils.ErrorNotFound, "user not found")
		return
	}

	created := false
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var existing model.UserFollow
		if tx.Where("follower_id = ? AND followee_id = ?", followerId, followeeId).First(&existing).RowsAffected > 0 {
			return nil
		}
		if err := tx.Create(&model.UserFollow{
			FollowerID: followerId,
			FolloweeID: followeeId,
			CreatedAt:  time.Now(),
		}).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.User{}).Where("id = ?", followeeId).
			UpdateColumn("follower_count", gorm.Expr("follower_count + 1")).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.User{}).Where("id = ?", followerId).
			UpdateColumn("following_count", gorm.Expr("following_count + 1")).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		abortInternal(c, err)
		return
	}

	if created {
		h.publishEvent(&model.Event{
			Type:        model.EventTypeFollow,
			ActorID:     followerId,
			RecipientID: followeeId,
			SubjectType: model.SubjectTypeUser,
			SubjectID:   followerId,
		})
	}

	c.JSON(http.StatusOK, gin.H{"following": true})
}

// Unfollow removes the follow edge. Idempotent.
func (h *Handler) Unfollow(c *gin.Context) {
	followerId := currentUserId(c)
	followeeId := c.Param("id")

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Unscoped().Where("follower_id = ? AND followee_id = ?", followerId, followeeId).
			Delete(&model.UserFollow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Model(&model.User{}).Where("id = ? AND follower_count > 0", followeeId).
			UpdateColumn("follower_count", gorm.Expr("follower_count - 1")).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).Where("id = ? AND following_count > 0", followerId).
			UpdateColumn("following_count", gorm.Expr("following_count - 1")).Error
	})
	if err != nil {
		abortInternal(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"following": false})
}

// ListFollowers lists the users following the target.
func (h *Handler) ListFollowers(c *gin.Context) {
	h.listFollowEdge(c, "followee_id", "follower_id")
}

// ListFollowing lists the users the target follows.
func (h *Handler) ListFollowing(c *gin.Context) {
	h.listFollowEdge(c, "follower_id", "followee_id")
}

func (h *Handler) listFollowEdge(c *gin.Context, whereColumn string, selectColumn string) {
	var users []model.User
	err := h.DB.Model(&model.User{}).
		Where("id IN (?)", h.DB.Model(&model.UserFollow{}).
			Select(selectColumn).
			Where(whereColumn+" = ?", c.Param("id"))).
		Limit(limitQuery(c)).
		Find(&users).Error
	if err != nil {
		abortInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}
