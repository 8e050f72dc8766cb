package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plaza-social/plaza/model"
	"github.com/plaza-social/plaza/utils"
)

type MarkNotificationsReadInput struct {
	Ids []string `json:"ids"`
	All bool     `json:"all"`
}

// ListNotifications pages through the caller's notifications newest
// first.
func (h *Handler) ListNotifications(c *gin.Context) {
	userId := currentUserId(c)
	cursor := cursorQuery(c)

	query := h.DB.Preload("Actor").Where("recipient_id = ?", userId)
	if c.Query("unread") == "true" {
		query = query.Where("read = ?", false)
	}
	if cursor != defaultCursor {
		query = query.Where("cursor < ?", cursor)
	}

	var notifications []model.Notification
	if err := query.Order("cursor desc").Limit(limitQuery(c)).Find(&notifications).Error; err != nil {
		abortInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// GetUnreadNotificationCount returns the badge number.
func (h *Handler) GetUnreadNotificationCount(c *gin.Context) {
	var count int64
	err := h.DB.Model(&model.Notification{}).
		Where("recipient_id = ? AND read = ?", currentUserId(c), false).
		Count(&count).Error
	if err != nil {
		abortInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// MarkNotificationsRead marks the named notifications, or all of the
// caller's, as read.
func (h *Handler) MarkNotificationsRead(c *gin.Context) {
	var input MarkNotificationsReadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, http.StatusBadRequest, utils.ErrorInvalidArgument, err.Error())
		return
	}
	if !input.All && len(input.Ids) == 0 {
		abortWithError(c, http.StatusBadRequest, utils.ErrorInvalidArgument, "nothing to mark")
		return
	}

	query := h.DB.Model(&model.Notification{}).Where("recipient_id = ?", currentUserId(c))
	if !input.All {
		query = query.Where("id IN ?", input.Ids)
	}

	res := query.UpdateColumn("read", true)
	if res.Error != nil {
		abortInternal(c, res.Error)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": res.RowsAffected})
}
