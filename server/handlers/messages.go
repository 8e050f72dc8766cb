package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/plaza-social/plaza/model"
	"github.com/plaza-social/plaza/server/hub"
	"github.com/plaza-social/plaza/utils"
)

type NewConversationInput struct {
	Kind      model.ConversationKind `json:"kind" binding:"required"`
	Title     string                 `json:"title"`
	MemberIds []string               `json:"member_ids" binding:"required"`
}

type NewMessageInput struct {
	Content string `json:"content" binding:"required"`
}

type ReadReceiptInput struct {
	Cursor int64 `json:"cursor" binding:"required"`
}

type AddMemberInput struct {
	UserID string `json:"user_id" binding:"required"`
}

// ConversationOutput decorates a conversation with the caller's unread
// count.
type ConversationOutput struct {
	Conversation *model.Conversation `json:"conversation"`
	UnreadCount  int64               `json:"unread_count"`
}

// conversationRoom names the hub room of a conversation.
func conversationRoom(conversationId string) string {
	return "conversation:" + conversationId
}

// getMembership loads the caller's membership row, nil when the caller
// is not in the conversation.
func (h *Handler) getMembership(conversationId string, userId string) *model.ConversationMember {
	var member model.ConversationMember
	res := h.DB.Where("conversation_id = ? AND user_id = ?", conversationId, userId).First(&member)
	if res.RowsAffected == 0 {
		return nil
	}
	return &member
}

// CreateConversation starts a direct or group thread. Direct threads
// are deduplicated on the unordered member pair: asking for an
// existing one returns it instead of creating a twin.
func (h *Handler) CreateConversation(c *gin.Context) {
	var input NewConversationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, http.StatusBadRequest, utils.ErrorInvalidArgument, err.Error())
		return
	}

	creatorId := currentUserId(c)

	switch input.Kind {
	case model.ConversationKindDirect:
		if len(input.MemberIds) != 1 || input.MemberIds[0] == creatorId {
			abortWithError(c, http.StatusBadRequest, utils.ErrorInvalidArgument,
				"direct conversation needs exactly one other member")
			return
		}
		h.createDirectConversation(c, creatorId, input.MemberIds[0])

	case model.ConversationKindGroup:
		if len(input.MemberIds) == 0 {
			abortWithError(c, http.StatusBadRequest, utils.ErrorInvalidArgument, "group needs members")
			return
		}
		h.createGroupConversation(c, creatorId, input.Title, input.MemberIds)

	default:
		abortWithError(c, http.StatusBadRequest, utils.ErrorInvalidArgument, "unknown conversation kind")
	}
}

func (h *Handler) createDirectConversation(c *gin.Context, creatorId string, peerId string) {
	var peer model.User
	if h.DB.Where("id = ?", peerId).First(&peer).RowsAffected == 0 {
		abortWithError(c, http.StatusNotFound, utils.ErrorNotFound, "peer not found")
		return
	}

	pairKey := model.DirectPairKey(creatorId, peerId)

	var existing model.Conversation
	if h.DB.Preload("Members").Where("pair_key = ?", pairKey).First(&existing).RowsAffected > 0 {
		c.JSON(http.StatusOK, &existing)
		return
	}

	conversation := model.Conversation{
		Id:        uuid.New().String(),
		CreatedAt: time.Now(),
		Kind:      model.ConversationKindDirect,
		CreatorID: creatorId,
		PairKey:   &pairKey,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&conversation).Error; err != nil {
			return err
		}
		for _, userId := range []string{creatorId, peerId} {
			if err := tx.Create(&model.ConversationMember{
				ConversationID: conversation.Id,
				UserID:         userId,
				CreatedAt:      time.Now(),
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		abortInternal(c, err)
		return
	}

	h.DB.Preload("Members").Where("id = ?", conversation.Id).First(&conversation)
	c.JSON(http.StatusCreated, &conversation)
}

func (h *Handler) createGroupConversation(c *gin.Context, creatorId string, title string, memberIds []string) {
	if !utils.ContainsString(memberIds, creatorId) {
		memberIds = append(memberIds, creatorId)
	}

	conversation := model.Conversation{
		Id:        uuid.New().String(),
		CreatedAt: time.Now(),
		Kind:      model.ConversationKindGroup,
		Title:     title,
		CreatorID: creatorId,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&conversation).Error; err != nil {
			return err
		}
		for _, userId := range memberIds {
			if err := tx.Create(&model.ConversationMember{
				ConversationID: conversation.Id,
				UserID:         userId,
				CreatedAt:      time.Now(),
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		abortInternal(c, err)
		return
	}

	h.DB.Preload("Members").Where("id = ?", conversation.Id).First(&conversation)
	c.JSON(http.StatusCreated, &conversation)
}

// ListConversations returns all threads the caller belongs to with
// unread counts.
func (h *Handler) ListConversations(c *gin.Context) {
	userId := currentUserId(c)

	var memberships []model.ConversationMember
	if err := h.DB.Where("user_id = ?", userId).Find(&memberships).Error; err != nil {
		abortInternal(c, err)
		return
	}

	out := []*ConversationOutput{}
	for _, membership := range memberships {
		var conversation model.Conversation
		if h.DB.Preload("Members").Where("id = ?", membership.ConversationID).
			First(&conversation).RowsAffected == 0 {
			continue
		}

		var unread int64
		h.DB.Model(&model.Message{}).
			Where("conversation_id = ? AND cursor > ? AND sender_id <> ?",
				membership.ConversationID, membership.LastReadCursor, userId).
			Count(&unread)

		out = append(out, &ConversationOutput{
			Conversation: &conversation,
			UnreadCount:  unread,
		})
	}
	c.JSON(http.StatusOK, out)
}

// GetConversation fetches one thread, members included.
func (h *Handler) GetConversation(c *gin.Context) {
	conversationId := c.Param("id")
	if h.getMembership(conversationId, currentUserId(c)) == nil {
		abortWithError(c, http.StatusForbidden, utils.ErrorPermissionDeny, "not a member")
		return
	}

	var conversation model.Conversation
	if h.DB.Preload("Members").Where("id = ?", conversationId).First(&conversation).RowsAffected == 0 {
		abortWithError(c, http.StatusNotFound, utils.ErrorNotFound, "conversation not found")
		return
	}
	c.JSON(http.StatusOK, &conversation)
}

// AddMember adds a user to a group conversation. Any member may do it.
func (h *Handler) AddMember(c *gin.Context) {
	var input AddMemberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, http.StatusBadRequest, utils.ErrorInvalidArgument, err.Error())
		return
	}

	conversationId := c.Param("id")
	if h.getMembership(conversationId, currentUserId(c)) == nil {
		abortWithError(c, http.StatusForbidden, utils.ErrorPermissionDeny, "not a member")
		return
	}

	var conversation model.Conversation
	h.DB.Where("id = ?", conversationId).First(&conversation)
	if conversation.Kind != model.ConversationKindGroup {
		abortWithError(c, http.StatusBadRequest, utils.ErrorInvalidArgument, "cannot add members to a direct conversation")
		return
	}

	if h.getMembership(conversationId, input.UserID) != nil {
		c.JSON(http.StatusOK, gin.H{"added": false})
		return
	}

	if err := h.DB.Create(&model.ConversationMember{
		ConversationID: conversationId,
		UserID:         input.UserID,
		CreatedAt:      time.Now(),
	}).Error; err != nil {
		abortInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": true})
}

// SendMessage persists a message, relays it to the conversation room
// and notifies the other members.
func (h *Handler) SendMessage(c *gin.Context) {
	var input NewMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, http.StatusBadRequest, utils.ErrorInvalidArgument, err.Error())
		return
	}

	conversationId := c.Param("id")
	senderId := currentUserId(c)
	if h.getMembership(conversationId, senderId) == nil {
		abortWithError(c, http.StatusForbidden, utils.ErrorPermissionDeny, "not a member")
		return
	}

	message := model.Message{
		Id:             uuid.New().String(),
		CreatedAt:      time.Now(),
		ConversationID: conversationId,
		SenderID:       senderId,
		Content:        input.Content,
	}
	if err := h.DB.Create(&message).Error; err != nil {
		abortInternal(c, err)
		return
	}

	// The sender has trivially read their own message.
	h.DB.Model(&model.ConversationMember{}).
		Where("conversation_id = ? AND user_id = ?", conversationId, senderId).
		UpdateColumn("last_read_cursor", gorm.Expr("GREATEST(last_read_cursor, ?)", message.Cursor))

	if h.Hub != nil {
		h.Hub.BroadcastRoom(conversationRoom(conversationId), &hub.Frame{
			Type:    hub.FrameTypeMessageNew,
			Room:    conversationRoom(conversationId),
			From:    senderId,
			Payload: hub.MustPayload(message),
		}, nil)
	}

	var members []model.ConversationMember
	h.DB.Where("conversation_id = ?", conversationId).Find(&members)
	for _, member := range members {
		if member.UserID == senderId {
			continue
		}
		h.publishEvent(&model.Event{
			Type:           model.EventTypeMessageNew,
			ActorID:        senderId,
			RecipientID:    member.UserID,
			SubjectType:    "message",
			SubjectID:      message.Id,
			ConversationID: conversationId,
		})
	}

	c.JSON(http.StatusCreated, &message)
}

// ListMessages pages through a conversation newest first.
func (h *Handler) ListMessages(c *gin.Context) {
	conversationId := c.Param("id")
	if h.getMembership(conversationId, currentUserId(c)) == nil {
		abortWithError(c, http.StatusForbidden, utils.ErrorPermissionDeny, "not a member")
		return
	}

	cursor := cursorQuery(c)
	query := h.DB.Preload("Sender").Where("conversation_id = ?", conversationId)
	if cursor != defaultCursor {
		query = query.Where("cursor < ?", cursor)
	}

	var messages []model.Message
	if err := query.Order("cursor desc").Limit(limitQuery(c)).Find(&messages).Error; err != nil {
		abortInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// DeleteMessage lets the sender retract their own message.
func (h *Handler) DeleteMessage(c *gin.Context) {
	var message model.Message
	if h.DB.Where("id = ?", c.Param("messageId")).First(&message).RowsAffected == 0 {
		abortWithError(c, http.StatusNotFound, utils.ErrorNotFound, "message not found")
		return
	}
	if message.SenderID != currentUserId(c) {
		abortWithError(c, http.StatusForbidden, utils.ErrorPermissionDeny, "not the sender")
		return
	}
	if err := h.DB.Delete(&message).Error; err != nil {
		abortInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// MarkConversationRead advances the caller's read cursor. The cursor
// only ever moves forward; a stale receipt is a no-op. The receipt is
// broadcast to the room so other members can render "seen" state.
func (h *Handler) MarkConversationRead(c *gin.Context) {
	var input ReadReceiptInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, http.StatusBadRequest, utils.ErrorInvalidArgument, err.Error())
		return
	}

	conversationId := c.Param("id")
	userId := currentUserId(c)
	membership := h.getMembership(conversationId, userId)
	if membership == nil {
		abortWithError(c, http.StatusForbidden, utils.ErrorPermissionDeny, "not a member")
		return
	}

	err := h.DB.Model(&model.ConversationMember{}).
		Where("conversation_id = ? AND user_id = ?", conversationId, userId).
		UpdateColumn("last_read_cursor", gorm.Expr("GREATEST(last_read_cursor, ?)", input.Cursor)).Error
	if err != nil {
		abortInternal(c, err)
		return
	}

	updated := h.getMembership(conversationId, userId)

	if h.Hub != nil {
		h.Hub.BroadcastRoom(conversationRoom(conversationId), &hub.Frame{
			Type: hub.FrameTypeReceipt,
			Room: conversationRoom(conversationId),
			From: userId,
			Payload: hub.MustPayload(hub.ReceiptPayload{
				ConversationID: conversationId,
				UserID:         userId,
				LastReadCursor: updated.LastReadCursor,
			}),
		}, nil)
	}

	c.JSON(http.StatusOK, gin.H{"last_read_cursor": updated.LastReadCursor})
}
