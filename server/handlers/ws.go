package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/plaza-social/plaza/model"
	"github.com/plaza-social/plaza/server/hub"
	Logger "github.com/plaza-social/plaza/utils/log"
)

// WebSocket upgrades the authenticated request into a realtime
// connection. Blocks until the peer disconnects.
func (h *Handler) WebSocket(c *gin.Context) {
	userId := currentUserId(c)
	var presence hub.Presence
	if h.Redis != nil {
		presence = h.Redis
	}
	if err := h.Hub.ServeWS(c.Writer, c.Request, userId, presence); err != nil {
		Logger.Log.Warnf("fail to upgrade websocket for user %s: %v", userId, err)
	}
}

// RoomAuthorizer gates hub room joins on persistent state:
// "conversation:<id>" needs membership, "stream:<id>" needs the stream
// to be live (or owned by the joiner).
func RoomAuthorizer(db *gorm.DB) hub.AuthorizeFunc {
	return func(userId string, room string) bool {
		parts := strings.SplitN(room, ":", 2)
		if len(parts) != 2 || parts[1] == "" {
			return false
		}

		switch parts[0] {
		case "conversation":
			return db.Where("conversation_id = ? AND user_id = ?", parts[1], userId).
				First(&model.ConversationMember{}).RowsAffected > 0

		case "stream":
			var stream model.Stream
			if db.Where("id = ?", parts[1]).First(&stream).RowsAffected == 0 {
				return false
			}
			return stream.Status == model.StreamStatusLive || stream.OwnerID == userId

		default:
			return false
		}
	}
}
