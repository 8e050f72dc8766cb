// Package handlers implements the REST surface of the API server.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/plaza-social/plaza/model"
	"github.com/plaza-social/plaza/notifier"
	"github.com/plaza-social/plaza/server/hub"
	"github.com/plaza-social/plaza/unfurl"
	"github.com/plaza-social/plaza/utils"
	Logger "github.com/plaza-social/plaza/utils/log"
)

const (
	// pageLimit caps every cursor-paginated listing.
	pageLimit = 30

	defaultCursor = -1
)

// Handler carries the dependencies every endpoint needs. It serves as
// dependency injection for the app, add any dependencies you require here.
type Handler struct {
	DB    *gorm.DB
	Redis *utils.RedisStore
	Hub   *hub.Hub
	Bus   *gochannel.GoChannel

	Unfurler *unfurl.Fetcher
}

func New(db *gorm.DB, redis *utils.RedisStore, h *hub.Hub, bus *gochannel.GoChannel) *Handler {
	return &Handler{
		DB:       db,
		Redis:    redis,
		Hub:      h,
		Bus:      bus,
		Unfurler: unfurl.NewFetcher(),
	}
}

// currentUserId returns the authenticated user id injected by the
// session middleware.
func currentUserId(c *gin.Context) string {
	return c.Request.Header.Get("sub")
}

func abortWithError(c *gin.Context, status int, code int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"code": code,
		"msg":  msg,
	})
}

func abortInternal(c *gin.Context, err error) {
	Logger.Log.Errorf("internal error serving %s: %v", c.FullPath(), err)
	abortWithError(c, http.StatusInternalServerError, utils.ErrorInternal, "internal error")
}

// cursorQuery parses the "cursor" query param, returning defaultCursor
// when absent.
func cursorQuery(c *gin.Context) int64 {
	raw := c.Query("cursor")
	if raw == "" {
		return defaultCursor
	}
	cursor, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return defaultCursor
	}
	return cursor
}

// limitQuery parses the "limit" query param clamped to pageLimit.
func limitQuery(c *gin.Context) int {
	raw := c.Query("limit")
	if raw == "" {
		return pageLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return pageLimit
	}
	return utils.Min(limit, pageLimit)
}

// publishEvent pushes a domain event on the bus, logging instead of
// failing the request when the bus is down.
func (h *Handler) publishEvent(event *model.Event) {
	if h.Bus == nil {
		return
	}
	if err := notifier.PublishEvent(h.Bus, event); err != nil {
		Logger.Log.Errorf("fail to publish event %s: %v", event.Type, err)
	}
}
