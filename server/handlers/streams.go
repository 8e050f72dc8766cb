package handlers

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/plaza-social/plaza/model"
	"github.com/plaza-social/plaza/utils"
	Logger "github.com/plaza-social/plaza/utils/log"
)

type NewStreamInput struct {
	Title string `json:"title" binding:"required"`
}

// StreamOutput pairs a stream with its live viewer count.
type StreamOutput struct {
	Stream      *model.Stream `json:"stream"`
	ViewerCount int64         `json:"viewer_count"`
}

// streamRoom names the hub room carrying a stream's chat and presence.
func streamRoom(streamId string) string {
	return "stream:" + streamId
}

// CreateStream registers a draft stream. The ingest key comes back
// only here and on GetStreamKey, never in listings.
func (h *Handler) CreateStream(c *gin.Context) {
	var input NewStreamInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, http.StatusBadRequest, utils.ErrorInvalidArgument, err.Error())
		return
	}

	stream := model.Stream{
		Id:        uuid.New().String(),
		CreatedAt: time.Now(),
		OwnerID:   currentUserId(c),
		Title:     input.Title,
		Status:    model.StreamStatusDraft,
		StreamKey: uuid.New().String(),
	}
	if err := h.DB.Create(&stream).Error; err != nil {
		abortInternal(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"stream": &stream, "stream_key": stream.StreamKey})
}

// GetStreamKey hands the ingest key back to the owner.
func (h *Handler) GetStreamKey(c *gin.Context) {
	var stream model.Stream
	if h.DB.Where("id = ?", c.Param("id")).First(&stream).RowsAffected == 0 {
		abortWithError(c, http.StatusNotFound, utils.ErrorNotFound, "stream not found")
		return
	}
	if stream.OwnerID != currentUserId(c) {
		abortWithError(c, http.StatusForbidden, utils.ErrorPermissionDeny, "not the owner")
		return
	}
	c.JSON(http.StatusOK, gin.H{"stream_key": stream.StreamKey})
}

// StartStream flips a draft live. A stream that already ended stays
// ended.
func (h *Handler) StartStream(c *gin.Context) {
	h.transitionStream(c, model.StreamStatusLive)
}

// EndStream closes a live stream and clears its viewer counter.
func (h *Handler) EndStream(c *gin.Context) {
	h.transitionStream(c, model.StreamStatusEnded)
}

func (h *Handler) transitionStream(c *gin.Context, target model.StreamStatus) {
	var stream model.Stream
	if h.DB.Where("id = ?", c.Param("id")).First(&stream).RowsAffected == 0 {
		abortWithError(c, http.StatusNotFound, utils.ErrorNotFound, "stream not found")
		return
	}
	if stream.OwnerID != currentUserId(c) {
		abortWithError(c, http.StatusForbidden, utils.ErrorPermissionDeny, "not the owner")
		return
	}
	if !stream.Status.CanTransition(target) {
		abortWithError(c, http.StatusConflict, utils.ErrorConflict,
			"cannot go from "+string(stream.Status)+" to "+string(target))
		return
	}

	now := time.Now()
	updates := map[string]interface{}{"status": target}
	switch target {
	case model.StreamStatusLive:
		updates["started_at"] = &now
	case model.StreamStatusEnded:
		updates["ended_at"] = &now
	}
	if err := h.DB.Model(&stream).Updates(updates).Error; err != nil {
		abortInternal(c, err)
		return
	}

	if target == model.StreamStatusEnded && h.Redis != nil {
		if err := h.Redis.ResetStreamViewerCount(stream.Id); err != nil {
			Logger.Log.Warnf("fail to reset viewer count for stream %s: %v", stream.Id, err)
		}
	}

	h.DB.Where("id = ?", stream.Id).First(&stream)
	c.JSON(http.StatusOK, &stream)
}

// JoinStream counts the caller into a live stream's audience.
func (h *Handler) JoinStream(c *gin.Context) {
	var stream model.Stream
	if h.DB.Where("id = ? AND status = ?", c.Param("id"), model.StreamStatusLive).
		First(&stream).RowsAffected == 0 {
		abortWithError(c, http.StatusNotFound, utils.ErrorNotFound, "no such live stream")
		return
	}

	count, err := h.Redis.AddStreamViewer(stream.Id)
	if err != nil {
		abortInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"viewer_count": count})
}

// LeaveStream counts the caller out. The counter never goes negative.
func (h *Handler) LeaveStream(c *gin.Context) {
	streamId := c.Param("id")
	count, err := h.Redis.RemoveStreamViewer(streamId)
	if err != nil {
		abortInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"viewer_count": count})
}

// ListLiveStreams returns the streams currently on air, busiest first.
func (h *Handler) ListLiveStreams(c *gin.Context) {
	var streams []model.Stream
	err := h.DB.Preload("Owner").
		Where("status = ?", model.StreamStatusLive).
		Find(&streams).Error
	if err != nil {
		abortInternal(c, err)
		return
	}

	out := make([]*StreamOutput, 0, len(streams))
	for idx := range streams {
		out = append(out, &StreamOutput{
			Stream:      &streams[idx],
			ViewerCount: h.viewerCount(streams[idx].Id),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ViewerCount > out[j].ViewerCount
	})
	c.JSON(http.StatusOK, out)
}

// GetStream fetches one stream with its viewer count.
func (h *Handler) GetStream(c *gin.Context) {
	var stream model.Stream
	if h.DB.Preload("Owner").Where("id = ?", c.Param("id")).First(&stream).RowsAffected == 0 {
		abortWithError(c, http.StatusNotFound, utils.ErrorNotFound, "stream not found")
		return
	}

	c.JSON(http.StatusOK, &StreamOutput{Stream: &stream, ViewerCount: h.viewerCount(stream.Id)})
}

// viewerCount reads the volatile audience counter, zero when redis is
// unavailable.
func (h *Handler) viewerCount(streamId string) int64 {
	if h.Redis == nil {
		return 0
	}
	count, err := h.Redis.GetStreamViewerCount(streamId)
	if err != nil {
		return 0
	}
	return count
}
