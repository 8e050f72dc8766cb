package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/plaza-social/plaza/model"
	"github.com/plaza-social/plaza/utils"
)

type NewStoryInput struct {
	MediaUrl  string          `json:"media_url" binding:"required"`
	MediaType model.MediaType `json:"media_type" binding:"required"`
}

// StoryReel groups one author's live stories, oldest first, the order
// a client plays them in.
type StoryReel struct {
	Author  *model.User    `json:"author"`
	Stories []*model.Story `json:"stories"`
}

// CreateStory posts an ephemeral story that expires after
// model.StoryTTL.
func (h *Handler) CreateStory(c *gin.Context) {
	var input NewStoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, http.StatusBadRequest, utils.ErrorInvalidArgument, err.Error())
		return
	}
	if input.MediaType != model.MediaTypeImage && input.MediaType != model.MediaTypeVideo {
		abortWithError(c, http.StatusBadRequest, utils.ErrorInvalidArgument, "unknown media type")
		return
	}

	now := time.Now()
	story := model.Story{
		Id:        uuid.New().String(),
		CreatedAt: now,
		AuthorID:  currentUserId(c),
		MediaUrl:  input.MediaUrl,
		MediaType: input.MediaType,
		ExpiresAt: now.Add(model.StoryTTL),
	}
	if err := h.DB.Create(&story).Error; err != nil {
		abortInternal(c, err)
		return
	}
	c.JSON(http.StatusCreated, &story)
}

// ListStoryReels returns the live stories of the caller and everyone
// they follow, grouped per author. Expired stories never show up even
// before the reaper sweeps them.
func (h *Handler) ListStoryReels(c *gin.Context) {
	userId := currentUserId(c)

	followees := h.DB.Model(&model.UserFollow{}).
		Select("followee_id").
		Where("follower_id = ?", userId)

	var stories []model.Story
	err := h.DB.Preload("Author").
		Where("(author_id IN (?) OR author_id = ?) AND expires_at > ?", followees, userId, time.Now()).
		Order("created_at asc").
		Find(&stories).Error
	if err != nil {
		abortInternal(c, err)
		return
	}

	reelByAuthor := map[string]*StoryReel{}
	reels := []*StoryReel{}
	for idx := range stories {
		story := &stories[idx]
		reel, ok := reelByAuthor[story.AuthorID]
		if !ok {
			reel = &StoryReel{Author: &story.Author}
			reelByAuthor[story.AuthorID] = reel
			reels = append(reels, reel)
		}
		reel.Stories = append(reel.Stories, story)
	}
	c.JSON(http.StatusOK, reels)
}

// ViewStory records that the caller watched a story. Watching twice
// counts once.
func (h *Handler) ViewStory(c *gin.Context) {
	var story model.Story
	if h.DB.Where("id = ? AND expires_at > ?", c.Param("id"), time.Now()).
		First(&story).RowsAffected == 0 {
		abortWithError(c, http.StatusNotFound, utils.ErrorNotFound, "story not found")
		return
	}

	userId := currentUserId(c)
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.StoryView{
			StoryID:   story.Id,
			ViewerID:  userId,
			CreatedAt: time.Now(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return tx.Model(&story).
				UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
		}
		return nil
	})
	if err != nil {
		abortInternal(c, err)
		return
	}

	h.DB.Where("id = ?", story.Id).First(&story)
	c.JSON(http.StatusOK, gin.H{"view_count": story.ViewCount})
}

// ListStoryViewers shows the author who watched their story.
func (h *Handler) ListStoryViewers(c *gin.Context) {
	var story model.Story
	if h.DB.Where("id = ?", c.Param("id")).First(&story).RowsAffected == 0 {
		abortWithError(c, http.StatusNotFound, utils.ErrorNotFound, "story not found")
		return
	}
	if story.AuthorID != currentUserId(c) {
		abortWithError(c, http.StatusForbidden, utils.ErrorPermissionDeny, "not the author")
		return
	}

	var viewerIds []string
	if err := h.DB.Model(&model.StoryView{}).
		Where("story_id = ?", story.Id).
		Order("created_at desc").
		Pluck("viewer_id", &viewerIds).Error; err != nil {
		abortInternal(c, err)
		return
	}

	viewers := []model.User{}
	if len(viewerIds) > 0 {
		if err := h.DB.Where("id IN ?", viewerIds).Find(&viewers).Error; err != nil {
			abortInternal(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, viewers)
}

// DeleteStory removes the caller's own story before it expires.
func (h *Handler) DeleteStory(c *gin.Context) {
	var story model.Story
	if h.DB.Where("id = ?", c.Param("id")).First(&story).RowsAffected == 0 {
		abortWithError(c, http.StatusNotFound, utils.ErrorNotFound, "story not found")
		return
	}
	if story.AuthorID != currentUserId(c) {
		abortWithError(c, http.StatusForbidden, utils.ErrorPermissionDeny, "not the author")
		return
	}
	if err := h.DB.Delete(&story).Error; err != nil {
		abortInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
