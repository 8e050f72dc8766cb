package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/plaza-social/plaza/bot"
	"github.com/plaza-social/plaza/model"
	"github.com/plaza-social/plaza/utils"
)

type NewReportInput struct {
	SubjectType string `json:"subject_type" binding:"required"`
	SubjectID   string `json:"subject_id" binding:"required"`
	Reason      string `json:"reason" binding:"required"`
}

// subjectExists checks the reported entity is real before filing.
func (h *Handler) subjectExists(subjectType string, subjectId string) bool {
	switch subjectType {
	case model.SubjectTypePost:
		return h.DB.Where("id = ?", subjectId).First(&model.Post{}).RowsAffected > 0
	case model.SubjectTypeComment:
		return h.DB.Where("id = ?", subjectId).First(&model.Comment{}).RowsAffected > 0
	case model.SubjectTypeUser:
		return h.DB.Where("id = ?", subjectId).First(&model.User{}).RowsAffected > 0
	default:
		return false
	}
}

// CreateReport files a moderation report and alerts the ops channel.
func (h *Handler) CreateReport(c *gin.Context) {
	var input NewReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, http.StatusBadRequest, utils.ErrorInvalidArgument, err.Error())
		return
	}
	if !h.subjectExists(input.SubjectType, input.SubjectID) {
		abortWithError(c, http.StatusNotFound, utils.ErrorNotFound, "report subject not found")
		return
	}

	report := model.Report{
		Id:          uuid.New().String(),
		CreatedAt:   time.Now(),
		ReporterID:  currentUserId(c),
		SubjectType: input.SubjectType,
		SubjectID:   input.SubjectID,
		Reason:      input.Reason,
		Status:      model.ReportStatusOpen,
	}
	if err := h.DB.Create(&report).Error; err != nil {
		abortInternal(c, err)
		return
	}

	bot.PushReportViaWebhook(report)

	h.publishEvent(&model.Event{
		Type:        model.EventTypeReportFiled,
		ActorID:     report.ReporterID,
		SubjectType: report.SubjectType,
		SubjectID:   report.SubjectID,
	})

	c.JSON(http.StatusCreated, &report)
}

// ListMyReports shows the caller the reports they filed.
func (h *Handler) ListMyReports(c *gin.Context) {
	var reports []model.Report
	err := h.DB.Where("reporter_id = ?", currentUserId(c)).
		Order("created_at desc").Limit(limitQuery(c)).Find(&reports).Error
	if err != nil {
		abortInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}
