package model

import (
	"time"

	"gorm.io/gorm"
)

type ReportStatus string

const (
	ReportStatusOpen     ReportStatus = "open"
	ReportStatusResolved ReportStatus = "resolved"
)

// Report subject types accepted by the moderation endpoint.
const (
	SubjectTypePost    = "post"
	SubjectTypeComment = "comment"
	SubjectTypeUser    = "user"
)

/*

Report is a user filed moderation report against a post, comment or
user. Filing one also pushes an alert to the ops slack channel,
best-effort.

*/

type Report struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt

	ReporterID  string
	Reporter    User
	SubjectType string
	SubjectID   string
	Reason      string

	Status ReportStatus
}
