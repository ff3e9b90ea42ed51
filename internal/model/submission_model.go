package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Submission is one appended audit. Data holds the flattened phase records
// as JSON.
type Submission struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SubmissionId string         `gorm:"type:varchar(64);not null;uniqueIndex"`
	AuditorId    string         `gorm:"type:varchar(64);index"`
	ProjectLabel string         `gorm:"type:varchar(255);index"`
	StartedAt    *time.Time
	SubmittedAt  time.Time      `gorm:"not null;index"`
	Data         datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
}

func (Submission) TableName() string {
	return "audit_submissions"
}
