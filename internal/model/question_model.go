package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionRow is one row of the question sheet. Columns are stored as the
// sheet holds them and are only typed when mapped to a survey.Question.
type QuestionRow struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	QuestionId     string    `gorm:"type:varchar(32);not null;index"`
	Section        string    `gorm:"type:varchar(255);not null;index"`
	Question       string    `gorm:"type:text"`
	Type           string    `gorm:"type:varchar(32)"`
	Obligatoire    string    `gorm:"type:varchar(16)"`
	Options        string    `gorm:"type:text"`
	Description    string    `gorm:"type:text"`
	ConditionOn    string    `gorm:"type:varchar(8)"`
	ConditionValue string    `gorm:"type:text"`
	Position       int       `gorm:"not null;default:0;index"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (QuestionRow) TableName() string {
	return "audit_questions"
}
