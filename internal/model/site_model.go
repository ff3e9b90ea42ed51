package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Site struct {
	Id        uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Label     string            `gorm:"type:varchar(255);not null;uniqueIndex"`
	Fields    datatypes.JSONMap `gorm:"type:jsonb"`
	Position  int               `gorm:"not null;default:0"`
	CreatedAt time.Time         `gorm:"autoCreateTime"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime"`
}

func (Site) TableName() string {
	return "audit_sites"
}
