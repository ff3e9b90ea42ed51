package entity

import (
	"time"

	"github.com/google/uuid"
)

type Site struct {
	Id        uuid.UUID
	Label     string
	Fields    map[string]string
	Position  int
	CreatedAt time.Time
	UpdatedAt *time.Time
}
