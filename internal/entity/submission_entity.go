package entity

import (
	"time"

	"site-audit-be/pkg/audit"

	"github.com/google/uuid"
)

type Submission struct {
	Id            uuid.UUID
	SubmissionId  string
	AuditorId     string
	ProjectLabel  string
	StartedAt     *time.Time
	SubmittedAt   time.Time
	CollectedData []audit.FlatPhase
	CreatedAt     time.Time
}
