package unitofwork

import (
	"context"

	"site-audit-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	QuestionRepository() contract.QuestionRepository
	SiteRepository() contract.SiteRepository
	SubmissionRepository() contract.SubmissionRepository
}
