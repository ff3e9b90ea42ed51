package contract

import (
	"context"

	"site-audit-be/internal/entity"
	"site-audit-be/internal/repository/specification"
)

type QuestionRepository interface {
	CreateBatch(ctx context.Context, questions []*entity.Question) error
	DeleteAll(ctx context.Context) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Question, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
