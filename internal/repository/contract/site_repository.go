package contract

import (
	"context"

	"site-audit-be/internal/entity"
	"site-audit-be/internal/repository/specification"
)

type SiteRepository interface {
	Upsert(ctx context.Context, site *entity.Site) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Site, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Site, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
