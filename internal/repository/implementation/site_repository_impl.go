package implementation

import (
	"context"
	"errors"

	"site-audit-be/internal/entity"
	"site-audit-be/internal/mapper"
	"site-audit-be/internal/model"
	"site-audit-be/internal/repository/contract"
	"site-audit-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SiteRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SiteMapper
}

func NewSiteRepository(db *gorm.DB) contract.SiteRepository {
	return &SiteRepositoryImpl{
		db:     db,
		mapper: mapper.NewSiteMapper(""),
	}
}

func (r *SiteRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// Upsert inserts a site or replaces the fields of the site with the same
// label.
func (r *SiteRepositoryImpl) Upsert(ctx context.Context, site *entity.Site) error {
	m := r.mapper.ToModel(site)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "label"}},
		DoUpdates: clause.AssignmentColumns([]string{"fields", "position", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*site = *r.mapper.ToEntity(m)
	return nil
}

func (r *SiteRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Site, error) {
	var m model.Site
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SiteRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Site, error) {
	var models []*model.Site
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *SiteRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Site{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
