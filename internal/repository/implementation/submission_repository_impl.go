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
)

type SubmissionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SubmissionMapper
}

func NewSubmissionRepository(db *gorm.DB) contract.SubmissionRepository {
	return &SubmissionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSubmissionMapper(),
	}
}

func (r *SubmissionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SubmissionRepositoryImpl) Create(ctx context.Context, submission *entity.Submission) error {
	m, err := r.mapper.ToModel(submission)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	submission.Id = m.Id
	submission.CreatedAt = m.CreatedAt
	return nil
}

func (r *SubmissionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Submission, error) {
	var m model.Submission
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m)
}

func (r *SubmissionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Submission, error) {
	var models []*model.Submission
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models)
}

func (r *SubmissionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Submission{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
