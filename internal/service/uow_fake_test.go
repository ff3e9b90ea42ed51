package service

import (
	"context"

	"site-audit-be/internal/entity"
	"site-audit-be/internal/repository/contract"
	"site-audit-be/internal/repository/specification"
	"site-audit-be/internal/repository/unitofwork"
)

// fakeUoW serves in-memory repositories. Specifications are ignored except
// BySubmissionID, which is all the services filter on in these tests.
type fakeUoW struct {
	questions   *fakeQuestionRepo
	sites       *fakeSiteRepo
	submissions *fakeSubmissionRepo
	commits     int
	rollbacks   int
}

func (f *fakeUoW) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f }
func (f *fakeUoW) Begin(ctx context.Context) error                           { return nil }
func (f *fakeUoW) Commit() error                                             { f.commits++; return nil }
func (f *fakeUoW) Rollback() error                                           { f.rollbacks++; return nil }
func (f *fakeUoW) QuestionRepository() contract.QuestionRepository           { return f.questions }
func (f *fakeUoW) SiteRepository() contract.SiteRepository                   { return f.sites }
func (f *fakeUoW) SubmissionRepository() contract.SubmissionRepository       { return f.submissions }

type fakeQuestionRepo struct {
	rows  []*entity.Question
	err   error
	reads int
}

func (r *fakeQuestionRepo) CreateBatch(ctx context.Context, q []*entity.Question) error {
	r.rows = append(r.rows, q...)
	return nil
}
func (r *fakeQuestionRepo) DeleteAll(ctx context.Context) error { r.rows = nil; return nil }
func (r *fakeQuestionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Question, error) {
	r.reads++
	return r.rows, r.err
}
func (r *fakeQuestionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.rows)), nil
}

type fakeSiteRepo struct {
	sites []*entity.Site
	reads int
}

func (r *fakeSiteRepo) Upsert(ctx context.Context, s *entity.Site) error {
	r.sites = append(r.sites, s)
	return nil
}
func (r *fakeSiteRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Site, error) {
	return nil, nil
}
func (r *fakeSiteRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Site, error) {
	r.reads++
	return r.sites, nil
}
func (r *fakeSiteRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.sites)), nil
}

type fakeSubmissionRepo struct {
	rows []*entity.Submission
}

func (r *fakeSubmissionRepo) Create(ctx context.Context, s *entity.Submission) error {
	r.rows = append(r.rows, s)
	return nil
}
func (r *fakeSubmissionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Submission, error) {
	for _, spec := range specs {
		if by, ok := spec.(specification.BySubmissionID); ok {
			for _, row := range r.rows {
				if row.SubmissionId == by.SubmissionID {
					return row, nil
				}
			}
			return nil, nil
		}
	}
	return nil, nil
}
func (r *fakeSubmissionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Submission, error) {
	return r.rows, nil
}
func (r *fakeSubmissionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.rows)), nil
}

func newFakeUoW() *fakeUoW {
	return &fakeUoW{
		questions:   &fakeQuestionRepo{},
		sites:       &fakeSiteRepo{},
		submissions: &fakeSubmissionRepo{},
	}
}
