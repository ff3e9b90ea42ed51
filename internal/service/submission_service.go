package service

import (
	"context"
	"fmt"

	"site-audit-be/internal/dto"
	"site-audit-be/internal/entity"
	"site-audit-be/internal/mapper"
	"site-audit-be/internal/pkg/logger"
	"site-audit-be/internal/repository/specification"
	"site-audit-be/internal/repository/unitofwork"
	"site-audit-be/pkg/audit"
)

const submissionModule = "SUBMISSION"

// ISubmissionService is the response sink and the read side of submitted
// audits.
type ISubmissionService interface {
	audit.ResponseSink
	List(ctx context.Context, auditorID string, req *dto.ListSubmissionsRequest) (*dto.SubmissionListResponse, error)
	Show(ctx context.Context, auditorID, submissionID string) (*dto.SubmissionResponse, error)
}

type submissionService struct {
	uowFactory unitofwork.RepositoryFactory
	mapper     *mapper.SubmissionMapper
	logger     logger.ILogger
}

func NewSubmissionService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) ISubmissionService {
	return &submissionService{
		uowFactory: uowFactory,
		mapper:     mapper.NewSubmissionMapper(),
		logger:     log,
	}
}

// Append stores the submission once. A row with the same submission id
// means an earlier attempt succeeded, so it is not an error.
func (s *submissionService) Append(ctx context.Context, sub audit.Submission) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			uow.Rollback()
			panic(r)
		}
	}()

	repo := uow.SubmissionRepository()
	existing, err := repo.FindOne(ctx, specification.BySubmissionID{SubmissionID: sub.SubmissionID})
	if err != nil {
		uow.Rollback()
		return err
	}
	if existing != nil {
		uow.Rollback()
		s.logger.Warn(submissionModule, "Submission already stored", map[string]interface{}{
			"submission_id": sub.SubmissionID,
		})
		return nil
	}

	if err := repo.Create(ctx, s.mapper.FromSubmission(sub)); err != nil {
		uow.Rollback()
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.logger.Info(submissionModule, "Submission stored", map[string]interface{}{
		"submission_id": sub.SubmissionID,
		"project":       sub.ProjectLabel,
		"phases":        len(sub.CollectedData),
	})
	return nil
}

func (s *submissionService) List(ctx context.Context, auditorID string, req *dto.ListSubmissionsRequest) (*dto.SubmissionListResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.SubmissionRepository()

	filters := []specification.Specification{specification.ByAuditorID{AuditorID: auditorID}}
	if req.Project != "" {
		filters = append(filters, specification.ByProjectLabel{Label: req.Project})
	}

	total, err := repo.Count(ctx, filters...)
	if err != nil {
		return nil, err
	}

	specs := append(filters,
		specification.OrderBy{Field: "submitted_at", Desc: true},
		specification.Pagination{Limit: req.Limit, Offset: req.Offset},
	)
	subs, err := repo.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	items := make([]dto.SubmissionResponse, 0, len(subs))
	for _, sub := range subs {
		items = append(items, toSubmissionResponse(sub, false))
	}
	return &dto.SubmissionListResponse{Items: items, Total: total}, nil
}

func (s *submissionService) Show(ctx context.Context, auditorID, submissionID string) (*dto.SubmissionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sub, err := uow.SubmissionRepository().FindOne(ctx,
		specification.BySubmissionID{SubmissionID: submissionID},
		specification.ByAuditorID{AuditorID: auditorID},
	)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, fmt.Errorf("submission %s: %w", submissionID, ErrSubmissionNotFound)
	}
	res := toSubmissionResponse(sub, true)
	return &res, nil
}

func toSubmissionResponse(sub *entity.Submission, withData bool) dto.SubmissionResponse {
	res := dto.SubmissionResponse{
		SubmissionID: sub.SubmissionId,
		AuditorID:    sub.AuditorId,
		ProjectLabel: sub.ProjectLabel,
		StartedAt:    sub.StartedAt,
		SubmittedAt:  sub.SubmittedAt,
	}
	if withData {
		res.CollectedData = sub.CollectedData
	}
	return res
}
