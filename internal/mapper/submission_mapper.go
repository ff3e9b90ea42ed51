package mapper

import (
	"encoding/json"
	"fmt"

	"site-audit-be/internal/entity"
	"site-audit-be/internal/model"
	"site-audit-be/pkg/audit"

	"gorm.io/datatypes"
)

type SubmissionMapper struct{}

func NewSubmissionMapper() *SubmissionMapper {
	return &SubmissionMapper{}
}

func (m *SubmissionMapper) ToEntity(s *model.Submission) (*entity.Submission, error) {
	if s == nil {
		return nil, nil
	}
	var phases []audit.FlatPhase
	if len(s.Data) > 0 {
		if err := json.Unmarshal(s.Data, &phases); err != nil {
			return nil, fmt.Errorf("decoding submission %s: %w", s.SubmissionId, err)
		}
	}
	return &entity.Submission{
		Id:            s.Id,
		SubmissionId:  s.SubmissionId,
		AuditorId:     s.AuditorId,
		ProjectLabel:  s.ProjectLabel,
		StartedAt:     s.StartedAt,
		SubmittedAt:   s.SubmittedAt,
		CollectedData: phases,
		CreatedAt:     s.CreatedAt,
	}, nil
}

func (m *SubmissionMapper) ToModel(s *entity.Submission) (*model.Submission, error) {
	if s == nil {
		return nil, nil
	}
	data, err := json.Marshal(s.CollectedData)
	if err != nil {
		return nil, fmt.Errorf("encoding submission %s: %w", s.SubmissionId, err)
	}
	return &model.Submission{
		Id:           s.Id,
		SubmissionId: s.SubmissionId,
		AuditorId:    s.AuditorId,
		ProjectLabel: s.ProjectLabel,
		StartedAt:    s.StartedAt,
		SubmittedAt:  s.SubmittedAt,
		Data:         datatypes.JSON(data),
		CreatedAt:    s.CreatedAt,
	}, nil
}

func (m *SubmissionMapper) ToEntities(subs []*model.Submission) ([]*entity.Submission, error) {
	entities := make([]*entity.Submission, len(subs))
	for i, s := range subs {
		e, err := m.ToEntity(s)
		if err != nil {
			return nil, err
		}
		entities[i] = e
	}
	return entities, nil
}

// FromSubmission converts what the engine hands to its sink.
func (m *SubmissionMapper) FromSubmission(sub audit.Submission) *entity.Submission {
	return &entity.Submission{
		SubmissionId:  sub.SubmissionID,
		AuditorId:     sub.AuditorID,
		ProjectLabel:  sub.ProjectLabel,
		StartedAt:     sub.StartedAt,
		SubmittedAt:   sub.Timestamp,
		CollectedData: sub.CollectedData,
	}
}
