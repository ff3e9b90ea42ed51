package mapper

import (
	"fmt"
	"time"

	"site-audit-be/internal/entity"
	"site-audit-be/internal/model"
	"site-audit-be/pkg/survey"

	"gorm.io/datatypes"
)

type SiteMapper struct {
	labelField string
}

// NewSiteMapper builds a mapper that copies the site label into labelField
// of the project record.
func NewSiteMapper(labelField string) *SiteMapper {
	if labelField == "" {
		labelField = survey.ProjectLabelField
	}
	return &SiteMapper{labelField: labelField}
}

func (m *SiteMapper) ToEntity(s *model.Site) *entity.Site {
	if s == nil {
		return nil
	}
	fields := make(map[string]string, len(s.Fields))
	for k, v := range s.Fields {
		fields[k] = cellString(v)
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.Site{
		Id:        s.Id,
		Label:     s.Label,
		Fields:    fields,
		Position:  s.Position,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *SiteMapper) ToModel(s *entity.Site) *model.Site {
	if s == nil {
		return nil
	}
	fields := make(datatypes.JSONMap, len(s.Fields))
	for k, v := range s.Fields {
		fields[k] = v
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.Site{
		Id:        s.Id,
		Label:     s.Label,
		Fields:    fields,
		Position:  s.Position,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *SiteMapper) ToEntities(sites []*model.Site) []*entity.Site {
	entities := make([]*entity.Site, len(sites))
	for i, s := range sites {
		entities[i] = m.ToEntity(s)
	}
	return entities
}

// ToProject returns the project record the engine works with.
func (m *SiteMapper) ToProject(s *entity.Site) survey.Project {
	p := make(survey.Project, len(s.Fields)+1)
	for k, v := range s.Fields {
		p[k] = v
	}
	if p[m.labelField] == "" {
		p[m.labelField] = s.Label
	}
	return p
}

// cellString renders a JSON cell the way a sheet displays it. Whole numbers
// lose their ".0".
func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprint(t)
	}
}
