package mapper

import (
	"math"
	"strconv"
	"strings"

	"site-audit-be/internal/entity"
	"site-audit-be/internal/model"
	"site-audit-be/pkg/survey"
)

type QuestionMapper struct{}

func NewQuestionMapper() *QuestionMapper {
	return &QuestionMapper{}
}

// ToEntity types a sheet row. Every column has an explicit default: a
// non-numeric id becomes 0, an unknown type becomes text, blank flags are
// false.
func (m *QuestionMapper) ToEntity(r *model.QuestionRow) *entity.Question {
	if r == nil {
		return nil
	}
	id, _ := ParseQuestionID(r.QuestionId)
	return &entity.Question{
		Question: survey.Question{
			ID:                  id,
			Section:             strings.TrimSpace(r.Section),
			Text:                strings.TrimSpace(r.Question),
			Type:                survey.ParseQuestionType(r.Type),
			Mandatory:           IsTruthy(r.Obligatoire),
			Options:             SplitOptions(r.Options),
			Description:         strings.TrimSpace(r.Description),
			ConditionEnabled:    IsTruthy(r.ConditionOn),
			ConditionExpression: strings.TrimSpace(r.ConditionValue),
		},
		RawID:    strings.TrimSpace(r.QuestionId),
		Position: r.Position,
	}
}

func (m *QuestionMapper) ToModel(q *entity.Question) *model.QuestionRow {
	if q == nil {
		return nil
	}
	rawID := q.RawID
	if rawID == "" {
		rawID = strconv.Itoa(q.ID)
	}
	return &model.QuestionRow{
		QuestionId:     rawID,
		Section:        q.Section,
		Question:       q.Text,
		Type:           string(q.Type),
		Obligatoire:    flag(q.Mandatory, "oui", "non"),
		Options:        strings.Join(q.Options, ","),
		Description:    q.Description,
		ConditionOn:    flag(q.ConditionEnabled, "1", "0"),
		ConditionValue: q.ConditionExpression,
		Position:       q.Position,
	}
}

func (m *QuestionMapper) ToEntities(rows []*model.QuestionRow) []*entity.Question {
	entities := make([]*entity.Question, len(rows))
	for i, r := range rows {
		entities[i] = m.ToEntity(r)
	}
	return entities
}

func (m *QuestionMapper) ToModels(questions []*entity.Question) []*model.QuestionRow {
	models := make([]*model.QuestionRow, len(questions))
	for i, q := range questions {
		models[i] = m.ToModel(q)
	}
	return models
}

// ParseQuestionID reads an id cell. Spreadsheet exports often write whole
// numbers as "12.0", which is accepted. Anything else yields 0, false.
func ParseQuestionID(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if id, err := strconv.Atoi(raw); err == nil {
		return id, true
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f == math.Trunc(f) && !math.IsInf(f, 0) {
		return int(f), true
	}
	return 0, false
}

// IsTruthy reads a flag cell: "oui", "yes", "true", "x" and any number
// equal to 1 are true.
func IsTruthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "oui", "yes", "true", "x":
		return true
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		return f == 1
	}
	return false
}

// SplitOptions splits a comma separated options cell.
func SplitOptions(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func flag(v bool, yes, no string) string {
	if v {
		return yes
	}
	return no
}
