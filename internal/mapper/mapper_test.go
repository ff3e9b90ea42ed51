package mapper

import (
	"testing"
	"time"

	"site-audit-be/internal/entity"
	"site-audit-be/internal/model"
	"site-audit-be/pkg/audit"
	"site-audit-be/pkg/survey"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestQuestionMapper_ToEntity(t *testing.T) {
	m := NewQuestionMapper()

	q := m.ToEntity(&model.QuestionRow{
		QuestionId:     " 12.0 ",
		Section:        " Bornes DC ",
		Question:       "Photo de la borne",
		Type:           "Photo",
		Obligatoire:    "OUI",
		Options:        "",
		ConditionOn:    "1",
		ConditionValue: `"5=Oui"`,
		Position:       7,
	})

	assert.Equal(t, 12, q.ID)
	assert.Equal(t, "Bornes DC", q.Section)
	assert.Equal(t, survey.TypePhoto, q.Type)
	assert.True(t, q.Mandatory)
	assert.Nil(t, q.Options)
	assert.True(t, q.ConditionEnabled)
	assert.Equal(t, `"5=Oui"`, q.ConditionExpression)
	assert.Equal(t, "12.0", q.RawID)
	assert.Equal(t, 7, q.Position)
}

func TestQuestionMapper_Defaults(t *testing.T) {
	q := NewQuestionMapper().ToEntity(&model.QuestionRow{QuestionId: "abc", Section: "S"})

	assert.Equal(t, 0, q.ID)
	assert.Equal(t, "abc", q.RawID)
	assert.Equal(t, survey.TypeText, q.Type)
	assert.False(t, q.Mandatory)
	assert.False(t, q.ConditionEnabled)
}

func TestQuestionMapper_RoundTrip(t *testing.T) {
	m := NewQuestionMapper()
	in := &entity.Question{Question: survey.Question{
		ID: 5, Section: "Général", Text: "Accès", Type: survey.TypeSelect,
		Mandatory: true, Options: []string{"", "Oui", "Non"},
	}}

	row := m.ToModel(in)
	assert.Equal(t, "5", row.QuestionId)
	assert.Equal(t, "oui", row.Obligatoire)
	assert.Equal(t, ",Oui,Non", row.Options)
	assert.Equal(t, "0", row.ConditionOn)

	out := m.ToEntity(row)
	assert.Equal(t, in.Question, out.Question)
}

func TestParseQuestionID(t *testing.T) {
	tests := []struct {
		raw  string
		want int
		ok   bool
	}{
		{"7", 7, true},
		{" 42 ", 42, true},
		{"3.0", 3, true},
		{"3.5", 0, false},
		{"", 0, false},
		{"Q1", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseQuestionID(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestIsTruthy(t *testing.T) {
	for _, v := range []string{"oui", "Oui ", "yes", "TRUE", "x", "1", "1.0"} {
		assert.True(t, IsTruthy(v), v)
	}
	for _, v := range []string{"", "non", "0", "2", "no"} {
		assert.False(t, IsTruthy(v), v)
	}
}

func TestSiteMapper_ToProject(t *testing.T) {
	m := NewSiteMapper("")
	site := m.ToEntity(&model.Site{
		Label: "Parking Nord",
		Fields: datatypes.JSONMap{
			"R [Plan de Déploiement]": float64(2),
			"L [Plan de Déploiement]": "1,5",
			"Commentaire":             nil,
		},
	})

	p := m.ToProject(site)
	assert.Equal(t, "Parking Nord", p.Label(""))
	assert.Equal(t, "2", p["R [Plan de Déploiement]"])
	assert.Equal(t, "1,5", p["L [Plan de Déploiement]"])
	assert.Equal(t, "", p["Commentaire"])
}

func TestSubmissionMapper_RoundTrip(t *testing.T) {
	m := NewSubmissionMapper()
	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	e := m.FromSubmission(audit.Submission{
		SubmissionID: "sub-1",
		AuditorID:    "auditor-1",
		Timestamp:    started.Add(time.Hour),
		StartedAt:    &started,
		ProjectLabel: "Parking Nord",
		CollectedData: []audit.FlatPhase{
			{PhaseName: "Identification", Answers: map[string]interface{}{"1": "Dupont"}},
		},
	})

	row, err := m.ToModel(e)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"phase_name":"Identification","answers":{"1":"Dupont"}}]`, string(row.Data))

	back, err := m.ToEntity(row)
	require.NoError(t, err)
	assert.Equal(t, e.CollectedData, back.CollectedData)
	assert.Equal(t, "sub-1", back.SubmissionId)
	assert.Equal(t, &started, back.StartedAt)
}

func TestSubmissionMapper_CorruptData(t *testing.T) {
	_, err := NewSubmissionMapper().ToEntity(&model.Submission{SubmissionId: "x", Data: datatypes.JSON(`{`)})
	assert.Error(t, err)
}
