package audit

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"site-audit-be/internal/pkg/logger"
	"site-audit-be/pkg/survey"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	questions []survey.Question
	sites     []survey.Project
	err       error
	calls     int
}

func (f *fakeSource) LoadQuestions(ctx context.Context) ([]survey.Question, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.questions, nil
}

func (f *fakeSource) LoadSites(ctx context.Context) ([]survey.Project, error) {
	return f.sites, nil
}

type fakeSink struct {
	got []Submission
	err error
}

func (f *fakeSink) Append(ctx context.Context, sub Submission) error {
	if f.err != nil {
		return f.err
	}
	f.got = append(f.got, sub)
	return nil
}

func testSource() *fakeSource {
	return &fakeSource{
		questions: []survey.Question{
			{ID: 1, Section: "Identification", Text: "Auditor", Type: survey.TypeText, Mandatory: true},
			{ID: 5, Section: "Bornes AC", Text: "Installed?", Type: survey.TypeSelect, Options: []string{"", "Oui", "Non"}},
			{ID: 6, Section: "Bornes AC", Text: "Serial", Type: survey.TypeText, Mandatory: true, ConditionEnabled: true, ConditionExpression: "5=Oui"},
			{ID: 30, Section: "Bornes DC", Text: "Photos", Type: survey.TypePhoto},
			{ID: 90, Section: "Meta", Text: "Internal", Type: survey.TypeText},
		},
		sites: []survey.Project{
			{"Intitulé": "Site A", "R [Plan de Déploiement]": "2", "UR [Plan de Déploiement]": "0"},
			{"Intitulé": "Site B"},
		},
	}
}

func testController() *Controller {
	c := NewController(Options{
		Rules: survey.Rules{
			Photo:       map[string][]string{"Bornes DC": {"R [Plan de Déploiement]", "UR [Plan de Déploiement]"}},
			FieldLabels: map[string]string{"R [Plan de Déploiement]": "PDC Rapide"},
		},
		MetaSection: "Meta",
	}, logger.NewNopLogger())
	n := 0
	c.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	c.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	return c
}

// atLoop drives a new session to LoopDecision.
func atLoop(t *testing.T, c *Controller) *Session {
	t.Helper()
	s := NewSession("s1", "auditor-1")
	require.NoError(t, c.LoadSchema(context.Background(), s, testSource()))
	require.NoError(t, c.SelectProject(s, "Site A"))
	require.NoError(t, c.SetAnswers(s, survey.Answers{1: survey.TextAnswer("Jane")}))
	require.NoError(t, c.ValidateIdentification(s))
	return s
}

func TestLoadSchema(t *testing.T) {
	c := testController()

	t.Run("failure stays in SchemaLoad and allows retry", func(t *testing.T) {
		src := testSource()
		src.err = errors.New("sheet offline")
		s := NewSession("s1", "a")

		err := c.LoadSchema(context.Background(), s, src)
		require.ErrorIs(t, err, ErrSchemaUnavailable)
		assert.Equal(t, StateSchemaLoad, s.State)
		assert.Contains(t, s.LoadError, "sheet offline")

		src.err = nil
		require.NoError(t, c.LoadSchema(context.Background(), s, src))
		assert.Equal(t, StateProjectSelect, s.State)
		assert.Empty(t, s.LoadError)
		assert.Equal(t, 2, src.calls)
	})

	t.Run("empty schema is unavailable", func(t *testing.T) {
		s := NewSession("s1", "a")
		err := c.LoadSchema(context.Background(), s, &fakeSource{})
		assert.ErrorIs(t, err, ErrSchemaUnavailable)
	})
}

func TestSelectProject(t *testing.T) {
	c := testController()
	s := NewSession("s1", "a")
	require.NoError(t, c.LoadSchema(context.Background(), s, testSource()))

	err := c.SelectProject(s, "Nowhere")
	require.ErrorIs(t, err, ErrUnknownProject)
	assert.Equal(t, StateProjectSelect, s.State)

	require.NoError(t, c.SelectProject(s, "Site A"))
	assert.Equal(t, StateIdentification, s.State)
	assert.Equal(t, "id-1", s.SubmissionID)
	require.NotNil(t, s.StartedAt)
	assert.Empty(t, s.CurrentAnswers)
}

func TestValidateIdentification(t *testing.T) {
	c := testController()
	s := NewSession("s1", "a")
	require.NoError(t, c.LoadSchema(context.Background(), s, testSource()))
	require.NoError(t, c.SelectProject(s, "Site A"))

	err := c.ValidateIdentification(s)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Len(t, verr.Problems, 1)
	assert.Equal(t, StateIdentification, s.State)
	assert.Empty(t, s.CollectedData)

	require.NoError(t, c.SetAnswers(s, survey.Answers{1: survey.TextAnswer("Jane")}))
	require.NoError(t, c.ValidateIdentification(s))

	assert.Equal(t, StateLoopDecision, s.State)
	assert.True(t, s.IdentificationCompleted)
	require.Len(t, s.CollectedData, 1)
	assert.Equal(t, "Identification", s.CollectedData[0].PhaseName)
	assert.Equal(t, "Jane", s.CollectedData[0].Answers[1].Text)
	assert.Empty(t, s.CurrentAnswers)
	assert.Empty(t, s.Problems)
}

func TestLoopDecisionUnreachableWithoutIdentification(t *testing.T) {
	c := testController()
	s := NewSession("s1", "a")
	require.NoError(t, c.LoadSchema(context.Background(), s, testSource()))
	require.NoError(t, c.SelectProject(s, "Site A"))

	for name, action := range map[string]func(*Session) error{
		"add_phase":    c.AddPhase,
		"finish":       c.Finish,
		"back":         c.Back,
		"cancel_phase": c.CancelPhase,
	} {
		err := action(s)
		assert.ErrorIs(t, err, ErrInvalidTransition, name)
		assert.Equal(t, StateIdentification, s.State, name)
	}
}

func TestPhaseLoop_RepeatsAreAppended(t *testing.T) {
	c := testController()
	s := atLoop(t, c)

	for i, serial := range []string{"SN-1", "SN-2"} {
		require.NoError(t, c.AddPhase(s))
		assert.Equal(t, fmt.Sprintf("id-%d", i+2), s.IterationToken)
		require.NoError(t, c.ChoosePhase(s, "Bornes AC"))
		require.NoError(t, c.SetAnswers(s, survey.Answers{5: survey.TextAnswer("Oui"), 6: survey.TextAnswer(serial)}))
		require.NoError(t, c.ValidatePhase(s))
		assert.Equal(t, StateLoopDecision, s.State)
	}

	require.Len(t, s.CollectedData, 3)
	assert.Equal(t, "Identification", s.CollectedData[0].PhaseName)
	assert.Equal(t, "SN-1", s.CollectedData[1].Answers[6].Text)
	assert.Equal(t, "SN-2", s.CollectedData[2].Answers[6].Text)
}

func TestChoosePhase_Restricted(t *testing.T) {
	c := testController()
	s := atLoop(t, c)
	require.NoError(t, c.AddPhase(s))

	assert.Equal(t, []string{"Bornes AC", "Bornes DC"}, c.PhaseOptions(s))
	for _, name := range []string{"Identification", "Meta", "Unknown"} {
		err := c.ChoosePhase(s, name)
		assert.ErrorIs(t, err, ErrUnknownPhase, name)
		assert.Equal(t, StatePhaseSelect, s.State)
	}
}

func TestCancelAndChangePhase_KeepCollectedData(t *testing.T) {
	c := testController()
	s := atLoop(t, c)
	before := len(s.CollectedData)

	require.NoError(t, c.AddPhase(s))
	require.NoError(t, c.ChoosePhase(s, "Bornes AC"))
	require.NoError(t, c.SetAnswers(s, survey.Answers{5: survey.TextAnswer("Oui")}))
	require.NoError(t, c.CancelPhase(s))
	assert.Equal(t, StateLoopDecision, s.State)
	assert.Len(t, s.CollectedData, before)
	assert.Empty(t, s.CurrentAnswers)
	assert.Empty(t, s.CurrentPhase)

	require.NoError(t, c.AddPhase(s))
	require.NoError(t, c.ChoosePhase(s, "Bornes AC"))
	require.NoError(t, c.SetAnswers(s, survey.Answers{5: survey.TextAnswer("Oui")}))
	require.NoError(t, c.ChangePhase(s))
	assert.Equal(t, StatePhaseSelect, s.State)
	assert.Len(t, s.CollectedData, before)
	assert.Empty(t, s.CurrentAnswers)

	require.NoError(t, c.Back(s))
	assert.Equal(t, StateLoopDecision, s.State)
}

func TestValidatePhase_FailureKeepsStore(t *testing.T) {
	c := testController()
	s := atLoop(t, c)
	require.NoError(t, c.AddPhase(s))
	require.NoError(t, c.ChoosePhase(s, "Bornes AC"))
	require.NoError(t, c.SetAnswers(s, survey.Answers{5: survey.TextAnswer("Oui")}))

	err := c.ValidatePhase(s)
	require.ErrorIs(t, err, ErrValidationFailed)
	assert.Equal(t, StateFillPhase, s.State)
	assert.Equal(t, "Oui", s.CurrentAnswers[5].Text)
	require.Len(t, s.Problems, 1)
	assert.Equal(t, 6, s.Problems[0].QuestionID)
	assert.False(t, s.ShowJustification)
	assert.Len(t, s.CollectedData, 1)

	require.NoError(t, c.SetAnswers(s, survey.Answers{6: survey.TextAnswer("SN-9")}))
	require.NoError(t, c.ValidatePhase(s))
	assert.Len(t, s.CollectedData, 2)
}

func TestValidatePhase_PhotoJustification(t *testing.T) {
	c := testController()
	s := atLoop(t, c)
	require.NoError(t, c.AddPhase(s))
	require.NoError(t, c.ChoosePhase(s, "Bornes DC"))

	exp, ok := c.ExpectedPhotos(s)
	require.True(t, ok)
	assert.Equal(t, 2, exp.Base)

	require.NoError(t, c.AddPhotos(s, 30, survey.FileRef{Name: "a.jpg"}))
	err := c.ValidatePhase(s)
	require.ErrorIs(t, err, ErrValidationFailed)
	assert.True(t, s.ShowJustification)

	visible := c.VisibleQuestions(s)
	require.NotEmpty(t, visible)
	assert.Equal(t, survey.CommentQuestionID, visible[len(visible)-1].ID)

	require.NoError(t, c.SetAnswers(s, survey.Answers{survey.CommentQuestionID: survey.TextAnswer("Second terminal covered")}))
	require.NoError(t, c.ValidatePhase(s))
	require.Len(t, s.CollectedData, 2)
	assert.Equal(t, "Second terminal covered", s.CollectedData[1].Answers[survey.CommentQuestionID].Text)
}

func TestValidatePhase_JustificationHiddenOnceDiscrepancyResolved(t *testing.T) {
	c := testController()
	src := testSource()
	src.questions = append(src.questions,
		survey.Question{ID: 31, Section: "Bornes DC", Text: "Serial", Type: survey.TypeText, Mandatory: true})
	s := NewSession("s1", "auditor-1")
	require.NoError(t, c.LoadSchema(context.Background(), s, src))
	require.NoError(t, c.SelectProject(s, "Site A"))
	require.NoError(t, c.SetAnswers(s, survey.Answers{1: survey.TextAnswer("Jane")}))
	require.NoError(t, c.ValidateIdentification(s))
	require.NoError(t, c.AddPhase(s))
	require.NoError(t, c.ChoosePhase(s, "Bornes DC"))

	hasComment := func() bool {
		for _, q := range c.VisibleQuestions(s) {
			if q.ID == survey.CommentQuestionID {
				return true
			}
		}
		return false
	}

	require.NoError(t, c.AddPhotos(s, 30, survey.FileRef{Name: "image.jpg", Path: "s1/a.jpg"}))
	require.ErrorIs(t, c.ValidatePhase(s), ErrValidationFailed)
	assert.True(t, s.ShowJustification)
	assert.True(t, hasComment())

	// Second photo matches the expected count; only the serial is missing.
	require.NoError(t, c.AddPhotos(s, 30, survey.FileRef{Name: "image.jpg", Path: "s1/b.jpg"}))
	err := c.ValidatePhase(s)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Problems, 1)
	assert.Equal(t, 31, verr.Problems[0].QuestionID)
	assert.False(t, s.ShowJustification)
	assert.False(t, hasComment())
}

func TestValidatePhase_StaleJustificationDropped(t *testing.T) {
	c := testController()
	s := atLoop(t, c)
	require.NoError(t, c.AddPhase(s))
	require.NoError(t, c.ChoosePhase(s, "Bornes DC"))
	require.NoError(t, c.AddPhotos(s, 30, survey.FileRef{Name: "a.jpg"}, survey.FileRef{Name: "b.jpg"}))
	require.NoError(t, c.SetAnswers(s, survey.Answers{survey.CommentQuestionID: survey.TextAnswer("old")}))

	require.NoError(t, c.ValidatePhase(s))
	assert.NotContains(t, s.CollectedData[1].Answers, survey.CommentQuestionID)
}

func TestValidatePhase_InternalErrorIsAProblem(t *testing.T) {
	c := testController()
	s := atLoop(t, c)
	require.NoError(t, c.AddPhase(s))
	require.NoError(t, c.ChoosePhase(s, "Bornes AC"))
	s.CurrentAnswers[5] = survey.Answer{Kind: "corrupt"}

	err := c.ValidatePhase(s)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Problems, 1)
	assert.Contains(t, verr.Problems[0].Message, "Validation error")
	assert.True(t, s.ShowJustification)
	assert.Equal(t, StateFillPhase, s.State)
}

func TestSetAnswers_Rejections(t *testing.T) {
	c := testController()
	s := atLoop(t, c)
	require.NoError(t, c.AddPhase(s))
	require.NoError(t, c.ChoosePhase(s, "Bornes AC"))

	tests := []struct {
		name    string
		answers survey.Answers
		want    error
	}{
		{"other section", survey.Answers{1: survey.TextAnswer("x")}, ErrUnknownQuestion},
		{"unknown id", survey.Answers{999: survey.TextAnswer("x")}, ErrUnknownQuestion},
		{"not an option", survey.Answers{5: survey.TextAnswer("Maybe")}, ErrInvalidAnswer},
		{"number for text", survey.Answers{6: survey.NumberAnswer(1)}, ErrInvalidAnswer},
		{"mixed batch", survey.Answers{5: survey.TextAnswer("Oui"), 6: survey.NumberAnswer(1)}, ErrInvalidAnswer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.SetAnswers(s, tt.answers)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, s.CurrentAnswers)
		})
	}

	err := c.AddPhotos(s, 5, survey.FileRef{Name: "x.jpg"})
	assert.ErrorIs(t, err, ErrInvalidAnswer)
}

func TestRemovePhoto(t *testing.T) {
	c := testController()
	s := atLoop(t, c)
	require.NoError(t, c.AddPhase(s))
	require.NoError(t, c.ChoosePhase(s, "Bornes DC"))
	require.NoError(t, c.AddPhotos(s, 30,
		survey.FileRef{Name: "a.jpg", Path: "s1/aaa.jpg"},
		survey.FileRef{Name: "b.jpg", Path: "s1/bbb.jpg"}))

	removed, err := c.RemovePhoto(s, 30, "aaa.jpg")
	require.NoError(t, err)
	assert.Equal(t, "s1/aaa.jpg", removed.Path)
	assert.Equal(t, []string{"b.jpg"}, s.CurrentAnswers[30].FileNames())

	_, err = c.RemovePhoto(s, 31, "bbb.jpg")
	assert.ErrorIs(t, err, ErrUnknownQuestion)
	_, err = c.RemovePhoto(s, 30, "b.jpg")
	assert.ErrorIs(t, err, ErrInvalidAnswer)
}

func TestRemovePhoto_SameClientNameRemovesOnlyOne(t *testing.T) {
	c := testController()
	s := atLoop(t, c)
	require.NoError(t, c.AddPhase(s))
	require.NoError(t, c.ChoosePhase(s, "Bornes DC"))
	require.NoError(t, c.AddPhotos(s, 30,
		survey.FileRef{Name: "image.jpg", Path: "s1/aaa.jpg"},
		survey.FileRef{Name: "image.jpg", Path: "s1/bbb.jpg"}))

	removed, err := c.RemovePhoto(s, 30, "bbb.jpg")
	require.NoError(t, err)
	assert.Equal(t, "s1/bbb.jpg", removed.Path)

	left := s.CurrentAnswers[30].Files
	require.Len(t, left, 1)
	assert.Equal(t, "s1/aaa.jpg", left[0].Path)
}

func TestVisibleQuestions(t *testing.T) {
	c := testController()
	s := atLoop(t, c)
	require.NoError(t, c.AddPhase(s))
	require.NoError(t, c.ChoosePhase(s, "Bornes AC"))

	ids := func() []int {
		var out []int
		for _, q := range c.VisibleQuestions(s) {
			out = append(out, q.ID)
		}
		return out
	}

	assert.Equal(t, []int{5}, ids())
	require.NoError(t, c.SetAnswers(s, survey.Answers{5: survey.TextAnswer("Oui")}))
	assert.Equal(t, []int{5, 6}, ids())
	require.NoError(t, c.SetAnswers(s, survey.Answers{5: survey.TextAnswer("Non")}))
	assert.Equal(t, []int{5}, ids())
}

func TestFinishAndSubmit(t *testing.T) {
	c := testController()
	s := atLoop(t, c)
	sink := &fakeSink{}

	_, err := c.Submit(context.Background(), s, sink)
	require.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, c.Finish(s))
	assert.Equal(t, StateFinished, s.State)

	sink.err = errors.New("db down")
	_, err = c.Submit(context.Background(), s, sink)
	require.ErrorIs(t, err, ErrPersistenceFailed)
	assert.Nil(t, s.SubmittedAt)
	assert.Len(t, s.CollectedData, 1)

	sink.err = nil
	sub, err := c.Submit(context.Background(), s, sink)
	require.NoError(t, err)
	require.Len(t, sink.got, 1)
	assert.Equal(t, s.SubmissionID, sub.SubmissionID)
	assert.Equal(t, "Site A", sub.ProjectLabel)
	assert.Equal(t, "Jane", sub.CollectedData[0].Answers["1"])
	assert.NotNil(t, s.SubmittedAt)

	_, err = c.Submit(context.Background(), s, sink)
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	assert.Len(t, sink.got, 1)
}

func TestReset(t *testing.T) {
	c := testController()
	s := atLoop(t, c)
	require.NoError(t, c.Finish(s))

	c.Reset(s)

	assert.Equal(t, "s1", s.ID)
	assert.Equal(t, "auditor-1", s.AuditorID)
	assert.Equal(t, StateSchemaLoad, s.State)
	assert.Nil(t, s.Catalog)
	assert.Empty(t, s.CollectedData)
	assert.False(t, s.IdentificationCompleted)
}

func TestFlatten(t *testing.T) {
	flat := Flatten([]survey.PhaseRecord{{
		PhaseName: "Bornes DC",
		Answers: survey.Answers{
			30: survey.FilesAnswer(survey.FileRef{Name: "a.jpg", Path: "/tmp/a"}, survey.FileRef{Name: "b.jpg"}),
			31: survey.FilesAnswer(survey.FileRef{Name: "c.jpg"}),
			32: survey.NumberAnswer(3),
			33: survey.TextAnswer("ok"),
		},
	}})

	require.Len(t, flat, 1)
	assert.Equal(t, "Fichiers: a.jpg, b.jpg", flat[0].Answers["30"])
	assert.Equal(t, "Fichier: c.jpg", flat[0].Answers["31"])
	assert.Equal(t, float64(3), flat[0].Answers["32"])
	assert.Equal(t, "ok", flat[0].Answers["33"])
}

func TestSessionActions(t *testing.T) {
	s := NewSession("s", "a")
	assert.Equal(t, []string{"retry_schema", "restart"}, s.Actions())

	s.State = StateFinished
	assert.Equal(t, []string{"submit", "export_csv", "export_zip", "restart"}, s.Actions())

	now := time.Now()
	s.SubmittedAt = &now
	assert.Equal(t, []string{"export_csv", "export_zip", "restart"}, s.Actions())
}
