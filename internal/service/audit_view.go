package service

import (
	"fmt"
	"strconv"

	"site-audit-be/internal/dto"
	"site-audit-be/pkg/audit"
	"site-audit-be/pkg/survey"
)

// identificationToken stands in for the iteration token of the
// identification step, which has none.
const identificationToken = "init"

func (s *auditService) toView(sess *audit.Session) *dto.SessionView {
	view := &dto.SessionView{
		ID:                      sess.ID,
		State:                   string(sess.State),
		Actions:                 sess.Actions(),
		LoadError:               sess.LoadError,
		ProjectLabel:            sess.ProjectLabel,
		SubmissionID:            sess.SubmissionID,
		StartedAt:               sess.StartedAt,
		IdentificationCompleted: sess.IdentificationCompleted,
		CurrentSection:          sess.CurrentSection(),
		IterationToken:          sess.IterationToken,
		ShowJustification:       sess.ShowJustification,
		Problems:                sess.Problems,
		Collected:               summarize(sess.CollectedData),
		SubmittedAt:             sess.SubmittedAt,
		UpdatedAt:               sess.UpdatedAt,
	}

	if sess.Project != nil {
		view.Project = s.projectView(sess.Project)
	}
	if sess.State == audit.StatePhaseSelect {
		view.PhaseOptions = s.controller.PhaseOptions(sess)
	}
	if view.CurrentSection != "" {
		view.Questions = s.questionViews(sess)
		view.Answers = make(map[string]survey.Answer, len(sess.CurrentAnswers))
		for id, a := range sess.CurrentAnswers {
			view.Answers[strconv.Itoa(id)] = a
		}
	}
	return view
}

func (s *auditService) questionViews(sess *audit.Session) []dto.QuestionView {
	section := sess.CurrentSection()
	token := sess.IterationToken
	if sess.State == audit.StateIdentification || token == "" {
		token = identificationToken
	}
	hint, hasHint := s.controller.ExpectedPhotos(sess)

	questions := s.controller.VisibleQuestions(sess)
	views := make([]dto.QuestionView, 0, len(questions))
	for _, q := range questions {
		v := dto.QuestionView{
			Key:         WidgetKey(q.ID, section, token),
			ID:          q.ID,
			Text:        q.Text,
			Type:        q.Type,
			Mandatory:   q.Mandatory,
			Description: q.Description,
		}
		if q.Type == survey.TypeSelect {
			v.Options = q.SelectOptions()
		}
		if q.Type == survey.TypePhoto && hasHint {
			v.PhotoHint = &dto.PhotoHint{
				Expected:  hint.Base,
				Detail:    hint.Detail(),
				Breakdown: hint.Breakdown,
			}
		}
		views = append(views, v)
	}
	return views
}

// WidgetKey identifies a rendered question. Repeats of a phase get a new
// iteration token, so their inputs never share state.
func WidgetKey(questionID int, section, iteration string) string {
	return fmt.Sprintf("q_%d_%s_%s", questionID, section, iteration)
}

func (s *auditService) projectView(p survey.Project) *dto.ProjectView {
	groups := make([][]dto.ProjectField, 0, len(s.rules.DisplayGroups))
	for _, group := range s.rules.DisplayGroups {
		fields := make([]dto.ProjectField, 0, len(group))
		for _, field := range group {
			value, ok := p[field]
			if !ok {
				continue
			}
			fields = append(fields, dto.ProjectField{
				Field: field,
				Label: s.rules.Label(field),
				Value: value,
			})
		}
		if len(fields) > 0 {
			groups = append(groups, fields)
		}
	}
	return &dto.ProjectView{
		Label:  p.Label(s.rules.ProjectLabelField),
		Groups: groups,
	}
}

func summarize(collected []survey.PhaseRecord) []dto.PhaseSummary {
	out := make([]dto.PhaseSummary, 0, len(collected))
	for i, rec := range collected {
		sum := dto.PhaseSummary{Index: i, PhaseName: rec.PhaseName}
		for _, a := range rec.Answers {
			if a.IsBlank() {
				continue
			}
			sum.Answers++
			if a.Kind == survey.KindFiles {
				sum.Photos += len(a.Files)
			}
		}
		out = append(out, sum)
	}
	return out
}
