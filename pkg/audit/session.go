// Package audit drives an audit session through identification, repeatable
// phases and completion.
package audit

import (
	"time"

	"site-audit-be/pkg/survey"
)

// State is a step of the audit workflow.
type State string

const (
	StateSchemaLoad     State = "SCHEMA_LOAD"
	StateProjectSelect  State = "PROJECT_SELECT"
	StateIdentification State = "IDENTIFICATION"
	StateLoopDecision   State = "LOOP_DECISION"
	StatePhaseSelect    State = "PHASE_SELECT"
	StateFillPhase      State = "FILL_PHASE"
	StateFinished       State = "FINISHED"
)

// Session is the state of one auditor's audit. It has a single writer: the
// Controller, for the duration of one action.
type Session struct {
	ID        string `json:"id"`
	AuditorID string `json:"auditor_id"`
	State     State  `json:"state"`

	// Schema snapshot taken at load time.
	Catalog *survey.Catalog  `json:"catalog,omitempty"`
	Sites   []survey.Project `json:"sites,omitempty"`

	Project      survey.Project `json:"project,omitempty"`
	ProjectLabel string         `json:"project_label,omitempty"`
	SubmissionID string         `json:"submission_id,omitempty"`
	StartedAt    *time.Time     `json:"started_at,omitempty"`

	CollectedData  []survey.PhaseRecord `json:"collected_data"`
	CurrentAnswers survey.Answers       `json:"current_answers"`
	CurrentPhase   string               `json:"current_phase,omitempty"`

	IdentificationCompleted bool   `json:"identification_completed"`
	IterationToken          string `json:"iteration_token,omitempty"`
	ShowJustification       bool   `json:"show_justification"`

	// Problems of the last failed validation, shown on the next render.
	Problems  []survey.Problem `json:"problems,omitempty"`
	LoadError string           `json:"load_error,omitempty"`

	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewSession returns a session in the initial state.
func NewSession(id, auditorID string) *Session {
	return &Session{
		ID:             id,
		AuditorID:      auditorID,
		State:          StateSchemaLoad,
		CurrentAnswers: survey.Answers{},
	}
}

// CurrentSection is the section whose answers are being collected, or "".
func (s *Session) CurrentSection() string {
	switch s.State {
	case StateIdentification:
		if s.Catalog != nil {
			return s.Catalog.IdentificationSection()
		}
	case StateFillPhase:
		return s.CurrentPhase
	}
	return ""
}

// CombinedAnswers folds committed phases with the in-progress store.
func (s *Session) CombinedAnswers() survey.Answers {
	return survey.Combine(s.CollectedData, s.CurrentAnswers)
}

// Actions lists the actions the session accepts in its current state.
// Restart is always allowed.
func (s *Session) Actions() []string {
	var actions []string
	switch s.State {
	case StateSchemaLoad:
		actions = []string{"retry_schema"}
	case StateProjectSelect:
		actions = []string{"select_project"}
	case StateIdentification:
		actions = []string{"save_answers", "upload_photo", "validate_identification"}
	case StateLoopDecision:
		actions = []string{"add_phase", "finish"}
	case StatePhaseSelect:
		actions = []string{"choose_phase", "back"}
	case StateFillPhase:
		actions = []string{"save_answers", "upload_photo", "validate_phase", "change_phase", "cancel_phase"}
	case StateFinished:
		if s.SubmittedAt == nil {
			actions = append(actions, "submit")
		}
		actions = append(actions, "export_csv", "export_zip")
	}
	return append(actions, "restart")
}

func (s *Session) clearTemp() {
	s.CurrentAnswers = survey.Answers{}
	s.CurrentPhase = ""
	s.ShowJustification = false
	s.Problems = nil
}

func (s *Session) ensureStore() {
	if s.CurrentAnswers == nil {
		s.CurrentAnswers = survey.Answers{}
	}
}
