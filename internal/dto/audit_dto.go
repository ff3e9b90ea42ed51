package dto

import (
	"encoding/json"
	"time"

	"site-audit-be/pkg/survey"
)

type SelectProjectRequest struct {
	Label string `json:"label" validate:"required"`
}

// SaveAnswersRequest maps question ids to raw JSON values. Values are typed
// against the schema: numbers for number questions, strings otherwise.
// Photos go through the upload endpoint.
type SaveAnswersRequest struct {
	Answers map[string]json.RawMessage `json:"answers" validate:"required,min=1"`
}

type ChoosePhaseRequest struct {
	Phase string `json:"phase" validate:"required"`
}

type ListSubmissionsRequest struct {
	Project string `query:"project"`
	Limit   int    `query:"limit" validate:"min=1,max=200"`
	Offset  int    `query:"offset" validate:"min=0"`
}

type SessionView struct {
	ID                      string                   `json:"id"`
	State                   string                   `json:"state"`
	Actions                 []string                 `json:"actions"`
	LoadError               string                   `json:"load_error,omitempty"`
	ProjectLabel            string                   `json:"project_label,omitempty"`
	Project                 *ProjectView             `json:"project,omitempty"`
	SubmissionID            string                   `json:"submission_id,omitempty"`
	StartedAt               *time.Time               `json:"started_at,omitempty"`
	IdentificationCompleted bool                     `json:"identification_completed"`
	CurrentSection          string                   `json:"current_section,omitempty"`
	IterationToken          string                   `json:"iteration_token,omitempty"`
	Questions               []QuestionView           `json:"questions,omitempty"`
	Answers                 map[string]survey.Answer `json:"answers,omitempty"`
	ShowJustification       bool                     `json:"show_justification"`
	Problems                []survey.Problem         `json:"problems,omitempty"`
	PhaseOptions            []string                 `json:"phase_options,omitempty"`
	Collected               []PhaseSummary           `json:"collected"`
	SubmittedAt             *time.Time               `json:"submitted_at,omitempty"`
	UpdatedAt               time.Time                `json:"updated_at"`
}

type QuestionView struct {
	Key         string              `json:"key"`
	ID          int                 `json:"id"`
	Text        string              `json:"question"`
	Type        survey.QuestionType `json:"type"`
	Mandatory   bool                `json:"mandatory"`
	Description string              `json:"description,omitempty"`
	Options     []string            `json:"options,omitempty"`
	PhotoHint   *PhotoHint          `json:"photo_hint,omitempty"`
}

// PhotoHint is the expected photo count shown beside a photo question.
type PhotoHint struct {
	Expected  int                 `json:"expected"`
	Detail    string              `json:"detail"`
	Breakdown []survey.FieldCount `json:"breakdown"`
}

type PhaseSummary struct {
	Index     int    `json:"index"`
	PhaseName string `json:"phase_name"`
	Answers   int    `json:"answers"`
	Photos    int    `json:"photos"`
}

type ProjectView struct {
	Label  string           `json:"label"`
	Groups [][]ProjectField `json:"groups"`
}

type ProjectField struct {
	Field string `json:"field"`
	Label string `json:"label"`
	Value string `json:"value"`
}

type SubmissionResponse struct {
	SubmissionID  string      `json:"submission_id"`
	AuditorID     string      `json:"auditor_id"`
	ProjectLabel  string      `json:"project_label"`
	StartedAt     *time.Time  `json:"started_at,omitempty"`
	SubmittedAt   time.Time   `json:"submitted_at"`
	CollectedData interface{} `json:"collected_data,omitempty"`
}

type SubmissionListResponse struct {
	Items []SubmissionResponse `json:"items"`
	Total int64                `json:"total"`
}

// ArchiveSubmissionMessage is published in process after a submit.
type ArchiveSubmissionMessage struct {
	SubmissionID string    `json:"submission_id"`
	ProjectLabel string    `json:"project_label"`
	SubmittedAt  time.Time `json:"submitted_at"`
	CSV          []byte    `json:"csv"`
}
