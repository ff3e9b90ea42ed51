package audit

import (
	"context"
	"sort"
	"strconv"
	"time"

	"site-audit-be/pkg/survey"
)

// FlatPhase is a phase record reduced to JSON scalars.
type FlatPhase struct {
	PhaseName string                 `json:"phase_name"`
	Answers   map[string]interface{} `json:"answers"`
}

// Submission is what the response sink stores for a finished audit.
type Submission struct {
	SubmissionID  string      `json:"submission_id"`
	AuditorID     string      `json:"auditor_id"`
	Timestamp     time.Time   `json:"timestamp"`
	StartedAt     *time.Time  `json:"started_at,omitempty"`
	ProjectLabel  string      `json:"project_label"`
	CollectedData []FlatPhase `json:"collected_data"`
}

// ResponseSink persists submissions.
type ResponseSink interface {
	Append(ctx context.Context, sub Submission) error
}

// Flatten reduces phase records for handoff: file answers become their
// file name references.
func Flatten(collected []survey.PhaseRecord) []FlatPhase {
	out := make([]FlatPhase, 0, len(collected))
	for _, rec := range collected {
		fp := FlatPhase{PhaseName: rec.PhaseName, Answers: make(map[string]interface{}, len(rec.Answers))}
		for id, a := range rec.Answers {
			fp.Answers[strconv.Itoa(id)] = a.Primitive()
		}
		out = append(out, fp)
	}
	return out
}

// SortedIDs returns the question ids of a store in ascending order.
func SortedIDs(answers survey.Answers) []int {
	ids := make([]int, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
