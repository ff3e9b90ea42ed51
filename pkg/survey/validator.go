package survey

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownAnswerKind is returned for a stored answer the engine cannot read.
	ErrUnknownAnswerKind = errors.New("unknown answer kind")
	// ErrInternalValidation wraps any unexpected failure during validation.
	ErrInternalValidation = errors.New("internal validation error")
)

// Problem is one reason a section is incomplete.
type Problem struct {
	QuestionID int    `json:"question_id"`
	Message    string `json:"message"`
}

func (p Problem) String() string {
	return p.Message
}

// PhotoDiscrepancy describes a mismatch between expected and uploaded photos.
type PhotoDiscrepancy struct {
	Section       string `json:"section"`
	Expected      int    `json:"expected"`
	Actual        int    `json:"actual"`
	VisiblePhotos int    `json:"visible_photos"`
	Detail        string `json:"detail"`
}

func (d PhotoDiscrepancy) String() string {
	return fmt.Sprintf("Photo count mismatch for '%s': expected %d (%s | visible photo questions: %d -> adjusted total: %d), received %d.",
		d.Section, d.Expected, d.Detail, d.VisiblePhotos, d.Expected, d.Actual)
}

// Result is the outcome of a section validation. Err is set only for an
// engine failure, never for missing answers.
type Result struct {
	Problems    []Problem         `json:"problems"`
	Discrepancy *PhotoDiscrepancy `json:"discrepancy,omitempty"`
	Err         error             `json:"-"`
}

// OK reports a clean validation.
func (r Result) OK() bool {
	return r.Err == nil && len(r.Problems) == 0
}

// NeedsJustification reports whether a problem points at the comment question.
func (r Result) NeedsJustification() bool {
	for _, p := range r.Problems {
		if p.QuestionID == CommentQuestionID {
			return true
		}
	}
	return false
}

// Messages returns the problems as plain strings, in order.
func (r Result) Messages() []string {
	out := make([]string, 0, len(r.Problems))
	for _, p := range r.Problems {
		out = append(out, p.Message)
	}
	return out
}

// ValidateSection checks the answers of one section.
//
// The only mutation is on answers: a stored justification is deleted when
// no photo discrepancy remains, so callers must pass the live store.
func ValidateSection(cat *Catalog, section string, answers Answers, collected []PhaseRecord, project Project, rules Rules) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Err: fmt.Errorf("%w: %v", ErrInternalValidation, r)}
		}
	}()

	for id, a := range answers {
		if err := a.check(); err != nil {
			return Result{Err: fmt.Errorf("%w: question %d: %v", ErrInternalValidation, id, err)}
		}
	}

	rows := cat.Section(section)
	combined := Combine(collected, answers)

	expectation, hasRule := rules.ExpectedPhotos(section, project)

	visiblePhotos, actual := 0, 0
	for _, q := range rows {
		if q.Type != TypePhoto || !cat.IsVisible(q, combined) {
			continue
		}
		visiblePhotos++
		if a, ok := answers[q.ID]; ok && a.Kind == KindFiles {
			actual += len(a.Files)
		}
	}

	expected := expectation.Base
	if hasRule && expected > 0 {
		expected = expectation.Base * visiblePhotos
	}

	for _, q := range rows {
		if q.ID == CommentQuestionID || !q.Mandatory || !cat.IsVisible(q, combined) {
			continue
		}
		a, present := answers[q.ID]
		switch {
		case q.Type == TypePhoto:
			if !present || a.Kind != KindFiles || len(a.Files) == 0 {
				res.Problems = append(res.Problems, Problem{
					QuestionID: q.ID,
					Message:    fmt.Sprintf("Question %d : %s (at least one photo is required)", q.ID, q.Text),
				})
			}
		case present && a.Kind == KindFiles:
			if len(a.Files) == 0 {
				res.Problems = append(res.Problems, Problem{
					QuestionID: q.ID,
					Message:    fmt.Sprintf("Question %d : %s (missing file(s))", q.ID, q.Text),
				})
			}
		case !present || a.IsBlank():
			res.Problems = append(res.Problems, Problem{
				QuestionID: q.ID,
				Message:    fmt.Sprintf("Question %d : %s", q.ID, q.Text),
			})
		}
	}

	if hasRule && expected > 0 && visiblePhotos > 0 && actual != expected {
		res.Discrepancy = &PhotoDiscrepancy{
			Section:       section,
			Expected:      expected,
			Actual:        actual,
			VisiblePhotos: visiblePhotos,
			Detail:        expectation.Detail(),
		}
		if answers.Justification() == "" {
			comment := CommentQuestion(section, rules.CommentText)
			res.Problems = append(res.Problems, Problem{
				QuestionID: CommentQuestionID,
				Message: fmt.Sprintf("Comment (ID %d) : %s (required because of the photo discrepancy). %s",
					CommentQuestionID, comment.Text, res.Discrepancy),
			})
		}
	}

	if res.Discrepancy == nil {
		delete(answers, CommentQuestionID)
	}
	return res
}
