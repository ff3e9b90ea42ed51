package survey

import (
	"fmt"
	"strconv"
	"strings"
)

// AnswerKind tags the value held by an Answer.
type AnswerKind string

const (
	KindText   AnswerKind = "text"
	KindNumber AnswerKind = "number"
	KindFiles  AnswerKind = "files"
)

// FileRef points at an uploaded file. Only Name leaves the process when a
// record is handed to the response sink.
type FileRef struct {
	Name        string `json:"name"`
	Path        string `json:"path,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size,omitempty"`
}

// Answer is a single stored value. Select answers are text.
type Answer struct {
	Kind   AnswerKind `json:"kind"`
	Text   string     `json:"text,omitempty"`
	Number float64    `json:"number,omitempty"`
	Files  []FileRef  `json:"files,omitempty"`
}

func TextAnswer(v string) Answer {
	return Answer{Kind: KindText, Text: v}
}

func NumberAnswer(v float64) Answer {
	return Answer{Kind: KindNumber, Number: v}
}

func FilesAnswer(files ...FileRef) Answer {
	return Answer{Kind: KindFiles, Files: append([]FileRef(nil), files...)}
}

// String is the form used by condition atoms and text exports.
func (a Answer) String() string {
	switch a.Kind {
	case KindNumber:
		return strconv.FormatFloat(a.Number, 'f', -1, 64)
	case KindFiles:
		return strings.Join(a.FileNames(), ", ")
	default:
		return a.Text
	}
}

// FileNames lists the names of the referenced files.
func (a Answer) FileNames() []string {
	names := make([]string, 0, len(a.Files))
	for _, f := range a.Files {
		names = append(names, f.Name)
	}
	return names
}

// IsBlank reports whether the answer counts as "not provided" for a
// non-photo mandatory question: empty text, numeric zero or an empty list.
func (a Answer) IsBlank() bool {
	switch a.Kind {
	case KindText:
		return a.Text == ""
	case KindNumber:
		return a.Number == 0
	case KindFiles:
		return len(a.Files) == 0
	}
	return true
}

// Primitive reduces the answer to a JSON scalar. Files become their
// "Fichiers: a, b" reference string.
func (a Answer) Primitive() interface{} {
	switch a.Kind {
	case KindNumber:
		return a.Number
	case KindFiles:
		if len(a.Files) == 1 {
			return "Fichier: " + a.Files[0].Name
		}
		return "Fichiers: " + strings.Join(a.FileNames(), ", ")
	default:
		return a.Text
	}
}

func (a Answer) clone() Answer {
	if a.Files != nil {
		a.Files = append([]FileRef(nil), a.Files...)
	}
	return a
}

func (a Answer) check() error {
	switch a.Kind {
	case KindText, KindNumber, KindFiles:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownAnswerKind, a.Kind)
}

// Answers maps question id to value for one phase.
type Answers map[int]Answer

// Clone returns a deep copy so a committed snapshot never aliases the store.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for id, v := range a {
		out[id] = v.clone()
	}
	return out
}

// Justification returns the trimmed comment answer, if any.
func (a Answers) Justification() string {
	v, ok := a[CommentQuestionID]
	if !ok {
		return ""
	}
	return strings.TrimSpace(v.String())
}

// PhaseRecord is one committed phase.
type PhaseRecord struct {
	PhaseName string  `json:"phase_name"`
	Answers   Answers `json:"answers"`
}

// Combine folds committed records in order, then the current store.
// Later values overwrite earlier ones.
func Combine(collected []PhaseRecord, current Answers) Answers {
	out := make(Answers)
	for _, rec := range collected {
		for id, v := range rec.Answers {
			out[id] = v
		}
	}
	for id, v := range current {
		out[id] = v
	}
	return out
}
