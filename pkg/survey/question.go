package survey

import "strings"

// QuestionType is the widget family of a question.
type QuestionType string

const (
	TypeText   QuestionType = "text"
	TypeNumber QuestionType = "number"
	TypeSelect QuestionType = "select"
	TypePhoto  QuestionType = "photo"
)

// ParseQuestionType normalizes a sheet value. Unknown types fall back to text.
func ParseQuestionType(raw string) QuestionType {
	switch QuestionType(strings.ToLower(strings.TrimSpace(raw))) {
	case TypeNumber:
		return TypeNumber
	case TypeSelect:
		return TypeSelect
	case TypePhoto:
		return TypePhoto
	default:
		return TypeText
	}
}

// CommentQuestionID is the reserved id of the photo justification question.
// It never appears in a loaded schema.
const CommentQuestionID = 100

// DefaultCommentText is the label of the justification question.
const DefaultCommentText = "Veuillez préciser pourquoi le nombre de photo partagé ne correspond pas au minimum attendu"

// Question is one schema row, immutable once loaded.
type Question struct {
	ID                  int          `json:"id" yaml:"id"`
	Section             string       `json:"section" yaml:"section"`
	Text                string       `json:"question" yaml:"question"`
	Type                QuestionType `json:"type" yaml:"type"`
	Mandatory           bool         `json:"mandatory" yaml:"mandatory"`
	Options             []string     `json:"options,omitempty" yaml:"options,omitempty"`
	Description         string       `json:"description,omitempty" yaml:"description,omitempty"`
	ConditionEnabled    bool         `json:"condition_enabled" yaml:"condition_enabled"`
	ConditionExpression string       `json:"condition_expression,omitempty" yaml:"condition_expression,omitempty"`
}

// CommentQuestion returns the synthetic justification question for a section.
func CommentQuestion(section, text string) Question {
	if text == "" {
		text = DefaultCommentText
	}
	return Question{
		ID:          CommentQuestionID,
		Section:     section,
		Text:        text,
		Type:        TypeText,
		Mandatory:   true,
		Description: "Requis si écart photo.",
	}
}

// SelectOptions returns the trimmed options with an empty choice first.
func (q Question) SelectOptions() []string {
	opts := make([]string, 0, len(q.Options)+1)
	hasEmpty := false
	for _, o := range q.Options {
		o = strings.TrimSpace(o)
		if o == "" {
			hasEmpty = true
		}
		opts = append(opts, o)
	}
	if !hasEmpty {
		opts = append([]string{""}, opts...)
	}
	return opts
}

// Project is one site record keyed by column name.
type Project map[string]string

// ProjectLabelField is the column holding a project's display label.
const ProjectLabelField = "Intitulé"

// Label returns the value of the label column, or "N/A". An empty field
// name means ProjectLabelField.
func (p Project) Label(field string) string {
	if field == "" {
		field = ProjectLabelField
	}
	if v, ok := p[field]; ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return "N/A"
}
