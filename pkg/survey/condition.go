package survey

import (
	"fmt"
	"strconv"
	"strings"
)

// Separators accepted between groups and atoms. The French spellings are
// what the schema sheet uses.
var (
	orSeparators  = []string{" OU ", " OR "}
	andSeparators = []string{" ET ", " AND "}
)

// Atom is a single "id=value" equality test. An atom marked Always is a
// malformed fragment that evaluates to true.
type Atom struct {
	QuestionID int
	Expected   string
	Always     bool
}

// Condition is a flat OR of AND-groups. A zero Condition is always true.
type Condition struct {
	Groups [][]Atom
}

// ConditionWarning reports a malformed fragment found while parsing.
type ConditionWarning struct {
	QuestionID int
	Fragment   string
	Reason     string
}

func (w ConditionWarning) Error() string {
	return fmt.Sprintf("question %d: condition fragment %q %s", w.QuestionID, w.Fragment, w.Reason)
}

// ParseCondition parses an expression. It never fails: malformed atoms
// become Always atoms and are reported as warnings.
func ParseCondition(questionID int, expr string) (Condition, []ConditionWarning) {
	raw := trimQuotes(expr)
	if raw == "" {
		return Condition{}, nil
	}

	var (
		cond     Condition
		warnings []ConditionWarning
	)
	for _, block := range splitAny(raw, orSeparators) {
		var group []Atom
		for _, frag := range splitAny(block, andSeparators) {
			atom, reason := parseAtom(frag)
			if reason != "" {
				warnings = append(warnings, ConditionWarning{QuestionID: questionID, Fragment: frag, Reason: reason})
			}
			group = append(group, atom)
		}
		cond.Groups = append(cond.Groups, group)
	}
	return cond, warnings
}

func parseAtom(frag string) (Atom, string) {
	idPart, value, ok := strings.Cut(frag, "=")
	if !ok {
		return Atom{Always: true}, "has no '='"
	}
	id, err := strconv.Atoi(strings.TrimSpace(idPart))
	if err != nil {
		return Atom{Always: true}, "has a non-numeric question id"
	}
	return Atom{QuestionID: id, Expected: trimQuotes(value)}, ""
}

// Eval reports whether the condition holds against the combined answers.
func (c Condition) Eval(combined Answers) bool {
	if len(c.Groups) == 0 {
		return true
	}
	for _, group := range c.Groups {
		if groupHolds(group, combined) {
			return true
		}
	}
	return false
}

func groupHolds(group []Atom, combined Answers) bool {
	for _, atom := range group {
		if !atom.holds(combined) {
			return false
		}
	}
	return true
}

func (a Atom) holds(combined Answers) bool {
	if a.Always {
		return true
	}
	v, ok := combined[a.QuestionID]
	if !ok {
		return false
	}
	return normalize(v.String()) == normalize(a.Expected)
}

// IsVisible parses and evaluates the question's condition. Catalog
// callers should prefer Catalog.IsVisible, which parses once.
func IsVisible(q Question, combined Answers) bool {
	if !q.ConditionEnabled {
		return true
	}
	cond, _ := ParseCondition(q.ID, q.ConditionExpression)
	return cond.Eval(combined)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func trimQuotes(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'`)
}

func splitAny(s string, seps []string) []string {
	parts := []string{s}
	for _, sep := range seps {
		var next []string
		for _, p := range parts {
			next = append(next, strings.Split(p, sep)...)
		}
		parts = next
	}
	return parts
}
