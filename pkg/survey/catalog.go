package survey

import (
	"encoding/json"
	"sort"
	"strings"
)

// Catalog is an immutable snapshot of the question schema. Conditions are
// parsed once at construction; a reload builds a new Catalog.
type Catalog struct {
	questions  []Question
	sections   []string
	byID       map[int]int
	conditions map[string]Condition // by expression text
	warnings   []ConditionWarning
}

// NewCatalog builds a catalog from loader rows. Sections keep the order in
// which they first appear; questions are sorted by id within a section.
func NewCatalog(rows []Question) *Catalog {
	c := &Catalog{
		byID:       make(map[int]int, len(rows)),
		conditions: make(map[string]Condition),
	}

	grouped := make(map[string][]Question)
	for _, q := range rows {
		q.Section = strings.TrimSpace(q.Section)
		q.Options = append([]string(nil), q.Options...)
		if _, seen := grouped[q.Section]; !seen {
			c.sections = append(c.sections, q.Section)
		}
		grouped[q.Section] = append(grouped[q.Section], q)
	}

	for _, name := range c.sections {
		qs := grouped[name]
		sort.SliceStable(qs, func(i, j int) bool { return qs[i].ID < qs[j].ID })
		for _, q := range qs {
			if _, dup := c.byID[q.ID]; !dup {
				c.byID[q.ID] = len(c.questions)
			}
			c.questions = append(c.questions, q)
			if q.ConditionEnabled {
				cond, warns := ParseCondition(q.ID, q.ConditionExpression)
				if _, parsed := c.conditions[q.ConditionExpression]; !parsed {
					c.conditions[q.ConditionExpression] = cond
				}
				c.warnings = append(c.warnings, warns...)
			}
		}
	}
	return c
}

// Questions returns every question in catalog order.
func (c *Catalog) Questions() []Question {
	return append([]Question(nil), c.questions...)
}

// Sections returns the section names in schema order.
func (c *Catalog) Sections() []string {
	return append([]string(nil), c.sections...)
}

// IdentificationSection is the section of the first schema row.
func (c *Catalog) IdentificationSection() string {
	if len(c.sections) == 0 {
		return ""
	}
	return c.sections[0]
}

// PhaseSections lists the selectable phases: every section except the
// identification section and the reserved meta section.
func (c *Catalog) PhaseSections(metaSection string) []string {
	ident := c.IdentificationSection()
	meta := strings.TrimSpace(metaSection)
	var out []string
	for _, s := range c.sections {
		if s == ident || s == "" || (meta != "" && strings.EqualFold(s, meta)) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// HasPhase reports whether name is a selectable phase.
func (c *Catalog) HasPhase(name, metaSection string) bool {
	for _, s := range c.PhaseSections(metaSection) {
		if s == name {
			return true
		}
	}
	return false
}

// Section returns the questions of one section in order.
func (c *Catalog) Section(name string) []Question {
	name = strings.TrimSpace(name)
	var out []Question
	for _, q := range c.questions {
		if q.Section == name {
			out = append(out, q)
		}
	}
	return out
}

// Question looks up a question by id.
func (c *Catalog) Question(id int) (Question, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Question{}, false
	}
	return c.questions[i], true
}

// IsVisible evaluates the pre-parsed condition of q.
func (c *Catalog) IsVisible(q Question, combined Answers) bool {
	if !q.ConditionEnabled {
		return true
	}
	cond, ok := c.conditions[q.ConditionExpression]
	if !ok {
		return IsVisible(q, combined)
	}
	return cond.Eval(combined)
}

// Warnings lists malformed condition fragments found at build time.
func (c *Catalog) Warnings() []ConditionWarning {
	return append([]ConditionWarning(nil), c.warnings...)
}

// Len is the number of questions.
func (c *Catalog) Len() int {
	return len(c.questions)
}

func (c *Catalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.questions)
}

func (c *Catalog) UnmarshalJSON(data []byte) error {
	var rows []Question
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	*c = *NewCatalog(rows)
	return nil
}
