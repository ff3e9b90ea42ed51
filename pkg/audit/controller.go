package audit

import (
	"context"
	"fmt"
	"path"
	"time"

	"site-audit-be/internal/pkg/logger"
	"site-audit-be/pkg/survey"

	"github.com/google/uuid"
)

const module = "AUDIT"

// SchemaSource loads the question schema and the site catalog.
type SchemaSource interface {
	LoadQuestions(ctx context.Context) ([]survey.Question, error)
	LoadSites(ctx context.Context) ([]survey.Project, error)
}

// Options configures a Controller.
type Options struct {
	Rules       survey.Rules
	MetaSection string
	LabelField  string
}

// Controller performs the workflow transitions. Every method runs at most
// one transition and either completes it or leaves the session unchanged.
type Controller struct {
	opts   Options
	logger logger.ILogger
	now    func() time.Time
	newID  func() string
}

func NewController(opts Options, log logger.ILogger) *Controller {
	return &Controller{
		opts:   opts,
		logger: log,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Rules returns the photo rule table in use.
func (c *Controller) Rules() survey.Rules {
	return c.opts.Rules
}

// MetaSection returns the reserved section name excluded from phases.
func (c *Controller) MetaSection() string {
	return c.opts.MetaSection
}

func (c *Controller) expect(s *Session, action string, allowed ...State) error {
	for _, st := range allowed {
		if s.State == st {
			return nil
		}
	}
	return &TransitionError{Action: action, From: s.State}
}

func (c *Controller) touch(s *Session) {
	s.UpdatedAt = c.now()
}

// LoadSchema fetches the schema and sites. On failure the session stays in
// SchemaLoad with LoadError set so the caller can offer a retry.
func (c *Controller) LoadSchema(ctx context.Context, s *Session, src SchemaSource) error {
	if err := c.expect(s, "load_schema", StateSchemaLoad); err != nil {
		return err
	}

	questions, err := src.LoadQuestions(ctx)
	if err != nil {
		return c.loadFailed(s, "questions", err)
	}
	sites, err := src.LoadSites(ctx)
	if err != nil {
		return c.loadFailed(s, "sites", err)
	}

	catalog := survey.NewCatalog(questions)
	if catalog.Len() == 0 {
		return c.loadFailed(s, "questions", fmt.Errorf("schema has no questions"))
	}
	for _, w := range catalog.Warnings() {
		c.logger.Warn(module, "Malformed condition in schema", map[string]interface{}{
			"question_id": w.QuestionID,
			"fragment":    w.Fragment,
			"reason":      w.Reason,
		})
	}

	s.Catalog = catalog
	s.Sites = sites
	s.LoadError = ""
	s.State = StateProjectSelect
	c.touch(s)
	c.logger.Info(module, "Schema loaded", map[string]interface{}{
		"session_id": s.ID,
		"questions":  catalog.Len(),
		"sites":      len(sites),
	})
	return nil
}

func (c *Controller) loadFailed(s *Session, what string, err error) error {
	s.LoadError = err.Error()
	c.touch(s)
	c.logger.Error(module, "Schema load failed", map[string]interface{}{
		"session_id": s.ID,
		"source":     what,
		"error":      err.Error(),
	})
	return fmt.Errorf("%w: loading %s: %v", ErrSchemaUnavailable, what, err)
}

// SelectProject confirms the project and opens the identification phase.
func (c *Controller) SelectProject(s *Session, label string) error {
	if err := c.expect(s, "select_project", StateProjectSelect); err != nil {
		return err
	}
	var project survey.Project
	for _, p := range s.Sites {
		if p.Label(c.opts.LabelField) == label {
			project = p
			break
		}
	}
	if project == nil {
		return fmt.Errorf("%w: %q", ErrUnknownProject, label)
	}

	now := c.now()
	s.Project = project
	s.ProjectLabel = label
	s.SubmissionID = c.newID()
	s.StartedAt = &now
	s.clearTemp()
	s.State = StateIdentification
	c.touch(s)
	c.logger.Info(module, "Project selected", map[string]interface{}{
		"session_id":    s.ID,
		"project":       label,
		"submission_id": s.SubmissionID,
	})
	return nil
}

// SetAnswers merges answers into the in-progress store. The whole batch is
// rejected if any entry does not fit the current section.
func (c *Controller) SetAnswers(s *Session, answers survey.Answers) error {
	if err := c.expect(s, "set_answers", StateIdentification, StateFillPhase); err != nil {
		return err
	}
	section := s.CurrentSection()
	for id, a := range answers {
		if err := c.checkAnswer(s, section, id, a); err != nil {
			return err
		}
	}
	s.ensureStore()
	for id, a := range answers {
		s.CurrentAnswers[id] = a
	}
	c.touch(s)
	return nil
}

func (c *Controller) checkAnswer(s *Session, section string, id int, a survey.Answer) error {
	if id == survey.CommentQuestionID {
		if a.Kind != survey.KindText {
			return fmt.Errorf("%w: justification must be text", ErrInvalidAnswer)
		}
		return nil
	}
	q, ok := s.Catalog.Question(id)
	if !ok || q.Section != section {
		return fmt.Errorf("%w: %d is not in section %q", ErrUnknownQuestion, id, section)
	}
	switch q.Type {
	case survey.TypePhoto:
		if a.Kind != survey.KindFiles {
			return fmt.Errorf("%w: question %d expects photos", ErrInvalidAnswer, id)
		}
	case survey.TypeNumber:
		if a.Kind != survey.KindNumber {
			return fmt.Errorf("%w: question %d expects a number", ErrInvalidAnswer, id)
		}
	case survey.TypeSelect:
		if a.Kind != survey.KindText || !contains(q.SelectOptions(), a.Text) {
			return fmt.Errorf("%w: %q is not an option of question %d", ErrInvalidAnswer, a.Text, id)
		}
	default:
		if a.Kind != survey.KindText {
			return fmt.Errorf("%w: question %d expects text", ErrInvalidAnswer, id)
		}
	}
	return nil
}

// AddPhotos appends uploaded files to a photo question of the current section.
func (c *Controller) AddPhotos(s *Session, questionID int, files ...survey.FileRef) error {
	if err := c.CheckPhotoTarget(s, questionID); err != nil {
		return err
	}
	s.ensureStore()
	existing := s.CurrentAnswers[questionID]
	s.CurrentAnswers[questionID] = survey.FilesAnswer(append(existing.Files, files...)...)
	c.touch(s)
	return nil
}

// CheckPhotoTarget reports whether photos may be added to questionID now.
func (c *Controller) CheckPhotoTarget(s *Session, questionID int) error {
	if err := c.expect(s, "add_photos", StateIdentification, StateFillPhase); err != nil {
		return err
	}
	q, ok := s.Catalog.Question(questionID)
	if !ok || q.Section != s.CurrentSection() {
		return fmt.Errorf("%w: %d is not in section %q", ErrUnknownQuestion, questionID, s.CurrentSection())
	}
	if q.Type != survey.TypePhoto {
		return fmt.Errorf("%w: question %d is not a photo question", ErrInvalidAnswer, questionID)
	}
	return nil
}

// RemovePhoto drops one file from a photo answer. The file is identified by
// the base name of its stored path, which is unique, unlike the name the
// client uploaded it under. The removed reference is returned so the caller
// can delete the stored file.
func (c *Controller) RemovePhoto(s *Session, questionID int, storedName string) (survey.FileRef, error) {
	if err := c.expect(s, "remove_photo", StateIdentification, StateFillPhase); err != nil {
		return survey.FileRef{}, err
	}
	a, ok := s.CurrentAnswers[questionID]
	if !ok || a.Kind != survey.KindFiles {
		return survey.FileRef{}, fmt.Errorf("%w: no photos for question %d", ErrUnknownQuestion, questionID)
	}
	idx := -1
	for i, f := range a.Files {
		if f.Path != "" && path.Base(f.Path) == storedName {
			idx = i
			break
		}
	}
	if idx < 0 {
		return survey.FileRef{}, fmt.Errorf("%w: no photo %q on question %d", ErrInvalidAnswer, storedName, questionID)
	}
	removed := a.Files[idx]
	kept := make([]survey.FileRef, 0, len(a.Files)-1)
	kept = append(kept, a.Files[:idx]...)
	kept = append(kept, a.Files[idx+1:]...)
	s.CurrentAnswers[questionID] = survey.FilesAnswer(kept...)
	c.touch(s)
	return removed, nil
}

// ValidateIdentification validates the identification section and, on
// success, commits it as the first phase record.
func (c *Controller) ValidateIdentification(s *Session) error {
	if err := c.expect(s, "validate_identification", StateIdentification); err != nil {
		return err
	}
	if s.IdentificationCompleted || len(s.CollectedData) > 0 {
		return &TransitionError{Action: "validate_identification", From: s.State}
	}

	section := s.Catalog.IdentificationSection()
	if err := c.validate(s, section); err != nil {
		return err
	}

	s.CollectedData = append(s.CollectedData, survey.PhaseRecord{
		PhaseName: section,
		Answers:   s.CurrentAnswers.Clone(),
	})
	s.IdentificationCompleted = true
	s.clearTemp()
	s.State = StateLoopDecision
	c.touch(s)
	c.logger.Info(module, "Identification committed", map[string]interface{}{"session_id": s.ID})
	return nil
}

// AddPhase opens phase selection with a fresh store and iteration token.
func (c *Controller) AddPhase(s *Session) error {
	if err := c.expect(s, "add_phase", StateLoopDecision); err != nil {
		return err
	}
	s.clearTemp()
	s.IterationToken = c.newID()
	s.State = StatePhaseSelect
	c.touch(s)
	return nil
}

// Finish ends the audit. No validation is required.
func (c *Controller) Finish(s *Session) error {
	if err := c.expect(s, "finish", StateLoopDecision); err != nil {
		return err
	}
	s.clearTemp()
	s.State = StateFinished
	c.touch(s)
	c.logger.Info(module, "Audit finished", map[string]interface{}{
		"session_id": s.ID,
		"phases":     len(s.CollectedData),
	})
	return nil
}

// ChoosePhase starts filling the named phase.
func (c *Controller) ChoosePhase(s *Session, name string) error {
	if err := c.expect(s, "choose_phase", StatePhaseSelect); err != nil {
		return err
	}
	if !s.Catalog.HasPhase(name, c.opts.MetaSection) {
		return fmt.Errorf("%w: %q", ErrUnknownPhase, name)
	}
	s.CurrentPhase = name
	s.State = StateFillPhase
	c.touch(s)
	return nil
}

// Back returns from phase selection to the loop decision.
func (c *Controller) Back(s *Session) error {
	if err := c.expect(s, "back", StatePhaseSelect); err != nil {
		return err
	}
	s.clearTemp()
	s.State = StateLoopDecision
	c.touch(s)
	return nil
}

// ChangePhase discards the unsaved answers and returns to phase selection.
func (c *Controller) ChangePhase(s *Session) error {
	if err := c.expect(s, "change_phase", StateFillPhase); err != nil {
		return err
	}
	s.clearTemp()
	s.State = StatePhaseSelect
	c.touch(s)
	return nil
}

// CancelPhase discards the unsaved answers and returns to the loop decision.
func (c *Controller) CancelPhase(s *Session) error {
	if err := c.expect(s, "cancel_phase", StateFillPhase); err != nil {
		return err
	}
	s.clearTemp()
	s.State = StateLoopDecision
	c.touch(s)
	return nil
}

// ValidatePhase validates the current phase and appends it on success.
// Repeats of a phase name are appended, never merged.
func (c *Controller) ValidatePhase(s *Session) error {
	if err := c.expect(s, "validate_phase", StateFillPhase); err != nil {
		return err
	}
	if err := c.validate(s, s.CurrentPhase); err != nil {
		return err
	}

	s.CollectedData = append(s.CollectedData, survey.PhaseRecord{
		PhaseName: s.CurrentPhase,
		Answers:   s.CurrentAnswers.Clone(),
	})
	c.logger.Info(module, "Phase committed", map[string]interface{}{
		"session_id": s.ID,
		"phase":      s.CurrentPhase,
		"index":      len(s.CollectedData) - 1,
	})
	s.clearTemp()
	s.State = StateLoopDecision
	c.touch(s)
	return nil
}

// validate runs the section validator against the live store. On failure
// the store is kept, the problems are recorded on the session and a
// *ValidationError is returned.
func (c *Controller) validate(s *Session, section string) error {
	res := survey.ValidateSection(s.Catalog, section, s.CurrentAnswers, s.CollectedData, s.Project, c.opts.Rules)
	c.touch(s)

	if res.Err != nil {
		c.logger.Error(module, "Section validation error", map[string]interface{}{
			"session_id": s.ID,
			"section":    section,
			"error":      res.Err.Error(),
		})
		s.Problems = []survey.Problem{{Message: "Validation error: " + res.Err.Error()}}
		s.ShowJustification = true
		return &ValidationError{Section: section, Problems: s.Problems}
	}
	// The justification question is shown only while a discrepancy exists.
	s.ShowJustification = res.Discrepancy != nil
	if !res.OK() {
		s.Problems = res.Problems
		return &ValidationError{Section: section, Problems: res.Problems}
	}
	s.Problems = nil
	return nil
}

// Submit hands the finished audit to the sink once. A failed append leaves
// the session as it was so the caller may retry.
func (c *Controller) Submit(ctx context.Context, s *Session, sink ResponseSink) (Submission, error) {
	if err := c.expect(s, "submit", StateFinished); err != nil {
		return Submission{}, err
	}
	if s.SubmittedAt != nil {
		return Submission{}, ErrAlreadySubmitted
	}

	sub := Submission{
		SubmissionID:  s.SubmissionID,
		AuditorID:     s.AuditorID,
		Timestamp:     c.now(),
		StartedAt:     s.StartedAt,
		ProjectLabel:  s.ProjectLabel,
		CollectedData: Flatten(s.CollectedData),
	}
	if err := sink.Append(ctx, sub); err != nil {
		c.logger.Error(module, "Submission append failed", map[string]interface{}{
			"session_id":    s.ID,
			"submission_id": s.SubmissionID,
			"error":         err.Error(),
		})
		return Submission{}, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	at := sub.Timestamp
	s.SubmittedAt = &at
	c.touch(s)
	return sub, nil
}

// Reset clears everything but the session identity and returns to
// SchemaLoad.
func (c *Controller) Reset(s *Session) {
	*s = *NewSession(s.ID, s.AuditorID)
	c.touch(s)
	c.logger.Info(module, "Session reset", map[string]interface{}{"session_id": s.ID})
}

// VisibleQuestions lists what the current step renders: the visible rows of
// the current section plus the justification question when it is needed.
func (c *Controller) VisibleQuestions(s *Session) []survey.Question {
	section := s.CurrentSection()
	if section == "" || s.Catalog == nil {
		return nil
	}
	combined := s.CombinedAnswers()
	var out []survey.Question
	for _, q := range s.Catalog.Section(section) {
		if q.ID == survey.CommentQuestionID {
			continue
		}
		if s.Catalog.IsVisible(q, combined) {
			out = append(out, q)
		}
	}
	if _, answered := s.CurrentAnswers[survey.CommentQuestionID]; s.ShowJustification || answered {
		out = append(out, survey.CommentQuestion(section, c.opts.Rules.CommentText))
	}
	return out
}

// ExpectedPhotos returns the expected photo hint for the current section.
func (c *Controller) ExpectedPhotos(s *Session) (survey.Expectation, bool) {
	section := s.CurrentSection()
	if section == "" || s.Project == nil {
		return survey.Expectation{}, false
	}
	return c.opts.Rules.ExpectedPhotos(section, s.Project)
}

// PhaseOptions lists the phases the auditor may pick.
func (c *Controller) PhaseOptions(s *Session) []string {
	if s.Catalog == nil {
		return nil
	}
	return s.Catalog.PhaseSections(c.opts.MetaSection)
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
