package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"regexp"
	"strings"
	"sync"
	"time"

	"site-audit-be/internal/config"
	"site-audit-be/internal/dto"
	"site-audit-be/internal/pkg/logger"
	"site-audit-be/internal/repository/contract"
	"site-audit-be/pkg/audit"
	"site-audit-be/pkg/events"
	"site-audit-be/pkg/report"
	"site-audit-be/pkg/survey"

	"github.com/google/uuid"
)

const auditModule = "AUDIT"

type IAuditService interface {
	Create(ctx context.Context, auditorID string) (*dto.SessionView, error)
	Show(ctx context.Context, auditorID, sessionID string) (*dto.SessionView, error)
	Delete(ctx context.Context, auditorID, sessionID string) error
	RetrySchema(ctx context.Context, auditorID, sessionID string) (*dto.SessionView, error)
	Projects(ctx context.Context, auditorID, sessionID string) ([]dto.ProjectView, error)
	SelectProject(ctx context.Context, auditorID, sessionID string, req *dto.SelectProjectRequest) (*dto.SessionView, error)
	SaveAnswers(ctx context.Context, auditorID, sessionID string, req *dto.SaveAnswersRequest) (*dto.SessionView, error)
	UploadPhotos(ctx context.Context, auditorID, sessionID string, questionID int, files []*multipart.FileHeader) (*dto.SessionView, error)
	RemovePhoto(ctx context.Context, auditorID, sessionID string, questionID int, storedName string) (*dto.SessionView, error)
	ValidateIdentification(ctx context.Context, auditorID, sessionID string) (*dto.SessionView, error)
	AddPhase(ctx context.Context, auditorID, sessionID string) (*dto.SessionView, error)
	Back(ctx context.Context, auditorID, sessionID string) (*dto.SessionView, error)
	ChoosePhase(ctx context.Context, auditorID, sessionID string, req *dto.ChoosePhaseRequest) (*dto.SessionView, error)
	ChangePhase(ctx context.Context, auditorID, sessionID string) (*dto.SessionView, error)
	CancelPhase(ctx context.Context, auditorID, sessionID string) (*dto.SessionView, error)
	ValidatePhase(ctx context.Context, auditorID, sessionID string) (*dto.SessionView, error)
	Finish(ctx context.Context, auditorID, sessionID string) (*dto.SessionView, error)
	Submit(ctx context.Context, auditorID, sessionID string) (*dto.SessionView, error)
	Restart(ctx context.Context, auditorID, sessionID string) (*dto.SessionView, error)
	ExportCSV(ctx context.Context, auditorID, sessionID string) ([]byte, string, error)
	ExportZIP(ctx context.Context, auditorID, sessionID string) ([]byte, string, error)
}

type auditService struct {
	controller  *audit.Controller
	sessions    contract.SessionRepository
	schema      ISchemaService
	submissions ISubmissionService
	photos      IPhotoStore
	archive     IPublisherService
	events      IEventPublisher
	rules       config.AuditRules
	logger      logger.ILogger

	locks sync.Map // session id -> *sync.Mutex
	newID func() string
}

func NewAuditService(
	controller *audit.Controller,
	sessions contract.SessionRepository,
	schema ISchemaService,
	submissions ISubmissionService,
	photos IPhotoStore,
	archive IPublisherService,
	eventPublisher IEventPublisher,
	rules config.AuditRules,
	log logger.ILogger,
) IAuditService {
	return &auditService{
		controller:  controller,
		sessions:    sessions,
		schema:      schema,
		submissions: submissions,
		photos:      photos,
		archive:     archive,
		events:      eventPublisher,
		rules:       rules,
		logger:      log,
		newID:       uuid.NewString,
	}
}

func (s *auditService) lock(sessionID string) func() {
	m, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *auditService) load(ctx context.Context, auditorID, sessionID string) (*audit.Session, error) {
	sess, ok, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Expired or deleted: drop its lock so the map does not grow with
		// every session that ever existed.
		s.locks.Delete(sessionID)
		return nil, fmt.Errorf("%w: %s", audit.ErrSessionNotFound, sessionID)
	}
	// Another auditor's session reads as missing.
	if sess.AuditorID != auditorID {
		return nil, fmt.Errorf("%w: %s", audit.ErrSessionNotFound, sessionID)
	}
	return sess, nil
}

// act runs one action under the session lock and saves the session, also
// when the action fails: a failed validation records its problems.
func (s *auditService) act(ctx context.Context, auditorID, sessionID string, fn func(*audit.Session) error) (*dto.SessionView, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.load(ctx, auditorID, sessionID)
	if err != nil {
		return nil, err
	}
	actErr := fn(sess)
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("saving session %s: %w", sessionID, err)
	}
	if actErr != nil {
		return nil, actErr
	}
	return s.toView(sess), nil
}

func (s *auditService) Create(ctx context.Context, auditorID string) (*dto.SessionView, error) {
	sess := audit.NewSession(s.newID(), auditorID)
	unlock := s.lock(sess.ID)
	defer unlock()

	// A schema failure leaves the session in SCHEMA_LOAD with a load
	// error; the client retries from there.
	_ = s.controller.LoadSchema(ctx, sess, s.schema)

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("saving session %s: %w", sess.ID, err)
	}
	s.logger.Info(auditModule, "Session created", map[string]interface{}{
		"session_id": sess.ID,
		"auditor_id": auditorID,
		"state":      sess.State,
	})
	return s.toView(sess), nil
}

func (s *auditService) Show(ctx context.Context, auditorID, sessionID string) (*dto.SessionView, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.load(ctx, auditorID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.toView(sess), nil
}

func (s *auditService) Delete(ctx context.Context, auditorID, sessionID string) error {
	unlock := s.lock(sessionID)
	defer func() {
		unlock()
		s.locks.Delete(sessionID)
	}()

	sess, err := s.load(ctx, auditorID, sessionID)
	if err != nil {
		return err
	}
	s.discardPhotos(sess)
	return s.sessions.Delete(ctx, sessionID)
}

func (s *auditService) RetrySchema(ctx context.Context, auditorID, sessionID string) (*dto.SessionView, error) {
	return s.act(ctx, auditorID, sessionID, func(sess *audit.Session) error {
		s.schema.Invalidate()
		return s.controller.LoadSchema(ctx, sess, s.schema)
	})
}

func (s *auditService) Projects(ctx context.Context, auditorID, sessionID string) ([]dto.ProjectView, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.load(ctx, auditorID, sessionID)
	if err != nil {
		return nil, err
	}
	projects := make([]dto.ProjectView, 0, len(sess.Sites))
	for _, p := range sess.Sites {
		projects = append(projects, *s.projectView(p))
	}
	return projects, nil
}

func (s *auditService) SelectProject(ctx context.Context, auditorID, sessionID string, req *dto.SelectProjectRequest) (*dto.SessionView, error) {
	return s.act(ctx, auditorID, sessionID, func(sess *audit.Session) error {
		return s.controller.SelectProject(sess, req.Label)
	})
}

func (s *auditService) SaveAnswers(ctx context.Context, auditorID, sessionID string, req *dto.SaveAnswersRequest) (*dto.SessionView, error) {
	return s.act(ctx, auditorID, sessionID, func(sess *audit.Session) error {
		if sess.Catalog == nil {
			return &audit.TransitionError{Action: "set_answers", From: sess.State}
		}
		answers, err := decodeAnswers(sess.Catalog, req.Answers)
		if err != nil {
			return err
		}
		return s.controller.SetAnswers(sess, answers)
	})
}

func (s *auditService) UploadPhotos(ctx context.Context, auditorID, sessionID string, questionID int, files []*multipart.FileHeader) (*dto.SessionView, error) {
	return s.act(ctx, auditorID, sessionID, func(sess *audit.Session) error {
		// Check the target before writing anything to disk.
		if err := s.controller.CheckPhotoTarget(sess, questionID); err != nil {
			return err
		}
		refs := make([]survey.FileRef, 0, len(files))
		for _, f := range files {
			ref, err := s.photos.Save(ctx, sess.ID, f)
			if err != nil {
				return fmt.Errorf("%w: %v", audit.ErrInvalidAnswer, err)
			}
			refs = append(refs, ref)
		}
		return s.controller.AddPhotos(sess, questionID, refs...)
	})
}

// RemovePhoto drops a photo from its answer and, once the session is saved,
// deletes the stored file. storedName is the base name of the file's stored
// path.
func (s *auditService) RemovePhoto(ctx context.Context, auditorID, sessionID string, questionID int, storedName string) (*dto.SessionView, error) {
	var removed survey.FileRef
	view, err := s.act(ctx, auditorID, sessionID, func(sess *audit.Session) error {
		ref, err := s.controller.RemovePhoto(sess, questionID, storedName)
		removed = ref
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := s.photos.Remove(sessionID, removed); err != nil {
		s.logger.Warn(auditModule, "Failed to delete removed photo", map[string]interface{}{
			"session_id": sessionID,
			"path":       removed.Path,
			"error":      err.Error(),
		})
	}
	return view, nil
}

func (s *auditService) ValidateIdentification(ctx context.Context, auditorID, sessionID string) (*dto.SessionView, error) {
	return s.act(ctx, auditorID, sessionID, s.controller.ValidateIdentification)
}

func (s *auditService) AddPhase(ctx context.Context, auditorID, sessionID string) (*dto.SessionView, error) {
	return s.act(ctx, auditorID, sessionID, s.controller.AddPhase)
}

func (s *auditService) Back(ctx context.Context, auditorID, sessionID string) (*dto.SessionView, error) {
	return s.act(ctx, auditorID, sessionID, s.controller.Back)
}

func (s *auditService) ChoosePhase(ctx context.Context, auditorID, sessionID string, req *dto.ChoosePhaseRequest) (*dto.SessionView, error) {
	return s.act(ctx, auditorID, sessionID, func(sess *audit.Session) error {
		return s.controller.ChoosePhase(sess, req.Phase)
	})
}

func (s *auditService) ChangePhase(ctx context.Context, auditorID, sessionID string) (*dto.SessionView, error) {
	return s.act(ctx, auditorID, sessionID, s.controller.ChangePhase)
}

func (s *auditService) CancelPhase(ctx context.Context, auditorID, sessionID string) (*dto.SessionView, error) {
	return s.act(ctx, auditorID, sessionID, s.controller.CancelPhase)
}

func (s *auditService) ValidatePhase(ctx context.Context, auditorID, sessionID string) (*dto.SessionView, error) {
	return s.act(ctx, auditorID, sessionID, s.controller.ValidatePhase)
}

func (s *auditService) Finish(ctx context.Context, auditorID, sessionID string) (*dto.SessionView, error) {
	return s.act(ctx, auditorID, sessionID, s.controller.Finish)
}

// Submit appends the audit to the submission store. Submitting twice is a
// no-op.
func (s *auditService) Submit(ctx context.Context, auditorID, sessionID string) (*dto.SessionView, error) {
	return s.act(ctx, auditorID, sessionID, func(sess *audit.Session) error {
		sub, err := s.controller.Submit(ctx, sess, s.submissions)
		if errors.Is(err, audit.ErrAlreadySubmitted) {
			return nil
		}
		if err != nil {
			return err
		}
		s.afterSubmit(ctx, sess, sub)
		return nil
	})
}

// afterSubmit hands the report to the archiver and notifies other services.
// Both are best effort: the submission is already stored.
func (s *auditService) afterSubmit(ctx context.Context, sess *audit.Session, sub audit.Submission) {
	if s.archive != nil {
		csv, err := report.CSV(sub.ProjectLabel, sess.CollectedData)
		if err == nil {
			var payload []byte
			payload, err = json.Marshal(dto.ArchiveSubmissionMessage{
				SubmissionID: sub.SubmissionID,
				ProjectLabel: sub.ProjectLabel,
				SubmittedAt:  sub.Timestamp,
				CSV:          csv,
			})
			if err == nil {
				err = s.archive.Publish(ctx, payload)
			}
		}
		if err != nil {
			s.logger.Warn(auditModule, "Failed to queue submission archive", map[string]interface{}{
				"submission_id": sub.SubmissionID,
				"error":         err.Error(),
			})
		}
	}

	if s.events != nil {
		evt := events.BaseEvent{
			Type: events.TypeAuditSubmitted,
			Data: map[string]interface{}{
				"submission_id": sub.SubmissionID,
				"auditor_id":    sub.AuditorID,
				"project_label": sub.ProjectLabel,
				"phases":        len(sub.CollectedData),
			},
			OccurredAt: sub.Timestamp,
		}
		if err := s.events.Publish(ctx, evt); err != nil {
			s.logger.Warn(auditModule, "Failed to publish AUDIT_SUBMITTED event", map[string]interface{}{
				"submission_id": sub.SubmissionID,
				"error":         err.Error(),
			})
		}
	}
}

// Restart throws the audit away and reloads the schema. Photos of an audit
// that was never submitted are deleted.
func (s *auditService) Restart(ctx context.Context, auditorID, sessionID string) (*dto.SessionView, error) {
	return s.act(ctx, auditorID, sessionID, func(sess *audit.Session) error {
		s.discardPhotos(sess)
		s.controller.Reset(sess)
		_ = s.controller.LoadSchema(ctx, sess, s.schema)
		return nil
	})
}

func (s *auditService) discardPhotos(sess *audit.Session) {
	if sess.SubmittedAt != nil {
		return
	}
	if err := s.photos.RemoveSession(sess.ID); err != nil {
		s.logger.Warn(auditModule, "Failed to remove session photos", map[string]interface{}{
			"session_id": sess.ID,
			"error":      err.Error(),
		})
	}
}

func (s *auditService) ExportCSV(ctx context.Context, auditorID, sessionID string) ([]byte, string, error) {
	var data []byte
	var name string
	err := s.withFinished(ctx, auditorID, sessionID, "export_csv", func(sess *audit.Session) error {
		var err error
		data, err = report.CSV(sess.ProjectLabel, sess.CollectedData)
		name = exportName(sess, "csv")
		return err
	})
	if err != nil {
		return nil, "", err
	}
	return data, name, nil
}

func (s *auditService) ExportZIP(ctx context.Context, auditorID, sessionID string) ([]byte, string, error) {
	var data []byte
	var name string
	err := s.withFinished(ctx, auditorID, sessionID, "export_zip", func(sess *audit.Session) error {
		var n int
		var err error
		data, n, err = report.Zip(sess.CollectedData, s.photos.Open)
		if err != nil {
			return err
		}
		name = exportName(sess, "zip")
		s.logger.Info(auditModule, "Photo archive exported", map[string]interface{}{
			"session_id": sess.ID,
			"photos":     n,
		})
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return data, name, nil
}

// withFinished runs a read-only render of a finished audit under the
// session lock.
func (s *auditService) withFinished(ctx context.Context, auditorID, sessionID, action string, fn func(*audit.Session) error) error {
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.load(ctx, auditorID, sessionID)
	if err != nil {
		return err
	}
	if sess.State != audit.StateFinished {
		return &audit.TransitionError{Action: action, From: sess.State}
	}
	return fn(sess)
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// exportName builds audit_<project>_<date>.<ext> with a filesystem safe
// project label.
func exportName(sess *audit.Session, ext string) string {
	label := strings.Trim(unsafeName.ReplaceAllString(sess.ProjectLabel, "_"), "_")
	if label == "" {
		label = "projet"
	}
	day := time.Now()
	if sess.StartedAt != nil {
		day = *sess.StartedAt
	}
	return fmt.Sprintf("audit_%s_%s.%s", label, day.Format("20060102"), ext)
}
