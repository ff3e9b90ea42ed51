package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"site-audit-be/internal/dto"
	"site-audit-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
)

const archiveModule = "ARCHIVE"

// IArchiveService writes the CSV report of every submitted audit to the
// report directory, off the request path.
type IArchiveService interface {
	Consume(ctx context.Context) error
}

type archiveService struct {
	subscriber message.Subscriber
	topicName  string
	reportDir  string
	logger     logger.ILogger
}

func NewArchiveService(subscriber message.Subscriber, topicName, reportDir string, log logger.ILogger) IArchiveService {
	return &archiveService{
		subscriber: subscriber,
		topicName:  topicName,
		reportDir:  reportDir,
		logger:     log,
	}
}

func (as *archiveService) Consume(ctx context.Context) error {
	messages, err := as.subscriber.Subscribe(ctx, as.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			as.processMessage(msg)
		}
	}()

	return nil
}

func (as *archiveService) processMessage(msg *message.Message) {
	var payload dto.ArchiveSubmissionMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		as.logger.Error(archiveModule, "Invalid archive message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // a malformed payload never becomes valid
		return
	}

	path, err := as.write(payload)
	if err != nil {
		as.logger.Error(archiveModule, "Failed to archive submission", map[string]interface{}{
			"submission_id": payload.SubmissionID,
			"error":         err.Error(),
		})
		msg.Nack()
		return
	}

	as.logger.Info(archiveModule, "Submission archived", map[string]interface{}{
		"submission_id": payload.SubmissionID,
		"project":       payload.ProjectLabel,
		"path":          path,
	})
	msg.Ack()
}

// ArchivePath is where the report of a submission is written:
// <dir>/<yyyy-mm-dd>/<submission id>.csv
func ArchivePath(dir string, payload dto.ArchiveSubmissionMessage) string {
	day := payload.SubmittedAt.UTC().Format("2006-01-02")
	return filepath.Join(dir, day, payload.SubmissionID+".csv")
}

func (as *archiveService) write(payload dto.ArchiveSubmissionMessage) (string, error) {
	if payload.SubmissionID == "" {
		return "", fmt.Errorf("missing submission id")
	}
	path := ArchivePath(as.reportDir, payload)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, payload.CSV, 0644); err != nil {
		return "", err
	}
	return path, nil
}
