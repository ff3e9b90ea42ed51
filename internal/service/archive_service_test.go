package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"site-audit-be/internal/dto"
	"site-audit-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchivePath(t *testing.T) {
	at := time.Date(2026, 5, 4, 23, 30, 0, 0, time.UTC)
	got := ArchivePath("reports", dto.ArchiveSubmissionMessage{SubmissionID: "abc", SubmittedAt: at})
	assert.Equal(t, filepath.Join("reports", "2026-05-04", "abc.csv"), got)
}

func TestArchiveService_WritesReport(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	consumer := NewArchiveService(pubSub, "audit.archive", dir, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	at := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	payload, err := json.Marshal(dto.ArchiveSubmissionMessage{
		SubmissionID: "sub-1",
		ProjectLabel: "Parking Nord",
		SubmittedAt:  at,
		CSV:          []byte("Projet,Phase,Question_ID,Réponse\n"),
	})
	require.NoError(t, err)
	require.NoError(t, NewPublisherService("audit.archive", pubSub).Publish(ctx, payload))

	path := filepath.Join(dir, "2026-05-04", "sub-1.csv")
	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(path)
		return err == nil && string(data) == "Projet,Phase,Question_ID,Réponse\n"
	}, 2*time.Second, 10*time.Millisecond)
}
