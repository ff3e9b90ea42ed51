package memory

import (
	"context"
	"testing"
	"time"

	"site-audit-be/pkg/audit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(time.Hour)

	s := audit.NewSession("s-1", "auditor-1")
	require.NoError(t, repo.Save(ctx, s))

	got, ok, err := repo.Get(ctx, "s-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "auditor-1", got.AuditorID)

	require.NoError(t, repo.Delete(ctx, "s-1"))
	_, ok, err = repo.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionRepository_Expiry(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(10 * time.Millisecond)

	require.NoError(t, repo.Save(ctx, audit.NewSession("s-1", "a")))
	time.Sleep(30 * time.Millisecond)

	_, ok, err := repo.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.False(t, ok)
}
