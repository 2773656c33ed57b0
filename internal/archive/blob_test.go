package archive_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "gocloud.dev/blob/memblob"

	"github.com/agentflow/onboard/internal/archive"
	"github.com/agentflow/onboard/pkg/api"
)

func newMemArchiver(t *testing.T) *archive.BlobArchiver {
	t.Helper()

	archiver, err := archive.NewBlobArchiver(
		context.Background(), "mem://", "wizards/",
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = archiver.Close() })
	return archiver
}

func TestPutGet(t *testing.T) {
	archiver := newMemArchiver(t)
	ctx := context.Background()

	st := &api.WizardState{
		ID:          "wiz-1",
		Status:      api.WizardCompleted,
		CurrentStep: 3,
		FieldValues: api.FieldValues{"full_name": "Ada Lovelace"},
		CompletedSteps: api.CompletedSteps{
			1: time.Now().UTC().Truncate(time.Second),
		},
		CompletedAt: time.Now().UTC().Truncate(time.Second),
	}

	require.NoError(t, archiver.Put(ctx, "wiz-1-abc", st))

	restored, err := archiver.Get(ctx, "wiz-1-abc")
	require.NoError(t, err)
	assert.Equal(t, st.ID, restored.ID)
	assert.Equal(t, st.Status, restored.Status)
	assert.Equal(t, "Ada Lovelace", restored.FieldValues["full_name"])
	assert.True(t, restored.IsStepCompleted(1))
}

func TestGetNotFound(t *testing.T) {
	archiver := newMemArchiver(t)

	_, err := archiver.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, archive.ErrSnapshotNotFound)
}

func TestDelete(t *testing.T) {
	archiver := newMemArchiver(t)
	ctx := context.Background()

	st := &api.WizardState{ID: "wiz-1", Status: api.WizardCompleted}
	require.NoError(t, archiver.Put(ctx, "wiz-1-abc", st))
	require.NoError(t, archiver.Delete(ctx, "wiz-1-abc"))

	_, err := archiver.Get(ctx, "wiz-1-abc")
	assert.ErrorIs(t, err, archive.ErrSnapshotNotFound)

	// deleting a missing key is not an error
	assert.NoError(t, archiver.Delete(ctx, "ghost"))
}
