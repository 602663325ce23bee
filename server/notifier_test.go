package server

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/motongxue/chunkedRecordTransfer/models"
)

type recordingNotifier struct {
	outcomes []models.FinalizeOutcome
	err      error
}

func (n *recordingNotifier) Notify(_ context.Context, outcome models.FinalizeOutcome) error {
	n.outcomes = append(n.outcomes, outcome)
	return n.err
}

func TestOutcomeOf(t *testing.T) {
	ok := outcomeOf(&models.FinalizeResult{ID: "id"}, nil)
	assert.True(t, ok.Success)
	assert.Equal(t, "id", ok.Result.ID)

	incomplete := outcomeOf(nil, fmt.Errorf("wrapped: %w", &models.IncompleteUploadError{Missing: 4}))
	assert.False(t, incomplete.Success)
	require.NotNil(t, incomplete.Missing)
	assert.Equal(t, 4, *incomplete.Missing)

	failed := outcomeOf(nil, models.ErrWriteFailure)
	assert.Nil(t, failed.Missing)
	assert.Equal(t, "write failure", failed.Error)
}

func TestNotifiersCallsAllAndJoinsErrors(t *testing.T) {
	first := &recordingNotifier{err: errors.New("boom")}
	second := &recordingNotifier{}

	err := Notifiers{first, second}.Notify(context.Background(), models.FinalizeOutcome{Success: true, Result: &models.FinalizeResult{}})
	assert.ErrorContains(t, err, "boom")
	assert.Len(t, first.outcomes, 1)
	assert.Len(t, second.outcomes, 1)
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	notifier := NewLogNotifier(zap.New(core))

	require.NoError(t, notifier.Notify(context.Background(), models.FinalizeOutcome{Success: true, Result: &models.FinalizeResult{ID: "x", Chunks: 3}}))
	missing := 1
	require.NoError(t, notifier.Notify(context.Background(), models.FinalizeOutcome{Error: "incomplete", Missing: &missing}))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "recording finalized", entries[0].Message)
	assert.Equal(t, int64(3), entries[0].ContextMap()["chunks"])
	assert.Equal(t, "recording finalize failed", entries[1].Message)
	assert.Equal(t, int64(1), entries[1].ContextMap()["missing"])
}
