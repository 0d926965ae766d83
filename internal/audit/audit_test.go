package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patchwork_back_end/internal/logger"
	"patchwork_back_end/internal/models"
	"patchwork_back_end/internal/repository/repotest"
)

func TestRecord(t *testing.T) {
	store := repotest.New()
	r := NewRecorder(store, logger.Nop())

	r.Record(context.Background(), "admin", models.ActionOrderStatus, models.ResourceOrder, "o1",
		"approved", map[string]string{"status": "shipped"})
	r.RecordFailure(context.Background(), "u1", models.ActionRefundRequest, models.ResourceRefund, "o1", "refus")

	require.Len(t, store.Audit, 2)
	first := store.Audit[0]
	assert.True(t, first.Success)
	assert.Equal(t, "approved", first.OldValue)
	assert.JSONEq(t, `{"status":"shipped"}`, first.NewValue)
	assert.False(t, first.Timestamp.IsZero())

	assert.False(t, store.Audit[1].Success)
	assert.Equal(t, "refus", store.Audit[1].NewValue)
}

func TestRecordSwallowsErrors(t *testing.T) {
	store := repotest.New()
	store.Err = errors.New("scylla down")

	assert.NotPanics(t, func() {
		NewRecorder(store, logger.Nop()).Record(context.Background(), "u", "a", "r", "id", nil, nil)
	})

	var nilRecorder *Recorder
	assert.NotPanics(t, func() {
		nilRecorder.Record(context.Background(), "u", "a", "r", "id", nil, nil)
	})
}
