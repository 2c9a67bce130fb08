package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrail_RecordAndList(t *testing.T) {
	trail, err := NewInMemoryTrail()
	require.NoError(t, err)
	defer trail.Close()

	ctx := context.Background()
	tenantID := "11111111-1111-1111-1111-111111111111"

	trail.Record(ctx, tenantID, "admin@example.com", "workflow_step.add", "workflow_step", "step-1", map[string]any{"stepNumber": 1})
	trail.Record(ctx, tenantID, "admin@example.com", "workflow_step.delete", "workflow_step", "step-2", nil)
	trail.Record(ctx, "22222222-2222-2222-2222-222222222222", "other@example.com", "form.submit", "form_submission", "sub-1", nil)

	entries, err := trail.ListByTenant(ctx, tenantID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, entry := range entries {
		assert.Equal(t, tenantID, entry.TenantID)
	}
}

func TestTrail_ListLimit(t *testing.T) {
	trail, err := NewInMemoryTrail()
	require.NoError(t, err)
	defer trail.Close()

	ctx := context.Background()
	tenantID := "11111111-1111-1111-1111-111111111111"
	for i := 0; i < 5; i++ {
		trail.Record(ctx, tenantID, "admin@example.com", "workflow_step.update", "workflow_step", "step", nil)
	}

	entries, err := trail.ListByTenant(ctx, tenantID, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

// A nil trail is a no-op, not a crash: recording must never fail the
// operation being audited.
func TestTrail_NilSafe(t *testing.T) {
	var trail *Trail
	trail.Record(context.Background(), "tenant", "actor", "action", "entity", "id", nil)
}
