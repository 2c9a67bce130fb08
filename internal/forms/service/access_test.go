package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/OpenGRC/console/internal/forms/model"
)

const testTenant = "11111111-1111-1111-1111-111111111111"

func setupAccessResolver(t *testing.T) (*AccessStore, *AccessResolver) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.FieldAccessRule{}))

	store := NewAccessStore(db)
	return store, NewAccessResolver(store)
}

func seedRule(t *testing.T, store *AccessStore, fieldName, agentType, stage string, canView, canEdit bool) {
	t.Helper()
	err := store.UpsertRule(context.Background(), &model.FieldAccessRule{
		TenantID:      testTenant,
		RequestType:   "risk_assessment",
		Role:          "analyst",
		AgentType:     agentType,
		WorkflowStage: stage,
		FieldName:     fieldName,
		CanView:       canView,
		CanEdit:       canEdit,
	})
	require.NoError(t, err)
}

func TestAccessResolver_Resolve(t *testing.T) {
	store, resolver := setupAccessResolver(t)
	ctx := context.Background()

	seedRule(t, store, "risk_title", "", "", true, true)
	seedRule(t, store, "mitigation_plan", "", "", true, false)
	seedRule(t, store, "internal_notes", "auditor", "", true, false)

	query := model.AccessQuery{
		TenantID:    testTenant,
		RequestType: "risk_assessment",
		Role:        "analyst",
	}

	accessMap, err := resolver.Resolve(ctx, query)
	require.NoError(t, err)

	assert.Equal(t, model.FieldAccess{CanView: true, CanEdit: true}, accessMap["risk_title"])
	assert.Equal(t, model.FieldAccess{CanView: true, CanEdit: false}, accessMap["mitigation_plan"])
	// Agent-scoped rule does not apply without that agent type.
	assert.NotContains(t, accessMap, "internal_notes")

	// With the matching agent type the scoped rule joins the wildcards.
	scoped := query
	scoped.AgentType = "auditor"
	accessMap, err = resolver.Resolve(ctx, scoped)
	require.NoError(t, err)
	assert.Contains(t, accessMap, "internal_notes")
	assert.Contains(t, accessMap, "risk_title")
}

func TestAccessResolver_MergesDuplicateRules(t *testing.T) {
	store, resolver := setupAccessResolver(t)
	ctx := context.Background()

	// Same field granted view-only at one scope and view+edit at another:
	// grants merge with OR.
	seedRule(t, store, "risk_title", "", "", true, false)
	seedRule(t, store, "risk_title", "auditor", "", true, true)

	accessMap, err := resolver.Resolve(ctx, model.AccessQuery{
		TenantID:    testTenant,
		RequestType: "risk_assessment",
		Role:        "analyst",
		AgentType:   "auditor",
	})
	require.NoError(t, err)
	assert.Equal(t, model.FieldAccess{CanView: true, CanEdit: true}, accessMap["risk_title"])
}

func TestAccessResolver_EmptyRole(t *testing.T) {
	_, resolver := setupAccessResolver(t)

	accessMap, err := resolver.Resolve(context.Background(), model.AccessQuery{
		TenantID:    testTenant,
		RequestType: "risk_assessment",
	})
	require.NoError(t, err)
	assert.Empty(t, accessMap)
}

func TestAccessResolver_CacheAndInvalidate(t *testing.T) {
	store, resolver := setupAccessResolver(t)
	ctx := context.Background()

	seedRule(t, store, "risk_title", "", "", true, false)

	query := model.AccessQuery{TenantID: testTenant, RequestType: "risk_assessment", Role: "analyst"}
	first, err := resolver.Resolve(ctx, query)
	require.NoError(t, err)
	assert.Len(t, first, 1)

	// A write behind the resolver's back is not seen until invalidation.
	seedRule(t, store, "mitigation_plan", "", "", true, false)
	cached, err := resolver.Resolve(ctx, query)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	resolver.Invalidate()
	fresh, err := resolver.Resolve(ctx, query)
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
}

func TestAccessStore_UpsertRule(t *testing.T) {
	store, _ := setupAccessResolver(t)
	ctx := context.Background()

	t.Run("Rejects Edit Without View", func(t *testing.T) {
		err := store.UpsertRule(ctx, &model.FieldAccessRule{
			TenantID:    testTenant,
			RequestType: "risk_assessment",
			Role:        "analyst",
			FieldName:   "risk_title",
			CanView:     false,
			CanEdit:     true,
		})
		assert.Error(t, err)
	})

	t.Run("Updates Existing Rule In Place", func(t *testing.T) {
		seedRule(t, store, "risk_title", "", "", true, false)
		seedRule(t, store, "risk_title", "", "", true, true)

		rules, err := store.ListRules(ctx, model.AccessQuery{
			TenantID:    testTenant,
			RequestType: "risk_assessment",
			Role:        "analyst",
		})
		require.NoError(t, err)
		require.Len(t, rules, 1)
		assert.True(t, rules[0].CanEdit)
	})
}
