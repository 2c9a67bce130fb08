package service

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/OpenGRC/console/internal/forms/model"
)

func setupLayoutStore(t *testing.T) *LayoutStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.FormLayout{}))
	return NewLayoutStore(db)
}

func saveLayout(t *testing.T, store *LayoutStore, name, stage, agentType string) {
	t.Helper()
	err := store.SaveLayout(context.Background(), &model.FormLayout{
		TenantID:      testTenant,
		Name:          name,
		RequestType:   "risk_assessment",
		WorkflowStage: stage,
		AgentType:     agentType,
		Sections: []model.Section{
			{ID: "main", Title: "Main", Order: 1, Fields: []string{"risk_title"}},
		},
		Active: true,
	})
	require.NoError(t, err)
}

func TestLayoutStore_FindLayout(t *testing.T) {
	store := setupLayoutStore(t)
	ctx := context.Background()

	saveLayout(t, store, "generic", "", "")
	saveLayout(t, store, "review-stage", "review", "")
	saveLayout(t, store, "review-auditor", "review", "auditor")

	t.Run("Wildcard Match", func(t *testing.T) {
		layout, err := store.FindLayout(ctx, LayoutQuery{
			TenantID:    testTenant,
			RequestType: "risk_assessment",
		})
		require.NoError(t, err)
		require.NotNil(t, layout)
		assert.Equal(t, "generic", layout.Name)
	})

	t.Run("Stage Specific Wins Over Wildcard", func(t *testing.T) {
		layout, err := store.FindLayout(ctx, LayoutQuery{
			TenantID:      testTenant,
			RequestType:   "risk_assessment",
			WorkflowStage: "review",
		})
		require.NoError(t, err)
		require.NotNil(t, layout)
		assert.Equal(t, "review-stage", layout.Name)
	})

	t.Run("Most Specific Selector Wins", func(t *testing.T) {
		layout, err := store.FindLayout(ctx, LayoutQuery{
			TenantID:      testTenant,
			RequestType:   "risk_assessment",
			WorkflowStage: "review",
			AgentType:     "auditor",
		})
		require.NoError(t, err)
		require.NotNil(t, layout)
		assert.Equal(t, "review-auditor", layout.Name)
	})

	t.Run("No Match Returns Nil Without Error", func(t *testing.T) {
		layout, err := store.FindLayout(ctx, LayoutQuery{
			TenantID:    testTenant,
			RequestType: "unknown_type",
		})
		require.NoError(t, err)
		assert.Nil(t, layout)
	})
}

func TestLayoutStore_SectionsSurviveRoundTrip(t *testing.T) {
	store := setupLayoutStore(t)
	ctx := context.Background()

	sections := []model.Section{
		{ID: "general", Title: "General", Order: 1, Fields: []string{"risk_title", "owner"}},
		{ID: "detail", Title: "Detail", Order: 2, Fields: []string{"mitigation_plan"}},
	}
	deps := map[string]model.FieldDependency{
		"mitigation_plan": {DependsOn: "risk_level", Condition: model.ConditionEquals, Value: "high"},
	}
	layout := &model.FormLayout{
		TenantID:          testTenant,
		Name:              "round-trip",
		RequestType:       "risk_assessment",
		Sections:          sections,
		FieldDependencies: deps,
		Active:            true,
	}
	require.NoError(t, store.SaveLayout(ctx, layout))

	loaded, err := store.FindLayout(ctx, LayoutQuery{
		TenantID:    testTenant,
		RequestType: "risk_assessment",
	})
	require.NoError(t, err)
	require.NotNil(t, loaded)

	if diff := cmp.Diff(sections, loaded.Sections); diff != "" {
		t.Errorf("sections mismatch after round trip (-want +got):\n%s", diff)
	}
	dep, ok := loaded.Dependency("mitigation_plan")
	require.True(t, ok)
	assert.Equal(t, model.ConditionEquals, dep.Condition)
	assert.Equal(t, "high", dep.Value)
}
