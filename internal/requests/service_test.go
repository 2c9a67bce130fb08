package requests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/OpenGRC/console/internal/audit"
	formmodel "github.com/OpenGRC/console/internal/forms/model"
	formservice "github.com/OpenGRC/console/internal/forms/service"
	"github.com/OpenGRC/console/internal/registry"
)

const (
	testTenant = "11111111-1111-1111-1111-111111111111"
	testRole   = "analyst"
)

type fixture struct {
	service  *Service
	registry *registry.Service
	layouts  *formservice.LayoutStore
	access   *formservice.AccessStore
	trail    *audit.Trail
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&registry.FieldRequirement{},
		&formmodel.FormLayout{},
		&formmodel.FieldAccessRule{},
		&FormSubmission{},
	))

	trail, err := audit.NewInMemoryTrail()
	require.NoError(t, err)
	t.Cleanup(func() { _ = trail.Close() })

	registryService := registry.NewService(registry.NewStore(db))
	layouts := formservice.NewLayoutStore(db)
	access := formservice.NewAccessStore(db)
	resolver := formservice.NewAccessResolver(access)

	return &fixture{
		service:  NewService(db, layouts, registryService, resolver, trail),
		registry: registryService,
		layouts:  layouts,
		access:   access,
		trail:    trail,
	}
}

func (f *fixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	emailReq := &registry.FieldRequirement{
		TenantID:   testTenant,
		FieldName:  "contact_email",
		Label:      "Email",
		FieldType:  registry.FieldTypeEmail,
		IsRequired: true,
		Active:     true,
	}
	require.NoError(t, f.registry.CreateRequirement(ctx, emailReq))

	titleReq := &registry.FieldRequirement{
		TenantID:  testTenant,
		FieldName: "risk_title",
		Label:     "Risk Title",
		FieldType: registry.FieldTypeText,
		Active:    true,
	}
	require.NoError(t, f.registry.CreateRequirement(ctx, titleReq))

	require.NoError(t, f.layouts.SaveLayout(ctx, &formmodel.FormLayout{
		TenantID:    testTenant,
		Name:        "risk-intake",
		RequestType: "risk_assessment",
		Sections: []formmodel.Section{
			{ID: "main", Title: "Main", Order: 1, Fields: []string{"risk_title", "contact_email"}},
		},
		Active: true,
	}))

	for _, fieldName := range []string{"risk_title", "contact_email"} {
		require.NoError(t, f.access.UpsertRule(ctx, &formmodel.FieldAccessRule{
			TenantID:    testTenant,
			RequestType: "risk_assessment",
			Role:        testRole,
			FieldName:   fieldName,
			CanView:     true,
			CanEdit:     true,
		}))
	}
}

func TestService_Submit(t *testing.T) {
	f := setupFixture(t)
	f.seed(t)
	ctx := context.Background()

	submission, err := f.service.Submit(ctx, testTenant, "analyst@example.com", testRole, SubmitRequest{
		RequestType: "risk_assessment",
		FormData: formmodel.FormData{
			"risk_title":    "Vendor data exposure",
			"contact_email": "owner@example.com",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, testTenant, submission.TenantID)
	assert.Equal(t, "analyst@example.com", submission.SubmittedBy)
	assert.NotNil(t, submission.LayoutID)

	// The accepted submission leaves an audit entry.
	entries, err := f.trail.ListByTenant(ctx, testTenant, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "form.submit", entries[0].Action)
}

func TestService_Submit_ValidationFailure(t *testing.T) {
	f := setupFixture(t)
	f.seed(t)
	ctx := context.Background()

	_, err := f.service.Submit(ctx, testTenant, "analyst@example.com", testRole, SubmitRequest{
		RequestType: "risk_assessment",
		FormData: formmodel.FormData{
			"risk_title": "Missing contact",
		},
	})
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "Email is required", validationErr.Fields["contact_email"])

	// Rejected submissions are not persisted and not audited.
	entries, auditErr := f.trail.ListByTenant(ctx, testTenant, 10)
	require.NoError(t, auditErr)
	assert.Empty(t, entries)
}

func TestService_Submit_NoLayout(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	_, err := f.service.Submit(ctx, testTenant, "analyst@example.com", testRole, SubmitRequest{
		RequestType: "unconfigured_type",
		FormData:    formmodel.FormData{},
	})
	assert.Error(t, err)
}

func TestService_Render(t *testing.T) {
	f := setupFixture(t)
	f.seed(t)
	ctx := context.Background()

	rendered, err := f.service.Render(ctx, testTenant, testRole, SubmitRequest{
		RequestType: "risk_assessment",
		FormData:    formmodel.FormData{},
	}, formmodel.VisibilityContext{RequestType: "risk_assessment"})
	require.NoError(t, err)
	require.NotNil(t, rendered.Layout)
	require.Len(t, rendered.Sections, 1)
	assert.Contains(t, rendered.Access, "risk_title")

	t.Run("Role Without Grants Sees Nothing", func(t *testing.T) {
		rendered, err := f.service.Render(ctx, testTenant, "viewer", SubmitRequest{
			RequestType: "risk_assessment",
			FormData:    formmodel.FormData{},
		}, formmodel.VisibilityContext{RequestType: "risk_assessment"})
		require.NoError(t, err)
		assert.Empty(t, rendered.Sections)
	})

	t.Run("Missing Layout Renders Empty", func(t *testing.T) {
		rendered, err := f.service.Render(ctx, testTenant, testRole, SubmitRequest{
			RequestType: "unconfigured_type",
		}, formmodel.VisibilityContext{})
		require.NoError(t, err)
		assert.Nil(t, rendered.Layout)
		assert.Empty(t, rendered.Sections)
	})
}

func TestService_ListSubmissions(t *testing.T) {
	f := setupFixture(t)
	f.seed(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.service.Submit(ctx, testTenant, "analyst@example.com", testRole, SubmitRequest{
			RequestType: "risk_assessment",
			FormData: formmodel.FormData{
				"contact_email": "owner@example.com",
			},
		})
		require.NoError(t, err)
	}

	submissions, err := f.service.ListSubmissions(ctx, testTenant, 2, 0)
	require.NoError(t, err)
	assert.Len(t, submissions, 2)

	rest, err := f.service.ListSubmissions(ctx, testTenant, 10, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}
