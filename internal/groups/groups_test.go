package groups

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testTenant = "11111111-1111-1111-1111-111111111111"

func setupGroupService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&ApproverGroup{}))
	return NewService(db), db
}

func TestService_ListGroups(t *testing.T) {
	service, db := setupGroupService(t)
	ctx := context.Background()

	for _, name := range []string{"Security Approvers", "Compliance Board"} {
		group := ApproverGroup{
			TenantID:    testTenant,
			Name:        name,
			MemberRoles: []string{"tenant_admin", "compliance_officer"},
		}
		require.NoError(t, db.Create(&group).Error)
	}
	other := ApproverGroup{TenantID: "22222222-2222-2222-2222-222222222222", Name: "Other Tenant"}
	require.NoError(t, db.Create(&other).Error)

	listed, err := service.ListGroups(ctx, testTenant)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "Compliance Board", listed[0].Name)
	assert.Equal(t, []string{"tenant_admin", "compliance_officer"}, []string(listed[0].MemberRoles))
}

func TestService_NameIndex(t *testing.T) {
	service, db := setupGroupService(t)
	ctx := context.Background()

	group := ApproverGroup{TenantID: testTenant, Name: "Security Approvers"}
	require.NoError(t, db.Create(&group).Error)

	index, err := service.NameIndex(ctx, testTenant)
	require.NoError(t, err)
	assert.Equal(t, "Security Approvers", index[group.ID.String()])
}
