package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/agencycrm-backend/internal/data/repos/testutil"
	types "github.com/yungbote/agencycrm-backend/internal/domain"
	domainagg "github.com/yungbote/agencycrm-backend/internal/domain/aggregates"
	"github.com/yungbote/agencycrm-backend/internal/domain/crm"
	"github.com/yungbote/agencycrm-backend/internal/domain/org"
)

func TestUserListPermissions(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.db, env.log, env.userRepo, env.orgRepo, env.statsRepo)

	o1 := testutil.SeedOrganization(t, env.ctx, env.db, "One")
	o2 := testutil.SeedOrganization(t, env.ctx, env.db, "Two")
	admin := env.caller(t, "admin1", o1, types.RoleAdmin)
	agent := env.caller(t, "agent1", o1, types.RoleAgent)
	env.caller(t, "admin2", o2, types.RoleAdmin)
	staff := env.caller(t, "staff", nil, types.RoleAgent)
	staff.IsStaff = true

	all, err := svc.List(env.ctx, staff)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	mine, err := svc.List(env.ctx, admin)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, u := range mine {
		assert.Equal(t, o1.ID, *u.OrganizationID)
	}

	_, err = svc.List(env.ctx, agent)
	requireCode(t, err, domainagg.CodeForbidden)

	me, err := svc.GetMe(env.ctx, agent)
	require.NoError(t, err)
	assert.Equal(t, "agent1", me.Username)
	assert.Equal(t, "One", me.Organization.Name)
}

func TestPlatformStats(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.db, env.log, env.userRepo, env.orgRepo, env.statsRepo)

	o1 := testutil.SeedOrganization(t, env.ctx, env.db, "One")
	inactive := &types.Organization{Name: "Lapsed", SubscriptionStatus: org.SubscriptionInactive}
	require.NoError(t, env.db.Create(inactive).Error)
	testutil.SeedTransaction(t, env.ctx, env.db, o1.ID, testutil.TransactionSeed{Stage: crm.StageActive})
	root := env.caller(t, "root", o1, types.RoleAdmin)
	root.IsSuperuser = true
	admin := env.caller(t, "boss", o1, types.RoleAdmin)

	_, err := svc.PlatformStats(env.ctx, admin)
	requireCode(t, err, domainagg.CodeForbidden)

	stats, err := svc.PlatformStats(env.ctx, root)
	require.NoError(t, err)
	assert.Equal(t, PlatformStats{
		TotalOrganizations:  2,
		ActiveOrganizations: 1,
		TotalUsers:          2,
		TotalTransactions:   1,
	}, *stats)
}
