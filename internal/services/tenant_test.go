package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/agencycrm-backend/internal/data/repos"
	"github.com/yungbote/agencycrm-backend/internal/data/repos/testutil"
	types "github.com/yungbote/agencycrm-backend/internal/domain"
	"github.com/yungbote/agencycrm-backend/internal/platform/dbctx"
)

func TestEnsureTenantCreatesAgencyOnce(t *testing.T) {
	env := newTestEnv(t)
	caller := env.caller(t, "sam", nil, types.RoleAgent)

	o, err := env.tenants.EnsureTenant(env.ctx, caller)
	require.NoError(t, err)
	assert.Equal(t, "sam's Agency", o.Name)
	assert.Equal(t, o.ID, caller.OrgID())

	again, err := env.tenants.EnsureTenant(env.ctx, caller)
	require.NoError(t, err)
	assert.Equal(t, o.ID, again.ID)

	stored, err := env.userRepo.GetByID(dbctx.Of(env.ctx), caller.UserID)
	require.NoError(t, err)
	require.NotNil(t, stored.OrganizationID)
	assert.Equal(t, o.ID, *stored.OrganizationID)
	assert.Equal(t, int64(1), env.count(t, &types.Organization{}))
}

// staleUsers reports the user as unprovisioned on its first read. That is
// what a request sees when another request provisions the same user between
// its read and its insert.
type staleUsers struct {
	repos.UserRepo
	pending bool
}

func (s *staleUsers) GetByID(dbc dbctx.Context, userID uuid.UUID) (*types.User, error) {
	u, err := s.UserRepo.GetByID(dbc, userID)
	if err != nil || u == nil || !s.pending {
		return u, err
	}
	s.pending = false
	u.OrganizationID = nil
	u.Organization = nil
	return u, nil
}

func TestEnsureTenantConcurrentFirstWrites(t *testing.T) {
	env := newTestEnv(t)
	seed := env.caller(t, "racer", nil, types.RoleAgent)

	first, err := env.tenants.EnsureTenant(env.ctx, &types.Caller{UserID: seed.UserID, Username: seed.Username})
	require.NoError(t, err)

	// Every later request read the user before the first one committed.
	const racers = 4
	for i := 0; i < racers; i++ {
		late := NewTenantService(env.db, env.log, env.tx, env.orgRepo, &staleUsers{UserRepo: env.userRepo, pending: true}, env.metrics)
		c := *seed
		o, err := late.EnsureTenant(env.ctx, &c)
		require.NoError(t, err)
		assert.Equal(t, first.ID, o.ID)
		assert.Equal(t, first.ID, c.OrgID())
	}
	assert.Equal(t, int64(1), env.count(t, &types.Organization{}))

	stored, err := env.userRepo.GetByID(dbctx.Of(env.ctx), seed.UserID)
	require.NoError(t, err)
	require.NotNil(t, stored.OrganizationID)
	assert.Equal(t, first.ID, *stored.OrganizationID)
}

func TestEnsureTenantJoinsOrganizationLinkedMeanwhile(t *testing.T) {
	env := newTestEnv(t)
	seed := env.caller(t, "joiner", nil, types.RoleAgent)
	other := testutil.SeedOrganization(t, env.ctx, env.db, "Elsewhere")
	_, err := env.userRepo.AttachOrganizationIfUnset(dbctx.Of(env.ctx), seed.UserID, other.ID)
	require.NoError(t, err)

	late := NewTenantService(env.db, env.log, env.tx, env.orgRepo, &staleUsers{UserRepo: env.userRepo, pending: true}, env.metrics)
	c := *seed
	o, err := late.EnsureTenant(env.ctx, &c)
	require.NoError(t, err)
	assert.Equal(t, other.ID, o.ID, "the organization the user was linked to wins")
	assert.Equal(t, other.ID, c.OrgID())
}

func TestCreateProvisionsUnaffiliatedCaller(t *testing.T) {
	env := newTestEnv(t)
	caller := env.caller(t, "newbie", nil, types.RoleAgent)

	contact, err := env.crm.Contacts.Create(env.ctx, caller, &types.Contact{FirstName: "Lee"})
	require.NoError(t, err)
	require.True(t, caller.HasOrganization())
	assert.Equal(t, caller.OrgID(), contact.OrganizationID)

	second, err := env.crm.Contacts.Create(env.ctx, caller, &types.Contact{FirstName: "Kim"})
	require.NoError(t, err)
	assert.Equal(t, contact.OrganizationID, second.OrganizationID)
	assert.Equal(t, int64(1), env.count(t, &types.Organization{}))
}

func TestInvalidCreateDoesNotProvision(t *testing.T) {
	env := newTestEnv(t)
	caller := env.caller(t, "careful", nil, types.RoleAgent)

	_, err := env.crm.Contacts.Create(env.ctx, caller, &types.Contact{Role: "Landlord", FirstName: "X"})
	requireCode(t, err, "validation")
	assert.False(t, caller.HasOrganization())
	assert.Equal(t, int64(0), env.count(t, &types.Organization{}))
}
