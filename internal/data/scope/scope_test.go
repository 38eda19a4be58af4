package scope

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/agencycrm-backend/internal/data/repos/testutil"
	types "github.com/yungbote/agencycrm-backend/internal/domain"
	"github.com/yungbote/agencycrm-backend/internal/domain/crm"
)

func TestOrganizationFilterIsolatesTenants(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()

	o1 := testutil.SeedOrganization(t, ctx, db, "One")
	o2 := testutil.SeedOrganization(t, ctx, db, "Two")
	testutil.SeedContact(t, ctx, db, o1.ID, "a")
	testutil.SeedContact(t, ctx, db, o1.ID, "b")
	testutil.SeedContact(t, ctx, db, o2.ID, "c")

	agent := testutil.Caller(testutil.SeedUser(t, ctx, db, "agent", &o1.ID, types.RoleAgent))
	root := testutil.Caller(testutil.SeedUser(t, ctx, db, "root", &o2.ID, types.RoleAdmin))
	root.IsSuperuser = true
	orphan := testutil.Caller(testutil.SeedUser(t, ctx, db, "orphan", nil, types.RoleAgent))

	count := func(s Strategy, c *types.Caller) int64 {
		var n int64
		require.NoError(t, db.Model(&crm.Contact{}).Scopes(s.Filter(c)).Count(&n).Error)
		return n
	}

	orgScope := Organization{SuperuserBypass: true}
	assert.Equal(t, int64(2), count(orgScope, agent))
	assert.Equal(t, int64(3), count(orgScope, root), "superuser sees every tenant")
	assert.Equal(t, int64(1), count(Organization{}, root), "strict scope ignores superuser")
	assert.Equal(t, int64(0), count(orgScope, orphan))
	assert.Equal(t, int64(0), count(orgScope, nil))
}

func TestOwnerFilterIgnoresOrganization(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()

	o := testutil.SeedOrganization(t, ctx, db, "One")
	alice := testutil.SeedUser(t, ctx, db, "alice", &o.ID, types.RoleAgent)
	bob := testutil.SeedUser(t, ctx, db, "bob", &o.ID, types.RoleAdmin)
	testutil.SeedDeal(t, ctx, db, alice.ID, crm.DealNew, 100)
	testutil.SeedDeal(t, ctx, db, bob.ID, crm.DealNew, 100)

	bobCaller := testutil.Caller(bob)
	bobCaller.IsSuperuser = true

	var deals []crm.Deal
	require.NoError(t, db.Scopes(Owner{}.Filter(bobCaller)).Find(&deals).Error)
	require.Len(t, deals, 1)
	assert.Equal(t, bob.ID, deals[0].UserID)
	assert.False(t, Owner{}.RequiresTenant())
}

func TestStampAndCarry(t *testing.T) {
	orgID := uuid.New()
	userID := uuid.New()
	caller := &types.Caller{UserID: userID, OrganizationID: &orgID}

	task := &crm.Task{Title: "call back"}
	require.NoError(t, Organization{StampOwner: true}.Stamp(task, caller))
	assert.Equal(t, orgID, task.OrganizationID)
	assert.Equal(t, userID, task.UserID)

	moved := *task
	moved.OrganizationID = uuid.New()
	moved.UserID = uuid.New()
	Organization{StampOwner: true}.Carry(&moved, task)
	assert.Equal(t, orgID, moved.OrganizationID)
	assert.Equal(t, userID, moved.UserID)

	err := Organization{}.Stamp(&crm.Deal{}, caller)
	assert.Error(t, err, "deals carry no organization")

	err = Organization{}.Stamp(&crm.Contact{}, &types.Caller{UserID: userID})
	assert.Error(t, err, "stamping requires an ensured tenant")
}
