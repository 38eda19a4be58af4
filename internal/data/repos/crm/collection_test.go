package crm

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yungbote/agencycrm-backend/internal/data/repos/testutil"
	types "github.com/yungbote/agencycrm-backend/internal/domain"
	crmdomain "github.com/yungbote/agencycrm-backend/internal/domain/crm"
	"github.com/yungbote/agencycrm-backend/internal/platform/dbctx"
)

func TestCollectionRepoContacts(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := testutil.DBC().Ctx
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewCollectionRepo[types.Contact](db, testutil.Logger(t), CollectionConfig{
		Name:  "contacts",
		Order: []string{"last_name", "first_name"},
	})

	o1 := testutil.SeedOrganization(t, ctx, tx, "One")
	o2 := testutil.SeedOrganization(t, ctx, tx, "Two")
	inOrg := func(id uuid.UUID) Scope {
		return func(q *gorm.DB) *gorm.DB { return q.Where("organization_id = ?", id) }
	}

	c := &types.Contact{FirstName: "Zed", LastName: "Alpha"}
	c.OrganizationID = o1.ID
	if err := repo.Create(dbc, c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	testutil.SeedContact(t, ctx, tx, o1.ID, "Amy")
	other := testutil.SeedContact(t, ctx, tx, o2.ID, "Bob")

	rows, err := repo.List(dbc, inOrg(o1.ID))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 2 || rows[0].LastName != "Alpha" {
		t.Fatalf("List: unexpected rows %+v", rows)
	}

	got, err := repo.Get(dbc, c.ID, inOrg(o1.ID))
	if err != nil || got == nil || got.FirstName != "Zed" {
		t.Fatalf("Get: err=%v got=%+v", err, got)
	}
	if hidden, err := repo.Get(dbc, other.ID, inOrg(o1.ID)); err != nil || hidden != nil {
		t.Fatalf("Get across tenants: err=%v got=%+v", err, hidden)
	}
	if ok, err := repo.Exists(dbc, other.ID, inOrg(o2.ID)); err != nil || !ok {
		t.Fatalf("Exists: ok=%v err=%v", ok, err)
	}

	got.Phone = "555-0100"
	if err := repo.Save(dbc, got); err != nil {
		t.Fatalf("Save: %v", err)
	}
	reloaded, _ := repo.Get(dbc, c.ID)
	if reloaded.Phone != "555-0100" || !reloaded.CreatedAt.Equal(c.CreatedAt) {
		t.Fatalf("Save: unexpected row %+v", reloaded)
	}

	n, err := repo.Delete(dbc, other.ID, inOrg(o1.ID))
	if err != nil || n != 0 {
		t.Fatalf("Delete across tenants: n=%d err=%v", n, err)
	}
	n, err = repo.Delete(dbc, c.ID, inOrg(o1.ID))
	if err != nil || n != 1 {
		t.Fatalf("Delete: n=%d err=%v", n, err)
	}
}

func TestCollectionRepoDealPreloads(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := testutil.DBC().Ctx
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewCollectionRepo[types.Deal](db, testutil.Logger(t), CollectionConfig{
		Name:     "deals",
		Preloads: []string{"Contact", "Owner"},
	})

	o := testutil.SeedOrganization(t, ctx, tx, "One")
	u := testutil.SeedUser(t, ctx, tx, "owner", &o.ID, types.RoleAgent)
	contact := testutil.SeedContact(t, ctx, tx, o.ID, "Carla")

	withContact := &types.Deal{
		Title:     "Lakehouse",
		ContactID: &contact.ID,
		Stage:     crmdomain.DealNegotiation,
		Value:     decimal.NewFromInt(500000),
	}
	withContact.UserID = u.ID
	if err := repo.Create(dbc, withContact); err != nil {
		t.Fatalf("Create: %v", err)
	}
	bare := testutil.SeedDeal(t, ctx, tx, u.ID, crmdomain.DealNew, 10)

	got, err := repo.Get(dbc, withContact.ID)
	if err != nil || got == nil {
		t.Fatalf("Get: err=%v got=%+v", err, got)
	}
	if got.ClientName != "Carla Doe" || got.OwnerUsername != "owner" {
		t.Fatalf("expected display fields, got client=%q owner=%q", got.ClientName, got.OwnerUsername)
	}
	if got.Probability != 10 {
		t.Fatalf("expected default probability, got %d", got.Probability)
	}

	got, _ = repo.Get(dbc, bare.ID)
	if got.ClientName != "Unknown" {
		t.Fatalf("expected Unknown client, got %q", got.ClientName)
	}
}

func TestCollectionRepoBulkOperations(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := testutil.DBC().Ctx
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewCollectionRepo[types.Deal](db, testutil.Logger(t), CollectionConfig{Name: "deals"})
	o := testutil.SeedOrganization(t, ctx, tx, "One")
	u := testutil.SeedUser(t, ctx, tx, "owner", &o.ID, types.RoleAgent)
	contact := testutil.SeedContact(t, ctx, tx, o.ID, "Carla")

	linked := testutil.SeedDeal(t, ctx, tx, u.ID, crmdomain.DealNew, 10)
	linked.ContactID = &contact.ID
	if err := repo.Save(dbc, linked); err != nil {
		t.Fatalf("Save: %v", err)
	}
	testutil.SeedDeal(t, ctx, tx, u.ID, crmdomain.DealClosedWon, 20)
	testutil.SeedDeal(t, ctx, tx, u.ID, crmdomain.DealClosedLost, 30)

	byContact := func(q *gorm.DB) *gorm.DB { return q.Where("contact_id = ?", contact.ID) }
	byStage := func(stage crmdomain.DealStage) Scope {
		return func(q *gorm.DB) *gorm.DB { return q.Where("stage = ?", stage) }
	}

	if n, err := repo.Count(dbc, byContact); err != nil || n != 1 {
		t.Fatalf("Count: n=%d err=%v", n, err)
	}
	if n, err := repo.ClearColumn(dbc, "contact_id", byContact); err != nil || n != 1 {
		t.Fatalf("ClearColumn: n=%d err=%v", n, err)
	}
	got, _ := repo.Get(dbc, linked.ID)
	if got == nil || got.ContactID != nil {
		t.Fatalf("ClearColumn: expected no contact, got %+v", got)
	}

	if n, err := repo.DeleteWhere(dbc); err != nil || n != 0 {
		t.Fatalf("DeleteWhere without scopes: n=%d err=%v", n, err)
	}
	if n, err := repo.DeleteWhere(dbc, byStage(crmdomain.DealClosedLost)); err != nil || n != 1 {
		t.Fatalf("DeleteWhere: n=%d err=%v", n, err)
	}
	if n, err := repo.Count(dbc); err != nil || n != 2 {
		t.Fatalf("Count after delete: n=%d err=%v", n, err)
	}
}
