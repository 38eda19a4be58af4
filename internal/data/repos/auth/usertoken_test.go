package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/agencycrm-backend/internal/data/repos/testutil"
	types "github.com/yungbote/agencycrm-backend/internal/domain"
	"github.com/yungbote/agencycrm-backend/internal/platform/dbctx"
)

func TestUserTokenRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := testutil.DBC().Ctx
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewUserTokenRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, tx, "tokens", nil, types.RoleAgent)

	makeToken := func(refresh string, expires time.Time) *types.UserToken {
		return &types.UserToken{UserID: u.ID, RefreshToken: refresh, ExpiresAt: expires}
	}

	now := time.Now().UTC()
	t1 := makeToken("refresh-1", now.Add(time.Hour))
	if err := repo.Create(dbc, t1); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if t1.ID == uuid.Nil {
		t.Fatalf("Create: id not assigned")
	}

	got, err := repo.GetByRefreshToken(dbc, "refresh-1")
	if err != nil || got == nil || got.ID != t1.ID {
		t.Fatalf("GetByRefreshToken: err=%v got=%+v", err, got)
	}
	if got.Expired(now) {
		t.Fatalf("token should not be expired yet")
	}
	if missing, err := repo.GetByRefreshToken(dbc, "nope"); err != nil || missing != nil {
		t.Fatalf("GetByRefreshToken missing: err=%v got=%+v", err, missing)
	}

	n, err := repo.DeleteByIDs(dbc, []uuid.UUID{t1.ID})
	if err != nil || n != 1 {
		t.Fatalf("DeleteByIDs: n=%d err=%v", n, err)
	}
	n, err = repo.DeleteByIDs(dbc, []uuid.UUID{t1.ID})
	if err != nil || n != 0 {
		t.Fatalf("DeleteByIDs twice: n=%d err=%v", n, err)
	}

	if err := repo.Create(dbc, makeToken("refresh-2", now.Add(time.Hour))); err != nil {
		t.Fatalf("seed token2: %v", err)
	}
	if err := repo.Create(dbc, makeToken("refresh-3", now.Add(-time.Minute))); err != nil {
		t.Fatalf("seed token3: %v", err)
	}
	expired, err := repo.DeleteExpired(dbc, now)
	if err != nil || expired != 1 {
		t.Fatalf("DeleteExpired: n=%d err=%v", expired, err)
	}

	rows, err := repo.GetByUserIDs(dbc, []uuid.UUID{u.ID})
	if err != nil || len(rows) != 1 {
		t.Fatalf("GetByUserIDs: err=%v len=%d", err, len(rows))
	}
	if err := repo.DeleteByUserIDs(dbc, []uuid.UUID{u.ID}); err != nil {
		t.Fatalf("DeleteByUserIDs: %v", err)
	}
	rows, err = repo.GetByUserIDs(dbc, []uuid.UUID{u.ID})
	if err != nil || len(rows) != 0 {
		t.Fatalf("after DeleteByUserIDs: err=%v len=%d", err, len(rows))
	}
}
