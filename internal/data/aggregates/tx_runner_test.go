package aggregates_test

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/agencycrm-backend/internal/data/aggregates"
	"github.com/yungbote/agencycrm-backend/internal/data/aggregates/testutil"
	repotest "github.com/yungbote/agencycrm-backend/internal/data/repos/testutil"
	types "github.com/yungbote/agencycrm-backend/internal/domain"
	domainagg "github.com/yungbote/agencycrm-backend/internal/domain/aggregates"
	"github.com/yungbote/agencycrm-backend/internal/platform/dbctx"
)

func TestInTxCommitsAndObservesSuccess(t *testing.T) {
	db := repotest.DB(t)
	hooks := &testutil.HooksRecorder{}
	runner := aggregates.NewGormTxRunner(db, hooks)

	err := runner.InTx(context.Background(), "org.create", func(dbc dbctx.Context) error {
		return dbc.Tx.Create(&types.Organization{Name: "Acme"}).Error
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}
	var n int64
	db.Model(&types.Organization{}).Count(&n)
	if n != 1 {
		t.Fatalf("organizations: want=1 got=%d", n)
	}
	if got := hooks.Statuses(); len(got) != 1 || got[0] != "success" {
		t.Fatalf("statuses: got=%v", got)
	}
}

func TestInTxRollsBackAndLabelsFailures(t *testing.T) {
	db := repotest.DB(t)
	hooks := &testutil.HooksRecorder{}
	runner := aggregates.NewGormTxRunner(db, hooks)
	ctx := context.Background()

	err := runner.InTx(ctx, "org.create", func(dbc dbctx.Context) error {
		if err := dbc.Tx.Create(&types.Organization{Name: "Acme"}).Error; err != nil {
			return err
		}
		return domainagg.Validation("org.create", "nope")
	})
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var n int64
	db.Model(&types.Organization{}).Count(&n)
	if n != 0 {
		t.Fatalf("rollback left %d organizations", n)
	}

	key := "dup"
	seed := &types.Organization{Name: "One", ProvisionKey: &key}
	if err := db.Create(seed).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	err = runner.InTx(ctx, "org.provision", func(dbc dbctx.Context) error {
		return dbc.Tx.Create(&types.Organization{Name: "Two", ProvisionKey: &key}).Error
	})
	if !aggregates.IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}

	_ = runner.InTx(ctx, "boom", func(dbctx.Context) error { return errors.New("boom") })

	want := []string{"validation", "conflict", "internal"}
	got := hooks.Statuses()
	if len(got) != len(want) {
		t.Fatalf("statuses: want=%v got=%v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("statuses: want=%v got=%v", want, got)
		}
	}
	if len(hooks.Conflicts) != 1 || hooks.Conflicts[0] != "org.provision" {
		t.Fatalf("conflicts: got=%v", hooks.Conflicts)
	}
}
