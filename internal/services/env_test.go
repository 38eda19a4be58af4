package services

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/agencycrm-backend/internal/data/aggregates"
	"github.com/yungbote/agencycrm-backend/internal/data/repos"
	"github.com/yungbote/agencycrm-backend/internal/data/repos/testutil"
	types "github.com/yungbote/agencycrm-backend/internal/domain"
	domainagg "github.com/yungbote/agencycrm-backend/internal/domain/aggregates"
	"github.com/yungbote/agencycrm-backend/internal/observability"
	"github.com/yungbote/agencycrm-backend/internal/platform/logger"
)

const testSecret = "test-secret"

type testEnv struct {
	ctx       context.Context
	db        *gorm.DB
	log       *logger.Logger
	tx        aggregates.TxRunner
	metrics   *observability.Metrics
	orgRepo   repos.OrganizationRepo
	userRepo  repos.UserRepo
	tokenRepo repos.UserTokenRepo
	statsRepo repos.StatsRepo
	crmRepos  CRMRepos
	tenants   TenantService
	crm       CRMCollections
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	metrics := observability.New()
	tx := aggregates.NewGormTxRunner(db, aggregates.NewObservabilityHooks(metrics))

	env := &testEnv{
		ctx:       context.Background(),
		db:        db,
		log:       log,
		tx:        tx,
		metrics:   metrics,
		orgRepo:   repos.NewOrganizationRepo(db, log),
		userRepo:  repos.NewUserRepo(db, log),
		tokenRepo: repos.NewUserTokenRepo(db, log),
		statsRepo: repos.NewStatsRepo(db, log),
		crmRepos:  NewCRMRepos(db, log),
	}
	env.tenants = NewTenantService(db, log, tx, env.orgRepo, env.userRepo, metrics)
	env.crm = NewCRMCollections(db, log, tx, env.tenants, env.crmRepos)
	return env
}

func (e *testEnv) auth(t *testing.T, now func() time.Time) AuthService {
	t.Helper()
	return e.authWithUsers(t, e.userRepo, now)
}

func (e *testEnv) authWithUsers(t *testing.T, users repos.UserRepo, now func() time.Time) AuthService {
	t.Helper()
	return NewAuthService(e.db, e.log, e.tx, e.orgRepo, users, e.tokenRepo, e.metrics, AuthConfig{
		SecretKey:  testSecret,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
		BcryptCost: bcrypt.MinCost,
		Now:        now,
	})
}

// caller seeds a user and returns its caller. orgID may be nil.
func (e *testEnv) caller(t *testing.T, username string, org *types.Organization, role types.Role) *types.Caller {
	t.Helper()
	if org == nil {
		return testutil.Caller(testutil.SeedUser(t, e.ctx, e.db, username, nil, role))
	}
	return testutil.Caller(testutil.SeedUser(t, e.ctx, e.db, username, &org.ID, role))
}

func (e *testEnv) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", model, err)
	}
	return n
}

func requireCode(t *testing.T, err error, code domainagg.ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if got := domainagg.CodeOf(err); got != code {
		t.Fatalf("expected %s error, got %q (%v)", code, got, err)
	}
}

func requireMessage(t *testing.T, err error, msg string) {
	t.Helper()
	ae, ok := domainagg.As(err)
	if !ok {
		t.Fatalf("expected coded error, got %v", err)
	}
	if ae.PublicMessage() != msg {
		t.Fatalf("expected message %q, got %q", msg, ae.PublicMessage())
	}
}
