package services

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/agencycrm-backend/internal/data/repos"
	"github.com/yungbote/agencycrm-backend/internal/data/repos/testutil"
	types "github.com/yungbote/agencycrm-backend/internal/domain"
	domainagg "github.com/yungbote/agencycrm-backend/internal/domain/aggregates"
	"github.com/yungbote/agencycrm-backend/internal/platform/dbctx"
)

func TestRegisterCreatesAgencyAdminAndTokens(t *testing.T) {
	env := newTestEnv(t)
	auth := env.auth(t, nil)

	res, err := auth.Register(env.ctx, RegisterInput{
		Username:  "maria",
		Email:     "Maria@Example.com",
		Password:  "s3cret!",
		FirstName: "Maria",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Access)
	assert.NotEmpty(t, res.Refresh)
	assert.Equal(t, "maria", res.User.Username)
	assert.Equal(t, "maria@example.com", res.User.Email)
	assert.Equal(t, "Maria's Agency", res.User.Organization)

	caller, err := auth.ResolveCaller(env.ctx, res.Access, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, types.RoleAdmin, caller.Role)
	require.True(t, caller.HasOrganization())

	u, err := env.userRepo.GetByID(dbctx.Of(env.ctx), caller.UserID)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", u.Password)
	assert.Equal(t, "Maria's Agency", u.Organization.Name)
}

func TestRegisterNamesAgencyAfterUsernameWithoutFirstName(t *testing.T) {
	env := newTestEnv(t)
	res, err := env.auth(t, nil).Register(env.ctx, RegisterInput{Username: "kb", Email: "kb@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "kb's Agency", res.User.Organization)
}

func TestRegisterValidationOrder(t *testing.T) {
	env := newTestEnv(t)
	auth := env.auth(t, nil)
	_, err := auth.Register(env.ctx, RegisterInput{Username: "taken", Email: "taken@example.com", Password: "pw"})
	require.NoError(t, err)

	cases := []struct {
		name string
		in   RegisterInput
		code domainagg.ErrorCode
		msg  string
	}{
		{"missing password", RegisterInput{Username: "taken", Email: "taken@example.com"}, domainagg.CodeValidation, "Username, email, and password are required."},
		{"blank username", RegisterInput{Username: "  ", Email: "x@example.com", Password: "pw"}, domainagg.CodeValidation, "Username, email, and password are required."},
		{"username before email", RegisterInput{Username: "taken", Email: "taken@example.com", Password: "pw"}, domainagg.CodeConflict, "Username already exists."},
		{"email", RegisterInput{Username: "fresh", Email: "TAKEN@example.com", Password: "pw"}, domainagg.CodeConflict, "Email already registered."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := auth.Register(env.ctx, tc.in)
			requireCode(t, err, tc.code)
			requireMessage(t, err, tc.msg)
		})
	}
	assert.Equal(t, int64(1), env.count(t, &types.Organization{}))
	assert.Equal(t, int64(1), env.count(t, &types.User{}))
}

type failingUserRepo struct {
	repos.UserRepo
}

func (failingUserRepo) Create(dbctx.Context, *types.User) error {
	return errors.New("disk full")
}

func TestRegisterRollsBackOnFailure(t *testing.T) {
	env := newTestEnv(t)
	auth := env.authWithUsers(t, failingUserRepo{UserRepo: env.userRepo}, nil)

	_, err := auth.Register(env.ctx, RegisterInput{Username: "doomed", Email: "doomed@example.com", Password: "pw"})
	requireCode(t, err, domainagg.CodeInternal)
	requireMessage(t, err, "Registration failed.")

	assert.Equal(t, int64(0), env.count(t, &types.Organization{}))
	assert.Equal(t, int64(0), env.count(t, &types.User{}))
	assert.Equal(t, int64(0), env.count(t, &types.UserToken{}))
}

func TestLoginRefreshLogout(t *testing.T) {
	env := newTestEnv(t)
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	auth := env.auth(t, clock)

	_, err := auth.Register(env.ctx, RegisterInput{Username: "lee", Email: "lee@example.com", Password: "pw"})
	require.NoError(t, err)

	_, err = auth.Login(env.ctx, "lee", "wrong")
	requireCode(t, err, domainagg.CodeUnauthorized)

	pair, err := auth.Login(env.ctx, "LEE@example.com", "pw")
	require.NoError(t, err)

	rotated, err := auth.Refresh(env.ctx, pair.Refresh)
	require.NoError(t, err)
	assert.NotEqual(t, pair.Refresh, rotated.Refresh)

	_, err = auth.Refresh(env.ctx, pair.Refresh)
	requireCode(t, err, domainagg.CodeUnauthorized)

	caller, err := auth.ResolveCaller(env.ctx, rotated.Access, time.UTC)
	require.NoError(t, err)
	require.NoError(t, auth.Logout(env.ctx, caller))
	_, err = auth.Refresh(env.ctx, rotated.Refresh)
	requireCode(t, err, domainagg.CodeUnauthorized)

	now = now.Add(time.Hour)
	_, err = auth.ResolveCaller(env.ctx, rotated.Access, time.UTC)
	requireCode(t, err, domainagg.CodeUnauthorized)
}

func TestResolveCallerRejectsForeignTokens(t *testing.T) {
	env := newTestEnv(t)
	auth := env.auth(t, nil)

	_, err := auth.ResolveCaller(env.ctx, "", time.UTC)
	requireCode(t, err, domainagg.CodeUnauthorized)
	_, err = auth.ResolveCaller(env.ctx, "not.a.jwt", time.UTC)
	requireCode(t, err, domainagg.CodeUnauthorized)

	res, err := auth.Register(env.ctx, RegisterInput{Username: "zoe", Email: "zoe@example.com", Password: "pw"})
	require.NoError(t, err)
	other := NewAuthService(env.db, env.log, env.tx, env.orgRepo, env.userRepo, env.tokenRepo, nil, AuthConfig{SecretKey: "different"})
	_, err = other.ResolveCaller(env.ctx, res.Access, time.UTC)
	requireCode(t, err, domainagg.CodeUnauthorized)
}

func TestPurgeExpiredSessions(t *testing.T) {
	env := newTestEnv(t)
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	auth := env.auth(t, func() time.Time { return now })

	_, err := auth.Register(env.ctx, RegisterInput{Username: "kim", Email: "kim@example.com", Password: "pw"})
	require.NoError(t, err)
	_, err = auth.Login(env.ctx, "kim", "pw")
	require.NoError(t, err)

	n, err := auth.PurgeExpiredSessions(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	now = now.Add(25 * time.Hour)
	n, err = auth.PurgeExpiredSessions(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, int64(0), env.count(t, &types.UserToken{}))
}

// tokenPayload decodes the claims segment of a signed JWT without verifying it.
func tokenPayload(t *testing.T, token string) map[string]any {
	t.Helper()
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	var claims map[string]any
	require.NoError(t, json.Unmarshal(raw, &claims))
	return claims
}

func TestAccessTokenAlwaysCarriesOrganizationClaim(t *testing.T) {
	env := newTestEnv(t)
	as := env.auth(t, nil).(*authService)

	loner := testutil.SeedUser(t, env.ctx, env.db, "loner", nil, types.RoleAgent)
	token, err := as.signAccessToken(loner)
	require.NoError(t, err)
	claims := tokenPayload(t, token)
	v, present := claims["organization_id"]
	assert.True(t, present, "claim is emitted for unprovisioned users")
	assert.Nil(t, v)

	o := testutil.SeedOrganization(t, env.ctx, env.db, "Agency")
	member := testutil.SeedUser(t, env.ctx, env.db, "member", &o.ID, types.RoleAgent)
	token, err = as.signAccessToken(member)
	require.NoError(t, err)
	assert.Equal(t, o.ID.String(), tokenPayload(t, token)["organization_id"])
}
