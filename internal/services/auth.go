package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/agencycrm-backend/internal/data/aggregates"
	"github.com/yungbote/agencycrm-backend/internal/data/repos"
	types "github.com/yungbote/agencycrm-backend/internal/domain"
	domainagg "github.com/yungbote/agencycrm-backend/internal/domain/aggregates"
	"github.com/yungbote/agencycrm-backend/internal/domain/org"
	"github.com/yungbote/agencycrm-backend/internal/observability"
	"github.com/yungbote/agencycrm-backend/internal/platform/dbctx"
	"github.com/yungbote/agencycrm-backend/internal/platform/logger"
)

const (
	tokenTypeAccess = "access"

	msgRegisterRequired = "Username, email, and password are required."
	msgUsernameTaken    = "Username already exists."
	msgEmailTaken       = "Email already registered."
	msgRegisterFailed   = "Registration failed."
	msgBadCredentials   = "No active account found with the given credentials."
	msgTokenInvalid     = "Token is invalid or expired."
	msgNoCredentials    = "Authentication credentials were not provided."
)

type RegisterInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type TokenPair struct {
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
}

type RegisteredUser struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	Organization string `json:"organization"`
}

type RegisterResult struct {
	TokenPair
	User RegisteredUser `json:"user"`
}

// AccessClaims are carried by access tokens. The caller is always reloaded
// from the database; claims only identify the user.
type AccessClaims struct {
	// OrganizationID is null until the user belongs to an organization.
	OrganizationID *string `json:"organization_id"`
	Role           string `json:"role"`
	Username       string `json:"username"`
	FirstName      string `json:"first_name"`
	IsSuperuser    bool   `json:"is_superuser"`
	TokenType      string `json:"token_type"`
	jwt.RegisteredClaims
}

type AuthConfig struct {
	SecretKey  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	Now        func() time.Time
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*RegisterResult, error)
	Login(ctx context.Context, login, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, caller *types.Caller) error
	// ResolveCaller verifies an access token and loads the caller it names.
	ResolveCaller(ctx context.Context, accessToken string, loc *time.Location) (*types.Caller, error)
	// PurgeExpiredSessions deletes refresh sessions past their expiry.
	PurgeExpiredSessions(ctx context.Context) (int64, error)
	AccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	tx            aggregates.TxRunner
	orgRepo       repos.OrganizationRepo
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	metrics       *observability.Metrics
	cfg           AuthConfig
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	tx aggregates.TxRunner,
	orgRepo repos.OrganizationRepo,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	metrics *observability.Metrics,
	cfg AuthConfig,
) AuthService {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = time.Hour
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &authService{
		db:            db,
		log:           log.With("service", "AuthService"),
		tx:            tx,
		orgRepo:       orgRepo,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		metrics:       metrics,
		cfg:           cfg,
	}
}

func (as *authService) AccessTTL() time.Duration { return as.cfg.AccessTTL }

func (as *authService) now() time.Time { return as.cfg.Now().UTC() }

// Register creates an organization, its admin user and a session in one
// transaction. Any failure leaves nothing behind.
func (as *authService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	const op = "auth.register"
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	if in.Username == "" || in.Email == "" || in.Password == "" {
		as.metrics.IncRegistration("invalid")
		return nil, domainagg.Validation(op, msgRegisterRequired)
	}

	dbc := dbctx.Of(ctx)
	taken, err := as.userRepo.UsernameExists(dbc, in.Username)
	if err != nil {
		return nil, as.registerFailed(op, err)
	}
	if taken {
		as.metrics.IncRegistration("conflict")
		return nil, domainagg.Conflict(op, msgUsernameTaken)
	}
	taken, err = as.userRepo.EmailExists(dbc, in.Email)
	if err != nil {
		return nil, as.registerFailed(op, err)
	}
	if taken {
		as.metrics.IncRegistration("conflict")
		return nil, domainagg.Conflict(op, msgEmailTaken)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), as.cfg.BcryptCost)
	if err != nil {
		return nil, as.registerFailed(op, err)
	}

	owner := in.FirstName
	if owner == "" {
		owner = in.Username
	}

	var result *RegisterResult
	err = as.tx.InTx(ctx, op, func(dbc dbctx.Context) error {
		agency := &types.Organization{Name: org.AgencyName(owner)}
		if err := as.orgRepo.Create(dbc, agency); err != nil {
			return fmt.Errorf("create organization: %w", err)
		}
		u := &types.User{
			Username:       in.Username,
			Email:          in.Email,
			Password:       string(hash),
			FirstName:      in.FirstName,
			LastName:       in.LastName,
			OrganizationID: &agency.ID,
			Role:           types.RoleAdmin,
			IsActive:       true,
		}
		if err := as.userRepo.Create(dbc, u); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		u.Organization = agency
		pair, err := as.issueTokens(dbc, u)
		if err != nil {
			return fmt.Errorf("issue tokens: %w", err)
		}
		result = &RegisterResult{
			TokenPair: *pair,
			User: RegisteredUser{
				Username:     u.Username,
				Email:        u.Email,
				Organization: agency.Name,
			},
		}
		return nil
	})
	if err != nil {
		if aggregates.IsUniqueViolation(err) {
			as.metrics.IncRegistration("conflict")
			msg := msgUsernameTaken
			if strings.Contains(strings.ToLower(err.Error()), "email") {
				msg = msgEmailTaken
			}
			return nil, domainagg.NewError(domainagg.CodeConflict, op, msg, err)
		}
		return nil, as.registerFailed(op, err)
	}

	as.metrics.IncRegistration("created")
	as.log.Info("Registered user", "username", result.User.Username)
	return result, nil
}

func (as *authService) registerFailed(op string, err error) error {
	as.metrics.IncRegistration("failed")
	as.log.Error("Registration failed", "error", err)
	return domainagg.NewError(domainagg.CodeInternal, op, msgRegisterFailed, err)
}

func (as *authService) Login(ctx context.Context, login, password string) (*TokenPair, error) {
	const op = "auth.login"
	if strings.TrimSpace(login) == "" || password == "" {
		return nil, domainagg.Validation(op, "Username and password are required.")
	}
	var pair *TokenPair
	err := as.tx.InTx(ctx, op, func(dbc dbctx.Context) error {
		u, err := as.userRepo.GetByLogin(dbc, login)
		if err != nil {
			return err
		}
		if u == nil || !u.IsActive {
			return domainagg.Unauthorized(op, msgBadCredentials)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
			return domainagg.Unauthorized(op, msgBadCredentials)
		}
		if err := as.userRepo.UpdateLastLogin(dbc, u.ID, as.now()); err != nil {
			return err
		}
		pair, err = as.issueTokens(dbc, u)
		return err
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return pair, nil
}

// Refresh rotates a refresh token: the old session is consumed and a new
// pair is issued. A token can be redeemed once.
func (as *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	const op = "auth.refresh"
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, domainagg.Validation(op, "refresh is required.")
	}
	var pair *TokenPair
	err := as.tx.InTx(ctx, op, func(dbc dbctx.Context) error {
		session, err := as.userTokenRepo.GetByRefreshToken(dbc, refreshToken)
		if err != nil {
			return err
		}
		if session == nil || session.Expired(as.now()) {
			return domainagg.Unauthorized(op, msgTokenInvalid)
		}
		consumed, err := as.userTokenRepo.DeleteByIDs(dbc, []uuid.UUID{session.ID})
		if err != nil {
			return err
		}
		if consumed == 0 {
			return domainagg.Unauthorized(op, msgTokenInvalid)
		}
		u, err := as.userRepo.GetByID(dbc, session.UserID)
		if err != nil {
			return err
		}
		if u == nil || !u.IsActive {
			return domainagg.Unauthorized(op, msgTokenInvalid)
		}
		pair, err = as.issueTokens(dbc, u)
		return err
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return pair, nil
}

func (as *authService) Logout(ctx context.Context, caller *types.Caller) error {
	const op = "auth.logout"
	if caller == nil {
		return domainagg.Unauthorized(op, msgNoCredentials)
	}
	if err := as.userTokenRepo.DeleteByUserIDs(dbctx.Of(ctx), []uuid.UUID{caller.UserID}); err != nil {
		return aggregates.MapError(op, err)
	}
	return nil
}

func (as *authService) ResolveCaller(ctx context.Context, accessToken string, loc *time.Location) (*types.Caller, error) {
	const op = "auth.resolve"
	if strings.TrimSpace(accessToken) == "" {
		return nil, domainagg.Unauthorized(op, msgNoCredentials)
	}
	claims := &AccessClaims{}
	_, err := jwt.ParseWithClaims(accessToken, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.cfg.SecretKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(as.now),
	)
	if err != nil {
		return nil, domainagg.NewError(domainagg.CodeUnauthorized, op, msgTokenInvalid, err)
	}
	if claims.TokenType != tokenTypeAccess {
		return nil, domainagg.Unauthorized(op, msgTokenInvalid)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, domainagg.NewError(domainagg.CodeUnauthorized, op, msgTokenInvalid, err)
	}
	u, err := as.userRepo.GetByID(dbctx.Of(ctx), userID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if u == nil || !u.IsActive {
		return nil, domainagg.Unauthorized(op, "User not found.")
	}
	return org.CallerFromUser(u, loc), nil
}

func (as *authService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	n, err := as.userTokenRepo.DeleteExpired(dbctx.Of(ctx), as.now())
	if err != nil {
		return 0, aggregates.MapError("auth.purge_sessions", err)
	}
	if n > 0 {
		as.log.Debug("Purged expired sessions", "count", n)
	}
	return n, nil
}

func (as *authService) issueTokens(dbc dbctx.Context, u *types.User) (*TokenPair, error) {
	access, err := as.signAccessToken(u)
	if err != nil {
		return nil, err
	}
	refresh, err := newOpaqueToken()
	if err != nil {
		return nil, err
	}
	session := &types.UserToken{
		UserID:       u.ID,
		RefreshToken: refresh,
		ExpiresAt:    as.now().Add(as.cfg.RefreshTTL),
	}
	if err := as.userTokenRepo.Create(dbc, session); err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

func (as *authService) signAccessToken(u *types.User) (string, error) {
	if as.cfg.SecretKey == "" {
		return "", errors.New("jwt secret key is not configured")
	}
	now := as.now()
	claims := AccessClaims{
		Role:        string(u.Role),
		Username:    u.Username,
		FirstName:   u.FirstName,
		IsSuperuser: u.IsSuperuser,
		TokenType:   tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.cfg.AccessTTL)),
		},
	}
	if u.OrganizationID != nil {
		id := u.OrganizationID.String()
		claims.OrganizationID = &id
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.cfg.SecretKey))
}

func newOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
