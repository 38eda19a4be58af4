package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	types "github.com/yungbote/agencycrm-backend/internal/domain"
	"github.com/yungbote/agencycrm-backend/internal/domain/crm"
	"github.com/yungbote/agencycrm-backend/internal/domain/org"
)

func SeedOrganization(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Organization {
	tb.Helper()
	o := &types.Organization{Name: name}
	if err := tx.WithContext(ctx).Create(o).Error; err != nil {
		tb.Fatalf("seed organization: %v", err)
	}
	return o
}

// SeedUser creates a user; orgID may be nil for an unprovisioned user.
func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, username string, orgID *uuid.UUID, role types.Role) *types.User {
	tb.Helper()
	u := &types.User{
		Username:       username,
		Email:          username + "@example.com",
		Password:       "pw",
		FirstName:      "A",
		LastName:       "B",
		OrganizationID: orgID,
		Role:           role,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func Caller(u *types.User) *types.Caller {
	return org.CallerFromUser(u, time.UTC)
}

func SeedContact(tb testing.TB, ctx context.Context, tx *gorm.DB, orgID uuid.UUID, first string) *types.Contact {
	tb.Helper()
	c := &types.Contact{FirstName: first, LastName: "Doe", Role: crm.ContactBuyer}
	c.OrganizationID = orgID
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed contact: %v", err)
	}
	return c
}

func SeedProperty(tb testing.TB, ctx context.Context, tx *gorm.DB, orgID uuid.UUID, address string) *types.Property {
	tb.Helper()
	p := &types.Property{
		Address:      address,
		City:         "Springfield",
		ListPrice:    decimal.NewFromInt(350000),
		Status:       crm.PropertyActive,
		PropertyType: crm.PropertySingleFamily,
	}
	p.OrganizationID = orgID
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed property: %v", err)
	}
	return p
}

// TransactionSeed describes one transaction row; zero fields keep their defaults.
type TransactionSeed struct {
	Name           string
	Stage          crm.Stage
	Value          *int64
	CommissionRate *string
	CloseDate      *crm.CalendarDate
	CreatedAt      time.Time
	DetailedStatus string
}

func SeedTransaction(tb testing.TB, ctx context.Context, tx *gorm.DB, orgID uuid.UUID, s TransactionSeed) *types.Transaction {
	tb.Helper()
	t := &types.Transaction{
		Name:           s.Name,
		PropertyID:     uuid.New(),
		ContactID:      uuid.New(),
		Stage:          s.Stage,
		CloseDate:      s.CloseDate,
		DetailedStatus: s.DetailedStatus,
	}
	if t.Stage == "" {
		t.Stage = crm.StageProspect
	}
	t.OrganizationID = orgID
	t.CreatedAt = s.CreatedAt
	if s.Value != nil {
		t.Value = decimal.NewNullDecimal(decimal.NewFromInt(*s.Value))
	}
	if s.CommissionRate != nil {
		t.CommissionRate = decimal.NewNullDecimal(decimal.RequireFromString(*s.CommissionRate))
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed transaction: %v", err)
	}
	return t
}

func SeedDeal(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, stage crm.DealStage, value int64) *types.Deal {
	tb.Helper()
	d := &types.Deal{Title: "deal", Stage: stage, Value: decimal.NewFromInt(value), Probability: 50}
	d.UserID = userID
	if err := tx.WithContext(ctx).Omit("Contact", "Owner").Create(d).Error; err != nil {
		tb.Fatalf("seed deal: %v", err)
	}
	return d
}

func SeedEvent(tb testing.TB, ctx context.Context, tx *gorm.DB, orgID, userID uuid.UUID, title string, start time.Time) *types.Event {
	tb.Helper()
	e := &types.Event{Title: title, StartTime: start.UTC(), Type: crm.EventMeeting}
	e.OrganizationID = orgID
	e.UserID = userID
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed event: %v", err)
	}
	return e
}

func Int64(v int64) *int64 { return &v }

func String(v string) *string { return &v }
