package crm

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainagg "github.com/yungbote/agencycrm-backend/internal/domain/aggregates"
	"github.com/yungbote/agencycrm-backend/internal/domain/org"
)

// DefaultCommissionRate is the percentage applied when a new transaction omits one.
var DefaultCommissionRate = decimal.RequireFromString("2.5")

// Transaction is an organization-scoped deal on one property with one contact.
type Transaction struct {
	org.Record
	org.TenantRef
	Name           string              `gorm:"not null;default:'';column:name" json:"name"`
	PropertyID     uuid.UUID           `gorm:"type:uuid;not null;index;column:property_id" json:"property"`
	ContactID      uuid.UUID           `gorm:"type:uuid;not null;index;column:contact_id" json:"contact"`
	TypeID         *uuid.UUID          `gorm:"type:uuid;column:type_id" json:"type"`
	StatusID       *uuid.UUID          `gorm:"type:uuid;column:status_id" json:"status"`
	Stage          Stage               `gorm:"not null;default:Prospect;index;column:stage" json:"stage"`
	Value          decimal.NullDecimal `gorm:"type:decimal(12,2);column:value" json:"value"`
	CloseDate      *CalendarDate       `gorm:"column:close_date" json:"close_date"`
	CommissionRate decimal.NullDecimal `gorm:"type:decimal(5,2);column:commission_rate" json:"commission_rate"`
	DetailedStatus string              `gorm:"not null;default:'';column:detailed_status" json:"detailed_status"`
	PropertyType   string              `gorm:"not null;default:'';column:property_type" json:"property_type"`
	IsArchived     bool                `gorm:"not null;default:false;index;column:is_archived" json:"is_archived"`
}

func (Transaction) TableName() string { return "crm_transaction" }

func (t *Transaction) Normalize() {
	t.Name = strings.TrimSpace(t.Name)
	t.DetailedStatus = strings.TrimSpace(t.DetailedStatus)
	t.PropertyType = strings.TrimSpace(t.PropertyType)
	if t.Stage == "" {
		t.Stage = StageProspect
	}
}

// ApplyCreateDefaults fills values that only default on creation; an update may clear them.
func (t *Transaction) ApplyCreateDefaults() {
	if !t.CommissionRate.Valid {
		t.CommissionRate = decimal.NewNullDecimal(DefaultCommissionRate)
	}
}

func (t *Transaction) Validate() error {
	const op = "transaction.validate"
	switch {
	case t.PropertyID == uuid.Nil:
		return domainagg.Validation(op, "property is required.")
	case t.ContactID == uuid.Nil:
		return domainagg.Validation(op, "contact is required.")
	case !ValidStage(t.Stage):
		return domainagg.Validation(op, fmt.Sprintf("%q is not a valid stage.", t.Stage))
	case t.Value.Valid && t.Value.Decimal.IsNegative():
		return domainagg.Validation(op, "value must not be negative.")
	case t.CommissionRate.Valid && (t.CommissionRate.Decimal.IsNegative() || t.CommissionRate.Decimal.GreaterThan(decimal.NewFromInt(100))):
		return domainagg.Validation(op, "commission_rate must be between 0 and 100.")
	}
	return nil
}

// Commission is value * rate / 100, zero when either side is unset.
func (t *Transaction) Commission() decimal.Decimal {
	if !t.Value.Valid || !t.CommissionRate.Valid {
		return decimal.Zero
	}
	return t.Value.Decimal.Mul(t.CommissionRate.Decimal).Div(decimal.NewFromInt(100))
}
