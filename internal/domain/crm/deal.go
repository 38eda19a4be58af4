package crm

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/agencycrm-backend/internal/domain/aggregates"
	"github.com/yungbote/agencycrm-backend/internal/domain/org"
)

const unknownClient = "Unknown"

// Deal is a pipeline entry owned by a single user rather than an organization.
type Deal struct {
	org.Record
	org.OwnerRef
	Title       string          `gorm:"not null;column:title" json:"title"`
	ContactID   *uuid.UUID      `gorm:"type:uuid;index;column:contact_id" json:"contact_id"`
	PropertyID  *uuid.UUID      `gorm:"type:uuid;column:property_id" json:"property_id"`
	Stage       DealStage       `gorm:"not null;default:NEW;index;column:stage" json:"stage"`
	Value       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;column:value" json:"value"`
	Probability int             `gorm:"not null;default:10;column:probability" json:"probability"`
	ClosingDate *CalendarDate   `gorm:"column:closing_date" json:"closing_date"`

	Contact *Contact  `gorm:"foreignKey:ContactID;references:ID" json:"contact_details,omitempty"`
	Owner   *org.User `gorm:"foreignKey:UserID;references:ID" json:"-"`

	ClientName    string `gorm:"-" json:"client_name"`
	OwnerUsername string `gorm:"-" json:"user,omitempty"`
}

func (Deal) TableName() string { return "deal" }

func (d *Deal) AfterFind(tx *gorm.DB) error {
	d.fillDisplay()
	return nil
}

func (d *Deal) fillDisplay() {
	d.ClientName = unknownClient
	if d.Contact != nil {
		if name := d.Contact.FullName(); name != "" {
			d.ClientName = name
		}
	}
	if d.Owner != nil {
		d.OwnerUsername = d.Owner.Username
	}
}

func (d *Deal) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	if d.Stage == "" {
		d.Stage = DealNew
	}
	d.Stage = DealStage(strings.ToUpper(string(d.Stage)))
}

func (d *Deal) Validate() error {
	const op = "deal.validate"
	switch {
	case d.Title == "":
		return domainagg.Validation(op, "title is required.")
	case !ValidDealStage(d.Stage):
		return domainagg.Validation(op, fmt.Sprintf("%q is not a valid deal stage.", d.Stage))
	case d.Value.IsNegative():
		return domainagg.Validation(op, "value must not be negative.")
	case d.Probability < 0 || d.Probability > 100:
		return domainagg.Validation(op, "probability must be between 0 and 100.")
	}
	return nil
}
