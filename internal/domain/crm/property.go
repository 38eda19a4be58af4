package crm

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	domainagg "github.com/yungbote/agencycrm-backend/internal/domain/aggregates"
	"github.com/yungbote/agencycrm-backend/internal/domain/org"
)

type Property struct {
	org.Record
	org.TenantRef
	Address      string          `gorm:"not null;column:address" json:"address"`
	City         string          `gorm:"not null;default:'';column:city" json:"city"`
	State        string          `gorm:"not null;default:'';column:state" json:"state"`
	ZipCode      string          `gorm:"not null;default:'';column:zip_code" json:"zip_code"`
	ListPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;column:price" json:"price"`
	Status       PropertyStatus  `gorm:"not null;default:Active;column:status" json:"status"`
	PropertyType PropertyType    `gorm:"not null;default:'Single Family';column:property_type" json:"property_type"`
	Bedrooms     int             `gorm:"not null;default:0;column:bedrooms" json:"bedrooms"`
	Bathrooms    decimal.Decimal `gorm:"type:decimal(4,1);not null;default:0;column:bathrooms" json:"bathrooms"`
	SquareFeet   int             `gorm:"not null;default:0;column:square_feet" json:"square_feet"`
}

func (Property) TableName() string { return "property" }

func (p *Property) Normalize() {
	p.Address = strings.TrimSpace(p.Address)
	p.City = strings.TrimSpace(p.City)
	p.State = strings.TrimSpace(p.State)
	p.ZipCode = strings.TrimSpace(p.ZipCode)
	if p.Status == "" {
		p.Status = PropertyActive
	}
	if p.PropertyType == "" {
		p.PropertyType = PropertySingleFamily
	}
}

func (p *Property) Validate() error {
	const op = "property.validate"
	switch {
	case p.Address == "":
		return domainagg.Validation(op, "address is required.")
	case p.ListPrice.IsNegative():
		return domainagg.Validation(op, "price must not be negative.")
	case p.Bedrooms < 0 || p.SquareFeet < 0 || p.Bathrooms.IsNegative():
		return domainagg.Validation(op, "bedrooms, bathrooms and square_feet must not be negative.")
	case !oneOf(p.Status, propertyStatuses):
		return domainagg.Validation(op, fmt.Sprintf("%q is not a valid property status.", p.Status))
	case !oneOf(p.PropertyType, propertyTypes):
		return domainagg.Validation(op, fmt.Sprintf("%q is not a valid property type.", p.PropertyType))
	}
	return nil
}
