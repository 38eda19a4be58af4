package crm

import (
	"fmt"
	"strings"

	domainagg "github.com/yungbote/agencycrm-backend/internal/domain/aggregates"
	"github.com/yungbote/agencycrm-backend/internal/domain/org"
)

type Contact struct {
	org.Record
	org.TenantRef
	FirstName string      `gorm:"not null;column:first_name" json:"first_name"`
	LastName  string      `gorm:"not null;column:last_name" json:"last_name"`
	Email     string      `gorm:"column:email" json:"email"`
	Phone     string      `gorm:"column:phone" json:"phone"`
	Role      ContactRole `gorm:"not null;default:Buyer;column:role" json:"role"`
}

func (Contact) TableName() string { return "contact" }

func (c *Contact) Normalize() {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)
	if c.Role == "" {
		c.Role = ContactBuyer
	}
}

func (c *Contact) Validate() error {
	if c.FirstName == "" && c.LastName == "" {
		return domainagg.Validation("contact.validate", "first_name or last_name is required.")
	}
	if !oneOf(c.Role, contactRoles) {
		return domainagg.Validation("contact.validate", fmt.Sprintf("%q is not a valid contact role.", c.Role))
	}
	return nil
}

func (c *Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
