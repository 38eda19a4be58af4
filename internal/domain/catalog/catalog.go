// Package catalog holds the per-organization lookup tables that configure
// how an agency labels and sequences its transactions.
package catalog

import (
	"strings"

	domainagg "github.com/yungbote/agencycrm-backend/internal/domain/aggregates"
	"github.com/yungbote/agencycrm-backend/internal/domain/org"
)

type TransactionType struct {
	org.Record
	org.TenantRef
	Name string `gorm:"not null;column:name" json:"name"`
}

func (TransactionType) TableName() string { return "transaction_type" }

func (t *TransactionType) Normalize() { t.Name = strings.TrimSpace(t.Name) }

func (t *TransactionType) Validate() error {
	if t.Name == "" {
		return domainagg.Validation("transaction_type.validate", "name is required.")
	}
	return nil
}

// TransactionStatus is one step of an agency's pipeline; lists are ordered by StepOrder.
type TransactionStatus struct {
	org.Record
	org.TenantRef
	Name      string `gorm:"not null;column:name" json:"name"`
	StepOrder int    `gorm:"not null;default:0;column:step_order" json:"step_order"`
}

func (TransactionStatus) TableName() string { return "transaction_status" }

func (s *TransactionStatus) Normalize() { s.Name = strings.TrimSpace(s.Name) }

func (s *TransactionStatus) Validate() error {
	const op = "transaction_status.validate"
	if s.Name == "" {
		return domainagg.Validation(op, "name is required.")
	}
	if s.StepOrder < 0 {
		return domainagg.Validation(op, "step_order must not be negative.")
	}
	return nil
}

type DateDefinition struct {
	org.Record
	org.TenantRef
	Name        string `gorm:"not null;column:name" json:"name"`
	IsMilestone bool   `gorm:"not null;default:false;column:is_milestone" json:"is_milestone"`
}

func (DateDefinition) TableName() string { return "date_definition" }

func (d *DateDefinition) Normalize() { d.Name = strings.TrimSpace(d.Name) }

func (d *DateDefinition) Validate() error {
	if d.Name == "" {
		return domainagg.Validation("date_definition.validate", "name is required.")
	}
	return nil
}
