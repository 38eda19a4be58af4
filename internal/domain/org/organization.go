package org

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionInactive SubscriptionStatus = "inactive"
)

type Organization struct {
	ID                 uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	Name               string             `gorm:"not null;column:name" json:"name"`
	SubscriptionStatus SubscriptionStatus `gorm:"not null;default:active;column:subscription_status" json:"subscription_status"`
	// ProvisionKey is only set for organizations created on a user's first write.
	// The unique index makes concurrent get-or-create converge on one row.
	ProvisionKey *string   `gorm:"uniqueIndex;column:provision_key" json:"-"`
	CreatedAt    time.Time `gorm:"not null;column:created_at" json:"created_at"`
}

func (Organization) TableName() string { return "organization" }

func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.SubscriptionStatus == "" {
		o.SubscriptionStatus = SubscriptionActive
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = tx.NowFunc()
	}
	o.CreatedAt = o.CreatedAt.UTC()
	return nil
}

// AgencyName is the display name of a new tenant, "{owner}'s Agency".
func AgencyName(owner string) string {
	return fmt.Sprintf("%s's Agency", strings.TrimSpace(owner))
}
