package org

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Record is embedded by every persisted CRM row.
type Record struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (r *Record) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = tx.NowFunc()
	}
	r.CreatedAt = r.CreatedAt.UTC()
	return nil
}

func (r *Record) Meta() *Record { return r }

// TenantRef stamps a row with its owning organization. Set once at creation.
type TenantRef struct {
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index" json:"organization"`
}

func (t *TenantRef) OwningOrganization() uuid.UUID { return t.OrganizationID }
func (t *TenantRef) AssignOrganization(id uuid.UUID) { t.OrganizationID = id }

// OwnerRef stamps a row with the user that created it.
type OwnerRef struct {
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
}

func (o *OwnerRef) OwningUser() uuid.UUID { return o.UserID }
func (o *OwnerRef) AssignUser(id uuid.UUID) { o.UserID = id }

type Keyed interface {
	Meta() *Record
}

type OrganizationOwned interface {
	OwningOrganization() uuid.UUID
	AssignOrganization(uuid.UUID)
}

type UserOwned interface {
	OwningUser() uuid.UUID
	AssignUser(uuid.UUID)
}

// Normalizer fills defaults before validation.
type Normalizer interface {
	Normalize()
}

type Validator interface {
	Validate() error
}
