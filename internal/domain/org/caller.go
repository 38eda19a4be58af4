package org

import (
	"time"

	"github.com/google/uuid"
)

// Caller is the authenticated identity an operation runs on behalf of.
// It is resolved per request and passed explicitly into services.
type Caller struct {
	UserID         uuid.UUID
	Username       string
	FirstName      string
	OrganizationID *uuid.UUID
	Role           Role
	IsStaff        bool
	IsSuperuser    bool
	// Location is the caller's local time zone for calendar-day computations.
	Location *time.Location
}

func CallerFromUser(u *User, loc *time.Location) *Caller {
	if u == nil {
		return nil
	}
	c := &Caller{
		UserID:      u.ID,
		Username:    u.Username,
		FirstName:   u.FirstName,
		Role:        u.Role,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		Location:    loc,
	}
	if u.OrganizationID != nil && *u.OrganizationID != uuid.Nil {
		id := *u.OrganizationID
		c.OrganizationID = &id
	}
	return c
}

func (c *Caller) HasOrganization() bool {
	return c != nil && c.OrganizationID != nil && *c.OrganizationID != uuid.Nil
}

// OrgID returns uuid.Nil when the caller is unprovisioned.
func (c *Caller) OrgID() uuid.UUID {
	if !c.HasOrganization() {
		return uuid.Nil
	}
	return *c.OrganizationID
}

func (c *Caller) AttachOrganization(id uuid.UUID) {
	c.OrganizationID = &id
}

// IsPlatformAdmin covers staff and superusers, who manage every tenant.
func (c *Caller) IsPlatformAdmin() bool {
	return c != nil && (c.IsStaff || c.IsSuperuser)
}

func (c *Caller) IsOrgAdmin() bool {
	return c != nil && c.Role == RoleAdmin && c.HasOrganization()
}

func (c *Caller) Loc() *time.Location {
	if c == nil || c.Location == nil {
		return time.UTC
	}
	return c.Location
}
