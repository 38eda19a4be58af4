package org

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleAgent Role = "agent"
)

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleAgent }

type User struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Username       string        `gorm:"uniqueIndex;not null;column:username" json:"username"`
	Email          string        `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password       string        `gorm:"not null;column:password" json:"-"`
	FirstName      string        `gorm:"not null;default:'';column:first_name" json:"first_name"`
	LastName       string        `gorm:"not null;default:'';column:last_name" json:"last_name"`
	OrganizationID *uuid.UUID    `gorm:"type:uuid;index;column:organization_id" json:"organization"`
	Organization   *Organization `gorm:"foreignKey:OrganizationID;references:ID" json:"organization_details,omitempty"`
	Role           Role          `gorm:"not null;default:agent;column:role" json:"role"`
	IsStaff        bool          `gorm:"not null;default:false;column:is_staff" json:"is_staff"`
	IsSuperuser    bool          `gorm:"not null;default:false;column:is_superuser" json:"is_superuser"`
	IsActive       bool          `gorm:"not null;default:true;column:is_active" json:"is_active"`
	DateJoined     time.Time     `gorm:"not null;index;column:date_joined" json:"date_joined"`
	LastLogin      *time.Time    `gorm:"column:last_login" json:"last_login"`
}

func (User) TableName() string { return "user" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleAgent
	}
	if u.DateJoined.IsZero() {
		u.DateJoined = tx.NowFunc()
	}
	u.DateJoined = u.DateJoined.UTC()
	return nil
}
