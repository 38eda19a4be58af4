// Package scope decides which rows a caller may act on and how new rows are
// attributed. Each entity collection is configured with one Strategy.
package scope

import (
	"fmt"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/agencycrm-backend/internal/domain/aggregates"
	"github.com/yungbote/agencycrm-backend/internal/domain/org"
)

type Strategy interface {
	Name() string
	// RequiresTenant reports whether a create needs the caller to belong to an organization.
	RequiresTenant() bool
	// Filter restricts a query to the rows the caller may read, update or delete.
	Filter(caller *org.Caller) func(*gorm.DB) *gorm.DB
	// Stamp attributes a new row to the caller.
	Stamp(row any, caller *org.Caller) error
	// Carry copies ownership from the stored row onto its updated copy.
	Carry(dst, src any)
}

func none(db *gorm.DB) *gorm.DB { return db.Where("1 = 0") }

func all(db *gorm.DB) *gorm.DB { return db }

// Organization scopes rows by organization_id.
type Organization struct {
	// SuperuserBypass lets superusers read and modify every organization's rows.
	SuperuserBypass bool
	// StampOwner also records the creating user in user_id.
	StampOwner bool
}

func (s Organization) Name() string { return "organization" }

func (s Organization) RequiresTenant() bool { return true }

func (s Organization) Filter(caller *org.Caller) func(*gorm.DB) *gorm.DB {
	switch {
	case caller == nil:
		return none
	case s.SuperuserBypass && caller.IsSuperuser:
		return all
	case !caller.HasOrganization():
		return none
	}
	orgID := caller.OrgID()
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("organization_id = ?", orgID)
	}
}

func (s Organization) Stamp(row any, caller *org.Caller) error {
	owned, ok := row.(org.OrganizationOwned)
	if !ok {
		return domainagg.NewError(domainagg.CodeInternal, "scope.stamp", fmt.Sprintf("%T is not organization owned", row), nil)
	}
	if !caller.HasOrganization() {
		return domainagg.NewError(domainagg.CodeInternal, "scope.stamp", "caller has no organization", nil)
	}
	owned.AssignOrganization(caller.OrgID())
	if s.StampOwner {
		return Owner{}.Stamp(row, caller)
	}
	return nil
}

func (s Organization) Carry(dst, src any) {
	d, okDst := dst.(org.OrganizationOwned)
	o, okSrc := src.(org.OrganizationOwned)
	if okDst && okSrc {
		d.AssignOrganization(o.OwningOrganization())
	}
	if s.StampOwner {
		Owner{}.Carry(dst, src)
	}
}

// Owner scopes rows by the creating user's id. It never bypasses for
// superusers and does not need an organization.
type Owner struct{}

func (Owner) Name() string { return "owner" }

func (Owner) RequiresTenant() bool { return false }

func (Owner) Filter(caller *org.Caller) func(*gorm.DB) *gorm.DB {
	if caller == nil {
		return none
	}
	userID := caller.UserID
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

func (Owner) Stamp(row any, caller *org.Caller) error {
	owned, ok := row.(org.UserOwned)
	if !ok {
		return domainagg.NewError(domainagg.CodeInternal, "scope.stamp", fmt.Sprintf("%T is not user owned", row), nil)
	}
	if caller == nil {
		return domainagg.NewError(domainagg.CodeInternal, "scope.stamp", "missing caller", nil)
	}
	owned.AssignUser(caller.UserID)
	return nil
}

func (Owner) Carry(dst, src any) {
	d, okDst := dst.(org.UserOwned)
	o, okSrc := src.(org.UserOwned)
	if okDst && okSrc {
		d.AssignUser(o.OwningUser())
	}
}

// StrictOrganization filters by the caller's own organization with no bypass.
// Aggregates and cross-entity references use it.
func StrictOrganization(caller *org.Caller) func(*gorm.DB) *gorm.DB {
	return Organization{}.Filter(caller)
}
