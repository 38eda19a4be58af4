package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	crmrepo "github.com/yungbote/agencycrm-backend/internal/data/repos/crm"
	"github.com/yungbote/agencycrm-backend/internal/data/scope"
	types "github.com/yungbote/agencycrm-backend/internal/domain"
	domainagg "github.com/yungbote/agencycrm-backend/internal/domain/aggregates"
	"github.com/yungbote/agencycrm-backend/internal/platform/dbctx"
)

// References keeps records from pointing at another organization's rows.
type References struct {
	Contacts   crmrepo.CollectionRepo[types.Contact]
	Properties crmrepo.CollectionRepo[types.Property]
	Types      crmrepo.CollectionRepo[types.TransactionType]
	Statuses   crmrepo.CollectionRepo[types.TransactionStatus]
}

func inOrganization(orgID uuid.UUID) crmrepo.Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("organization_id = ?", orgID)
	}
}

// Transaction requires every reference to live in the transaction's own
// organization and names an unnamed transaction after its property.
func (r References) Transaction(dbc dbctx.Context, caller *types.Caller, t *types.Transaction) error {
	const op = "transaction.references"
	same := inOrganization(t.OrganizationID)

	property, err := r.Properties.Get(dbc, t.PropertyID, same)
	if err != nil {
		return err
	}
	if property == nil {
		return domainagg.Validation(op, "Invalid property.")
	}
	if ok, err := r.Contacts.Exists(dbc, t.ContactID, same); err != nil {
		return err
	} else if !ok {
		return domainagg.Validation(op, "Invalid contact.")
	}
	if t.TypeID != nil {
		if ok, err := r.Types.Exists(dbc, *t.TypeID, same); err != nil {
			return err
		} else if !ok {
			return domainagg.Validation(op, "Invalid type.")
		}
	}
	if t.StatusID != nil {
		if ok, err := r.Statuses.Exists(dbc, *t.StatusID, same); err != nil {
			return err
		} else if !ok {
			return domainagg.Validation(op, "Invalid status.")
		}
	}
	if t.Name == "" {
		t.Name = property.Address
	}
	return nil
}

// Deal rows carry no organization, so references must be visible in the
// caller's own organization.
func (r References) Deal(dbc dbctx.Context, caller *types.Caller, d *types.Deal) error {
	const op = "deal.references"
	visible := scope.StrictOrganization(caller)
	if d.ContactID != nil {
		if ok, err := r.Contacts.Exists(dbc, *d.ContactID, visible); err != nil {
			return err
		} else if !ok {
			return domainagg.Validation(op, "Invalid contact.")
		}
	}
	if d.PropertyID != nil {
		if ok, err := r.Properties.Exists(dbc, *d.PropertyID, visible); err != nil {
			return err
		} else if !ok {
			return domainagg.Validation(op, "Invalid property.")
		}
	}
	return nil
}

// Dependents applies what happens to records pointing at a deleted row:
// transactions follow their contact or property, deals lose the link, and
// configuration still used by a transaction cannot be deleted.
type Dependents struct {
	Transactions crmrepo.CollectionRepo[types.Transaction]
	Deals        crmrepo.CollectionRepo[types.Deal]
}

func pointsAt(column string, id uuid.UUID) crmrepo.Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" = ?", id)
	}
}

func (d Dependents) Contact(dbc dbctx.Context, c *types.Contact) error {
	if _, err := d.Transactions.DeleteWhere(dbc, pointsAt("contact_id", c.ID)); err != nil {
		return err
	}
	_, err := d.Deals.ClearColumn(dbc, "contact_id", pointsAt("contact_id", c.ID))
	return err
}

func (d Dependents) Property(dbc dbctx.Context, p *types.Property) error {
	if _, err := d.Transactions.DeleteWhere(dbc, pointsAt("property_id", p.ID)); err != nil {
		return err
	}
	_, err := d.Deals.ClearColumn(dbc, "property_id", pointsAt("property_id", p.ID))
	return err
}

func (d Dependents) TransactionType(dbc dbctx.Context, t *types.TransactionType) error {
	return d.refuseInUse(dbc, "transaction_type.delete", "type_id", t.ID, "Transaction type is used by existing transactions.")
}

func (d Dependents) TransactionStatus(dbc dbctx.Context, s *types.TransactionStatus) error {
	return d.refuseInUse(dbc, "transaction_status.delete", "status_id", s.ID, "Transaction status is used by existing transactions.")
}

func (d Dependents) refuseInUse(dbc dbctx.Context, op, column string, id uuid.UUID, msg string) error {
	n, err := d.Transactions.Count(dbc, pointsAt(column, id))
	if err != nil {
		return err
	}
	if n > 0 {
		return domainagg.Conflict(op, msg)
	}
	return nil
}
