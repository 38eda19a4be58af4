package services

import (
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/agencycrm-backend/internal/data/aggregates"
	"github.com/yungbote/agencycrm-backend/internal/data/repos"
	crmrepo "github.com/yungbote/agencycrm-backend/internal/data/repos/crm"
	"github.com/yungbote/agencycrm-backend/internal/data/scope"
	types "github.com/yungbote/agencycrm-backend/internal/domain"
	"github.com/yungbote/agencycrm-backend/internal/domain/crm"
	"github.com/yungbote/agencycrm-backend/internal/platform/logger"
)

// CRMRepos holds one generic repository per CRM entity.
type CRMRepos struct {
	Contacts     crmrepo.CollectionRepo[types.Contact]
	Properties   crmrepo.CollectionRepo[types.Property]
	Transactions crmrepo.CollectionRepo[types.Transaction]
	Deals        crmrepo.CollectionRepo[types.Deal]
	Tasks        crmrepo.CollectionRepo[types.Task]
	Events       crmrepo.CollectionRepo[types.Event]
	Types        crmrepo.CollectionRepo[types.TransactionType]
	Statuses     crmrepo.CollectionRepo[types.TransactionStatus]
	Dates        crmrepo.CollectionRepo[types.DateDefinition]
}

func NewCRMRepos(db *gorm.DB, log *logger.Logger) CRMRepos {
	return CRMRepos{
		Contacts:     repos.NewCollectionRepo[types.Contact](db, log, repos.CollectionConfig{Name: "contacts"}),
		Properties:   repos.NewCollectionRepo[types.Property](db, log, repos.CollectionConfig{Name: "properties"}),
		Transactions: repos.NewCollectionRepo[types.Transaction](db, log, repos.CollectionConfig{Name: "transactions"}),
		Deals: repos.NewCollectionRepo[types.Deal](db, log, repos.CollectionConfig{
			Name:     "deals",
			Preloads: []string{"Contact", "Owner"},
		}),
		Tasks: repos.NewCollectionRepo[types.Task](db, log, repos.CollectionConfig{
			Name:  "tasks",
			Order: []string{"is_completed ASC", "created_at DESC", "id"},
		}),
		Events: repos.NewCollectionRepo[types.Event](db, log, repos.CollectionConfig{
			Name:  "events",
			Order: []string{"start_time ASC", "id"},
		}),
		Types: repos.NewCollectionRepo[types.TransactionType](db, log, repos.CollectionConfig{
			Name:  "transaction-types",
			Order: []string{"name ASC", "id"},
		}),
		Statuses: repos.NewCollectionRepo[types.TransactionStatus](db, log, repos.CollectionConfig{
			Name:  "transaction-statuses",
			Order: []string{"step_order ASC", "id"},
		}),
		Dates: repos.NewCollectionRepo[types.DateDefinition](db, log, repos.CollectionConfig{
			Name:  "date-definitions",
			Order: []string{"name ASC", "id"},
		}),
	}
}

// CRMCollections is every scoped entity collection exposed over HTTP.
type CRMCollections struct {
	Contacts     Collection[types.Contact]
	Properties   Collection[types.Property]
	Transactions Collection[types.Transaction]
	Deals        Collection[types.Deal]
	Tasks        Collection[types.Task]
	Events       Collection[types.Event]
	Types        Collection[types.TransactionType]
	Statuses     Collection[types.TransactionStatus]
	Dates        Collection[types.DateDefinition]
}

func NewCRMCollections(db *gorm.DB, log *logger.Logger, tx aggregates.TxRunner, tenants TenantService, r CRMRepos) CRMCollections {
	tenantScoped := scope.Organization{SuperuserBypass: true}
	tenantOwned := scope.Organization{SuperuserBypass: true, StampOwner: true}
	refs := References{Contacts: r.Contacts, Properties: r.Properties, Types: r.Types, Statuses: r.Statuses}
	deps := Dependents{Transactions: r.Transactions, Deals: r.Deals}

	return CRMCollections{
		Contacts: NewCollection(db, log, tx, r.Contacts, tenants, CollectionConfig[types.Contact]{
			Name:     "contacts",
			Strategy: tenantScoped,
			Filters: map[string]FilterFunc{
				"search": searchFilter("first_name", "last_name", "email"),
			},
			OnDelete: deps.Contact,
		}),
		Properties: NewCollection(db, log, tx, r.Properties, tenants, CollectionConfig[types.Property]{
			Name:     "properties",
			Strategy: tenantScoped,
			Filters: map[string]FilterFunc{
				"search": searchFilter("address", "city"),
				"status": equalsFilter("status"),
			},
			OnDelete: deps.Property,
		}),
		Transactions: NewCollection(db, log, tx, r.Transactions, tenants, CollectionConfig[types.Transaction]{
			Name:     "transactions",
			Strategy: tenantScoped,
			Filters: map[string]FilterFunc{
				"is_archived": boolFilter("is_archived"),
				"stage":       stageFilter,
			},
			Refs: refs.Transaction,
		}),
		Deals: NewCollection(db, log, tx, r.Deals, tenants, CollectionConfig[types.Deal]{
			Name:     "deals",
			Strategy: scope.Owner{},
			Filters: map[string]FilterFunc{
				"stage": dealStageFilter,
			},
			Refs: refs.Deal,
		}),
		Tasks: NewCollection(db, log, tx, r.Tasks, tenants, CollectionConfig[types.Task]{
			Name:     "tasks",
			Strategy: tenantOwned,
			Filters: map[string]FilterFunc{
				"is_completed": boolFilter("is_completed"),
			},
		}),
		Events: NewCollection(db, log, tx, r.Events, tenants, CollectionConfig[types.Event]{
			Name:     "events",
			Strategy: tenantOwned,
		}),
		Types: NewCollection(db, log, tx, r.Types, tenants, CollectionConfig[types.TransactionType]{
			Name:     "transaction-types",
			Strategy: tenantScoped,
			OnDelete: deps.TransactionType,
		}),
		Statuses: NewCollection(db, log, tx, r.Statuses, tenants, CollectionConfig[types.TransactionStatus]{
			Name:     "transaction-statuses",
			Strategy: tenantScoped,
			OnDelete: deps.TransactionStatus,
		}),
		Dates: NewCollection(db, log, tx, r.Dates, tenants, CollectionConfig[types.DateDefinition]{
			Name:     "date-definitions",
			Strategy: tenantScoped,
		}),
	}
}

func boolFilter(column string) FilterFunc {
	return func(value string) (crmrepo.Scope, error) {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false.", column)
		}
		return func(db *gorm.DB) *gorm.DB { return db.Where(column+" = ?", b) }, nil
	}
}

func equalsFilter(column string) FilterFunc {
	return func(value string) (crmrepo.Scope, error) {
		return func(db *gorm.DB) *gorm.DB { return db.Where(column+" = ?", value) }, nil
	}
}

// searchFilter matches a case-insensitive substring in any of the columns.
func searchFilter(columns ...string) FilterFunc {
	return func(value string) (crmrepo.Scope, error) {
		pattern := "%" + strings.ToLower(value) + "%"
		clauses := make([]string, 0, len(columns))
		args := make([]any, 0, len(columns))
		for _, col := range columns {
			clauses = append(clauses, "LOWER("+col+") LIKE ?")
			args = append(args, pattern)
		}
		where := "(" + strings.Join(clauses, " OR ") + ")"
		return func(db *gorm.DB) *gorm.DB { return db.Where(where, args...) }, nil
	}
}

func stageFilter(value string) (crmrepo.Scope, error) {
	stage := crm.Stage(value)
	if !crm.ValidStage(stage) {
		return nil, fmt.Errorf("%q is not a valid stage.", value)
	}
	return func(db *gorm.DB) *gorm.DB { return db.Where("stage = ?", string(stage)) }, nil
}

func dealStageFilter(value string) (crmrepo.Scope, error) {
	stage := crm.DealStage(strings.ToUpper(value))
	if !crm.ValidDealStage(stage) {
		return nil, fmt.Errorf("%q is not a valid deal stage.", value)
	}
	return func(db *gorm.DB) *gorm.DB { return db.Where("stage = ?", string(stage)) }, nil
}
