package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/agencycrm-backend/internal/domain"
)

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{
		// =========================
		// Tenancy + identity
		// =========================
		&types.Organization{},
		&types.User{},
		&types.UserToken{},

		// =========================
		// Agency configuration
		// =========================
		&types.TransactionType{},
		&types.TransactionStatus{},
		&types.DateDefinition{},

		// =========================
		// CRM records
		// =========================
		&types.Contact{},
		&types.Property{},
		&types.Transaction{},
		&types.Deal{},
		&types.Task{},
		&types.Event{},
	}
}

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return EnsureIndexes(db)
}

// EnsureIndexes creates composite indexes the dashboard queries rely on.
func EnsureIndexes(db *gorm.DB) error {
	stmts := []struct{ name, sql string }{
		{"idx_crm_transaction_org_created", `CREATE INDEX IF NOT EXISTS idx_crm_transaction_org_created ON crm_transaction(organization_id, created_at)`},
		{"idx_crm_transaction_org_stage", `CREATE INDEX IF NOT EXISTS idx_crm_transaction_org_stage ON crm_transaction(organization_id, stage)`},
		{"idx_event_org_start", `CREATE INDEX IF NOT EXISTS idx_event_org_start ON event(organization_id, start_time)`},
		{"idx_deal_user_stage", `CREATE INDEX IF NOT EXISTS idx_deal_user_stage ON deal(user_id, stage)`},
		{"idx_transaction_status_org_step", `CREATE INDEX IF NOT EXISTS idx_transaction_status_org_step ON transaction_status(organization_id, step_order)`},
	}
	for _, s := range stmts {
		if err := db.Exec(s.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", s.name, err)
		}
	}
	return nil
}
