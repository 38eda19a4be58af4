// Package analytics runs the read-only aggregate queries behind the dashboard.
package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	types "github.com/yungbote/agencycrm-backend/internal/domain"
	"github.com/yungbote/agencycrm-backend/internal/domain/crm"
	"github.com/yungbote/agencycrm-backend/internal/platform/dbctx"
	"github.com/yungbote/agencycrm-backend/internal/platform/logger"
)

type Scope = func(*gorm.DB) *gorm.DB

// YearWindow bounds "this year" twice: by calendar date for close_date and by
// instant for created_at, since the two columns have different types.
type YearWindow struct {
	DateFrom    crm.CalendarDate
	DateTo      crm.CalendarDate
	CreatedFrom time.Time
	CreatedTo   time.Time
}

type TransactionTotals struct {
	TotalSalesVolume        decimal.Decimal
	TotalTransactions       int64
	CurrentYearVolume       decimal.Decimal
	CurrentYearTransactions int64
	CommissionDue           decimal.Decimal
}

type StageCount struct {
	Stage string
	Count int64
}

type DealStageTotal struct {
	Stage string
	Count int64
	Value decimal.Decimal
}

type StatsRepo interface {
	TransactionTotals(dbc dbctx.Context, scope Scope, year YearWindow) (TransactionTotals, error)
	TransactionStageCounts(dbc dbctx.Context, scope Scope) ([]StageCount, error)
	DealTotalsByStage(dbc dbctx.Context, userID uuid.UUID) ([]DealStageTotal, error)
	RecentTransactions(dbc dbctx.Context, scope Scope, limit int) ([]*types.Transaction, error)
	EventsBetween(dbc dbctx.Context, scope Scope, from, to time.Time, limit int) ([]*types.Event, error)
	CountTransactions(dbc dbctx.Context) (int64, error)
}

type statsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStatsRepo(db *gorm.DB, baseLog *logger.Logger) StatsRepo {
	return &statsRepo{db: db, log: baseLog.With("repo", "StatsRepo")}
}

func stageStrings(stages []crm.Stage) []string {
	out := make([]string, 0, len(stages))
	for _, s := range stages {
		out = append(out, string(s))
	}
	return out
}

// TransactionTotals computes every financial figure in one pass. A NULL value
// or commission_rate makes its CASE arm NULL, which SUM skips.
func (r *statsRepo) TransactionTotals(dbc dbctx.Context, scope Scope, year YearWindow) (TransactionTotals, error) {
	var out TransactionTotals
	won := string(crm.StageClosedWon)
	err := dbc.Use(r.db).
		Model(&types.Transaction{}).
		Scopes(scope).
		Select(`COALESCE(SUM(CASE WHEN stage = ? THEN value END), 0) AS total_sales_volume,
COUNT(*) AS total_transactions,
COALESCE(SUM(CASE WHEN stage = ? AND close_date >= ? AND close_date < ? THEN value END), 0) AS current_year_volume,
COALESCE(SUM(CASE WHEN created_at >= ? AND created_at < ? THEN 1 ELSE 0 END), 0) AS current_year_transactions,
COALESCE(SUM(CASE WHEN stage IN ? THEN value * commission_rate / 100.0 END), 0) AS commission_due`,
			won,
			won, year.DateFrom, year.DateTo,
			year.CreatedFrom.UTC(), year.CreatedTo.UTC(),
			stageStrings(crm.CommissionStages),
		).
		Scan(&out).Error
	if err != nil {
		return TransactionTotals{}, err
	}
	return out, nil
}

func (r *statsRepo) TransactionStageCounts(dbc dbctx.Context, scope Scope) ([]StageCount, error) {
	var rows []StageCount
	err := dbc.Use(r.db).
		Model(&types.Transaction{}).
		Scopes(scope).
		Select("stage, COUNT(*) AS count").
		Group("stage").
		Scan(&rows).Error
	return rows, err
}

func (r *statsRepo) DealTotalsByStage(dbc dbctx.Context, userID uuid.UUID) ([]DealStageTotal, error) {
	var rows []DealStageTotal
	err := dbc.Use(r.db).
		Model(&types.Deal{}).
		Where("user_id = ?", userID).
		Select("stage, COUNT(*) AS count, COALESCE(SUM(value), 0) AS value").
		Group("stage").
		Scan(&rows).Error
	return rows, err
}

func (r *statsRepo) RecentTransactions(dbc dbctx.Context, scope Scope, limit int) ([]*types.Transaction, error) {
	rows := []*types.Transaction{}
	err := dbc.Use(r.db).
		Scopes(scope).
		Order("created_at DESC").
		Order("id").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// EventsBetween returns events starting in [from, to), earliest first.
func (r *statsRepo) EventsBetween(dbc dbctx.Context, scope Scope, from, to time.Time, limit int) ([]*types.Event, error) {
	rows := []*types.Event{}
	err := dbc.Use(r.db).
		Scopes(scope).
		Where("start_time >= ? AND start_time < ?", from.UTC(), to.UTC()).
		Order("start_time ASC").
		Order("id").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *statsRepo) CountTransactions(dbc dbctx.Context) (int64, error) {
	var n int64
	err := dbc.Use(r.db).Model(&types.Transaction{}).Count(&n).Error
	return n, err
}
