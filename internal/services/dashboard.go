package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/agencycrm-backend/internal/data/aggregates"
	"github.com/yungbote/agencycrm-backend/internal/data/repos"
	"github.com/yungbote/agencycrm-backend/internal/data/repos/analytics"
	"github.com/yungbote/agencycrm-backend/internal/data/scope"
	types "github.com/yungbote/agencycrm-backend/internal/domain"
	domainagg "github.com/yungbote/agencycrm-backend/internal/domain/aggregates"
	"github.com/yungbote/agencycrm-backend/internal/domain/crm"
	"github.com/yungbote/agencycrm-backend/internal/platform/dbctx"
	"github.com/yungbote/agencycrm-backend/internal/platform/logger"
)

const (
	recentActivityLimit = 5
	scheduleLimit       = 5
)

type Financials struct {
	TotalSalesVolume        decimal.Decimal `json:"total_sales_volume"`
	TotalTransactions       int64           `json:"total_transactions"`
	CurrentYearVolume       decimal.Decimal `json:"current_year_volume"`
	CurrentYearTransactions int64           `json:"current_year_transactions"`
	CommissionDue           decimal.Decimal `json:"commission_due"`
}

type Pipeline struct {
	ActiveValue decimal.Decimal `json:"active_value"`
	WinRate     float64         `json:"win_rate"`
	ActiveCount int64           `json:"active_count"`
}

type FunnelStage struct {
	Stage crm.Stage `json:"stage"`
	Count int64     `json:"count"`
}

type RecentTransaction struct {
	ID             uuid.UUID           `json:"id"`
	Name           string              `json:"name"`
	Value          decimal.NullDecimal `json:"value"`
	Stage          crm.Stage           `json:"stage"`
	CreatedAt      time.Time           `json:"created_at"`
	DetailedStatus string              `json:"detailed_status"`
}

type ScheduledEvent struct {
	ID        uuid.UUID     `json:"id"`
	Title     string        `json:"title"`
	StartTime time.Time     `json:"start_time"`
	Type      crm.EventType `json:"type"`
}

type DashboardStats struct {
	Financials     Financials          `json:"financials"`
	Pipeline       Pipeline            `json:"pipeline"`
	Funnel         []FunnelStage       `json:"funnel"`
	RecentActivity []RecentTransaction `json:"recent_activity"`
	TodaysSchedule []ScheduledEvent    `json:"todays_schedule"`
}

type DashboardService interface {
	// Stats aggregates the caller's organization and pipeline. It is read-only.
	Stats(ctx context.Context, caller *types.Caller) (*DashboardStats, error)
}

type dashboardService struct {
	db        *gorm.DB
	log       *logger.Logger
	statsRepo repos.StatsRepo
	now       func() time.Time
}

// NewDashboardService uses time.Now when now is nil.
func NewDashboardService(db *gorm.DB, log *logger.Logger, statsRepo repos.StatsRepo, now func() time.Time) DashboardService {
	if now == nil {
		now = time.Now
	}
	return &dashboardService{
		db:        db,
		log:       log.With("service", "DashboardService"),
		statsRepo: statsRepo,
		now:       now,
	}
}

func (ds *dashboardService) Stats(ctx context.Context, caller *types.Caller) (*DashboardStats, error) {
	const op = "dashboard.stats"
	if caller == nil {
		return nil, domainagg.Unauthorized(op, msgNoCredentials)
	}

	loc := caller.Loc()
	local := ds.now().In(loc)
	year := analytics.YearWindow{
		DateFrom:    crm.NewDate(local.Year(), time.January, 1),
		DateTo:      crm.NewDate(local.Year()+1, time.January, 1),
		CreatedFrom: time.Date(local.Year(), time.January, 1, 0, 0, 0, 0, loc),
		CreatedTo:   time.Date(local.Year()+1, time.January, 1, 0, 0, 0, 0, loc),
	}
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	// Aggregates never bypass the tenant filter, superusers included.
	orgScope := scope.StrictOrganization(caller)

	out := &DashboardStats{
		Funnel:         []FunnelStage{},
		RecentActivity: []RecentTransaction{},
		TodaysSchedule: []ScheduledEvent{},
	}
	var (
		totals     analytics.TransactionTotals
		stageRows  []analytics.StageCount
		dealRows   []analytics.DealStageTotal
		recentRows []*types.Transaction
		eventRows  []*types.Event
	)

	g, gctx := errgroup.WithContext(ctx)
	dbc := dbctx.Of(gctx)
	if caller.HasOrganization() {
		g.Go(func() error {
			var err error
			totals, err = ds.statsRepo.TransactionTotals(dbc, orgScope, year)
			return err
		})
		g.Go(func() error {
			var err error
			stageRows, err = ds.statsRepo.TransactionStageCounts(dbc, orgScope)
			return err
		})
		g.Go(func() error {
			var err error
			recentRows, err = ds.statsRepo.RecentTransactions(dbc, orgScope, recentActivityLimit)
			return err
		})
		g.Go(func() error {
			var err error
			eventRows, err = ds.statsRepo.EventsBetween(dbc, orgScope, dayStart, dayEnd, scheduleLimit)
			return err
		})
	}
	g.Go(func() error {
		var err error
		dealRows, err = ds.statsRepo.DealTotalsByStage(dbc, caller.UserID)
		return err
	})
	if err := g.Wait(); err != nil {
		ds.log.Error("Dashboard aggregation failed", "user_id", caller.UserID, "error", err)
		return nil, aggregates.MapError(op, err)
	}

	out.Financials = Financials{
		TotalSalesVolume:        totals.TotalSalesVolume,
		TotalTransactions:       totals.TotalTransactions,
		CurrentYearVolume:       totals.CurrentYearVolume,
		CurrentYearTransactions: totals.CurrentYearTransactions,
		CommissionDue:           totals.CommissionDue,
	}
	out.Pipeline = pipelineFrom(dealRows)
	out.Funnel = funnelFrom(stageRows)
	for _, t := range recentRows {
		out.RecentActivity = append(out.RecentActivity, RecentTransaction{
			ID:             t.ID,
			Name:           t.Name,
			Value:          t.Value,
			Stage:          t.Stage,
			CreatedAt:      t.CreatedAt,
			DetailedStatus: t.DetailedStatus,
		})
	}
	for _, e := range eventRows {
		out.TodaysSchedule = append(out.TodaysSchedule, ScheduledEvent{
			ID:        e.ID,
			Title:     e.Title,
			StartTime: e.StartTime,
			Type:      e.Type,
		})
	}
	return out, nil
}

func pipelineFrom(rows []analytics.DealStageTotal) Pipeline {
	p := Pipeline{ActiveValue: decimal.Zero}
	var won, lost int64
	for _, r := range rows {
		switch crm.DealStage(r.Stage) {
		case crm.DealNew, crm.DealNegotiation, crm.DealUnderContract:
			p.ActiveValue = p.ActiveValue.Add(r.Value)
			p.ActiveCount += r.Count
		case crm.DealClosedWon:
			won += r.Count
		case crm.DealClosedLost:
			lost += r.Count
		}
	}
	p.WinRate = WinRate(won, lost)
	return p
}

// WinRate is won / (won + lost) as a percentage rounded half to even at one
// decimal, 0 with no closed deals.
func WinRate(won, lost int64) float64 {
	closed := won + lost
	if closed <= 0 {
		return 0
	}
	return decimal.NewFromInt(won).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(closed)).
		RoundBank(1).
		InexactFloat64()
}

func funnelFrom(rows []analytics.StageCount) []FunnelStage {
	counts := make(map[crm.Stage]int64, len(rows))
	for _, r := range rows {
		counts[crm.Stage(r.Stage)] += r.Count
	}
	out := make([]FunnelStage, 0, len(crm.FunnelStages))
	for _, s := range crm.FunnelStages {
		out = append(out, FunnelStage{Stage: s, Count: counts[s]})
	}
	return out
}
