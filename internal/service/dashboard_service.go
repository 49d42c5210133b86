package service

import (
	"context"
	"time"

	"bodega-pos/internal/ledger"
	"bodega-pos/internal/reporting"
	"bodega-pos/internal/repository"
)

type DashboardService interface {
	GetStockMovement(days int) ([]repository.StockMovementData, error)
	GetDashboardStats() (*repository.DashboardStats, error)
	Summary(ctx context.Context, kind ledger.Kind) ledger.Result[reporting.Summary]
	PaymentSplit(ctx context.Context) ledger.Result[reporting.PaymentSplit]
	Today(ctx context.Context) ledger.Result[TodayReport]
}

// TodayReport is the running figure of the current business day.
type TodayReport struct {
	Date    string                 `json:"date"`
	Summary reporting.Summary      `json:"summary"`
	Payment reporting.PaymentSplit `json:"payment"`
	Sales   []ledger.Transaction   `json:"sales"`
}

type dashboardService struct {
	repo         repository.DashboardRepository
	transactions TransactionService
	threshold    int
	loc          *time.Location
	now          func() time.Time
}

func NewDashboardService(repo repository.DashboardRepository, transactions TransactionService, lowStockThreshold int, loc *time.Location) DashboardService {
	if loc == nil {
		loc = time.Local
	}
	return &dashboardService{
		repo:         repo,
		transactions: transactions,
		threshold:    lowStockThreshold,
		loc:          loc,
		now:          time.Now,
	}
}

func (s *dashboardService) GetStockMovement(days int) ([]repository.StockMovementData, error) {
	if days <= 0 {
		days = 7
	}
	endDate := s.now()
	startDate := endDate.AddDate(0, 0, -days)

	return s.repo.GetStockMovement(startDate, endDate)
}

func (s *dashboardService) GetDashboardStats() (*repository.DashboardStats, error) {
	return s.repo.GetDashboardStats(s.threshold)
}

func (s *dashboardService) Summary(ctx context.Context, kind ledger.Kind) ledger.Result[reporting.Summary] {
	res := s.transactions.List(ctx, kind)
	if !res.Success {
		return ledger.Fail[reporting.Summary](res.Err)
	}
	return ledger.OK(reporting.Summarize(res.Data))
}

func (s *dashboardService) PaymentSplit(ctx context.Context) ledger.Result[reporting.PaymentSplit] {
	res := s.transactions.List(ctx, ledger.KindSale)
	if !res.Success {
		return ledger.Fail[reporting.PaymentSplit](res.Err)
	}
	return ledger.OK(reporting.SplitByPayment(res.Data))
}

func (s *dashboardService) Today(ctx context.Context) ledger.Result[TodayReport] {
	res := s.transactions.List(ctx, ledger.KindSale)
	if !res.Success {
		return ledger.Fail[TodayReport](res.Err)
	}
	now := s.now()
	sales := reporting.OnDay(res.Data, now, s.loc)
	return ledger.OK(TodayReport{
		Date:    now.In(s.loc).Format("2006-01-02"),
		Summary: reporting.Summarize(sales),
		Payment: reporting.SplitByPayment(sales),
		Sales:   sales,
	})
}
