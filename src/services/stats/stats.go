package stats

import (
	"context"
	"go-restaurant-pos/src/infrastructure/log"
	"go-restaurant-pos/src/services/order/domain"

	"github.com/shopspring/decimal"
)

type RevenueSummary struct {
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	Count        int             `json:"count"`
}

// Aggregator computes dashboard figures from the order store on demand.
type Aggregator interface {
	RevenueSummary(ctx context.Context) (RevenueSummary, error)
	StatusBreakdown(ctx context.Context) (map[string]int, error)
}

type aggregator struct {
	store domain.OrderStore
}

func NewAggregator(store domain.OrderStore) Aggregator {
	return &aggregator{store: store}
}

// RevenueSummary sums TotalAmount over paid orders.
func (a *aggregator) RevenueSummary(ctx context.Context) (RevenueSummary, error) {
	paid, err := a.store.List(ctx, domain.OrderFilter{PaymentStatuses: []domain.PaymentStatus{domain.PaymentPaid}})
	if err != nil {
		return RevenueSummary{}, err
	}

	summary := RevenueSummary{TotalRevenue: decimal.Zero}
	for _, order := range paid {
		summary.TotalRevenue = summary.TotalRevenue.Add(order.TotalAmount)
		summary.Count++
	}
	return summary, nil
}

// StatusBreakdown counts orders per status. Every status is present, zero or not.
func (a *aggregator) StatusBreakdown(ctx context.Context) (map[string]int, error) {
	orders, err := a.store.List(ctx, domain.OrderFilter{})
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(domain.Statuses()))
	for _, status := range domain.Statuses() {
		counts[status.String()] = 0
	}
	for _, order := range orders {
		counts[order.Status.String()]++
	}
	return counts, nil
}

// LogSnapshot writes the current revenue and status counts to the log.
func LogSnapshot(ctx context.Context, agg Aggregator, logger log.Logger) error {
	revenue, err := agg.RevenueSummary(ctx)
	if err != nil {
		return err
	}
	breakdown, err := agg.StatusBreakdown(ctx)
	if err != nil {
		return err
	}

	extra := map[string]any{
		"TotalRevenue": revenue.TotalRevenue.StringFixed(2),
		"PaidOrders":   revenue.Count,
	}
	for status, count := range breakdown {
		extra["Status_"+status] = count
	}
	logger.InfoWithExtra(ctx, "Order stats snapshot", extra)
	return nil
}
