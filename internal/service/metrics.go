package service

import (
	"fmt"

	"github.com/lojinha/backoffice/internal/store/db"
)

// OrderMetricsDto is the dashboard aggregation over all orders.
// The period maps are sparse: buckets without orders are absent, callers
// treat missing keys as zero.
type OrderMetricsDto struct {
	TotalOrders       int64             `json:"totalOrders"`
	TotalRevenue      int64             `json:"totalRevenue"`
	AverageOrderValue float64           `json:"averageOrderValue"`
	OrdersByPeriod    OrdersByPeriodDto `json:"ordersByPeriod"`
}

// OrdersByPeriodDto groups order counts by calendar day (YYYY-MM-DD),
// ISO week (YYYY-Www) and month (YYYY-MM).
type OrdersByPeriodDto struct {
	Daily   map[string]int64 `json:"daily"`
	Weekly  map[string]int64 `json:"weekly"`
	Monthly map[string]int64 `json:"monthly"`
}

// aggregateOrderMetrics folds every order into the totals and the three
// period maps in a single pass. Rows without a date count toward the totals
// but no bucket; their number is returned alongside the metrics.
func aggregateOrderMetrics(totals []db.OrderTotal) (*OrderMetricsDto, int64) {
	metrics := &OrderMetricsDto{
		OrdersByPeriod: OrdersByPeriodDto{
			Daily:   make(map[string]int64),
			Weekly:  make(map[string]int64),
			Monthly: make(map[string]int64),
		},
	}

	var unbucketed int64
	for _, t := range totals {
		metrics.TotalOrders++
		metrics.TotalRevenue += t.Total

		if t.Date == nil {
			unbucketed++
			continue
		}
		date := t.Date.UTC()
		metrics.OrdersByPeriod.Daily[date.Format("2006-01-02")]++
		year, week := date.ISOWeek()
		metrics.OrdersByPeriod.Weekly[fmt.Sprintf("%04d-W%02d", year, week)]++
		metrics.OrdersByPeriod.Monthly[date.Format("2006-01")]++
	}

	if metrics.TotalOrders > 0 {
		metrics.AverageOrderValue = float64(metrics.TotalRevenue) / float64(metrics.TotalOrders)
	}
	return metrics, unbucketed
}
