package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lojinha/backoffice/internal/store/db"
)

func ts(value string) *time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return &t
}

func Test_aggregateOrderMetrics(t *testing.T) {
	testCases := []struct {
		name               string
		totals             []db.OrderTotal
		expectedOrders     int64
		expectedRevenue    int64
		expectedAverage    float64
		expectedDaily      map[string]int64
		expectedWeekly     map[string]int64
		expectedMonthly    map[string]int64
		expectedUnbucketed int64
	}{
		{
			name:            "no orders",
			totals:          nil,
			expectedOrders:  0,
			expectedRevenue: 0,
			expectedAverage: 0,
			expectedDaily:   map[string]int64{},
			expectedWeekly:  map[string]int64{},
			expectedMonthly: map[string]int64{},
		},
		{
			name: "three orders on one day",
			totals: []db.OrderTotal{
				{Date: ts("2024-03-15T09:00:00Z"), Total: 1000},
				{Date: ts("2024-03-15T13:30:00Z"), Total: 2000},
				{Date: ts("2024-03-15T23:59:59Z"), Total: 3000},
			},
			expectedOrders:  3,
			expectedRevenue: 6000,
			expectedAverage: 2000,
			expectedDaily:   map[string]int64{"2024-03-15": 3},
			expectedWeekly:  map[string]int64{"2024-W11": 3},
			expectedMonthly: map[string]int64{"2024-03": 3},
		},
		{
			name: "orders spread across buckets",
			totals: []db.OrderTotal{
				{Date: ts("2024-01-31T10:00:00Z"), Total: 500},
				{Date: ts("2024-02-01T10:00:00Z"), Total: 1500},
			},
			expectedOrders:  2,
			expectedRevenue: 2000,
			expectedAverage: 1000,
			expectedDaily:   map[string]int64{"2024-01-31": 1, "2024-02-01": 1},
			expectedWeekly:  map[string]int64{"2024-W05": 2},
			expectedMonthly: map[string]int64{"2024-01": 1, "2024-02": 1},
		},
		{
			name: "iso week owns the year boundary",
			totals: []db.OrderTotal{
				// Monday 2024-12-30 belongs to week 1 of 2025.
				{Date: ts("2024-12-30T12:00:00Z"), Total: 100},
			},
			expectedOrders:  1,
			expectedRevenue: 100,
			expectedAverage: 100,
			expectedDaily:   map[string]int64{"2024-12-30": 1},
			expectedWeekly:  map[string]int64{"2025-W01": 1},
			expectedMonthly: map[string]int64{"2024-12": 1},
		},
		{
			name: "dateless orders count toward totals only",
			totals: []db.OrderTotal{
				{Date: ts("2024-03-15T09:00:00Z"), Total: 1000},
				{Date: nil, Total: 3000},
			},
			expectedOrders:     2,
			expectedRevenue:    4000,
			expectedAverage:    2000,
			expectedDaily:      map[string]int64{"2024-03-15": 1},
			expectedWeekly:     map[string]int64{"2024-W11": 1},
			expectedMonthly:    map[string]int64{"2024-03": 1},
			expectedUnbucketed: 1,
		},
		{
			name: "zero total orders still count",
			totals: []db.OrderTotal{
				{Date: ts("2024-03-15T09:00:00Z"), Total: 0},
				{Date: ts("2024-03-15T10:00:00Z"), Total: 300},
			},
			expectedOrders:  2,
			expectedRevenue: 300,
			expectedAverage: 150,
			expectedDaily:   map[string]int64{"2024-03-15": 2},
			expectedWeekly:  map[string]int64{"2024-W11": 2},
			expectedMonthly: map[string]int64{"2024-03": 2},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			metrics, unbucketed := aggregateOrderMetrics(tc.totals)
			// then
			assert.Equal(t, tc.expectedOrders, metrics.TotalOrders)
			assert.Equal(t, tc.expectedRevenue, metrics.TotalRevenue)
			assert.InDelta(t, tc.expectedAverage, metrics.AverageOrderValue, 1e-9)
			assert.Equal(t, tc.expectedDaily, metrics.OrdersByPeriod.Daily)
			assert.Equal(t, tc.expectedWeekly, metrics.OrdersByPeriod.Weekly)
			assert.Equal(t, tc.expectedMonthly, metrics.OrdersByPeriod.Monthly)
			assert.Equal(t, tc.expectedUnbucketed, unbucketed)
		})
	}
}

func Test_aggregateOrderMetrics_totalsIndependentOfBuckets(t *testing.T) {
	// given
	totals := []db.OrderTotal{
		{Date: ts("2024-06-01T00:00:00Z"), Total: 100},
		{Date: nil, Total: 200},
		{Date: ts("2024-06-02T00:00:00Z"), Total: 300},
		{Date: nil, Total: 400},
	}
	// when
	metrics, unbucketed := aggregateOrderMetrics(totals)
	// then
	var bucketed int64
	for _, n := range metrics.OrdersByPeriod.Daily {
		bucketed += n
	}
	assert.Equal(t, metrics.TotalOrders, bucketed+unbucketed)
	assert.Equal(t, int64(1000), metrics.TotalRevenue)
}
