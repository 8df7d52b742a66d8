package services

import (
	"sort"
	"time"

	"table-order/internal/ledger/app/core"
	"table-order/internal/xpkg/models"
	"table-order/internal/xpkg/status"
)

type Stats struct {
	GrossRevenue      int64   `json:"gross_revenue"`
	SecuredRevenue    int64   `json:"secured_revenue"`
	AtRiskRevenue     int64   `json:"at_risk_revenue"`
	Volume            int     `json:"volume"`
	AverageOrderValue float64 `json:"average_order_value"`
	UniqueCustomers   int     `json:"unique_customers"`
}

type DayRevenue struct {
	Day     string `json:"day"`
	Revenue int64  `json:"revenue"`
}

type ItemPopularity struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

type Report struct {
	Stats        Stats            `json:"stats"`
	RevenueByDay []DayRevenue     `json:"revenue_by_day"`
	PopularItems []ItemPopularity `json:"popular_items"`
}

// Aggregate reduces orders to revenue statistics in one pass. Days are
// calendar days in loc.
//
// Only counted orders contribute to revenue, volume, customers and the daily
// series. Item popularity covers every order.
func Aggregate(orders []models.Order, loc *time.Location) Report {
	if loc == nil {
		loc = time.Local
	}

	var (
		stats     Stats
		customers = make(map[string]struct{})
		byDay     = make(map[string]int64)
		qtyByName = make(map[string]int)
		names     []string
	)

	for _, o := range orders {
		for _, it := range o.Items {
			if _, seen := qtyByName[it.Name]; !seen {
				names = append(names, it.Name)
			}
			qtyByName[it.Name] += it.Qty
		}

		switch status.Classify(o).Bucket {
		case status.Secured:
			stats.SecuredRevenue += o.Total
		case status.AtRisk:
			stats.AtRiskRevenue += o.Total
		default:
			continue
		}
		stats.Volume++
		customers[o.UserID] = struct{}{}
		byDay[o.CreatedAt.In(loc).Format(time.DateOnly)] += o.Total
	}

	stats.GrossRevenue = stats.SecuredRevenue + stats.AtRiskRevenue
	stats.UniqueCustomers = len(customers)
	if stats.Volume > 0 {
		stats.AverageOrderValue = float64(stats.GrossRevenue) / float64(stats.Volume)
	}

	return Report{
		Stats:        stats,
		RevenueByDay: recentDays(byDay, core.RevenueDays),
		PopularItems: topItems(names, qtyByName, core.PopularLimit),
	}
}

// recentDays returns the last n days present in byDay, oldest first.
func recentDays(byDay map[string]int64, n int) []DayRevenue {
	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)
	if len(days) > n {
		days = days[len(days)-n:]
	}

	out := make([]DayRevenue, 0, len(days))
	for _, d := range days {
		out = append(out, DayRevenue{Day: d, Revenue: byDay[d]})
	}
	return out
}

// topItems ranks names by quantity. Ties keep first-seen order.
func topItems(names []string, qty map[string]int, n int) []ItemPopularity {
	out := make([]ItemPopularity, 0, len(names))
	for _, name := range names {
		out = append(out, ItemPopularity{Name: name, Qty: qty[name]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Qty > out[j].Qty })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

type LedgerRow struct {
	OrderID       string               `json:"order_id"`
	TransactionID string               `json:"transaction_id"`
	Table         string               `json:"table"`
	CreatedAt     time.Time            `json:"created_at"`
	Amount        int64                `json:"amount"`
	Method        models.PaymentMethod `json:"method"`
	Status        models.OrderStatus   `json:"status"`
	DisplayStatus string               `json:"display_status"`
	Bucket        status.Bucket        `json:"bucket"`
}

// Ledger lists orders newest first as the admin table shows them.
func Ledger(orders []models.Order) []LedgerRow {
	rows := make([]LedgerRow, 0, len(orders))
	for _, o := range orders {
		c := status.Classify(o)
		txID := o.Payment.TransactionID
		if txID == "" {
			txID = core.AwaitingTransaction
		}
		rows = append(rows, LedgerRow{
			OrderID:       o.ID,
			TransactionID: txID,
			Table:         "T-" + o.TableID,
			CreatedAt:     o.CreatedAt,
			Amount:        o.Total,
			Method:        o.Payment.Method,
			Status:        o.Status,
			DisplayStatus: c.DisplayStatus,
			Bucket:        c.Bucket,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return rows
}
