package services

import (
	"math/rand"
	"reflect"
	"sort"
	"testing"
	"time"

	"table-order/internal/xpkg/models"
	"table-order/internal/xpkg/status"
)

var day0 = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func ord(id, user string, total int64, st models.OrderStatus, at time.Time, items ...models.OrderItem) models.Order {
	return models.Order{
		ID:        id,
		TableID:   "3",
		UserID:    user,
		Total:     total,
		Status:    st,
		CreatedAt: at,
		Payment:   models.Payment{TransactionID: "TXN-" + id, Method: models.MethodCash},
		Items:     items,
	}
}

func TestAggregateScenario(t *testing.T) {
	t.Parallel()

	orders := []models.Order{
		ord("1", "u1", 100, models.StatusSettled, day0),
		ord("2", "u2", 200, models.StatusPending, day0),
		ord("3", "u1", 300, models.StatusSettled, day0),
	}
	got := Aggregate(orders, time.UTC).Stats
	want := Stats{
		GrossRevenue:      600,
		SecuredRevenue:    400,
		AtRiskRevenue:     200,
		Volume:            3,
		AverageOrderValue: 200,
		UniqueCustomers:   2,
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestAggregateExcludesNonPositiveTotals(t *testing.T) {
	t.Parallel()

	orders := []models.Order{
		ord("1", "u1", 0, models.StatusSettled, day0),
		ord("2", "u2", 150, models.StatusPaymentPending, day0),
	}
	got := Aggregate(orders, time.UTC).Stats
	if got.Volume != 1 || got.GrossRevenue != 150 || got.AtRiskRevenue != 150 || got.UniqueCustomers != 1 {
		t.Fatalf("unexpected stats %+v", got)
	}
}

func TestAggregateEmpty(t *testing.T) {
	t.Parallel()

	r := Aggregate(nil, time.UTC)
	if r.Stats != (Stats{}) || len(r.RevenueByDay) != 0 || len(r.PopularItems) != 0 {
		t.Fatalf("expected zero report, got %+v", r)
	}
}

func TestAggregateIsCommutative(t *testing.T) {
	t.Parallel()

	var orders []models.Order
	for i := 0; i < 30; i++ {
		st := models.StatusPending
		if i%3 == 0 {
			st = models.StatusSettled
		}
		orders = append(orders, ord(string(rune('a'+i)), "u"+string(rune('0'+i%4)), int64(50*(i%5)), st,
			day0.Add(time.Duration(i)*7*time.Hour),
			models.OrderItem{Name: "item-" + string(rune('a'+i%6)), Qty: 1 + i%3}))
	}
	base := Aggregate(orders, time.UTC)

	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 20; trial++ {
		shuffled := append([]models.Order(nil), orders...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got := Aggregate(shuffled, time.UTC)
		if got.Stats != base.Stats {
			t.Fatalf("trial %d: stats differ: %+v vs %+v", trial, got.Stats, base.Stats)
		}
		if !reflect.DeepEqual(revenues(got.RevenueByDay), revenues(base.RevenueByDay)) {
			t.Fatalf("trial %d: daily revenue multiset differs", trial)
		}
	}
}

func revenues(days []DayRevenue) []int64 {
	out := make([]int64, 0, len(days))
	for _, d := range days {
		out = append(out, d.Revenue)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestRevenueByDayKeepsLastSevenDays(t *testing.T) {
	t.Parallel()

	var orders []models.Order
	for i := 0; i < 10; i++ {
		at := day0.AddDate(0, 0, i)
		orders = append(orders, ord(string(rune('a'+i)), "u", int64(10*(i+1)), models.StatusSettled, at))
	}
	// A second order on the last day.
	orders = append(orders, ord("z", "u", 5, models.StatusPending, day0.AddDate(0, 0, 9)))

	days := Aggregate(orders, time.UTC).RevenueByDay
	if len(days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(days))
	}
	if days[0].Day != "2026-03-13" || days[6].Day != "2026-03-19" {
		t.Fatalf("unexpected window %s..%s", days[0].Day, days[6].Day)
	}
	if days[6].Revenue != 105 {
		t.Fatalf("expected 105 on the last day, got %d", days[6].Revenue)
	}
}

func TestRevenueByDayUsesLocation(t *testing.T) {
	t.Parallel()

	kolkata := time.FixedZone("IST", 5*3600+1800)
	late := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	days := Aggregate([]models.Order{ord("1", "u", 100, models.StatusSettled, late)}, kolkata).RevenueByDay
	if len(days) != 1 || days[0].Day != "2026-03-11" {
		t.Fatalf("expected local day 2026-03-11, got %+v", days)
	}
}

func TestPopularItems(t *testing.T) {
	t.Parallel()

	item := func(name string, qty int) models.OrderItem { return models.OrderItem{Name: name, Qty: qty} }
	orders := []models.Order{
		ord("1", "u", 100, models.StatusSettled, day0, item("Dosa", 2), item("Chai", 1), item("Vada", 3)),
		ord("2", "u", 0, models.StatusPending, day0, item("Chai", 1), item("Idli", 2), item("Upma", 1), item("Lassi", 1)),
	}
	got := Aggregate(orders, time.UTC).PopularItems
	want := []ItemPopularity{{"Vada", 3}, {"Dosa", 2}, {"Chai", 2}, {"Idli", 2}, {"Upma", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestLedgerRows(t *testing.T) {
	t.Parallel()

	older := ord("1", "u", 100, models.StatusSettled, day0)
	newer := ord("2", "u", 200, models.StatusPaymentPending, day0.Add(time.Hour))
	newer.Payment.TransactionID = ""

	rows := Ledger([]models.Order{older, newer})
	if rows[0].OrderID != "2" || rows[1].OrderID != "1" {
		t.Fatalf("expected newest first, got %s, %s", rows[0].OrderID, rows[1].OrderID)
	}
	if rows[0].TransactionID != "AWAITING_TX" || rows[0].Table != "T-3" {
		t.Fatalf("unexpected row %+v", rows[0])
	}
	if rows[0].Bucket != status.AtRisk || rows[1].Bucket != status.Secured {
		t.Fatalf("unexpected buckets %s, %s", rows[0].Bucket, rows[1].Bucket)
	}
	if rows[0].DisplayStatus != status.DisplayAwaitingPayment {
		t.Fatalf("unexpected display status %s", rows[0].DisplayStatus)
	}
}
