package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/diewo77/go-estimates/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func createEstimate(t *testing.T, s *EstimateStore, no string, customerID uint, day time.Time, grand float64, lines ...models.EstimateLine) *models.Estimate {
	t.Helper()
	e := &models.Estimate{EstimateNo: no, Date: day, CustomerID: customerID, ItemsTotal: grand, GrandTotal: grand}
	if err := s.CreateHeader(context.Background(), e); err != nil {
		t.Fatalf("create header %s: %v", no, err)
	}
	if err := s.ReplaceLines(context.Background(), e.ID, lines); err != nil {
		t.Fatalf("lines %s: %v", no, err)
	}
	return e
}

func TestCustomerCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewCustomerStore(setupTestDB(t))

	c := &models.Customer{Name: "  Ravi ", Phone: "999", Address: "Karimnagar"}
	if err := s.Create(ctx, c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.ID == 0 || c.Name != "Ravi" {
		t.Fatalf("unexpected customer after create: %+v", c)
	}
	if err := s.Create(ctx, &models.Customer{Name: "Ravi"}); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected duplicate key, got %v", err)
	}
	ok, err := s.Exists(ctx, "Ravi")
	if err != nil || !ok {
		t.Fatalf("expected Ravi to exist (err=%v)", err)
	}
	got, err := s.GetByName(ctx, "Ravi")
	if err != nil || got.ID != c.ID {
		t.Fatalf("get by name: %+v %v", got, err)
	}
	if _, err := s.GetByName(ctx, "Nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	c.Phone = "111"
	if err := s.Update(ctx, c); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = s.Get(ctx, c.ID)
	if got.Phone != "111" {
		t.Fatalf("phone not updated: %q", got.Phone)
	}
	if err := s.Update(ctx, &models.Customer{ID: 9999, Name: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on update, got %v", err)
	}
	if err := s.Delete(ctx, c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestCustomerSearchAndNames(t *testing.T) {
	ctx := context.Background()
	s := NewCustomerStore(setupTestDB(t))
	for _, c := range []models.Customer{
		{Name: "Suresh", Phone: "8000", Address: "Huzurabad"},
		{Name: "Anil", Phone: "7000", Address: "Warangal"},
		{Name: "Kiran", Phone: "9000", Address: "Huzurabad bypass"},
	} {
		c := c
		if err := s.Create(ctx, &c); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	names, err := s.Names(ctx)
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	if len(names) != 3 || names[0] != "Anil" || names[2] != "Suresh" {
		t.Fatalf("names not ordered: %v", names)
	}
	found, err := s.Search(ctx, "Huzurabad")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 2 || found[0].Name != "Kiran" {
		t.Fatalf("unexpected search result: %+v", found)
	}
	found, _ = s.Search(ctx, "7000")
	if len(found) != 1 || found[0].Name != "Anil" {
		t.Fatalf("phone search failed: %+v", found)
	}
}

func TestItemUpsert(t *testing.T) {
	ctx := context.Background()
	s := NewItemStore(setupTestDB(t))
	created, err := s.Upsert(ctx, &models.Item{Name: "Cement", Unit: "Bag", Rate: 400, HamaliRate: 10})
	if err != nil || !created {
		t.Fatalf("expected create, got created=%v err=%v", created, err)
	}
	created, err = s.Upsert(ctx, &models.Item{Name: "Cement", Unit: "Bag", Rate: 420, HamaliRate: 20})
	if err != nil || created {
		t.Fatalf("expected update, got created=%v err=%v", created, err)
	}
	it, err := s.GetByName(ctx, "Cement")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if it.Rate != 420 || it.HamaliRate != 20 {
		t.Fatalf("upsert did not update: %+v", it)
	}
	items, _ := s.List(ctx)
	if len(items) != 1 {
		t.Fatalf("expected 1 item got %d", len(items))
	}
}

func TestNextNumber(t *testing.T) {
	ctx := context.Background()
	s := NewEstimateStore(setupTestDB(t))
	no, err := s.NextNumber(ctx)
	if err != nil || no != "SRS001" {
		t.Fatalf("expected SRS001 got %q (%v)", no, err)
	}
	createEstimate(t, s, "SRS007", 0, date(2024, 5, 1), 10)
	no, err = s.NextNumber(ctx)
	if err != nil || no != "SRS008" {
		t.Fatalf("expected SRS008 got %q (%v)", no, err)
	}
}

func TestNextAfter(t *testing.T) {
	cases := map[string]string{"": "SRS001", "SRS009": "SRS010", "SRS999": "SRS1000"}
	for in, want := range cases {
		got, err := NextAfter(in)
		if err != nil || got != want {
			t.Errorf("NextAfter(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := NextAfter("SRSx1"); err == nil {
		t.Fatalf("expected error for malformed number")
	}
}

func TestEstimateDuplicateNumber(t *testing.T) {
	ctx := context.Background()
	s := NewEstimateStore(setupTestDB(t))
	first := createEstimate(t, s, "SRS001", 0, date(2024, 5, 1), 10, models.EstimateLine{ItemName: "Sand", Qty: 1, Rate: 10, RowTotal: 10})
	err := s.CreateHeader(ctx, &models.Estimate{EstimateNo: "SRS001", Date: date(2024, 5, 2)})
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected duplicate key got %v", err)
	}
	lines, _ := s.Lines(ctx, first.ID)
	if len(lines) != 1 || lines[0].ItemName != "Sand" {
		t.Fatalf("lines changed: %+v", lines)
	}
}

func TestEstimateRoundTripAndReplaceLines(t *testing.T) {
	ctx := context.Background()
	s := NewEstimateStore(setupTestDB(t))
	line := models.EstimateLine{ItemName: "Cement", Description: "OPC 53", Qty: 10, Unit: "Bag", Rate: 420, RowTotal: 4200, HamaliRate: 20, HamaliTotal: 200}
	e := createEstimate(t, s, "SRS001", 1, date(2024, 5, 1), 4450, line)

	got, err := s.Get(ctx, e.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.StatusPending {
		t.Fatalf("expected pending status got %q", got.Status)
	}
	if len(got.Lines) != 1 {
		t.Fatalf("expected 1 line got %d", len(got.Lines))
	}
	l := got.Lines[0]
	if l.ItemName != line.ItemName || l.Description != line.Description || l.Qty != line.Qty ||
		l.Unit != line.Unit || l.Rate != line.Rate || l.RowTotal != line.RowTotal ||
		l.HamaliRate != line.HamaliRate || l.HamaliTotal != line.HamaliTotal {
		t.Fatalf("line mismatch: %+v", l)
	}

	if err := s.ReplaceLines(ctx, e.ID, []models.EstimateLine{{ItemName: "Steel", Qty: 2, Rate: 60, RowTotal: 120}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	lines, _ := s.Lines(ctx, e.ID)
	if len(lines) != 1 || lines[0].ItemName != "Steel" {
		t.Fatalf("lines not replaced: %+v", lines)
	}
}

func TestDeleteEstimateAndCustomer(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	customers := NewCustomerStore(db)
	s := NewEstimateStore(db)
	c := &models.Customer{Name: "Ravi"}
	if err := customers.Create(ctx, c); err != nil {
		t.Fatalf("customer: %v", err)
	}
	e1 := createEstimate(t, s, "SRS001", c.ID, date(2024, 5, 1), 10, models.EstimateLine{ItemName: "A", Qty: 1, Rate: 10})
	e2 := createEstimate(t, s, "SRS002", c.ID, date(2024, 5, 2), 20, models.EstimateLine{ItemName: "B", Qty: 2, Rate: 10})

	if err := s.Delete(ctx, e1.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, e1.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected header gone, got %v", err)
	}
	var orphan int64
	db.Model(&models.EstimateLine{}).Where("estimate_id = ?", e1.ID).Count(&orphan)
	if orphan != 0 {
		t.Fatalf("expected lines removed, found %d", orphan)
	}
	if err := s.Delete(ctx, e1.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}

	if err := customers.Delete(ctx, c.ID); err != nil {
		t.Fatalf("delete customer: %v", err)
	}
	rows, err := s.Search(ctx, EstimateFilter{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != e2.ID {
		t.Fatalf("estimate should survive customer deletion: %+v", rows)
	}
	if rows[0].CustomerName != nil {
		t.Fatalf("expected dangling customer, got %q", *rows[0].CustomerName)
	}
}

func TestSearchFiltersNarrow(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	customers := NewCustomerStore(db)
	s := NewEstimateStore(db)
	ravi := &models.Customer{Name: "Ravi"}
	anil := &models.Customer{Name: "Anil"}
	_ = customers.Create(ctx, ravi)
	_ = customers.Create(ctx, anil)
	createEstimate(t, s, "SRS001", ravi.ID, date(2024, 4, 30), 10)
	createEstimate(t, s, "SRS002", anil.ID, date(2024, 5, 1), 20)
	createEstimate(t, s, "SRS003", ravi.ID, date(2024, 5, 15), 30)
	createEstimate(t, s, "SRS013", ravi.ID, date(2024, 6, 1), 40)

	from, to := date(2024, 5, 1), date(2024, 5, 31)
	cases := []struct {
		name string
		f    EstimateFilter
		want []string
	}{
		{"none", EstimateFilter{}, []string{"SRS013", "SRS003", "SRS002", "SRS001"}},
		{"number", EstimateFilter{Number: "13"}, []string{"SRS013"}},
		{"customer", EstimateFilter{CustomerName: "Ravi"}, []string{"SRS013", "SRS003", "SRS001"}},
		{"range", EstimateFilter{From: &from, To: &to}, []string{"SRS003", "SRS002"}},
		{"customer and range", EstimateFilter{CustomerName: "Ravi", From: &from, To: &to}, []string{"SRS003"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows, err := s.Search(ctx, tc.f)
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			if len(rows) != len(tc.want) {
				t.Fatalf("expected %v got %d rows", tc.want, len(rows))
			}
			for i, r := range rows {
				if r.EstimateNo != tc.want[i] {
					t.Fatalf("row %d: expected %s got %s", i, tc.want[i], r.EstimateNo)
				}
			}
		})
	}
}

func TestSummaryAndMonthly(t *testing.T) {
	ctx := context.Background()
	s := NewEstimateStore(setupTestDB(t))
	now := time.Date(2024, 5, 15, 17, 30, 0, 0, time.UTC)
	createEstimate(t, s, "SRS001", 0, date(2024, 4, 30), 100)
	createEstimate(t, s, "SRS002", 0, date(2024, 5, 1), 200)
	createEstimate(t, s, "SRS003", 0, date(2024, 5, 1), 50)
	createEstimate(t, s, "SRS004", 0, date(2024, 5, 15), 25)

	sum, err := s.Summary(ctx, now)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.All.Count != 4 || sum.All.Total != 375 {
		t.Fatalf("unexpected overall: %+v", sum.All)
	}
	if sum.Today.Count != 1 || sum.Today.Total != 25 {
		t.Fatalf("unexpected today: %+v", sum.Today)
	}

	rep, err := s.Monthly(ctx, 2024, time.May)
	if err != nil {
		t.Fatalf("monthly: %v", err)
	}
	if rep.Count != 3 || rep.Total != 275 {
		t.Fatalf("unexpected month: %+v", rep.Period)
	}
	if len(rep.Days) != 2 {
		t.Fatalf("expected 2 days got %d", len(rep.Days))
	}
	if rep.Days[0].Date.Day() != 1 || rep.Days[0].Count != 2 || rep.Days[0].Total != 250 {
		t.Fatalf("unexpected first day: %+v", rep.Days[0])
	}

	empty, err := s.Monthly(ctx, 2023, time.January)
	if err != nil || empty.Count != 0 || len(empty.Days) != 0 {
		t.Fatalf("expected empty month, got %+v (%v)", empty, err)
	}
}
