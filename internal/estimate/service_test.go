package estimate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/go-estimates/internal/models"
	"github.com/diewo77/go-estimates/internal/render"
	"github.com/diewo77/go-estimates/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeRenderer struct {
	docs  map[string]render.Document
	fail  error
	calls int
}

func (f *fakeRenderer) RenderFile(path string, doc render.Document) error {
	f.calls++
	if f.fail != nil {
		return f.fail
	}
	if f.docs == nil {
		f.docs = map[string]render.Document{}
	}
	f.docs[path] = doc
	return nil
}

func setupService(t *testing.T, r Renderer) (*Service, *gorm.DB) {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	svc := NewService(db, r, Options{
		BillsDir: t.TempDir(),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	svc.Now = func() time.Time { return time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC) }
	return svc, db
}

func cementDraft(t *testing.T, svc *Service) *Draft {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, svc.Items.Create(ctx, &models.Item{Name: "Cement", Description: "OPC 53", Unit: "Bag", Rate: 420, HamaliRate: 20}))
	d, err := svc.NewDraft(ctx)
	require.NoError(t, err)
	d.UpdateHeader(HeaderPatch{Mode: ptr(CustomerNew), NewCustomer: &NewCustomer{Name: "Ravi", Phone: "999"}, AutoCharge: ptr(50.0)})
	require.NoError(t, svc.SelectItem(ctx, d, 0, "Cement"))
	require.NoError(t, d.UpdateLine(0, LinePatch{Qty: ptr(10.0)}))
	return d
}

func TestCommitRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := &fakeRenderer{}
	svc, _ := setupService(t, r)
	d := cementDraft(t, svc)
	assert.Equal(t, "SRS001", d.Number)

	res, err := svc.Commit(ctx, d)
	require.NoError(t, err)
	e := res.Estimate
	assert.InDelta(t, 4200, e.ItemsTotal, 1e-9)
	assert.InDelta(t, 200, e.HamaliTotal, 1e-9)
	assert.InDelta(t, 4450, e.GrandTotal, 1e-9)
	assert.Equal(t, filepath.Join(svc.BillsDir, "SRS001.pdf"), res.PDFPath)
	assert.Equal(t, "SRS002", res.Next.Number, "fresh draft gets the next number")
	assert.False(t, res.Next.Editing())

	got, err := svc.Estimates.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	require.Len(t, got.Lines, 1, "blank trailing line is not stored")
	l := got.Lines[0]
	assert.Equal(t, "Cement", l.ItemName)
	assert.Equal(t, "OPC 53", l.Description)
	assert.Equal(t, "Bag", l.Unit)
	assert.Equal(t, 10.0, l.Qty)
	assert.Equal(t, 420.0, l.Rate)
	assert.Equal(t, 4200.0, l.RowTotal)
	assert.Equal(t, 20.0, l.HamaliRate)
	assert.Equal(t, 200.0, l.HamaliTotal)

	c, err := svc.Customers.GetByName(ctx, "Ravi")
	require.NoError(t, err, "new customer is created")
	assert.Equal(t, c.ID, got.CustomerID)

	doc := r.docs[res.PDFPath]
	assert.Equal(t, "Ravi", doc.Customer.Name)
	assert.Equal(t, 4450.0, render.Build(doc).Total, "renderer agrees with stored grand total")
}

func TestCommitValidation(t *testing.T) {
	ctx := context.Background()
	r := &fakeRenderer{}
	svc, db := setupService(t, r)
	d, err := svc.NewDraft(ctx)
	require.NoError(t, err)

	_, err = svc.Commit(ctx, d)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, CodeCustomerNotSelected, ve.Code)

	d.SelectedCustomer = "Ghost"
	_, err = svc.Commit(ctx, d)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, CodeCustomerNotFound, ve.Code)

	d.Mode = CustomerNew
	d.NewCustomer.Name = "   "
	_, err = svc.Commit(ctx, d)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, CodeCustomerNameMissing, ve.Code)

	var n int64
	db.Model(&models.Estimate{}).Count(&n)
	assert.Zero(t, n, "nothing written")
	assert.Zero(t, r.calls)
}

func TestCommitDuplicateNumberKeepsStoredLines(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t, &fakeRenderer{})
	first := cementDraft(t, svc)
	res, err := svc.Commit(ctx, first)
	require.NoError(t, err)

	again := NewDraft("d9", "SRS001", svc.Now())
	again.SelectedCustomer = "Ravi"
	again.Lines = []Line{{ItemName: "Sand", Qty: 1, Rate: 5}}
	_, err = svc.Commit(ctx, again)
	require.ErrorIs(t, err, ErrDuplicateNumber)
	require.ErrorIs(t, err, store.ErrDuplicateKey)

	lines, err := svc.Estimates.Lines(ctx, res.Estimate.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Cement", lines[0].ItemName)
}

func TestCommitEditInPlace(t *testing.T) {
	ctx := context.Background()
	r := &fakeRenderer{}
	svc, db := setupService(t, r)
	res, err := svc.Commit(ctx, cementDraft(t, svc))
	require.NoError(t, err)

	d, err := svc.Edit(ctx, res.Estimate.ID)
	require.NoError(t, err)
	assert.Equal(t, "SRS001", d.Number)
	assert.Equal(t, "Ravi", d.SelectedCustomer)
	require.NoError(t, d.UpdateLine(0, LinePatch{Qty: ptr(5.0)}))
	d.UpdateHeader(HeaderPatch{Discount: ptr(100.0)})

	res2, err := svc.Commit(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, res.Estimate.ID, res2.Estimate.ID)
	assert.Equal(t, "SRS002", res2.Next.Number)

	var count int64
	db.Model(&models.Estimate{}).Count(&count)
	assert.Equal(t, int64(1), count)
	got, err := svc.Estimates.Get(ctx, res.Estimate.ID)
	require.NoError(t, err)
	assert.InDelta(t, 2100+100+50-100, got.GrandTotal, 1e-9)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, 5.0, got.Lines[0].Qty)
	assert.Equal(t, 2, r.calls, "document regenerated on edit")
}

func TestCommitRenderFailureKeepsHeader(t *testing.T) {
	ctx := context.Background()
	r := &fakeRenderer{fail: errors.New("disk full")}
	svc, _ := setupService(t, r)
	d := cementDraft(t, svc)

	_, err := svc.Commit(ctx, d)
	var re *render.Error
	require.ErrorAs(t, err, &re)
	assert.True(t, d.Editing(), "retry goes through edit-in-place")

	ok, err := svc.Estimates.Exists(ctx, "SRS001")
	require.NoError(t, err)
	assert.True(t, ok, "header stays committed")

	r.fail = nil
	_, err = svc.Commit(ctx, d)
	require.NoError(t, err)
}

func TestCommitLineWriteFailureSwitchesToEdit(t *testing.T) {
	ctx := context.Background()
	r := &fakeRenderer{}
	svc, db := setupService(t, r)
	d := cementDraft(t, svc)
	require.NoError(t, db.Migrator().DropTable(&models.EstimateLine{}))

	_, err := svc.Commit(ctx, d)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateNumber)
	assert.True(t, d.Editing(), "header was written, retry edits it")
	assert.Zero(t, r.calls)

	require.NoError(t, db.AutoMigrate(&models.EstimateLine{}))
	res, err := svc.Commit(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, d.EstimateID, res.Estimate.ID)

	var count int64
	db.Model(&models.Estimate{}).Count(&count)
	assert.Equal(t, int64(1), count)
	lines, err := svc.Estimates.Lines(ctx, res.Estimate.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Cement", lines[0].ItemName)
}

func TestCommitRejectsNegativeCharges(t *testing.T) {
	cases := []struct {
		name  string
		patch HeaderPatch
		field string
	}{
		{"discount", HeaderPatch{Discount: ptr(-100.0)}, "discount"},
		{"auto charge", HeaderPatch{AutoCharge: ptr(-50.0)}, "auto_charge"},
		{"hamali below zero", HeaderPatch{HamaliAdjustment: ptr(-300.0)}, "hamali_adjustment"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			r := &fakeRenderer{}
			svc, db := setupService(t, r)
			d := cementDraft(t, svc)
			d.UpdateHeader(tc.patch)

			_, err := svc.Commit(ctx, d)
			require.ErrorIs(t, err, ErrValidation)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
			assert.Equal(t, CodeNegativeCharge, ve.Code)

			var n int64
			db.Model(&models.Estimate{}).Count(&n)
			assert.Zero(t, n, "nothing written")
			db.Model(&models.Customer{}).Count(&n)
			assert.Zero(t, n, "new customer not created")
			assert.Zero(t, r.calls)
			assert.False(t, d.Editing())
		})
	}
}

func TestCommitPrintedTotalMatchesStored(t *testing.T) {
	cases := []struct {
		name  string
		patch HeaderPatch
	}{
		{"no charges", HeaderPatch{AutoCharge: ptr(0.0)}},
		{"discount", HeaderPatch{Discount: ptr(100.0)}},
		{"hamali reduced to zero", HeaderPatch{HamaliAdjustment: ptr(-200.0), Discount: ptr(0.5)}},
		{"hamali raised", HeaderPatch{HamaliAdjustment: ptr(35.5), AutoCharge: ptr(0.0)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			svc, _ := setupService(t, &fakeRenderer{})
			d := cementDraft(t, svc)
			d.UpdateHeader(tc.patch)

			res, err := svc.Commit(ctx, d)
			require.NoError(t, err)
			e, err := svc.Estimates.Get(ctx, res.Estimate.ID)
			require.NoError(t, err)
			c, err := svc.Customers.Get(ctx, e.CustomerID)
			require.NoError(t, err)
			assert.InDelta(t, e.GrandTotal, render.Build(svc.Document(e, c)).Total, 1e-9)
		})
	}
}

func TestRenderStoredEstimateWritesPDF(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t, render.NewPDF())
	res, err := svc.Commit(ctx, cementDraft(t, svc))
	require.NoError(t, err)
	require.NoError(t, os.Remove(res.PDFPath))

	path, err := svc.Render(ctx, res.Estimate.ID)
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestDeleteKeepsCustomer(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t, &fakeRenderer{})
	res, err := svc.Commit(ctx, cementDraft(t, svc))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, res.Estimate.ID))
	_, err = svc.Estimates.Get(ctx, res.Estimate.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	ok, err := svc.Customers.Exists(ctx, "Ravi")
	require.NoError(t, err)
	assert.True(t, ok)
}
