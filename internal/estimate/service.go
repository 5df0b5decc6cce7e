package estimate

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/diewo77/go-estimates/internal/metrics"
	"github.com/diewo77/go-estimates/internal/models"
	"github.com/diewo77/go-estimates/internal/render"
	"github.com/diewo77/go-estimates/internal/store"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Renderer writes a document to a file.
type Renderer interface {
	RenderFile(path string, doc render.Document) error
}

// Options configures a Service. Zero values are replaced by defaults.
type Options struct {
	BillsDir string
	Company  render.Company
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

// Service runs the estimate workflow over the gateways and the renderer.
type Service struct {
	Customers *store.CustomerStore
	Items     *store.ItemStore
	Estimates *store.EstimateStore
	Renderer  Renderer
	BillsDir  string
	Company   render.Company
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Now       func() time.Time
}

func NewService(db *gorm.DB, r Renderer, opts Options) *Service {
	if opts.BillsDir == "" {
		opts.BillsDir = "bills"
	}
	if opts.Company.Name == "" {
		opts.Company = render.DefaultCompany()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Service{
		Customers: store.NewCustomerStore(db),
		Items:     store.NewItemStore(db),
		Estimates: store.NewEstimateStore(db),
		Renderer:  r,
		BillsDir:  opts.BillsDir,
		Company:   opts.Company,
		Logger:    opts.Logger,
		Metrics:   opts.Metrics,
		Now:       time.Now,
	}
}

// Result is what Commit returns on success.
type Result struct {
	Estimate *models.Estimate `json:"estimate"`
	PDFPath  string           `json:"pdf_path"`
	Next     *Draft           `json:"next"`
}

// PDFPath is where the document of estimate number no is written.
func (s *Service) PDFPath(no string) string {
	return filepath.Join(s.BillsDir, no+".pdf")
}

// NewDraft opens a draft carrying the next free estimate number and today's date.
func (s *Service) NewDraft(ctx context.Context) (*Draft, error) {
	no, err := s.Estimates.NextNumber(ctx)
	if err != nil {
		return nil, err
	}
	return NewDraft(uuid.NewString(), no, store.Day(s.Now())), nil
}

// Edit loads a stored estimate into an edit-in-place draft.
func (s *Service) Edit(ctx context.Context, estimateID uint) (*Draft, error) {
	e, err := s.Estimates.Get(ctx, estimateID)
	if err != nil {
		return nil, err
	}
	name := ""
	if c, err := s.Customers.Get(ctx, e.CustomerID); err == nil {
		name = c.Name
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return Hydrate(uuid.NewString(), e, name), nil
}

// SelectItem copies the catalog item named itemName into line pos.
func (s *Service) SelectItem(ctx context.Context, d *Draft, pos int, itemName string) error {
	it, err := s.Items.GetByName(ctx, itemName)
	if errors.Is(err, store.ErrNotFound) {
		return invalid("item_name", CodeItemNotFound)
	}
	if err != nil {
		return err
	}
	return d.SelectItem(pos, *it)
}

// customerName validates the selection for the draft mode without writing anything.
func (s *Service) customerName(ctx context.Context, d *Draft) (string, error) {
	if d.Mode == CustomerNew {
		name := strings.TrimSpace(d.NewCustomer.Name)
		if name == "" {
			return "", invalid("new_customer.name", CodeCustomerNameMissing)
		}
		return name, nil
	}
	name := strings.TrimSpace(d.SelectedCustomer)
	if name == "" {
		return "", invalid("selected_customer", CodeCustomerNotSelected)
	}
	ok, err := s.Customers.Exists(ctx, name)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", invalid("selected_customer", CodeCustomerNotFound)
	}
	return name, nil
}

// Commit saves the draft. In order: validate the customer and charges, reject a taken
// number on create, add a new customer, write the header, replace the lines,
// render the document. Header and lines are separate commits and nothing is
// rolled back if a later step fails. Once the header is written the draft
// switches to edit-in-place so saving again completes the same estimate.
func (s *Service) Commit(ctx context.Context, d *Draft) (*Result, error) {
	name, err := s.customerName(ctx, d)
	if err != nil {
		return nil, err
	}
	if err := d.CheckCharges(); err != nil {
		return nil, err
	}
	editing := d.Editing()
	if !editing {
		taken, err := s.Estimates.Exists(ctx, d.Number)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrDuplicateNumber
		}
	}
	if d.Mode == CustomerNew {
		exists, err := s.Customers.Exists(ctx, name)
		if err != nil {
			return nil, err
		}
		if !exists {
			nc := &models.Customer{Name: name, Phone: d.NewCustomer.Phone, Address: d.NewCustomer.Address}
			if err := s.Customers.Create(ctx, nc); err != nil {
				return nil, err
			}
		}
	}
	customer, err := s.Customers.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	charges := d.Totals()
	header := &models.Estimate{
		ID:          d.EstimateID,
		EstimateNo:  d.Number,
		Date:        d.Date,
		CustomerID:  customer.ID,
		ItemsTotal:  charges.ItemsTotal,
		HamaliTotal: charges.HamaliTotal,
		AutoCharge:  charges.AutoCharge,
		Discount:    charges.Discount,
		GrandTotal:  charges.GrandTotal,
		PDFPath:     s.PDFPath(d.Number),
		Status:      models.StatusPending,
	}
	if editing {
		err = s.Estimates.UpdateHeader(ctx, header)
	} else {
		err = s.Estimates.CreateHeader(ctx, header)
		if errors.Is(err, store.ErrDuplicateKey) {
			err = ErrDuplicateNumber
		}
	}
	if err != nil {
		return nil, err
	}
	d.EstimateID = header.ID

	header.Lines = storedLines(d.CompleteLines())
	if err := s.Estimates.ReplaceLines(ctx, header.ID, header.Lines); err != nil {
		return nil, err
	}

	if err := s.render(header, customer); err != nil {
		return nil, err
	}

	mode := "create"
	if editing {
		mode = "edit"
	}
	s.Metrics.EstimateCommitted(mode)
	s.Logger.Info("estimate committed",
		"estimate_no", header.EstimateNo, "mode", mode,
		"grand_total", header.GrandTotal, "pdf_path", header.PDFPath)

	next, err := s.NewDraft(ctx)
	if err != nil {
		return nil, err
	}
	return &Result{Estimate: header, PDFPath: header.PDFPath, Next: next}, nil
}

// Render regenerates the document of a stored estimate and returns its path.
func (s *Service) Render(ctx context.Context, estimateID uint) (string, error) {
	e, err := s.Estimates.Get(ctx, estimateID)
	if err != nil {
		return "", err
	}
	c, err := s.Customers.Get(ctx, e.CustomerID)
	if errors.Is(err, store.ErrNotFound) {
		c = &models.Customer{}
	} else if err != nil {
		return "", err
	}
	path := s.PDFPath(e.EstimateNo)
	if e.PDFPath != path {
		if err := s.Estimates.SetPDFPath(ctx, e.ID, path); err != nil {
			return "", err
		}
		e.PDFPath = path
	}
	return path, s.render(e, c)
}

// Document converts a stored estimate into its printable form.
func (s *Service) Document(e *models.Estimate, c *models.Customer) render.Document {
	doc := render.Document{
		Kind:     render.KindEstimate,
		Company:  s.Company,
		Number:   e.EstimateNo,
		Date:     e.Date,
		Customer: render.Party{Name: c.Name, Phone: c.Phone, Address: c.Address},
	}
	doc.Charges.ItemsTotal = e.ItemsTotal
	doc.Charges.HamaliTotal = e.HamaliTotal
	doc.Charges.AutoCharge = e.AutoCharge
	doc.Charges.Discount = e.Discount
	doc.Charges.GrandTotal = e.GrandTotal
	for _, l := range e.Lines {
		doc.Lines = append(doc.Lines, render.Line{
			Name:        l.ItemName,
			Description: l.Description,
			Unit:        l.Unit,
			Qty:         l.Qty,
			Rate:        l.Rate,
		})
	}
	return doc
}

func (s *Service) render(e *models.Estimate, c *models.Customer) error {
	start := time.Now()
	err := s.Renderer.RenderFile(e.PDFPath, s.Document(e, c))
	s.Metrics.ObserveRender(time.Since(start), err)
	if err != nil {
		s.Logger.Error("render failed", "estimate_no", e.EstimateNo, "path", e.PDFPath, "error", err)
		var re *render.Error
		if !errors.As(err, &re) {
			err = &render.Error{Path: e.PDFPath, Err: err}
		}
		return err
	}
	return nil
}

// Delete removes a stored estimate and its lines. The rendered file is kept.
func (s *Service) Delete(ctx context.Context, estimateID uint) error {
	return s.Estimates.Delete(ctx, estimateID)
}

func storedLines(lines []Line) []models.EstimateLine {
	out := make([]models.EstimateLine, len(lines))
	for i, l := range lines {
		out[i] = models.EstimateLine{
			ItemName:    strings.TrimSpace(l.ItemName),
			Description: l.Description,
			Qty:         l.Qty,
			Unit:        l.Unit,
			Rate:        l.Rate,
			RowTotal:    l.Qty * l.Rate,
			HamaliRate:  l.HamaliRate,
			HamaliTotal: l.Qty * l.HamaliRate,
		}
	}
	return out
}
