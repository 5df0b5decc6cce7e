package store

import (
	"context"
	"time"

	"github.com/diewo77/go-estimates/internal/models"
)

// Period aggregates estimates over a date range.
type Period struct {
	Count int64   `json:"count"`
	Total float64 `json:"total"`
}

// Summary feeds the dashboard.
type Summary struct {
	All   Period `json:"all"`
	Today Period `json:"today"`
}

// DayTotal is one row of the day-wise breakdown.
type DayTotal struct {
	Date  time.Time `json:"date"`
	Count int64     `json:"count"`
	Total float64   `json:"total"`
}

// MonthlyReport covers one calendar month.
type MonthlyReport struct {
	Year  int        `json:"year"`
	Month int        `json:"month"`
	Period
	Days []DayTotal `json:"days"`
}

func (s *EstimateStore) period(ctx context.Context, from, to *time.Time) (Period, error) {
	q := s.DB.WithContext(ctx).Model(&models.Estimate{}).
		Select("COUNT(*) AS count, COALESCE(SUM(grand_total), 0) AS total")
	if from != nil {
		q = q.Where("date >= ?", *from)
	}
	if to != nil {
		q = q.Where("date < ?", *to)
	}
	var p Period
	err := q.Scan(&p).Error
	return p, translate(err)
}

// Summary returns totals over every estimate and over the estimates dated today.
func (s *EstimateStore) Summary(ctx context.Context, now time.Time) (Summary, error) {
	var out Summary
	var err error
	if out.All, err = s.period(ctx, nil, nil); err != nil {
		return out, err
	}
	today := Day(now)
	tomorrow := today.AddDate(0, 0, 1)
	out.Today, err = s.period(ctx, &today, &tomorrow)
	return out, err
}

// Monthly returns count and sum for the month plus a per-day breakdown ordered by date.
func (s *EstimateStore) Monthly(ctx context.Context, year int, month time.Month) (MonthlyReport, error) {
	out := MonthlyReport{Year: year, Month: int(month), Days: []DayTotal{}}
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	p, err := s.period(ctx, &from, &to)
	if err != nil {
		return out, err
	}
	out.Period = p
	err = s.DB.WithContext(ctx).Model(&models.Estimate{}).
		Select("date, COUNT(*) AS count, COALESCE(SUM(grand_total), 0) AS total").
		Where("date >= ? AND date < ?", from, to).
		Group("date").Order("date ASC").
		Scan(&out.Days).Error
	return out, translate(err)
}
