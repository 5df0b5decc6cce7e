package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/diewo77/go-estimates/internal/models"
	"gorm.io/gorm"
)

// NumberPrefix starts every estimate number.
const NumberPrefix = "SRS"

// FormatNumber renders counter n as an estimate number, e.g. 7 -> SRS007.
func FormatNumber(n int) string {
	return fmt.Sprintf("%s%03d", NumberPrefix, n)
}

// NextAfter returns the number following last. An empty last starts the sequence.
func NextAfter(last string) (string, error) {
	if last == "" {
		return FormatNumber(1), nil
	}
	n, err := strconv.Atoi(strings.TrimPrefix(last, NumberPrefix))
	if err != nil {
		return "", fmt.Errorf("store: malformed estimate number %q: %w", last, err)
	}
	return FormatNumber(n + 1), nil
}

// NextNumber derives the next estimate number from the most recently inserted
// row. Read then increment, without locking: two concurrent writers can get
// the same number and the second insert is rejected by the unique index.
func (s *EstimateStore) NextNumber(ctx context.Context) (string, error) {
	var last models.Estimate
	err := s.DB.WithContext(ctx).Select("estimate_no").Order("id DESC").Take(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NextAfter("")
	}
	if err != nil {
		return "", err
	}
	return NextAfter(last.EstimateNo)
}
