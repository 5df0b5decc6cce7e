// Package store contains the persistence gateways for customers, catalog
// items and estimates. Every call runs on its own gorm session and every
// write is committed before the call returns.
package store

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound means the lookup matched no row. It is not a fault.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateKey is returned when a unique column (name, estimate_no) collides.
	ErrDuplicateKey = errors.New("duplicate key")
)

// translate maps driver and gorm errors onto the package error kinds.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if isDuplicate(err) {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	return err
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint")
}

func likePattern(q string) string {
	return "%" + strings.TrimSpace(q) + "%"
}
