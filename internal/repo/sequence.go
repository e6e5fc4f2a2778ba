// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file implements the per-year order-number sequence.
//
// The legacy scheme derived the next number from count(orders created this
// year) + 1, which races under concurrent creation: two writers can read the
// same count before either commits. Here the counter lives in its own row
// and is bumped with an atomic in-place UPDATE on the caller's transaction,
// so concurrent creations serialize on the row and the unique index on
// orders.number acts as the backstop.
package repo

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/reparatec/go-repair-backend/internal/domain"
)

// NextOrderNumber reserves and formats the next order number for the year of
// now, e.g. "R-2026-0042". Must be called on the order transaction handle so
// the reserved number is released on rollback.
func NextOrderNumber(ctx context.Context, db *gorm.DB, now time.Time) (string, error) {
	year := now.UTC().Year()

	// Ensure the year row exists; ignore the insert when it already does.
	seed := domain.OrderSequence{Year: year, Counter: 0}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "year"}}, DoNothing: true}).
		Create(&seed).Error
	if err != nil {
		return "", err
	}

	// Atomic increment; the row lock serializes concurrent writers.
	err = db.WithContext(ctx).
		Model(&domain.OrderSequence{}).
		Where("year = ?", year).
		UpdateColumn("counter", gorm.Expr("counter + 1")).Error
	if err != nil {
		return "", err
	}

	var seq domain.OrderSequence
	if err := db.WithContext(ctx).Where("year = ?", year).First(&seq).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("R-%d-%04d", year, seq.Counter), nil
}
