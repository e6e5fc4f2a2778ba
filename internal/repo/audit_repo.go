// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the append-only audit trail store.
//
// Entries are immutable: there are deliberately no update or delete helpers
// here (full-order deletion removes the trail as part of the administrative
// cascade in order_repo.go). Append must run on the same transaction handle
// as the change it describes.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reparatec/go-repair-backend/internal/domain"
)

// AppendAudit inserts one immutable history entry. ID and CreatedAt are
// assigned here.
func AppendAudit(ctx context.Context, db *gorm.DB, e *domain.AuditEntry) error {
	e.ID = uuid.NewString()
	e.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(e).Error
}

// CountAudit returns the number of history entries for an order.
func CountAudit(ctx context.Context, db *gorm.DB, orderID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.AuditEntry{}).
		Where("order_id = ?", orderID).
		Count(&total).Error
	return total, err
}

// ListAuditPage returns a page of history entries for an order, oldest first.
func ListAuditPage(ctx context.Context, db *gorm.DB, orderID string, offset, limit int) ([]domain.AuditEntry, error) {
	var out []domain.AuditEntry
	err := db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
