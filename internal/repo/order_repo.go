// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the order
// aggregate: orders, devices, faults, and intervention lines.
//
// Insert helpers assign UUID primary keys and UTC timestamps; the caller (the
// order aggregate writer) is responsible for sequencing them so that children
// are only inserted after their parent id is known, and for running them all
// on a single transaction handle. Delete helpers remove subtrees bottom-up so
// no child row ever outlives its parent.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/reparatec/go-repair-backend/internal/domain"
)

// InsertOrder persists a new order row. ID and CreatedAt are assigned here.
func InsertOrder(ctx context.Context, db *gorm.DB, o *domain.Order) error {
	o.ID = uuid.NewString()
	o.CreatedAt = time.Now().UTC()
	o.Devices = nil
	return db.WithContext(ctx).Create(o).Error
}

// InsertDevice persists a new device row under an existing order.
func InsertDevice(ctx context.Context, db *gorm.DB, d *domain.Device) error {
	d.ID = uuid.NewString()
	d.CreatedAt = time.Now().UTC()
	d.Faults = nil
	return db.WithContext(ctx).Create(d).Error
}

// InsertFault persists a new fault row under an existing device.
func InsertFault(ctx context.Context, db *gorm.DB, f *domain.Fault) error {
	f.ID = uuid.NewString()
	f.CreatedAt = time.Now().UTC()
	f.Lines = nil
	return db.WithContext(ctx).Create(f).Error
}

// InsertLine persists a new intervention line under an existing fault.
func InsertLine(ctx context.Context, db *gorm.DB, l *domain.InterventionLine) error {
	l.ID = uuid.NewString()
	l.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(l).Error
}

// GetOrderTree fetches an order with its full device → fault → line tree,
// children ordered by creation time for stable output. Returns ErrNotFound
// when the order does not exist.
func GetOrderTree(ctx context.Context, db *gorm.DB, id string) (*domain.Order, error) {
	var o domain.Order
	err := db.WithContext(ctx).
		Preload("Devices", func(db *gorm.DB) *gorm.DB { return db.Order("devices.created_at asc") }).
		Preload("Devices.Faults", func(db *gorm.DB) *gorm.DB { return db.Order("faults.created_at asc") }).
		Preload("Devices.Faults.Lines", func(db *gorm.DB) *gorm.DB { return db.Order("intervention_lines.created_at asc") }).
		Where("id = ?", id).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetOrderByNumber fetches an order (without children) by its unique number.
func GetOrderByNumber(ctx context.Context, db *gorm.DB, number string) (*domain.Order, error) {
	var o domain.Order
	if err := db.WithContext(ctx).Where("number = ?", number).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// CountOrders returns the total number of orders.
func CountOrders(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Order{}).Count(&total).Error
	return total, err
}

// ListOrdersPage returns a page of orders (without children), most recent
// first.
func ListOrdersPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Order, error) {
	var out []domain.Order
	err := db.WithContext(ctx).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListClientOrdersPage returns a page of one client's orders (without
// children), most recent first.
func ListClientOrdersPage(ctx context.Context, db *gorm.DB, clientID string, offset, limit int) ([]domain.Order, error) {
	var out []domain.Order
	err := db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdateDevice overwrites the mutable fields of a matched device in place,
// preserving its identity. Zero values are written intentionally (a cleared
// IMEI stays cleared).
func UpdateDevice(ctx context.Context, db *gorm.DB, d *domain.Device) error {
	return db.WithContext(ctx).
		Model(&domain.Device{}).
		Where("id = ?", d.ID).
		Select("brand_id", "model_id", "imei", "serial", "color", "capacity", "status").
		Updates(d).Error
}

// UpdateFault overwrites the mutable fields of a matched fault in place.
func UpdateFault(ctx context.Context, db *gorm.DB, f *domain.Fault) error {
	return db.WithContext(ctx).
		Model(&domain.Fault{}).
		Where("id = ?", f.ID).
		Select("fault_type_id", "name", "symptoms", "priority", "state", "due_at").
		Updates(f).Error
}

// UpdateOrderTotals persists the aggregated totals for an order.
func UpdateOrderTotals(ctx context.Context, db *gorm.DB, orderID string, subtotal, final decimal.Decimal) error {
	return db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{"subtotal": subtotal, "final_total": final}).Error
}

// UpdateDeviceTotal persists the rolled-up total for a device.
func UpdateDeviceTotal(ctx context.Context, db *gorm.DB, deviceID string, total decimal.Decimal) error {
	return db.WithContext(ctx).
		Model(&domain.Device{}).
		Where("id = ?", deviceID).
		Update("total", total).Error
}

// UpdateFaultTotal persists the rolled-up total for a fault.
func UpdateFaultTotal(ctx context.Context, db *gorm.DB, faultID string, total decimal.Decimal) error {
	return db.WithContext(ctx).
		Model(&domain.Fault{}).
		Where("id = ?", faultID).
		Update("total", total).Error
}

// UpdateOrderStatus sets an order's lifecycle status. Returns ErrNotFound
// when no row was affected.
func UpdateOrderStatus(ctx context.Context, db *gorm.DB, orderID string, status domain.OrderStatus) error {
	res := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", orderID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteLines removes all intervention lines under a fault.
func DeleteLines(ctx context.Context, db *gorm.DB, faultID string) error {
	return db.WithContext(ctx).
		Where("fault_id = ?", faultID).
		Delete(&domain.InterventionLine{}).Error
}

// DeleteFaultTree removes a fault and its lines, lines first.
func DeleteFaultTree(ctx context.Context, db *gorm.DB, faultID string) error {
	if err := DeleteLines(ctx, db, faultID); err != nil {
		return err
	}
	return db.WithContext(ctx).
		Where("id = ?", faultID).
		Delete(&domain.Fault{}).Error
}

// DeleteDeviceTree removes a device and its full fault/line subtree,
// bottom-up.
func DeleteDeviceTree(ctx context.Context, db *gorm.DB, deviceID string) error {
	var faultIDs []string
	if err := db.WithContext(ctx).
		Model(&domain.Fault{}).
		Where("device_id = ?", deviceID).
		Pluck("id", &faultIDs).Error; err != nil {
		return err
	}
	for _, fid := range faultIDs {
		if err := DeleteFaultTree(ctx, db, fid); err != nil {
			return err
		}
	}
	return db.WithContext(ctx).
		Where("id = ?", deviceID).
		Delete(&domain.Device{}).Error
}

// DeleteOrderTree hard-deletes an order and every row beneath it, including
// its audit trail. Administrative operation; not part of the normal flow.
func DeleteOrderTree(ctx context.Context, db *gorm.DB, orderID string) error {
	var deviceIDs []string
	if err := db.WithContext(ctx).
		Model(&domain.Device{}).
		Where("order_id = ?", orderID).
		Pluck("id", &deviceIDs).Error; err != nil {
		return err
	}
	for _, did := range deviceIDs {
		if err := DeleteDeviceTree(ctx, db, did); err != nil {
			return err
		}
	}
	if err := db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&domain.AuditEntry{}).Error; err != nil {
		return err
	}
	res := db.WithContext(ctx).Unscoped().Where("id = ?", orderID).Delete(&domain.Order{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
