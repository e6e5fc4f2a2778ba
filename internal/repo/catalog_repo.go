// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides lookup and maintenance functions for the
// catalog reference tables: brands, device models, fault types, and the
// intervention price list.
//
// Name lookups are exact (case-sensitive); normalization of human input is
// the responsibility of the resolver in the services layer.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/reparatec/go-repair-backend/internal/domain"
)

// FindBrandByName fetches a brand by exact name, or ErrNotFound.
func FindBrandByName(ctx context.Context, db *gorm.DB, name string) (*domain.Brand, error) {
	var b domain.Brand
	if err := db.WithContext(ctx).Where("name = ?", name).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// FindModelByName fetches a device model by brand id and exact name, or
// ErrNotFound.
func FindModelByName(ctx context.Context, db *gorm.DB, brandID, name string) (*domain.DeviceModel, error) {
	var m domain.DeviceModel
	err := db.WithContext(ctx).
		Where("brand_id = ? AND name = ?", brandID, name).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindFaultTypeByName fetches a fault-catalog entry by exact name, or
// ErrNotFound.
func FindFaultTypeByName(ctx context.Context, db *gorm.DB, name string) (*domain.FaultType, error) {
	var f domain.FaultType
	if err := db.WithContext(ctx).Where("name = ?", name).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// FindIntervention fetches the price-list row matching (model, fault type,
// name), or ErrNotFound.
func FindIntervention(ctx context.Context, db *gorm.DB, modelID, faultTypeID, name string) (*domain.Intervention, error) {
	var iv domain.Intervention
	err := db.WithContext(ctx).
		Where("model_id = ? AND fault_type_id = ? AND name = ?", modelID, faultTypeID, name).
		First(&iv).Error
	if err != nil {
		return nil, err
	}
	return &iv, nil
}

// CreateIntervention inserts a new price-list row. Called by the order writer
// on its transaction handle when an order references an intervention that
// does not exist yet; the row is only durable if that transaction commits.
func CreateIntervention(ctx context.Context, db *gorm.DB, modelID, faultTypeID, name, kind string, price decimal.Decimal) (*domain.Intervention, error) {
	iv := &domain.Intervention{
		ID:          uuid.NewString(),
		ModelID:     modelID,
		FaultTypeID: faultTypeID,
		Name:        name,
		Kind:        kind,
		Price:       price,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(iv).Error; err != nil {
		return nil, err
	}
	return iv, nil
}

// ListBrands returns all brands ordered by name.
func ListBrands(ctx context.Context, db *gorm.DB) ([]domain.Brand, error) {
	var out []domain.Brand
	err := db.WithContext(ctx).Order("name asc").Find(&out).Error
	return out, err
}

// ListModels returns all models for a brand ordered by name.
func ListModels(ctx context.Context, db *gorm.DB, brandID string) ([]domain.DeviceModel, error) {
	var out []domain.DeviceModel
	err := db.WithContext(ctx).
		Where("brand_id = ?", brandID).
		Order("name asc").
		Find(&out).Error
	return out, err
}

// ListFaultTypes returns all fault-catalog entries ordered by name.
func ListFaultTypes(ctx context.Context, db *gorm.DB) ([]domain.FaultType, error) {
	var out []domain.FaultType
	err := db.WithContext(ctx).Order("name asc").Find(&out).Error
	return out, err
}

// ListInterventions returns the price list for a (model, fault type) pair.
func ListInterventions(ctx context.Context, db *gorm.DB, modelID, faultTypeID string) ([]domain.Intervention, error) {
	var out []domain.Intervention
	err := db.WithContext(ctx).
		Where("model_id = ? AND fault_type_id = ?", modelID, faultTypeID).
		Order("name asc").
		Find(&out).Error
	return out, err
}

// SeedCatalog inserts a minimal starter catalog when the brand table is
// empty, so a fresh install can take orders immediately. Existing data is
// never touched.
func SeedCatalog(ctx context.Context, db *gorm.DB) error {
	var n int64
	if err := db.WithContext(ctx).Model(&domain.Brand{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	seed := map[string][]string{
		"Apple":   {"iPhone 13", "iPhone 14", "iPhone 15"},
		"Samsung": {"Galaxy S23", "Galaxy S24"},
		"Xiaomi":  {"Redmi Note 12"},
	}
	faults := []string{"ScreenCrack", "BatteryDrain", "WaterDamage", "ChargingPort", "NoPower"}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for brand, models := range seed {
			b := &domain.Brand{ID: uuid.NewString(), Name: brand, CreatedAt: time.Now().UTC()}
			if err := tx.Create(b).Error; err != nil {
				return err
			}
			for _, model := range models {
				m := &domain.DeviceModel{ID: uuid.NewString(), BrandID: b.ID, Name: model, CreatedAt: time.Now().UTC()}
				if err := tx.Create(m).Error; err != nil {
					return err
				}
			}
		}
		for _, name := range faults {
			f := &domain.FaultType{ID: uuid.NewString(), Name: name, CreatedAt: time.Now().UTC()}
			if err := tx.Create(f).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// IsUniqueViolation reports whether err is a unique-constraint failure.
// glebarez/sqlite often reports these as plain-text errors rather than
// gorm.ErrDuplicatedKey.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique")
}
