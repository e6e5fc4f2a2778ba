// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Client
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reparatec/go-repair-backend/internal/domain"
)

// UpsertClient creates a client keyed by national ID or, when one already
// exists, overwrites its mutable contact fields with the incoming values.
// The national ID acts as a natural key and is never changed by the upsert.
//
// The handle may be a transaction; the order aggregate writer always calls
// this inside one.
func UpsertClient(ctx context.Context, db *gorm.DB, in domain.Client) (*domain.Client, error) {
	var existing domain.Client
	err := db.WithContext(ctx).
		Where("national_id = ?", in.NationalID).
		First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c := &domain.Client{
			ID:         uuid.NewString(),
			NationalID: in.NationalID,
			Name:       in.Name,
			Phone:      in.Phone,
			Email:      in.Email,
			Address:    in.Address,
			CreatedAt:  time.Now().UTC(),
		}
		if err := db.WithContext(ctx).Create(c).Error; err != nil {
			return nil, err
		}
		return c, nil
	case err != nil:
		return nil, err
	}

	updates := map[string]any{
		"name":    in.Name,
		"phone":   in.Phone,
		"email":   in.Email,
		"address": in.Address,
	}
	if err := db.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

// UpdateClientContact overwrites the mutable contact fields of an existing
// client. The national ID is deliberately not part of the update set.
func UpdateClientContact(ctx context.Context, db *gorm.DB, id string, in domain.Client) error {
	updates := map[string]any{
		"name":    in.Name,
		"phone":   in.Phone,
		"email":   in.Email,
		"address": in.Address,
	}
	res := db.WithContext(ctx).Model(&domain.Client{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetClient fetches a single client by ID, or ErrNotFound if missing.
func GetClient(ctx context.Context, db *gorm.DB, id string) (*domain.Client, error) {
	var c domain.Client
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// FindClientByNationalID fetches a client by its natural key, or ErrNotFound.
func FindClientByNationalID(ctx context.Context, db *gorm.DB, nationalID string) (*domain.Client, error) {
	var c domain.Client
	if err := db.WithContext(ctx).Where("national_id = ?", nationalID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// CountClients returns the total number of clients.
func CountClients(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Client{}).Count(&total).Error
	return total, err
}

// ListClientsPage returns a paginated slice of clients ordered by name.
func ListClientsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Client, error) {
	var out []domain.Client
	err := db.WithContext(ctx).
		Order("name asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
