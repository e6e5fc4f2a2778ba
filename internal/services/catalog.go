// Package services – catalog resolution
//
// CatalogResolver turns human-entered brand/model/fault/intervention names
// into canonical catalog identifiers. The interface is the seam between the
// order aggregate writer and the catalog store: production uses the
// GORM-backed StoreResolver on the writer's transaction handle, tests use
// MemoryResolver.
//
// Every method takes the caller's *gorm.DB explicitly. The writer passes its
// transaction, so resolution reads (and the auto-create intervention write)
// share the order transaction and roll back with it.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/reparatec/go-repair-backend/internal/repo"
)

// CatalogResolver resolves free-text catalog references. Implementations
// return errors wrapping ErrCatalogNotFound for misses; only
// ResolveOrCreateIntervention may mutate the catalog.
type CatalogResolver interface {
	// ResolveBrandModel returns the ids for a (brand, model) pair.
	ResolveBrandModel(ctx context.Context, db *gorm.DB, brand, model string) (brandID, modelID string, err error)

	// ResolveFault returns the id of a fault-catalog entry.
	ResolveFault(ctx context.Context, db *gorm.DB, name string) (faultTypeID string, err error)

	// ResolveOrCreateIntervention returns the price-list row matching
	// (model, fault type, name), creating it with the submitted price and
	// kind when absent. The new row is durable only if db's transaction
	// commits.
	ResolveOrCreateIntervention(ctx context.Context, db *gorm.DB, modelID, faultTypeID, name, kind string, price decimal.Decimal) (interventionID string, err error)
}

// StoreResolver resolves against the relational catalog tables.
//
// Auto-created intervention names are normalized (whitespace collapsed,
// title-cased) before both lookup and insert, so repeated submissions of
// "screen  swap" and "Screen Swap" converge on one catalog row.
type StoreResolver struct{}

// interventionCaser title-cases normalized intervention names.
var interventionCaser = cases.Title(language.English)

// ResolveBrandModel implements CatalogResolver.
func (StoreResolver) ResolveBrandModel(ctx context.Context, db *gorm.DB, brand, model string) (string, string, error) {
	b, err := repo.FindBrandByName(ctx, db, strings.TrimSpace(brand))
	if errors.Is(err, repo.ErrNotFound) {
		return "", "", fmt.Errorf("%w: brand %q", ErrCatalogNotFound, brand)
	}
	if err != nil {
		return "", "", err
	}
	m, err := repo.FindModelByName(ctx, db, b.ID, strings.TrimSpace(model))
	if errors.Is(err, repo.ErrNotFound) {
		return "", "", fmt.Errorf("%w: model %q for brand %q", ErrCatalogNotFound, model, brand)
	}
	if err != nil {
		return "", "", err
	}
	return b.ID, m.ID, nil
}

// ResolveFault implements CatalogResolver.
func (StoreResolver) ResolveFault(ctx context.Context, db *gorm.DB, name string) (string, error) {
	f, err := repo.FindFaultTypeByName(ctx, db, strings.TrimSpace(name))
	if errors.Is(err, repo.ErrNotFound) {
		return "", fmt.Errorf("%w: fault %q", ErrCatalogNotFound, name)
	}
	if err != nil {
		return "", err
	}
	return f.ID, nil
}

// ResolveOrCreateIntervention implements CatalogResolver.
func (StoreResolver) ResolveOrCreateIntervention(ctx context.Context, db *gorm.DB, modelID, faultTypeID, name, kind string, price decimal.Decimal) (string, error) {
	normalized := normalizeInterventionName(name)
	iv, err := repo.FindIntervention(ctx, db, modelID, faultTypeID, normalized)
	if err == nil {
		return iv.ID, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return "", err
	}
	created, err := repo.CreateIntervention(ctx, db, modelID, faultTypeID, normalized, kind, price)
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

// normalizeInterventionName collapses internal whitespace and title-cases the
// result.
func normalizeInterventionName(name string) string {
	parts := strings.Fields(name)
	return interventionCaser.String(strings.Join(parts, " "))
}

// MemoryResolver is an in-memory CatalogResolver for tests and offline runs.
// The db handle is ignored. All maps are keyed by the human-entered names.
type MemoryResolver struct {
	// Brands maps brand name to id.
	Brands map[string]string
	// Models maps "brand/model" to id.
	Models map[string]string
	// Faults maps fault name to id.
	Faults map[string]string
	// Interventions maps "modelID/faultTypeID/name" (normalized name) to id.
	Interventions map[string]string

	nextID int
}

// ResolveBrandModel implements CatalogResolver.
func (r *MemoryResolver) ResolveBrandModel(_ context.Context, _ *gorm.DB, brand, model string) (string, string, error) {
	bid, ok := r.Brands[strings.TrimSpace(brand)]
	if !ok {
		return "", "", fmt.Errorf("%w: brand %q", ErrCatalogNotFound, brand)
	}
	mid, ok := r.Models[strings.TrimSpace(brand)+"/"+strings.TrimSpace(model)]
	if !ok {
		return "", "", fmt.Errorf("%w: model %q for brand %q", ErrCatalogNotFound, model, brand)
	}
	return bid, mid, nil
}

// ResolveFault implements CatalogResolver.
func (r *MemoryResolver) ResolveFault(_ context.Context, _ *gorm.DB, name string) (string, error) {
	id, ok := r.Faults[strings.TrimSpace(name)]
	if !ok {
		return "", fmt.Errorf("%w: fault %q", ErrCatalogNotFound, name)
	}
	return id, nil
}

// ResolveOrCreateIntervention implements CatalogResolver.
func (r *MemoryResolver) ResolveOrCreateIntervention(_ context.Context, _ *gorm.DB, modelID, faultTypeID, name, _ string, _ decimal.Decimal) (string, error) {
	if r.Interventions == nil {
		r.Interventions = make(map[string]string)
	}
	key := modelID + "/" + faultTypeID + "/" + normalizeInterventionName(name)
	if id, ok := r.Interventions[key]; ok {
		return id, nil
	}
	r.nextID++
	id := fmt.Sprintf("iv-%d", r.nextID)
	r.Interventions[key] = id
	return id, nil
}
