package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/reparatec/go-repair-backend/internal/domain"
	"github.com/reparatec/go-repair-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CatalogService exposes read access to the device and fault catalogs and the
// intervention price list. Catalog writes happen either through seeding or as
// a side effect of the order writer auto-creating interventions.
type CatalogService struct {
	DB *gorm.DB
}

// ListBrands returns every brand, ordered by name.
func (s *CatalogService) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "ListBrands")
	defer span.End()

	return repo.ListBrands(ctx, s.DB)
}

// ListModels returns a brand's models, ordered by name.
func (s *CatalogService) ListModels(ctx context.Context, brandID string) ([]domain.DeviceModel, error) {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "ListModels",
		trace.WithAttributes(attribute.String("brand.id", brandID)),
	)
	defer span.End()

	return repo.ListModels(ctx, s.DB, brandID)
}

// ListFaultTypes returns the fault catalog, ordered by name.
func (s *CatalogService) ListFaultTypes(ctx context.Context) ([]domain.FaultType, error) {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "ListFaultTypes")
	defer span.End()

	return repo.ListFaultTypes(ctx, s.DB)
}

// ListInterventions returns the price list for one (model, fault type) pair.
func (s *CatalogService) ListInterventions(ctx context.Context, modelID, faultTypeID string) ([]domain.Intervention, error) {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "ListInterventions",
		trace.WithAttributes(
			attribute.String("model.id", modelID),
			attribute.String("fault_type.id", faultTypeID),
		),
	)
	defer span.End()

	return repo.ListInterventions(ctx, s.DB, modelID, faultTypeID)
}
