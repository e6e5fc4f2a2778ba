package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/reparatec/go-repair-backend/internal/domain"
	"github.com/reparatec/go-repair-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ClientService exposes read access to the client directory. Clients are
// written exclusively through the order document flow, so there is no create
// or update method here.
type ClientService struct {
	DB *gorm.DB
}

// GetClient returns one client by id.
func (s *ClientService) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	tr := otel.Tracer("services/ClientService")
	ctx, span := tr.Start(ctx, "GetClient",
		trace.WithAttributes(attribute.String("client.id", id)),
	)
	defer span.End()

	c, err := repo.GetClient(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// FindByNationalID resolves a client by natural key.
func (s *ClientService) FindByNationalID(ctx context.Context, nationalID string) (*domain.Client, error) {
	tr := otel.Tracer("services/ClientService")
	ctx, span := tr.Start(ctx, "FindByNationalID")
	defer span.End()

	c, err := repo.FindClientByNationalID(ctx, s.DB, nationalID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListClients returns one page of clients ordered by name, plus the total.
func (s *ClientService) ListClients(ctx context.Context, page, perPage int) ([]domain.Client, int64, error) {
	tr := otel.Tracer("services/ClientService")
	ctx, span := tr.Start(ctx, "ListClients",
		trace.WithAttributes(
			attribute.Int("page", page),
			attribute.Int("per_page", perPage),
		),
	)
	defer span.End()

	total, err := repo.CountClients(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * perPage
	clients, err := repo.ListClientsPage(ctx, s.DB, offset, perPage)
	if err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

// ListOrders returns one page of a client's orders, newest first, plus the
// total. The client must exist; an unknown id yields ErrClientNotFound rather
// than an empty page.
func (s *ClientService) ListOrders(ctx context.Context, clientID string, page, perPage int) ([]domain.Order, int64, error) {
	tr := otel.Tracer("services/ClientService")
	ctx, span := tr.Start(ctx, "ListOrders",
		trace.WithAttributes(
			attribute.String("client.id", clientID),
			attribute.Int("page", page),
		),
	)
	defer span.End()

	if _, err := repo.GetClient(ctx, s.DB, clientID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, 0, ErrClientNotFound
		}
		return nil, 0, err
	}

	total, _, err := repo.ClientOrdersStats(ctx, s.DB, clientID)
	if err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * perPage
	orders, err := repo.ListClientOrdersPage(ctx, s.DB, clientID, offset, perPage)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}
