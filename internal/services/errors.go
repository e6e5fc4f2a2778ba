// Package services defines the business logic for repair orders, clients,
// and catalog resolution. This file centralizes the service-level error
// taxonomy so that callers can classify failures with errors.Is.
//
// Four kinds of failure leave this layer:
//   - ErrValidation: the submitted document is missing required data.
//   - ErrOrderNotFound / ErrCatalogNotFound: a referenced order or catalog
//     entry does not exist; catalog misses abort the whole operation.
//   - ErrConflict: an ambiguous reconciliation match or an illegal status
//     transition.
//   - anything else: a storage failure, propagated as-is after rollback.
//
// Translation into HTTP status codes happens at the handler layer; services
// never know about transport concerns.
package services

import "errors"

var (
	// ErrValidation is wrapped by all input-shape failures (missing client
	// national ID, no devices, bad quantity, discount exceeding subtotal).
	ErrValidation = errors.New("invalid order document")

	// ErrOrderNotFound indicates the referenced order does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrClientNotFound indicates the referenced client does not exist.
	ErrClientNotFound = errors.New("client not found")

	// ErrCatalogNotFound is wrapped when a brand, model, or fault name cannot
	// be resolved against the catalog. Non-recoverable: the operation aborts.
	ErrCatalogNotFound = errors.New("catalog entry not found")

	// ErrConflict is wrapped for ambiguous reconciliation matches, such as
	// two incoming faults sharing a name under one device.
	ErrConflict = errors.New("conflicting order document")

	// ErrInvalidTransition indicates a disallowed order status change.
	ErrInvalidTransition = errors.New("invalid status transition")
)
