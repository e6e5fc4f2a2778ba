// Package services – order documents
//
// The nested record structure exchanged with callers: a client block plus a
// list of device subtrees, each carrying faults, each carrying intervention
// lines. The same shape serves both the create and the update path; on
// update, child ids are optional and drive reconciliation matching.
package services

import (
	"github.com/shopspring/decimal"

	"github.com/reparatec/go-repair-backend/internal/domain"
)

// ClientDocument carries the client block of an order document. NationalID is
// the upsert key; the remaining fields overwrite the stored client.
type ClientDocument struct {
	NationalID string `json:"national_id"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Address    string `json:"address"`
}

// LineDocument is one billable intervention under a fault. UnitPrice and Kind
// also seed the catalog row when the intervention is auto-created.
type LineDocument struct {
	Name      string          `json:"name"`
	Kind      string          `json:"kind"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// FaultDocument is one diagnosed fault under a device. ID is set by clients
// on update to pin the match; when absent, faults match by name.
type FaultDocument struct {
	ID       string          `json:"id,omitempty"`
	Name     string          `json:"name"`
	Symptoms string          `json:"symptoms"`
	Priority domain.Priority `json:"priority"`
	Lines    []LineDocument  `json:"intervention_lines"`
}

// DeviceDocument is one device subtree. Brand and Model are free-text catalog
// references resolved during the write. ID is set by clients on update to
// pin the match; devices without an id are inserted as new.
type DeviceDocument struct {
	ID       string          `json:"id,omitempty"`
	Brand    string          `json:"brand"`
	Model    string          `json:"model"`
	IMEI     string          `json:"imei"`
	Serial   string          `json:"serial_number"`
	Color    string          `json:"color"`
	Capacity string          `json:"capacity"`
	Faults   []FaultDocument `json:"faults"`
}

// OrderDocument is the full document accepted by CreateOrder and UpdateOrder.
type OrderDocument struct {
	Client   ClientDocument   `json:"client"`
	Devices  []DeviceDocument `json:"devices"`
	Discount decimal.Decimal  `json:"discount"`
	Notes    string           `json:"notes"`
}

// DeviceTotal is a per-device summary returned by the create path.
type DeviceTotal struct {
	DeviceID string          `json:"device_id"`
	Total    decimal.Decimal `json:"total"`
}

// CreateOrderResult is the outcome of a successful order creation.
type CreateOrderResult struct {
	OrderID      string          `json:"order_id"`
	OrderNumber  string          `json:"order_number"`
	ClientID     string          `json:"client_id"`
	DeviceTotals []DeviceTotal   `json:"device_totals"`
	FinalTotal   decimal.Decimal `json:"final_total"`
}

// DeviceChange summarizes what happened to one device during an update.
// Action is one of "created", "updated", or "deleted".
type DeviceChange struct {
	DeviceID string          `json:"device_id"`
	Action   string          `json:"action"`
	Total    decimal.Decimal `json:"total"`
}

// UpdateOrderResult is the outcome of a successful order update.
type UpdateOrderResult struct {
	OrderNumber   string          `json:"order_number"`
	PreviousTotal decimal.Decimal `json:"previous_total"`
	NewTotal      decimal.Decimal `json:"new_total"`
	DeviceChanges []DeviceChange  `json:"device_changes"`
}
