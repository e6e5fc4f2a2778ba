// Package domain defines the persistence models for clients, repair orders,
// and their nested devices, faults, and intervention lines. These types are
// mapped with GORM and form the core data layer of the repair-shop backend.
//
// Ownership rules:
//   - An Order belongs to exactly one Client and owns its Devices.
//   - A Device owns its Faults; a Fault owns its InterventionLines.
//   - Children are never persisted without a parent id (no orphans).
//
// Monetary fields use shopspring/decimal so that the rolling-total
// invariants (line → fault → device → order) hold exactly.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Client is a repair-shop customer, identified by a national ID (natural key).
// An order update overwrites the client's mutable contact fields; the national
// ID itself never changes through the order flow.
type Client struct {
	ID         string         `json:"id"          gorm:"type:char(36);primaryKey"`
	NationalID string         `json:"national_id" gorm:"type:varchar(32);not null;uniqueIndex:ux_clients_national_id"`
	Name       string         `json:"name"        gorm:"type:varchar(255);not null"`
	Phone      string         `json:"phone"       gorm:"type:varchar(32)"`
	Email      string         `json:"email"       gorm:"type:varchar(255)"`
	Address    string         `json:"address"     gorm:"type:varchar(255)"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-"           gorm:"index"`
}

// TableName returns the database table name for Client.
func (Client) TableName() string { return "clients" }

// Order is a repair ticket covering one or more devices for one client.
//
// Fields:
//   - Number: unique human-readable identifier ("R-2026-0001").
//   - Status: lifecycle state; new orders always start as StatusInitiated.
//   - Subtotal: sum of device totals before discount.
//   - Discount: absolute amount subtracted from the subtotal.
//   - FinalTotal: Subtotal − Discount; never negative.
type Order struct {
	ID         string          `json:"id"          gorm:"type:char(36);primaryKey"`
	Number     string          `json:"number"      gorm:"type:varchar(16);not null;uniqueIndex:ux_orders_number"`
	ClientID   string          `json:"client_id"   gorm:"type:char(36);not null;index"`
	Status     OrderStatus     `json:"status"      gorm:"type:varchar(16);not null"`
	Subtotal   decimal.Decimal `json:"subtotal"    gorm:"type:decimal(12,2);not null"`
	Discount   decimal.Decimal `json:"discount"    gorm:"type:decimal(12,2);not null"`
	FinalTotal decimal.Decimal `json:"final_total" gorm:"type:decimal(12,2);not null"`
	Notes      string          `json:"notes"       gorm:"type:text"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `json:"-"           gorm:"index"`

	Client  Client   `json:"-"       gorm:"foreignKey:ClientID;references:ID"`
	Devices []Device `json:"devices" gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Order.
func (Order) TableName() string { return "orders" }

// Device is one physical unit under repair within an order. Brand and model
// are stored as resolved catalog references, never as free text.
type Device struct {
	ID        string          `json:"id"            gorm:"type:char(36);primaryKey"`
	OrderID   string          `json:"order_id"      gorm:"type:char(36);not null;index"`
	BrandID   string          `json:"brand_id"      gorm:"type:char(36);not null"`
	ModelID   string          `json:"model_id"      gorm:"type:char(36);not null"`
	IMEI      string          `json:"imei"          gorm:"type:varchar(32)"`
	Serial    string          `json:"serial_number" gorm:"type:varchar(64)"`
	Color     string          `json:"color"         gorm:"type:varchar(32)"`
	Capacity  string          `json:"capacity"      gorm:"type:varchar(32)"`
	Status    DeviceStatus    `json:"status"        gorm:"type:varchar(16);not null"`
	Total     decimal.Decimal `json:"total"         gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	Order  Order   `json:"-"      gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Faults []Fault `json:"faults" gorm:"foreignKey:DeviceID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Device.
func (Device) TableName() string { return "devices" }

// Fault is one diagnosed problem on a device. Name references the fault
// catalog; DueAt carries the SLA window derived from Priority at diagnosis
// time.
type Fault struct {
	ID          string          `json:"id"        gorm:"type:char(36);primaryKey"`
	DeviceID    string          `json:"device_id" gorm:"type:char(36);not null;index"`
	FaultTypeID string          `json:"fault_type_id" gorm:"type:char(36);not null"`
	Name        string          `json:"name"      gorm:"type:varchar(128);not null"`
	Symptoms    string          `json:"symptoms"  gorm:"type:text"`
	Priority    Priority        `json:"priority"  gorm:"type:varchar(8);not null"`
	State       FaultState      `json:"state"     gorm:"type:varchar(16);not null"`
	Total       decimal.Decimal `json:"total"     gorm:"type:decimal(12,2);not null"`
	DueAt       time.Time       `json:"due_at"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Device Device             `json:"-"     gorm:"foreignKey:DeviceID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Lines  []InterventionLine `json:"intervention_lines" gorm:"foreignKey:FaultID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Fault.
func (Fault) TableName() string { return "faults" }

// InterventionLine is one billable service or part applied to resolve a
// fault. Total is always Quantity × UnitPrice.
type InterventionLine struct {
	ID             string          `json:"id"              gorm:"type:char(36);primaryKey"`
	FaultID        string          `json:"fault_id"        gorm:"type:char(36);not null;index"`
	InterventionID string          `json:"intervention_id" gorm:"type:char(36);not null"`
	Name           string          `json:"name"            gorm:"type:varchar(128);not null"`
	Kind           string          `json:"kind"            gorm:"type:varchar(16);not null"`
	Quantity       int             `json:"quantity"        gorm:"not null"`
	UnitPrice      decimal.Decimal `json:"unit_price"      gorm:"type:decimal(12,2);not null"`
	Total          decimal.Decimal `json:"total"           gorm:"type:decimal(12,2);not null"`
	Completed      bool            `json:"completed"       gorm:"not null"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	Fault Fault `json:"-" gorm:"foreignKey:FaultID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for InterventionLine.
func (InterventionLine) TableName() string { return "intervention_lines" }

// AuditEntry is an immutable, append-only history record describing a change
// to an order. Entries are written in the same transaction as the change they
// describe, so a rolled-back write never leaves one behind.
type AuditEntry struct {
	ID          string    `json:"id"          gorm:"type:char(36);primaryKey"`
	OrderID     string    `json:"order_id"    gorm:"type:char(36);not null;index"`
	Event       string    `json:"event"       gorm:"type:varchar(32);not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Detail      []byte    `json:"detail,omitempty" gorm:"type:text"`
	Actor       string    `json:"actor"       gorm:"type:varchar(64);not null"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the database table name for AuditEntry.
func (AuditEntry) TableName() string { return "audit_entries" }
