// Catalog reference tables: brands, device models, fault types, and the
// intervention price list. The order aggregate writer resolves free-text
// names against these rows and only ever stores the resulting ids.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Brand is a device manufacturer ("Acme").
type Brand struct {
	ID        string    `json:"id"   gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(64);not null;uniqueIndex:ux_brands_name"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Brand.
func (Brand) TableName() string { return "brands" }

// DeviceModel is a concrete model under a brand ("Z1"). Model names are
// unique per brand, not globally.
type DeviceModel struct {
	ID        string    `json:"id"       gorm:"type:char(36);primaryKey"`
	BrandID   string    `json:"brand_id" gorm:"type:char(36);not null;uniqueIndex:ux_models_brand_name,priority:1"`
	Name      string    `json:"name"     gorm:"type:varchar(64);not null;uniqueIndex:ux_models_brand_name,priority:2"`
	CreatedAt time.Time `json:"created_at"`

	Brand Brand `json:"-" gorm:"foreignKey:BrandID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for DeviceModel.
func (DeviceModel) TableName() string { return "device_models" }

// FaultType is a catalog entry for a diagnosable problem ("ScreenCrack").
type FaultType struct {
	ID        string    `json:"id"   gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(128);not null;uniqueIndex:ux_fault_types_name"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for FaultType.
func (FaultType) TableName() string { return "fault_types" }

// Intervention is a price-list row for a billable service or part, scoped to
// a (model, fault type) pair. Rows may be auto-created by the order writer
// when an order references an intervention that does not exist yet; such rows
// are durable only if the enclosing order transaction commits.
type Intervention struct {
	ID          string          `json:"id"            gorm:"type:char(36);primaryKey"`
	ModelID     string          `json:"model_id"      gorm:"type:char(36);not null;uniqueIndex:ux_interventions_scope,priority:1"`
	FaultTypeID string          `json:"fault_type_id" gorm:"type:char(36);not null;uniqueIndex:ux_interventions_scope,priority:2"`
	Name        string          `json:"name"          gorm:"type:varchar(128);not null;uniqueIndex:ux_interventions_scope,priority:3"`
	Kind        string          `json:"kind"          gorm:"type:varchar(16);not null"`
	Price       decimal.Decimal `json:"price"         gorm:"type:decimal(12,2);not null"`
	CreatedAt   time.Time       `json:"created_at"`

	Model     DeviceModel `json:"-" gorm:"foreignKey:ModelID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	FaultType FaultType   `json:"-" gorm:"foreignKey:FaultTypeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Intervention.
func (Intervention) TableName() string { return "interventions" }

// OrderSequence holds the per-calendar-year counter backing order numbers.
// The counter row is incremented inside the order transaction, which
// serializes concurrent creations on the row lock instead of racing a
// count(*) probe.
type OrderSequence struct {
	Year    int `gorm:"primaryKey;autoIncrement:false"`
	Counter int `gorm:"not null"`
}

// TableName returns the database table name for OrderSequence.
func (OrderSequence) TableName() string { return "order_sequences" }
