// Idempotency records previously processed order-creation requests so that a
// client retry with the same Idempotency-Key returns the original order
// instead of creating a second one.
package domain

import "time"

// Idempotency is keyed by (actor, key). OrderID points at the order produced
// by the original request; Status is the HTTP status that was returned.
type Idempotency struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	Actor     string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_idem_actor_key,priority:1"`
	Key       string    `gorm:"type:varchar(200);not null;uniqueIndex:ux_idem_actor_key,priority:2"`
	OrderID   string    `gorm:"type:char(36);not null"`
	Status    int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
