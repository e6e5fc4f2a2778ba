package domain

import (
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:domain_models_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Enforce FKs so cascades actually execute.
	db.Exec("PRAGMA foreign_keys=ON;")
	return db
}

func migrateAll(t *testing.T, db *gorm.DB) {
	t.Helper()
	err := db.AutoMigrate(
		&Client{}, &Brand{}, &DeviceModel{}, &FaultType{}, &Intervention{},
		&Order{}, &Device{}, &Fault{}, &InterventionLine{},
		&AuditEntry{}, &OrderSequence{}, &Idempotency{},
	)
	if err != nil {
		t.Fatalf("automigrate: %v", err)
	}
}

func TestTableNames(t *testing.T) {
	cases := []struct {
		got  string
		want string
	}{
		{(Client{}).TableName(), "clients"},
		{(Order{}).TableName(), "orders"},
		{(Device{}).TableName(), "devices"},
		{(Fault{}).TableName(), "faults"},
		{(InterventionLine{}).TableName(), "intervention_lines"},
		{(AuditEntry{}).TableName(), "audit_entries"},
		{(Brand{}).TableName(), "brands"},
		{(DeviceModel{}).TableName(), "device_models"},
		{(FaultType{}).TableName(), "fault_types"},
		{(Intervention{}).TableName(), "interventions"},
		{(OrderSequence{}).TableName(), "order_sequences"},
		{(Idempotency{}).TableName(), "idempotency"},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Fatalf("TableName() = %q; want %q", c.got, c.want)
		}
	}
}

func TestMigrations_Indexes_AndCascades(t *testing.T) {
	db := newDomainDB(t)
	migrateAll(t, db)
	m := db.Migrator()

	if !m.HasIndex(&Client{}, "ux_clients_national_id") {
		t.Fatalf("expected unique index ux_clients_national_id on clients")
	}
	if !m.HasIndex(&Order{}, "ux_orders_number") {
		t.Fatalf("expected unique index ux_orders_number on orders")
	}
	if !m.HasIndex(&Intervention{}, "ux_interventions_scope") {
		t.Fatalf("expected unique index ux_interventions_scope on interventions")
	}

	now := time.Now().UTC()
	cl := &Client{ID: "cl1", NationalID: "X1", Name: "Ada", CreatedAt: now, UpdatedAt: now}
	if err := db.Create(cl).Error; err != nil {
		t.Fatalf("insert client: %v", err)
	}
	br := &Brand{ID: "b1", Name: "Acme"}
	mo := &DeviceModel{ID: "mo1", BrandID: "b1", Name: "Z1"}
	ft := &FaultType{ID: "ft1", Name: "ScreenCrack"}
	iv := &Intervention{ID: "iv1", ModelID: "mo1", FaultTypeID: "ft1", Name: "Screen swap", Kind: "repair", Price: decimal.NewFromInt(50)}
	for _, row := range []any{br, mo, ft, iv} {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("insert catalog row %T: %v", row, err)
		}
	}

	o := &Order{ID: "o1", Number: "R-2026-0001", ClientID: "cl1", Status: StatusInitiated}
	d := &Device{ID: "d1", OrderID: "o1", BrandID: "b1", ModelID: "mo1", Status: DeviceReceived}
	f := &Fault{ID: "f1", DeviceID: "d1", FaultTypeID: "ft1", Name: "ScreenCrack", Priority: PriorityHigh, State: FaultPending, DueAt: now}
	l := &InterventionLine{ID: "l1", FaultID: "f1", InterventionID: "iv1", Name: "Screen swap", Kind: "repair", Quantity: 1, UnitPrice: decimal.NewFromInt(50), Total: decimal.NewFromInt(50)}
	for _, row := range []any{o, d, f, l} {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("insert %T: %v", row, err)
		}
	}

	// CASCADE: removing a device must remove its faults and lines.
	if err := db.Unscoped().Delete(&Device{}, "id = ?", "d1").Error; err != nil {
		t.Fatalf("delete device: %v", err)
	}
	var cnt int64
	if err := db.Model(&Fault{}).Where("device_id = ?", "d1").Count(&cnt).Error; err != nil {
		t.Fatalf("count faults: %v", err)
	}
	if cnt != 0 {
		t.Fatalf("expected faults cascade-deleted, found %d", cnt)
	}
	if err := db.Model(&InterventionLine{}).Where("fault_id = ?", "f1").Count(&cnt).Error; err != nil {
		t.Fatalf("count lines: %v", err)
	}
	if cnt != 0 {
		t.Fatalf("expected lines cascade-deleted, found %d", cnt)
	}
}

func TestOrderNumber_Unique(t *testing.T) {
	db := newDomainDB(t)
	migrateAll(t, db)

	cl := &Client{ID: "cl1", NationalID: "X1", Name: "Ada"}
	if err := db.Create(cl).Error; err != nil {
		t.Fatalf("insert client: %v", err)
	}
	o1 := &Order{ID: "o1", Number: "R-2026-0001", ClientID: "cl1", Status: StatusInitiated}
	if err := db.Create(o1).Error; err != nil {
		t.Fatalf("insert order: %v", err)
	}
	o2 := &Order{ID: "o2", Number: "R-2026-0001", ClientID: "cl1", Status: StatusInitiated}
	if err := db.Create(o2).Error; err == nil {
		t.Fatalf("expected unique violation on duplicate order number")
	}
}

func TestOrderStatus_Transitions(t *testing.T) {
	cases := []struct {
		from OrderStatus
		to   OrderStatus
		ok   bool
	}{
		{StatusInitiated, StatusDiagnosed, true},
		{StatusInitiated, StatusCancelled, true},
		{StatusInitiated, StatusReady, false},
		{StatusDiagnosed, StatusApproved, true},
		{StatusApproved, StatusInRepair, true},
		{StatusInRepair, StatusReady, true},
		{StatusReady, StatusDelivered, true},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusInitiated, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.ok {
			t.Fatalf("CanTransition(%s -> %s) = %v; want %v", c.from, c.to, got, c.ok)
		}
	}
	if !StatusInitiated.Valid() {
		t.Fatalf("initiated should be a valid status")
	}
	if OrderStatus("bogus").Valid() {
		t.Fatalf("bogus should not be a valid status")
	}
}

func TestPriority_SLADue(t *testing.T) {
	from := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	if got := PriorityHigh.SLADue(from); got != from.AddDate(0, 0, 2) {
		t.Fatalf("high SLA = %v", got)
	}
	if got := PriorityMedium.SLADue(from); got != from.AddDate(0, 0, 5) {
		t.Fatalf("medium SLA = %v", got)
	}
	if got := PriorityLow.SLADue(from); got != from.AddDate(0, 0, 10) {
		t.Fatalf("low SLA = %v", got)
	}
	// Unknown priorities fall back to the low window.
	if got := Priority("??").SLADue(from); got != from.AddDate(0, 0, 10) {
		t.Fatalf("fallback SLA = %v", got)
	}
	if Priority("??").Valid() {
		t.Fatalf("unknown priority should not be valid")
	}
}
