package services

import (
	"errors"
	"testing"

	"github.com/reparatec/go-repair-backend/internal/domain"
)

func persistedDevices() []domain.Device {
	return []domain.Device{
		{
			ID: "dev-a",
			Faults: []domain.Fault{
				{ID: "fa-1", DeviceID: "dev-a", Name: "ScreenCrack"},
				{ID: "fa-2", DeviceID: "dev-a", Name: "BatteryDrain"},
			},
		},
		{
			ID: "dev-b",
			Faults: []domain.Fault{
				{ID: "fb-1", DeviceID: "dev-b", Name: "NoPower"},
			},
		},
	}
}

func TestReconcile_UpdateCreateDelete(t *testing.T) {
	// Device A comes back modified, device B is gone, device C is new.
	incoming := []DeviceDocument{
		{
			ID:    "dev-a",
			Brand: "Apple", Model: "iPhone 14",
			Faults: []FaultDocument{
				{ID: "fa-1", Name: "ScreenCrack"}, // pinned by id
				{Name: "WaterDamage"},             // new under A
			},
		},
		{
			Brand: "Samsung", Model: "Galaxy S24",
			Faults: []FaultDocument{{Name: "ChargingPort"}},
		},
	}

	plan, err := Reconcile(persistedDevices(), incoming)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	if len(plan.DeviceCreates) != 1 || plan.DeviceCreates[0].Brand != "Samsung" {
		t.Fatalf("device creates = %+v", plan.DeviceCreates)
	}
	if len(plan.DeviceDeletes) != 1 || plan.DeviceDeletes[0].ID != "dev-b" {
		t.Fatalf("device deletes = %+v", plan.DeviceDeletes)
	}
	if len(plan.DeviceUpdates) != 1 {
		t.Fatalf("device updates = %+v", plan.DeviceUpdates)
	}

	dp := plan.DeviceUpdates[0]
	if len(dp.FaultUpdates) != 1 || dp.FaultUpdates[0].Existing.ID != "fa-1" {
		t.Fatalf("fault updates = %+v", dp.FaultUpdates)
	}
	if len(dp.FaultCreates) != 1 || dp.FaultCreates[0].Doc.Name != "WaterDamage" {
		t.Fatalf("fault creates = %+v", dp.FaultCreates)
	}
	if len(dp.FaultDeletes) != 1 || dp.FaultDeletes[0].ID != "fa-2" {
		t.Fatalf("fault deletes = %+v", dp.FaultDeletes)
	}
}

func TestReconcile_FaultMatchesByNameWithoutID(t *testing.T) {
	incoming := []DeviceDocument{
		{
			ID: "dev-a",
			Faults: []FaultDocument{
				{Name: "screencrack"}, // case-insensitive name match
			},
		},
	}

	plan, err := Reconcile(persistedDevices()[:1], incoming)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	dp := plan.DeviceUpdates[0]
	if len(dp.FaultUpdates) != 1 || dp.FaultUpdates[0].Existing.ID != "fa-1" {
		t.Fatalf("expected name fallback to match fa-1, got %+v", dp.FaultUpdates)
	}
	if len(dp.FaultCreates) != 0 {
		t.Fatalf("unexpected creates: %+v", dp.FaultCreates)
	}
}

func TestReconcile_DuplicateFaultNameConflicts(t *testing.T) {
	cases := []struct {
		name   string
		faults []FaultDocument
	}{
		{"no ids", []FaultDocument{
			{Name: "ScreenCrack"},
			{Name: "screencrack"},
		}},
		{"one id", []FaultDocument{
			{ID: "fa-1", Name: "ScreenCrack"},
			{Name: "screencrack"},
		}},
		{"both ids", []FaultDocument{
			{ID: "fa-1", Name: "ScreenCrack"},
			{ID: "fa-2", Name: "screencrack"},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			incoming := []DeviceDocument{{ID: "dev-a", Faults: tc.faults}}
			if _, err := Reconcile(persistedDevices()[:1], incoming); !errors.Is(err, ErrConflict) {
				t.Fatalf("err = %v, want ErrConflict", err)
			}
		})
	}
}

func TestReconcile_ForeignIDsRejected(t *testing.T) {
	if _, err := Reconcile(persistedDevices(), []DeviceDocument{{ID: "dev-z"}}); !errors.Is(err, ErrValidation) {
		t.Fatalf("foreign device id: err = %v, want ErrValidation", err)
	}

	incoming := []DeviceDocument{{ID: "dev-a", Faults: []FaultDocument{{ID: "fb-1", Name: "NoPower"}}}}
	if _, err := Reconcile(persistedDevices(), incoming); !errors.Is(err, ErrValidation) {
		t.Fatalf("foreign fault id: err = %v, want ErrValidation", err)
	}
}

func TestReconcile_EmptyIncomingDeletesEverything(t *testing.T) {
	plan, err := Reconcile(persistedDevices(), nil)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(plan.DeviceDeletes) != 2 || len(plan.DeviceUpdates) != 0 || len(plan.DeviceCreates) != 0 {
		t.Fatalf("plan = %+v", plan)
	}
}
