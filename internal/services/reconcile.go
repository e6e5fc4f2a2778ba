package services

import (
	"fmt"
	"strings"

	"github.com/reparatec/go-repair-backend/internal/domain"
)

// The reconciler diffs the persisted order tree against an incoming full
// document and produces a plan of creates, updates and deletes. Devices match
// on id only: a document device without an id is always a create, a persisted
// device absent from the document is a delete. Faults inside a matched device
// match on id first and fall back to case-insensitive name so clients that
// never echo fault ids still update rather than churn rows. Intervention
// lines are not diffed: lines of every kept fault are replaced wholesale.

// FaultPlan pairs an incoming fault document with the persisted fault it
// updates. Existing is nil for creates.
type FaultPlan struct {
	Doc      *FaultDocument
	Existing *domain.Fault
}

// DevicePlan describes what happens to one matched or new device.
type DevicePlan struct {
	Doc      *DeviceDocument
	Existing *domain.Device

	FaultCreates []FaultPlan
	FaultUpdates []FaultPlan
	FaultDeletes []*domain.Fault
}

// ReconcilePlan is the full diff for one order update.
type ReconcilePlan struct {
	DeviceCreates []*DeviceDocument
	DeviceUpdates []DevicePlan
	DeviceDeletes []*domain.Device
}

// Reconcile builds the plan for replacing the persisted tree with the
// incoming document. It returns ErrValidation when a document references a
// device id that does not belong to the order, and ErrConflict when two
// incoming faults on one device carry the same name, ids or not: matching
// falls back to names, so duplicates make the diff ambiguous.
func Reconcile(persisted []domain.Device, incoming []DeviceDocument) (*ReconcilePlan, error) {
	plan := &ReconcilePlan{}

	byID := make(map[string]*domain.Device, len(persisted))
	for i := range persisted {
		byID[persisted[i].ID] = &persisted[i]
	}

	seen := make(map[string]bool, len(incoming))
	for i := range incoming {
		doc := &incoming[i]
		if doc.ID == "" {
			plan.DeviceCreates = append(plan.DeviceCreates, doc)
			continue
		}
		existing, ok := byID[doc.ID]
		if !ok {
			return nil, fmt.Errorf("%w: device %s does not belong to this order", ErrValidation, doc.ID)
		}
		if seen[doc.ID] {
			return nil, fmt.Errorf("%w: device %s listed twice", ErrValidation, doc.ID)
		}
		seen[doc.ID] = true

		dp := DevicePlan{Doc: doc, Existing: existing}
		if err := reconcileFaults(&dp); err != nil {
			return nil, err
		}
		plan.DeviceUpdates = append(plan.DeviceUpdates, dp)
	}

	for i := range persisted {
		if !seen[persisted[i].ID] {
			plan.DeviceDeletes = append(plan.DeviceDeletes, &persisted[i])
		}
	}
	return plan, nil
}

func reconcileFaults(dp *DevicePlan) error {
	existing := dp.Existing.Faults
	faultByID := make(map[string]*domain.Fault, len(existing))
	faultByName := make(map[string]*domain.Fault, len(existing))
	for i := range existing {
		faultByID[existing[i].ID] = &existing[i]
		faultByName[strings.ToLower(existing[i].Name)] = &existing[i]
	}

	nameSeen := make(map[string]bool, len(dp.Doc.Faults))
	matched := make(map[string]bool, len(existing))
	for i := range dp.Doc.Faults {
		doc := &dp.Doc.Faults[i]
		key := strings.ToLower(strings.TrimSpace(doc.Name))
		if nameSeen[key] {
			return fmt.Errorf("%w: fault %q appears twice on device %s", ErrConflict, doc.Name, dp.Existing.ID)
		}
		nameSeen[key] = true

		var target *domain.Fault
		if doc.ID != "" {
			f, ok := faultByID[doc.ID]
			if !ok {
				return fmt.Errorf("%w: fault %s does not belong to device %s", ErrValidation, doc.ID, dp.Existing.ID)
			}
			target = f
		} else if f, ok := faultByName[key]; ok && !matched[f.ID] {
			target = f
		}

		if target == nil {
			dp.FaultCreates = append(dp.FaultCreates, FaultPlan{Doc: doc})
			continue
		}
		if matched[target.ID] {
			return fmt.Errorf("%w: fault %s matched twice on device %s", ErrConflict, target.ID, dp.Existing.ID)
		}
		matched[target.ID] = true
		dp.FaultUpdates = append(dp.FaultUpdates, FaultPlan{Doc: doc, Existing: target})
	}

	for i := range existing {
		if !matched[existing[i].ID] {
			dp.FaultDeletes = append(dp.FaultDeletes, &existing[i])
		}
	}
	return nil
}
