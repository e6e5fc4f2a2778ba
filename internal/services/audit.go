package services

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/reparatec/go-repair-backend/internal/domain"
)

// Audit event names recorded on the order trail.
const (
	AuditOrderCreated      = "order.created"
	AuditOrderUpdated      = "order.updated"
	AuditOrderStatus       = "order.status_changed"
	AuditOrderRecalculated = "order.recalculated"
)

func auditEntry(orderID, actor, event, description string, detail any) domain.AuditEntry {
	e := domain.AuditEntry{
		OrderID:     orderID,
		Event:       event,
		Description: description,
		Actor:       actor,
	}
	if detail != nil {
		// Detail payloads are plain structs of our own making; marshal
		// cannot fail on them, and a trail entry without detail is
		// still worth keeping if it somehow did.
		if raw, err := json.Marshal(detail); err == nil {
			e.Detail = raw
		}
	}
	return e
}

func auditCreated(orderID, actor, number string, doc *OrderDocument, final decimal.Decimal) domain.AuditEntry {
	faults, lines := 0, 0
	for di := range doc.Devices {
		faults += len(doc.Devices[di].Faults)
		for fi := range doc.Devices[di].Faults {
			lines += len(doc.Devices[di].Faults[fi].Lines)
		}
	}
	return auditEntry(orderID, actor, AuditOrderCreated,
		fmt.Sprintf("order %s created with %d device(s)", number, len(doc.Devices)),
		map[string]any{
			"order_number": number,
			"devices":      len(doc.Devices),
			"faults":       faults,
			"lines":        lines,
			"final_total":  final,
		})
}

// changeCounts tallies one tree level of an update. Lines of kept faults are
// replaced wholesale, so rewritten line sets count as updated.
type changeCounts struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
}

type updateAuditDetail struct {
	OrderNumber   string          `json:"order_number"`
	PreviousTotal decimal.Decimal `json:"previous_total"`
	NewTotal      decimal.Decimal `json:"new_total"`
	DeviceChanges []DeviceChange  `json:"device_changes"`
	Devices       changeCounts    `json:"devices"`
	Faults        changeCounts    `json:"faults"`
	Lines         changeCounts    `json:"lines"`
}

func auditUpdated(orderID, actor string, res *UpdateOrderResult, plan *ReconcilePlan) domain.AuditEntry {
	d := updateAuditDetail{
		OrderNumber:   res.OrderNumber,
		PreviousTotal: res.PreviousTotal,
		NewTotal:      res.NewTotal,
		DeviceChanges: res.DeviceChanges,
		Devices: changeCounts{
			Created: len(plan.DeviceCreates),
			Updated: len(plan.DeviceUpdates),
			Deleted: len(plan.DeviceDeletes),
		},
	}
	for _, dd := range plan.DeviceCreates {
		d.Faults.Created += len(dd.Faults)
		for fi := range dd.Faults {
			d.Lines.Created += len(dd.Faults[fi].Lines)
		}
	}
	for _, dp := range plan.DeviceUpdates {
		d.Faults.Created += len(dp.FaultCreates)
		d.Faults.Updated += len(dp.FaultUpdates)
		d.Faults.Deleted += len(dp.FaultDeletes)
		for _, fp := range dp.FaultCreates {
			d.Lines.Created += len(fp.Doc.Lines)
		}
		for _, fp := range dp.FaultUpdates {
			d.Lines.Updated += len(fp.Doc.Lines)
			d.Lines.Deleted += len(fp.Existing.Lines)
		}
		for _, f := range dp.FaultDeletes {
			d.Lines.Deleted += len(f.Lines)
		}
	}
	for _, dev := range plan.DeviceDeletes {
		d.Faults.Deleted += len(dev.Faults)
		for fi := range dev.Faults {
			d.Lines.Deleted += len(dev.Faults[fi].Lines)
		}
	}
	return auditEntry(orderID, actor, AuditOrderUpdated,
		fmt.Sprintf("order %s updated, total %s -> %s", res.OrderNumber, res.PreviousTotal, res.NewTotal),
		d)
}

func auditStatus(orderID, actor string, from, to domain.OrderStatus) domain.AuditEntry {
	return auditEntry(orderID, actor, AuditOrderStatus,
		fmt.Sprintf("status changed %s -> %s", from, to),
		map[string]string{"from": string(from), "to": string(to)})
}

func auditRecalculated(orderID, actor string, before, after decimal.Decimal) domain.AuditEntry {
	return auditEntry(orderID, actor, AuditOrderRecalculated,
		fmt.Sprintf("totals recalculated, %s -> %s", before, after),
		map[string]any{"before": before, "after": after})
}
