package services

import (
	"github.com/shopspring/decimal"

	"github.com/reparatec/go-repair-backend/internal/domain"
)

// OrderTotals is the bottom-up aggregation of an order tree. Line totals are
// quantity times unit price; each parent is the sum of its children; the
// final total is the subtotal minus the order-level discount.
type OrderTotals struct {
	Lines    map[string]decimal.Decimal
	Faults   map[string]decimal.Decimal
	Devices  map[string]decimal.Decimal
	Subtotal decimal.Decimal
	Final    decimal.Decimal
}

// ComputeTotals recalculates every total in the order tree from the line
// level up. It is a pure function of the tree: it never reads stored totals,
// so running it twice over an unchanged order yields identical results.
// Devices without faults and faults without lines contribute zero.
func ComputeTotals(order *domain.Order) OrderTotals {
	t := OrderTotals{
		Lines:   make(map[string]decimal.Decimal),
		Faults:  make(map[string]decimal.Decimal),
		Devices: make(map[string]decimal.Decimal),
	}
	for di := range order.Devices {
		device := &order.Devices[di]
		deviceTotal := decimal.Zero
		for fi := range device.Faults {
			fault := &device.Faults[fi]
			faultTotal := decimal.Zero
			for li := range fault.Lines {
				line := &fault.Lines[li]
				lineTotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
				t.Lines[line.ID] = lineTotal
				faultTotal = faultTotal.Add(lineTotal)
			}
			t.Faults[fault.ID] = faultTotal
			deviceTotal = deviceTotal.Add(faultTotal)
		}
		t.Devices[device.ID] = deviceTotal
		t.Subtotal = t.Subtotal.Add(deviceTotal)
	}
	t.Final = t.Subtotal.Sub(order.Discount)
	return t
}

// Apply writes the computed totals back onto the tree in place.
func (t OrderTotals) Apply(order *domain.Order) {
	for di := range order.Devices {
		device := &order.Devices[di]
		for fi := range device.Faults {
			fault := &device.Faults[fi]
			for li := range fault.Lines {
				line := &fault.Lines[li]
				line.Total = t.Lines[line.ID]
			}
			fault.Total = t.Faults[fault.ID]
		}
		device.Total = t.Devices[device.ID]
	}
	order.Subtotal = t.Subtotal
	order.FinalTotal = t.Final
}
