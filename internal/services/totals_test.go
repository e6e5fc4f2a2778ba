package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/reparatec/go-repair-backend/internal/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func line(id string, qty int, unit string) domain.InterventionLine {
	return domain.InterventionLine{ID: id, Quantity: qty, UnitPrice: dec(unit)}
}

func TestComputeTotals_RollsUpAllLevels(t *testing.T) {
	order := &domain.Order{
		ID:       "o1",
		Discount: dec("5.00"),
		Devices: []domain.Device{
			{
				ID: "d1",
				Faults: []domain.Fault{
					{ID: "f1", Lines: []domain.InterventionLine{
						line("l1", 1, "40.00"),
						line("l2", 1, "10.00"),
					}},
				},
			},
			{
				ID: "d2",
				Faults: []domain.Fault{
					{ID: "f2", Lines: []domain.InterventionLine{
						line("l3", 3, "2.50"),
					}},
					{ID: "f3"}, // diagnosed, nothing billed yet
				},
			},
		},
	}

	got := ComputeTotals(order)

	if !got.Lines["l1"].Equal(dec("40.00")) || !got.Lines["l2"].Equal(dec("10.00")) {
		t.Fatalf("line totals wrong: %v %v", got.Lines["l1"], got.Lines["l2"])
	}
	if !got.Faults["f1"].Equal(dec("50.00")) {
		t.Fatalf("fault f1 total = %v, want 50.00", got.Faults["f1"])
	}
	if !got.Faults["f3"].Equal(decimal.Zero) {
		t.Fatalf("empty fault total = %v, want 0", got.Faults["f3"])
	}
	if !got.Devices["d1"].Equal(dec("50.00")) || !got.Devices["d2"].Equal(dec("7.50")) {
		t.Fatalf("device totals wrong: %v %v", got.Devices["d1"], got.Devices["d2"])
	}
	if !got.Subtotal.Equal(dec("57.50")) {
		t.Fatalf("subtotal = %v, want 57.50", got.Subtotal)
	}
	if !got.Final.Equal(dec("52.50")) {
		t.Fatalf("final = %v, want 52.50", got.Final)
	}
}

func TestComputeTotals_Idempotent(t *testing.T) {
	order := &domain.Order{
		ID:       "o1",
		Discount: dec("1.00"),
		Devices: []domain.Device{
			{ID: "d1", Faults: []domain.Fault{
				{ID: "f1", Lines: []domain.InterventionLine{line("l1", 2, "19.99")}},
			}},
		},
	}

	first := ComputeTotals(order)
	first.Apply(order)
	second := ComputeTotals(order)

	if !first.Subtotal.Equal(second.Subtotal) || !first.Final.Equal(second.Final) {
		t.Fatalf("recomputation drifted: %v/%v vs %v/%v",
			first.Subtotal, first.Final, second.Subtotal, second.Final)
	}
	if !order.Subtotal.Equal(dec("39.98")) || !order.FinalTotal.Equal(dec("38.98")) {
		t.Fatalf("applied totals wrong: %v / %v", order.Subtotal, order.FinalTotal)
	}
}

func TestComputeTotals_EmptyTrees(t *testing.T) {
	order := &domain.Order{ID: "o1", Devices: []domain.Device{{ID: "d1"}}}
	got := ComputeTotals(order)
	if !got.Subtotal.IsZero() || !got.Final.IsZero() {
		t.Fatalf("empty device should total zero, got %v / %v", got.Subtotal, got.Final)
	}
	if !got.Devices["d1"].IsZero() {
		t.Fatalf("device total = %v, want 0", got.Devices["d1"])
	}
}
