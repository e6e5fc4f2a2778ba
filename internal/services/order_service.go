// Package services – OrderService
//
// This file implements OrderService, the aggregate writer for repair orders.
// One call persists (or reconciles) a complete five-level document (client,
// order, devices, faults, intervention lines) in a single transaction:
// either every row lands or none does, and an audit entry is written in the
// same transaction as the change it describes.
//
// Catalog references arrive as free text and are resolved through the
// configured CatalogResolver on the transaction handle, so an unresolvable
// brand, model, or fault aborts the whole write.
//
// Observability: all public methods are OpenTelemetry-instrumented; spans
// carry order identifiers where applicable.

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/reparatec/go-repair-backend/internal/domain"
	"github.com/reparatec/go-repair-backend/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	deviceActionCreated = "created"
	deviceActionUpdated = "updated"
	deviceActionDeleted = "deleted"
)

// OrderService owns the order aggregate lifecycle: atomic create, full
// reconciling update, status transitions, standalone total repair, and
// deletion of the whole tree.
type OrderService struct {
	DB      *gorm.DB
	Catalog CatalogResolver

	// Now is the clock used for order numbers and SLA windows. Nil means
	// time.Now.
	Now func() time.Time
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// CreateOrder validates the document, resolves every catalog reference, and
// persists the full tree plus its audit entry in one transaction. The order
// number is reserved inside the same transaction, so a rollback releases no
// visible number gap within the transaction's own view.
func (s *OrderService) CreateOrder(ctx context.Context, actor string, doc *OrderDocument) (*CreateOrderResult, error) {
	tr := otel.Tracer("services/OrderService")
	ctx, span := tr.Start(ctx, "CreateOrder",
		trace.WithAttributes(attribute.Int("order.devices", len(doc.Devices))),
	)
	defer span.End()

	if err := validateDocument(doc, false); err != nil {
		return nil, err
	}

	now := s.now()
	var res CreateOrderResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		client, err := repo.UpsertClient(ctx, tx, clientFromDocument(doc.Client))
		if err != nil {
			return err
		}

		number, err := repo.NextOrderNumber(ctx, tx, now)
		if err != nil {
			return err
		}

		order := &domain.Order{
			Number:   number,
			ClientID: client.ID,
			Status:   domain.StatusInitiated,
			Discount: doc.Discount,
			Notes:    strings.TrimSpace(doc.Notes),
		}
		if err := repo.InsertOrder(ctx, tx, order); err != nil {
			return err
		}

		subtotal := decimal.Zero
		for i := range doc.Devices {
			device, total, err := s.insertDeviceTree(ctx, tx, order.ID, &doc.Devices[i], now)
			if err != nil {
				return err
			}
			subtotal = subtotal.Add(total)
			res.DeviceTotals = append(res.DeviceTotals, DeviceTotal{DeviceID: device.ID, Total: total})
		}

		final := subtotal.Sub(doc.Discount)
		if final.IsNegative() {
			return fmt.Errorf("%w: discount %s exceeds subtotal %s", ErrValidation, doc.Discount, subtotal)
		}
		if err := repo.UpdateOrderTotals(ctx, tx, order.ID, subtotal, final); err != nil {
			return err
		}

		entry := auditCreated(order.ID, actor, number, doc, final)
		if err := repo.AppendAudit(ctx, tx, &entry); err != nil {
			return err
		}

		res.OrderID = order.ID
		res.OrderNumber = number
		res.ClientID = client.ID
		res.FinalTotal = final
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateOrder replaces the persisted tree with the incoming document: devices
// and faults are diffed (create/update/delete), lines are replaced wholesale,
// totals are recomputed bottom-up, and the change is audited, all in one
// transaction. Orders in a terminal status reject updates.
func (s *OrderService) UpdateOrder(ctx context.Context, actor, orderID string, doc *OrderDocument) (*UpdateOrderResult, error) {
	tr := otel.Tracer("services/OrderService")
	ctx, span := tr.Start(ctx, "UpdateOrder",
		trace.WithAttributes(attribute.String("order.id", orderID)),
	)
	defer span.End()

	if err := validateDocument(doc, true); err != nil {
		return nil, err
	}

	now := s.now()
	var res UpdateOrderResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		persisted, err := repo.GetOrderTree(ctx, tx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}
		if persisted.Status == domain.StatusDelivered || persisted.Status == domain.StatusCancelled {
			return fmt.Errorf("%w: order %s is %s", ErrConflict, persisted.Number, persisted.Status)
		}

		// The order keeps its client for life. Contact fields follow the
		// document, but a document naming a different national ID is a
		// conflict, never a reassignment.
		client, err := repo.GetClient(ctx, tx, persisted.ClientID)
		if err != nil {
			return err
		}
		in := clientFromDocument(doc.Client)
		if in.NationalID != client.NationalID {
			return fmt.Errorf("%w: order %s belongs to client %s", ErrConflict, persisted.Number, client.NationalID)
		}
		if err := repo.UpdateClientContact(ctx, tx, client.ID, in); err != nil {
			return err
		}

		plan, err := Reconcile(persisted.Devices, doc.Devices)
		if err != nil {
			return err
		}

		for _, device := range plan.DeviceDeletes {
			if err := repo.DeleteDeviceTree(ctx, tx, device.ID); err != nil {
				return err
			}
			res.DeviceChanges = append(res.DeviceChanges, DeviceChange{
				DeviceID: device.ID, Action: deviceActionDeleted,
			})
		}

		for _, dp := range plan.DeviceUpdates {
			if err := s.applyDevicePlan(ctx, tx, dp, now); err != nil {
				return err
			}
		}

		for _, docDevice := range plan.DeviceCreates {
			device, _, err := s.insertDeviceTree(ctx, tx, orderID, docDevice, now)
			if err != nil {
				return err
			}
			docDevice.ID = device.ID
		}

		// Reload the reconciled tree and recompute every total from the
		// line level up before committing.
		reloaded, err := repo.GetOrderTree(ctx, tx, orderID)
		if err != nil {
			return err
		}
		totals := ComputeTotals(reloaded)
		totals.Final = totals.Subtotal.Sub(doc.Discount)
		if totals.Final.IsNegative() {
			return fmt.Errorf("%w: discount %s exceeds subtotal %s", ErrValidation, doc.Discount, totals.Subtotal)
		}
		if err := persistTotals(ctx, tx, reloaded, totals); err != nil {
			return err
		}
		update := map[string]any{
			"discount": doc.Discount,
			"notes":    strings.TrimSpace(doc.Notes),
		}
		if err := tx.WithContext(ctx).Model(&domain.Order{}).
			Where("id = ?", orderID).Updates(update).Error; err != nil {
			return err
		}

		res.OrderNumber = persisted.Number
		res.PreviousTotal = persisted.FinalTotal
		res.NewTotal = totals.Final
		for _, dp := range plan.DeviceUpdates {
			res.DeviceChanges = append(res.DeviceChanges, DeviceChange{
				DeviceID: dp.Existing.ID, Action: deviceActionUpdated, Total: totals.Devices[dp.Existing.ID],
			})
		}
		for _, docDevice := range plan.DeviceCreates {
			res.DeviceChanges = append(res.DeviceChanges, DeviceChange{
				DeviceID: docDevice.ID, Action: deviceActionCreated, Total: totals.Devices[docDevice.ID],
			})
		}

		entry := auditUpdated(orderID, actor, &res, plan)
		return repo.AppendAudit(ctx, tx, &entry)
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// GetOrder loads the full order tree, children ordered by creation time.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	tr := otel.Tracer("services/OrderService")
	ctx, span := tr.Start(ctx, "GetOrder",
		trace.WithAttributes(attribute.String("order.id", orderID)),
	)
	defer span.End()

	order, err := repo.GetOrderTree(ctx, s.DB, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrderByNumber resolves a human-readable order number to the full tree.
func (s *OrderService) GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error) {
	tr := otel.Tracer("services/OrderService")
	ctx, span := tr.Start(ctx, "GetOrderByNumber",
		trace.WithAttributes(attribute.String("order.number", number)),
	)
	defer span.End()

	order, err := repo.GetOrderByNumber(ctx, s.DB, number)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, order.ID)
}

// ListOrders returns one page of orders, newest first, plus the total count.
func (s *OrderService) ListOrders(ctx context.Context, page, perPage int) ([]domain.Order, int64, error) {
	tr := otel.Tracer("services/OrderService")
	ctx, span := tr.Start(ctx, "ListOrders",
		trace.WithAttributes(
			attribute.Int("page", page),
			attribute.Int("per_page", perPage),
		),
	)
	defer span.End()

	total, err := repo.CountOrders(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * perPage
	orders, err := repo.ListOrdersPage(ctx, s.DB, offset, perPage)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// TransitionStatus moves the order along its lifecycle. Disallowed moves
// return ErrInvalidTransition; allowed moves are audited atomically.
func (s *OrderService) TransitionStatus(ctx context.Context, actor, orderID string, next domain.OrderStatus) error {
	tr := otel.Tracer("services/OrderService")
	ctx, span := tr.Start(ctx, "TransitionStatus",
		trace.WithAttributes(
			attribute.String("order.id", orderID),
			attribute.String("order.status", string(next)),
		),
	)
	defer span.End()

	if !next.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, next)
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order domain.Order
		if err := tx.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if !order.Status.CanTransition(next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, next)
		}
		if err := repo.UpdateOrderStatus(ctx, tx, orderID, next); err != nil {
			return err
		}
		entry := auditStatus(orderID, actor, order.Status, next)
		return repo.AppendAudit(ctx, tx, &entry)
	})
}

// RecalculateTotals recomputes every total in the stored tree from the line
// level up and persists the result. Safe to run repeatedly; it exists to
// repair drifted totals and only audits when something actually changed.
func (s *OrderService) RecalculateTotals(ctx context.Context, actor, orderID string) (decimal.Decimal, error) {
	tr := otel.Tracer("services/OrderService")
	ctx, span := tr.Start(ctx, "RecalculateTotals",
		trace.WithAttributes(attribute.String("order.id", orderID)),
	)
	defer span.End()

	var final decimal.Decimal
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := repo.GetOrderTree(ctx, tx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}
		totals := ComputeTotals(order)
		if err := persistTotals(ctx, tx, order, totals); err != nil {
			return err
		}
		final = totals.Final
		if !totals.Final.Equal(order.FinalTotal) {
			entry := auditRecalculated(orderID, actor, order.FinalTotal, totals.Final)
			return repo.AppendAudit(ctx, tx, &entry)
		}
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return final, nil
}

// DeleteOrder removes the order and its whole subtree, audit trail included.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID string) error {
	tr := otel.Tracer("services/OrderService")
	ctx, span := tr.Start(ctx, "DeleteOrder",
		trace.WithAttributes(attribute.String("order.id", orderID)),
	)
	defer span.End()

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repo.DeleteOrderTree(ctx, tx, orderID)
	})
	if errors.Is(err, repo.ErrNotFound) {
		return ErrOrderNotFound
	}
	return err
}

// ListAudit returns one page of an order's audit trail, oldest first.
func (s *OrderService) ListAudit(ctx context.Context, orderID string, page, perPage int) ([]domain.AuditEntry, int64, error) {
	tr := otel.Tracer("services/OrderService")
	ctx, span := tr.Start(ctx, "ListAudit",
		trace.WithAttributes(attribute.String("order.id", orderID)),
	)
	defer span.End()

	if _, err := repo.GetOrderTree(ctx, s.DB, orderID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, 0, ErrOrderNotFound
		}
		return nil, 0, err
	}
	total, err := repo.CountAudit(ctx, s.DB, orderID)
	if err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * perPage
	entries, err := repo.ListAuditPage(ctx, s.DB, orderID, offset, perPage)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// insertDeviceTree resolves and persists one device document with all its
// faults and lines, returning the stored device and its computed total.
func (s *OrderService) insertDeviceTree(ctx context.Context, tx *gorm.DB, orderID string, doc *DeviceDocument, now time.Time) (*domain.Device, decimal.Decimal, error) {
	brandID, modelID, err := s.Catalog.ResolveBrandModel(ctx, tx, doc.Brand, doc.Model)
	if err != nil {
		return nil, decimal.Zero, err
	}
	device := &domain.Device{
		OrderID:  orderID,
		BrandID:  brandID,
		ModelID:  modelID,
		IMEI:     doc.IMEI,
		Serial:   doc.Serial,
		Color:    doc.Color,
		Capacity: doc.Capacity,
		Status:   domain.DeviceReceived,
	}
	if err := repo.InsertDevice(ctx, tx, device); err != nil {
		return nil, decimal.Zero, err
	}

	deviceTotal := decimal.Zero
	for i := range doc.Faults {
		faultTotal, err := s.insertFaultTree(ctx, tx, device, &doc.Faults[i], now)
		if err != nil {
			return nil, decimal.Zero, err
		}
		deviceTotal = deviceTotal.Add(faultTotal)
	}
	if err := repo.UpdateDeviceTotal(ctx, tx, device.ID, deviceTotal); err != nil {
		return nil, decimal.Zero, err
	}
	return device, deviceTotal, nil
}

// insertFaultTree resolves and persists one fault document with its lines
// under an already stored device, returning the fault total.
func (s *OrderService) insertFaultTree(ctx context.Context, tx *gorm.DB, device *domain.Device, doc *FaultDocument, now time.Time) (decimal.Decimal, error) {
	faultTypeID, err := s.Catalog.ResolveFault(ctx, tx, doc.Name)
	if err != nil {
		return decimal.Zero, err
	}
	fault := &domain.Fault{
		DeviceID:    device.ID,
		FaultTypeID: faultTypeID,
		Name:        strings.TrimSpace(doc.Name),
		Symptoms:    doc.Symptoms,
		Priority:    doc.Priority,
		State:       domain.FaultPending,
		DueAt:       doc.Priority.SLADue(now),
	}
	if err := repo.InsertFault(ctx, tx, fault); err != nil {
		return decimal.Zero, err
	}
	total, err := s.insertLines(ctx, tx, device.ModelID, fault, doc.Lines)
	if err != nil {
		return decimal.Zero, err
	}
	if err := repo.UpdateFaultTotal(ctx, tx, fault.ID, total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// insertLines persists the intervention lines of one fault, auto-creating
// missing catalog interventions, and returns their sum.
func (s *OrderService) insertLines(ctx context.Context, tx *gorm.DB, modelID string, fault *domain.Fault, docs []LineDocument) (decimal.Decimal, error) {
	total := decimal.Zero
	for i := range docs {
		doc := &docs[i]
		interventionID, err := s.Catalog.ResolveOrCreateIntervention(ctx, tx, modelID, fault.FaultTypeID, doc.Name, doc.Kind, doc.UnitPrice)
		if err != nil {
			return decimal.Zero, err
		}
		lineTotal := doc.UnitPrice.Mul(decimal.NewFromInt(int64(doc.Quantity)))
		line := &domain.InterventionLine{
			FaultID:        fault.ID,
			InterventionID: interventionID,
			Name:           strings.TrimSpace(doc.Name),
			Kind:           doc.Kind,
			Quantity:       doc.Quantity,
			UnitPrice:      doc.UnitPrice,
			Total:          lineTotal,
		}
		if err := repo.InsertLine(ctx, tx, line); err != nil {
			return decimal.Zero, err
		}
		total = total.Add(lineTotal)
	}
	return total, nil
}

// applyDevicePlan applies one matched-device diff: overwrite the device row,
// delete dropped faults, update matched ones (replacing their lines), and
// insert new fault subtrees.
func (s *OrderService) applyDevicePlan(ctx context.Context, tx *gorm.DB, dp DevicePlan, now time.Time) error {
	brandID, modelID, err := s.Catalog.ResolveBrandModel(ctx, tx, dp.Doc.Brand, dp.Doc.Model)
	if err != nil {
		return err
	}
	device := &domain.Device{
		ID:       dp.Existing.ID,
		BrandID:  brandID,
		ModelID:  modelID,
		IMEI:     dp.Doc.IMEI,
		Serial:   dp.Doc.Serial,
		Color:    dp.Doc.Color,
		Capacity: dp.Doc.Capacity,
		Status:   dp.Existing.Status,
	}
	if err := repo.UpdateDevice(ctx, tx, device); err != nil {
		return err
	}

	for _, fault := range dp.FaultDeletes {
		if err := repo.DeleteFaultTree(ctx, tx, fault.ID); err != nil {
			return err
		}
	}

	for _, fp := range dp.FaultUpdates {
		faultTypeID, err := s.Catalog.ResolveFault(ctx, tx, fp.Doc.Name)
		if err != nil {
			return err
		}
		// The SLA window is recomputed only when the priority actually
		// changes; an unchanged fault keeps its original due date.
		dueAt := fp.Existing.DueAt
		if fp.Doc.Priority != fp.Existing.Priority {
			dueAt = fp.Doc.Priority.SLADue(now)
		}
		fault := &domain.Fault{
			ID:          fp.Existing.ID,
			DeviceID:    fp.Existing.DeviceID,
			FaultTypeID: faultTypeID,
			Name:        strings.TrimSpace(fp.Doc.Name),
			Symptoms:    fp.Doc.Symptoms,
			Priority:    fp.Doc.Priority,
			State:       fp.Existing.State,
			DueAt:       dueAt,
		}
		if err := repo.UpdateFault(ctx, tx, fault); err != nil {
			return err
		}
		if err := repo.DeleteLines(ctx, tx, fault.ID); err != nil {
			return err
		}
		if _, err := s.insertLines(ctx, tx, modelID, fault, fp.Doc.Lines); err != nil {
			return err
		}
	}

	for _, fp := range dp.FaultCreates {
		if _, err := s.insertFaultTree(ctx, tx, device, fp.Doc, now); err != nil {
			return err
		}
	}
	return nil
}

// persistTotals writes a computed total set back to storage row by row.
func persistTotals(ctx context.Context, tx *gorm.DB, order *domain.Order, totals OrderTotals) error {
	for di := range order.Devices {
		device := &order.Devices[di]
		for fi := range device.Faults {
			fault := &device.Faults[fi]
			for li := range fault.Lines {
				line := &fault.Lines[li]
				if err := tx.WithContext(ctx).Model(&domain.InterventionLine{}).
					Where("id = ?", line.ID).
					Update("total", totals.Lines[line.ID]).Error; err != nil {
					return err
				}
			}
			if err := repo.UpdateFaultTotal(ctx, tx, fault.ID, totals.Faults[fault.ID]); err != nil {
				return err
			}
		}
		if err := repo.UpdateDeviceTotal(ctx, tx, device.ID, totals.Devices[device.ID]); err != nil {
			return err
		}
	}
	return repo.UpdateOrderTotals(ctx, tx, order.ID, totals.Subtotal, totals.Final)
}

// validateDocument checks the shape of an incoming order document. Child ids
// are only legal on the update path.
func validateDocument(doc *OrderDocument, update bool) error {
	if doc == nil {
		return fmt.Errorf("%w: empty document", ErrValidation)
	}
	if strings.TrimSpace(doc.Client.NationalID) == "" {
		return fmt.Errorf("%w: client national_id is required", ErrValidation)
	}
	if strings.TrimSpace(doc.Client.Name) == "" {
		return fmt.Errorf("%w: client name is required", ErrValidation)
	}
	if len(doc.Devices) == 0 {
		return fmt.Errorf("%w: at least one device is required", ErrValidation)
	}
	if doc.Discount.IsNegative() {
		return fmt.Errorf("%w: discount cannot be negative", ErrValidation)
	}
	for di := range doc.Devices {
		device := &doc.Devices[di]
		if !update && device.ID != "" {
			return fmt.Errorf("%w: device ids are not accepted on create", ErrValidation)
		}
		if strings.TrimSpace(device.Brand) == "" || strings.TrimSpace(device.Model) == "" {
			return fmt.Errorf("%w: device %d needs brand and model", ErrValidation, di)
		}
		// A device with no faults can only exist as the leftover of an
		// update; intake always states why the device is here.
		if !update && len(device.Faults) == 0 {
			return fmt.Errorf("%w: device %d needs at least one fault", ErrValidation, di)
		}
		for fi := range device.Faults {
			fault := &device.Faults[fi]
			if !update && fault.ID != "" {
				return fmt.Errorf("%w: fault ids are not accepted on create", ErrValidation)
			}
			if strings.TrimSpace(fault.Name) == "" {
				return fmt.Errorf("%w: device %d fault %d needs a name", ErrValidation, di, fi)
			}
			if !fault.Priority.Valid() {
				return fmt.Errorf("%w: device %d fault %d has unknown priority %q", ErrValidation, di, fi, fault.Priority)
			}
			for li := range fault.Lines {
				line := &fault.Lines[li]
				if strings.TrimSpace(line.Name) == "" {
					return fmt.Errorf("%w: fault %d line %d needs a name", ErrValidation, fi, li)
				}
				if strings.TrimSpace(line.Kind) == "" {
					return fmt.Errorf("%w: fault %d line %d needs a kind", ErrValidation, fi, li)
				}
				if line.Quantity < 1 {
					return fmt.Errorf("%w: fault %d line %d quantity must be at least 1", ErrValidation, fi, li)
				}
				if line.UnitPrice.IsNegative() {
					return fmt.Errorf("%w: fault %d line %d unit price cannot be negative", ErrValidation, fi, li)
				}
			}
		}
	}
	return nil
}

func clientFromDocument(doc ClientDocument) domain.Client {
	return domain.Client{
		NationalID: strings.TrimSpace(doc.NationalID),
		Name:       strings.TrimSpace(doc.Name),
		Phone:      strings.TrimSpace(doc.Phone),
		Email:      strings.TrimSpace(doc.Email),
		Address:    strings.TrimSpace(doc.Address),
	}
}
