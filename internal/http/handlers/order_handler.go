// Order HTTP handlers.
//
// This file exposes REST endpoints for repair order resources:
//   - POST   /orders                    (create the whole aggregate)
//   - GET    /orders                    (list, paginated, ETag support)
//   - GET    /orders/{id}               (fetch one order tree)
//   - GET    /orders/number/{number}    (fetch by public order number)
//   - PUT    /orders/{id}               (reconcile against a new document)
//   - POST   /orders/{id}/status        (lifecycle transition)
//   - POST   /orders/{id}/recalculate   (repair stored totals)
//   - DELETE /orders/{id}               (remove the whole tree)
//   - GET    /orders/{id}/audit         (paginated change history)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
//
// Idempotency:
// If the client supplies an Idempotency-Key header on POST /orders and a
// previous successful result exists for (actor, key), the handler returns the
// recorded order and sets `Idempotency-Replayed: true`.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/reparatec/go-repair-backend/internal/domain"
	"github.com/reparatec/go-repair-backend/internal/http/middleware"
	"github.com/reparatec/go-repair-backend/internal/repo"
	"github.com/reparatec/go-repair-backend/internal/services"
	"github.com/reparatec/go-repair-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// OrderService defines order aggregate operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type OrderService interface {
	// CreateOrder persists a full order document atomically.
	CreateOrder(ctx context.Context, actor string, doc *services.OrderDocument) (*services.CreateOrderResult, error)
	// UpdateOrder reconciles the stored tree against a new document.
	UpdateOrder(ctx context.Context, actor, orderID string, doc *services.OrderDocument) (*services.UpdateOrderResult, error)
	// GetOrder returns the full order tree by id.
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	// GetOrderByNumber returns the full order tree by public number.
	GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error)
	// ListOrders returns a page of orders and the total count.
	ListOrders(ctx context.Context, page, perPage int) ([]domain.Order, int64, error)
	// TransitionStatus moves the order along its lifecycle.
	TransitionStatus(ctx context.Context, actor, orderID string, next domain.OrderStatus) error
	// RecalculateTotals recomputes stored totals from the line level up.
	RecalculateTotals(ctx context.Context, actor, orderID string) (decimal.Decimal, error)
	// DeleteOrder removes the order and every dependent row.
	DeleteOrder(ctx context.Context, orderID string) error
	// ListAudit returns a page of the order's change history and the total.
	ListAudit(ctx context.Context, orderID string, page, perPage int) ([]domain.AuditEntry, int64, error)
}

// ClientService defines client directory reads consumed by HTTP handlers.
type ClientService interface {
	// GetClient returns one client by id.
	GetClient(ctx context.Context, id string) (*domain.Client, error)
	// FindByNationalID resolves a client by natural key.
	FindByNationalID(ctx context.Context, nationalID string) (*domain.Client, error)
	// ListClients returns a page of clients and the total count.
	ListClients(ctx context.Context, page, perPage int) ([]domain.Client, int64, error)
	// ListOrders returns a page of a client's orders and the total count.
	ListOrders(ctx context.Context, clientID string, page, perPage int) ([]domain.Order, int64, error)
}

// CatalogService defines catalog reads consumed by HTTP handlers.
type CatalogService interface {
	ListBrands(ctx context.Context) ([]domain.Brand, error)
	ListModels(ctx context.Context, brandID string) ([]domain.DeviceModel, error)
	ListFaultTypes(ctx context.Context) ([]domain.FaultType, error)
	ListInterventions(ctx context.Context, modelID, faultTypeID string) ([]domain.Intervention, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for orders, clients, and the catalog.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	orderSvc  OrderService
	clientSvc ClientService
	catSvc    CatalogService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(orderSvc OrderService, clientSvc ClientService, catSvc CatalogService) *Handlers {
	return &Handlers{orderSvc: orderSvc, clientSvc: clientSvc, catSvc: catSvc}
}

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// OrderResponse wraps a single full order tree.
type OrderResponse struct {
	Order *domain.Order `json:"order"`
}

// ListOrdersResponse wraps a page of orders and pagination information.
type ListOrdersResponse struct {
	Orders     []domain.Order `json:"orders"`
	Pagination Pagination     `json:"pagination"`
}

// TransitionRequest is the JSON payload for a status transition.
type TransitionRequest struct {
	// Status is the target lifecycle state.
	Status string `json:"status" binding:"required" example:"diagnosed"`
}

// RecalculateResponse reports the authoritative total after a recalculation.
type RecalculateResponse struct {
	OrderID    string          `json:"order_id"`
	FinalTotal decimal.Decimal `json:"final_total"`
}

// ListAuditResponse wraps a page of audit entries and pagination information.
type ListAuditResponse struct {
	Entries    []domain.AuditEntry `json:"entries"`
	Pagination Pagination          `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// paginate builds the response metadata for one page.
func paginate(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// failService translates service-layer errors into HTTP responses. The
// fallback code is used for errors outside the service taxonomy (5xx).
func failService(c *gin.Context, err error, fallbackCode string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrOrderNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "order not found")
	case errors.Is(err, services.ErrClientNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "client not found")
	case errors.Is(err, services.ErrCatalogNotFound):
		fail(c, http.StatusUnprocessableEntity, ErrCodeCatalogNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		fail(c, http.StatusConflict, ErrCodeInvalidTransition, err.Error())
	case errors.Is(err, services.ErrConflict):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
	default:
		fail(c, http.StatusInternalServerError, fallbackCode, err.Error())
	}
}

// idempotencyKey extracts the key stashed by the idempotency middleware. The
// fallback behavior reads the "Idempotency-Key" header directly when no
// validator middleware is mounted.
func idempotencyKey(c *gin.Context) string {
	if k, okKey := middleware.GetIdempotencyKey(c); okKey {
		return k
	}
	return strings.TrimSpace(c.GetHeader(middleware.HeaderIdempotencyKey))
}

// orderDB exposes the underlying handle when the concrete service is wired in.
// Stub services used in tests return nil, which skips ETag and idempotency
// pre-checks.
func (h *Handlers) orderDB() *gorm.DB {
	if svc, okSvc := h.orderSvc.(*services.OrderService); okSvc {
		return svc.DB
	}
	return nil
}

//
// Handlers
//

// CreateOrder godoc
// @ID          createOrder
// @Summary     Create a repair order
// @Description Persists a full order document (client, devices, faults, intervention lines) atomically.
// @Description Supports idempotency via the Idempotency-Key header (same actor and key → same result).
// @Tags        Orders
// @Accept      json
// @Produce     json
//
// @Param       X-Actor          header  string  false "Acting staff member"  example(front-desk)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    services.OrderDocument  true  "Order document"
//
// @Success     201  {object}  services.CreateOrderResult
// @Success     200  {object}  handlers.OrderResponse  "Replayed result for a repeated Idempotency-Key"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     422  {object}  handlers.ErrorResponse  "Unknown catalog reference"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /orders [post]
func (h *Handlers) CreateOrder(c *gin.Context) {
	ctx := c.Request.Context()
	actor := middleware.ActorFrom(c)

	var doc services.OrderDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	// Idempotency (replay path) – read validated key if present.
	idemKey := idempotencyKey(c)
	if idemKey != "" {
		if db := h.orderDB(); db != nil {
			if rec, err := repo.GetIdempotency(ctx, db, actor, idemKey, time.Now().UTC()); err == nil && rec != nil {
				if prev, err2 := h.orderSvc.GetOrder(ctx, rec.OrderID); err2 == nil {
					c.Header("Idempotency-Replayed", "true")
					ok(c, http.StatusOK, OrderResponse{Order: prev})
					return
				}
			}
		}
	}

	res, err := h.orderSvc.CreateOrder(ctx, actor, &doc)
	middleware.CountOrderWrite("create", err)
	if err != nil {
		failService(c, err, ErrCodeCreateFailed)
		return
	}

	// Idempotency (store path) – best effort.
	if idemKey != "" {
		if db := h.orderDB(); db != nil {
			ttl := 24 * time.Hour
			_, _ = repo.CreateIdempotency(ctx, db, actor, idemKey, res.OrderID, http.StatusCreated, ttl)
		}
	}

	ok(c, http.StatusCreated, res)
}

// ListOrders godoc
// @ID          listOrders
// @Summary     List repair orders (paginated)
// @Description Returns a page of orders, newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Orders
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListOrdersResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /orders [get]
func (h *Handlers) ListOrders(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if db := h.orderDB(); db != nil {
		count, maxTS, err := repo.OrdersStats(ctx, db)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"orders:%d:%d"`, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.orderSvc.ListOrders(ctx, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	ok(c, http.StatusOK, ListOrdersResponse{
		Orders:     items,
		Pagination: paginate(page, pageSize, total),
	})
}

// GetOrder godoc
// @ID          getOrder
// @Summary     Fetch one repair order
// @Description Returns the full order tree (devices, faults, intervention lines) by id.
// @Tags        Orders
// @Produce     json
//
// @Param       id  path  string  true  "Order ID (UUID)"  format(uuid)
//
// @Success     200  {object} handlers.OrderResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Order not found"
// @Router      /orders/{id} [get]
func (h *Handlers) GetOrder(c *gin.Context) {
	orderID := c.Param("id")
	if _, err := uuid.Parse(orderID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "order id must be a UUID")
		return
	}

	o, err := h.orderSvc.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, OrderResponse{Order: o})
}

// GetOrderByNumber godoc
// @ID          getOrderByNumber
// @Summary     Fetch one repair order by public number
// @Tags        Orders
// @Produce     json
//
// @Param       number  path  string  true  "Order number"  example(R-2026-0001)
//
// @Success     200  {object} handlers.OrderResponse
// @Failure     404  {object} handlers.ErrorResponse "Order not found"
// @Router      /orders/number/{number} [get]
func (h *Handlers) GetOrderByNumber(c *gin.Context) {
	number := c.Param("number")

	o, err := h.orderSvc.GetOrderByNumber(c.Request.Context(), number)
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, OrderResponse{Order: o})
}

// UpdateOrder godoc
// @ID          updateOrder
// @Summary     Update a repair order
// @Description Reconciles the stored tree against the submitted document: devices and
// @Description faults are matched, created, and deleted as needed; totals are recomputed.
// @Tags        Orders
// @Accept      json
// @Produce     json
//
// @Param       X-Actor  header  string  false "Acting staff member"  example(front-desk)
// @Param       id       path    string  true  "Order ID (UUID)"      format(uuid)
// @Param       body     body    services.OrderDocument  true  "Order document"
//
// @Success     200  {object} services.UpdateOrderResult
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Order not found"
// @Failure     409  {object} handlers.ErrorResponse "Order in a terminal state or conflicting document"
// @Failure     422  {object} handlers.ErrorResponse "Unknown catalog reference"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /orders/{id} [put]
func (h *Handlers) UpdateOrder(c *gin.Context) {
	orderID := c.Param("id")
	if _, err := uuid.Parse(orderID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "order id must be a UUID")
		return
	}

	var doc services.OrderDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	res, err := h.orderSvc.UpdateOrder(c.Request.Context(), middleware.ActorFrom(c), orderID, &doc)
	middleware.CountOrderWrite("update", err)
	if err != nil {
		failService(c, err, ErrCodeUpdateFailed)
		return
	}
	ok(c, http.StatusOK, res)
}

// TransitionStatus godoc
// @ID          transitionOrderStatus
// @Summary     Move an order along its lifecycle
// @Description Applies a status transition (e.g., initiated → diagnosed). Illegal transitions are rejected.
// @Tags        Orders
// @Accept      json
// @Produce     json
//
// @Param       X-Actor  header  string  false "Acting staff member"  example(workshop)
// @Param       id       path    string  true  "Order ID (UUID)"      format(uuid)
// @Param       body     body    handlers.TransitionRequest  true  "Target status"
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Order not found"
// @Failure     409  {object} handlers.ErrorResponse "Illegal transition"
// @Router      /orders/{id}/status [post]
func (h *Handlers) TransitionStatus(c *gin.Context) {
	orderID := c.Param("id")
	if _, err := uuid.Parse(orderID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "order id must be a UUID")
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status required")
		return
	}

	err := h.orderSvc.TransitionStatus(c.Request.Context(), middleware.ActorFrom(c), orderID, domain.OrderStatus(req.Status))
	middleware.CountOrderWrite("status", err)
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	noContent(c)
}

// RecalculateTotals godoc
// @ID          recalculateOrderTotals
// @Summary     Recompute stored totals for an order
// @Description Recomputes every total from the intervention lines up and repairs any drift.
// @Tags        Orders
// @Produce     json
//
// @Param       X-Actor  header  string  false "Acting staff member"  example(back-office)
// @Param       id       path    string  true  "Order ID (UUID)"      format(uuid)
//
// @Success     200  {object} handlers.RecalculateResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Order not found"
// @Router      /orders/{id}/recalculate [post]
func (h *Handlers) RecalculateTotals(c *gin.Context) {
	orderID := c.Param("id")
	if _, err := uuid.Parse(orderID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "order id must be a UUID")
		return
	}

	final, err := h.orderSvc.RecalculateTotals(c.Request.Context(), middleware.ActorFrom(c), orderID)
	middleware.CountOrderWrite("recalculate", err)
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, RecalculateResponse{OrderID: orderID, FinalTotal: final})
}

// DeleteOrder godoc
// @ID          deleteOrder
// @Summary     Delete a repair order
// @Description Removes the order and every dependent row, including its audit trail.
// @Tags        Orders
//
// @Param       id  path  string  true  "Order ID (UUID)"  format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Order not found"
// @Router      /orders/{id} [delete]
func (h *Handlers) DeleteOrder(c *gin.Context) {
	orderID := c.Param("id")
	if _, err := uuid.Parse(orderID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "order id must be a UUID")
		return
	}

	err := h.orderSvc.DeleteOrder(c.Request.Context(), orderID)
	middleware.CountOrderWrite("delete", err)
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	noContent(c)
}

// ListAudit godoc
// @ID          listOrderAudit
// @Summary     List an order's change history
// @Description Returns a paginated list of audit entries for the order, oldest first.
// @Tags        Orders
// @Produce     json
//
// @Param       id         path   string  true  "Order ID (UUID)"  format(uuid)
// @Param       page       query  int     false "Page number"      minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"   minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListAuditResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Order not found"
// @Router      /orders/{id}/audit [get]
func (h *Handlers) ListAudit(c *gin.Context) {
	orderID := c.Param("id")
	if _, err := uuid.Parse(orderID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "order id must be a UUID")
		return
	}

	page, pageSize := clampPagination(c)
	entries, total, err := h.orderSvc.ListAudit(c.Request.Context(), orderID, page, pageSize)
	if err != nil {
		failService(c, err, ErrCodeListFailed)
		return
	}

	ok(c, http.StatusOK, ListAuditResponse{
		Entries:    entries,
		Pagination: paginate(page, pageSize, total),
	})
}
