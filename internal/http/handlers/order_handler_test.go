package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/reparatec/go-repair-backend/internal/domain"
	"github.com/reparatec/go-repair-backend/internal/repo"
	"github.com/reparatec/go-repair-backend/internal/services"
)

// ---------- test DB + real service wiring ----------

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique DSN per call to avoid cross-test contamination
	dsn := fmt.Sprintf("file:order_handlers_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	db.Exec("PRAGMA foreign_keys=ON;")
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := repo.SeedCatalog(context.Background(), db); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	return db
}

func newHandlers(db *gorm.DB) *Handlers {
	return New(
		&services.OrderService{DB: db, Catalog: services.StoreResolver{}},
		&services.ClientService{DB: db},
		&services.CatalogService{DB: db},
	)
}

// orderRouter mounts the order routes the way the real router does.
func orderRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/orders", h.CreateOrder)
	r.GET("/orders", h.ListOrders)
	r.GET("/orders/:id", h.GetOrder)
	r.GET("/orders/number/:number", h.GetOrderByNumber)
	r.PUT("/orders/:id", h.UpdateOrder)
	r.POST("/orders/:id/status", h.TransitionStatus)
	r.POST("/orders/:id/recalculate", h.RecalculateTotals)
	r.DELETE("/orders/:id", h.DeleteOrder)
	r.GET("/orders/:id/audit", h.ListAudit)
	return r
}

// handlerDoc matches the seeded catalog: Apple iPhone 14 with one fault and
// two lines totalling 50.00.
func handlerDoc() *services.OrderDocument {
	return &services.OrderDocument{
		Client: services.ClientDocument{
			NationalID: "X1234567",
			Name:       "Alice Papadaki",
			Phone:      "+30 691 000 0000",
		},
		Devices: []services.DeviceDocument{
			{
				Brand: "Apple", Model: "iPhone 14", IMEI: "356938035643809",
				Faults: []services.FaultDocument{
					{
						Name: "ScreenCrack", Symptoms: "spiderweb crack", Priority: domain.PriorityHigh,
						Lines: []services.LineDocument{
							{Name: "Screen swap", Kind: "repair", Quantity: 1, UnitPrice: decimal.RequireFromString("40.00")},
							{Name: "Diagnostics", Kind: "repair", Quantity: 1, UnitPrice: decimal.RequireFromString("10.00")},
						},
					},
				},
			},
		},
	}
}

func postDoc(t *testing.T, r *gin.Engine, doc *services.OrderDocument, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal doc: %v", err)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

func createOrder(t *testing.T, r *gin.Engine) services.CreateOrderResult {
	t.Helper()
	w := postDoc(t, r, handlerDoc(), nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create -> %d body=%s", w.Code, w.Body.String())
	}
	var res services.CreateOrderResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("json: %v", err)
	}
	return res
}

// ---------- stubs ----------

type stubOrderSvc struct {
	create     func(context.Context, string, *services.OrderDocument) (*services.CreateOrderResult, error)
	update     func(context.Context, string, string, *services.OrderDocument) (*services.UpdateOrderResult, error)
	get        func(context.Context, string) (*domain.Order, error)
	listOrders func(context.Context, int, int) ([]domain.Order, int64, error)
}

func (s stubOrderSvc) CreateOrder(ctx context.Context, actor string, doc *services.OrderDocument) (*services.CreateOrderResult, error) {
	if s.create != nil {
		return s.create(ctx, actor, doc)
	}
	return &services.CreateOrderResult{OrderID: "o", OrderNumber: "R-2026-0001"}, nil
}

func (s stubOrderSvc) UpdateOrder(ctx context.Context, actor, id string, doc *services.OrderDocument) (*services.UpdateOrderResult, error) {
	if s.update != nil {
		return s.update(ctx, actor, id, doc)
	}
	return &services.UpdateOrderResult{OrderNumber: "R-2026-0001"}, nil
}

func (s stubOrderSvc) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	if s.get != nil {
		return s.get(ctx, id)
	}
	return nil, services.ErrOrderNotFound
}

func (s stubOrderSvc) GetOrderByNumber(context.Context, string) (*domain.Order, error) {
	return nil, services.ErrOrderNotFound
}

func (s stubOrderSvc) ListOrders(ctx context.Context, page, perPage int) ([]domain.Order, int64, error) {
	if s.listOrders != nil {
		return s.listOrders(ctx, page, perPage)
	}
	return nil, 0, nil
}

func (s stubOrderSvc) TransitionStatus(context.Context, string, string, domain.OrderStatus) error {
	return nil
}

func (s stubOrderSvc) RecalculateTotals(context.Context, string, string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (s stubOrderSvc) DeleteOrder(context.Context, string) error { return nil }

func (s stubOrderSvc) ListAudit(context.Context, string, int, int) ([]domain.AuditEntry, int64, error) {
	return nil, 0, nil
}

type stubClientSvc struct{}

func (stubClientSvc) GetClient(context.Context, string) (*domain.Client, error) {
	return nil, services.ErrClientNotFound
}

func (stubClientSvc) FindByNationalID(context.Context, string) (*domain.Client, error) {
	return nil, services.ErrClientNotFound
}

func (stubClientSvc) ListClients(context.Context, int, int) ([]domain.Client, int64, error) {
	return nil, 0, nil
}

func (stubClientSvc) ListOrders(context.Context, string, int, int) ([]domain.Order, int64, error) {
	return nil, 0, nil
}

type stubCatSvc struct{}

func (stubCatSvc) ListBrands(context.Context) ([]domain.Brand, error)        { return nil, nil }
func (stubCatSvc) ListModels(context.Context, string) ([]domain.DeviceModel, error) {
	return nil, nil
}
func (stubCatSvc) ListFaultTypes(context.Context) ([]domain.FaultType, error) { return nil, nil }
func (stubCatSvc) ListInterventions(context.Context, string, string) ([]domain.Intervention, error) {
	return nil, nil
}

func stubHandlers(o OrderService) *Handlers { return New(o, stubClientSvc{}, stubCatSvc{}) }

// ---------- helpers-only tests ----------

func Test_clampPagination_and_paginate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=-5&page_size=9999", nil)
	p, ps := clampPagination(c)
	if p != 1 || ps != 100 {
		t.Fatalf("clamp bounds got p=%d ps=%d", p, ps)
	}

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=&page_size=0", nil)
	p, ps = clampPagination(c)
	if p != 1 || ps != 1 {
		t.Fatalf("clamp defaults got p=%d ps=%d", p, ps)
	}

	pg := paginate(1, 2, 3)
	if pg.TotalPages != 2 || !pg.HasNext {
		t.Fatalf("paginate mismatch: %#v", pg)
	}
	pg = paginate(2, 2, 3)
	if pg.HasNext {
		t.Fatalf("last page should not have next: %#v", pg)
	}
}

// ---------- CreateOrder ----------

func TestCreateOrder_BadJSON_Validation_Success(t *testing.T) {
	db := newHandlerDB(t)
	r := orderRouter(newHandlers(db))

	// Bad JSON -> 400
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString("{bad"))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad json -> %d", w.Code)
	}

	// Missing devices -> 400 with bad_request code
	doc := handlerDoc()
	doc.Devices = nil
	w = postDoc(t, r, doc, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("validation -> %d body=%s", w.Code, w.Body.String())
	}
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil || er.Code != ErrCodeBadRequest {
		t.Fatalf("error envelope: %s", w.Body.String())
	}

	// Success -> 201 with number and total
	res := createOrder(t, r)
	if res.OrderNumber == "" || res.OrderID == "" {
		t.Fatalf("incomplete result: %#v", res)
	}
	if !res.FinalTotal.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("final total = %s", res.FinalTotal)
	}
}

func TestCreateOrder_UnknownCatalogEntry_422(t *testing.T) {
	db := newHandlerDB(t)
	r := orderRouter(newHandlers(db))

	doc := handlerDoc()
	doc.Devices[0].Brand = "Nokia"
	doc.Devices[0].Model = "3310"
	w := postDoc(t, r, doc, nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("catalog miss -> %d body=%s", w.Code, w.Body.String())
	}
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil || er.Code != ErrCodeCatalogNotFound {
		t.Fatalf("error envelope: %s", w.Body.String())
	}
}

func TestCreateOrder_IdempotencyReplay(t *testing.T) {
	db := newHandlerDB(t)
	r := orderRouter(newHandlers(db))

	hdrs := map[string]string{"Idempotency-Key": "retry-1", "X-Actor": "maria"}

	w := postDoc(t, r, handlerDoc(), hdrs)
	if w.Code != http.StatusCreated {
		t.Fatalf("first create -> %d body=%s", w.Code, w.Body.String())
	}
	var res services.CreateOrderResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("json: %v", err)
	}

	// Same actor and key -> replayed order, no second aggregate.
	w2 := postDoc(t, r, handlerDoc(), hdrs)
	if w2.Code != http.StatusOK {
		t.Fatalf("replay -> %d body=%s", w2.Code, w2.Body.String())
	}
	if w2.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatalf("missing replay header")
	}
	var out OrderResponse
	if err := json.Unmarshal(w2.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.Order == nil || out.Order.ID != res.OrderID {
		t.Fatalf("replayed wrong order: %#v", out.Order)
	}

	// A different actor with the same key creates a fresh order.
	w3 := postDoc(t, r, handlerDoc(), map[string]string{"Idempotency-Key": "retry-1", "X-Actor": "kostas"})
	if w3.Code != http.StatusCreated {
		t.Fatalf("other actor -> %d body=%s", w3.Code, w3.Body.String())
	}

	var count int64
	if err := db.Model(&domain.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("orders persisted = %d, want 2", count)
	}
}

// ---------- ListOrders ----------

func TestListOrders_ETag304_and_SuccessPage(t *testing.T) {
	db := newHandlerDB(t)
	h := newHandlers(db)
	r := orderRouter(h)

	createOrder(t, r)
	createOrder(t, r)

	count, maxTS, err := repo.OrdersStats(context.Background(), db)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	var ts int64
	if maxTS != nil {
		ts = maxTS.Unix()
	}
	etag := fmt.Sprintf(`W/"orders:%d:%d"`, count, ts)

	// 304 path
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("If-None-Match", etag)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Fatalf("etag 304 -> %d", w.Code)
	}

	// 200 success with pagination
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/orders?page=1&page_size=1", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list -> %d body=%s", w.Code, w.Body.String())
	}
	var out ListOrdersResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(out.Orders) != 1 || out.Pagination.Total != 2 || !out.Pagination.HasNext {
		t.Fatalf("page mismatch: %#v", out.Pagination)
	}
}

func TestListOrders_SkipETagPrecheck_And_ListError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Stub service (not *services.OrderService) so db==nil → ETag pre-check skipped.
	svc := stubOrderSvc{
		listOrders: func(context.Context, int, int) ([]domain.Order, int64, error) {
			return nil, 0, gorm.ErrInvalidField
		},
	}
	r := orderRouter(stubHandlers(svc))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("If-None-Match", `W/"nope"`)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on list error; got %d body=%s", w.Code, w.Body.String())
	}
}

// ---------- GetOrder / GetOrderByNumber ----------

func TestGetOrder_BadUUID_NotFound_Success(t *testing.T) {
	db := newHandlerDB(t)
	r := orderRouter(newHandlers(db))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/not-a-uuid", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad uuid -> %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/"+uuid.NewString(), nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing -> %d", w.Code)
	}

	res := createOrder(t, r)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/"+res.OrderID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("get -> %d body=%s", w.Code, w.Body.String())
	}
	var out OrderResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.Order.Number != res.OrderNumber || len(out.Order.Devices) != 1 {
		t.Fatalf("unexpected order: %#v", out.Order)
	}
}

func TestGetOrderByNumber(t *testing.T) {
	db := newHandlerDB(t)
	r := orderRouter(newHandlers(db))
	res := createOrder(t, r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/number/"+res.OrderNumber, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("by number -> %d body=%s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/number/R-1999-9999", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown number -> %d", w.Code)
	}
}

// ---------- UpdateOrder ----------

func TestUpdateOrder_Reconciles(t *testing.T) {
	db := newHandlerDB(t)
	r := orderRouter(newHandlers(db))
	res := createOrder(t, r)

	// Drop the Diagnostics line: total falls from 50.00 to 40.00.
	doc := handlerDoc()
	doc.Devices[0].Faults[0].Lines = doc.Devices[0].Faults[0].Lines[:1]
	body, _ := json.Marshal(doc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/orders/"+res.OrderID, bytes.NewReader(body))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("update -> %d body=%s", w.Code, w.Body.String())
	}
	var out services.UpdateOrderResult
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !out.PreviousTotal.Equal(decimal.RequireFromString("50.00")) ||
		!out.NewTotal.Equal(decimal.RequireFromString("40.00")) {
		t.Fatalf("totals: prev=%s new=%s", out.PreviousTotal, out.NewTotal)
	}
}

func TestUpdateOrder_BadUUID_NotFound(t *testing.T) {
	db := newHandlerDB(t)
	r := orderRouter(newHandlers(db))
	body, _ := json.Marshal(handlerDoc())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/orders/nope", bytes.NewReader(body)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad uuid -> %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/orders/"+uuid.NewString(), bytes.NewReader(body)))
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing -> %d body=%s", w.Code, w.Body.String())
	}
}

func TestUpdateOrder_TerminalState_Conflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := stubOrderSvc{
		update: func(context.Context, string, string, *services.OrderDocument) (*services.UpdateOrderResult, error) {
			return nil, fmt.Errorf("%w: order is delivered", services.ErrConflict)
		},
	}
	r := orderRouter(stubHandlers(svc))

	body, _ := json.Marshal(handlerDoc())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/orders/"+uuid.NewString(), bytes.NewReader(body)))
	if w.Code != http.StatusConflict {
		t.Fatalf("terminal -> %d body=%s", w.Code, w.Body.String())
	}
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil || er.Code != ErrCodeConflict {
		t.Fatalf("error envelope: %s", w.Body.String())
	}
}

// ---------- TransitionStatus ----------

func TestTransitionStatus_Flow(t *testing.T) {
	db := newHandlerDB(t)
	r := orderRouter(newHandlers(db))
	res := createOrder(t, r)

	post := func(id, body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/orders/"+id+"/status", bytes.NewBufferString(body))
		r.ServeHTTP(w, req)
		return w
	}

	if w := post(res.OrderID, `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("missing status -> %d", w.Code)
	}
	if w := post(res.OrderID, `{"status":"flying"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown status -> %d body=%s", w.Code, w.Body.String())
	}
	// initiated → ready skips the required intermediate states.
	if w := post(res.OrderID, `{"status":"ready"}`); w.Code != http.StatusConflict {
		t.Fatalf("illegal transition -> %d body=%s", w.Code, w.Body.String())
	}
	if w := post(res.OrderID, `{"status":"diagnosed"}`); w.Code != http.StatusNoContent {
		t.Fatalf("legal transition -> %d body=%s", w.Code, w.Body.String())
	}

	stored, err := repo.GetOrderTree(context.Background(), db, res.OrderID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Status != domain.StatusDiagnosed {
		t.Fatalf("status = %s", stored.Status)
	}
}

// ---------- RecalculateTotals ----------

func TestRecalculateTotals_RepairsDrift(t *testing.T) {
	db := newHandlerDB(t)
	r := orderRouter(newHandlers(db))
	res := createOrder(t, r)

	// Introduce drift directly in storage.
	if err := db.Model(&domain.Order{}).Where("id = ?", res.OrderID).
		Update("final_total", decimal.RequireFromString("999.00")).Error; err != nil {
		t.Fatalf("drift: %v", err)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/orders/"+res.OrderID+"/recalculate", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("recalculate -> %d body=%s", w.Code, w.Body.String())
	}
	var out RecalculateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !out.FinalTotal.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("final total = %s", out.FinalTotal)
	}
}

// ---------- DeleteOrder ----------

func TestDeleteOrder(t *testing.T) {
	db := newHandlerDB(t)
	r := orderRouter(newHandlers(db))
	res := createOrder(t, r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/orders/"+res.OrderID, nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete -> %d body=%s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/"+res.OrderID, nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("after delete -> %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/orders/"+uuid.NewString(), nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing -> %d", w.Code)
	}
}

// ---------- ListAudit ----------

func TestListAudit(t *testing.T) {
	db := newHandlerDB(t)
	r := orderRouter(newHandlers(db))
	res := createOrder(t, r)

	// A status change appends a second entry.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders/"+res.OrderID+"/status", bytes.NewBufferString(`{"status":"diagnosed"}`))
	req.Header.Set("X-Actor", "workshop")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("transition -> %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/"+res.OrderID+"/audit", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("audit -> %d body=%s", w.Code, w.Body.String())
	}
	var out ListAuditResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.Pagination.Total != 2 || len(out.Entries) != 2 {
		t.Fatalf("audit entries: %#v", out.Pagination)
	}
}
