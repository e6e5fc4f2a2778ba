// Client HTTP handlers.
//
// This file exposes read-only REST endpoints for the client directory:
//   - GET /clients               (list, paginated; ?national_id= looks up one client)
//   - GET /clients/{id}          (fetch one client)
//   - GET /clients/{id}/orders   (list a client's orders, paginated, ETag support)
//
// Clients are created and updated exclusively through the order document flow,
// so there are no write endpoints here.
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reparatec/go-repair-backend/internal/domain"
	"github.com/reparatec/go-repair-backend/internal/repo"
	"github.com/reparatec/go-repair-backend/internal/services"
)

// ListClientsResponse wraps a page of clients and pagination information.
type ListClientsResponse struct {
	Clients    []domain.Client `json:"clients"`
	Pagination Pagination      `json:"pagination"`
}

// clientDB mirrors orderDB for the client service.
func (h *Handlers) clientDB() *gorm.DB {
	if svc, okSvc := h.clientSvc.(*services.ClientService); okSvc {
		return svc.DB
	}
	return nil
}

// ListClients godoc
// @ID          listClients
// @Summary     List clients (paginated)
// @Description Returns a page of clients ordered by name. When the national_id query
// @Description parameter is present, resolves that single client instead.
// @Tags        Clients
// @Produce     json
//
// @Param       national_id  query  string  false "Look up one client by national id"  example(X1234567)
// @Param       page         query  int     false "Page number"     minimum(1) default(1)
// @Param       page_size    query  int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListClientsResponse
// @Failure     404  {object} handlers.ErrorResponse "Client not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /clients [get]
func (h *Handlers) ListClients(c *gin.Context) {
	ctx := c.Request.Context()

	if nid := strings.TrimSpace(c.Query("national_id")); nid != "" {
		cl, err := h.clientSvc.FindByNationalID(ctx, nid)
		if err != nil {
			failService(c, err, ErrCodeInternal)
			return
		}
		ok(c, http.StatusOK, ListClientsResponse{
			Clients:    []domain.Client{*cl},
			Pagination: paginate(1, 1, 1),
		})
		return
	}

	page, pageSize := clampPagination(c)
	items, total, err := h.clientSvc.ListClients(ctx, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	ok(c, http.StatusOK, ListClientsResponse{
		Clients:    items,
		Pagination: paginate(page, pageSize, total),
	})
}

// GetClient godoc
// @ID          getClient
// @Summary     Fetch one client
// @Tags        Clients
// @Produce     json
//
// @Param       id  path  string  true  "Client ID (UUID)"  format(uuid)
//
// @Success     200  {object} domain.Client
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Client not found"
// @Router      /clients/{id} [get]
func (h *Handlers) GetClient(c *gin.Context) {
	clientID := c.Param("id")
	if _, err := uuid.Parse(clientID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "client id must be a UUID")
		return
	}

	cl, err := h.clientSvc.GetClient(c.Request.Context(), clientID)
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, cl)
}

// ListClientOrders godoc
// @ID          listClientOrders
// @Summary     List a client's orders (paginated)
// @Description Returns a page of the client's orders, newest first. Supports weak ETag
// @Description via If-None-Match and may return 304.
// @Tags        Clients
// @Produce     json
//
// @Param       id             path    string  true  "Client ID (UUID)"  format(uuid)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       page           query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListOrdersResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Client not found"
// @Router      /clients/{id}/orders [get]
func (h *Handlers) ListClientOrders(c *gin.Context) {
	ctx := c.Request.Context()
	clientID := c.Param("id")
	if _, err := uuid.Parse(clientID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "client id must be a UUID")
		return
	}

	// ETag pre-check (best effort).
	if db := h.clientDB(); db != nil {
		count, maxTS, err := repo.ClientOrdersStats(ctx, db, clientID)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"orders:%s:%d:%d"`, clientID, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	page, pageSize := clampPagination(c)
	items, total, err := h.clientSvc.ListOrders(ctx, clientID, page, pageSize)
	if err != nil {
		failService(c, err, ErrCodeListFailed)
		return
	}

	ok(c, http.StatusOK, ListOrdersResponse{
		Orders:     items,
		Pagination: paginate(page, pageSize, total),
	})
}
