// Catalog HTTP handlers.
//
// Read-only endpoints over the device and repair catalog:
//   - GET /catalog/brands
//   - GET /catalog/brands/{id}/models
//   - GET /catalog/fault-types
//   - GET /catalog/interventions?model_id=&fault_type_id=
//
// The catalog itself grows through the order flow (unknown interventions are
// auto-created there), so there are no write endpoints.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ListBrands godoc
// @ID          listBrands
// @Summary     List device brands
// @Tags        Catalog
// @Produce     json
// @Success     200  {array}  domain.Brand
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /catalog/brands [get]
func (h *Handlers) ListBrands(c *gin.Context) {
	brands, err := h.catSvc.ListBrands(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, brands)
}

// ListModels godoc
// @ID          listModels
// @Summary     List device models for a brand
// @Tags        Catalog
// @Produce     json
// @Param       id  path  string  true  "Brand ID (UUID)"  format(uuid)
// @Success     200  {array}  domain.DeviceModel
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /catalog/brands/{id}/models [get]
func (h *Handlers) ListModels(c *gin.Context) {
	brandID := c.Param("id")
	if _, err := uuid.Parse(brandID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "brand id must be a UUID")
		return
	}

	models, err := h.catSvc.ListModels(c.Request.Context(), brandID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, models)
}

// ListFaultTypes godoc
// @ID          listFaultTypes
// @Summary     List known fault types
// @Tags        Catalog
// @Produce     json
// @Success     200  {array}  domain.FaultType
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /catalog/fault-types [get]
func (h *Handlers) ListFaultTypes(c *gin.Context) {
	fts, err := h.catSvc.ListFaultTypes(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, fts)
}

// ListInterventions godoc
// @ID          listInterventions
// @Summary     List priced interventions for one (model, fault type) pair
// @Tags        Catalog
// @Produce     json
// @Param       model_id       query  string  true  "Device model ID (UUID)"  format(uuid)
// @Param       fault_type_id  query  string  true  "Fault type ID (UUID)"    format(uuid)
// @Success     200  {array}  domain.Intervention
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /catalog/interventions [get]
func (h *Handlers) ListInterventions(c *gin.Context) {
	modelID := strings.TrimSpace(c.Query("model_id"))
	faultTypeID := strings.TrimSpace(c.Query("fault_type_id"))
	if modelID == "" || faultTypeID == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "model_id and fault_type_id are required")
		return
	}

	ivs, err := h.catSvc.ListInterventions(c.Request.Context(), modelID, faultTypeID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ivs)
}
