package handler

import (
	"net/http"

	"github.com/tinks231/bizbooks/internal/dto"
	"github.com/tinks231/bizbooks/internal/middleware"
	"github.com/tinks231/bizbooks/internal/service"

	"github.com/gin-gonic/gin"
)

// FormsHandler drives server-side invoice forms: the client forwards
// keystrokes and clicks, and paints the dropdowns and row values it gets back.
type FormsHandler struct{ svc service.FormService }

func NewFormsHandler(svc service.FormService) *FormsHandler {
	return &FormsHandler{svc: svc}
}

// Create POST /v1/forms
func (h *FormsHandler) Create(c *gin.Context) {
	var req dto.CreateFormRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), middleware.TenantID(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get GET /v1/forms/:id
func (h *FormsHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Close DELETE /v1/forms/:id
func (h *FormsHandler) Close(c *gin.Context) {
	if err := h.svc.Close(c.Request.Context(), middleware.TenantID(c), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddRow POST /v1/forms/:id/rows
func (h *FormsHandler) AddRow(c *gin.Context) {
	var req dto.AddRowRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddRow(c.Request.Context(), middleware.TenantID(c), c.Param("id"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RemoveRow DELETE /v1/forms/:id/rows/:row_id
func (h *FormsHandler) RemoveRow(c *gin.Context) {
	if err := h.svc.RemoveRow(c.Request.Context(), middleware.TenantID(c), c.Param("id"), c.Param("row_id")); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateRow PATCH /v1/forms/:id/rows/:row_id
func (h *FormsHandler) UpdateRow(c *gin.Context) {
	var req dto.UpdateRowRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateRow(c.Request.Context(), middleware.TenantID(c), c.Param("id"), c.Param("row_id"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Input POST /v1/forms/:id/rows/:row_id/input
func (h *FormsHandler) Input(c *gin.Context) {
	var req dto.RowInputRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Input(c.Request.Context(), middleware.TenantID(c), c.Param("id"), c.Param("row_id"), req.Value)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Select POST /v1/forms/:id/rows/:row_id/select
func (h *FormsHandler) Select(c *gin.Context) {
	var req dto.RowSelectRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Select(c.Request.Context(), middleware.TenantID(c), c.Param("id"), c.Param("row_id"), req.Index)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Click POST /v1/forms/:id/click
func (h *FormsHandler) Click(c *gin.Context) {
	var req dto.ClickRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Click(c.Request.Context(), middleware.TenantID(c), c.Param("id"), req.Target)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
