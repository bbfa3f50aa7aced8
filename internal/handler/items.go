package handler

import (
	"net/http"
	"strconv"

	"github.com/tinks231/bizbooks/internal/apierror"
	"github.com/tinks231/bizbooks/internal/dto"
	"github.com/tinks231/bizbooks/internal/middleware"
	"github.com/tinks231/bizbooks/internal/service"

	"github.com/gin-gonic/gin"
)

// DropdownVisibleHeader tells the client whether to show the fragment.
const DropdownVisibleHeader = "X-Dropdown-Visible"

type ItemsHandler struct{ svc service.ItemService }

func NewItemsHandler(svc service.ItemService) *ItemsHandler {
	return &ItemsHandler{svc: svc}
}

// Create godoc
// @Summary Create a catalog item
// @Tags items
// @Accept json
// @Produce json
// @Param body body dto.CreateItemRequest true "Item"
// @Success 201 {object} dto.ItemResponse
// @Failure 422 {object} apierror.ValidationError
// @Failure 409 {object} apierror.APIError
// @Router /v1/items [post]
func (h *ItemsHandler) Create(c *gin.Context) {
	var req dto.CreateItemRequest
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

// List GET /v1/items
func (h *ItemsHandler) List(c *gin.Context) {
	var filter dto.ItemFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), middleware.TenantID(c), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get GET /v1/items/:id
func (h *ItemsHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, apierror.New("invalid item id"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), middleware.TenantID(c), uint(id))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Search godoc
// @Summary Item lookup for purchase bills
// @Description Queries shorter than two characters return an empty list.
// @Tags items
// @Produce json
// @Param q query string true "Name or item code fragment"
// @Success 200 {array} dto.ItemSearchResult
// @Router /v1/items/search [get]
func (h *ItemsHandler) Search(c *gin.Context) {
	resp, err := h.svc.Search(c.Request.Context(), middleware.TenantID(c), c.Query("q"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Dropdown godoc
// @Summary Render the autocomplete dropdown for a query
// @Tags items
// @Produce html
// @Param q query string false "Search text"
// @Param row_id query string true "Invoice row id"
// @Param price_field query string false "selling_price or cost_price"
// @Param max_results query int false "Result cap"
// @Success 200 {string} string "HTML fragment"
// @Router /v1/items/dropdown [get]
func (h *ItemsHandler) Dropdown(c *gin.Context) {
	var q dto.DropdownQuery
	if !bindQueryAndValidate(c, &q) {
		return
	}
	resp, err := h.svc.Dropdown(c.Request.Context(), middleware.TenantID(c), q)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.Header(DropdownVisibleHeader, strconv.FormatBool(resp.Visible))
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(resp.HTML))
}
