package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/autoparts/internal/domain/model"
	"github.com/polkiloo/autoparts/internal/server/http/dto"
)

// AdminHandler serves the operator dashboard.
type AdminHandler struct {
	facade AdminOrderFacade
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(facade AdminOrderFacade) *AdminHandler {
	return &AdminHandler{facade: facade}
}

// List handles GET /api/admin/orders?status=.
func (h *AdminHandler) List(c *gin.Context) {
	var status *model.OrderStatus
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		s := model.OrderStatus(strings.ToUpper(raw))
		status = &s
	}
	orders, err := h.facade.AdminOrders(c.Request.Context(), status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponses(orders))
}

// Get handles GET /api/admin/orders/:id.
func (h *AdminHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		badRequest(c, "invalid order id")
		return
	}
	order, err := h.facade.AdminOrder(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Advance handles POST /api/admin/orders/:id/advance.
func (h *AdminHandler) Advance(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		badRequest(c, "invalid order id")
		return
	}
	var req dto.AdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Target) == "" {
		badRequest(c, "target status is required")
		return
	}
	order, err := h.facade.AdvanceOrder(c.Request.Context(), id, model.OrderStatus(strings.ToUpper(req.Target)))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Cancel handles POST /api/admin/orders/:id/cancel. An empty body restores stock.
func (h *AdminHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		badRequest(c, "invalid order id")
		return
	}
	var req dto.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "malformed cancel request")
		return
	}
	restore := true
	if req.RestoreStock != nil {
		restore = *req.RestoreStock
	}
	order, err := h.facade.AdminCancelOrder(c.Request.Context(), id, restore)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Amend handles PUT /api/admin/orders/:id/items.
func (h *AdminHandler) Amend(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		badRequest(c, "invalid order id")
		return
	}
	var req dto.AmendRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Items) == 0 {
		badRequest(c, "items are required")
		return
	}
	quantities := make(map[int64]int, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity < 0 {
			badRequest(c, "quantity must not be negative")
			return
		}
		quantities[item.ProductID] = item.Quantity
	}
	order, err := h.facade.AmendOrder(c.Request.Context(), id, quantities)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// IssueInvoice handles POST /api/admin/orders/:id/invoice.
func (h *AdminHandler) IssueInvoice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		badRequest(c, "invalid order id")
		return
	}
	invoice, created, err := h.facade.IssueInvoice(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	c.JSON(status, toInvoiceResponse(invoice))
}
