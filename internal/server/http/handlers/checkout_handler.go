package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/polkiloo/autoparts/internal/domain/model"
	"github.com/polkiloo/autoparts/internal/server/http/dto"
	"github.com/polkiloo/autoparts/internal/usecase"
)

// IdempotencyKeyHeader lets clients retry a checkout safely.
const IdempotencyKeyHeader = "Idempotency-Key"

// CheckoutHandler converts carts into orders.
type CheckoutHandler struct {
	facade CheckoutFacade
}

// NewCheckoutHandler constructs CheckoutHandler.
func NewCheckoutHandler(facade CheckoutFacade) *CheckoutHandler {
	return &CheckoutHandler{facade: facade}
}

// Checkout handles POST /api/checkout. A new order answers 201, a replayed
// Idempotency-Key answers 200 with the original order.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var key uuid.UUID
	if raw := c.GetHeader(IdempotencyKeyHeader); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, "invalid idempotency key")
			return
		}
		key = parsed
	}

	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed checkout")
		return
	}
	if len(req.Items) == 0 {
		badRequest(c, "cart is empty")
		return
	}

	lines := make([]model.LineItem, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, model.LineItem{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			FinalUnitPrice: item.FinalUnitPrice,
		})
	}

	r := req.Delivery.Recipient
	detail, created, err := h.facade.Checkout(c.Request.Context(), usecase.CheckoutInput{
		Key:    key,
		UserID: CurrentUserID(c),
		Lines:  lines,
		Delivery: model.DeliveryDetails{
			Method: model.DeliveryMethod(req.Delivery.Method),
			Recipient: model.Recipient{
				Name:       r.Name,
				NationalID: r.NationalID,
				Phone:      r.Phone,
				Address:    r.Address,
				City:       r.City,
				State:      r.State,
			},
		},
		Payment: model.PaymentDetails{
			Method:    model.PaymentMethod(req.Payment.Method),
			Reference: req.Payment.Reference,
			ProofURL:  req.Payment.ProofURL,
		},
	})
	if err != nil {
		writeError(c, err)
		return
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	c.JSON(status, toOrderResponse(*detail))
}
