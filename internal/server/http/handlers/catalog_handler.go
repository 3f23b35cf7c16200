package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/autoparts/internal/server/http/dto"
	"github.com/polkiloo/autoparts/internal/usecase"
)

// CatalogHandler serves products, cart quotes and the display rate.
type CatalogHandler struct {
	facade CatalogFacade
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(facade CatalogFacade) *CatalogHandler {
	return &CatalogHandler{facade: facade}
}

// Products handles GET /api/catalog/products.
func (h *CatalogHandler) Products(c *gin.Context) {
	views, err := h.facade.Products(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response := make([]dto.ProductResponse, 0, len(views))
	for _, v := range views {
		response = append(response, toProductResponse(v))
	}
	c.JSON(http.StatusOK, response)
}

// Product handles GET /api/catalog/products/:id.
func (h *CatalogHandler) Product(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		badRequest(c, "invalid product id")
		return
	}
	view, err := h.facade.Product(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(*view))
}

// Quote handles POST /api/cart/quote.
func (h *CatalogHandler) Quote(c *gin.Context) {
	var req dto.CartQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed cart")
		return
	}
	if len(req.Items) == 0 {
		badRequest(c, "cart is empty")
		return
	}

	lines := make([]usecase.CartLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, usecase.CartLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	quote, err := h.facade.QuoteCart(c.Request.Context(), lines)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartQuoteResponse(quote))
}

// Rate handles GET /api/catalog/rate.
func (h *CatalogHandler) Rate(c *gin.Context) {
	rate, ok := h.facade.ExchangeRate()
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, dto.RateResponse{
		Currency: rate.Currency,
		Rate:     rate.Rate.String(),
		AsOf:     rate.FetchedAt,
	})
}
