package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/autoparts/internal/domain/errors"
	"github.com/polkiloo/autoparts/internal/server/http/dto"
)

// writeError maps domain failures to HTTP statuses. Typed failures carry
// their details in the response body.
func writeError(c *gin.Context, err error) {
	var (
		stock      *domainErrors.InsufficientStockError
		stale      *domainErrors.StalePricingError
		missing    *domainErrors.MissingFieldsError
		transition *domainErrors.InvalidTransitionError
		partial    *domainErrors.PartialCommitError
	)

	switch {
	case errors.As(err, &stock):
		resp := dto.ErrorResponse{Error: domainErrors.ErrInsufficientStock.Error()}
		for _, s := range stock.Shortfalls {
			resp.Shortfalls = append(resp.Shortfalls, toShortfallResponse(s))
		}
		c.JSON(http.StatusConflict, resp)
	case errors.As(err, &stale):
		resp := dto.ErrorResponse{Error: domainErrors.ErrStalePricing.Error()}
		for _, l := range stale.Lines {
			resp.StaleLines = append(resp.StaleLines, dto.StaleLineResponse{
				ProductID: l.ProductID,
				Captured:  l.Captured.StringFixed(2),
				Current:   l.Current.StringFixed(2),
			})
		}
		c.JSON(http.StatusConflict, resp)
	case errors.As(err, &missing):
		resp := dto.ErrorResponse{Error: domainErrors.ErrMissingRequiredField.Error(), Fields: missing.Fields}
		status := http.StatusUnprocessableEntity
		// An unknown method reported alongside the missing fields.
		if errors.Is(err, domainErrors.ErrInvalidInput) {
			resp.Error, status = err.Error(), http.StatusBadRequest
		}
		c.JSON(status, resp)
	case errors.As(err, &transition):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{
			Error: domainErrors.ErrInvalidTransition.Error(),
			From:  transition.From,
			To:    transition.To,
		})
	case errors.As(err, &partial):
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: domainErrors.ErrPartialCommit.Error(),
			Stage: partial.Stage,
		})
	case errors.Is(err, domainErrors.ErrInvalidInput), errors.Is(err, domainErrors.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainErrors.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: domainErrors.ErrNotFound.Error()})
	case errors.Is(err, domainErrors.ErrForbidden):
		c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: domainErrors.ErrForbidden.Error()})
	case errors.Is(err, domainErrors.ErrOrderLocked),
		errors.Is(err, domainErrors.ErrInvoiceNotReady),
		errors.Is(err, domainErrors.ErrAlreadyExists):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	default:
		c.Status(http.StatusInternalServerError)
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: msg})
}
