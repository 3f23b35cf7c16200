package handlers

import (
	domainErrors "github.com/polkiloo/autoparts/internal/domain/errors"
	"github.com/polkiloo/autoparts/internal/domain/model"
	"github.com/polkiloo/autoparts/internal/engine"
	"github.com/polkiloo/autoparts/internal/server/http/dto"
	"github.com/polkiloo/autoparts/internal/usecase"
)

func toDisplayResponse(d *usecase.Display) *dto.DisplayResponse {
	if d == nil {
		return nil
	}
	return &dto.DisplayResponse{
		Currency: d.Currency,
		Rate:     d.Rate.String(),
		Amount:   d.Amount.StringFixed(2),
		AsOf:     d.AsOf,
	}
}

func toProductResponse(v usecase.ProductView) dto.ProductResponse {
	resp := dto.ProductResponse{
		ID:             v.Product.ID,
		SKU:            v.Product.SKU,
		Name:           v.Product.Name,
		Stock:          v.Product.Stock,
		UnitPrice:      v.Price.UnitPrice.StringFixed(2),
		FinalUnitPrice: v.Price.FinalUnitPrice.StringFixed(2),
		DiscountPct:    v.Price.DiscountPct.StringFixed(2),
		DiscountSource: string(v.Price.Source),
		Display:        toDisplayResponse(v.Display),
	}
	if v.Category != nil {
		resp.Category = &dto.CategoryResponse{
			ID:          v.Category.ID,
			Name:        v.Category.Name,
			DiscountPct: v.Category.DiscountPct.StringFixed(2),
		}
	}
	return resp
}

func toLineItemResponses(items []model.LineItem) []dto.LineItemResponse {
	out := make([]dto.LineItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, dto.LineItemResponse{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice.StringFixed(2),
			FinalUnitPrice: item.FinalUnitPrice.StringFixed(2),
			DiscountPct:    item.DiscountPct.StringFixed(2),
			DiscountSource: string(item.DiscountSource),
			LineTotal:      engine.LineTotal(item).StringFixed(2),
		})
	}
	return out
}

func toTotalsResponse(t model.Totals) dto.TotalsResponse {
	return dto.TotalsResponse{
		SubtotalBeforeDiscount: t.SubtotalBeforeDiscount.StringFixed(2),
		TotalDiscount:          t.TotalDiscount.StringFixed(2),
		GrandTotal:             t.GrandTotal.StringFixed(2),
	}
}

func toShortfallResponse(s domainErrors.Shortfall) dto.ShortfallResponse {
	return dto.ShortfallResponse{ProductID: s.ProductID, Requested: s.Requested, Available: s.Available}
}

func toCartQuoteResponse(q *usecase.CartQuote) dto.CartQuoteResponse {
	resp := dto.CartQuoteResponse{
		Items:       toLineItemResponses(q.Items),
		Totals:      toTotalsResponse(q.Totals),
		Unavailable: q.Unavailable,
		Display:     toDisplayResponse(q.Display),
	}
	for _, s := range q.Shortfalls {
		resp.Shortfalls = append(resp.Shortfalls, toShortfallResponse(s))
	}
	return resp
}

func toRecipientPayload(r model.Recipient) dto.RecipientPayload {
	return dto.RecipientPayload{
		Name:       r.Name,
		NationalID: r.NationalID,
		Phone:      r.Phone,
		Address:    r.Address,
		City:       r.City,
		State:      r.State,
	}
}

func toOrderResponse(d usecase.OrderDetail) dto.OrderResponse {
	o := d.Order
	resp := dto.OrderResponse{
		ID:           o.ID,
		UserID:       o.UserID,
		Status:       string(o.Status),
		Items:        toLineItemResponses(o.Items),
		Totals:       toTotalsResponse(d.Totals),
		InvoiceID:    o.InvoiceID,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
		ProcessingAt: o.ProcessingAt,
		ShippedAt:    o.ShippedAt,
		DeliveredAt:  o.DeliveredAt,
		CancelledAt:  o.CancelledAt,
	}
	if d.NextStatus != nil {
		next := string(*d.NextStatus)
		resp.NextStatus = &next
	}
	if o.Payment != nil {
		resp.Payment = &dto.PaymentResponse{
			Method:    string(o.Payment.Method),
			Reference: o.Payment.Reference,
			ProofURL:  o.Payment.ProofURL,
			Amount:    o.Payment.Amount.StringFixed(2),
		}
	}
	if o.Shipment != nil {
		resp.Shipment = &dto.ShipmentResponse{
			Method:    string(o.Shipment.Method),
			Recipient: toRecipientPayload(o.Shipment.Recipient),
		}
	}
	return resp
}

func toOrderResponses(details []usecase.OrderDetail) []dto.OrderResponse {
	out := make([]dto.OrderResponse, 0, len(details))
	for _, d := range details {
		out = append(out, toOrderResponse(d))
	}
	return out
}

func toProfileResponse(p model.CustomerProfile) dto.ProfileResponse {
	return dto.ProfileResponse{
		FullName:   p.FullName,
		NationalID: p.NationalID,
		Phone:      p.Phone,
		Address:    p.Address,
		City:       p.City,
		State:      p.State,
	}
}

func toInvoiceResponse(v *usecase.InvoiceView) dto.InvoiceResponse {
	return dto.InvoiceResponse{
		ID:       v.Invoice.ID,
		Number:   v.Invoice.Number,
		OrderID:  v.Invoice.OrderID,
		Customer: toProfileResponse(v.Invoice.Customer),
		Items:    toLineItemResponses(v.Order.Items),
		Totals:   toTotalsResponse(v.Totals),
		Display:  toDisplayResponse(v.Display),
		IssuedAt: v.Invoice.IssuedAt,
	}
}
