package engine

import (
	"errors"
	"fmt"
	"strings"

	domainErrors "github.com/polkiloo/autoparts/internal/domain/errors"
	"github.com/polkiloo/autoparts/internal/domain/model"
)

type requiredField struct {
	name  string
	value func(model.Recipient) string
}

var (
	fieldName       = requiredField{"recipient.name", func(r model.Recipient) string { return r.Name }}
	fieldNationalID = requiredField{"recipient.national_id", func(r model.Recipient) string { return r.NationalID }}
	fieldPhone      = requiredField{"recipient.phone", func(r model.Recipient) string { return r.Phone }}
	fieldAddress    = requiredField{"recipient.address", func(r model.Recipient) string { return r.Address }}
	fieldCity       = requiredField{"recipient.city", func(r model.Recipient) string { return r.City }}
	fieldState      = requiredField{"recipient.state", func(r model.Recipient) string { return r.State }}
)

var deliveryRequirements = map[model.DeliveryMethod][]requiredField{
	model.DeliveryMethodPickup:   nil,
	model.DeliveryMethodLocal:    {fieldName, fieldPhone, fieldAddress},
	model.DeliveryMethodNational: {fieldName, fieldNationalID, fieldPhone, fieldAddress, fieldCity, fieldState},
}

// MissingDeliveryFields lists the recipient fields the method needs but lacks.
func MissingDeliveryFields(d model.DeliveryDetails) ([]string, error) {
	if strings.TrimSpace(string(d.Method)) == "" {
		return []string{"delivery.method"}, nil
	}
	fields, ok := deliveryRequirements[d.Method]
	if !ok {
		return nil, fmt.Errorf("%w: unknown delivery method %q", domainErrors.ErrInvalidInput, d.Method)
	}
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value(d.Recipient)) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing, nil
}

// MissingPaymentFields lists the payment fields the method needs but lacks.
func MissingPaymentFields(p model.PaymentDetails) ([]string, error) {
	if strings.TrimSpace(string(p.Method)) == "" {
		return []string{"payment.method"}, nil
	}
	if !p.Method.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", domainErrors.ErrInvalidInput, p.Method)
	}
	if !p.Method.Electronic() {
		return nil, nil
	}
	var missing []string
	if strings.TrimSpace(p.Reference) == "" {
		missing = append(missing, "payment.reference")
	}
	if strings.TrimSpace(p.ProofURL) == "" {
		missing = append(missing, "payment.proof")
	}
	return missing, nil
}

// RequireFields checks delivery and payment together so the caller gets every
// problem in one error. An unknown method is joined with the fields the other
// method still lacks.
func RequireFields(d model.DeliveryDetails, p model.PaymentDetails) error {
	var problems []error
	delivery, err := MissingDeliveryFields(d)
	if err != nil {
		problems = append(problems, err)
	}
	payment, err := MissingPaymentFields(p)
	if err != nil {
		problems = append(problems, err)
	}
	if missing := append(delivery, payment...); len(missing) > 0 {
		problems = append(problems, &domainErrors.MissingFieldsError{Fields: missing})
	}
	if len(problems) == 1 {
		return problems[0]
	}
	return errors.Join(problems...)
}

// Prefill fills blank recipient fields from the customer profile.
func Prefill(r model.Recipient, profile *model.CustomerProfile) model.Recipient {
	if profile == nil {
		return r
	}
	src := profile.Recipient()
	fill := func(dst *string, v string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = v
		}
	}
	fill(&r.Name, src.Name)
	fill(&r.NationalID, src.NationalID)
	fill(&r.Phone, src.Phone)
	fill(&r.Address, src.Address)
	fill(&r.City, src.City)
	fill(&r.State, src.State)
	return r
}
