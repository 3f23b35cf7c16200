package model

import "time"

// DeliveryMethod enumerates fulfillment channels.
type DeliveryMethod string

const (
	DeliveryMethodPickup   DeliveryMethod = "PICKUP"
	DeliveryMethodLocal    DeliveryMethod = "LOCAL_DELIVERY"
	DeliveryMethodNational DeliveryMethod = "NATIONAL_SHIPPING"
)

// Valid reports whether the method is known.
func (m DeliveryMethod) Valid() bool {
	switch m {
	case DeliveryMethodPickup, DeliveryMethodLocal, DeliveryMethodNational:
		return true
	}
	return false
}

// Recipient identifies who receives a shipment.
type Recipient struct {
	Name       string
	NationalID string
	Phone      string
	Address    string
	City       string
	State      string
}

// DeliveryDetails is what the customer submits at checkout.
type DeliveryDetails struct {
	Method    DeliveryMethod
	Recipient Recipient
}

// Shipment records how an order leaves the store.
type Shipment struct {
	ID        int64
	OrderID   int64
	Method    DeliveryMethod
	Recipient Recipient
	CreatedAt time.Time
}
