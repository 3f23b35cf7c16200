package model

import "time"

// Role distinguishes storefront customers from dashboard operators.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
)

// User represents a registered account.
type User struct {
	ID           int64
	Login        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// CustomerProfile holds contact data used for prefill and invoices.
type CustomerProfile struct {
	UserID     int64
	FullName   string
	NationalID string
	Phone      string
	Address    string
	City       string
	State      string
}

// Recipient converts the profile into shipment recipient data.
func (p CustomerProfile) Recipient() Recipient {
	return Recipient{
		Name:       p.FullName,
		NationalID: p.NationalID,
		Phone:      p.Phone,
		Address:    p.Address,
		City:       p.City,
		State:      p.State,
	}
}
