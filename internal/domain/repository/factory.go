package repository

// Factory describes access to different domain repositories.
type Factory interface {
	Users() UserRepository
	Customers() CustomerRepository
	Catalog() CatalogRepository
	Orders() OrderRepository
	Invoices() InvoiceRepository
}
