package test

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/autoparts/internal/domain/errors"
	"github.com/polkiloo/autoparts/internal/domain/model"
	"github.com/polkiloo/autoparts/internal/domain/repository"
	"github.com/polkiloo/autoparts/internal/engine"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	Users map[string]*model.User
	ByID  map[int64]*model.User
	Next  int64
	Err   error
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[int64]*model.User),
		Next:  1,
	}
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, login, passwordHash string, role model.Role) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Users == nil {
		s.Users = make(map[string]*model.User)
	}
	if s.ByID == nil {
		s.ByID = make(map[int64]*model.User)
	}
	if _, exists := s.Users[login]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	user := &model.User{ID: s.Next, Login: login, PasswordHash: passwordHash, Role: role}
	s.Next++
	s.Users[login] = user
	s.ByID[user.ID] = user
	return user, nil
}

// GetByLogin fetches user by login or returns not found.
func (s *UserRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[login]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// CustomerRepositoryStub keeps customer profiles in memory.
type CustomerRepositoryStub struct {
	Profiles  map[int64]model.CustomerProfile
	GetErr    error
	UpsertErr error
}

// Upsert stores the profile.
func (s *CustomerRepositoryStub) Upsert(ctx context.Context, profile model.CustomerProfile) error {
	if s.UpsertErr != nil {
		return s.UpsertErr
	}
	if s.Profiles == nil {
		s.Profiles = make(map[int64]model.CustomerProfile)
	}
	s.Profiles[profile.UserID] = profile
	return nil
}

// Get returns a copy of the stored profile.
func (s *CustomerRepositoryStub) Get(ctx context.Context, userID int64) (*model.CustomerProfile, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	profile, ok := s.Profiles[userID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &profile, nil
}

// CatalogRepositoryStub serves products and categories from memory. Stock is
// shared with OrderRepositoryStub so checkouts can consume it.
type CatalogRepositoryStub struct {
	mu         sync.Mutex
	Products   map[int64]model.Product
	Categories map[int64]model.Category
	Err        error

	// AfterRead runs after GetProductsByIDs releases the catalog, letting
	// tests change stock between a snapshot and a checkout.
	AfterRead func()
}

// NewCatalogRepositoryStub indexes the given rows.
func NewCatalogRepositoryStub(products []model.Product, categories []model.Category) *CatalogRepositoryStub {
	s := &CatalogRepositoryStub{
		Products:   make(map[int64]model.Product, len(products)),
		Categories: make(map[int64]model.Category, len(categories)),
	}
	for _, p := range products {
		s.Products[p.ID] = p
	}
	for _, c := range categories {
		s.Categories[c.ID] = c
	}
	return s
}

// ListProducts returns every product ordered by id.
func (s *CatalogRepositoryStub) ListProducts(ctx context.Context) ([]model.Product, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Product, 0, len(s.Products))
	for _, p := range s.Products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetProduct returns a product or not found.
func (s *CatalogRepositoryStub) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.Products[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &p, nil
}

// GetProductsByIDs returns the known products among ids.
func (s *CatalogRepositoryStub) GetProductsByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	products := s.lookup(ids)
	s.mu.Unlock()
	if s.AfterRead != nil {
		s.AfterRead()
	}
	return products, nil
}

// ListCategories returns every category ordered by id.
func (s *CatalogRepositoryStub) ListCategories(ctx context.Context) ([]model.Category, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Category, 0, len(s.Categories))
	for _, c := range s.Categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetCategoriesByIDs returns the known categories among ids.
func (s *CatalogRepositoryStub) GetCategoriesByIDs(ctx context.Context, ids []int64) ([]model.Category, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Category, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.Categories[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// Stock returns the current stock of a product.
func (s *CatalogRepositoryStub) Stock(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Products[id].Stock
}

// SetStock overwrites the stock of a product, e.g. to simulate a concurrent sale.
func (s *CatalogRepositoryStub) SetStock(id int64, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.Products[id]
	p.Stock = stock
	s.Products[id] = p
}

// SetCategoryDiscount overwrites the discount of a category.
func (s *CatalogRepositoryStub) SetCategoryDiscount(id int64, pct decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.Categories[id]
	c.DiscountPct = pct
	s.Categories[id] = c
}

func (s *CatalogRepositoryStub) categoriesOf(products []model.Product) []model.Category {
	var out []model.Category
	seen := make(map[int64]bool)
	for _, p := range products {
		if p.CategoryID == nil || seen[*p.CategoryID] {
			continue
		}
		seen[*p.CategoryID] = true
		if c, ok := s.Categories[*p.CategoryID]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (s *CatalogRepositoryStub) lookup(ids []int64) []model.Product {
	out := make([]model.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.Products[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// adjust takes delta units from stock. It reports false when stock would go negative.
func (s *CatalogRepositoryStub) adjust(id int64, delta int) bool {
	p, ok := s.Products[id]
	if !ok || p.Stock < delta {
		return false
	}
	p.Stock -= delta
	s.Products[id] = p
	return true
}

// OrderRepositoryStub keeps orders in memory and mimics the transactional
// behaviour of the storage layer against Catalog stock.
type OrderRepositoryStub struct {
	mu      sync.Mutex
	Catalog *CatalogRepositoryStub
	Orders  map[int64]*model.Order
	Next    int64
	Err     error

	CreateFn     func(context.Context, *model.OrderCreationIntent, repository.IntentGuard) (*model.Order, bool, error)
	GetByIDFn    func(context.Context, int64) (*model.Order, error)
	ListByUserFn func(context.Context, int64) ([]model.Order, error)
	ListAllFn    func(context.Context, *model.OrderStatus) ([]model.Order, error)

	// BeforeLock runs inside CreateFromIntent before the catalog is locked,
	// standing in for a write committed just ahead of the transaction.
	BeforeLock func()

	Transitions []model.StatusChange
	Amendments  []model.OrderAmendment
}

// NewOrderRepositoryStub constructs an empty order store backed by catalog.
func NewOrderRepositoryStub(catalog *CatalogRepositoryStub) *OrderRepositoryStub {
	return &OrderRepositoryStub{Catalog: catalog, Orders: make(map[int64]*model.Order), Next: 1}
}

// Put stores order as is, assigning an id when missing.
func (s *OrderRepositoryStub) Put(order model.Order) *model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Orders == nil {
		s.Orders = make(map[int64]*model.Order)
	}
	if order.ID == 0 {
		order.ID = s.nextID()
	}
	if order.ID >= s.Next {
		s.Next = order.ID + 1
	}
	s.Orders[order.ID] = &order
	return cloneOrder(&order)
}

// CreateFromIntent locks the catalog, runs guard, takes stock and stores the order.
func (s *OrderRepositoryStub) CreateFromIntent(ctx context.Context, intent *model.OrderCreationIntent, guard repository.IntentGuard) (*model.Order, bool, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, intent, guard)
	}
	if s.Err != nil {
		return nil, false, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.Orders {
		if o.CheckoutKey == intent.CheckoutKey {
			if o.UserID != intent.UserID {
				return nil, false, domainErrors.ErrAlreadyExists
			}
			return cloneOrder(o), false, nil
		}
	}

	if s.BeforeLock != nil {
		s.BeforeLock()
	}
	s.Catalog.mu.Lock()
	defer s.Catalog.mu.Unlock()

	ids := make([]int64, 0, len(intent.Decrements))
	for _, d := range intent.Decrements {
		ids = append(ids, d.ProductID)
	}
	if guard != nil {
		locked := s.Catalog.lookup(ids)
		if err := guard(locked, s.Catalog.categoriesOf(locked)); err != nil {
			return nil, false, err
		}
	}

	before := make(map[int64]int, len(ids))
	for _, id := range ids {
		before[id] = s.Catalog.Products[id].Stock
	}
	for _, d := range intent.Decrements {
		if !s.Catalog.adjust(d.ProductID, d.Quantity) {
			for id, stock := range before {
				p := s.Catalog.Products[id]
				p.Stock = stock
				s.Catalog.Products[id] = p
			}
			return nil, false, &domainErrors.InsufficientStockError{Shortfalls: []domainErrors.Shortfall{{
				ProductID: d.ProductID,
				Requested: d.Quantity,
				Available: before[d.ProductID],
			}}}
		}
	}

	id := s.nextID()
	payment := intent.Payment
	payment.OrderID = id
	shipment := intent.Shipment
	shipment.OrderID = id
	order := &model.Order{
		ID:          id,
		CheckoutKey: intent.CheckoutKey,
		UserID:      intent.UserID,
		Items:       append([]model.LineItem(nil), intent.Items...),
		Status:      intent.Status,
		Payment:     &payment,
		Shipment:    &shipment,
		CreatedAt:   intent.CreatedAt,
		UpdatedAt:   intent.CreatedAt,
	}
	s.Orders[id] = order
	return cloneOrder(order), true, nil
}

// GetByID returns a copy of the stored order.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.Orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return cloneOrder(o), nil
}

// GetByCheckoutKey returns the order created with key.
func (s *OrderRepositoryStub) GetByCheckoutKey(ctx context.Context, key uuid.UUID) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.Orders {
		if o.CheckoutKey == key {
			return cloneOrder(o), nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// ListByUser returns the user's orders, newest id first.
func (s *OrderRepositoryStub) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	if s.ListByUserFn != nil {
		return s.ListByUserFn(ctx, userID)
	}
	return s.list(func(o *model.Order) bool { return o.UserID == userID })
}

// ListAll returns every order, optionally filtered by status.
func (s *OrderRepositoryStub) ListAll(ctx context.Context, status *model.OrderStatus) ([]model.Order, error) {
	if s.ListAllFn != nil {
		return s.ListAllFn(ctx, status)
	}
	return s.list(func(o *model.Order) bool { return status == nil || o.Status == *status })
}

// Transition applies the decided status change and records it.
func (s *OrderRepositoryStub) Transition(ctx context.Context, orderID int64, decide repository.TransitionDecider) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.Orders[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	change, noop, err := decide(*cloneOrder(o))
	if err != nil {
		return nil, err
	}
	if noop {
		return cloneOrder(o), nil
	}

	if change.To == model.OrderStatusCancelled && change.RestoreStock && s.Catalog != nil {
		s.Catalog.mu.Lock()
		for _, adj := range engine.RestockFor(*o) {
			s.Catalog.adjust(adj.ProductID, adj.Delta)
		}
		s.Catalog.mu.Unlock()
	}
	engine.Apply(o, change)
	s.Transitions = append(s.Transitions, change)
	return cloneOrder(o), nil
}

// AmendQuantities plans the amendment against catalog stock and applies it.
func (s *OrderRepositoryStub) AmendQuantities(ctx context.Context, orderID int64, plan repository.AmendmentPlanner) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.Orders[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}

	s.Catalog.mu.Lock()
	defer s.Catalog.mu.Unlock()
	stock := make(map[int64]int, len(o.Items))
	for _, item := range o.Items {
		stock[item.ProductID] = s.Catalog.Products[item.ProductID].Stock
	}

	amendment, err := plan(*cloneOrder(o), stock)
	if err != nil {
		return nil, err
	}
	amended := make(map[int64]int, len(amendment.Items))
	for _, item := range amendment.Items {
		amended[item.ProductID] = item.Quantity
	}
	for _, adj := range amendment.Adjustments {
		if !s.Catalog.adjust(adj.ProductID, adj.Delta) {
			return nil, &domainErrors.InsufficientStockError{Shortfalls: []domainErrors.Shortfall{{
				ProductID: adj.ProductID,
				Requested: amended[adj.ProductID],
				Available: stock[adj.ProductID],
			}}}
		}
	}

	o.Items = append([]model.LineItem(nil), amendment.Items...)
	o.UpdatedAt = amendment.At
	if o.Payment != nil {
		o.Payment.Amount = amendment.Totals.GrandTotal
	}
	s.Amendments = append(s.Amendments, amendment)
	return cloneOrder(o), nil
}

func (s *OrderRepositoryStub) list(match func(*model.Order) bool) ([]model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Order, 0, len(s.Orders))
	for _, o := range s.Orders {
		if match(o) {
			out = append(out, *cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *OrderRepositoryStub) nextID() int64 {
	if s.Next == 0 {
		s.Next = 1
	}
	id := s.Next
	s.Next++
	return id
}

func cloneOrder(o *model.Order) *model.Order {
	c := *o
	c.Items = append([]model.LineItem(nil), o.Items...)
	if o.Payment != nil {
		p := *o.Payment
		c.Payment = &p
	}
	if o.Shipment != nil {
		sh := *o.Shipment
		c.Shipment = &sh
	}
	return &c
}

// InvoiceRepositoryStub stores at most one invoice per order.
type InvoiceRepositoryStub struct {
	mu        sync.Mutex
	Invoices  map[int64]model.Invoice
	Next      int64
	CreateErr error
	GetErr    error
}

// Create stores invoice unless the order already has one, in which case the
// existing invoice is returned with created=false.
func (s *InvoiceRepositoryStub) Create(ctx context.Context, invoice model.Invoice) (*model.Invoice, bool, error) {
	if s.CreateErr != nil {
		return nil, false, s.CreateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Invoices == nil {
		s.Invoices = make(map[int64]model.Invoice)
	}
	if existing, ok := s.Invoices[invoice.OrderID]; ok {
		return &existing, false, nil
	}
	s.Next++
	invoice.ID = s.Next
	s.Invoices[invoice.OrderID] = invoice
	return &invoice, true, nil
}

// GetByOrder returns the invoice of an order.
func (s *InvoiceRepositoryStub) GetByOrder(ctx context.Context, orderID int64) (*model.Invoice, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	invoice, ok := s.Invoices[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &invoice, nil
}

var (
	_ repository.UserRepository     = (*UserRepositoryStub)(nil)
	_ repository.CustomerRepository = (*CustomerRepositoryStub)(nil)
	_ repository.CatalogRepository  = (*CatalogRepositoryStub)(nil)
	_ repository.OrderRepository    = (*OrderRepositoryStub)(nil)
	_ repository.InvoiceRepository  = (*InvoiceRepositoryStub)(nil)
)
