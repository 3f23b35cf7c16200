package rates

import (
	"sync"

	"github.com/polkiloo/autoparts/internal/domain/model"
)

// Cache keeps the last good rate per currency.
type Cache struct {
	mu    sync.RWMutex
	rates map[string]model.ExchangeRate
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{rates: make(map[string]model.ExchangeRate)}
}

// Get returns the cached rate for currency.
func (c *Cache) Get(currency string) (model.ExchangeRate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rate, ok := c.rates[currency]
	return rate, ok
}

// Set replaces the cached rate unless it is older than the stored one.
func (c *Cache) Set(rate model.ExchangeRate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if current, ok := c.rates[rate.Currency]; ok && rate.FetchedAt.Before(current.FetchedAt) {
		return
	}
	c.rates[rate.Currency] = rate
}
