package engine

import (
	domainErrors "github.com/polkiloo/autoparts/internal/domain/errors"
	"github.com/polkiloo/autoparts/internal/domain/model"
)

// StockLine compares a requested quantity against stock. Reserved is the
// quantity the order being edited already holds; it counts as available.
type StockLine struct {
	ProductID int64
	Requested int
	Available int
	Reserved  int
}

// StockReport is the result of a stock validation.
type StockReport struct {
	OK         bool
	Shortfalls []domainErrors.Shortfall
}

// Err converts a failed report into an InsufficientStockError.
func (r StockReport) Err() error {
	if r.OK {
		return nil
	}
	return &domainErrors.InsufficientStockError{Shortfalls: r.Shortfalls}
}

// ValidateStock reports every line whose request exceeds availability.
func ValidateStock(lines []StockLine) StockReport {
	var shortfalls []domainErrors.Shortfall
	for _, line := range lines {
		available := line.Available + line.Reserved
		if line.Requested > available {
			shortfalls = append(shortfalls, domainErrors.Shortfall{
				ProductID: line.ProductID,
				Requested: line.Requested,
				Available: available,
			})
		}
	}
	return StockReport{OK: len(shortfalls) == 0, Shortfalls: shortfalls}
}

// StockLines merges items by product and reads availability from the catalog.
// Products absent from the catalog are reported with zero availability.
func StockLines(items []model.LineItem, catalog *Catalog) []StockLine {
	index := make(map[int64]int, len(items))
	lines := make([]StockLine, 0, len(items))
	for _, item := range items {
		if i, ok := index[item.ProductID]; ok {
			lines[i].Requested += item.Quantity
			continue
		}
		available := 0
		if p, ok := catalog.Product(item.ProductID); ok {
			available = p.Stock
		}
		index[item.ProductID] = len(lines)
		lines = append(lines, StockLine{ProductID: item.ProductID, Requested: item.Quantity, Available: available})
	}
	return lines
}
