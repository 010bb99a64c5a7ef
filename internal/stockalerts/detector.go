package stockalerts

import "github.com/shopzen/shopzen-backend/pkg/events"

// Qualifies reports whether a product update counts as the product coming
// back into stock: the prior quantity was zero or below and the new quantity
// is positive. A missing prior snapshot or missing prior quantity is treated
// as out of stock, so a product whose stock field appears for the first time
// qualifies. Pure function, no I/O.
func Qualifies(before *events.ProductSnapshot, after events.ProductSnapshot) bool {
	if after.StockQty == nil || *after.StockQty <= 0 {
		return false
	}
	if before == nil || before.StockQty == nil {
		return true
	}
	return *before.StockQty <= 0
}
