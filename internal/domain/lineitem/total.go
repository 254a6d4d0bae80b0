package lineitem

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-api/internal/domain/entity"
)

// Total suma los subtotales de las líneas. Se recalcula siempre desde cero;
// nunca se ajusta el total anterior de forma incremental.
func Total(items []*entity.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, li := range items {
		total = total.Add(li.Subtotal)
	}
	return total
}
