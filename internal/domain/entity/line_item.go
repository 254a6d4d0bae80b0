package entity

import "github.com/shopspring/decimal"

// LineItem es una línea de detalle de una venta o factura.
// UnitPrice es el precio del producto en el momento de la última operación sobre la línea.
type LineItem struct {
	ID         string
	DocumentID string
	ProductID  string
	Quantity   int
	UnitPrice  decimal.Decimal
	Subtotal   decimal.Decimal
}

// Reprice fija el precio unitario y recalcula el subtotal.
func (li *LineItem) Reprice(price decimal.Decimal) {
	li.UnitPrice = price
	li.Subtotal = price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}
