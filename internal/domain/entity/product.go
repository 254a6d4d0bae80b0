package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo con su stock disponible.
// Stock solo se modifica a través del libro de stock (reserva, liberación, ajuste).
type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal // precio de venta vigente
	Stock     int             // cantidad disponible, nunca negativa
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
