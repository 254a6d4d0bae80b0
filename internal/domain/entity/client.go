package entity

import "time"

// Client representa un cliente al que se le emiten ventas y facturas.
type Client struct {
	ID        string
	Name      string
	TaxID     string // NIT o Cédula
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
