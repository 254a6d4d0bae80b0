package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentKind distingue los dos tipos de documento con la misma estructura.
type DocumentKind string

const (
	DocumentSale    DocumentKind = "sale"
	DocumentInvoice DocumentKind = "invoice"
)

// Estados de factura.
const (
	InvoiceStatusPending  = "PENDIENTE"
	InvoiceStatusPaid     = "PAGADA"
	InvoiceStatusCanceled = "ANULADA"
)

// Document es la cabecera de una venta o factura. Total es derivado: siempre
// igual a la suma de los subtotales de sus líneas.
type Document struct {
	ID        string
	Kind      DocumentKind
	ClientID  string
	Total     decimal.Decimal
	Date      time.Time
	Status    string // solo facturas
	Items     []*LineItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Entity devuelve el nombre usado en errores de dominio.
func (k DocumentKind) Entity() string {
	if k == DocumentInvoice {
		return "factura"
	}
	return "venta"
}
