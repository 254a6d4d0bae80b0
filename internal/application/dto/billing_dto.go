package dto

import "github.com/shopspring/decimal"

// CreateClientRequest body para POST /api/clients.
type CreateClientRequest struct {
	Name  string `json:"name"`
	TaxID string `json:"tax_id"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// ClientResponse cliente en respuestas.
type ClientResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	TaxID string `json:"tax_id"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// LineItemRequest línea solicitada. Sin id es una línea nueva; con id actualiza la existente.
// El precio no se recibe: se toma del producto en el momento de la operación.
type LineItemRequest struct {
	ID        string `json:"id,omitempty"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CreateDocumentRequest body para POST /api/sales y POST /api/invoices.
type CreateDocumentRequest struct {
	ClientID string            `json:"client_id"`
	Status   string            `json:"status,omitempty"` // solo facturas
	Items    []LineItemRequest `json:"items"`
}

// UpdateDocumentRequest body para PUT /api/sales/:id y PUT /api/invoices/:id.
// Items nil deja las líneas como están; una lista vacía elimina todas.
type UpdateDocumentRequest struct {
	ClientID string            `json:"client_id,omitempty"`
	Status   *string           `json:"status,omitempty"`
	Items    []LineItemRequest `json:"items"`
}

// DocumentResponse venta o factura con su detalle.
type DocumentResponse struct {
	ID       string             `json:"id"`
	Kind     string             `json:"kind"`
	ClientID string             `json:"client_id"`
	Date     string             `json:"date"`
	Status   string             `json:"status,omitempty"`
	Total    decimal.Decimal    `json:"total"`
	Items    []LineItemResponse `json:"items"`
}

// LineItemResponse línea de detalle en la respuesta.
type LineItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// DocumentSummary cabecera sin detalle para listados.
type DocumentSummary struct {
	ID       string          `json:"id"`
	ClientID string          `json:"client_id"`
	Date     string          `json:"date"`
	Status   string          `json:"status,omitempty"`
	Total    decimal.Decimal `json:"total"`
}
