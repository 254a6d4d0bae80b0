package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovementTypeIN         = "IN"         // entrada manual
	MovementTypeOUT        = "OUT"        // salida manual
	MovementTypeADJUSTMENT = "ADJUSTMENT" // ajuste manual (+/-)
	MovementTypeRESERVE    = "RESERVE"    // reserva por línea de venta/factura
	MovementTypeRELEASE    = "RELEASE"    // liberación (edición, borrado)
	MovementTypeADJUST     = "ADJUST"     // cambio de cantidad en una línea existente
)

// InventoryMovement registra cada cambio de stock de un producto.
// ReferenceType/ReferenceID apuntan al documento que lo originó (vacío en movimientos manuales).
type InventoryMovement struct {
	ID             string
	ProductID      string
	Type           string
	QuantityChange int // positivo entrada, negativo salida
	QuantityBefore int
	QuantityAfter  int
	ReferenceType  string
	ReferenceID    string
	CreatedBy      string
	CreatedAt      time.Time
}
