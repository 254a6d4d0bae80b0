package inventory

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

// MovementRef identifica quién y qué origina los movimientos registrados por un StockLedger.
type MovementRef struct {
	ReferenceType string // "sale", "invoice" o vacío en movimientos manuales
	ReferenceID   string
	UserID        string
}

// StockLedger aplica reservas, liberaciones y ajustes de stock sobre repositorios atados
// a una transacción. Cada cambio bloquea la fila del producto (GetForUpdate) y deja un
// movimiento de inventario. No es seguro fuera de una transacción.
type StockLedger struct {
	products  repository.ProductRepository
	movements repository.InventoryMovementRepository
	ref       MovementRef
	now       func() time.Time
}

// NewStockLedger construye el libro de stock con los repositorios de la transacción en curso.
func NewStockLedger(repos repository.TxRepos, ref MovementRef) *StockLedger {
	return &StockLedger{
		products:  repos.Products,
		movements: repos.Movements,
		ref:       ref,
		now:       time.Now,
	}
}

// LockProducts bloquea las filas de los productos en orden de id, sin repetir. Tomar todos
// los bloqueos en el mismo orden evita que dos documentos con los mismos productos en
// distinto orden se bloqueen mutuamente. Los productos inexistentes se ignoran aquí: el
// error aparece en la operación que los use.
func (l *StockLedger) LockProducts(ctx context.Context, productIDs ...string) error {
	ids := slices.Clone(productIDs)
	slices.Sort(ids)
	for _, id := range slices.Compact(ids) {
		if id == "" {
			continue
		}
		if _, err := l.products.GetForUpdate(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Reserve descuenta qty del stock disponible. Devuelve el producto bloqueado con el stock
// ya actualizado (su precio es el vigente para la foto de precio de la línea).
func (l *StockLedger) Reserve(ctx context.Context, productID string, qty int) (*entity.Product, error) {
	if qty < 1 {
		return nil, domain.NewInvalidLineItem("cantidad a reservar debe ser >= 1 (recibido %d)", qty)
	}
	return l.Move(ctx, productID, -qty, entity.MovementTypeRESERVE)
}

// Release devuelve qty al stock disponible.
func (l *StockLedger) Release(ctx context.Context, productID string, qty int) (*entity.Product, error) {
	if qty < 0 {
		return nil, domain.NewInvalidLineItem("cantidad a liberar no puede ser negativa (recibido %d)", qty)
	}
	return l.Move(ctx, productID, qty, entity.MovementTypeRELEASE)
}

// Adjust aplica un delta firmado. Con delta 0 solo bloquea y devuelve el producto.
func (l *StockLedger) Adjust(ctx context.Context, productID string, delta int) (*entity.Product, error) {
	return l.Move(ctx, productID, delta, entity.MovementTypeADJUST)
}

// Move bloquea la fila, verifica que el stock resultante no sea negativo, lo persiste
// y registra el movimiento con cantidades antes/después.
func (l *StockLedger) Move(ctx context.Context, productID string, change int, movementType string) (*entity.Product, error) {
	product, err := l.products.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFound("producto", productID)
	}
	if change == 0 {
		return product, nil
	}
	if change < 0 && !product.Active {
		return nil, domain.NewInvalidInput("el producto %s está inactivo", productID)
	}

	before := product.Stock
	after := before + change
	if after < 0 {
		return nil, &domain.InsufficientStockError{
			ProductID: productID,
			Requested: -change,
			Available: before,
		}
	}
	if err := l.products.UpdateStock(ctx, productID, after); err != nil {
		return nil, err
	}
	product.Stock = after

	mov := &entity.InventoryMovement{
		ID:             uuid.New().String(),
		ProductID:      productID,
		Type:           movementType,
		QuantityChange: change,
		QuantityBefore: before,
		QuantityAfter:  after,
		ReferenceType:  l.ref.ReferenceType,
		ReferenceID:    l.ref.ReferenceID,
		CreatedBy:      l.ref.UserID,
		CreatedAt:      l.now(),
	}
	if err := l.movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return product, nil
}
