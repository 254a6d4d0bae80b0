package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create persiste un movimiento de inventario.
func (r *InventoryMovementRepo) Create(ctx context.Context, movement *entity.InventoryMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_movements (id, product_id, type, quantity_change, quantity_before, quantity_after,
			reference_type, reference_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		movement.ID, movement.ProductID, movement.Type, movement.QuantityChange,
		movement.QuantityBefore, movement.QuantityAfter,
		nullable(movement.ReferenceType), nullable(movement.ReferenceID), nullable(movement.CreatedBy),
		movement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create inventory movement: %w", err)
	}
	return nil
}

// ListByProduct lista los movimientos de un producto, más recientes primero.
func (r *InventoryMovementRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.InventoryMovement, error) {
	query := `
		SELECT id, product_id, type, quantity_change, quantity_before, quantity_after,
			reference_type, reference_id, created_by, created_at
		FROM inventory_movements WHERE product_id = $1
		ORDER BY created_at DESC, seq DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list inventory movements: %w", err)
	}
	defer rows.Close()
	list := []*entity.InventoryMovement{}
	for rows.Next() {
		var m entity.InventoryMovement
		var refType, refID, createdBy *string
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Type, &m.QuantityChange, &m.QuantityBefore, &m.QuantityAfter,
			&refType, &refID, &createdBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan inventory movement: %w", err)
		}
		m.ReferenceType, m.ReferenceID, m.CreatedBy = deref(refType), deref(refID), deref(createdBy)
		list = append(list, &m)
	}
	return list, rows.Err()
}
