package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

var _ repository.LineItemRepository = (*LineItemRepo)(nil)

// LineItemRepo líneas de detalle de ventas y facturas (usable con pool o tx).
// La columna seq (BIGSERIAL) conserva el orden de creación.
type LineItemRepo struct {
	q Querier
}

// NewLineItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLineItemRepository(q Querier) *LineItemRepo {
	return &LineItemRepo{q: q}
}

// ListByDocument devuelve las líneas del documento en orden de creación.
func (r *LineItemRepo) ListByDocument(ctx context.Context, kind entity.DocumentKind, documentID string) ([]*entity.LineItem, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	query := `SELECT id, ` + t.parentCol + `, product_id, quantity, unit_price, subtotal
		FROM ` + t.detail + ` WHERE ` + t.parentCol + ` = $1 ORDER BY seq`
	rows, err := r.q.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.detail, err)
	}
	defer rows.Close()
	list := []*entity.LineItem{}
	for rows.Next() {
		var li entity.LineItem
		if err := rows.Scan(&li.ID, &li.DocumentID, &li.ProductID, &li.Quantity, &li.UnitPrice, &li.Subtotal); err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.detail, err)
		}
		list = append(list, &li)
	}
	return list, rows.Err()
}

// Create inserta una línea.
func (r *LineItemRepo) Create(ctx context.Context, kind entity.DocumentKind, item *entity.LineItem) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}
	query := `INSERT INTO ` + t.detail + ` (id, ` + t.parentCol + `, product_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = r.q.Exec(ctx, query,
		item.ID, item.DocumentID, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert %s: %w", t.detail, err)
	}
	return nil
}

// Update modifica producto, cantidad, precio y subtotal de una línea existente.
func (r *LineItemRepo) Update(ctx context.Context, kind entity.DocumentKind, item *entity.LineItem) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}
	query := `UPDATE ` + t.detail + ` SET product_id = $2, quantity = $3, unit_price = $4, subtotal = $5 WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, item.ID, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal)
	if err != nil {
		return fmt.Errorf("update %s: %w", t.detail, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NewNotFound("línea", item.ID)
	}
	return nil
}

// Delete elimina una línea por ID.
func (r *LineItemRepo) Delete(ctx context.Context, kind entity.DocumentKind, id string) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM `+t.detail+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", t.detail, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NewNotFound("línea", id)
	}
	return nil
}

// DeleteByDocument elimina todas las líneas del documento.
func (r *LineItemRepo) DeleteByDocument(ctx context.Context, kind entity.DocumentKind, documentID string) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM `+t.detail+` WHERE `+t.parentCol+` = $1`, documentID); err != nil {
		return fmt.Errorf("delete %s: %w", t.detail, err)
	}
	return nil
}
