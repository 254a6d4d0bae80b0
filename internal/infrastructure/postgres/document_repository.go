package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// documentTables nombres de tablas por tipo de documento. Ventas y facturas tienen la
// misma forma; solo invoices tiene columna status.
type documentTables struct {
	header    string
	detail    string
	parentCol string
	hasStatus bool
}

func tablesFor(kind entity.DocumentKind) (documentTables, error) {
	switch kind {
	case entity.DocumentSale:
		return documentTables{header: "sales", detail: "sale_details", parentCol: "sale_id"}, nil
	case entity.DocumentInvoice:
		return documentTables{header: "invoices", detail: "invoice_details", parentCol: "invoice_id", hasStatus: true}, nil
	default:
		return documentTables{}, fmt.Errorf("tipo de documento desconocido %q", kind)
	}
}

func (t documentTables) statusExpr() string {
	if t.hasStatus {
		return "status"
	}
	return "''"
}

// DocumentRepo implementación de DocumentRepository para ventas y facturas (usable con pool o tx).
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

// Create persiste la cabecera del documento (sin líneas).
func (r *DocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	t, err := tablesFor(doc.Kind)
	if err != nil {
		return err
	}
	var query string
	args := []any{doc.ID, doc.ClientID, doc.Total, doc.Date, doc.CreatedAt, doc.UpdatedAt}
	if t.hasStatus {
		query = `INSERT INTO ` + t.header + ` (id, client_id, total, date, created_at, updated_at, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`
		args = append(args, doc.Status)
	} else {
		query = `INSERT INTO ` + t.header + ` (id, client_id, total, date, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)`
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.NewNotFound("cliente", doc.ClientID)
		}
		return fmt.Errorf("insert %s: %w", t.header, err)
	}
	return nil
}

// GetByID obtiene la cabecera por ID.
func (r *DocumentRepo) GetByID(ctx context.Context, kind entity.DocumentKind, id string) (*entity.Document, error) {
	return r.get(ctx, kind, id, "")
}

// GetForUpdate obtiene la cabecera y bloquea la fila hasta el fin de la tx.
func (r *DocumentRepo) GetForUpdate(ctx context.Context, kind entity.DocumentKind, id string) (*entity.Document, error) {
	return r.get(ctx, kind, id, " FOR UPDATE")
}

func (r *DocumentRepo) get(ctx context.Context, kind entity.DocumentKind, id, suffix string) (*entity.Document, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	query := `SELECT id, client_id, total, date, ` + t.statusExpr() + `, created_at, updated_at
		FROM ` + t.header + ` WHERE id = $1` + suffix
	d, err := scanDocument(r.q.QueryRow(ctx, query, id), kind)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", t.header, err)
	}
	return d, nil
}

// Update persiste cliente, total, estado y updated_at.
func (r *DocumentRepo) Update(ctx context.Context, doc *entity.Document) error {
	t, err := tablesFor(doc.Kind)
	if err != nil {
		return err
	}
	var query string
	args := []any{doc.ID, doc.ClientID, doc.Total, doc.UpdatedAt}
	if t.hasStatus {
		query = `UPDATE ` + t.header + ` SET client_id = $2, total = $3, updated_at = $4, status = $5 WHERE id = $1`
		args = append(args, doc.Status)
	} else {
		query = `UPDATE ` + t.header + ` SET client_id = $2, total = $3, updated_at = $4 WHERE id = $1`
	}
	cmd, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.NewNotFound("cliente", doc.ClientID)
		}
		return fmt.Errorf("update %s: %w", t.header, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NewNotFound(doc.Kind.Entity(), doc.ID)
	}
	return nil
}

// Delete elimina la cabecera. Las líneas deben borrarse antes (DeleteByDocument).
func (r *DocumentRepo) Delete(ctx context.Context, kind entity.DocumentKind, id string) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM `+t.header+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", t.header, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NewNotFound(kind.Entity(), id)
	}
	return nil
}

// List lista cabeceras por fecha descendente con paginación.
func (r *DocumentRepo) List(ctx context.Context, kind entity.DocumentKind, limit, offset int) ([]*entity.Document, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	query := `SELECT id, client_id, total, date, ` + t.statusExpr() + `, created_at, updated_at
		FROM ` + t.header + ` ORDER BY date DESC, id LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.header, err)
	}
	defer rows.Close()
	list := []*entity.Document{}
	for rows.Next() {
		d, err := scanDocument(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.header, err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

func scanDocument(row pgx.Row, kind entity.DocumentKind) (*entity.Document, error) {
	d := entity.Document{Kind: kind}
	if err := row.Scan(&d.ID, &d.ClientID, &d.Total, &d.Date, &d.Status, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}
