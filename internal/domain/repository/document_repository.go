package repository

import (
	"context"

	"github.com/jhoicas/ventas-api/internal/domain/entity"
)

// DocumentRepository define el puerto de persistencia para cabeceras de ventas y facturas.
// Los métodos de lectura no cargan Items.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	GetByID(ctx context.Context, kind entity.DocumentKind, id string) (*entity.Document, error)
	GetForUpdate(ctx context.Context, kind entity.DocumentKind, id string) (*entity.Document, error)
	// Update persiste cliente, total, estado y updated_at.
	Update(ctx context.Context, doc *entity.Document) error
	Delete(ctx context.Context, kind entity.DocumentKind, id string) error
	List(ctx context.Context, kind entity.DocumentKind, limit, offset int) ([]*entity.Document, error)
}

// LineItemRepository define el puerto de persistencia para las líneas de un documento.
// ListByDocument respeta el orden de creación.
type LineItemRepository interface {
	ListByDocument(ctx context.Context, kind entity.DocumentKind, documentID string) ([]*entity.LineItem, error)
	Create(ctx context.Context, kind entity.DocumentKind, item *entity.LineItem) error
	Update(ctx context.Context, kind entity.DocumentKind, item *entity.LineItem) error
	Delete(ctx context.Context, kind entity.DocumentKind, id string) error
	DeleteByDocument(ctx context.Context, kind entity.DocumentKind, documentID string) error
}
