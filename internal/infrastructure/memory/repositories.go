package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository           = (*ProductRepo)(nil)
	_ repository.ClientRepository            = (*ClientRepo)(nil)
	_ repository.DocumentRepository          = (*DocumentRepo)(nil)
	_ repository.LineItemRepository          = (*LineItemRepo)(nil)
	_ repository.InventoryMovementRepository = (*MovementRepo)(nil)
)

// ProductRepo productos en memoria.
type ProductRepo struct{ a access }

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	return r.a.with(func(st *state) error {
		if _, ok := st.products[product.ID]; ok {
			return domain.ErrDuplicate
		}
		st.products[product.ID] = *product
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.a.with(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

// GetForUpdate equivale a GetByID: la transacción ya tiene el store en exclusiva.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	return r.a.with(func(st *state) error {
		cur, ok := st.products[product.ID]
		if !ok {
			return domain.NewNotFound("producto", product.ID)
		}
		cur.Name = product.Name
		cur.Price = product.Price
		cur.Active = product.Active
		cur.UpdatedAt = product.UpdatedAt
		st.products[product.ID] = cur
		return nil
	})
}

func (r *ProductRepo) UpdateStock(_ context.Context, id string, stock int) error {
	return r.a.with(func(st *state) error {
		cur, ok := st.products[id]
		if !ok {
			return domain.NewNotFound("producto", id)
		}
		cur.Stock = stock
		st.products[id] = cur
		return nil
	})
}

func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.a.with(func(st *state) error {
		list := make([]*entity.Product, 0, len(st.products))
		for _, p := range st.products {
			p := p
			list = append(list, &p)
		}
		sort.Slice(list, func(i, j int) bool {
			if list[i].CreatedAt.Equal(list[j].CreatedAt) {
				return list[i].ID < list[j].ID
			}
			return list[i].CreatedAt.After(list[j].CreatedAt)
		})
		out = page(list, limit, offset)
		return nil
	})
	return out, err
}

// ClientRepo clientes en memoria.
type ClientRepo struct{ a access }

func (r *ClientRepo) Create(_ context.Context, client *entity.Client) error {
	return r.a.with(func(st *state) error {
		for _, c := range st.clients {
			if c.TaxID == client.TaxID {
				return domain.ErrDuplicate
			}
		}
		st.clients[client.ID] = *client
		return nil
	})
}

func (r *ClientRepo) GetByID(_ context.Context, id string) (*entity.Client, error) {
	var out *entity.Client
	err := r.a.with(func(st *state) error {
		if c, ok := st.clients[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *ClientRepo) GetByTaxID(_ context.Context, taxID string) (*entity.Client, error) {
	var out *entity.Client
	err := r.a.with(func(st *state) error {
		for _, c := range st.clients {
			if c.TaxID == taxID {
				c := c
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *ClientRepo) List(_ context.Context, limit, offset int) ([]*entity.Client, error) {
	var out []*entity.Client
	err := r.a.with(func(st *state) error {
		list := make([]*entity.Client, 0, len(st.clients))
		for _, c := range st.clients {
			c := c
			list = append(list, &c)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
		out = page(list, limit, offset)
		return nil
	})
	return out, err
}

// DocumentRepo cabeceras de ventas y facturas en memoria.
type DocumentRepo struct{ a access }

func (r *DocumentRepo) Create(_ context.Context, doc *entity.Document) error {
	return r.a.with(func(st *state) error {
		docs := st.documents[doc.Kind]
		if docs == nil {
			return domain.ErrInvalidInput
		}
		if _, ok := docs[doc.ID]; ok {
			return domain.ErrDuplicate
		}
		stored := *doc
		stored.Items = nil
		docs[doc.ID] = stored
		return nil
	})
}

func (r *DocumentRepo) GetByID(_ context.Context, kind entity.DocumentKind, id string) (*entity.Document, error) {
	var out *entity.Document
	err := r.a.with(func(st *state) error {
		if d, ok := st.documents[kind][id]; ok {
			out = &d
		}
		return nil
	})
	return out, err
}

func (r *DocumentRepo) GetForUpdate(ctx context.Context, kind entity.DocumentKind, id string) (*entity.Document, error) {
	return r.GetByID(ctx, kind, id)
}

func (r *DocumentRepo) Update(_ context.Context, doc *entity.Document) error {
	return r.a.with(func(st *state) error {
		cur, ok := st.documents[doc.Kind][doc.ID]
		if !ok {
			return domain.NewNotFound(doc.Kind.Entity(), doc.ID)
		}
		cur.ClientID = doc.ClientID
		cur.Total = doc.Total
		cur.Status = doc.Status
		cur.UpdatedAt = doc.UpdatedAt
		st.documents[doc.Kind][doc.ID] = cur
		return nil
	})
}

func (r *DocumentRepo) Delete(_ context.Context, kind entity.DocumentKind, id string) error {
	return r.a.with(func(st *state) error {
		if _, ok := st.documents[kind][id]; !ok {
			return domain.NewNotFound(kind.Entity(), id)
		}
		delete(st.documents[kind], id)
		return nil
	})
}

func (r *DocumentRepo) List(_ context.Context, kind entity.DocumentKind, limit, offset int) ([]*entity.Document, error) {
	var out []*entity.Document
	err := r.a.with(func(st *state) error {
		list := make([]*entity.Document, 0, len(st.documents[kind]))
		for _, d := range st.documents[kind] {
			d := d
			list = append(list, &d)
		}
		sort.Slice(list, func(i, j int) bool {
			if list[i].Date.Equal(list[j].Date) {
				return list[i].ID < list[j].ID
			}
			return list[i].Date.After(list[j].Date)
		})
		out = page(list, limit, offset)
		return nil
	})
	return out, err
}

// LineItemRepo líneas de detalle en memoria; conservan el orden de creación.
type LineItemRepo struct{ a access }

func (r *LineItemRepo) ListByDocument(_ context.Context, kind entity.DocumentKind, documentID string) ([]*entity.LineItem, error) {
	var out []*entity.LineItem
	err := r.a.with(func(st *state) error {
		out = sortedItems(st.items[kind], documentID)
		return nil
	})
	return out, err
}

func (r *LineItemRepo) Create(_ context.Context, kind entity.DocumentKind, item *entity.LineItem) error {
	return r.a.with(func(st *state) error {
		items := st.items[kind]
		if items == nil {
			return domain.ErrInvalidInput
		}
		if _, ok := st.documents[kind][item.DocumentID]; !ok {
			return domain.NewNotFound(kind.Entity(), item.DocumentID)
		}
		if _, ok := items[item.ID]; ok {
			return domain.ErrDuplicate
		}
		items[item.ID] = storedItem{item: *item, seq: st.nextSeq()}
		return nil
	})
}

func (r *LineItemRepo) Update(_ context.Context, kind entity.DocumentKind, item *entity.LineItem) error {
	return r.a.with(func(st *state) error {
		cur, ok := st.items[kind][item.ID]
		if !ok {
			return domain.NewNotFound("línea", item.ID)
		}
		cur.item.ProductID = item.ProductID
		cur.item.Quantity = item.Quantity
		cur.item.UnitPrice = item.UnitPrice
		cur.item.Subtotal = item.Subtotal
		st.items[kind][item.ID] = cur
		return nil
	})
}

func (r *LineItemRepo) Delete(_ context.Context, kind entity.DocumentKind, id string) error {
	return r.a.with(func(st *state) error {
		if _, ok := st.items[kind][id]; !ok {
			return domain.NewNotFound("línea", id)
		}
		delete(st.items[kind], id)
		return nil
	})
}

func (r *LineItemRepo) DeleteByDocument(_ context.Context, kind entity.DocumentKind, documentID string) error {
	return r.a.with(func(st *state) error {
		for id, si := range st.items[kind] {
			if si.item.DocumentID == documentID {
				delete(st.items[kind], id)
			}
		}
		return nil
	})
}

// MovementRepo movimientos de inventario en memoria (solo inserción).
type MovementRepo struct{ a access }

func (r *MovementRepo) Create(_ context.Context, movement *entity.InventoryMovement) error {
	return r.a.with(func(st *state) error {
		st.movements = append(st.movements, *movement)
		return nil
	})
}

// ListByProduct devuelve los movimientos del producto, más recientes primero.
func (r *MovementRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	err := r.a.with(func(st *state) error {
		var list []*entity.InventoryMovement
		for i := len(st.movements) - 1; i >= 0; i-- {
			if st.movements[i].ProductID == productID {
				m := st.movements[i]
				list = append(list, &m)
			}
		}
		out = page(list, limit, offset)
		return nil
	})
	return out, err
}
