// Package memory implementa los puertos de persistencia en memoria.
//
// Cada transacción trabaja sobre una copia del estado y mantiene el mutex del store
// hasta Commit o Rollback, por lo que las transacciones quedan serializadas: dos
// reservas concurrentes sobre el mismo producto nunca leen el mismo stock.
// Se usa con DB_DRIVER=memory y como store transaccional en los tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

var (
	_ repository.TxRunner     = (*Store)(nil)
	_ repository.ReadTxRunner = (*Store)(nil)
)

type storedItem struct {
	item entity.LineItem
	seq  int64
}

type state struct {
	products  map[string]entity.Product
	clients   map[string]entity.Client
	documents map[entity.DocumentKind]map[string]entity.Document
	items     map[entity.DocumentKind]map[string]storedItem
	movements []entity.InventoryMovement
	seq       int64
}

func newState() *state {
	return &state{
		products: make(map[string]entity.Product),
		clients:  make(map[string]entity.Client),
		documents: map[entity.DocumentKind]map[string]entity.Document{
			entity.DocumentSale:    {},
			entity.DocumentInvoice: {},
		},
		items: map[entity.DocumentKind]map[string]storedItem{
			entity.DocumentSale:    {},
			entity.DocumentInvoice: {},
		},
	}
}

// clone copia el estado completo; las entidades se guardan por valor.
func (s *state) clone() *state {
	c := &state{
		products:  make(map[string]entity.Product, len(s.products)),
		clients:   make(map[string]entity.Client, len(s.clients)),
		documents: make(map[entity.DocumentKind]map[string]entity.Document, len(s.documents)),
		items:     make(map[entity.DocumentKind]map[string]storedItem, len(s.items)),
		movements: append([]entity.InventoryMovement(nil), s.movements...),
		seq:       s.seq,
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.clients {
		c.clients[k] = v
	}
	for kind, docs := range s.documents {
		m := make(map[string]entity.Document, len(docs))
		for k, v := range docs {
			m[k] = v
		}
		c.documents[kind] = m
	}
	for kind, items := range s.items {
		m := make(map[string]storedItem, len(items))
		for k, v := range items {
			m[k] = v
		}
		c.items[kind] = m
	}
	return c
}

func (s *state) nextSeq() int64 {
	s.seq++
	return s.seq
}

// access da acceso al estado: con bloqueo (fuera de tx) o directo (dentro de la tx que ya lo tiene).
type access interface {
	with(fn func(st *state) error) error
}

// Store es el store en memoria. Los repositorios devueltos por Products(), Clients(), etc.
// operan fuera de transacción.
type Store struct {
	mu   sync.Mutex
	data *state
}

// New crea un store vacío.
func New() *Store {
	return &Store{data: newState()}
}

func (s *Store) with(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

type txAccess struct {
	st *state
}

func (t txAccess) with(fn func(st *state) error) error {
	return fn(t.st)
}

// Run ejecuta fn sobre una copia del estado. Commit reemplaza el estado; cualquier error
// (o panic) descarta la copia.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos repository.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(ctx, reposFor(txAccess{st: work})); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.data = work
	return nil
}

// RunReadOnly ejecuta fn con el mutex tomado sobre el estado confirmado, sin copiarlo.
func (s *Store) RunReadOnly(ctx context.Context, fn func(ctx context.Context, repos repository.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx, reposFor(txAccess{st: s.data}))
}

func reposFor(a access) repository.TxRepos {
	return repository.TxRepos{
		Products:  &ProductRepo{a: a},
		Clients:   &ClientRepo{a: a},
		Documents: &DocumentRepo{a: a},
		LineItems: &LineItemRepo{a: a},
		Movements: &MovementRepo{a: a},
	}
}

// Repos repositorios fuera de transacción (lecturas y altas simples).
func (s *Store) Repos() repository.TxRepos { return reposFor(s) }

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{a: s} }

// Clients repositorio de clientes fuera de transacción.
func (s *Store) Clients() *ClientRepo { return &ClientRepo{a: s} }

// Documents repositorio de cabeceras fuera de transacción.
func (s *Store) Documents() *DocumentRepo { return &DocumentRepo{a: s} }

// LineItems repositorio de líneas fuera de transacción.
func (s *Store) LineItems() *LineItemRepo { return &LineItemRepo{a: s} }

// Movements repositorio de movimientos fuera de transacción.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{a: s} }

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end]
}

func sortedItems(items map[string]storedItem, documentID string) []*entity.LineItem {
	var list []storedItem
	for _, si := range items {
		if si.item.DocumentID == documentID {
			list = append(list, si)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].seq < list[j].seq })
	out := make([]*entity.LineItem, 0, len(list))
	for _, si := range list {
		li := si.item
		out = append(out, &li)
	}
	return out
}
