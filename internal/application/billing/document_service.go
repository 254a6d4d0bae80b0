package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-api/internal/application/dto"
	"github.com/jhoicas/ventas-api/internal/application/inventory"
	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/lineitem"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
	"github.com/jhoicas/ventas-api/pkg/logger"
)

// DocumentService crea, edita y elimina ventas o facturas manteniendo el stock y el total
// consistentes. Hay una instancia por tipo de documento (NewSaleService, NewInvoiceService).
type DocumentService struct {
	kind      entity.DocumentKind
	coord     *Coordinator
	documents repository.DocumentRepository
	log       *logger.Logger
	now       func() time.Time
}

// NewDocumentService construye el servicio para un tipo de documento.
// documents es el repositorio de listados fuera de transacción.
func NewDocumentService(
	kind entity.DocumentKind,
	coord *Coordinator,
	documents repository.DocumentRepository,
	log *logger.Logger,
) *DocumentService {
	return &DocumentService{
		kind:      kind,
		coord:     coord,
		documents: documents,
		log:       log.Component(string(kind) + "_service"),
		now:       time.Now,
	}
}

// NewSaleService servicio de mutación de ventas.
func NewSaleService(coord *Coordinator, documents repository.DocumentRepository, log *logger.Logger) *DocumentService {
	return NewDocumentService(entity.DocumentSale, coord, documents, log)
}

// NewInvoiceService servicio de mutación de facturas.
func NewInvoiceService(coord *Coordinator, documents repository.DocumentRepository, log *logger.Logger) *DocumentService {
	return NewDocumentService(entity.DocumentInvoice, coord, documents, log)
}

// Kind devuelve el tipo de documento que maneja el servicio.
func (s *DocumentService) Kind() entity.DocumentKind { return s.kind }

// Create crea el documento con total 0, reserva stock y crea cada línea con el precio
// vigente, y finalmente recalcula el total. Si una reserva falla no queda nada persistido.
func (s *DocumentService) Create(ctx context.Context, userID string, in dto.CreateDocumentRequest) (*dto.DocumentResponse, error) {
	if in.ClientID == "" {
		return nil, domain.NewInvalidInput("client_id requerido")
	}
	if len(in.Items) == 0 {
		return nil, domain.NewInvalidLineItem("el documento debe tener al menos una línea")
	}
	for i, it := range in.Items {
		if it.ID != "" {
			return nil, domain.NewInvalidLineItem("línea %d: una línea nueva no lleva id", i+1)
		}
	}
	status, err := s.initialStatus(in.Status)
	if err != nil {
		return nil, err
	}
	ops, err := lineitem.Reconcile(nil, toRequested(in.Items))
	if err != nil {
		return nil, err
	}

	now := s.now()
	doc := &entity.Document{
		ID:        uuid.New().String(),
		Kind:      s.kind,
		ClientID:  in.ClientID,
		Total:     decimal.Zero,
		Date:      now,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	m := Mutation{Kind: string(s.kind), Op: "create", DocumentID: doc.ID}
	_, err = s.coord.Execute(ctx, m, func(ctx context.Context, repos repository.TxRepos) error {
		if err := s.requireClient(ctx, repos, doc.ClientID); err != nil {
			return err
		}
		if err := repos.Documents.Create(ctx, doc); err != nil {
			return err
		}
		ledger := inventory.NewStockLedger(repos, s.movementRef(doc.ID, userID))
		if err := s.apply(ctx, repos, ledger, doc, ops); err != nil {
			return err
		}
		return s.recomputeTotal(ctx, repos, doc)
	})
	if err != nil {
		return nil, err
	}
	return toDocumentResponse(doc), nil
}

// Update concilia las líneas existentes con las solicitadas, aplica los cambios de stock
// en orden y recalcula el total. Cualquier error revierte la edición completa.
func (s *DocumentService) Update(ctx context.Context, userID, id string, in dto.UpdateDocumentRequest) (*dto.DocumentResponse, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Status != nil {
		if err := s.validateStatus(*in.Status); err != nil {
			return nil, err
		}
	}

	var doc *entity.Document
	m := Mutation{Kind: string(s.kind), Op: "update", DocumentID: id}
	_, err := s.coord.Execute(ctx, m, func(ctx context.Context, repos repository.TxRepos) error {
		var err error
		doc, err = s.lockDocument(ctx, repos, id)
		if err != nil {
			return err
		}
		if in.ClientID != "" && in.ClientID != doc.ClientID {
			if err := s.requireClient(ctx, repos, in.ClientID); err != nil {
				return err
			}
			doc.ClientID = in.ClientID
		}
		if in.Status != nil {
			doc.Status = *in.Status
		}

		if in.Items != nil {
			existing, err := repos.LineItems.ListByDocument(ctx, s.kind, doc.ID)
			if err != nil {
				return err
			}
			ops, err := lineitem.Reconcile(existing, toRequested(in.Items))
			if err != nil {
				return err
			}
			s.log.Debug().
				Str("document_id", doc.ID).Int("operations", len(ops)).
				Interface("net_stock", lineitem.NetStockChanges(ops)).
				Msg("líneas conciliadas")
			ledger := inventory.NewStockLedger(repos, s.movementRef(doc.ID, userID))
			if err := s.apply(ctx, repos, ledger, doc, ops); err != nil {
				return err
			}
		}
		doc.UpdatedAt = s.now()
		return s.recomputeTotal(ctx, repos, doc)
	})
	if err != nil {
		return nil, err
	}
	return toDocumentResponse(doc), nil
}

// Delete libera el stock de cada línea, elimina las líneas y la cabecera.
// Un producto que ya no existe no bloquea el borrado: se registra y se continúa.
func (s *DocumentService) Delete(ctx context.Context, userID, id string) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	m := Mutation{Kind: string(s.kind), Op: "delete", DocumentID: id}
	_, err := s.coord.Execute(ctx, m, func(ctx context.Context, repos repository.TxRepos) error {
		doc, err := s.lockDocument(ctx, repos, id)
		if err != nil {
			return err
		}
		items, err := repos.LineItems.ListByDocument(ctx, s.kind, doc.ID)
		if err != nil {
			return err
		}
		ledger := inventory.NewStockLedger(repos, s.movementRef(doc.ID, userID))
		productIDs := make([]string, 0, len(items))
		for _, li := range items {
			productIDs = append(productIDs, li.ProductID)
		}
		if err := ledger.LockProducts(ctx, productIDs...); err != nil {
			return err
		}
		for _, li := range items {
			if _, err := ledger.Release(ctx, li.ProductID, li.Quantity); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					s.log.Warn().
						Str("document_id", doc.ID).Str("line_item_id", li.ID).
						Str("product_id", li.ProductID).Int("quantity", li.Quantity).
						Msg("producto inexistente al liberar stock; se continúa con el borrado")
					continue
				}
				return err
			}
		}
		if err := repos.LineItems.DeleteByDocument(ctx, s.kind, doc.ID); err != nil {
			return err
		}
		return repos.Documents.Delete(ctx, s.kind, doc.ID)
	})
	return err
}

// Get obtiene un documento con su detalle completo. Cabecera y líneas se leen en la
// misma instantánea, así el total siempre coincide con las líneas devueltas.
func (s *DocumentService) Get(ctx context.Context, id string) (*dto.DocumentResponse, error) {
	var doc *entity.Document
	err := s.coord.Read(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		var err error
		doc, err = repos.Documents.GetByID(ctx, s.kind, id)
		if err != nil {
			return err
		}
		if doc == nil {
			return domain.NewNotFound(s.kind.Entity(), id)
		}
		doc.Items, err = repos.LineItems.ListByDocument(ctx, s.kind, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toDocumentResponse(doc), nil
}

// List lista cabeceras con paginación (más recientes primero).
func (s *DocumentService) List(ctx context.Context, page dto.PageRequest) ([]dto.DocumentSummary, error) {
	page.DefaultPage()
	list, err := s.documents.List(ctx, s.kind, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DocumentSummary, 0, len(list))
	for _, d := range list {
		out = append(out, dto.DocumentSummary{
			ID:       d.ID,
			ClientID: d.ClientID,
			Date:     d.Date.Format("2006-01-02"),
			Status:   d.Status,
			Total:    d.Total,
		})
	}
	return out, nil
}

// apply ejecuta las operaciones de conciliación en orden. Cada línea creada o editada
// toma el precio vigente del producto bloqueado por el ledger.
func (s *DocumentService) apply(
	ctx context.Context,
	repos repository.TxRepos,
	ledger *inventory.StockLedger,
	doc *entity.Document,
	ops []lineitem.Operation,
) error {
	productIDs := make([]string, 0, 2*len(ops))
	for _, op := range ops {
		productIDs = append(productIDs, op.ProductID, op.OldProductID)
	}
	if err := ledger.LockProducts(ctx, productIDs...); err != nil {
		return err
	}

	for _, op := range ops {
		switch op.Kind {
		case lineitem.OpDelete:
			if _, err := ledger.Release(ctx, op.ProductID, op.Quantity); err != nil {
				return err
			}
			if err := repos.LineItems.Delete(ctx, s.kind, op.ItemID); err != nil {
				return err
			}

		case lineitem.OpCreate:
			product, err := ledger.Reserve(ctx, op.ProductID, op.Quantity)
			if err != nil {
				return err
			}
			li := &entity.LineItem{
				ID:         uuid.New().String(),
				DocumentID: doc.ID,
				ProductID:  op.ProductID,
				Quantity:   op.Quantity,
			}
			li.Reprice(product.Price)
			if err := repos.LineItems.Create(ctx, s.kind, li); err != nil {
				return err
			}

		case lineitem.OpUpdateSameProduct:
			product, err := ledger.Adjust(ctx, op.ProductID, -op.Delta)
			if err != nil {
				return err
			}
			li := &entity.LineItem{ID: op.ItemID, DocumentID: doc.ID, ProductID: op.ProductID, Quantity: op.Quantity}
			li.Reprice(product.Price)
			if err := repos.LineItems.Update(ctx, s.kind, li); err != nil {
				return err
			}

		case lineitem.OpUpdateProductSwap:
			// Liberar antes de reservar: el stock devuelto puede ser el que habilita la reserva.
			if _, err := ledger.Release(ctx, op.OldProductID, op.OldQuantity); err != nil {
				return err
			}
			product, err := ledger.Reserve(ctx, op.ProductID, op.Quantity)
			if err != nil {
				return err
			}
			li := &entity.LineItem{ID: op.ItemID, DocumentID: doc.ID, ProductID: op.ProductID, Quantity: op.Quantity}
			li.Reprice(product.Price)
			if err := repos.LineItems.Update(ctx, s.kind, li); err != nil {
				return err
			}
		}
	}
	return nil
}

// recomputeTotal relee las líneas actuales del documento y persiste su suma como total.
func (s *DocumentService) recomputeTotal(ctx context.Context, repos repository.TxRepos, doc *entity.Document) error {
	items, err := repos.LineItems.ListByDocument(ctx, s.kind, doc.ID)
	if err != nil {
		return err
	}
	doc.Items = items
	doc.Total = lineitem.Total(items)
	return repos.Documents.Update(ctx, doc)
}

func (s *DocumentService) lockDocument(ctx context.Context, repos repository.TxRepos, id string) (*entity.Document, error) {
	doc, err := repos.Documents.GetForUpdate(ctx, s.kind, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.NewNotFound(s.kind.Entity(), id)
	}
	return doc, nil
}

func (s *DocumentService) requireClient(ctx context.Context, repos repository.TxRepos, clientID string) error {
	client, err := repos.Clients.GetByID(ctx, clientID)
	if err != nil {
		return err
	}
	if client == nil {
		return domain.NewNotFound("cliente", clientID)
	}
	return nil
}

func (s *DocumentService) movementRef(documentID, userID string) inventory.MovementRef {
	return inventory.MovementRef{
		ReferenceType: string(s.kind),
		ReferenceID:   documentID,
		UserID:        userID,
	}
}

func (s *DocumentService) initialStatus(status string) (string, error) {
	if s.kind != entity.DocumentInvoice {
		if status != "" {
			return "", domain.NewInvalidInput("las ventas no llevan estado")
		}
		return "", nil
	}
	if status == "" {
		return entity.InvoiceStatusPending, nil
	}
	if err := s.validateStatus(status); err != nil {
		return "", err
	}
	return status, nil
}

func (s *DocumentService) validateStatus(status string) error {
	if s.kind != entity.DocumentInvoice {
		return domain.NewInvalidInput("las ventas no llevan estado")
	}
	switch status {
	case entity.InvoiceStatusPending, entity.InvoiceStatusPaid, entity.InvoiceStatusCanceled:
		return nil
	}
	return domain.NewInvalidInput("estado de factura desconocido %q", status)
}

func toRequested(items []dto.LineItemRequest) []lineitem.Requested {
	out := make([]lineitem.Requested, 0, len(items))
	for _, it := range items {
		out = append(out, lineitem.Requested{ID: it.ID, ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

func toDocumentResponse(doc *entity.Document) *dto.DocumentResponse {
	resp := &dto.DocumentResponse{
		ID:       doc.ID,
		Kind:     string(doc.Kind),
		ClientID: doc.ClientID,
		Date:     doc.Date.Format("2006-01-02"),
		Status:   doc.Status,
		Total:    doc.Total,
		Items:    make([]dto.LineItemResponse, 0, len(doc.Items)),
	}
	for _, li := range doc.Items {
		resp.Items = append(resp.Items, dto.LineItemResponse{
			ID:        li.ID,
			ProductID: li.ProductID,
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice,
			Subtotal:  li.Subtotal,
		})
	}
	return resp
}
