package billing_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/jhoicas/ventas-api/internal/application/billing"
	"github.com/jhoicas/ventas-api/internal/application/dto"
	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
	"github.com/jhoicas/ventas-api/internal/infrastructure/memory"
	"github.com/jhoicas/ventas-api/pkg/logger"
)

const clientID = "cliente-1"

type fixture struct {
	store    *memory.Store
	sales    *billing.DocumentService
	invoices *billing.DocumentService
}

func newFixture(t *testing.T, runner repository.TxRunner, store *memory.Store) *fixture {
	t.Helper()
	coord := billing.NewCoordinator(runner, logger.Nop(), noop.NewTracerProvider().Tracer("test"))
	f := &fixture{
		store:    store,
		sales:    billing.NewSaleService(coord, store.Documents(), logger.Nop()),
		invoices: billing.NewInvoiceService(coord, store.Documents(), logger.Nop()),
	}
	now := time.Now()
	require.NoError(t, store.Clients().Create(context.Background(), &entity.Client{
		ID: clientID, Name: "Cliente Uno", TaxID: "900123456", CreatedAt: now, UpdatedAt: now,
	}))
	return f
}

func setup(t *testing.T) *fixture {
	store := memory.New()
	return newFixture(t, store, store)
}

func (f *fixture) product(t *testing.T, id string, price string, stock int) {
	t.Helper()
	now := time.Now()
	require.NoError(t, f.store.Products().Create(context.Background(), &entity.Product{
		ID: id, Name: id, Price: decimal.RequireFromString(price), Stock: stock, Active: true,
		CreatedAt: now, UpdatedAt: now,
	}))
}

func (f *fixture) stock(t *testing.T, id string) int {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func (f *fixture) setPrice(t *testing.T, id, price string) {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	p.Price = decimal.RequireFromString(price)
	require.NoError(t, f.store.Products().Update(context.Background(), p))
}

// assertTotalConsistente verifica total == suma de subtotales y subtotal == cantidad × precio.
func assertTotalConsistente(t *testing.T, doc *dto.DocumentResponse) {
	t.Helper()
	sum := decimal.Zero
	for _, it := range doc.Items {
		assert.GreaterOrEqual(t, it.Quantity, 1)
		assert.True(t, it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))).Equal(it.Subtotal))
		sum = sum.Add(it.Subtotal)
	}
	assert.True(t, sum.Equal(doc.Total), "total %s != suma de subtotales %s", doc.Total, sum)
}

func lines(items ...dto.LineItemRequest) []dto.LineItemRequest { return items }

func line(productID string, qty int) dto.LineItemRequest {
	return dto.LineItemRequest{ProductID: productID, Quantity: qty}
}

func TestCreate_ReservaStockYCalculaTotal(t *testing.T) {
	f := setup(t)
	f.product(t, "A", "10.00", 10)
	f.product(t, "B", "2.50", 10)
	ctx := context.Background()

	doc, err := f.sales.Create(ctx, "u1", dto.CreateDocumentRequest{ClientID: clientID, Items: lines(line("A", 2), line("B", 3))})
	require.NoError(t, err)

	assert.Equal(t, "sale", doc.Kind)
	require.Len(t, doc.Items, 2)
	assert.Equal(t, "A", doc.Items[0].ProductID)
	assert.True(t, decimal.RequireFromString("27.50").Equal(doc.Total))
	assertTotalConsistente(t, doc)
	assert.Equal(t, 8, f.stock(t, "A"))
	assert.Equal(t, 7, f.stock(t, "B"))

	got, err := f.sales.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.Items, got.Items)
	assert.True(t, doc.Total.Equal(got.Total))
}

// Stock 5, se piden 10: falla, el stock no cambia y no queda documento.
func TestCreate_StockInsuficienteNoDejaNada(t *testing.T) {
	f := setup(t)
	f.product(t, "A", "10.00", 5)
	ctx := context.Background()

	_, err := f.sales.Create(ctx, "u1", dto.CreateDocumentRequest{ClientID: clientID, Items: lines(line("A", 10))})

	var se *domain.InsufficientStockError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "A", se.ProductID)
	assert.Equal(t, 10, se.Requested)
	assert.Equal(t, 5, se.Available)
	assert.Equal(t, 5, f.stock(t, "A"))

	list, err := f.sales.List(ctx, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, list)

	movs, err := f.store.Movements().ListByProduct(ctx, "A", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, movs)
}

// Una segunda línea sin stock revierte también la reserva de la primera.
func TestCreate_FalloParcialRevierteTodo(t *testing.T) {
	f := setup(t)
	f.product(t, "A", "1.00", 5)
	f.product(t, "B", "1.00", 1)

	_, err := f.sales.Create(context.Background(), "u1", dto.CreateDocumentRequest{ClientID: clientID, Items: lines(line("A", 2), line("B", 2))})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 5, f.stock(t, "A"))
	assert.Equal(t, 1, f.stock(t, "B"))
}

func TestCreate_Validaciones(t *testing.T) {
	f := setup(t)
	f.product(t, "A", "1.00", 5)
	ctx := context.Background()

	_, err := f.sales.Create(ctx, "u1", dto.CreateDocumentRequest{Items: lines(line("A", 1))})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin cliente")
	assert.Contains(t, err.Error(), "client_id requerido")

	_, err = f.sales.Create(ctx, "u1", dto.CreateDocumentRequest{ClientID: clientID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin líneas")

	_, err = f.sales.Create(ctx, "u1", dto.CreateDocumentRequest{ClientID: clientID, Items: lines(dto.LineItemRequest{ID: "x", ProductID: "A", Quantity: 1})})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "línea nueva con id")

	_, err = f.sales.Create(ctx, "u1", dto.CreateDocumentRequest{ClientID: clientID, Items: lines(line("A", 0))})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero")

	_, err = f.sales.Create(ctx, "u1", dto.CreateDocumentRequest{ClientID: "no-existe", Items: lines(line("A", 1))})
	var nf *domain.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "cliente", nf.Entity)

	_, err = f.sales.Create(ctx, "u1", dto.CreateDocumentRequest{ClientID: clientID, Items: lines(line("Z", 1))})
	assert.ErrorIs(t, err, domain.ErrNotFound, "producto inexistente")

	_, err = f.sales.Create(ctx, "u1", dto.CreateDocumentRequest{ClientID: clientID, Status: "PAGADA", Items: lines(line("A", 1))})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "las ventas no tienen estado")

	assert.Equal(t, 5, f.stock(t, "A"))
}

// (X,5) -> (Y,3): X recupera 5, Y pierde 3.
func TestUpdate_CambioDeProducto(t *testing.T) {
	f := setup(t)
	f.product(t, "X", "4.00", 10)
	f.product(t, "Y", "7.00", 10)
	ctx := context.Background()

	doc, err := f.sales.Create(ctx, "u1", dto.CreateDocumentRequest{ClientID: clientID, Items: lines(line("X", 5))})
	require.NoError(t, err)
	itemID := doc.Items[0].ID
	assert.Equal(t, 5, f.stock(t, "X"))

	upd, err := f.sales.Update(ctx, "u1", doc.ID, dto.UpdateDocumentRequest{
		Items: lines(dto.LineItemRequest{ID: itemID, ProductID: "Y", Quantity: 3}),
	})
	require.NoError(t, err)
	assert.Equal(t, 10, f.stock(t, "X"))
	assert.Equal(t, 7, f.stock(t, "Y"))
	require.Len(t, upd.Items, 1)
	assert.Equal(t, itemID, upd.Items[0].ID)
	assert.Equal(t, "Y", upd.Items[0].ProductID)
	assert.True(t, decimal.RequireFromString("21.00").Equal(upd.Total))
	assertTotalConsistente(t, upd)
}

// Si Y no alcanza, la edición completa se revierte: X no recupera stock y la línea sigue igual.
func TestUpdate_CambioDeProductoSinStockRevierte(t *testing.T) {
	f := setup(t)
	f.product(t, "X", "4.00", 10)
	f.product(t, "Y", "7.00", 2)
	ctx := context.Background()

	doc, err := f.sales.Create(ctx, "u1", dto.CreateDocumentRequest{ClientID: clientID, Items: lines(line("X", 5))})
	require.NoError(t, err)

	_, err = f.sales.Update(ctx, "u1", doc.ID, dto.UpdateDocumentRequest{
		Items: lines(dto.LineItemRequest{ID: doc.Items[0].ID, ProductID: "Y", Quantity: 3}),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 5, f.stock(t, "X"))
	assert.Equal(t, 2, f.stock(t, "Y"))

	got, err := f.sales.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.Items, got.Items)
}

// 5 -> 8 con solo 2 libres: falla y la línea conserva 5.
func TestUpdate_AumentoSinStockSuficiente(t *testing.T) {
	f := setup(t)
	f.product(t, "A", "3.00", 7)
	ctx := context.Background()

	doc, err := f.sales.Create(ctx, "u1", dto.CreateDocumentRequest{ClientID: clientID, Items: lines(line("A", 5))})
	require.NoError(t, err)
	require.Equal(t, 2, f.stock(t, "A"))

	_, err = f.sales.Update(ctx, "u1", doc.ID, dto.UpdateDocumentRequest{
		Items: lines(dto.LineItemRequest{ID: doc.Items[0].ID, ProductID: "A", Quantity: 8}),
	})
	var se *domain.InsufficientStockError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 3, se.Requested)
	assert.Equal(t, 2, se.Available)
	assert.Equal(t, 2, f.stock(t, "A"))

	got, err := f.sales.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Items[0].Quantity)
}

func TestUpdate_DisminuyeCantidadLiberaStock(t *testing.T) {
	f := setup(t)
	f.product(t, "A", "3.00", 10)
	ctx := context.Background()

	doc, err := f.sales.Create(ctx, "u1", dto.CreateDocumentRequest{ClientID: clientID, Items: lines(line("A", 5))})
	require.NoError(t, err)

	upd, err := f.sales.Update(ctx, "u1", doc.ID, dto.UpdateDocumentRequest{
		Items: lines(dto.LineItemRequest{ID: doc.Items[0].ID, ProductID: "A", Quantity: 2}),
	})
	require.NoError(t, err)
	assert.Equal(t, 8, f.stock(t, "A"))
	assert.True(t, decimal.RequireFromString("6.00").Equal(upd.Total))
}

func TestUpdate_Idempotente(t *testing.T) {
	f := setup(t)
	f.product(t, "A", "10.00", 10)
	f.product(t, "B", "1.00", 10)
	ctx := context.Background()

	doc, err := f.sales.Create(ctx, "u1", dto.CreateDocumentRequest{ClientID: clientID, Items: lines(line("A", 2), line("B", 3))})
	require.NoError(t, err)

	same := make([]dto.LineItemRequest, 0, len(doc.Items))
	for _, it := range doc.Items {
		same = append(same, dto.LineItemRequest{ID: it.ID, ProductID: it.ProductID, Quantity: it.Quantity})
	}
	for i := 0; i < 2; i++ {
		upd, err := f.sales.Update(ctx, "u1", doc.ID, dto.UpdateDocumentRequest{Items: same})
		require.NoError(t, err)
		assert.True(t, doc.Total.Equal(upd.Total))
		assert.Equal(t, doc.Items, upd.Items)
	}
	assert.Equal(t, 8, f.stock(t, "A"))
	assert.Equal(t, 7, f.stock(t, "B"))

	movs, err := f.store.Movements().ListByProduct(ctx, "A", 10, 0)
	require.NoError(t, err)
	assert.Len(t, movs, 1, "una edición sin cambios no registra movimientos")
}

func TestUpdate_AltaBajaYEdicionEnUnaSolaMutacion(t *testing.T) {
	f := setup(t)
	f.product(t, "A", "1.00", 10)
	f.product(t, "B", "2.00", 10)
	f.product(t, "C", "3.00", 10)
	ctx := context.Background()

	doc, err := f.sales.Create(ctx, "u1", dto.CreateDocumentRequest{ClientID: clientID, Items: lines(line("A", 1), line("B", 1))})
	require.NoError(t, err)

	upd, err := f.sales.Update(ctx, "u1", doc.ID, dto.UpdateDocumentRequest{
		Items: lines(
			dto.LineItemRequest{ID: doc.Items[1].ID, ProductID: "B", Quantity: 4},
			line("C", 2),
		),
	})
	require.NoError(t, err)
	assert.Equal(t, 10, f.stock(t, "A"))
	assert.Equal(t, 6, f.stock(t, "B"))
	assert.Equal(t, 8, f.stock(t, "C"))
	require.Len(t, upd.Items, 2)
	assert.Equal(t, doc.Items[1].ID, upd.Items[0].ID)
	assert.Equal(t, "C", upd.Items[1].ProductID)
	assert.True(t, decimal.RequireFromString("14.00").Equal(upd.Total))
	assertTotalConsistente(t, upd)
}

func TestUpdate_ItemsNilConservaLineasYListaVaciaLasElimina(t *testing.T) {
	f := setup(t)
	f.product(t, "A", "5.00", 10)
	ctx := context.Background()

	doc, err := f.invoices.Create(ctx, "u1", dto.CreateDocumentRequest{ClientID: clientID, Items: lines(line("A", 2))})
	require.NoError(t, err)

	paid := entity.InvoiceStatusPaid
	upd, err := f.invoices.Update(ctx, "u1", doc.ID, dto.UpdateDocumentRequest{Status: &paid})
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusPaid, upd.Status)
	assert.Len(t, upd.Items, 1)
	assert.Equal(t, 8, f.stock(t, "A"))

	upd, err = f.invoices.Update(ctx, "u1", doc.ID, dto.UpdateDocumentRequest{Items: []dto.LineItemRequest{}})
	require.NoError(t, err)
	assert.Empty(t, upd.Items)
	assert.True(t, upd.Total.IsZero())
	assert.Equal(t, 10, f.stock(t, "A"))
}

// El precio de la línea se toma del producto en cada edición.
func TestUpdate_TomaElPrecioVigente(t *testing.T) {
	f := setup(t)
	f.product(t, "A", "10.00", 10)
	ctx := context.Background()

	doc, err := f.sales.Create(ctx, "u1", dto.CreateDocumentRequest{ClientID: clientID, Items: lines(line("A", 2))})
	require.NoError(t, err)

	f.setPrice(t, "A", "12.00")
	upd, err := f.sales.Update(ctx, "u1", doc.ID, dto.UpdateDocumentRequest{
		Items: lines(dto.LineItemRequest{ID: doc.Items[0].ID, ProductID: "A", Quantity: 2}),
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.00").Equal(upd.Items[0].UnitPrice))
	assert.True(t, decimal.RequireFromString("24.00").Equal(upd.Total))
}

func TestUpdate_Errores(t *testing.T) {
	f := setup(t)
	f.product(t, "A", "1.00", 10)
	ctx := context.Background()

	_, err := f.sales.Update(ctx, "u1", "no-existe", dto.UpdateDocumentRequest{})
	var nf *domain.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "venta", nf.Entity)

	doc, err := f.sales.Create(ctx, "u1", dto.CreateDocumentRequest{ClientID: clientID, Items: lines(line("A", 1))})
	require.NoError(t, err)

	_, err = f.sales.Update(ctx, "u1", doc.ID, dto.UpdateDocumentRequest{
		Items: lines(dto.LineItemRequest{ID: "ajena", ProductID: "A", Quantity: 1}),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.sales.Update(ctx, "u1", doc.ID, dto.UpdateDocumentRequest{ClientID: "no-existe"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	status := "DESCONOCIDO"
	_, err = f.invoices.Update(ctx, "u1", doc.ID, dto.UpdateDocumentRequest{Status: &status})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Equal(t, 9, f.stock(t, "A"))
}

// Crear (A,2),(B,3) y eliminar restaura el stock de ambos.
func TestDelete_RestauraStock(t *testing.T) {
	f := setup(t)
	f.product(t, "A", "1.00", 10)
	f.product(t, "B", "1.00", 10)
	ctx := context.Background()

	doc, err := f.invoices.Create(ctx, "u1", dto.CreateDocumentRequest{ClientID: clientID, Items: lines(line("A", 2), line("B", 3))})
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusPending, doc.Status)

	require.NoError(t, f.invoices.Delete(ctx, "u1", doc.ID))
	assert.Equal(t, 10, f.stock(t, "A"))
	assert.Equal(t, 10, f.stock(t, "B"))

	_, err = f.invoices.Get(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = f.invoices.Delete(ctx, "u1", doc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVentasYFacturasSonIndependientes(t *testing.T) {
	f := setup(t)
	f.product(t, "A", "1.00", 10)
	ctx := context.Background()

	sale, err := f.sales.Create(ctx, "u1", dto.CreateDocumentRequest{ClientID: clientID, Items: lines(line("A", 1))})
	require.NoError(t, err)

	_, err = f.invoices.Get(ctx, sale.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	err = f.invoices.Delete(ctx, "u1", sale.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 9, f.stock(t, "A"))
}

// missingProducts simula productos borrados fuera del flujo: GetForUpdate devuelve nil.
type missingProducts struct {
	repository.ProductRepository
	missing string
}

func (m missingProducts) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	if id == m.missing {
		return nil, nil
	}
	return m.ProductRepository.GetForUpdate(ctx, id)
}

type missingProductRunner struct {
	inner   repository.TxRunner
	missing string
}

func (r missingProductRunner) Run(ctx context.Context, fn func(ctx context.Context, repos repository.TxRepos) error) error {
	return r.inner.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		repos.Products = missingProducts{ProductRepository: repos.Products, missing: r.missing}
		return fn(ctx, repos)
	})
}

func TestDelete_ProductoInexistenteNoBloquea(t *testing.T) {
	store := memory.New()
	setupF := newFixture(t, store, store)
	setupF.product(t, "A", "1.00", 10)
	setupF.product(t, "B", "1.00", 10)
	ctx := context.Background()

	doc, err := setupF.sales.Create(ctx, "u1", dto.CreateDocumentRequest{ClientID: clientID, Items: lines(line("A", 2), line("B", 3))})
	require.NoError(t, err)

	coord := billing.NewCoordinator(missingProductRunner{inner: store, missing: "A"}, logger.Nop(), noop.NewTracerProvider().Tracer("test"))
	sales := billing.NewSaleService(coord, store.Documents(), logger.Nop())

	require.NoError(t, sales.Delete(ctx, "u1", doc.ID))
	assert.Equal(t, 8, setupF.stock(t, "A"), "el producto 'ausente' no se toca")
	assert.Equal(t, 10, setupF.stock(t, "B"))

	_, err = sales.Get(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Reservas concurrentes que en conjunto exceden el stock: nunca se venden más unidades de las que hay.
func TestCreate_ConcurrenciaNoSobrevende(t *testing.T) {
	f := setup(t)
	f.product(t, "A", "1.00", 10)
	ctx := context.Background()

	const workers = 25
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.sales.Create(ctx, "u1", dto.CreateDocumentRequest{ClientID: clientID, Items: lines(line("A", 1))})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if errors.Is(err, domain.ErrInsufficientStock) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, workers-10, rejected)
	assert.Equal(t, 0, f.stock(t, "A"))

	list, err := f.sales.List(ctx, dto.PageRequest{Limit: 100})
	require.NoError(t, err)
	assert.Len(t, list, 10)
}

func TestCreate_DosReservasQueExcedenElStock(t *testing.T) {
	f := setup(t)
	f.product(t, "A", "1.00", 5)
	ctx := context.Background()

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.sales.Create(ctx, "u1", dto.CreateDocumentRequest{ClientID: clientID, Items: lines(line("A", 3))})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, failed int
	for err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
			failed++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 2, f.stock(t, "A"))
}

// Un Get concurrente con ediciones nunca devuelve un total que no cuadre con sus líneas.
func TestGet_ConcurrenteConUpdateSiempreConsistente(t *testing.T) {
	f := setup(t)
	f.product(t, "A", "3.00", 1000)
	f.product(t, "B", "1.00", 1000)
	ctx := context.Background()

	doc, err := f.sales.Create(ctx, "u1", dto.CreateDocumentRequest{ClientID: clientID, Items: lines(line("A", 1), line("B", 2))})
	require.NoError(t, err)
	itemA := doc.Items[0].ID

	const updates = 300
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < updates; i++ {
			qty := 1 + i%10
			_, err := f.sales.Update(ctx, "u1", doc.ID, dto.UpdateDocumentRequest{
				Items: lines(dto.LineItemRequest{ID: itemA, ProductID: "A", Quantity: qty}),
			})
			if !assert.NoError(t, err) {
				return
			}
		}
	}()

	reads := 0
	for running := true; running; reads++ {
		select {
		case <-done:
			running = false
		default:
		}
		got, err := f.sales.Get(ctx, doc.ID)
		require.NoError(t, err)
		assertTotalConsistente(t, got)
	}
	assert.Positive(t, reads)
}

// lockRecorder registra el orden en que se bloquean los productos.
type lockRecorder struct {
	repository.ProductRepository
	mu    *sync.Mutex
	order *[]string
}

func (r lockRecorder) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	r.mu.Lock()
	*r.order = append(*r.order, id)
	r.mu.Unlock()
	return r.ProductRepository.GetForUpdate(ctx, id)
}

type lockRecorderRunner struct {
	inner repository.TxRunner
	mu    sync.Mutex
	order []string
}

func (r *lockRecorderRunner) Run(ctx context.Context, fn func(ctx context.Context, repos repository.TxRepos) error) error {
	return r.inner.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		repos.Products = lockRecorder{ProductRepository: repos.Products, mu: &r.mu, order: &r.order}
		return fn(ctx, repos)
	})
}

func (r *lockRecorderRunner) take() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.order
	r.order = nil
	return out
}

// Los productos se bloquean en orden de id antes de aplicar operaciones, sea cual sea el
// orden de las líneas.
func TestMutaciones_BloqueanProductosEnOrden(t *testing.T) {
	store := memory.New()
	runner := &lockRecorderRunner{inner: store}
	f := newFixture(t, runner, store)
	for _, id := range []string{"A", "B", "C"} {
		f.product(t, id, "1.00", 10)
	}
	ctx := context.Background()

	doc, err := f.sales.Create(ctx, "u1", dto.CreateDocumentRequest{ClientID: clientID, Items: lines(line("C", 1), line("A", 1), line("B", 1))})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, runner.take()[:3])

	// C -> A en la primera línea, se borran las demás: A, B y C intervienen.
	_, err = f.sales.Update(ctx, "u1", doc.ID, dto.UpdateDocumentRequest{
		Items: lines(dto.LineItemRequest{ID: doc.Items[0].ID, ProductID: "A", Quantity: 2}),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, runner.take()[:3])

	require.NoError(t, f.sales.Delete(ctx, "u1", doc.ID))
	assert.Equal(t, []string{"A"}, runner.take()[:1])
	assert.Equal(t, 10, f.stock(t, "A"))
	assert.Equal(t, 10, f.stock(t, "B"))
	assert.Equal(t, 10, f.stock(t, "C"))
}
