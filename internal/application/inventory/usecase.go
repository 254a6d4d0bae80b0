package inventory

import (
	"context"

	"github.com/jhoicas/ventas-api/internal/application/dto"
	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

// RegisterMovementUseCase registra movimientos manuales de inventario (IN, OUT, ADJUSTMENT)
// como mutación coordinada a través del StockLedger.
type RegisterMovementUseCase struct {
	mutations MutationRunner
	movements repository.InventoryMovementRepository
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(mutations MutationRunner, movements repository.InventoryMovementRepository) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{mutations: mutations, movements: movements}
}

// MovementInputDTO entrada para registrar un movimiento manual.
// IN y OUT requieren Quantity > 0; ADJUSTMENT acepta cantidad con signo distinta de cero.
type MovementInputDTO struct {
	UserID    string
	ProductID string
	Type      string
	Quantity  int
}

// RegisterMovement valida el tipo y aplica el cambio sobre el stock en una mutación.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, input MovementInputDTO) (*dto.StockResponse, error) {
	if input.ProductID == "" {
		return nil, domain.NewInvalidInput("product_id requerido")
	}
	var change int
	switch input.Type {
	case entity.MovementTypeIN:
		change = input.Quantity
	case entity.MovementTypeOUT:
		change = -input.Quantity
	case entity.MovementTypeADJUSTMENT:
		if input.Quantity == 0 {
			return nil, domain.NewInvalidInput("un ajuste no puede ser 0")
		}
		change = input.Quantity
	default:
		return nil, domain.NewInvalidInput("tipo de movimiento desconocido %q (IN|OUT|ADJUSTMENT)", input.Type)
	}
	if input.Type != entity.MovementTypeADJUSTMENT && input.Quantity <= 0 {
		return nil, domain.NewInvalidInput("la cantidad de un movimiento %s debe ser > 0", input.Type)
	}

	var stock int
	err := uc.mutations.RunMutation(ctx, "inventory", "movement", input.ProductID, func(ctx context.Context, repos repository.TxRepos) error {
		ledger := NewStockLedger(repos, MovementRef{UserID: input.UserID})
		product, err := ledger.Move(ctx, input.ProductID, change, input.Type)
		if err != nil {
			return err
		}
		stock = product.Stock
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto.StockResponse{ProductID: input.ProductID, Stock: stock}, nil
}

// RegisterMovementFromRequest adapta el request HTTP al caso de uso.
func (uc *RegisterMovementUseCase) RegisterMovementFromRequest(ctx context.Context, userID string, in dto.RegisterMovementRequest) (*dto.StockResponse, error) {
	return uc.RegisterMovement(ctx, MovementInputDTO{
		UserID:    userID,
		ProductID: in.ProductID,
		Type:      in.Type,
		Quantity:  in.Quantity,
	})
}

// ListMovements lista el historial de movimientos de un producto (más recientes primero).
func (uc *RegisterMovementUseCase) ListMovements(ctx context.Context, productID string, page dto.PageRequest) ([]dto.MovementResponse, error) {
	if productID == "" {
		return nil, domain.NewInvalidInput("product_id requerido")
	}
	page.DefaultPage()
	list, err := uc.movements.ListByProduct(ctx, productID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.MovementResponse{
			ID:             m.ID,
			ProductID:      m.ProductID,
			Type:           m.Type,
			QuantityChange: m.QuantityChange,
			QuantityBefore: m.QuantityBefore,
			QuantityAfter:  m.QuantityAfter,
			ReferenceType:  m.ReferenceType,
			ReferenceID:    m.ReferenceID,
			CreatedBy:      m.CreatedBy,
			CreatedAt:      m.CreatedAt,
		})
	}
	return out, nil
}
