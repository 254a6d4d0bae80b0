package billing

import (
	"context"

	"github.com/jhoicas/ventas-api/internal/application/inventory"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

// TxFunc es el cuerpo de una mutación: recibe repositorios atados a la transacción.
type TxFunc func(ctx context.Context, repos repository.TxRepos) error

var _ inventory.MutationRunner = (*Coordinator)(nil)

// BillingTxRunner ejecuta una función dentro de una transacción que incluye repos de
// inventario y facturación.
type BillingTxRunner = repository.TxRunner
