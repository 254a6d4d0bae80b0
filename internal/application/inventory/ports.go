package inventory

import (
	"context"

	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

// MutationRunner ejecuta un cambio de stock como mutación coordinada: una transacción,
// su traza y el log del estado final. Lo implementa billing.Coordinator.
type MutationRunner interface {
	RunMutation(ctx context.Context, kind, op, id string, fn func(ctx context.Context, repos repository.TxRepos) error) error
}
