package repository

import "context"

// TxRepos agrupa los repositorios atados a una misma transacción.
// Todo lo escrito a través de ellos se confirma o se descarta junto.
type TxRepos struct {
	Products  ProductRepository
	Clients   ClientRepository
	Documents DocumentRepository
	LineItems LineItemRepository
	Movements InventoryMovementRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn retorna nil, Rollback en otro caso.
// El error de fn se devuelve sin modificar.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos TxRepos) error) error
}

// ReadTxRunner ejecuta lecturas sobre una única instantánea consistente. fn no debe escribir.
// Es opcional: sin él, las lecturas compuestas usan TxRunner.Run.
type ReadTxRunner interface {
	RunReadOnly(ctx context.Context, fn func(ctx context.Context, repos TxRepos) error) error
}
