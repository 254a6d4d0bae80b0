package billing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
	"github.com/jhoicas/ventas-api/pkg/logger"
)

// TxState estado de una mutación dentro del coordinador.
type TxState int

const (
	StateIdle TxState = iota
	StateInProgress
	StateCommitted
	StateRolledBack
)

func (s TxState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInProgress:
		return "in_progress"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled_back"
	}
	return "unknown"
}

// Mutation describe una mutación para trazas y logs.
type Mutation struct {
	Kind       string // sale | invoice | inventory
	Op         string // create | update | delete | movement
	DocumentID string // en movimientos manuales, el producto
}

// Coordinator envuelve cada mutación en un único ámbito atómico. Si el cuerpo falla,
// el TxRunner revierte todos los cambios (stock y registros) y el error se devuelve tal cual
// cuando pertenece a la taxonomía del dominio; cualquier otro se envuelve en TransactionError.
type Coordinator struct {
	runner BillingTxRunner
	log    *logger.Logger
	tracer trace.Tracer
}

// NewCoordinator construye el coordinador.
func NewCoordinator(runner BillingTxRunner, log *logger.Logger, tracer trace.Tracer) *Coordinator {
	return &Coordinator{runner: runner, log: log.Component("tx_coordinator"), tracer: tracer}
}

// Execute ejecuta fn en una transacción y devuelve el estado terminal alcanzado.
func (c *Coordinator) Execute(ctx context.Context, m Mutation, fn TxFunc) (TxState, error) {
	ctx, span := c.tracer.Start(ctx, "mutation."+m.Kind+"."+m.Op)
	defer span.End()
	span.SetAttributes(
		attribute.String("mutation.kind", m.Kind),
		attribute.String("mutation.op", m.Op),
		attribute.String("document.id", m.DocumentID),
	)

	start := time.Now()
	c.log.Debug().
		Str("kind", m.Kind).Str("op", m.Op).Str("document_id", m.DocumentID).
		Str("state", StateInProgress.String()).Msg("mutación iniciada")
	err := c.runner.Run(ctx, fn)
	if err != nil {
		state := StateRolledBack
		if !domain.IsDomainError(err) {
			err = &domain.TransactionError{Cause: err}
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.log.Warn().
			Str("kind", m.Kind).Str("op", m.Op).Str("document_id", m.DocumentID).
			Str("state", state.String()).Dur("elapsed", time.Since(start)).
			Err(err).Msg("mutación revertida")
		return state, err
	}

	state := StateCommitted
	span.SetStatus(codes.Ok, "")
	c.log.Info().
		Str("kind", m.Kind).Str("op", m.Op).Str("document_id", m.DocumentID).
		Str("state", state.String()).Dur("elapsed", time.Since(start)).
		Msg("mutación confirmada")
	return state, nil
}

// Read ejecuta una lectura compuesta (cabecera más líneas) en una sola instantánea. Usa
// RunReadOnly si el runner lo ofrece; si no, una transacción normal.
func (c *Coordinator) Read(ctx context.Context, fn TxFunc) error {
	var err error
	if r, ok := c.runner.(repository.ReadTxRunner); ok {
		err = r.RunReadOnly(ctx, fn)
	} else {
		err = c.runner.Run(ctx, fn)
	}
	if err != nil && !domain.IsDomainError(err) {
		return &domain.TransactionError{Cause: err}
	}
	return err
}

// RunMutation adapta Execute al puerto inventory.MutationRunner.
func (c *Coordinator) RunMutation(ctx context.Context, kind, op, id string, fn func(ctx context.Context, repos repository.TxRepos) error) error {
	_, err := c.Execute(ctx, Mutation{Kind: kind, Op: op, DocumentID: id}, fn)
	return err
}
