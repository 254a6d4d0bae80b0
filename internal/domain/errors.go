package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrTransaction       = errors.New("fallo de transacción")
)

// NotFoundError indica qué entidad no existe (producto, cliente, venta, factura, línea).
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q no encontrado", e.Entity, e.ID)
}

// Is permite errors.Is(err, ErrNotFound).
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFound construye un NotFoundError.
func NewNotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// InsufficientStockError lleva el contexto necesario para un mensaje accionable:
// producto, cantidad solicitada y cantidad disponible en ese momento.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para producto %s: solicitado %d, disponible %d",
		e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// InvalidLineItemError rechaza una línea de detalle mal formada.
type InvalidLineItemError struct {
	Reason string
}

func (e *InvalidLineItemError) Error() string {
	return "línea de detalle inválida: " + e.Reason
}

func (e *InvalidLineItemError) Is(target error) bool { return target == ErrInvalidInput }

// NewInvalidLineItem construye un InvalidLineItemError con formato.
func NewInvalidLineItem(format string, args ...any) error {
	return &InvalidLineItemError{Reason: fmt.Sprintf(format, args...)}
}

// InvalidInputError rechaza una entrada con el motivo concreto (campo faltante, producto inactivo...).
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "entrada inválida: " + e.Reason
}

func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

// NewInvalidInput construye un InvalidInputError con formato.
func NewInvalidInput(format string, args ...any) error {
	return &InvalidInputError{Reason: fmt.Sprintf(format, args...)}
}

// TransactionError envuelve fallos de infraestructura ocurridos dentro de una mutación
// (begin, commit, errores del driver).
type TransactionError struct {
	Cause error
}

func (e *TransactionError) Error() string {
	return "transacción fallida: " + e.Cause.Error()
}

func (e *TransactionError) Unwrap() error { return e.Cause }

func (e *TransactionError) Is(target error) bool { return target == ErrTransaction }

// IsDomainError indica si err pertenece a la taxonomía del dominio y debe propagarse sin envolver.
func IsDomainError(err error) bool {
	var nf *NotFoundError
	var is *InsufficientStockError
	var il *InvalidLineItemError
	var te *TransactionError
	return errors.As(err, &nf) || errors.As(err, &is) || errors.As(err, &il) || errors.As(err, &te) ||
		errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrDuplicate)
}
