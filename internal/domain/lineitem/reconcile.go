// Package lineitem contiene la lógica pura de conciliación de líneas de detalle
// de ventas y facturas: sin persistencia, sin efectos.
package lineitem

import (
	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
)

// OpKind identifica la variante de una Operation.
type OpKind int

const (
	OpCreate OpKind = iota + 1
	OpUpdateSameProduct
	OpUpdateProductSwap
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpCreate:
		return "create"
	case OpUpdateSameProduct:
		return "update"
	case OpUpdateProductSwap:
		return "swap"
	case OpDelete:
		return "delete"
	}
	return "unknown"
}

// Requested es una línea solicitada. ID vacío significa línea nueva.
type Requested struct {
	ID        string
	ProductID string
	Quantity  int
}

// Operation es una variante etiquetada por Kind. Los campos usados dependen del tipo:
//
//	OpCreate:            ProductID, Quantity
//	OpUpdateSameProduct: ItemID, ProductID, OldQuantity, Quantity, Delta (= Quantity - OldQuantity)
//	OpUpdateProductSwap: ItemID, OldProductID, OldQuantity, ProductID, Quantity
//	OpDelete:            ItemID, ProductID, Quantity (cantidad a liberar)
type Operation struct {
	Kind         OpKind
	ItemID       string
	ProductID    string
	Quantity     int
	OldProductID string
	OldQuantity  int
	Delta        int
}

// StockDelta es un cambio firmado sobre el stock de un producto (negativo = reserva).
type StockDelta struct {
	ProductID string
	Change    int
}

// StockDeltas devuelve, en el orden en que deben aplicarse, los cambios de stock de la operación.
// En un cambio de producto se libera el anterior antes de reservar el nuevo.
func (op Operation) StockDeltas() []StockDelta {
	switch op.Kind {
	case OpCreate:
		return []StockDelta{{ProductID: op.ProductID, Change: -op.Quantity}}
	case OpUpdateSameProduct:
		if op.Delta == 0 {
			return nil
		}
		return []StockDelta{{ProductID: op.ProductID, Change: -op.Delta}}
	case OpUpdateProductSwap:
		return []StockDelta{
			{ProductID: op.OldProductID, Change: op.OldQuantity},
			{ProductID: op.ProductID, Change: -op.Quantity},
		}
	case OpDelete:
		return []StockDelta{{ProductID: op.ProductID, Change: op.Quantity}}
	}
	return nil
}

// Reconcile calcula las operaciones que transforman las líneas existentes de un documento
// en el conjunto solicitado. Las eliminaciones van primero (liberan stock), después las
// líneas solicitadas en el orden recibido. Cualquier línea inválida invalida todo el conjunto.
func Reconcile(existing []*entity.LineItem, requested []Requested) ([]Operation, error) {
	byID := make(map[string]*entity.LineItem, len(existing))
	for _, li := range existing {
		byID[li.ID] = li
	}

	seen := make(map[string]bool, len(requested))
	for i, r := range requested {
		if r.ProductID == "" {
			return nil, domain.NewInvalidLineItem("línea %d: product_id requerido", i+1)
		}
		if r.Quantity < 1 {
			return nil, domain.NewInvalidLineItem("línea %d: cantidad debe ser >= 1 (recibido %d)", i+1, r.Quantity)
		}
		if r.ID == "" {
			continue
		}
		if _, ok := byID[r.ID]; !ok {
			return nil, domain.NewInvalidLineItem("línea %d: el detalle %s no pertenece al documento", i+1, r.ID)
		}
		if seen[r.ID] {
			return nil, domain.NewInvalidLineItem("línea %d: detalle %s repetido", i+1, r.ID)
		}
		seen[r.ID] = true
	}

	ops := make([]Operation, 0, len(existing)+len(requested))
	for _, li := range existing {
		if seen[li.ID] {
			continue
		}
		ops = append(ops, Operation{
			Kind:      OpDelete,
			ItemID:    li.ID,
			ProductID: li.ProductID,
			Quantity:  li.Quantity,
		})
	}

	for _, r := range requested {
		if r.ID == "" {
			ops = append(ops, Operation{Kind: OpCreate, ProductID: r.ProductID, Quantity: r.Quantity})
			continue
		}
		cur := byID[r.ID]
		if cur.ProductID == r.ProductID {
			ops = append(ops, Operation{
				Kind:        OpUpdateSameProduct,
				ItemID:      cur.ID,
				ProductID:   cur.ProductID,
				OldQuantity: cur.Quantity,
				Quantity:    r.Quantity,
				Delta:       r.Quantity - cur.Quantity,
			})
			continue
		}
		ops = append(ops, Operation{
			Kind:         OpUpdateProductSwap,
			ItemID:       cur.ID,
			OldProductID: cur.ProductID,
			OldQuantity:  cur.Quantity,
			ProductID:    r.ProductID,
			Quantity:     r.Quantity,
		})
	}
	return ops, nil
}

// NetStockChanges agrega los deltas de todas las operaciones por producto.
// Los productos con cambio neto cero no aparecen.
func NetStockChanges(ops []Operation) map[string]int {
	net := make(map[string]int)
	for _, op := range ops {
		for _, d := range op.StockDeltas() {
			net[d.ProductID] += d.Change
		}
	}
	for id, c := range net {
		if c == 0 {
			delete(net, id)
		}
	}
	return net
}
