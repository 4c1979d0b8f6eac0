package approval

import (
	"context"

	"github.com/gocql/gocql"
)

// OrderLineStore répond à une seule question : une de ces variantes
// est-elle référencée par une ligne de commande ?
type OrderLineStore interface {
	HasOrderLines(ctx context.Context, variantIDs []gocql.UUID) (bool, error)
}

// OrderReferenceGuard bloque la destruction d'entités déjà commandées.
// Pour un produit, l'appelant passe l'ensemble complet de ses variantes :
// une seule variante référencée suffit à refuser toute la suppression.
type OrderReferenceGuard struct {
	orders OrderLineStore
}

func NewOrderReferenceGuard(orders OrderLineStore) *OrderReferenceGuard {
	return &OrderReferenceGuard{orders: orders}
}

func (g *OrderReferenceGuard) CanDelete(ctx context.Context, variantIDs []gocql.UUID) (bool, error) {
	if len(variantIDs) == 0 {
		return true, nil
	}
	referenced, err := g.orders.HasOrderLines(ctx, variantIDs)
	if err != nil {
		return false, err
	}
	return !referenced, nil
}
