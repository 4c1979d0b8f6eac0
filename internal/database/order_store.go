package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/gocql/gocql"
)

// OrderLineStore implémente approval.OrderLineStore sur le keyspace orders.
// order_lines_by_variant est la table de lookup partitionnée par variante.
type OrderLineStore struct{}

func NewOrderLineStore() *OrderLineStore {
	return &OrderLineStore{}
}

func (s *OrderLineStore) HasOrderLines(ctx context.Context, variantIDs []gocql.UUID) (bool, error) {
	session, err := GetOrdersSession()
	if err != nil {
		return false, err
	}

	query := `SELECT variant_id FROM order_lines_by_variant WHERE variant_id = ? LIMIT 1`
	for _, vid := range variantIDs {
		var found gocql.UUID
		err := session.Query(query, vid).WithContext(ctx).Scan(&found)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, gocql.ErrNotFound) {
			return false, fmt.Errorf("vérification commandes pour la variante %s: %w", vid, err)
		}
	}
	return false, nil
}
