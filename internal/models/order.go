package models

import (
	"time"

	"github.com/gocql/gocql"
)

// OrderLine est immuable : une commande a référencé cette variante à un
// instant donné. Son existence interdit la suppression de la variante.
type OrderLine struct {
	ID        gocql.UUID `json:"id" db:"id"`
	OrderID   gocql.UUID `json:"order_id" db:"order_id"`
	VariantID gocql.UUID `json:"variant_id" db:"variant_id"`
	Quantity  int        `json:"quantity" db:"quantity"`
	UnitPrice float64    `json:"unit_price" db:"unit_price"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
