package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Boutique représente un marchand indépendant (frontière de tenant)
type Boutique struct {
	ID        gocql.UUID `json:"id" db:"boutique_id"`
	Name      string     `json:"name" db:"name"`
	Code      string     `json:"code" db:"code"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
