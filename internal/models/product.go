package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Statuts de validation partagés entre produits et variantes
const (
	StatusNotApproved   = "not_approved"
	StatusApproved      = "approved"
	StatusNeedsRevision = "needs_revision"
	StatusRejected      = "rejected"
)

type Product struct {
	ID          gocql.UUID       `json:"id" db:"product_id"`
	BoutiqueID  gocql.UUID       `json:"boutique_id" db:"boutique_id"`
	Title       string           `json:"title" db:"title"`
	Code        string           `json:"code" db:"code"`
	Description string           `json:"description" db:"description"`
	CategoryID  *gocql.UUID      `json:"category_id,omitempty" db:"category_id"`
	Status      string           `json:"status" db:"status"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`
	UpdatedBy   string           `json:"updated_by" db:"updated_by"`
	LastAction  string           `json:"last_action" db:"last_action"`
	Variants    []ProductVariant `json:"variants,omitempty"`
}

type ProductVariant struct {
	ID           gocql.UUID     `json:"id" db:"id"`
	ProductID    gocql.UUID     `json:"product_id" db:"product_id"`
	Color        string         `json:"color" db:"color"`
	Size         string         `json:"size" db:"size"`
	Price        float64        `json:"price" db:"price"`
	PromoPrice   *float64       `json:"promo_price,omitempty" db:"promo_price"`
	PromoStart   *time.Time     `json:"promo_start,omitempty" db:"promo_start"`
	PromoEnd     *time.Time     `json:"promo_end,omitempty" db:"promo_end"`
	LeadTimeDays int            `json:"lead_time_days" db:"lead_time_days"`
	CurrencyID   *gocql.UUID    `json:"currency_id,omitempty" db:"currency_id"`
	Status       string         `json:"status" db:"status"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
	UpdatedBy    string         `json:"updated_by" db:"updated_by"`
	LastAction   string         `json:"last_action" db:"last_action"`
	Assets       []VariantAsset `json:"assets,omitempty"`
}

// VariantAsset référence un objet 3D stocké dans MinIO.
// Le contenu est opaque pour le backend, seule la clé d'objet compte.
type VariantAsset struct {
	ID        gocql.UUID `json:"id" db:"id"`
	VariantID gocql.UUID `json:"variant_id" db:"variant_id"`
	ObjectKey string     `json:"object_key" db:"object_key"`
	Format    string     `json:"format" db:"format"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
