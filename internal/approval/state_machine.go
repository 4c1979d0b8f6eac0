package approval

import (
	"time"

	"github.com/gocql/gocql"

	"vitrine_back_end/internal/models"
)

// Actions de transition. Le nom de l'action est estampillé tel quel dans
// last_action à chaque mutation.
const (
	ActionApprove       = "approve"
	ActionNeedsRevision = "needs_revision"
	ActionReject        = "reject"
	ActionResubmit      = "resubmit"
)

var actionTarget = map[string]string{
	ActionApprove:       models.StatusApproved,
	ActionNeedsRevision: models.StatusNeedsRevision,
	ActionReject:        models.StatusRejected,
	ActionResubmit:      models.StatusNotApproved,
}

// Transitions légales, identiques pour produits et variantes.
// rejected est un vrai statut des deux côtés ; la resoumission repasse
// par not_approved.
var allowedTransitions = map[string]map[string]bool{
	models.StatusNotApproved: {
		models.StatusApproved:      true,
		models.StatusNeedsRevision: true,
		models.StatusRejected:      true,
	},
	models.StatusNeedsRevision: {
		models.StatusApproved:    true,
		models.StatusNotApproved: true,
	},
	models.StatusApproved: {
		models.StatusNeedsRevision: true,
	},
	models.StatusRejected: {
		models.StatusNotApproved: true,
	},
}

// VariantApprovalData porte les champs exigés pour approuver une variante
type VariantApprovalData struct {
	Price        float64     `json:"price"`
	PromoPrice   *float64    `json:"promo_price,omitempty"`
	PromoStart   *time.Time  `json:"promo_start,omitempty"`
	PromoEnd     *time.Time  `json:"promo_end,omitempty"`
	LeadTimeDays int         `json:"lead_time_days"`
	CurrencyID   *gocql.UUID `json:"currency_id"`
}

// VariantApprovalItem cible une variante dans un appel bulk ou dans
// l'approbation d'un produit parent
type VariantApprovalItem struct {
	VariantID gocql.UUID `json:"variant_id"`
	VariantApprovalData
}

// ProductApprovalData : la catégorie est obligatoire pour approuver un
// produit ; les variantes listées sont approuvées dans la même mutation.
type ProductApprovalData struct {
	CategoryID *gocql.UUID           `json:"category_id"`
	Variants   []VariantApprovalItem `json:"variants,omitempty"`
}

func checkTransition(from, action string) error {
	target, ok := actionTarget[action]
	if !ok {
		return &TransitionError{From: from, Action: action}
	}
	if !allowedTransitions[from][target] {
		return &TransitionError{From: from, Action: action}
	}
	return nil
}

// ApplyProductTransition valide puis applique une transition sur le produit
// en mémoire. Rien n'est persisté ici ; en cas d'erreur le produit chargé
// est à jeter, pas à sauvegarder.
func ApplyProductTransition(p *models.Product, action string, data *ProductApprovalData, actor string, now time.Time) error {
	if err := checkTransition(p.Status, action); err != nil {
		return err
	}

	if action == ActionApprove {
		if data == nil || data.CategoryID == nil {
			return &ValidationError{Field: "category_id", Reason: "catégorie requise pour l'approbation"}
		}
		p.CategoryID = data.CategoryID
	}

	p.Status = actionTarget[action]
	stampProduct(p, action, actor, now)
	return nil
}

// ApplyVariantTransition : même contrat que pour le produit. L'approbation
// exige prix > 0, délai ≥ 0 et une devise ; la promo est optionnelle mais
// sa fenêtre doit être cohérente.
func ApplyVariantTransition(v *models.ProductVariant, action string, data *VariantApprovalData, actor string, now time.Time) error {
	if err := checkTransition(v.Status, action); err != nil {
		return err
	}

	if action == ActionApprove {
		if data == nil {
			return &ValidationError{Field: "approval_data", Reason: "données d'approbation requises"}
		}
		if data.Price <= 0 {
			return &ValidationError{Field: "price", Reason: "le prix catalogue doit être strictement positif"}
		}
		if data.LeadTimeDays < 0 {
			return &ValidationError{Field: "lead_time_days", Reason: "le délai de livraison ne peut pas être négatif"}
		}
		if data.CurrencyID == nil {
			return &ValidationError{Field: "currency_id", Reason: "devise requise"}
		}
		if data.PromoPrice != nil {
			if *data.PromoPrice <= 0 {
				return &ValidationError{Field: "promo_price", Reason: "le prix promo doit être strictement positif"}
			}
			if data.PromoStart != nil && data.PromoEnd != nil && data.PromoStart.After(*data.PromoEnd) {
				return &ValidationError{Field: "promo_period", Reason: "le début de promo doit précéder la fin"}
			}
		}

		v.Price = data.Price
		v.PromoPrice = data.PromoPrice
		v.PromoStart = data.PromoStart
		v.PromoEnd = data.PromoEnd
		v.LeadTimeDays = data.LeadTimeDays
		v.CurrencyID = data.CurrencyID
	}

	v.Status = actionTarget[action]
	stampVariant(v, action, actor, now)
	return nil
}

func stampProduct(p *models.Product, action, actor string, now time.Time) {
	p.UpdatedAt = now
	p.UpdatedBy = actor
	p.LastAction = action
}

func stampVariant(v *models.ProductVariant, action, actor string, now time.Time) {
	v.UpdatedAt = now
	v.UpdatedBy = actor
	v.LastAction = action
}
