package auth

import (
	"github.com/gocql/gocql"

	"vitrine_back_end/internal/models"
)

// Action identifie une opération soumise à la politique d'accès
type Action string

const (
	ActionReviewList       Action = "review.list"
	ActionReviewProduct    Action = "review.product"
	ActionReviewVariant    Action = "review.variant"
	ActionDeleteProduct    Action = "product.delete"
	ActionListOwnBoutiques Action = "boutiques.list_own"
	ActionManageRoles      Action = "admin.roles"
	ActionAssignBoutiques  Action = "admin.boutiques"
)

// Codes de refus, distincts pour que le front affiche le bon message
const (
	DenyUnauthenticated     = "unauthenticated"
	DenyInsufficientRole    = "insufficient_role"
	DenyBoutiqueNotAssigned = "boutique_not_assigned"
)

// Actions accessibles à tout principal authentifié, sans périmètre boutique
var unscopedActions = map[Action]bool{
	ActionListOwnBoutiques: true,
}

// Decision est le résultat d'une évaluation de politique. Jamais d'erreur :
// un refus porte un code de raison, pas une panique ni un throw.
type Decision struct {
	Allowed bool
	Reason  string
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason string) Decision {
	return Decision{Reason: reason}
}

// DeniedError enveloppe un refus de politique pour la couche service
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string {
	return "accès refusé: " + e.Reason
}

// Evaluate décide si un principal peut exécuter une action sur une boutique.
// Règles, dans l'ordre :
//  1. action sans périmètre → tout principal authentifié
//  2. ni admin ni boutique_admin → refus
//  3. admin → autorisé quelle que soit la boutique
//  4. boutique_admin → autorisé ssi la boutique est dans son périmètre
//
// Fonction pure : aucune I/O, aucun état ambiant.
func Evaluate(p models.Principal, boutiqueID gocql.UUID, action Action) Decision {
	if p.IsAnonymous() {
		return Deny(DenyUnauthenticated)
	}
	if unscopedActions[action] {
		return Allow()
	}
	if !p.IsAdmin() && !p.IsBoutiqueAdmin() {
		return Deny(DenyInsufficientRole)
	}
	if p.IsAdmin() {
		return Allow()
	}
	if p.HasBoutique(boutiqueID) {
		return Allow()
	}
	return Deny(DenyBoutiqueNotAssigned)
}

// EvaluateGlobal couvre les actions globales (gestion des rôles et des
// périmètres) : réservées aux admins, indépendamment de toute boutique.
func EvaluateGlobal(p models.Principal, action Action) Decision {
	if p.IsAnonymous() {
		return Deny(DenyUnauthenticated)
	}
	if !p.IsAdmin() {
		return Deny(DenyInsufficientRole)
	}
	return Allow()
}
