package approval

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("ressource introuvable")

	// ErrHasOrders : au moins une variante du produit est référencée par
	// une ligne de commande, la suppression est refusée en bloc.
	ErrHasOrders = errors.New("le produit a des commandes existantes")
)

// TransitionError : l'action demandée n'est pas légale depuis le statut courant
type TransitionError struct {
	From   string
	Action string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition interdite: action %q depuis le statut %q", e.Action, e.From)
}

// ValidationError : précondition de la machine à états non remplie.
// Field permet au front de pointer le champ fautif.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation échouée sur %s: %s", e.Field, e.Reason)
}
