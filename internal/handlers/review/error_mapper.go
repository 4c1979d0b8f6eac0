package review

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"vitrine_back_end/internal/approval"
	"vitrine_back_end/internal/auth"
)

// respondError traduit la taxonomie d'erreurs du moteur de revue en codes
// HTTP. Les erreurs internes sont loguées avec leur contexte mais jamais
// renvoyées telles quelles au client.
func respondError(c *gin.Context, err error, requestInfo string) {
	var denied *auth.DeniedError
	if errors.As(err, &denied) {
		if denied.Reason == auth.DenyUnauthenticated {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentification requise"})
			return
		}
		c.JSON(http.StatusForbidden, gin.H{
			"error":  "Accès refusé",
			"reason": denied.Reason,
		})
		return
	}

	var validation *approval.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validation.Reason,
			"field": validation.Field,
		})
		return
	}

	var transition *approval.TransitionError
	if errors.As(err, &transition) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":       "Transition de statut interdite",
			"from_status": transition.From,
			"action":      transition.Action,
		})
		return
	}

	if errors.Is(err, approval.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ressource introuvable"})
		return
	}

	if errors.Is(err, approval.ErrHasOrders) {
		c.JSON(http.StatusConflict, gin.H{
			"error":  "Suppression refusée: des commandes référencent ce produit",
			"reason": "has_existing_orders",
		})
		return
	}

	log.Printf("❌ Erreur interne (%s): %v", requestInfo, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
}
