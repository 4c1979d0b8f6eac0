package admin

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"vitrine_back_end/internal/auth"
	"vitrine_back_end/internal/middleware"
	"vitrine_back_end/internal/utils"
)

// Handlers expose la gestion des rôles et des périmètres boutique.
// Réservé aux admins globaux : le middleware RequireAdmin coupe en amont,
// la politique d'accès revérifie dans le service.
type Handlers struct {
	roles *auth.RoleService
}

func NewHandlers(roles *auth.RoleService) *Handlers {
	return &Handlers{roles: roles}
}

// SetUserRole - Changer le rôle d'un utilisateur (user ou boutique_admin)
func (h *Handlers) SetUserRole(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		Role  string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides: " + err.Error()})
		return
	}

	actor := middleware.CurrentPrincipal(c)
	principal, err := h.roles.SetRole(c.Request.Context(), actor, req.Email, req.Role)
	if err != nil {
		utils.LogFailedAction(c, utils.ACTION_ROLE_SET, utils.RESOURCE_USER, req.Email, err.Error())
		respondError(c, err)
		return
	}

	utils.LogAction(c, utils.ACTION_ROLE_SET, utils.RESOURCE_USER, principal.ID, nil, principal)
	log.Printf("✅ Rôle %s attribué à %s", req.Role, req.Email)
	c.JSON(http.StatusOK, gin.H{
		"message": "Rôle mis à jour avec succès",
		"user":    principal,
	})
}

// AssignBoutiques - Remplacer le périmètre boutique d'un utilisateur.
// Tout-ou-rien : un seul id inconnu rejette l'appel entier.
func (h *Handlers) AssignBoutiques(c *gin.Context) {
	var req struct {
		Email       string   `json:"email" binding:"required,email"`
		BoutiqueIDs []string `json:"boutique_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides: " + err.Error()})
		return
	}

	ids := make([]gocql.UUID, 0, len(req.BoutiqueIDs))
	for _, raw := range req.BoutiqueIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ID boutique invalide: " + raw})
			return
		}
		ids = append(ids, gocql.UUID(id))
	}

	actor := middleware.CurrentPrincipal(c)
	principal, err := h.roles.AssignBoutiques(c.Request.Context(), actor, req.Email, ids)
	if err != nil {
		utils.LogFailedAction(c, utils.ACTION_BOUTIQUES_ASSIGN, utils.RESOURCE_USER, req.Email, err.Error())
		respondError(c, err)
		return
	}

	utils.LogAction(c, utils.ACTION_BOUTIQUES_ASSIGN, utils.RESOURCE_USER, principal.ID, nil, principal)
	c.JSON(http.StatusOK, gin.H{
		"message": "Périmètre boutique mis à jour avec succès",
		"user":    principal,
	})
}

func respondError(c *gin.Context, err error) {
	var denied *auth.DeniedError
	if errors.As(err, &denied) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Accès refusé", "reason": denied.Reason})
		return
	}

	var unknown *auth.UnknownBoutiquesError
	if errors.As(err, &unknown) {
		missing := make([]string, 0, len(unknown.Missing))
		for _, id := range unknown.Missing {
			missing = append(missing, id.String())
		}
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Boutiques inconnues, aucune assignation effectuée",
			"missing": missing,
		})
		return
	}

	if errors.Is(err, auth.ErrPrincipalNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	if errors.Is(err, auth.ErrInvalidRole) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rôle inconnu"})
		return
	}

	log.Printf("❌ Erreur interne admin: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
}
