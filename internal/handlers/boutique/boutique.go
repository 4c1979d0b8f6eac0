package boutique

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"vitrine_back_end/internal/auth"
	"vitrine_back_end/internal/database"
	"vitrine_back_end/internal/middleware"
)

// Handlers expose la consultation des boutiques du principal courant
type Handlers struct {
	catalog *database.CatalogStore
}

func NewHandlers(catalog *database.CatalogStore) *Handlers {
	return &Handlers{catalog: catalog}
}

// MyBoutiques - Boutiques visibles par le principal courant.
// Action sans périmètre : tout principal authentifié peut lister ses
// propres boutiques. Un admin global les voit toutes.
func (h *Handlers) MyBoutiques(c *gin.Context) {
	principal := middleware.CurrentPrincipal(c)

	if d := auth.Evaluate(principal, gocql.UUID{}, auth.ActionListOwnBoutiques); !d.Allowed {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentification requise"})
		return
	}

	ctx := c.Request.Context()
	if principal.IsAdmin() {
		boutiques, err := h.catalog.ListAllBoutiques(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"boutiques": boutiques, "total": len(boutiques)})
		return
	}

	boutiques, err := h.catalog.ListBoutiques(ctx, principal.AssignedBoutiques)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"boutiques": boutiques, "total": len(boutiques)})
}
