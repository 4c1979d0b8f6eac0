package review

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"vitrine_back_end/internal/middleware"
	"vitrine_back_end/internal/utils"
)

// DeleteProduct - Suppression en cascade (assets, variantes, produit),
// refusée en bloc si une variante est référencée par une commande
func (h *Handlers) DeleteProduct(c *gin.Context) {
	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	principal := middleware.CurrentPrincipal(c)

	if err := h.svc.DeleteProduct(c.Request.Context(), principal, productID); err != nil {
		utils.LogFailedAction(c, utils.ACTION_PRODUCT_DELETE, utils.RESOURCE_PRODUCT, productID.String(), err.Error())
		respondError(c, err, "DELETE /review/products/:id")
		return
	}

	utils.LogAction(c, utils.ACTION_PRODUCT_DELETE, utils.RESOURCE_PRODUCT, productID.String(), nil, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Produit supprimé avec succès"})
}

// BulkDeleteProducts - Suppression en masse, résultat par cible
func (h *Handlers) BulkDeleteProducts(c *gin.Context) {
	var req struct {
		ProductIDs []string `json:"product_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides: " + err.Error()})
		return
	}

	ids := make([]gocql.UUID, 0, len(req.ProductIDs))
	for _, raw := range req.ProductIDs {
		id, err := gocql.ParseUUID(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide: " + raw})
			return
		}
		ids = append(ids, id)
	}

	principal := middleware.CurrentPrincipal(c)
	result := h.svc.BulkDeleteProducts(c.Request.Context(), principal, ids)

	utils.LogAction(c, utils.ACTION_REVIEW_BULK_DELETE, utils.RESOURCE_PRODUCT, "", nil, result)
	c.JSON(http.StatusOK, result)
}
