package review

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"vitrine_back_end/internal/approval"
	"vitrine_back_end/internal/middleware"
	"vitrine_back_end/internal/models"
	"vitrine_back_end/internal/utils"
)

// Handlers expose le moteur de revue sur la couche HTTP
type Handlers struct {
	svc *approval.Service
}

func NewHandlers(svc *approval.Service) *Handlers {
	return &Handlers{svc: svc}
}

var auditActionByTransition = map[string]string{
	approval.ActionApprove:       utils.ACTION_REVIEW_APPROVE,
	approval.ActionNeedsRevision: utils.ACTION_REVIEW_NEEDS_REVISION,
	approval.ActionReject:        utils.ACTION_REVIEW_REJECT,
	approval.ActionResubmit:      utils.ACTION_REVIEW_RESUBMIT,
}

// ListPending - Produits en attente de revue, filtrés par statut
func (h *Handlers) ListPending(c *gin.Context) {
	status := c.DefaultQuery("status", models.StatusNotApproved)
	principal := middleware.CurrentPrincipal(c)

	products, err := h.svc.PendingReview(c.Request.Context(), principal, status)
	if err != nil {
		respondError(c, err, "GET /review/products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    len(products),
	})
}

// GetProduct - Vue détail d'un produit avec variantes et assets
func (h *Handlers) GetProduct(c *gin.Context) {
	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}
	principal := middleware.CurrentPrincipal(c)

	product, err := h.svc.GetProduct(c.Request.Context(), principal, productID)
	if err != nil {
		respondError(c, err, "GET /review/products/:id")
		return
	}
	c.JSON(http.StatusOK, product)
}

// PatchProduct - Appliquer une action de revue sur un produit
func (h *Handlers) PatchProduct(c *gin.Context) {
	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	var req struct {
		Action       string                        `json:"action" binding:"required"`
		ApprovalData *approval.ProductApprovalData `json:"approval_data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides: " + err.Error()})
		return
	}

	principal := middleware.CurrentPrincipal(c)
	ctx := c.Request.Context()

	var product *models.Product
	switch req.Action {
	case approval.ActionApprove:
		var data approval.ProductApprovalData
		if req.ApprovalData != nil {
			data = *req.ApprovalData
		}
		product, err = h.svc.ApproveProduct(ctx, principal, productID, data)
	case approval.ActionNeedsRevision:
		product, err = h.svc.MarkProductNeedsRevision(ctx, principal, productID)
	case approval.ActionReject:
		product, err = h.svc.RejectProduct(ctx, principal, productID)
	case approval.ActionResubmit:
		product, err = h.svc.ResubmitProduct(ctx, principal, productID)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Action inconnue: " + req.Action})
		return
	}

	auditAction := auditActionByTransition[req.Action]
	if err != nil {
		utils.LogFailedAction(c, auditAction, utils.RESOURCE_PRODUCT, productID.String(), err.Error())
		respondError(c, err, "PATCH /review/products/:id")
		return
	}

	utils.LogAction(c, auditAction, utils.RESOURCE_PRODUCT, productID.String(), nil, product)
	c.JSON(http.StatusOK, gin.H{
		"message": "Produit mis à jour avec succès",
		"product": product,
	})
}

// PatchVariant - Appliquer une action de revue sur une variante
func (h *Handlers) PatchVariant(c *gin.Context) {
	variantID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID variante invalide"})
		return
	}

	var req struct {
		Action       string                        `json:"action" binding:"required"`
		ApprovalData *approval.VariantApprovalData `json:"approval_data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides: " + err.Error()})
		return
	}

	principal := middleware.CurrentPrincipal(c)
	ctx := c.Request.Context()

	var variant *models.ProductVariant
	switch req.Action {
	case approval.ActionApprove:
		var data approval.VariantApprovalData
		if req.ApprovalData != nil {
			data = *req.ApprovalData
		}
		variant, err = h.svc.ApproveVariant(ctx, principal, variantID, data)
	case approval.ActionNeedsRevision:
		variant, err = h.svc.MarkVariantNeedsRevision(ctx, principal, variantID)
	case approval.ActionReject:
		variant, err = h.svc.RejectVariant(ctx, principal, variantID)
	case approval.ActionResubmit:
		variant, err = h.svc.ResubmitVariant(ctx, principal, variantID)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Action inconnue: " + req.Action})
		return
	}

	auditAction := auditActionByTransition[req.Action]
	if err != nil {
		utils.LogFailedAction(c, auditAction, utils.RESOURCE_VARIANT, variantID.String(), err.Error())
		respondError(c, err, "PATCH /review/variants/:id")
		return
	}

	utils.LogAction(c, auditAction, utils.RESOURCE_VARIANT, variantID.String(), nil, variant)
	c.JSON(http.StatusOK, gin.H{
		"message": "Variante mise à jour avec succès",
		"variant": variant,
	})
}

// BulkApproveVariants - Approbation en masse, résultat par cible
func (h *Handlers) BulkApproveVariants(c *gin.Context) {
	var req struct {
		Variants []approval.VariantApprovalItem `json:"variants" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides: " + err.Error()})
		return
	}

	principal := middleware.CurrentPrincipal(c)
	result := h.svc.BulkApproveVariants(c.Request.Context(), principal, req.Variants)

	utils.LogAction(c, utils.ACTION_REVIEW_BULK_APPROVE, utils.RESOURCE_VARIANT, "", nil, result)
	c.JSON(http.StatusOK, result)
}

// BulkApproveProducts - Approbation de produits en masse
func (h *Handlers) BulkApproveProducts(c *gin.Context) {
	var req struct {
		Products []approval.ProductApprovalItem `json:"products" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides: " + err.Error()})
		return
	}

	principal := middleware.CurrentPrincipal(c)
	result := h.svc.BulkApproveProducts(c.Request.Context(), principal, req.Products)

	utils.LogAction(c, utils.ACTION_REVIEW_BULK_APPROVE, utils.RESOURCE_PRODUCT, "", nil, result)
	c.JSON(http.StatusOK, result)
}
