package routes

import (
	"github.com/gin-gonic/gin"

	"vitrine_back_end/internal/approval"
	"vitrine_back_end/internal/auth"
	"vitrine_back_end/internal/cache"
	"vitrine_back_end/internal/database"
	"vitrine_back_end/internal/handlers/admin"
	"vitrine_back_end/internal/handlers/boutique"
	"vitrine_back_end/internal/handlers/review"
	"vitrine_back_end/internal/middleware"
	"vitrine_back_end/internal/service"
	"vitrine_back_end/internal/services"
)

func RegisterRoutes(r *gin.Engine) {
	// Assemblage des services sur les stores ScyllaDB
	catalogStore := database.NewCatalogStore()
	orderStore := database.NewOrderLineStore()
	principalStore := database.NewPrincipalStore()

	guard := approval.NewOrderReferenceGuard(orderStore)
	approvalSvc := approval.NewService(catalogStore, guard, service.ProductIndexer{}, services.AssetStorage{})
	roleSvc := auth.NewRoleService(principalStore, catalogStore, cache.InvalidatePrincipalCache)

	reviewHandlers := review.NewHandlers(approvalSvc)
	adminHandlers := admin.NewHandlers(roleSvc)
	boutiqueHandlers := boutique.NewHandlers(catalogStore)

	api := r.Group("/api", middleware.APIRateLimit(), middleware.AuthRequired())

	// Boutiques du principal courant
	api.GET("/boutiques/mine", boutiqueHandlers.MyBoutiques)

	// Revue des produits et variantes (la politique d'accès tranche
	// par ressource dans le service, pas ici)
	rev := api.Group("/review")
	{
		rev.GET("/products", reviewHandlers.ListPending)
		rev.GET("/products/:id", reviewHandlers.GetProduct)
		rev.PATCH("/products/:id", reviewHandlers.PatchProduct)
		rev.DELETE("/products/:id", reviewHandlers.DeleteProduct)
		rev.PATCH("/products/bulk-approve", reviewHandlers.BulkApproveProducts)
		rev.POST("/products/bulk-delete", reviewHandlers.BulkDeleteProducts)
		rev.PATCH("/variants/:id", reviewHandlers.PatchVariant)
		rev.PATCH("/variants/bulk-approve", reviewHandlers.BulkApproveVariants)
	}

	// Administration globale des rôles et périmètres
	adm := api.Group("/admin", middleware.RequireAdmin)
	{
		adm.PUT("/users/role", adminHandlers.SetUserRole)
		adm.PUT("/users/boutiques", adminHandlers.AssignBoutiques)
	}
}
