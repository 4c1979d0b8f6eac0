package approval

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gocql/gocql"

	"vitrine_back_end/internal/auth"
	"vitrine_back_end/internal/models"
)

const (
	defaultOpTimeout   = 5 * time.Second
	defaultBulkWorkers = 8
)

// CatalogStore est la surface de persistance du moteur de revue.
// Les méthodes Save* et Delete* doivent être atomiques : tout ou rien.
type CatalogStore interface {
	GetProduct(ctx context.Context, id gocql.UUID) (*models.Product, error)
	GetVariant(ctx context.Context, id gocql.UUID) (*models.ProductVariant, error)
	ListVariants(ctx context.Context, productID gocql.UUID) ([]models.ProductVariant, error)
	ListAssets(ctx context.Context, variantIDs []gocql.UUID) ([]models.VariantAsset, error)
	ListProductsByStatus(ctx context.Context, status string) ([]models.Product, error)
	SaveProductTransition(ctx context.Context, p *models.Product, variants []models.ProductVariant) error
	SaveVariantTransition(ctx context.Context, v *models.ProductVariant) error
	DeleteProductCascade(ctx context.Context, productID gocql.UUID, variantIDs, assetIDs []gocql.UUID) error
}

// SearchIndexer reflète le listing public dans l'index de recherche.
// Effet de bord best-effort : une panne d'index ne fait jamais échouer
// l'opération de revue.
type SearchIndexer interface {
	IndexProduct(p models.Product)
	RemoveProduct(id string)
}

// AssetRemover nettoie les objets 3D du stockage après une suppression
type AssetRemover interface {
	RemoveObjects(ctx context.Context, keys []string)
}

// Service orchestre politique d'accès, machine à états et garde de
// commandes contre la persistance. Sans état entre les appels.
type Service struct {
	catalog     CatalogStore
	guard       *OrderReferenceGuard
	indexer     SearchIndexer
	assets      AssetRemover
	opTimeout   time.Duration
	bulkWorkers int
}

// NewService construit le service. indexer et assets peuvent être nil
// (tests, environnements sans Elastic/MinIO).
func NewService(catalog CatalogStore, guard *OrderReferenceGuard, indexer SearchIndexer, assets AssetRemover) *Service {
	return &Service{
		catalog:     catalog,
		guard:       guard,
		indexer:     indexer,
		assets:      assets,
		opTimeout:   defaultOpTimeout,
		bulkWorkers: defaultBulkWorkers,
	}
}

// --- Opérations produit unitaires ---

func (s *Service) ApproveProduct(ctx context.Context, principal models.Principal, productID gocql.UUID, data ProductApprovalData) (*models.Product, error) {
	return s.applyProductAction(ctx, principal, productID, ActionApprove, &data)
}

func (s *Service) MarkProductNeedsRevision(ctx context.Context, principal models.Principal, productID gocql.UUID) (*models.Product, error) {
	return s.applyProductAction(ctx, principal, productID, ActionNeedsRevision, nil)
}

func (s *Service) RejectProduct(ctx context.Context, principal models.Principal, productID gocql.UUID) (*models.Product, error) {
	return s.applyProductAction(ctx, principal, productID, ActionReject, nil)
}

func (s *Service) ResubmitProduct(ctx context.Context, principal models.Principal, productID gocql.UUID) (*models.Product, error) {
	return s.applyProductAction(ctx, principal, productID, ActionResubmit, nil)
}

func (s *Service) applyProductAction(ctx context.Context, principal models.Principal, productID gocql.UUID, action string, data *ProductApprovalData) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	p, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if d := auth.Evaluate(principal, p.BoutiqueID, auth.ActionReviewProduct); !d.Allowed {
		return nil, &auth.DeniedError{Reason: d.Reason}
	}

	now := time.Now()
	if err := ApplyProductTransition(p, action, data, principal.ID, now); err != nil {
		return nil, err
	}

	// Variantes jointes à une approbation : validées et persistées dans
	// la même mutation que le produit. La moindre variante invalide
	// annule tout, rien n'est écrit.
	var updated []models.ProductVariant
	if action == ActionApprove && data != nil {
		for _, item := range data.Variants {
			v, err := s.catalog.GetVariant(ctx, item.VariantID)
			if err != nil {
				return nil, err
			}
			if v.ProductID != p.ID {
				return nil, &ValidationError{Field: "variant_id", Reason: fmt.Sprintf("la variante %s n'appartient pas au produit %s", item.VariantID, p.ID)}
			}
			vd := item.VariantApprovalData
			if err := ApplyVariantTransition(v, ActionApprove, &vd, principal.ID, now); err != nil {
				return nil, err
			}
			updated = append(updated, *v)
		}
	}

	if err := s.catalog.SaveProductTransition(ctx, p, updated); err != nil {
		return nil, fmt.Errorf("échec persistance du produit %s: %w", productID, err)
	}
	p.Variants = updated

	s.syncIndex(p)
	return p, nil
}

// --- Opérations variante unitaires ---

func (s *Service) ApproveVariant(ctx context.Context, principal models.Principal, variantID gocql.UUID, data VariantApprovalData) (*models.ProductVariant, error) {
	return s.applyVariantAction(ctx, principal, variantID, ActionApprove, &data)
}

func (s *Service) MarkVariantNeedsRevision(ctx context.Context, principal models.Principal, variantID gocql.UUID) (*models.ProductVariant, error) {
	return s.applyVariantAction(ctx, principal, variantID, ActionNeedsRevision, nil)
}

func (s *Service) RejectVariant(ctx context.Context, principal models.Principal, variantID gocql.UUID) (*models.ProductVariant, error) {
	return s.applyVariantAction(ctx, principal, variantID, ActionReject, nil)
}

func (s *Service) ResubmitVariant(ctx context.Context, principal models.Principal, variantID gocql.UUID) (*models.ProductVariant, error) {
	return s.applyVariantAction(ctx, principal, variantID, ActionResubmit, nil)
}

func (s *Service) applyVariantAction(ctx context.Context, principal models.Principal, variantID gocql.UUID, action string, data *VariantApprovalData) (*models.ProductVariant, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	v, err := s.catalog.GetVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}
	// Le périmètre d'accès vient de la boutique du produit parent
	p, err := s.catalog.GetProduct(ctx, v.ProductID)
	if err != nil {
		return nil, err
	}

	if d := auth.Evaluate(principal, p.BoutiqueID, auth.ActionReviewVariant); !d.Allowed {
		return nil, &auth.DeniedError{Reason: d.Reason}
	}

	if err := ApplyVariantTransition(v, action, data, principal.ID, time.Now()); err != nil {
		return nil, err
	}

	if err := s.catalog.SaveVariantTransition(ctx, v); err != nil {
		return nil, fmt.Errorf("échec persistance de la variante %s: %w", variantID, err)
	}
	return v, nil
}

// --- Suppression ---

// DeleteProduct supprime un produit, ses variantes et leurs assets 3D en
// une seule mutation atomique, dans l'ordre des dépendances. Refus en bloc
// si une variante est référencée par une commande.
func (s *Service) DeleteProduct(ctx context.Context, principal models.Principal, productID gocql.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	p, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return err
	}

	if d := auth.Evaluate(principal, p.BoutiqueID, auth.ActionDeleteProduct); !d.Allowed {
		return &auth.DeniedError{Reason: d.Reason}
	}

	variants, err := s.catalog.ListVariants(ctx, productID)
	if err != nil {
		return fmt.Errorf("échec chargement des variantes de %s: %w", productID, err)
	}
	variantIDs := make([]gocql.UUID, 0, len(variants))
	for _, v := range variants {
		variantIDs = append(variantIDs, v.ID)
	}

	ok, err := s.guard.CanDelete(ctx, variantIDs)
	if err != nil {
		return fmt.Errorf("échec vérification des commandes pour %s: %w", productID, err)
	}
	if !ok {
		return ErrHasOrders
	}

	assets, err := s.catalog.ListAssets(ctx, variantIDs)
	if err != nil {
		return fmt.Errorf("échec chargement des assets de %s: %w", productID, err)
	}
	assetIDs := make([]gocql.UUID, 0, len(assets))
	objectKeys := make([]string, 0, len(assets))
	for _, a := range assets {
		assetIDs = append(assetIDs, a.ID)
		objectKeys = append(objectKeys, a.ObjectKey)
	}

	if err := s.catalog.DeleteProductCascade(ctx, productID, variantIDs, assetIDs); err != nil {
		return fmt.Errorf("échec suppression du produit %s: %w", productID, err)
	}

	// Nettoyage best-effort après commit : objets MinIO et index public
	if s.assets != nil && len(objectKeys) > 0 {
		go s.assets.RemoveObjects(context.WithoutCancel(ctx), objectKeys)
	}
	if s.indexer != nil {
		s.indexer.RemoveProduct(productID.String())
	}
	return nil
}

// --- Opérations bulk ---

// ProductApprovalItem cible un produit dans une approbation en masse
type ProductApprovalItem struct {
	ProductID gocql.UUID `json:"product_id"`
	ProductApprovalData
}

type BulkItemResult struct {
	TargetID gocql.UUID `json:"target_id"`
	Success  bool       `json:"success"`
	Error    string     `json:"error,omitempty"`
}

type BulkResult struct {
	Items      []BulkItemResult `json:"items"`
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
}

// BulkApproveVariants approuve chaque variante indépendamment : un refus
// d'accès ou une validation ratée sur l'une ne bloque jamais les autres.
func (s *Service) BulkApproveVariants(ctx context.Context, principal models.Principal, items []VariantApprovalItem) BulkResult {
	ids := make([]gocql.UUID, len(items))
	for i, item := range items {
		ids[i] = item.VariantID
	}
	return s.runBulk(ctx, ids, func(ctx context.Context, i int) error {
		_, err := s.ApproveVariant(ctx, principal, items[i].VariantID, items[i].VariantApprovalData)
		return err
	})
}

func (s *Service) BulkApproveProducts(ctx context.Context, principal models.Principal, items []ProductApprovalItem) BulkResult {
	ids := make([]gocql.UUID, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}
	return s.runBulk(ctx, ids, func(ctx context.Context, i int) error {
		_, err := s.ApproveProduct(ctx, principal, items[i].ProductID, items[i].ProductApprovalData)
		return err
	})
}

func (s *Service) BulkDeleteProducts(ctx context.Context, principal models.Principal, ids []gocql.UUID) BulkResult {
	return s.runBulk(ctx, ids, func(ctx context.Context, i int) error {
		return s.DeleteProduct(ctx, principal, ids[i])
	})
}

// runBulk exécute chaque cible dans son propre contexte, détaché de
// l'annulation de l'appelant : une déconnexion client n'avorte pas les
// cibles déjà en cours. L'agrégat n'est rendu qu'une fois toutes les
// cibles terminées.
func (s *Service) runBulk(ctx context.Context, ids []gocql.UUID, do func(ctx context.Context, i int) error) BulkResult {
	results := make([]BulkItemResult, len(ids))
	base := context.WithoutCancel(ctx)

	sem := make(chan struct{}, s.bulkWorkers)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			tctx, cancel := context.WithTimeout(base, s.opTimeout)
			defer cancel()

			err := do(tctx, i)
			results[i] = BulkItemResult{TargetID: ids[i], Success: err == nil}
			if err != nil {
				results[i].Error = err.Error()
			}
		}(i)
	}
	wg.Wait()

	res := BulkResult{Items: results}
	for _, r := range results {
		if r.Success {
			res.Successful++
		} else {
			res.Failed++
		}
	}
	return res
}

// --- Lecture ---

var reviewableStatuses = map[string]bool{
	models.StatusNotApproved:   true,
	models.StatusApproved:      true,
	models.StatusNeedsRevision: true,
	models.StatusRejected:      true,
}

// PendingReview liste les produits d'un statut donné avec leurs variantes
// et les références d'assets 3D aplaties pour l'affichage. Un boutique_admin
// ne voit que les produits de son périmètre.
func (s *Service) PendingReview(ctx context.Context, principal models.Principal, status string) ([]models.Product, error) {
	if principal.IsAnonymous() {
		return nil, &auth.DeniedError{Reason: auth.DenyUnauthenticated}
	}
	if !principal.IsAdmin() && !principal.IsBoutiqueAdmin() {
		return nil, &auth.DeniedError{Reason: auth.DenyInsufficientRole}
	}
	if !reviewableStatuses[status] {
		return nil, &ValidationError{Field: "status", Reason: fmt.Sprintf("statut inconnu: %q", status)}
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	products, err := s.catalog.ListProductsByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("échec listing des produits %s: %w", status, err)
	}

	visible := make([]models.Product, 0, len(products))
	for _, p := range products {
		if d := auth.Evaluate(principal, p.BoutiqueID, auth.ActionReviewList); !d.Allowed {
			continue
		}
		if err := s.attachVariants(ctx, &p); err != nil {
			return nil, err
		}
		visible = append(visible, p)
	}
	return visible, nil
}

// GetProduct charge un produit avec variantes et assets pour la vue détail
func (s *Service) GetProduct(ctx context.Context, principal models.Principal, productID gocql.UUID) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	p, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if d := auth.Evaluate(principal, p.BoutiqueID, auth.ActionReviewList); !d.Allowed {
		return nil, &auth.DeniedError{Reason: d.Reason}
	}
	if err := s.attachVariants(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) attachVariants(ctx context.Context, p *models.Product) error {
	variants, err := s.catalog.ListVariants(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("échec chargement des variantes de %s: %w", p.ID, err)
	}
	if len(variants) == 0 {
		p.Variants = nil
		return nil
	}

	ids := make([]gocql.UUID, len(variants))
	for i, v := range variants {
		ids[i] = v.ID
	}
	assets, err := s.catalog.ListAssets(ctx, ids)
	if err != nil {
		return fmt.Errorf("échec chargement des assets de %s: %w", p.ID, err)
	}
	byVariant := make(map[gocql.UUID][]models.VariantAsset)
	for _, a := range assets {
		byVariant[a.VariantID] = append(byVariant[a.VariantID], a)
	}
	for i := range variants {
		variants[i].Assets = byVariant[variants[i].ID]
	}
	p.Variants = variants
	return nil
}

func (s *Service) syncIndex(p *models.Product) {
	if s.indexer == nil {
		return
	}
	if p.Status == models.StatusApproved {
		s.indexer.IndexProduct(*p)
	} else {
		s.indexer.RemoveProduct(p.ID.String())
	}
}
