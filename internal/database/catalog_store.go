package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/gocql/gocql"

	"vitrine_back_end/internal/approval"
	"vitrine_back_end/internal/models"
)

const (
	selectProductColumns = `product_id, boutique_id, title, code, description, category_id, status, created_at, updated_at, updated_by, last_action`
	selectVariantColumns = `id, product_id, color, size, price, promo_price, promo_start, promo_end, lead_time_days, currency_id, status, created_at, updated_at, updated_by, last_action`
)

// CatalogStore implémente approval.CatalogStore sur le keyspace catalogue.
// Les mutations multi-lignes passent par des logged batches : tout ou rien.
type CatalogStore struct{}

func NewCatalogStore() *CatalogStore {
	return &CatalogStore{}
}

func (s *CatalogStore) GetProduct(ctx context.Context, id gocql.UUID) (*models.Product, error) {
	session, err := GetCatalogSession()
	if err != nil {
		return nil, err
	}

	var p models.Product
	query := `SELECT ` + selectProductColumns + ` FROM products WHERE product_id = ?`
	if err := session.Query(query, id).WithContext(ctx).Scan(
		&p.ID, &p.BoutiqueID, &p.Title, &p.Code, &p.Description,
		&p.CategoryID, &p.Status, &p.CreatedAt, &p.UpdatedAt, &p.UpdatedBy, &p.LastAction,
	); err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, approval.ErrNotFound
		}
		return nil, fmt.Errorf("lecture produit %s: %w", id, err)
	}
	return &p, nil
}

func (s *CatalogStore) GetVariant(ctx context.Context, id gocql.UUID) (*models.ProductVariant, error) {
	session, err := GetCatalogSession()
	if err != nil {
		return nil, err
	}

	var v models.ProductVariant
	query := `SELECT ` + selectVariantColumns + ` FROM product_variants WHERE id = ?`
	if err := session.Query(query, id).WithContext(ctx).Scan(
		&v.ID, &v.ProductID, &v.Color, &v.Size, &v.Price,
		&v.PromoPrice, &v.PromoStart, &v.PromoEnd, &v.LeadTimeDays, &v.CurrencyID,
		&v.Status, &v.CreatedAt, &v.UpdatedAt, &v.UpdatedBy, &v.LastAction,
	); err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, approval.ErrNotFound
		}
		return nil, fmt.Errorf("lecture variante %s: %w", id, err)
	}
	return &v, nil
}

func (s *CatalogStore) ListVariants(ctx context.Context, productID gocql.UUID) ([]models.ProductVariant, error) {
	session, err := GetCatalogSession()
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + selectVariantColumns + ` FROM product_variants WHERE product_id = ? ALLOW FILTERING`
	iter := session.Query(query, productID).WithContext(ctx).Iter()

	var variants []models.ProductVariant
	var v models.ProductVariant
	for iter.Scan(
		&v.ID, &v.ProductID, &v.Color, &v.Size, &v.Price,
		&v.PromoPrice, &v.PromoStart, &v.PromoEnd, &v.LeadTimeDays, &v.CurrencyID,
		&v.Status, &v.CreatedAt, &v.UpdatedAt, &v.UpdatedBy, &v.LastAction,
	) {
		variants = append(variants, v)
		v = models.ProductVariant{}
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("listing variantes du produit %s: %w", productID, err)
	}
	return variants, nil
}

func (s *CatalogStore) ListAssets(ctx context.Context, variantIDs []gocql.UUID) ([]models.VariantAsset, error) {
	if len(variantIDs) == 0 {
		return nil, nil
	}
	session, err := GetCatalogSession()
	if err != nil {
		return nil, err
	}

	var assets []models.VariantAsset
	query := `SELECT id, variant_id, object_key, format, created_at FROM variant_assets WHERE variant_id = ? ALLOW FILTERING`
	for _, vid := range variantIDs {
		iter := session.Query(query, vid).WithContext(ctx).Iter()
		var a models.VariantAsset
		for iter.Scan(&a.ID, &a.VariantID, &a.ObjectKey, &a.Format, &a.CreatedAt) {
			assets = append(assets, a)
		}
		if err := iter.Close(); err != nil {
			return nil, fmt.Errorf("listing assets de la variante %s: %w", vid, err)
		}
	}
	return assets, nil
}

func (s *CatalogStore) ListProductsByStatus(ctx context.Context, status string) ([]models.Product, error) {
	session, err := GetCatalogSession()
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + selectProductColumns + ` FROM products WHERE status = ? ALLOW FILTERING`
	iter := session.Query(query, status).WithContext(ctx).Iter()

	var products []models.Product
	var p models.Product
	for iter.Scan(
		&p.ID, &p.BoutiqueID, &p.Title, &p.Code, &p.Description,
		&p.CategoryID, &p.Status, &p.CreatedAt, &p.UpdatedAt, &p.UpdatedBy, &p.LastAction,
	) {
		products = append(products, p)
		p = models.Product{}
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("listing produits au statut %s: %w", status, err)
	}
	return products, nil
}

// SaveProductTransition écrit le produit et les variantes approuvées dans
// le même appel dans un logged batch.
func (s *CatalogStore) SaveProductTransition(ctx context.Context, p *models.Product, variants []models.ProductVariant) error {
	session, err := GetCatalogSession()
	if err != nil {
		return err
	}

	batch := session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(
		`UPDATE products SET status = ?, category_id = ?, updated_at = ?, updated_by = ?, last_action = ? WHERE product_id = ?`,
		p.Status, p.CategoryID, p.UpdatedAt, p.UpdatedBy, p.LastAction, p.ID,
	)
	for _, v := range variants {
		batch.Query(
			`UPDATE product_variants SET status = ?, price = ?, promo_price = ?, promo_start = ?, promo_end = ?, lead_time_days = ?, currency_id = ?, updated_at = ?, updated_by = ?, last_action = ? WHERE id = ?`,
			v.Status, v.Price, v.PromoPrice, v.PromoStart, v.PromoEnd,
			v.LeadTimeDays, v.CurrencyID, v.UpdatedAt, v.UpdatedBy, v.LastAction, v.ID,
		)
	}
	return session.ExecuteBatch(batch)
}

func (s *CatalogStore) SaveVariantTransition(ctx context.Context, v *models.ProductVariant) error {
	session, err := GetCatalogSession()
	if err != nil {
		return err
	}

	return session.Query(
		`UPDATE product_variants SET status = ?, price = ?, promo_price = ?, promo_start = ?, promo_end = ?, lead_time_days = ?, currency_id = ?, updated_at = ?, updated_by = ?, last_action = ? WHERE id = ?`,
		v.Status, v.Price, v.PromoPrice, v.PromoStart, v.PromoEnd,
		v.LeadTimeDays, v.CurrencyID, v.UpdatedAt, v.UpdatedBy, v.LastAction, v.ID,
	).WithContext(ctx).Exec()
}

// DeleteProductCascade supprime assets, variantes puis produit dans l'ordre
// des dépendances, en un seul logged batch.
func (s *CatalogStore) DeleteProductCascade(ctx context.Context, productID gocql.UUID, variantIDs, assetIDs []gocql.UUID) error {
	session, err := GetCatalogSession()
	if err != nil {
		return err
	}

	batch := session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	for _, aid := range assetIDs {
		batch.Query(`DELETE FROM variant_assets WHERE id = ?`, aid)
	}
	for _, vid := range variantIDs {
		batch.Query(`DELETE FROM product_variants WHERE id = ?`, vid)
	}
	batch.Query(`DELETE FROM products WHERE product_id = ?`, productID)
	return session.ExecuteBatch(batch)
}

// MissingBoutiques retourne les ids absents de la table boutiques
// (implémente auth.BoutiqueStore)
func (s *CatalogStore) MissingBoutiques(ctx context.Context, ids []gocql.UUID) ([]gocql.UUID, error) {
	session, err := GetCatalogSession()
	if err != nil {
		return nil, err
	}

	var missing []gocql.UUID
	for _, id := range ids {
		var found gocql.UUID
		err := session.Query(`SELECT boutique_id FROM boutiques WHERE boutique_id = ?`, id).
			WithContext(ctx).Scan(&found)
		if errors.Is(err, gocql.ErrNotFound) {
			missing = append(missing, id)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("vérification boutique %s: %w", id, err)
		}
	}
	return missing, nil
}

// ListBoutiques charge les boutiques demandées (vue "mes boutiques")
func (s *CatalogStore) ListBoutiques(ctx context.Context, ids []gocql.UUID) ([]models.Boutique, error) {
	session, err := GetCatalogSession()
	if err != nil {
		return nil, err
	}

	boutiques := make([]models.Boutique, 0, len(ids))
	for _, id := range ids {
		var b models.Boutique
		err := session.Query(`SELECT boutique_id, name, code, created_at FROM boutiques WHERE boutique_id = ?`, id).
			WithContext(ctx).Scan(&b.ID, &b.Name, &b.Code, &b.CreatedAt)
		if errors.Is(err, gocql.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("lecture boutique %s: %w", id, err)
		}
		boutiques = append(boutiques, b)
	}
	return boutiques, nil
}

// ListAllBoutiques retourne toutes les boutiques (vue admin)
func (s *CatalogStore) ListAllBoutiques(ctx context.Context) ([]models.Boutique, error) {
	session, err := GetCatalogSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT boutique_id, name, code, created_at FROM boutiques`).WithContext(ctx).Iter()
	var boutiques []models.Boutique
	var b models.Boutique
	for iter.Scan(&b.ID, &b.Name, &b.Code, &b.CreatedAt) {
		boutiques = append(boutiques, b)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("listing boutiques: %w", err)
	}
	return boutiques, nil
}
