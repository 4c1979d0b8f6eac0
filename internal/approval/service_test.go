package approval

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitrine_back_end/internal/auth"
	"vitrine_back_end/internal/models"
)

// fakeCatalog garde tout en mémoire et copie à chaque lecture/écriture,
// comme le ferait un aller-retour ScyllaDB.
type fakeCatalog struct {
	mu       sync.Mutex
	products map[gocql.UUID]models.Product
	variants map[gocql.UUID]models.ProductVariant
	assets   map[gocql.UUID][]models.VariantAsset
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: map[gocql.UUID]models.Product{},
		variants: map[gocql.UUID]models.ProductVariant{},
		assets:   map[gocql.UUID][]models.VariantAsset{},
	}
}

func (c *fakeCatalog) GetProduct(_ context.Context, id gocql.UUID) (*models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (c *fakeCatalog) GetVariant(_ context.Context, id gocql.UUID) (*models.ProductVariant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.variants[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &v, nil
}

func (c *fakeCatalog) ListVariants(_ context.Context, productID gocql.UUID) ([]models.ProductVariant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.ProductVariant
	for _, v := range c.variants {
		if v.ProductID == productID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (c *fakeCatalog) ListAssets(_ context.Context, variantIDs []gocql.UUID) ([]models.VariantAsset, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.VariantAsset
	for _, id := range variantIDs {
		out = append(out, c.assets[id]...)
	}
	return out, nil
}

func (c *fakeCatalog) ListProductsByStatus(_ context.Context, status string) ([]models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.Product
	for _, p := range c.products {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *fakeCatalog) SaveProductTransition(_ context.Context, p *models.Product, variants []models.ProductVariant) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *p
	cp.Variants = nil
	c.products[p.ID] = cp
	for _, v := range variants {
		c.variants[v.ID] = v
	}
	return nil
}

func (c *fakeCatalog) SaveVariantTransition(_ context.Context, v *models.ProductVariant) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.variants[v.ID] = *v
	return nil
}

func (c *fakeCatalog) DeleteProductCascade(_ context.Context, productID gocql.UUID, variantIDs, _ []gocql.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.products, productID)
	for _, id := range variantIDs {
		delete(c.variants, id)
		delete(c.assets, id)
	}
	return nil
}

type fakeIndexer struct {
	mu      sync.Mutex
	indexed []string
	removed []string
}

func (f *fakeIndexer) IndexProduct(p models.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed = append(f.indexed, p.ID.String())
}

func (f *fakeIndexer) RemoveProduct(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, id)
}

type fakeAssetRemover struct {
	removed chan []string
}

func (f *fakeAssetRemover) RemoveObjects(_ context.Context, keys []string) {
	f.removed <- keys
}

type serviceFixture struct {
	svc     *Service
	catalog *fakeCatalog
	orders  *fakeOrderLineStore
	indexer *fakeIndexer
	remover *fakeAssetRemover
}

func newServiceFixture() *serviceFixture {
	catalog := newFakeCatalog()
	orders := &fakeOrderLineStore{referenced: map[gocql.UUID]bool{}}
	indexer := &fakeIndexer{}
	remover := &fakeAssetRemover{removed: make(chan []string, 1)}
	return &serviceFixture{
		svc:     NewService(catalog, NewOrderReferenceGuard(orders), indexer, remover),
		catalog: catalog,
		orders:  orders,
		indexer: indexer,
		remover: remover,
	}
}

func (f *serviceFixture) seedProduct(boutiqueID gocql.UUID, status string) models.Product {
	p := models.Product{
		ID:         gocql.TimeUUID(),
		BoutiqueID: boutiqueID,
		Title:      "Lampe Arcade",
		Code:       "LA-100",
		Status:     status,
	}
	f.catalog.products[p.ID] = p
	return p
}

func (f *serviceFixture) seedVariant(productID gocql.UUID, status string) models.ProductVariant {
	v := models.ProductVariant{
		ID:        gocql.TimeUUID(),
		ProductID: productID,
		Color:     "laiton",
		Size:      "M",
		Status:    status,
	}
	f.catalog.variants[v.ID] = v
	return v
}

func adminPrincipal() models.Principal {
	return models.Principal{ID: "u-admin", Roles: []string{models.RoleAdmin}}
}

func boutiqueAdminOf(ids ...gocql.UUID) models.Principal {
	return models.Principal{
		ID:                "u-boutique",
		Roles:             []string{models.RoleUser, models.RoleBoutiqueAdmin},
		AssignedBoutiques: ids,
	}
}

func TestApproveProductOutOfScopeLeavesStoreUntouched(t *testing.T) {
	f := newServiceFixture()
	boutique7 := gocql.TimeUUID()
	boutique9 := gocql.TimeUUID()
	p := f.seedProduct(boutique9, models.StatusNotApproved)
	category := gocql.TimeUUID()

	_, err := f.svc.ApproveProduct(context.Background(), boutiqueAdminOf(boutique7), p.ID, ProductApprovalData{CategoryID: &category})

	var denied *auth.DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, auth.DenyBoutiqueNotAssigned, denied.Reason)

	stored := f.catalog.products[p.ID]
	assert.Equal(t, models.StatusNotApproved, stored.Status)
	assert.Empty(t, stored.LastAction)
}

func TestApproveProductWithoutCategoryWritesNothing(t *testing.T) {
	f := newServiceFixture()
	p := f.seedProduct(gocql.TimeUUID(), models.StatusNotApproved)

	_, err := f.svc.ApproveProduct(context.Background(), adminPrincipal(), p.ID, ProductApprovalData{})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "category_id", verr.Field)
	assert.Equal(t, models.StatusNotApproved, f.catalog.products[p.ID].Status)
}

func TestApproveProductWithVariantsPersistsBoth(t *testing.T) {
	f := newServiceFixture()
	p := f.seedProduct(gocql.TimeUUID(), models.StatusNotApproved)
	v := f.seedVariant(p.ID, models.StatusNotApproved)
	category := gocql.TimeUUID()
	currency := gocql.TimeUUID()

	got, err := f.svc.ApproveProduct(context.Background(), adminPrincipal(), p.ID, ProductApprovalData{
		CategoryID: &category,
		Variants: []VariantApprovalItem{{
			VariantID: v.ID,
			VariantApprovalData: VariantApprovalData{
				Price:        89.50,
				LeadTimeDays: 3,
				CurrencyID:   &currency,
			},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)

	storedP := f.catalog.products[p.ID]
	assert.Equal(t, models.StatusApproved, storedP.Status)
	assert.Equal(t, &category, storedP.CategoryID)
	assert.Equal(t, "u-admin", storedP.UpdatedBy)
	assert.Equal(t, ActionApprove, storedP.LastAction)

	storedV := f.catalog.variants[v.ID]
	assert.Equal(t, models.StatusApproved, storedV.Status)
	assert.Equal(t, 89.50, storedV.Price)
	assert.Equal(t, "u-admin", storedV.UpdatedBy)

	// Le produit approuvé part dans l'index public
	assert.Equal(t, []string{p.ID.String()}, f.indexer.indexed)
}

func TestApproveProductRejectsForeignVariant(t *testing.T) {
	f := newServiceFixture()
	boutique := gocql.TimeUUID()
	p := f.seedProduct(boutique, models.StatusNotApproved)
	other := f.seedProduct(boutique, models.StatusNotApproved)
	foreign := f.seedVariant(other.ID, models.StatusNotApproved)
	category := gocql.TimeUUID()
	currency := gocql.TimeUUID()

	_, err := f.svc.ApproveProduct(context.Background(), adminPrincipal(), p.ID, ProductApprovalData{
		CategoryID: &category,
		Variants: []VariantApprovalItem{{
			VariantID: foreign.ID,
			VariantApprovalData: VariantApprovalData{
				Price:        10,
				CurrencyID:   &currency,
				LeadTimeDays: 1,
			},
		}},
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "variant_id", verr.Field)

	// Ni le produit ni la variante étrangère n'ont bougé
	assert.Equal(t, models.StatusNotApproved, f.catalog.products[p.ID].Status)
	assert.Equal(t, models.StatusNotApproved, f.catalog.variants[foreign.ID].Status)
}

func TestPullBackApprovedProductRemovesFromIndex(t *testing.T) {
	f := newServiceFixture()
	p := f.seedProduct(gocql.TimeUUID(), models.StatusApproved)

	got, err := f.svc.MarkProductNeedsRevision(context.Background(), adminPrincipal(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNeedsRevision, got.Status)
	assert.Equal(t, []string{p.ID.String()}, f.indexer.removed)
}

func TestApproveVariantScopedByParentBoutique(t *testing.T) {
	f := newServiceFixture()
	boutique7 := gocql.TimeUUID()
	p := f.seedProduct(boutique7, models.StatusApproved)
	v := f.seedVariant(p.ID, models.StatusNotApproved)
	currency := gocql.TimeUUID()
	data := VariantApprovalData{Price: 42, LeadTimeDays: 0, CurrencyID: &currency}

	// Hors périmètre : refus
	_, err := f.svc.ApproveVariant(context.Background(), boutiqueAdminOf(gocql.TimeUUID()), v.ID, data)
	var denied *auth.DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, auth.DenyBoutiqueNotAssigned, denied.Reason)

	// Dans le périmètre : la variante passe approved
	got, err := f.svc.ApproveVariant(context.Background(), boutiqueAdminOf(boutique7), v.ID, data)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
	assert.Equal(t, 42.0, f.catalog.variants[v.ID].Price)
}

func TestBulkApproveVariantsPartialFailure(t *testing.T) {
	f := newServiceFixture()
	p := f.seedProduct(gocql.TimeUUID(), models.StatusApproved)
	good := f.seedVariant(p.ID, models.StatusNotApproved)
	bad := f.seedVariant(p.ID, models.StatusNotApproved)
	currency := gocql.TimeUUID()

	res := f.svc.BulkApproveVariants(context.Background(), adminPrincipal(), []VariantApprovalItem{
		{VariantID: good.ID, VariantApprovalData: VariantApprovalData{Price: 25, CurrencyID: &currency}},
		{VariantID: bad.ID, VariantApprovalData: VariantApprovalData{Price: 0, CurrencyID: &currency}},
	})

	assert.Equal(t, 1, res.Successful)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Items, 2)

	byID := map[gocql.UUID]BulkItemResult{}
	for _, item := range res.Items {
		byID[item.TargetID] = item
	}
	assert.True(t, byID[good.ID].Success)
	assert.False(t, byID[bad.ID].Success)
	assert.NotEmpty(t, byID[bad.ID].Error)

	// L'échec de l'une n'a pas empêché l'autre
	assert.Equal(t, models.StatusApproved, f.catalog.variants[good.ID].Status)
	assert.Equal(t, models.StatusNotApproved, f.catalog.variants[bad.ID].Status)
}

func TestBulkSurvivesCallerCancellation(t *testing.T) {
	f := newServiceFixture()
	p := f.seedProduct(gocql.TimeUUID(), models.StatusNotApproved)
	category := gocql.TimeUUID()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // le client a déjà raccroché

	res := f.svc.BulkApproveProducts(ctx, adminPrincipal(), []ProductApprovalItem{
		{ProductID: p.ID, ProductApprovalData: ProductApprovalData{CategoryID: &category}},
	})

	assert.Equal(t, 1, res.Successful)
	assert.Equal(t, models.StatusApproved, f.catalog.products[p.ID].Status)
}

func TestDeleteProductVetoedByOrders(t *testing.T) {
	f := newServiceFixture()
	p := f.seedProduct(gocql.TimeUUID(), models.StatusApproved)
	v := f.seedVariant(p.ID, models.StatusApproved)
	f.orders.referenced[v.ID] = true

	err := f.svc.DeleteProduct(context.Background(), adminPrincipal(), p.ID)
	assert.True(t, errors.Is(err, ErrHasOrders))

	// Rien n'a été supprimé
	_, ok := f.catalog.products[p.ID]
	assert.True(t, ok)
	_, ok = f.catalog.variants[v.ID]
	assert.True(t, ok)
}

func TestDeleteProductCascadesAndCleansUp(t *testing.T) {
	f := newServiceFixture()
	p := f.seedProduct(gocql.TimeUUID(), models.StatusApproved)
	v := f.seedVariant(p.ID, models.StatusApproved)
	f.catalog.assets[v.ID] = []models.VariantAsset{{
		ID:        gocql.TimeUUID(),
		VariantID: v.ID,
		ObjectKey: "assets/3d/lampe-arcade.glb",
	}}

	err := f.svc.DeleteProduct(context.Background(), adminPrincipal(), p.ID)
	require.NoError(t, err)

	_, ok := f.catalog.products[p.ID]
	assert.False(t, ok)
	_, ok = f.catalog.variants[v.ID]
	assert.False(t, ok)

	// Nettoyage MinIO déclenché en arrière-plan
	select {
	case keys := <-f.remover.removed:
		assert.Equal(t, []string{"assets/3d/lampe-arcade.glb"}, keys)
	case <-time.After(2 * time.Second):
		t.Fatal("les objets 3D n'ont jamais été nettoyés")
	}

	assert.Equal(t, []string{p.ID.String()}, f.indexer.removed)
}

func TestBulkDeleteProductsIndependent(t *testing.T) {
	f := newServiceFixture()
	deletable := f.seedProduct(gocql.TimeUUID(), models.StatusApproved)
	blocked := f.seedProduct(gocql.TimeUUID(), models.StatusApproved)
	bv := f.seedVariant(blocked.ID, models.StatusApproved)
	f.orders.referenced[bv.ID] = true

	res := f.svc.BulkDeleteProducts(context.Background(), adminPrincipal(), []gocql.UUID{deletable.ID, blocked.ID})

	assert.Equal(t, 1, res.Successful)
	assert.Equal(t, 1, res.Failed)
	_, ok := f.catalog.products[deletable.ID]
	assert.False(t, ok)
	_, ok = f.catalog.products[blocked.ID]
	assert.True(t, ok)
}

func TestPendingReviewScopesToAssignedBoutiques(t *testing.T) {
	f := newServiceFixture()
	boutique7 := gocql.TimeUUID()
	mine := f.seedProduct(boutique7, models.StatusNotApproved)
	f.seedProduct(gocql.TimeUUID(), models.StatusNotApproved) // autre boutique
	f.seedProduct(boutique7, models.StatusApproved)           // autre statut

	products, err := f.svc.PendingReview(context.Background(), boutiqueAdminOf(boutique7), models.StatusNotApproved)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, mine.ID, products[0].ID)
}

func TestPendingReviewAdminSeesEverything(t *testing.T) {
	f := newServiceFixture()
	f.seedProduct(gocql.TimeUUID(), models.StatusNotApproved)
	f.seedProduct(gocql.TimeUUID(), models.StatusNotApproved)

	products, err := f.svc.PendingReview(context.Background(), adminPrincipal(), models.StatusNotApproved)
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestPendingReviewRejectsUnknownStatus(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.PendingReview(context.Background(), adminPrincipal(), "archived")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)
}

func TestPendingReviewDeniesPlainUser(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.PendingReview(context.Background(), models.Principal{ID: "u", Roles: []string{models.RoleUser}}, models.StatusNotApproved)
	var denied *auth.DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, auth.DenyInsufficientRole, denied.Reason)
}

func TestGetProductAttachesVariantsAndAssets(t *testing.T) {
	f := newServiceFixture()
	p := f.seedProduct(gocql.TimeUUID(), models.StatusNotApproved)
	v := f.seedVariant(p.ID, models.StatusNotApproved)
	f.catalog.assets[v.ID] = []models.VariantAsset{{
		ID:        gocql.TimeUUID(),
		VariantID: v.ID,
		ObjectKey: "assets/3d/chaise.glb",
	}}

	got, err := f.svc.GetProduct(context.Background(), adminPrincipal(), p.ID)
	require.NoError(t, err)
	require.Len(t, got.Variants, 1)
	require.Len(t, got.Variants[0].Assets, 1)
	assert.Equal(t, "assets/3d/chaise.glb", got.Variants[0].Assets[0].ObjectKey)
}

func TestGetProductNotFound(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.GetProduct(context.Background(), adminPrincipal(), gocql.TimeUUID())
	assert.True(t, errors.Is(err, ErrNotFound))
}
