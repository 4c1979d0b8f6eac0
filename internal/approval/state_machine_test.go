package approval

import (
	"testing"
	"time"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitrine_back_end/internal/models"
)

var testNow = time.Date(2026, 8, 12, 10, 30, 0, 0, time.UTC)

func pendingProduct() *models.Product {
	return &models.Product{
		ID:         gocql.TimeUUID(),
		BoutiqueID: gocql.TimeUUID(),
		Title:      "Fauteuil Léman",
		Code:       "FL-001",
		Status:     models.StatusNotApproved,
	}
}

func pendingVariant() *models.ProductVariant {
	return &models.ProductVariant{
		ID:        gocql.TimeUUID(),
		ProductID: gocql.TimeUUID(),
		Color:     "noyer",
		Size:      "L",
		Status:    models.StatusNotApproved,
	}
}

func validVariantData() *VariantApprovalData {
	currency := gocql.TimeUUID()
	return &VariantApprovalData{
		Price:        349.90,
		LeadTimeDays: 14,
		CurrencyID:   &currency,
	}
}

func TestProductTransitionTable(t *testing.T) {
	tests := []struct {
		name   string
		from   string
		action string
		ok     bool
	}{
		{"not_approved → approve", models.StatusNotApproved, ActionApprove, true},
		{"not_approved → needs_revision", models.StatusNotApproved, ActionNeedsRevision, true},
		{"not_approved → reject", models.StatusNotApproved, ActionReject, true},
		{"not_approved → resubmit interdit", models.StatusNotApproved, ActionResubmit, false},
		{"needs_revision → approve", models.StatusNeedsRevision, ActionApprove, true},
		{"needs_revision → resubmit", models.StatusNeedsRevision, ActionResubmit, true},
		{"needs_revision → reject interdit", models.StatusNeedsRevision, ActionReject, false},
		{"approved → needs_revision (retrait)", models.StatusApproved, ActionNeedsRevision, true},
		{"approved → approve interdit", models.StatusApproved, ActionApprove, false},
		{"approved → reject interdit", models.StatusApproved, ActionReject, false},
		{"rejected → resubmit", models.StatusRejected, ActionResubmit, true},
		{"rejected → approve interdit", models.StatusRejected, ActionApprove, false},
		{"action inconnue", models.StatusNotApproved, "publish", false},
	}

	category := gocql.TimeUUID()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := pendingProduct()
			p.Status = tt.from
			err := ApplyProductTransition(p, tt.action, &ProductApprovalData{CategoryID: &category}, "reviewer@vitrine.io", testNow)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, actionTarget[tt.action], p.Status)
				return
			}
			var terr *TransitionError
			require.ErrorAs(t, err, &terr)
			assert.Equal(t, tt.from, terr.From)
			assert.Equal(t, tt.from, p.Status, "statut intact après refus")
		})
	}
}

func TestApproveProductRequiresCategory(t *testing.T) {
	p := pendingProduct()

	err := ApplyProductTransition(p, ActionApprove, &ProductApprovalData{}, "reviewer@vitrine.io", testNow)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "category_id", verr.Field)

	// Le produit chargé n'a pas bougé
	assert.Equal(t, models.StatusNotApproved, p.Status)
	assert.Nil(t, p.CategoryID)
	assert.Empty(t, p.LastAction)
}

func TestApproveProductStampsAudit(t *testing.T) {
	p := pendingProduct()
	category := gocql.TimeUUID()

	err := ApplyProductTransition(p, ActionApprove, &ProductApprovalData{CategoryID: &category}, "reviewer@vitrine.io", testNow)
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, p.Status)
	assert.Equal(t, &category, p.CategoryID)
	assert.Equal(t, ActionApprove, p.LastAction)
	assert.Equal(t, "reviewer@vitrine.io", p.UpdatedBy)
	assert.Equal(t, testNow, p.UpdatedAt)
}

func TestRejectThenResubmitProduct(t *testing.T) {
	p := pendingProduct()

	require.NoError(t, ApplyProductTransition(p, ActionReject, nil, "reviewer@vitrine.io", testNow))
	assert.Equal(t, models.StatusRejected, p.Status)

	require.NoError(t, ApplyProductTransition(p, ActionResubmit, nil, "vendor@vitrine.io", testNow.Add(time.Hour)))
	assert.Equal(t, models.StatusNotApproved, p.Status)
	assert.Equal(t, ActionResubmit, p.LastAction)
	assert.Equal(t, "vendor@vitrine.io", p.UpdatedBy)
}

func TestApproveVariantValidation(t *testing.T) {
	badPromo := 0.0
	goodPromo := 199.0
	late := testNow.Add(48 * time.Hour)
	early := testNow

	tests := []struct {
		name  string
		tweak func(*VariantApprovalData)
		field string
	}{
		{"prix nul", func(d *VariantApprovalData) { d.Price = 0 }, "price"},
		{"prix négatif", func(d *VariantApprovalData) { d.Price = -5 }, "price"},
		{"délai négatif", func(d *VariantApprovalData) { d.LeadTimeDays = -1 }, "lead_time_days"},
		{"devise absente", func(d *VariantApprovalData) { d.CurrencyID = nil }, "currency_id"},
		{"prix promo nul", func(d *VariantApprovalData) { d.PromoPrice = &badPromo }, "promo_price"},
		{"fenêtre promo inversée", func(d *VariantApprovalData) {
			d.PromoPrice = &goodPromo
			d.PromoStart = &late
			d.PromoEnd = &early
		}, "promo_period"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := pendingVariant()
			data := validVariantData()
			tt.tweak(data)

			err := ApplyVariantTransition(v, ActionApprove, data, "reviewer@vitrine.io", testNow)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, models.StatusNotApproved, v.Status)
			assert.Zero(t, v.Price, "aucun champ commercial posé sur refus")
		})
	}
}

func TestApproveVariantWithoutData(t *testing.T) {
	v := pendingVariant()
	err := ApplyVariantTransition(v, ActionApprove, nil, "reviewer@vitrine.io", testNow)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, models.StatusNotApproved, v.Status)
}

func TestApproveVariantAppliesCommercialData(t *testing.T) {
	v := pendingVariant()
	data := validVariantData()
	promo := 279.0
	start := testNow
	end := testNow.Add(7 * 24 * time.Hour)
	data.PromoPrice = &promo
	data.PromoStart = &start
	data.PromoEnd = &end

	require.NoError(t, ApplyVariantTransition(v, ActionApprove, data, "reviewer@vitrine.io", testNow))

	assert.Equal(t, models.StatusApproved, v.Status)
	assert.Equal(t, 349.90, v.Price)
	assert.Equal(t, &promo, v.PromoPrice)
	assert.Equal(t, 14, v.LeadTimeDays)
	assert.Equal(t, data.CurrencyID, v.CurrencyID)
	assert.Equal(t, ActionApprove, v.LastAction)
	assert.Equal(t, "reviewer@vitrine.io", v.UpdatedBy)
}

func TestNonApproveVariantActionsSkipValidation(t *testing.T) {
	// needs_revision et reject ne touchent pas aux données commerciales
	v := pendingVariant()
	require.NoError(t, ApplyVariantTransition(v, ActionNeedsRevision, nil, "reviewer@vitrine.io", testNow))
	assert.Equal(t, models.StatusNeedsRevision, v.Status)
	assert.Zero(t, v.Price)

	v2 := pendingVariant()
	require.NoError(t, ApplyVariantTransition(v2, ActionReject, nil, "reviewer@vitrine.io", testNow))
	assert.Equal(t, models.StatusRejected, v2.Status)
}
