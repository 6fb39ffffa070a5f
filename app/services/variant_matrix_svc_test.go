package services

import (
	"testing"

	"github.com/Rakhulsr/go-storefront/app/db/testdb"
	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_CrossProductIsIdempotent(t *testing.T) {
	f := newFixture(t)
	store := testdb.Store(t, f.db, "North")
	product := testdb.Product(t, f.db, store.ID, "Tee", 5000, models.SizeTypeSymbolic)
	red := testdb.Color(t, f.db, "Red")
	blue := testdb.Color(t, f.db, "Blue")
	s := testdb.Size(t, f.db, "S", models.SizeKindSymbolic, 2)
	m := testdb.Size(t, f.db, "M", models.SizeKindSymbolic, 3)
	l := testdb.Size(t, f.db, "L", models.SizeKindSymbolic, 4)

	in := GenerateInput{
		ProductID:  product.ID,
		ColorIDs:   []string{red.ID, blue.ID},
		SizeIDs:    []string{s.ID, m.ID, l.ID},
		DefaultQty: 5,
		Enabled:    true,
	}
	res, err := f.matrix.Generate(f.ctx, in)
	require.NoError(t, err)
	assert.Len(t, res.Created, 6)
	assert.Zero(t, res.Skipped)

	first := res.Created[0]
	_, err = f.matrix.SetStock(f.ctx, product.ID, repositories.VariantFilter{ColorID: &first.ColorID, SizeID: &first.SizeID}, 42, true)
	require.NoError(t, err)

	in.DefaultQty = 1
	res, err = f.matrix.Generate(f.ctx, in)
	require.NoError(t, err)
	assert.Empty(t, res.Created)
	assert.Equal(t, 6, res.Skipped)

	variants, err := f.matrix.ListVariants(f.ctx, product.ID)
	require.NoError(t, err)
	assert.Len(t, variants, 6)
	assert.Equal(t, 42, f.stock(t, first.ID))
}

func TestGenerate_OverlappingSelectionOnlyAddsMissing(t *testing.T) {
	f := newFixture(t)
	store := testdb.Store(t, f.db, "North")
	product := testdb.Product(t, f.db, store.ID, "Tee", 5000, models.SizeTypeSymbolic)
	red := testdb.Color(t, f.db, "Red")
	s := testdb.Size(t, f.db, "S", models.SizeKindSymbolic, 2)
	m := testdb.Size(t, f.db, "M", models.SizeKindSymbolic, 3)

	_, err := f.matrix.Generate(f.ctx, GenerateInput{ProductID: product.ID, ColorIDs: []string{red.ID}, SizeIDs: []string{s.ID}, DefaultQty: 2, Enabled: true})
	require.NoError(t, err)

	res, err := f.matrix.Generate(f.ctx, GenerateInput{ProductID: product.ID, ColorIDs: []string{red.ID, red.ID}, SizeIDs: []string{s.ID, m.ID}, DefaultQty: 9, Enabled: true})
	require.NoError(t, err)
	require.Len(t, res.Created, 1)
	assert.Equal(t, m.ID, res.Created[0].SizeID)
	assert.Equal(t, 1, res.Skipped)
}

func TestGenerate_EmptySelections(t *testing.T) {
	f := newFixture(t)
	store := testdb.Store(t, f.db, "North")
	red := testdb.Color(t, f.db, "Red")
	blue := testdb.Color(t, f.db, "Blue")
	s := testdb.Size(t, f.db, "S", models.SizeKindSymbolic, 2)

	t.Run("sizes only", func(t *testing.T) {
		product := testdb.Product(t, f.db, store.ID, "Cap", 100, models.SizeTypeSymbolic)
		res, err := f.matrix.Generate(f.ctx, GenerateInput{ProductID: product.ID, SizeIDs: []string{s.ID}, Enabled: true})
		require.NoError(t, err)
		require.Len(t, res.Created, 1)
		assert.Equal(t, models.NoColor, res.Created[0].ColorID)
		assert.Equal(t, s.ID, res.Created[0].SizeID)
	})

	t.Run("colors only on a product without sizes", func(t *testing.T) {
		product := testdb.Product(t, f.db, store.ID, "Mug", 100, models.SizeTypeNone)
		res, err := f.matrix.Generate(f.ctx, GenerateInput{ProductID: product.ID, ColorIDs: []string{red.ID, blue.ID}, Enabled: true})
		require.NoError(t, err)
		require.Len(t, res.Created, 2)
		for _, v := range res.Created {
			assert.Equal(t, models.NoSize, v.SizeID)
		}

		res, err = f.matrix.Generate(f.ctx, GenerateInput{ProductID: product.ID, ColorIDs: []string{red.ID}, Enabled: true})
		require.NoError(t, err)
		assert.Empty(t, res.Created)
		assert.Equal(t, 1, res.Skipped)
	})

	t.Run("nothing selected", func(t *testing.T) {
		product := testdb.Product(t, f.db, store.ID, "Sticker", 100, models.SizeTypeNone)
		for i := 0; i < 2; i++ {
			_, err := f.matrix.Generate(f.ctx, GenerateInput{ProductID: product.ID, DefaultQty: 3, Enabled: true})
			require.NoError(t, err)
		}
		variants, err := f.matrix.ListVariants(f.ctx, product.ID)
		require.NoError(t, err)
		require.Len(t, variants, 1)
		assert.Equal(t, "Standard", variants[0].DisplayName())
		assert.Equal(t, 3, variants[0].StockQty)
	})
}

func TestGenerate_RejectsSizesOfTheWrongKind(t *testing.T) {
	f := newFixture(t)
	store := testdb.Store(t, f.db, "North")
	shirt := testdb.Product(t, f.db, store.ID, "Shirt", 100, models.SizeTypeSymbolic)
	mug := testdb.Product(t, f.db, store.ID, "Mug", 100, models.SizeTypeNone)
	s38 := testdb.Size(t, f.db, "38", models.SizeKindNumeric, 38)

	_, err := f.matrix.Generate(f.ctx, GenerateInput{ProductID: shirt.ID, SizeIDs: []string{s38.ID}, Enabled: true})
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = f.matrix.Generate(f.ctx, GenerateInput{ProductID: mug.ID, SizeIDs: []string{s38.ID}, Enabled: true})
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = f.matrix.Generate(f.ctx, GenerateInput{ProductID: shirt.ID, ColorIDs: []string{"missing"}, Enabled: true})
	assert.ErrorIs(t, err, ErrAttributeNotFound)

	_, err = f.matrix.Generate(f.ctx, GenerateInput{ProductID: "missing", Enabled: true})
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = f.matrix.Generate(f.ctx, GenerateInput{ProductID: shirt.ID, DefaultQty: -1, Enabled: true})
	assert.ErrorIs(t, err, ErrInvalidInput)

	var count int64
	require.NoError(t, f.db.Model(&models.Variant{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGenerate_DisabledRowsStayDisabled(t *testing.T) {
	f := newFixture(t)
	store := testdb.Store(t, f.db, "North")
	product := testdb.Product(t, f.db, store.ID, "Mug", 100, models.SizeTypeNone)

	price := dec(80)
	res, err := f.matrix.Generate(f.ctx, GenerateInput{ProductID: product.ID, DefaultQty: 1, DefaultPrice: &price, Enabled: false})
	require.NoError(t, err)
	require.Len(t, res.Created, 1)

	variants, err := f.matrix.ListVariants(f.ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.False(t, variants[0].IsEnabled)
	assert.True(t, variants[0].EffectivePrice(product.BasePrice).Equal(price))
}

func TestAddVariant_Duplicate(t *testing.T) {
	f := newFixture(t)
	store := testdb.Store(t, f.db, "North")
	product := testdb.Product(t, f.db, store.ID, "Tee", 5000, models.SizeTypeSymbolic)
	red := testdb.Color(t, f.db, "Red")
	m := testdb.Size(t, f.db, "M", models.SizeKindSymbolic, 3)

	v, err := f.matrix.AddVariant(f.ctx, AddVariantInput{ProductID: product.ID, ColorID: red.ID, SizeID: m.ID, Qty: 3, Enabled: true})
	require.NoError(t, err)
	assert.NotEmpty(t, v.ID)

	_, err = f.matrix.AddVariant(f.ctx, AddVariantInput{ProductID: product.ID, ColorID: red.ID, SizeID: m.ID, Qty: 1, Enabled: true})
	assert.ErrorIs(t, err, ErrDuplicateVariant)

	_, err = f.matrix.AddVariant(f.ctx, AddVariantInput{ProductID: product.ID, ColorID: red.ID, Qty: 1, Enabled: true})
	assert.NoError(t, err)
}

func TestBulkEdits(t *testing.T) {
	f := newFixture(t)
	store := testdb.Store(t, f.db, "North")
	product := testdb.Product(t, f.db, store.ID, "Tee", 5000, models.SizeTypeSymbolic)
	red := testdb.Color(t, f.db, "Red")
	blue := testdb.Color(t, f.db, "Blue")
	s := testdb.Size(t, f.db, "S", models.SizeKindSymbolic, 2)
	m := testdb.Size(t, f.db, "M", models.SizeKindSymbolic, 3)
	_, err := f.matrix.Generate(f.ctx, GenerateInput{
		ProductID: product.ID, ColorIDs: []string{red.ID, blue.ID}, SizeIDs: []string{s.ID, m.ID}, DefaultQty: 1, Enabled: true,
	})
	require.NoError(t, err)

	n, err := f.matrix.SetStock(f.ctx, product.ID, repositories.VariantFilter{ColorID: &red.ID}, 10, false)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	price := dec(4500)
	n, err = f.matrix.SetPrice(f.ctx, product.ID, repositories.VariantFilter{SizeID: &m.ID}, &price, false)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = f.matrix.SetEnabled(f.ctx, product.ID, repositories.VariantFilter{ColorID: &blue.ID, SizeID: &s.ID}, false, true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	variants, err := f.matrix.ListVariants(f.ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, variants, 4)
	for _, v := range variants {
		if v.ColorID == red.ID {
			assert.Equal(t, 10, v.StockQty)
		} else {
			assert.Equal(t, 1, v.StockQty)
		}
		if v.SizeID == m.ID {
			assert.True(t, v.EffectivePrice(product.BasePrice).Equal(price))
		} else {
			assert.True(t, v.EffectivePrice(product.BasePrice).Equal(product.BasePrice))
		}
		assert.Equal(t, !(v.ColorID == blue.ID && v.SizeID == s.ID), v.IsEnabled)
	}

	n, err = f.matrix.SetPrice(f.ctx, product.ID, repositories.VariantFilter{}, nil, false)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
	variants, err = f.matrix.ListVariants(f.ctx, product.ID)
	require.NoError(t, err)
	for _, v := range variants {
		assert.False(t, v.PriceOverride.Valid)
	}
}

func TestBulkEdits_ZeroMatches(t *testing.T) {
	f := newFixture(t)
	store := testdb.Store(t, f.db, "North")
	product := testdb.Product(t, f.db, store.ID, "Tee", 5000, models.SizeTypeSymbolic)
	missing := "no-such-color"

	n, err := f.matrix.SetStock(f.ctx, product.ID, repositories.VariantFilter{ColorID: &missing}, 3, false)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = f.matrix.SetStock(f.ctx, product.ID, repositories.VariantFilter{ColorID: &missing}, 3, true)
	assert.ErrorIs(t, err, ErrNoVariantsMatched)

	_, err = f.matrix.SetStock(f.ctx, product.ID, repositories.VariantFilter{}, -1, false)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteVariant_BlockedByOpenOrder(t *testing.T) {
	f := newFixture(t)
	store := testdb.Store(t, f.db, "North")
	_, variant := f.shirt(t, store.ID, 5)
	address := testdb.Address(t, f.db, "u1", "Erbil")

	_, err := f.cart.Add(f.ctx, "s1", AddItemInput{ProductID: variant.ProductID, VariantID: variant.ID, Quantity: 1})
	require.NoError(t, err)
	summary, err := f.checkout.CheckoutSession(f.ctx, "s1", "u1", address.ID, "")
	require.NoError(t, err)

	err = f.matrix.DeleteVariant(f.ctx, variant.ID)
	assert.ErrorIs(t, err, ErrVariantInUse)

	_, err = f.orders.Transition(f.ctx, TransitionInput{OrderID: summary.OrderID, Status: models.OrderStatusDelivered, Actor: "op"})
	require.NoError(t, err)

	require.NoError(t, f.matrix.DeleteVariant(f.ctx, variant.ID))
	assert.ErrorIs(t, f.matrix.DeleteVariant(f.ctx, variant.ID), ErrVariantNotFound)

	order, err := f.orders.GetOrder(f.ctx, summary.OrderID, "u1")
	require.NoError(t, err)
	require.Len(t, order.OrderItems, 1)
	assert.True(t, order.OrderItems[0].Price.Equal(dec(5000)))
}
