package kitchen_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitchen"
)

func newBook(t *testing.T) *kitchen.RecipeBook {
	t.Helper()
	return kitchen.NewRecipeBook(newConverter(t), func() time.Time { return testNow }, nil)
}

func stockItem(t *testing.T, conv *kitchen.Converter, name string, qty float64, unit string) kitchen.Item {
	t.Helper()
	q, _, err := conv.Normalize(name, qty, unit, "", nil)
	require.NoError(t, err)
	return kitchen.Item{
		ID:           kitchen.GenerateUUID(),
		Name:         name,
		Quantity:     qty,
		Unit:         unit,
		BaseQuantity: q.Quantity,
		BaseUnit:     q.Unit,
	}
}

func TestRecipeBookAdd(t *testing.T) {
	b := newBook(t)

	r, err := b.Add(kitchen.NewRecipe{
		Name: "Telur Dadar",
		Ingredients: []kitchen.IngredientInput{
			{Name: "Telur Ayam", Quantity: 2, Unit: "butir"},
			{Name: "Garam", Quantity: 0.5, Unit: "sdt"},
			{Name: "Daun Bawang", Quantity: 1, Unit: "batang"},
		},
		Instructions: []string{"Kocok", "Goreng"},
		CookTime:     10,
		Servings:     1,
	})
	require.NoError(t, err)
	assert.Equal(t, kitchen.DifficultyEasy, r.Difficulty)
	assert.Equal(t, testNow, r.CreatedAt)
	require.Len(t, r.Ingredients, 3)
	assert.Equal(t, 120.0, r.Ingredients[0].BaseQuantity)
	assert.Equal(t, 3.0, r.Ingredients[1].BaseQuantity)
	// unknown ingredient keeps its raw quantity in gram
	assert.Equal(t, 1.0, r.Ingredients[2].BaseQuantity)
	assert.Equal(t, kitchen.Gram, r.Ingredients[2].BaseUnit)

	got, err := b.Recipe(r.ID)
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func TestRecipeBookValidation(t *testing.T) {
	b := newBook(t)

	tests := []struct {
		desc string
		in   kitchen.NewRecipe
	}{
		{"empty name", kitchen.NewRecipe{Name: "  "}},
		{"negative cook time", kitchen.NewRecipe{Name: "x", CookTime: -1}},
		{"negative servings", kitchen.NewRecipe{Name: "x", Servings: -2}},
		{"bad difficulty", kitchen.NewRecipe{Name: "x", Difficulty: "Ekstrem"}},
		{"empty ingredient", kitchen.NewRecipe{Name: "x", Ingredients: []kitchen.IngredientInput{{Name: "", Quantity: 1, Unit: "kg"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			_, err := b.Add(tt.in)
			require.ErrorIs(t, err, kitchen.ErrInvalidEntry)
		})
	}
	assert.Empty(t, b.Recipes())
}

func TestRecipeBookUpdateDelete(t *testing.T) {
	b := newBook(t)
	r, err := b.Add(kitchen.NewRecipe{
		Name:        "Nasi",
		Ingredients: []kitchen.IngredientInput{{Name: "Beras", Quantity: 1, Unit: "porsi"}},
	})
	require.NoError(t, err)

	ings := []kitchen.IngredientInput{{Name: "Beras", Quantity: 2, Unit: "gelas"}}
	hard := kitchen.DifficultyHard
	updated, err := b.Update(r.ID, kitchen.RecipeUpdate{Ingredients: &ings, Difficulty: &hard})
	require.NoError(t, err)
	assert.Equal(t, 400.0, updated.Ingredients[0].BaseQuantity)
	assert.Equal(t, kitchen.DifficultyHard, updated.Difficulty)

	bad := kitchen.Difficulty("x")
	_, err = b.Update(r.ID, kitchen.RecipeUpdate{Difficulty: &bad})
	require.ErrorIs(t, err, kitchen.ErrInvalidEntry)

	require.NoError(t, b.Delete(r.ID))
	_, err = b.Recipe(r.ID)
	require.ErrorIs(t, err, kitchen.ErrNotFound)
	require.ErrorIs(t, b.Delete(r.ID), kitchen.ErrNotFound)
}

func TestStockIndex(t *testing.T) {
	conv := newConverter(t)
	stock := []kitchen.Item{
		stockItem(t, conv, "Beras", 1, "kg"),
		stockItem(t, conv, "Garam", 1, "kg"),
		stockItem(t, conv, "garam ", 100, "gram"),
	}
	idx := kitchen.NewStockIndex(stock)

	item, err := idx.Find("BERAS")
	require.NoError(t, err)
	assert.Equal(t, stock[0].ID, item.ID)

	_, err = idx.Find("garam")
	require.ErrorIs(t, err, kitchen.ErrAmbiguousStock)

	_, err = idx.Find("gula")
	require.ErrorIs(t, err, kitchen.ErrNotFound)
}

func TestProjector(t *testing.T) {
	conv := newConverter(t)
	b := newBook(t)
	p := kitchen.NewProjector(conv)

	r, err := b.Add(kitchen.NewRecipe{
		Name: "Nasi Goreng",
		Ingredients: []kitchen.IngredientInput{
			{Name: "Beras", Quantity: 2, Unit: "porsi"},
			{Name: "Telur Ayam", Quantity: 2, Unit: "butir"},
			{Name: "Garam", Quantity: 1, Unit: "sdt"},
			{Name: "Kecap Manis", Quantity: 1, Unit: "sdm"},
			{Name: "Bawang Putih", Quantity: 2, Unit: "siung"},
		},
	})
	require.NoError(t, err)

	stock := []kitchen.Item{
		stockItem(t, conv, "Beras", 1, "kg"),
		stockItem(t, conv, "Telur Ayam", 1, "butir"),
		stockItem(t, conv, "garam", 6, "gram"),
		stockItem(t, conv, "Bawang Putih", 1, "karung"),
	}

	ra := p.Project(r, stock)
	assert.False(t, ra.CanCook)
	require.Len(t, ra.Ingredients, 5)

	beras := ra.Ingredients[0]
	assert.True(t, beras.IsAvailable)
	assert.Equal(t, stock[0].ID, beras.StockItemID)
	assert.Equal(t, 1000.0, beras.AvailableBaseQuantity)
	assert.InDelta(t, 6.6667, beras.AvailableQuantity, 1e-4)

	telur := ra.Ingredients[1]
	assert.False(t, telur.IsAvailable)
	assert.Equal(t, kitchen.ReasonInsufficient, telur.Reason)
	assert.Equal(t, 60.0, telur.Deficit)

	// boundary equality is enough
	assert.True(t, ra.Ingredients[2].IsAvailable)

	kecap := ra.Ingredients[3]
	assert.False(t, kecap.IsAvailable)
	assert.Equal(t, kitchen.ReasonNotInStock, kecap.Reason)

	bawang := ra.Ingredients[4]
	assert.False(t, bawang.IsAvailable)
	assert.Equal(t, kitchen.ReasonUnresolved, bawang.Reason)

	assert.Len(t, ra.Missing(), 3)
}

func TestProjectorAmbiguousStock(t *testing.T) {
	conv := newConverter(t)
	b := newBook(t)
	p := kitchen.NewProjector(conv)

	r, err := b.Add(kitchen.NewRecipe{
		Name:        "Bubur",
		Ingredients: []kitchen.IngredientInput{{Name: "Beras", Quantity: 1, Unit: "porsi"}},
	})
	require.NoError(t, err)
	stock := []kitchen.Item{
		stockItem(t, conv, "Beras", 1, "kg"),
		stockItem(t, conv, "BERAS", 2, "kg"),
	}

	ra := p.Project(r, stock)
	assert.False(t, ra.CanCook)
	assert.Equal(t, kitchen.ReasonAmbiguous, ra.Ingredients[0].Reason)
	assert.Empty(t, ra.Ingredients[0].StockItemID)
}

func TestProjectorEmptyRecipeIsCookable(t *testing.T) {
	p := kitchen.NewProjector(newConverter(t))
	ra := p.Project(kitchen.Recipe{Name: "Air Putih"}, nil)
	assert.True(t, ra.CanCook)
	assert.Empty(t, ra.Missing())
}

func TestProjectorUse(t *testing.T) {
	conv := newConverter(t)
	b := newBook(t)
	p := kitchen.NewProjector(conv)

	r, err := b.Add(kitchen.NewRecipe{
		Name: "Tumis",
		Ingredients: []kitchen.IngredientInput{
			{Name: "Bawang Merah", Quantity: 200, Unit: "gram"},
			{Name: "Garam", Quantity: 0.5, Unit: "sdt"},
		},
	})
	require.NoError(t, err)
	stock := []kitchen.Item{
		stockItem(t, conv, "Bawang Merah", 0.5, "kg"),
		stockItem(t, conv, "Garam", 1, "kg"),
	}

	plan, err := p.Use(r, stock)
	require.NoError(t, err)
	assert.Equal(t, r.ID, plan.RecipeID)
	require.Len(t, plan.Lines, 2)
	assert.Equal(t, stock[0].ID, plan.Lines[0].ItemID)
	assert.Equal(t, 200.0, plan.Lines[0].BaseQuantity)
	assert.Equal(t, 3.0, plan.Lines[1].BaseQuantity)
	assert.Equal(t, "sdt", plan.Lines[1].DisplayUnit)

	_, err = p.Use(r, stock[:1])
	require.ErrorIs(t, err, kitchen.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Garam (not in stock)")
}

func TestProjectorStats(t *testing.T) {
	conv := newConverter(t)
	b := newBook(t)
	p := kitchen.NewProjector(conv)

	_, err := b.Add(kitchen.NewRecipe{Name: "A", Ingredients: []kitchen.IngredientInput{{Name: "Beras", Quantity: 1, Unit: "porsi"}}})
	require.NoError(t, err)
	_, err = b.Add(kitchen.NewRecipe{Name: "B", Ingredients: []kitchen.IngredientInput{
		{Name: "Beras", Quantity: 100, Unit: "porsi"},
		{Name: "Tomat", Quantity: 1, Unit: "buah"},
	}})
	require.NoError(t, err)

	st := p.Stats(b.Recipes(), []kitchen.Item{stockItem(t, conv, "Beras", 1, "kg")})
	assert.Equal(t, kitchen.RecipeStats{TotalRecipes: 2, CookableRecipes: 1, MissingIngredients: 2}, st)
}
