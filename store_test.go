package kitchen_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitchen"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := kitchen.OpenSQLite(":memory:")
	require.NoError(t, err)
	defer store.Close()

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, kitchen.Snapshot{}, empty)

	k := seededKitchen(t)
	snap := k.Snapshot()
	require.NoError(t, store.Save(ctx, snap))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap, loaded)

	// saving again replaces, it does not append
	require.NoError(t, store.Save(ctx, snap))
	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded.Items, len(snap.Items))
	assert.Len(t, loaded.Recipes, len(snap.Recipes))
}

func TestSQLiteStoreFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kitchen.db")

	store, err := kitchen.OpenSQLite(path)
	require.NoError(t, err)
	k := seededKitchen(t)
	require.NoError(t, store.Save(ctx, k.Snapshot()))
	require.NoError(t, store.Close())

	store, err = kitchen.OpenSQLite(path)
	require.NoError(t, err)
	defer store.Close()
	loaded, err := store.Load(ctx)
	require.NoError(t, err)

	restored := newKitchen(t)
	require.NoError(t, restored.Restore(loaded))
	assert.Equal(t, k.Ledger.Items(), restored.Ledger.Items())
	assert.Equal(t, k.Availability(), restored.Availability())
}

func TestJSONFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := &kitchen.JSONFile{Path: filepath.Join(t.TempDir(), "nested", "kitchen.json")}

	empty, err := f.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, kitchen.Snapshot{}, empty)

	snap := seededKitchen(t).Snapshot()
	require.NoError(t, f.Save(ctx, snap))

	data, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kitchenItems"`)
	assert.Contains(t, string(data), `"shoppingList"`)
	assert.Contains(t, string(data), `"baseQuantity"`)

	loaded, err := f.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap, loaded)
	require.NoError(t, f.Close())
}

func TestAutosaveHook(t *testing.T) {
	ctx := context.Background()
	store, err := kitchen.OpenSQLite(":memory:")
	require.NoError(t, err)
	defer store.Close()

	k := newKitchen(t)
	k.Ledger.AddHook(kitchen.AutosaveHook(store, k))

	item, err := k.Ledger.AddItem(kitchen.NewItem{Name: "Beras", Quantity: 5, Unit: "kg"})
	require.NoError(t, err)

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, item.ID, loaded.Items[0].ID)
	assert.Equal(t, 5000.0, loaded.Items[0].BaseQuantity)

	require.NoError(t, k.Ledger.DeleteItem(item.ID))
	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded.Items)
}

func TestSQLiteStoreEmptyBaseUnit(t *testing.T) {
	ctx := context.Background()
	store, err := kitchen.OpenSQLite(":memory:")
	require.NoError(t, err)
	defer store.Close()

	snap := kitchen.Snapshot{
		Items: []kitchen.Item{{ID: "a", Name: "Kemiri", Quantity: 3, Unit: "butir", BaseQuantity: 3}},
		Recipes: []kitchen.Recipe{{
			ID:          "r",
			Name:        "Sambal",
			Ingredients: []kitchen.RecipeIngredient{{Name: "Kemiri", Quantity: 2, Unit: "butir", BaseQuantity: 2}},
		}},
	}
	require.NoError(t, store.Save(ctx, snap))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, kitchen.Gram, loaded.Items[0].BaseUnit)
	require.Len(t, loaded.Recipes, 1)
	assert.Equal(t, kitchen.Gram, loaded.Recipes[0].Ingredients[0].BaseUnit)
}
