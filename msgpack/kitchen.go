package kitchenmsgpack

import (
	"time"

	"kitchen"
)

type Item struct {
	ID           string  `msgpack:"id,omitempty"`
	Name         string  `msgpack:"name,omitempty"`
	Category     string  `msgpack:"category,omitempty"`
	Quantity     float64 `msgpack:"quantity,omitempty"`
	Unit         string  `msgpack:"unit,omitempty"`
	BaseQuantity float64 `msgpack:"base_quantity,omitempty"`
	BaseUnit     string  `msgpack:"base_unit,omitempty"`
	ExpiryMs     int64   `msgpack:"expiry,omitempty"`
	CreatedMs    int64   `msgpack:"created,omitempty"`
	UpdatedMs    int64   `msgpack:"updated,omitempty"`
}

type ShoppingItem struct {
	ID              string  `msgpack:"id,omitempty"`
	Name            string  `msgpack:"name,omitempty"`
	Category        string  `msgpack:"category,omitempty"`
	Quantity        float64 `msgpack:"quantity,omitempty"`
	Unit            string  `msgpack:"unit,omitempty"`
	BaseQuantity    float64 `msgpack:"base_quantity,omitempty"`
	BaseUnit        string  `msgpack:"base_unit,omitempty"`
	IsAutoGenerated bool    `msgpack:"auto,omitempty"`
	IsPurchased     bool    `msgpack:"purchased,omitempty"`
	CreatedMs       int64   `msgpack:"created,omitempty"`
}

type RecipeIngredient struct {
	Name         string  `msgpack:"name,omitempty"`
	Quantity     float64 `msgpack:"quantity,omitempty"`
	Unit         string  `msgpack:"unit,omitempty"`
	BaseQuantity float64 `msgpack:"base_quantity,omitempty"`
	BaseUnit     string  `msgpack:"base_unit,omitempty"`
}

type Recipe struct {
	ID           string             `msgpack:"id,omitempty"`
	Name         string             `msgpack:"name,omitempty"`
	Description  string             `msgpack:"description,omitempty"`
	Ingredients  []RecipeIngredient `msgpack:"ingredients,omitempty"`
	Instructions []string           `msgpack:"instructions,omitempty"`
	CookTime     int                `msgpack:"cook_time,omitempty"`
	Servings     int                `msgpack:"servings,omitempty"`
	Difficulty   string             `msgpack:"difficulty,omitempty"`
	CreatedMs    int64              `msgpack:"created,omitempty"`
	UpdatedMs    int64              `msgpack:"updated,omitempty"`
}

type UnitConversion struct {
	Unit   string  `msgpack:"unit,omitempty"`
	Factor float64 `msgpack:"factor,omitempty"`
}

type Ingredient struct {
	Name     string           `msgpack:"name,omitempty"`
	BaseUnit string           `msgpack:"base_unit,omitempty"`
	Units    []UnitConversion `msgpack:"units,omitempty"`
}

type Snapshot struct {
	Items       []Item         `msgpack:"items,omitempty"`
	Shopping    []ShoppingItem `msgpack:"shopping,omitempty"`
	Recipes     []Recipe       `msgpack:"recipes,omitempty"`
	Conversions []Ingredient   `msgpack:"conversions,omitempty"`
}

func toMs(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMs(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func NewItem(it kitchen.Item) Item {
	return Item{
		ID:           it.ID,
		Name:         it.Name,
		Category:     it.Category,
		Quantity:     it.Quantity,
		Unit:         it.Unit,
		BaseQuantity: it.BaseQuantity,
		BaseUnit:     string(it.BaseUnit),
		ExpiryMs:     toMs(it.ExpiryDate),
		CreatedMs:    toMs(it.CreatedAt),
		UpdatedMs:    toMs(it.UpdatedAt),
	}
}

func ToItem(it Item) kitchen.Item {
	return kitchen.Item{
		ID:           it.ID,
		Name:         it.Name,
		Category:     it.Category,
		Quantity:     it.Quantity,
		Unit:         it.Unit,
		BaseQuantity: it.BaseQuantity,
		BaseUnit:     kitchen.BaseUnit(it.BaseUnit),
		ExpiryDate:   fromMs(it.ExpiryMs),
		CreatedAt:    fromMs(it.CreatedMs),
		UpdatedAt:    fromMs(it.UpdatedMs),
	}
}

func NewShoppingItem(si kitchen.ShoppingItem) ShoppingItem {
	return ShoppingItem{
		ID:              si.ID,
		Name:            si.Name,
		Category:        si.Category,
		Quantity:        si.Quantity,
		Unit:            si.Unit,
		BaseQuantity:    si.BaseQuantity,
		BaseUnit:        string(si.BaseUnit),
		IsAutoGenerated: si.IsAutoGenerated,
		IsPurchased:     si.IsPurchased,
		CreatedMs:       toMs(si.CreatedAt),
	}
}

func ToShoppingItem(si ShoppingItem) kitchen.ShoppingItem {
	return kitchen.ShoppingItem{
		ID:              si.ID,
		Name:            si.Name,
		Category:        si.Category,
		Quantity:        si.Quantity,
		Unit:            si.Unit,
		BaseQuantity:    si.BaseQuantity,
		BaseUnit:        kitchen.BaseUnit(si.BaseUnit),
		IsAutoGenerated: si.IsAutoGenerated,
		IsPurchased:     si.IsPurchased,
		CreatedAt:       fromMs(si.CreatedMs),
	}
}

func NewRecipe(r kitchen.Recipe) Recipe {
	out := Recipe{
		ID:           r.ID,
		Name:         r.Name,
		Description:  r.Description,
		Instructions: append([]string(nil), r.Instructions...),
		CookTime:     r.CookTime,
		Servings:     r.Servings,
		Difficulty:   string(r.Difficulty),
		CreatedMs:    toMs(r.CreatedAt),
		UpdatedMs:    toMs(r.UpdatedAt),
	}
	for _, ing := range r.Ingredients {
		out.Ingredients = append(out.Ingredients, RecipeIngredient{
			Name:         ing.Name,
			Quantity:     ing.Quantity,
			Unit:         ing.Unit,
			BaseQuantity: ing.BaseQuantity,
			BaseUnit:     string(ing.BaseUnit),
		})
	}
	return out
}

func ToRecipe(r Recipe) kitchen.Recipe {
	out := kitchen.Recipe{
		ID:           r.ID,
		Name:         r.Name,
		Description:  r.Description,
		Instructions: append([]string(nil), r.Instructions...),
		CookTime:     r.CookTime,
		Servings:     r.Servings,
		Difficulty:   kitchen.Difficulty(r.Difficulty),
		CreatedAt:    fromMs(r.CreatedMs),
		UpdatedAt:    fromMs(r.UpdatedMs),
	}
	for _, ing := range r.Ingredients {
		out.Ingredients = append(out.Ingredients, kitchen.RecipeIngredient{
			Name:         ing.Name,
			Quantity:     ing.Quantity,
			Unit:         ing.Unit,
			BaseQuantity: ing.BaseQuantity,
			BaseUnit:     kitchen.BaseUnit(ing.BaseUnit),
		})
	}
	return out
}

func NewIngredient(e kitchen.Entry) Ingredient {
	out := Ingredient{Name: string(e.Name), BaseUnit: string(e.BaseUnit)}
	for _, uf := range e.Units {
		out.Units = append(out.Units, UnitConversion{Unit: uf.Unit, Factor: uf.Factor})
	}
	return out
}

func ToEntry(in Ingredient) kitchen.Entry {
	out := kitchen.Entry{Name: kitchen.Name(in.Name), BaseUnit: kitchen.BaseUnit(in.BaseUnit)}
	for _, uc := range in.Units {
		out.Units = append(out.Units, kitchen.UnitFactor{Unit: uc.Unit, Factor: uc.Factor})
	}
	return out
}

func NewSnapshot(s kitchen.Snapshot) Snapshot {
	var out Snapshot
	for _, it := range s.Items {
		out.Items = append(out.Items, NewItem(it))
	}
	for _, si := range s.Shopping {
		out.Shopping = append(out.Shopping, NewShoppingItem(si))
	}
	for _, r := range s.Recipes {
		out.Recipes = append(out.Recipes, NewRecipe(r))
	}
	for _, e := range s.Conversions {
		out.Conversions = append(out.Conversions, NewIngredient(e))
	}
	return out
}

func ToSnapshot(s Snapshot) kitchen.Snapshot {
	var out kitchen.Snapshot
	for _, it := range s.Items {
		out.Items = append(out.Items, ToItem(it))
	}
	for _, si := range s.Shopping {
		out.Shopping = append(out.Shopping, ToShoppingItem(si))
	}
	for _, r := range s.Recipes {
		out.Recipes = append(out.Recipes, ToRecipe(r))
	}
	for _, e := range s.Conversions {
		out.Conversions = append(out.Conversions, ToEntry(e))
	}
	return out
}
