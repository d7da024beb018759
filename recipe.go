package kitchen

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Mudah"
	DifficultyMedium Difficulty = "Sedang"
	DifficultyHard   Difficulty = "Sulit"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// RecipeIngredient is one requirement of a recipe with its cached base pair.
type RecipeIngredient struct {
	Name         string   `json:"name"`
	Quantity     float64  `json:"quantity"`
	Unit         string   `json:"unit"`
	BaseQuantity float64  `json:"baseQuantity"`
	BaseUnit     BaseUnit `json:"baseUnit"`
}

type Recipe struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	Ingredients  []RecipeIngredient `json:"ingredients"`
	Instructions []string           `json:"instructions"`
	CookTime     int                `json:"cookTime"` // minutes
	Servings     int                `json:"servings"`
	Difficulty   Difficulty         `json:"difficulty"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// IngredientInput is a requirement as authored, before normalization.
type IngredientInput struct {
	Name     string  `json:"name" yaml:"name"`
	Quantity float64 `json:"quantity" yaml:"quantity"`
	Unit     string  `json:"unit" yaml:"unit"`
}

type NewRecipe struct {
	Name         string            `json:"name" yaml:"name"`
	Description  string            `json:"description" yaml:"description"`
	Ingredients  []IngredientInput `json:"ingredients" yaml:"ingredients"`
	Instructions []string          `json:"instructions" yaml:"instructions"`
	CookTime     int               `json:"cookTime" yaml:"cook_time"`
	Servings     int               `json:"servings" yaml:"servings"`
	Difficulty   Difficulty        `json:"difficulty" yaml:"difficulty"`
}

// RecipeUpdate patches a recipe. Nil fields are left alone.
type RecipeUpdate struct {
	Name         *string
	Description  *string
	Ingredients  *[]IngredientInput
	Instructions *[]string
	CookTime     *int
	Servings     *int
	Difficulty   *Difficulty
}

// RecipeBook stores recipes.
type RecipeBook struct {
	mutex    sync.Mutex
	conv     *Converter
	fallback FallbackPolicy
	now      func() time.Time
	recipes  []Recipe
}

// NewRecipeBook builds an empty book. A nil now or policy defaults to
// time.Now and RawQuantityFallback.
func NewRecipeBook(conv *Converter, now func() time.Time, policy FallbackPolicy) *RecipeBook {
	if conv == nil {
		conv = NewConverter(nil)
	}
	if now == nil {
		now = time.Now
	}
	if policy == nil {
		policy = RawQuantityFallback
	}
	return &RecipeBook{
		conv:     conv,
		fallback: policy,
		now:      now,
	}
}

func (b *RecipeBook) ingredients(in []IngredientInput) ([]RecipeIngredient, error) {
	out := make([]RecipeIngredient, 0, len(in))
	for _, ing := range in {
		if NormalizeName(ing.Name) == "" {
			return nil, fmt.Errorf("%w: ingredient name cannot be empty", ErrInvalidEntry)
		}
		if err := checkQuantity(ing.Quantity); err != nil {
			return nil, fmt.Errorf("ingredient %q: %w", ing.Name, err)
		}
		base, _, err := b.conv.Normalize(ing.Name, ing.Quantity, ing.Unit, "", b.fallback)
		if err != nil {
			return nil, err
		}
		out = append(out, RecipeIngredient{
			Name:         ing.Name,
			Quantity:     ing.Quantity,
			Unit:         ing.Unit,
			BaseQuantity: base.Quantity,
			BaseUnit:     base.Unit,
		})
	}
	return out, nil
}

func validateRecipe(name string, cookTime, servings int, d Difficulty) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: recipe name cannot be empty", ErrInvalidEntry)
	}
	if cookTime < 0 {
		return fmt.Errorf("%w: cook time cannot be negative, got %d", ErrInvalidEntry, cookTime)
	}
	if servings < 0 {
		return fmt.Errorf("%w: servings cannot be negative, got %d", ErrInvalidEntry, servings)
	}
	if !d.Valid() {
		return fmt.Errorf("%w: difficulty %q", ErrInvalidEntry, d)
	}
	return nil
}

// Add stores a new recipe. An empty difficulty defaults to DifficultyEasy.
func (b *RecipeBook) Add(n NewRecipe) (Recipe, error) {
	if n.Difficulty == "" {
		n.Difficulty = DifficultyEasy
	}
	if err := validateRecipe(n.Name, n.CookTime, n.Servings, n.Difficulty); err != nil {
		return Recipe{}, err
	}
	ings, err := b.ingredients(n.Ingredients)
	if err != nil {
		return Recipe{}, err
	}
	now := b.now()
	r := Recipe{
		ID:           GenerateUUID(),
		Name:         n.Name,
		Description:  n.Description,
		Ingredients:  ings,
		Instructions: append([]string(nil), n.Instructions...),
		CookTime:     n.CookTime,
		Servings:     n.Servings,
		Difficulty:   n.Difficulty,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.recipes = append(b.recipes, r)
	return r, nil
}

func (b *RecipeBook) Update(id string, upd RecipeUpdate) (Recipe, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	i := b.indexLocked(id)
	if i < 0 {
		return Recipe{}, fmt.Errorf("%w: recipe %s", ErrNotFound, id)
	}
	r := b.recipes[i]
	if upd.Name != nil {
		r.Name = *upd.Name
	}
	if upd.Description != nil {
		r.Description = *upd.Description
	}
	if upd.Instructions != nil {
		r.Instructions = append([]string(nil), (*upd.Instructions)...)
	}
	if upd.CookTime != nil {
		r.CookTime = *upd.CookTime
	}
	if upd.Servings != nil {
		r.Servings = *upd.Servings
	}
	if upd.Difficulty != nil {
		r.Difficulty = *upd.Difficulty
	}
	if err := validateRecipe(r.Name, r.CookTime, r.Servings, r.Difficulty); err != nil {
		return Recipe{}, err
	}
	if upd.Ingredients != nil {
		ings, err := b.ingredients(*upd.Ingredients)
		if err != nil {
			return Recipe{}, err
		}
		r.Ingredients = ings
	}
	r.UpdatedAt = b.now()
	b.recipes[i] = r
	return r, nil
}

func (b *RecipeBook) Delete(id string) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	i := b.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: recipe %s", ErrNotFound, id)
	}
	b.recipes = append(b.recipes[:i], b.recipes[i+1:]...)
	return nil
}

func (b *RecipeBook) Recipe(id string) (Recipe, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	i := b.indexLocked(id)
	if i < 0 {
		return Recipe{}, fmt.Errorf("%w: recipe %s", ErrNotFound, id)
	}
	return b.recipes[i], nil
}

func (b *RecipeBook) Recipes() []Recipe {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return append([]Recipe(nil), b.recipes...)
}

// Restore replaces the stored recipes.
func (b *RecipeBook) Restore(recipes []Recipe) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.recipes = append([]Recipe(nil), recipes...)
}

func (b *RecipeBook) indexLocked(id string) int {
	for i := range b.recipes {
		if b.recipes[i].ID == id {
			return i
		}
	}
	return -1
}

// StockIndex joins stock items to recipe ingredients by normalized name.
type StockIndex struct {
	items  []Item
	byName map[Name][]int
}

func NewStockIndex(items []Item) StockIndex {
	idx := StockIndex{items: items, byName: make(map[Name][]int, len(items))}
	for i, item := range items {
		n := NormalizeName(item.Name)
		idx.byName[n] = append(idx.byName[n], i)
	}
	return idx
}

func (s StockIndex) lookup(n Name) (int, error) {
	hits := s.byName[n]
	switch len(hits) {
	case 0:
		return -1, fmt.Errorf("%w: stock item %q", ErrNotFound, n)
	case 1:
		return hits[0], nil
	default:
		return -1, fmt.Errorf("%w: %d stock items named %q", ErrAmbiguousStock, len(hits), n)
	}
}

// Find returns the single stock item named name.
func (s StockIndex) Find(name string) (Item, error) {
	i, err := s.lookup(NormalizeName(name))
	if err != nil {
		return Item{}, err
	}
	return s.items[i], nil
}

// Reasons an ingredient is unavailable.
const (
	ReasonNotInStock   = "not in stock"
	ReasonAmbiguous    = "several stock items share this name"
	ReasonUnresolved   = "no unit conversion between stock and recipe"
	ReasonInsufficient = "not enough stock"
)

// IngredientAvailability is a recipe ingredient projected against stock.
// It is derived on every read and never stored.
type IngredientAvailability struct {
	RecipeIngredient
	IsAvailable           bool    `json:"isAvailable"`
	AvailableQuantity     float64 `json:"availableQuantity"`
	AvailableBaseQuantity float64 `json:"availableBaseQuantity"`
	StockItemID           string  `json:"stockItemId,omitempty"`
	Reason                string  `json:"reason,omitempty"`
	Deficit               float64 `json:"deficit,omitempty"`
}

type RecipeAvailability struct {
	Recipe      Recipe                   `json:"recipe"`
	Ingredients []IngredientAvailability `json:"ingredients"`
	CanCook     bool                     `json:"canCook"`
}

// Missing names the ingredients that block cooking.
func (ra RecipeAvailability) Missing() []IngredientAvailability {
	var out []IngredientAvailability
	for _, ing := range ra.Ingredients {
		if !ing.IsAvailable {
			out = append(out, ing)
		}
	}
	return out
}

type RecipeStats struct {
	TotalRecipes       int `json:"totalRecipes"`
	CookableRecipes    int `json:"cookableRecipes"`
	MissingIngredients int `json:"missingIngredients"`
}

// Projector decides recipe availability against current stock.
type Projector struct {
	conv   *Converter
	logger zerolog.Logger
}

func NewProjector(conv *Converter) *Projector {
	if conv == nil {
		conv = NewConverter(nil)
	}
	return &Projector{
		conv:   conv,
		logger: log.Logger.With().Str("component", "projector").Logger(),
	}
}

// Project computes availability of every ingredient of r.
func (p *Projector) Project(r Recipe, stock []Item) RecipeAvailability {
	return p.project(r, NewStockIndex(stock))
}

// ProjectAll projects every recipe against the same stock.
func (p *Projector) ProjectAll(recipes []Recipe, stock []Item) []RecipeAvailability {
	idx := NewStockIndex(stock)
	out := make([]RecipeAvailability, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, p.project(r, idx))
	}
	return out
}

func (p *Projector) project(r Recipe, idx StockIndex) RecipeAvailability {
	ra := RecipeAvailability{Recipe: r, CanCook: true}
	for _, ing := range r.Ingredients {
		av := p.ingredient(ing, idx)
		if !av.IsAvailable {
			ra.CanCook = false
		}
		ra.Ingredients = append(ra.Ingredients, av)
	}
	return ra
}

func (p *Projector) ingredient(ing RecipeIngredient, idx StockIndex) IngredientAvailability {
	av := IngredientAvailability{RecipeIngredient: ing}
	item, err := idx.Find(ing.Name)
	if err != nil {
		av.Reason = ReasonNotInStock
		if errors.Is(err, ErrAmbiguousStock) {
			av.Reason = ReasonAmbiguous
			p.logger.Warn().Err(err).Str("ingredient", ing.Name).Msg("stock join is ambiguous")
		}
		return av
	}
	av.StockItemID = item.ID
	av.AvailableBaseQuantity = item.BaseQuantity
	if qty, err := p.conv.FromBaseUnit(ing.Name, item.BaseQuantity, ing.Unit); err == nil {
		av.AvailableQuantity = qty
	}
	av.IsAvailable = p.conv.IsStockSufficient(ing.Name, item.Quantity, item.Unit, ing.Quantity, ing.Unit)
	if av.IsAvailable {
		return av
	}
	d, err := p.conv.CalculateDeficit(ing.Name, item.Quantity, item.Unit, ing.Quantity, ing.Unit)
	if err != nil {
		av.Reason = ReasonUnresolved
		return av
	}
	av.Reason = ReasonInsufficient
	av.Deficit = d.Deficit
	return av
}

// Use plans the consumption of cooking r once. It fails unless every
// ingredient is available, and fails as a whole when any requirement cannot
// be converted to base units.
func (p *Projector) Use(r Recipe, stock []Item) (ConsumptionPlan, error) {
	idx := NewStockIndex(stock)
	ra := p.project(r, idx)
	if !ra.CanCook {
		names := make([]string, 0)
		for _, m := range ra.Missing() {
			names = append(names, m.Name+" ("+m.Reason+")")
		}
		return ConsumptionPlan{}, fmt.Errorf("%w for %q: %s", ErrInsufficientStock, r.Name, strings.Join(names, ", "))
	}

	plan := ConsumptionPlan{RecipeID: r.ID, RecipeName: r.Name}
	for _, ing := range r.Ingredients {
		item, err := idx.Find(ing.Name)
		if err != nil {
			return ConsumptionPlan{}, err
		}
		base, err := p.conv.ToBaseUnit(ing.Name, ing.Quantity, ing.Unit)
		if err != nil {
			return ConsumptionPlan{}, fmt.Errorf("recipe %q: %w", r.Name, err)
		}
		plan.Lines = append(plan.Lines, ConsumptionLine{
			ItemID:          item.ID,
			Name:            item.Name,
			BaseQuantity:    base.Quantity,
			BaseUnit:        base.Unit,
			DisplayQuantity: ing.Quantity,
			DisplayUnit:     ing.Unit,
		})
	}
	return plan, nil
}

// Stats counts cookable recipes and blocking ingredients.
func (p *Projector) Stats(recipes []Recipe, stock []Item) RecipeStats {
	st := RecipeStats{TotalRecipes: len(recipes)}
	for _, ra := range p.ProjectAll(recipes, stock) {
		if ra.CanCook {
			st.CookableRecipes++
		}
		st.MissingIngredients += len(ra.Missing())
	}
	return st
}
