package kitchen

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Snapshot is the persisted state of a kitchen.
type Snapshot struct {
	Items       []Item         `json:"kitchenItems"`
	Shopping    []ShoppingItem `json:"shoppingList"`
	Recipes     []Recipe       `json:"recipes"`
	Conversions []Entry        `json:"conversions,omitempty"`
}

// Kitchen ties the conversion engine, the stock ledger and the recipe book
// together.
type Kitchen struct {
	mutex     sync.Mutex
	Converter *Converter
	Ledger    *Ledger
	Recipes   *RecipeBook
	Projector *Projector
	logger    zerolog.Logger
}

type Config struct {
	Table    *Table
	Logger   *zerolog.Logger
	Now      func() time.Time
	Fallback FallbackPolicy
}

func New(cfg Config) *Kitchen {
	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	conv := NewConverter(cfg.Table, WithLogger(logger))
	opts := []LedgerOption{WithLedgerLogger(logger)}
	if cfg.Now != nil {
		opts = append(opts, WithClock(cfg.Now))
	}
	if cfg.Fallback != nil {
		opts = append(opts, WithFallback(cfg.Fallback))
	}
	p := NewProjector(conv)
	p.logger = logger.With().Str("component", "projector").Logger()
	return &Kitchen{
		Converter: conv,
		Ledger:    NewLedger(conv, opts...),
		Recipes:   NewRecipeBook(conv, cfg.Now, cfg.Fallback),
		Projector: p,
		logger:    logger.With().Str("component", "kitchen").Logger(),
	}
}

// Availability projects every recipe against current stock.
func (k *Kitchen) Availability() []RecipeAvailability {
	return k.Projector.ProjectAll(k.Recipes.Recipes(), k.Ledger.Items())
}

// RecipeAvailability projects one recipe against current stock.
func (k *Kitchen) RecipeAvailability(id string) (RecipeAvailability, error) {
	r, err := k.Recipes.Recipe(id)
	if err != nil {
		return RecipeAvailability{}, err
	}
	return k.Projector.Project(r, k.Ledger.Items()), nil
}

// RecipeStats summarizes the recipe book against current stock.
func (k *Kitchen) RecipeStats() RecipeStats {
	return k.Projector.Stats(k.Recipes.Recipes(), k.Ledger.Items())
}

// UseRecipe cooks a recipe: it plans the consumption against current stock
// and applies it, or changes nothing.
func (k *Kitchen) UseRecipe(id string) (ConsumptionPlan, error) {
	k.mutex.Lock()
	defer k.mutex.Unlock()
	r, err := k.Recipes.Recipe(id)
	if err != nil {
		return ConsumptionPlan{}, err
	}
	plan, err := k.Projector.Use(r, k.Ledger.Items())
	if err != nil {
		k.logger.Info().Str("recipe", r.Name).Err(err).Msg("recipe cannot be cooked")
		return ConsumptionPlan{}, err
	}
	if err := k.Ledger.Consume(plan); err != nil {
		return ConsumptionPlan{}, fmt.Errorf("consume %q: %w", r.Name, err)
	}
	k.logger.Info().Str("recipe", r.Name).Int("ingredients", len(plan.Lines)).Msg("recipe used")
	return plan, nil
}

// Snapshot captures the kitchen for persistence.
func (k *Kitchen) Snapshot() Snapshot {
	return Snapshot{
		Items:       k.Ledger.Items(),
		Shopping:    k.Ledger.ShoppingList(),
		Recipes:     k.Recipes.Recipes(),
		Conversions: k.Converter.Table().Entries(),
	}
}

// Restore loads persisted state. Stored conversions are registered before
// the collections are restored.
func (k *Kitchen) Restore(s Snapshot) error {
	for _, e := range s.Conversions {
		if err := k.Converter.Table().Register(string(e.Name), e.BaseUnit, e.Units...); err != nil {
			return fmt.Errorf("restore conversion %q: %w", e.Name, err)
		}
	}
	k.Recipes.Restore(s.Recipes)
	k.Ledger.Restore(s.Items, s.Shopping)
	return nil
}
