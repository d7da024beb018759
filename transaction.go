package kitchen

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ConsumptionLine is what cooking takes from one stock item.
type ConsumptionLine struct {
	ItemID          string   `json:"kitchenItemId"`
	Name            string   `json:"name"`
	BaseQuantity    float64  `json:"consumedBaseQuantity"`
	BaseUnit        BaseUnit `json:"baseUnit"`
	DisplayQuantity float64  `json:"consumedDisplayQuantity"`
	DisplayUnit     string   `json:"consumedDisplayUnit"`
}

// ConsumptionPlan lists the stock to subtract when a recipe is cooked.
type ConsumptionPlan struct {
	RecipeID   string            `json:"recipeId"`
	RecipeName string            `json:"recipeName"`
	Lines      []ConsumptionLine `json:"lines"`
}

// Consume applies plan to stock. Every referenced item must exist, or nothing
// is changed. Base quantities floor at zero and the display quantity is
// recomputed in the item's own unit.
func (l *Ledger) Consume(plan ConsumptionPlan) error {
	l.mutex.Lock()
	err := l.consumeLocked(plan)
	l.mutex.Unlock()
	if err != nil {
		return err
	}
	l.runHooks(Event{Kind: EventConsumed, ID: plan.RecipeID, Timestamp: l.now()})
	return nil
}

func (l *Ledger) consumeLocked(plan ConsumptionPlan) error {
	indexes := make([]int, len(plan.Lines))
	for n, line := range plan.Lines {
		i := l.itemIndexLocked(line.ItemID)
		if i < 0 {
			return fmt.Errorf("%w: item %s", ErrNotFound, line.ItemID)
		}
		if err := checkQuantity(line.BaseQuantity); err != nil {
			return err
		}
		indexes[n] = i
	}

	now := l.now()
	for n, line := range plan.Lines {
		item := &l.items[indexes[n]]
		remaining := decimal.NewFromFloat(item.BaseQuantity).Sub(decimal.NewFromFloat(line.BaseQuantity))
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		base := remaining.InexactFloat64()
		qty, err := l.conv.FromBaseUnit(item.Name, base, item.Unit)
		if err != nil {
			fb := l.fallback(item.Name, base, item.Unit, item.BaseUnit)
			qty, base = fb.Quantity, fb.Quantity
		}
		item.Quantity = qty
		item.BaseQuantity = base
		item.UpdatedAt = now
	}
	l.logs = append(l.logs, fmt.Sprintf("Recipe %s consumed %d ingredients", plan.RecipeID, len(plan.Lines)))
	l.restockLocked()
	return nil
}
