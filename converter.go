package kitchen

import (
	"fmt"
	"math"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// smallerUnits is the preference list FormatQuantityDisplay falls back to
// for quantities below one.
var smallerUnits = []string{"sdt", "sendok teh", "sdm", "sendok makan", "ml", "gram"}

// Converter answers conversion and sufficiency questions against a Table.
// Lookups never panic; failures are returned as errors wrapping
// ErrUnresolved and logged at warn level.
type Converter struct {
	table  *Table
	logger zerolog.Logger
}

type ConverterOption func(*Converter)

// WithLogger sets the logger unresolved conversions are reported to.
func WithLogger(logger zerolog.Logger) ConverterOption {
	return func(c *Converter) {
		c.logger = logger.With().Str("component", "conversion").Logger()
	}
}

// NewConverter builds a converter over table. A nil table is replaced by
// DefaultTable.
func NewConverter(table *Table, opts ...ConverterOption) *Converter {
	if table == nil {
		table = DefaultTable()
	}
	c := &Converter{
		table:  table,
		logger: log.Logger.With().Str("component", "conversion").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Table returns the table the converter reads from.
func (c *Converter) Table() *Table {
	return c.table
}

func (c *Converter) resolve(name, unit string) (Entry, decimal.Decimal, error) {
	entry, ok := c.table.Lookup(name)
	if !ok {
		c.logger.Warn().Str("ingredient", name).Msg("no conversion for ingredient")
		return Entry{}, decimal.Zero, fmt.Errorf("%w: ingredient %q", ErrUnresolved, name)
	}
	factor, ok := entry.Factor(unit)
	if !ok {
		c.logger.Warn().Str("ingredient", name).Str("unit", unit).Msg("unit not found for ingredient")
		return Entry{}, decimal.Zero, fmt.Errorf("%w: unit %q for ingredient %q", ErrUnresolved, unit, name)
	}
	return entry, decimal.NewFromFloat(factor), nil
}

func toDecimal(qty float64) (decimal.Decimal, error) {
	if math.IsNaN(qty) || math.IsInf(qty, 0) {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidQuantity, qty)
	}
	return decimal.NewFromFloat(qty), nil
}

func (c *Converter) toBase(name string, qty float64, unit string) (decimal.Decimal, BaseUnit, error) {
	q, err := toDecimal(qty)
	if err != nil {
		return decimal.Zero, "", err
	}
	entry, factor, err := c.resolve(name, unit)
	if err != nil {
		return decimal.Zero, "", err
	}
	return q.Mul(factor), entry.BaseUnit, nil
}

// ToBaseUnit converts qty of unit into the ingredient's base unit.
func (c *Converter) ToBaseUnit(name string, qty float64, unit string) (Quantity, error) {
	base, bu, err := c.toBase(name, qty, unit)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Quantity: base.InexactFloat64(), Unit: bu}, nil
}

// FromBaseUnit converts a base quantity into targetUnit.
func (c *Converter) FromBaseUnit(name string, baseQty float64, targetUnit string) (float64, error) {
	q, err := toDecimal(baseQty)
	if err != nil {
		return 0, err
	}
	_, factor, err := c.resolve(name, targetUnit)
	if err != nil {
		return 0, err
	}
	return q.Div(factor).InexactFloat64(), nil
}

func (c *Converter) compare(name string, stockQty float64, stockUnit string, requiredQty float64, requiredUnit string) (stock, required decimal.Decimal, bu BaseUnit, err error) {
	stock, stockBU, err := c.toBase(name, stockQty, stockUnit)
	if err != nil {
		return
	}
	required, requiredBU, err := c.toBase(name, requiredQty, requiredUnit)
	if err != nil {
		return
	}
	if err = c.sameBase(name, stockBU, requiredBU); err != nil {
		return
	}
	return stock, required, stockBU, nil
}

// sameBase fails when two sides of a comparison ended up in different base
// units, which only happens if the table changed between the lookups.
func (c *Converter) sameBase(name string, stock, required BaseUnit) error {
	if stock == required {
		return nil
	}
	c.logger.Warn().
		Str("ingredient", name).
		Str("stock_base_unit", string(stock)).
		Str("required_base_unit", string(required)).
		Msg("base units do not match")
	return fmt.Errorf("%w: base units %s and %s differ for %q", ErrUnresolved, stock, required, name)
}

// IsStockSufficient reports whether stock covers the requirement. Equality
// counts as sufficient. Any unresolved conversion yields false.
func (c *Converter) IsStockSufficient(name string, stockQty float64, stockUnit string, requiredQty float64, requiredUnit string) bool {
	stock, required, bu, err := c.compare(name, stockQty, stockUnit, requiredQty, requiredUnit)
	if err != nil {
		return false
	}
	ok := stock.GreaterThanOrEqual(required)
	c.logger.Debug().
		Str("ingredient", name).
		Str("stock", stock.String()).
		Str("required", required.String()).
		Str("base_unit", string(bu)).
		Bool("sufficient", ok).
		Msg("stock check")
	return ok
}

// CalculateDeficit returns max(0, required - stock) in the base unit.
func (c *Converter) CalculateDeficit(name string, stockQty float64, stockUnit string, requiredQty float64, requiredUnit string) (Deficit, error) {
	stock, required, bu, err := c.compare(name, stockQty, stockUnit, requiredQty, requiredUnit)
	if err != nil {
		return Deficit{}, err
	}
	deficit := required.Sub(stock)
	if !deficit.IsPositive() {
		deficit = decimal.Zero
	}
	return Deficit{Deficit: deficit.InexactFloat64(), Unit: bu}, nil
}

// AvailableUnits lists the units known for name, in table order. Unknown
// ingredients give an empty list.
func (c *Converter) AvailableUnits(name string) []string {
	entry, ok := c.table.Lookup(name)
	if !ok {
		return []string{}
	}
	return entry.UnitNames()
}

// BaseUnit returns the base unit of name.
func (c *Converter) BaseUnit(name string) (BaseUnit, bool) {
	entry, ok := c.table.Lookup(name)
	if !ok {
		return "", false
	}
	return entry.BaseUnit, true
}

// RegisterIngredient adds or replaces the conversion entry of name.
func (c *Converter) RegisterIngredient(name string, base BaseUnit, units ...UnitFactor) error {
	if err := c.table.Register(name, base, units...); err != nil {
		return err
	}
	c.logger.Info().Str("ingredient", name).Str("base_unit", string(base)).Int("units", len(units)).Msg("ingredient registered")
	return nil
}

// FormatQuantityDisplay renders qty and unit for people. Below one it tries
// the smaller units in order (teaspoon, tablespoon, ml, gram) and uses the
// first one known for the ingredient that yields at least one, with one
// decimal. That fallback reads qty as a base quantity, whatever unit it was
// given in. Otherwise integers print bare and fractions with one decimal.
func (c *Converter) FormatQuantityDisplay(name string, qty float64, unit string) string {
	if base, err := toDecimal(qty); err == nil && qty < 1 {
		if entry, ok := c.table.Lookup(name); ok {
			for _, su := range smallerUnits {
				factor, ok := entry.Factor(su)
				if !ok {
					continue
				}
				converted := base.Div(decimal.NewFromFloat(factor)).InexactFloat64()
				if converted >= 1 {
					return toFixed1(converted) + " " + su
				}
			}
		}
	}
	return formatQuantity(qty) + " " + unit
}

func formatQuantity(qty float64) string {
	if math.IsNaN(qty) || math.IsInf(qty, 0) {
		return strconv.FormatFloat(qty, 'f', 1, 64)
	}
	if qty == math.Trunc(qty) {
		return strconv.FormatFloat(qty, 'f', -1, 64)
	}
	return toFixed1(qty)
}

// toFixed1 rounds the exact binary value of v to one decimal, ties away from
// zero. 1.15 is stored just below 1.15 and gives "1.1"; 2.25 is exact and
// gives "2.3".
func toFixed1(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	// 1074 fractional digits spell any float64 exactly
	exact, err := decimal.NewFromString(strconv.FormatFloat(v, 'f', 1074, 64))
	if err != nil {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return exact.StringFixed(1)
}
