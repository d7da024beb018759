package kitchen

import "errors"

// FallbackPolicy decides the cached base pair of a quantity whose conversion
// could not be resolved. prev is the ingredient's base unit when the table
// knows it, else the base unit cached before the change, else empty.
type FallbackPolicy func(name string, qty float64, unit string, prev BaseUnit) Quantity

// RawQuantityFallback keeps the raw quantity as if it were already in base
// units, defaulting the base unit to gram.
func RawQuantityFallback(_ string, qty float64, _ string, prev BaseUnit) Quantity {
	if !prev.Valid() {
		prev = Gram
	}
	return Quantity{Quantity: qty, Unit: prev}
}

// Normalize converts qty to its base pair, handing unresolved conversions to
// policy. The returned bool is false when the policy was used. Invalid
// quantities are not recoverable and come back as errors.
func (c *Converter) Normalize(name string, qty float64, unit string, prev BaseUnit, policy FallbackPolicy) (Quantity, bool, error) {
	q, err := c.ToBaseUnit(name, qty, unit)
	if err == nil {
		return q, true, nil
	}
	if !errors.Is(err, ErrUnresolved) {
		return Quantity{}, false, err
	}
	if policy == nil {
		policy = RawQuantityFallback
	}
	if bu, ok := c.BaseUnit(name); ok {
		prev = bu
	}
	return policy(name, qty, unit, prev), false, nil
}
