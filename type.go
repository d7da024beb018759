package kitchen

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

// BaseUnit is the canonical unit every quantity of an ingredient is
// normalized to.
type BaseUnit string

const (
	Gram BaseUnit = "gram"
	ML   BaseUnit = "ml"
)

// Valid reports whether u is one of the two canonical units.
func (u BaseUnit) Valid() bool {
	return u == Gram || u == ML
}

func (u BaseUnit) String() string {
	return string(u)
}

func (u *BaseUnit) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return errors.New("src must be string")
	}
	bu := BaseUnit(NormalizeUnit(s))
	if bu == "" {
		// rows written without a base unit get the fallback default
		bu = Gram
	}
	if !bu.Valid() {
		return fmt.Errorf("%w: base unit %q", ErrInvalidEntry, s)
	}
	*u = bu
	return nil
}

func (u BaseUnit) Value() (driver.Value, error) {
	return string(u), nil
}

// ParseBaseUnit normalizes s and checks it names a canonical unit.
func ParseBaseUnit(s string) (BaseUnit, error) {
	bu := BaseUnit(NormalizeUnit(s))
	if !bu.Valid() {
		return "", fmt.Errorf("%w: base unit %q, want gram or ml", ErrInvalidEntry, s)
	}
	return bu, nil
}

// Name is a normalized ingredient name: lower-cased and trimmed. Stock items
// and recipe ingredients are joined on it.
type Name string

// NormalizeName lower-cases and trims an ingredient name.
func NormalizeName(s string) Name {
	return Name(strings.ToLower(strings.TrimSpace(s)))
}

// NormalizeUnit lower-cases and trims a unit name.
func NormalizeUnit(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// UnitFactor says 1 Unit equals Factor base units.
type UnitFactor struct {
	Unit   string  `json:"unit" yaml:"unit"`
	Factor float64 `json:"factor" yaml:"factor"`
}

// Quantity is an amount expressed in a base unit.
type Quantity struct {
	Quantity float64  `json:"quantity"`
	Unit     BaseUnit `json:"unit"`
}

// Deficit is the non-negative shortfall of stock against a requirement.
type Deficit struct {
	Deficit float64  `json:"deficit"`
	Unit    BaseUnit `json:"unit"`
}
