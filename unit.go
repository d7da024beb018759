package kitchen

import (
	"fmt"
	"sort"
	"sync"
)

// Entry is the conversion table row of one ingredient.
type Entry struct {
	Name     Name         `json:"name"`
	BaseUnit BaseUnit     `json:"baseUnit"`
	Units    []UnitFactor `json:"conversions"` // insertion order
}

// Factor returns how many base units one unit is worth.
func (e Entry) Factor(unit string) (float64, bool) {
	unit = NormalizeUnit(unit)
	for _, uf := range e.Units {
		if uf.Unit == unit {
			return uf.Factor, true
		}
	}
	return 0, false
}

// UnitNames lists the units of e in insertion order.
func (e Entry) UnitNames() []string {
	names := make([]string, 0, len(e.Units))
	for _, uf := range e.Units {
		names = append(names, uf.Unit)
	}
	return names
}

func (e Entry) clone() Entry {
	e.Units = append([]UnitFactor(nil), e.Units...)
	return e
}

// Table maps normalized ingredient names to their base unit and unit
// factors. Unit names are scoped to the ingredient: there is no global unit
// table. Entries are only ever added or wholly replaced.
type Table struct {
	mutex   sync.RWMutex
	entries map[Name]Entry
}

func NewTable() *Table {
	return &Table{
		entries: make(map[Name]Entry),
	}
}

// DefaultTable returns a table seeded with the curated ingredient set.
func DefaultTable() *Table {
	t := NewTable()
	for _, s := range seedEntries {
		if err := t.Register(s.name, s.base, s.units...); err != nil {
			panic(err)
		}
	}
	return t
}

// Lookup finds the entry for name after normalizing it. There is no fuzzy
// matching.
func (t *Table) Lookup(name string) (Entry, bool) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	e, ok := t.entries[NormalizeName(name)]
	if !ok {
		return Entry{}, false
	}
	return e.clone(), true
}

// Register inserts or fully replaces the entry for name. The base unit is
// always stored first with factor 1, whatever the caller passed for it. A
// unit listed twice keeps its first position and its last factor.
func (t *Table) Register(name string, base BaseUnit, units ...UnitFactor) error {
	n := NormalizeName(name)
	if n == "" {
		return fmt.Errorf("%w: empty ingredient name", ErrInvalidEntry)
	}
	if !base.Valid() {
		return fmt.Errorf("%w: base unit %q for %q", ErrInvalidEntry, base, n)
	}

	entry := Entry{
		Name:     n,
		BaseUnit: base,
		Units:    []UnitFactor{{Unit: string(base), Factor: 1}},
	}
	index := map[string]int{string(base): 0}
	for _, uf := range units {
		unit := NormalizeUnit(uf.Unit)
		if unit == "" {
			return fmt.Errorf("%w: empty unit name for %q", ErrInvalidEntry, n)
		}
		if unit == string(base) {
			continue
		}
		if !(uf.Factor > 0) {
			return fmt.Errorf("%w: factor %v for %q %q must be positive", ErrInvalidEntry, uf.Factor, n, unit)
		}
		if i, ok := index[unit]; ok {
			entry.Units[i].Factor = uf.Factor
			continue
		}
		index[unit] = len(entry.Units)
		entry.Units = append(entry.Units, UnitFactor{Unit: unit, Factor: uf.Factor})
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.entries[n] = entry
	return nil
}

// Entries returns a copy of every entry sorted by name.
func (t *Table) Entries() []Entry {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// Len returns the number of registered ingredients.
func (t *Table) Len() int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return len(t.entries)
}
