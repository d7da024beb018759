package kitchen_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitchen"
)

func TestDefaultTable(t *testing.T) {
	table := kitchen.DefaultTable()
	assert.Equal(t, 18, table.Len())

	e, ok := table.Lookup("GARAM")
	require.True(t, ok)
	assert.Equal(t, kitchen.Name("garam"), e.Name)
	assert.Equal(t, kitchen.Gram, e.BaseUnit)
	assert.Equal(t, []string{"gram", "kg", "sdm", "sdt", "sendok teh", "sendok makan"}, e.UnitNames())

	e, ok = table.Lookup("kecap manis")
	require.True(t, ok)
	assert.Equal(t, kitchen.ML, e.BaseUnit)

	_, ok = table.Lookup("kecap")
	assert.False(t, ok, "no fuzzy matching")
}

func TestTableRegister(t *testing.T) {
	table := kitchen.NewTable()

	err := table.Register("Kemiri", kitchen.Gram,
		kitchen.UnitFactor{Unit: "Butir ", Factor: 3},
		kitchen.UnitFactor{Unit: "gram", Factor: 5},
		kitchen.UnitFactor{Unit: "sdt", Factor: 4},
		kitchen.UnitFactor{Unit: "butir", Factor: 2.5},
	)
	require.NoError(t, err)

	e, ok := table.Lookup("kemiri")
	require.True(t, ok)
	assert.Equal(t, []kitchen.UnitFactor{
		{Unit: "gram", Factor: 1},
		{Unit: "butir", Factor: 2.5},
		{Unit: "sdt", Factor: 4},
	}, e.Units)

	f, ok := e.Factor(" BUTIR")
	assert.True(t, ok)
	assert.Equal(t, 2.5, f)
}

func TestTableRegister_Invalid(t *testing.T) {
	table := kitchen.NewTable()

	tests := []struct {
		desc  string
		name  string
		base  kitchen.BaseUnit
		units []kitchen.UnitFactor
	}{
		{"empty name", "  ", kitchen.Gram, nil},
		{"bad base", "kemiri", kitchen.BaseUnit("kg"), nil},
		{"empty unit", "kemiri", kitchen.Gram, []kitchen.UnitFactor{{Unit: " ", Factor: 1}}},
		{"zero factor", "kemiri", kitchen.Gram, []kitchen.UnitFactor{{Unit: "butir", Factor: 0}}},
		{"negative factor", "kemiri", kitchen.Gram, []kitchen.UnitFactor{{Unit: "butir", Factor: -3}}},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			err := table.Register(tt.name, tt.base, tt.units...)
			require.ErrorIs(t, err, kitchen.ErrInvalidEntry)
		})
	}
	assert.Equal(t, 0, table.Len())
}

func TestTableLookupReturnsCopy(t *testing.T) {
	table := kitchen.DefaultTable()

	e, ok := table.Lookup("beras")
	require.True(t, ok)
	e.Units[1].Factor = 1

	again, _ := table.Lookup("beras")
	f, _ := again.Factor("kg")
	assert.Equal(t, 1000.0, f)
}

func TestTableEntriesSorted(t *testing.T) {
	entries := kitchen.DefaultTable().Entries()
	require.Len(t, entries, 18)
	for i := 1; i < len(entries); i++ {
		assert.Less(t, string(entries[i-1].Name), string(entries[i].Name))
	}
}

func TestTableConcurrentAccess(t *testing.T) {
	table := kitchen.DefaultTable()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = table.Register("daun jeruk", kitchen.Gram, kitchen.UnitFactor{Unit: "lembar", Factor: 0.5})
		}()
		go func() {
			defer wg.Done()
			table.Lookup("daun jeruk")
			table.Entries()
		}()
	}
	wg.Wait()
	_, ok := table.Lookup("daun jeruk")
	assert.True(t, ok)
}

func TestParseBaseUnit(t *testing.T) {
	bu, err := kitchen.ParseBaseUnit(" ML")
	require.NoError(t, err)
	assert.Equal(t, kitchen.ML, bu)

	_, err = kitchen.ParseBaseUnit("liter")
	require.ErrorIs(t, err, kitchen.ErrInvalidEntry)
}

func TestBaseUnitScan(t *testing.T) {
	var bu kitchen.BaseUnit
	require.NoError(t, bu.Scan([]byte("gram")))
	assert.Equal(t, kitchen.Gram, bu)
	require.NoError(t, bu.Scan("ml"))
	assert.Equal(t, kitchen.ML, bu)
	require.ErrorIs(t, bu.Scan("ons"), kitchen.ErrInvalidEntry)
	require.NoError(t, bu.Scan(""))
	assert.Equal(t, kitchen.Gram, bu)

	v, err := kitchen.ML.Value()
	require.NoError(t, err)
	assert.Equal(t, "ml", v)
}
