package kitchen

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSameBaseLogsMismatch(t *testing.T) {
	var buf bytes.Buffer
	c := NewConverter(nil, WithLogger(zerolog.New(&buf)))

	require.NoError(t, c.sameBase("beras", Gram, Gram))
	assert.Zero(t, buf.Len())

	err := c.sameBase("beras", Gram, ML)
	require.ErrorIs(t, err, ErrUnresolved)
	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"ingredient":"beras"`)
	assert.Contains(t, out, `"stock_base_unit":"gram"`)
	assert.Contains(t, out, `"required_base_unit":"ml"`)
}
