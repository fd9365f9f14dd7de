package order_test

import (
	"testing"

	"orders/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatNumber(t *testing.T) {
	n := order.FormatNumber("lts", 42)
	assert.Equal(t, order.Number("LTS-O-42"), n)
	assert.Equal(t, int64(42), n.Sequence())
}

func TestParseNumber(t *testing.T) {
	n, err := order.ParseNumber("SHOP-UK-O-7")
	require.NoError(t, err)
	assert.Equal(t, int64(7), n.Sequence())

	for _, bad := range []string{"", "LTS-7", "-O-7", "LTS-O-x", "LTS-O-0"} {
		_, err = order.ParseNumber(bad)
		require.Error(t, err, bad)
	}
}
