package products

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBarcodeShape(t *testing.T) {
	barcode, err := NewBarcode()
	require.NoError(t, err)
	assert.Len(t, barcode, 13)
	for _, r := range barcode {
		assert.Contains(t, string(codeCharset), string(r))
	}
}

func TestNewProductCodeShape(t *testing.T) {
	code, err := NewProductCode()
	require.NoError(t, err)
	assert.Len(t, code, 8)
}

func TestBarcodesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		barcode, err := NewBarcode()
		require.NoError(t, err)
		require.False(t, seen[barcode], "duplicate barcode %s", barcode)
		seen[barcode] = true
	}
}
