package products

import (
	"crypto/rand"
	"fmt"
)

const (
	barcodeLength     = 13
	productCodeLength = 8
)

var codeCharset = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

// NewBarcode returns a random 13-character serial for a physical unit.
func NewBarcode() (string, error) {
	return randomCode(barcodeLength)
}

// NewProductCode returns a random 8-character code shared by a variant batch.
func NewProductCode() (string, error) {
	return randomCode(productCodeLength)
}

func randomCode(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating code: %w", err)
	}
	result := make([]rune, length)
	for i, b := range buf {
		result[i] = codeCharset[int(b)%len(codeCharset)]
	}
	return string(result), nil
}
