package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataFor(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, MetadataFor(CodeStateConflict).HTTPStatus)
	assert.Equal(t, http.StatusConflict, MetadataFor(CodeInsufficientInventory).HTTPStatus)
	assert.Equal(t, http.StatusBadGateway, MetadataFor(CodeSyncFailure).HTTPStatus)
	assert.Equal(t, http.StatusGatewayTimeout, MetadataFor(CodeSyncExhausted).HTTPStatus)

	// Unknown codes fall back to internal.
	assert.Equal(t, http.StatusInternalServerError, MetadataFor(Code("BOGUS")).HTTPStatus)
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(CodeSyncFailure, cause, "notify inventory system")

	require.ErrorIs(t, err, cause)
	assert.Equal(t, CodeSyncFailure, err.Code())
	assert.Equal(t, "SYNC_FAILURE: notify inventory system", err.Error())
}

func TestAsUnwrapsNestedErrors(t *testing.T) {
	inner := New(CodeInsufficientInventory, "2 required, 1 available")
	outer := fmt.Errorf("deliver order: %w", inner)

	typed := As(outer)
	require.NotNil(t, typed)
	assert.Equal(t, CodeInsufficientInventory, typed.Code())

	assert.Nil(t, As(fmt.Errorf("plain error")))
	assert.Nil(t, As(nil))
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("confirm: %w", New(CodeStateConflict, "order is not pending"))
	assert.True(t, Is(err, CodeStateConflict))
	assert.False(t, Is(err, CodeNotFound))
	assert.False(t, Is(nil, CodeNotFound))
}

func TestWithDetails(t *testing.T) {
	err := New(CodeValidation, "validation failed").WithDetails(map[string]string{"orderStatus": "is required"})
	details, ok := err.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["orderStatus"])
}
