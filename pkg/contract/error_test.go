package contract_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scarnyc/spacewalks/pkg/contract"
)

func TestStatusCode(t *testing.T) {
	t.Parallel()

	scenarios := map[contract.ErrorCode]int{
		contract.ErrorCodeBadRequest:              http.StatusBadRequest,
		contract.ErrorCodeInvalidParameterValue:   http.StatusBadRequest,
		contract.ErrorCodeResourceDoesNotExist:    http.StatusNotFound,
		contract.ErrorCodeEndpointNotFound:        http.StatusNotFound,
		contract.ErrorCodeServiceUnderMaintenance: http.StatusServiceUnavailable,
		contract.ErrorCodeInternal:                http.StatusInternalServerError,
	}

	for code, status := range scenarios {
		assert.Equal(t, status, contract.NewError(code, "x").StatusCode(), code)
	}
}

func TestErrorWrapsInner(t *testing.T) {
	t.Parallel()

	inner := errors.New("boom")
	err := contract.NewErrorWith(contract.ErrorCodeInternal, "failed to query", inner)

	require.ErrorIs(t, err, inner)
	assert.Equal(t, "[INTERNAL_ERROR] failed to query: boom", err.Error())

	body, jsonErr := json.Marshal(err)
	require.NoError(t, jsonErr)
	assert.JSONEq(t, `{"error_code":"INTERNAL_ERROR","message":"failed to query: boom"}`, string(body))
}
