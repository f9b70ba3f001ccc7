package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackcloro/escrow-program/internal"
	"github.com/blackcloro/escrow-program/internal/programerr"
)

func TestWriteError(t *testing.T) {
	testCases := []struct {
		name           string
		err            error
		expectedStatus int
		expectedError  string
	}{
		{"custom failure", fmt.Errorf("escrow: %w", programerr.NotRentExempt), http.StatusUnprocessableEntity, "NotRentExempt"},
		{"host custom code", programerr.AmountOverflow.HostError(), http.StatusUnprocessableEntity, "AmountOverflow"},
		{"missing account", fmt.Errorf("x: %w", internal.ErrAccountNotFound), http.StatusNotFound, "account not found"},
		{"duplicate account", fmt.Errorf("x: %w", internal.ErrDuplicateAccount), http.StatusConflict, "duplicate account"},
		{"serialization conflict", fmt.Errorf("could not serialize access: %w", internal.ErrTransactionConflict), http.StatusConflict, "transaction conflict"},
		{"built-in failure", fmt.Errorf("x: %w", internal.ErrInsufficientFunds), http.StatusBadRequest, "insufficient funds"},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c fiber.Ctx) error {
				return writeError(c, tc.err)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode)
			var body map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Contains(t, body["error"], tc.expectedError)
		})
	}
}
