package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "tally/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation maps to 422", dErrors.New(dErrors.CodeValidation, "quantity must be a positive integer"), http.StatusUnprocessableEntity, "validation_error"},
		{"not found maps to 404", dErrors.New(dErrors.CodeNotFound, "purchase not found"), http.StatusNotFound, "not_found"},
		{"invalid state maps to 409", dErrors.New(dErrors.CodeInvalidState, "purchase is already closed"), http.StatusConflict, "invalid_state"},
		{"forbidden maps to 403", dErrors.New(dErrors.CodeForbidden, "access denied"), http.StatusForbidden, "forbidden"},
		{"unclassified errors map to 500", errors.New("driver exploded"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tc.err)

			assert.Equal(t, tc.status, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body["error"])
		})
	}

	t.Run("internal errors carry no description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.Wrap(errors.New("pq: relation purchases does not exist"), dErrors.CodeInternal, "failed to load purchase"))

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Empty(t, body["error_description"], "storage details must not leak to clients")
	})

	t.Run("client errors keep their message", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeValidation, "date is required"))

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "date is required", body["error_description"])
	})
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusCreated, map[string]int{"total": 75})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"total":75}`, w.Body.String())
}
