package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/pkg/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorStatusCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"concurrent update after retries", fmt.Errorf("cancel: %w", entity.ErrConcurrentUpdate), http.StatusConflict},
		{"slot taken", entity.ErrSlotUnavailable, http.StatusConflict},
		{"transition", &entity.TransitionError{From: entity.SlotStatusCompleted, To: entity.SlotStatusCancelled}, http.StatusConflict},
		{"not associated", entity.ErrNotAssociated, http.StatusUnprocessableEntity},
		{"forbidden", entity.ErrUnauthorized, http.StatusForbidden},
		{"bad time", entity.ErrInvalidTime, http.StatusBadRequest},
		{"missing slot", entity.ErrSlotNotFound, http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondError(rec, tc.err, "Failed")
			assert.Equal(t, tc.code, rec.Code)

			var body response.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
		})
	}
}
