package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/internal/usecase"
	"hospital-scheduling/pkg/response"
	"hospital-scheduling/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// respondError maps domain errors to status codes. Anything unrecognised is
// reported as fallback with status 500.
func respondError(w http.ResponseWriter, err error, fallback string) {
	var transition *entity.TransitionError
	switch {
	case errors.Is(err, entity.ErrSlotUnavailable):
		response.Conflict(w, "This time is no longer available, please choose another")
	case errors.Is(err, entity.ErrConcurrentUpdate):
		response.Conflict(w, "The resource was modified concurrently, please retry")
	case errors.As(err, &transition):
		response.Error(w, http.StatusConflict, transition.Error(), map[string]string{
			"from": string(transition.From),
			"to":   string(transition.To),
		})
	case errors.Is(err, entity.ErrInvalidTransition):
		response.Conflict(w, "Invalid status transition")
	case errors.Is(err, entity.ErrSlotConflict):
		response.Conflict(w, "You already have a slot at this date and time")
	case errors.Is(err, entity.ErrAlreadyAllocated):
		response.Conflict(w, "Revenue was already allocated for this booking")
	case errors.Is(err, entity.ErrDuplicateDepartment):
		response.Conflict(w, "Department already exists in this hospital")
	case errors.Is(err, entity.ErrHospitalInUse):
		response.Conflict(w, "Hospital still has doctor associations")
	case errors.Is(err, entity.ErrUnauthorized):
		response.Forbidden(w, "You are not allowed to perform this operation")
	case errors.Is(err, usecase.ErrUserInactive):
		response.Forbidden(w, "User account is inactive")
	case errors.Is(err, entity.ErrNotAssociated):
		response.UnprocessableEntity(w, "Doctor is not associated with this hospital")
	case errors.Is(err, entity.ErrInvalidFee),
		errors.Is(err, entity.ErrInvalidDate),
		errors.Is(err, entity.ErrInvalidTime),
		errors.Is(err, entity.ErrInvalidDateRange),
		errors.Is(err, entity.ErrSlotInPast):
		response.BadRequest(w, capitalize(err.Error()))
	case errors.Is(err, entity.ErrHospitalNotFound),
		errors.Is(err, entity.ErrDepartmentNotFound),
		errors.Is(err, entity.ErrSlotNotFound),
		errors.Is(err, entity.ErrBookingNotFound),
		errors.Is(err, entity.ErrProfileNotFound),
		errors.Is(err, usecase.ErrAuditLogNotFound):
		response.NotFound(w, capitalize(err.Error()))
	default:
		response.InternalServerError(w, fallback)
	}
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

// decodeAndValidate reads a JSON body into req and runs the struct
// validator. It writes the error response itself and reports false on
// failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.CustomValidator, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}
	if err := v.Validate(req); err != nil {
		response.ValidationError(w, v.FormatValidationErrors(err))
		return false
	}
	return true
}

func pathUUID(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid "+label+" ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

// queryUUID parses an optional id from the query string.
func queryUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(raw)
}

// queryInt parses an optional non-negative integer from the query string.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New(name + " must be a non-negative integer")
	}
	return n, nil
}

func errInvalidQuery(name string) error {
	return errors.New(name + " must be a valid ID")
}
