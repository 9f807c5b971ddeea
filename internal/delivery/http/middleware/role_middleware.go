package middleware

import (
	"net/http"
	"slices"

	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/pkg/response"
)

// RequireRole creates a middleware that checks if the user has any of the required roles.
// The principal is read from context (set by AuthMiddleware from JWT claims).
func RequireRole(allowed ...entity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := entity.CurrentUser(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}

			if !slices.Contains(allowed, principal.Role) {
				response.Forbidden(w, "You don't have permission to access this resource")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is a convenience middleware for admin-only endpoints
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(entity.RoleAdmin)(next)
}

// RequireDoctor is a convenience middleware for doctor-only endpoints
func RequireDoctor(next http.Handler) http.Handler {
	return RequireRole(entity.RoleDoctor)(next)
}

// RequirePatient is a convenience middleware for patient-only endpoints
func RequirePatient(next http.Handler) http.Handler {
	return RequireRole(entity.RolePatient)(next)
}

// RequireDoctorOrPatient guards endpoints shared by both sides of a booking.
func RequireDoctorOrPatient(next http.Handler) http.Handler {
	return RequireRole(entity.RoleDoctor, entity.RolePatient)(next)
}
