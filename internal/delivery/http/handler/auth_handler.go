package handler

import (
	"net/http"

	"hospital-scheduling/internal/usecase"
	"hospital-scheduling/pkg/response"
)

type AuthHandler struct {
	authUsecase usecase.AuthUsecase
}

func NewAuthHandler(authUsecase usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
	}
}

// GetCurrentUser returns the profile behind the bearer token
// @Summary Current user profile
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /me [get]
func (h *AuthHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	profile, err := h.authUsecase.GetCurrentUser(r.Context())
	if err != nil {
		respondError(w, err, "Failed to get current user")
		return
	}

	response.Success(w, http.StatusOK, "User retrieved successfully", profile)
}
