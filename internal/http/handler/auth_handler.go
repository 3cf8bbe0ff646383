package handler

import (
	"net/http"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	userService *service.UserService
	logger      *zap.Logger
}

func NewAuthHandler(userService *service.UserService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		logger:      logger,
	}
}

// Login godoc
// @Summary Log in
// @Description Exchanges email and password for a bearer token. Inactive users are rejected.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.LoginRequest true "Credentials"
// @Success 200 {object} domain.LoginResponse
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "log in")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Me godoc
// @Summary Get current authenticated user
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]interface{} "{message, user}"
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.Me(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "load current user")
		return
	}

	respondEntity(w, http.StatusOK, "User retrieved successfully", "user", user)
}

// ChangePassword godoc
// @Summary Change own password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} domain.ErrorResponse "message only"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /auth/password [put]
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ChangePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.userService.ChangePassword(r.Context(), &req); err != nil {
		respondServiceError(w, h.logger, err, "change password")
		return
	}

	respondMessage(w, http.StatusOK, "Password updated successfully")
}
