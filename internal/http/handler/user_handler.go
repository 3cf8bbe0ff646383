package handler

import (
	"net/http"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/repository"
	"github.com/crumbhouse/bakery-api/internal/service"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService *service.UserService
	logger      *zap.Logger
}

func NewUserHandler(userService *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// List godoc
// @Summary List users
// @Tags Users
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (max 100)" default(10)
// @Param search query string false "Search by name or email"
// @Param role query string false "Filter by role"
// @Param isActive query bool false "Filter by active flag"
// @Param sortBy query string false "Sort field" Enums(createdAt, updatedAt, name, email, role, lastLoginAt)
// @Param sortOrder query string false "Sort direction" Enums(asc, desc)
// @Success 200 {object} map[string]interface{} "{message, users, pagination}"
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /users [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := parseListOptions(r)
	role, ok := queryEnum(w, r, "role", domain.UserRole.IsValid)
	if !ok {
		return
	}

	filters := &repository.UserFilters{
		Role:     role,
		IsActive: queryBool(r, "isActive"),
	}

	users, total, err := h.userService.List(r.Context(), filters, opts)
	if err != nil {
		respondServiceError(w, h.logger, err, "list users")
		return
	}

	respondList(w, "Users retrieved successfully", "users", users, opts, total)
}

// GetByID godoc
// @Summary Get user
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} map[string]interface{} "{message, user}"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /users/{id} [get]
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "user")
	if !ok {
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get user")
		return
	}

	respondEntity(w, http.StatusOK, "User retrieved successfully", "user", user)
}

// Create godoc
// @Summary Create user
// @Tags Users
// @Accept json
// @Produce json
// @Param request body domain.CreateUserRequest true "User data"
// @Success 201 {object} map[string]interface{} "{message, user}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /users [post]
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create user")
		return
	}

	respondEntity(w, http.StatusCreated, "User created successfully", "user", user)
}

// Update godoc
// @Summary Update user
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body domain.UpdateUserRequest true "Fields to change"
// @Success 200 {object} map[string]interface{} "{message, user}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /users/{id} [put]
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "user")
	if !ok {
		return
	}

	var req domain.UpdateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update user")
		return
	}

	respondEntity(w, http.StatusOK, "User updated successfully", "user", user)
}

// SetActive godoc
// @Summary Activate or deactivate user
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body domain.SetActiveRequest true "Active flag"
// @Success 200 {object} map[string]interface{} "{message, user}"
// @Security BearerAuth
// @Router /users/{id}/active [put]
func (h *UserHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "user")
	if !ok {
		return
	}

	var req domain.SetActiveRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.SetActive(r.Context(), id, *req.IsActive)
	if err != nil {
		respondServiceError(w, h.logger, err, "change user status")
		return
	}

	respondEntity(w, http.StatusOK, "User status updated successfully", "user", user)
}

// Delete godoc
// @Summary Delete user
// @Tags Users
// @Param id path string true "User ID"
// @Success 200 {object} domain.ErrorResponse "message only"
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "user")
	if !ok {
		return
	}

	if err := h.userService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete user")
		return
	}

	respondMessage(w, http.StatusOK, "User deleted successfully")
}
