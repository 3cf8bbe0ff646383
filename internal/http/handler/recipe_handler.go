package handler

import (
	"net/http"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/repository"
	"github.com/crumbhouse/bakery-api/internal/service"
	"go.uber.org/zap"
)

type RecipeHandler struct {
	recipeService *service.RecipeService
	logger        *zap.Logger
}

func NewRecipeHandler(recipeService *service.RecipeService, logger *zap.Logger) *RecipeHandler {
	return &RecipeHandler{
		recipeService: recipeService,
		logger:        logger,
	}
}

// List godoc
// @Summary List recipes
// @Tags Recipes
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (max 100)" default(10)
// @Param search query string false "Search by name or description"
// @Param outputProductId query string false "Filter by output product"
// @Param isActive query bool false "Filter by active flag"
// @Param sortBy query string false "Sort field" Enums(createdAt, updatedAt, name, yieldQuantity, bakeMinutes)
// @Param sortOrder query string false "Sort direction" Enums(asc, desc)
// @Success 200 {object} map[string]interface{} "{message, recipes, pagination}"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /recipes [get]
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := parseListOptions(r)
	outputProductID, ok := queryUUID(w, r, "outputProductId")
	if !ok {
		return
	}

	filters := &repository.RecipeFilters{
		OutputProductID: outputProductID,
		IsActive:        queryBool(r, "isActive"),
	}

	recipes, total, err := h.recipeService.List(r.Context(), filters, opts)
	if err != nil {
		respondServiceError(w, h.logger, err, "list recipes")
		return
	}

	respondList(w, "Recipes retrieved successfully", "recipes", recipes, opts, total)
}

// GetByID godoc
// @Summary Get recipe
// @Description Returns the recipe with its ingredient lines
// @Tags Recipes
// @Produce json
// @Param id path string true "Recipe ID"
// @Success 200 {object} map[string]interface{} "{message, recipe}"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /recipes/{id} [get]
func (h *RecipeHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "recipe")
	if !ok {
		return
	}

	recipe, err := h.recipeService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get recipe")
		return
	}

	respondEntity(w, http.StatusOK, "Recipe retrieved successfully", "recipe", recipe)
}

// Create godoc
// @Summary Create recipe
// @Tags Recipes
// @Accept json
// @Produce json
// @Param request body domain.CreateRecipeRequest true "Recipe data"
// @Success 201 {object} map[string]interface{} "{message, recipe}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Name already in use"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /recipes [post]
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateRecipeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	recipe, err := h.recipeService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create recipe")
		return
	}

	respondEntity(w, http.StatusCreated, "Recipe created successfully", "recipe", recipe)
}

// Update godoc
// @Summary Update recipe
// @Description Items, when sent, replace all ingredient lines
// @Tags Recipes
// @Accept json
// @Produce json
// @Param id path string true "Recipe ID"
// @Param request body domain.UpdateRecipeRequest true "Fields to change"
// @Success 200 {object} map[string]interface{} "{message, recipe}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /recipes/{id} [put]
func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "recipe")
	if !ok {
		return
	}

	var req domain.UpdateRecipeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	recipe, err := h.recipeService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update recipe")
		return
	}

	respondEntity(w, http.StatusOK, "Recipe updated successfully", "recipe", recipe)
}

// SetActive godoc
// @Summary Activate or deactivate recipe
// @Tags Recipes
// @Accept json
// @Produce json
// @Param id path string true "Recipe ID"
// @Param request body domain.SetActiveRequest true "Active flag"
// @Success 200 {object} map[string]interface{} "{message, recipe}"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /recipes/{id}/active [put]
func (h *RecipeHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "recipe")
	if !ok {
		return
	}

	var req domain.SetActiveRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	recipe, err := h.recipeService.SetActive(r.Context(), id, *req.IsActive)
	if err != nil {
		respondServiceError(w, h.logger, err, "change recipe status")
		return
	}

	respondEntity(w, http.StatusOK, "Recipe status updated successfully", "recipe", recipe)
}

// Delete godoc
// @Summary Delete recipe
// @Description Recipes used by production batches cannot be deleted
// @Tags Recipes
// @Param id path string true "Recipe ID"
// @Success 200 {object} domain.ErrorResponse "message only"
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /recipes/{id} [delete]
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "recipe")
	if !ok {
		return
	}

	if err := h.recipeService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete recipe")
		return
	}

	respondMessage(w, http.StatusOK, "Recipe deleted successfully")
}
