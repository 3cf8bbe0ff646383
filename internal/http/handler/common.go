package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/repository"
	"github.com/crumbhouse/bakery-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var validate = newValidator()

// newValidator reports fields by their JSON names so error keys match the request body
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// respondEntity writes {message, <key>: value}
func respondEntity(w http.ResponseWriter, status int, message, key string, value interface{}) {
	respondJSON(w, status, map[string]interface{}{
		"message": message,
		key:       value,
	})
}

// respondList writes {message, <key>: items, pagination}
func respondList(w http.ResponseWriter, message, key string, items interface{}, opts repository.ListOptions, total int64) {
	page, limit := repository.NormalizePage(opts.Page, opts.Limit)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":    message,
		key:          items,
		"pagination": domain.NewPagination(page, limit, total),
	})
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, domain.ErrorResponse{Message: message})
}

// respondWithError sends a standardized JSON error response
func respondWithError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, domain.ErrorResponse{Message: message, Error: code})
}

// respondValidationError sends a standardized validation error response with specific field messages
func respondValidationError(w http.ResponseWriter, err error) {
	fieldErrors := make(map[string]string)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fieldErrors[fieldPath(fe)] = formatValidationError(fe)
		}
	}

	respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
		Message: "Validation failed",
		Error:   domain.ErrorCodeValidation,
		Errors:  fieldErrors,
	})
}

// fieldPath drops the struct name from the validator namespace: items[0].quantity
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Must be a valid email address"
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Must contain at least %s entries", fe.Param())
		}
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s", fe.Param())
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", fe.Param())
	default:
		return domain.GetValidationMessage(fe.Tag())
	}
}

// decodeAndValidate reads the JSON body into dst and runs struct validation.
// It writes the 400 response itself and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, domain.ErrorCodeBadRequest, "Invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		respondValidationError(w, err)
		return false
	}
	return true
}

// parseUUIDParam parses a chi URL parameter, writing a 400 when it is not a UUID
func parseUUIDParam(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, domain.ErrorCodeBadRequest,
			fmt.Sprintf("Invalid %s ID: must be a valid UUID", label))
		return uuid.Nil, false
	}
	return id, true
}

// parseListOptions reads page, limit, search, dateRange, sortBy and sortOrder.
// An unknown dateRange keyword is ignored.
func parseListOptions(r *http.Request) repository.ListOptions {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	page, limit = repository.NormalizePage(page, limit)

	opts := repository.ListOptions{
		Page:   page,
		Limit:  limit,
		Search: strings.TrimSpace(q.Get("search")),
		Sort:   repository.DefaultSortConfig(),
	}
	if dr, ok := domain.ParseDateRange(q.Get("dateRange")); ok {
		opts.DateRange = dr
	}
	if sortBy := q.Get("sortBy"); sortBy != "" {
		opts.Sort.Field = sortBy
	}
	if sortOrder := q.Get("sortOrder"); sortOrder != "" {
		opts.Sort.Order = repository.ParseSortOrder(sortOrder)
	}
	return opts
}

// queryUUID parses an optional UUID query parameter
func queryUUID(w http.ResponseWriter, r *http.Request, name string) (*uuid.UUID, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, domain.ErrorCodeBadRequest,
			fmt.Sprintf("Invalid %s: must be a valid UUID", name))
		return nil, false
	}
	return &id, true
}

// queryBool parses an optional boolean query parameter; unparsable values are ignored
func queryBool(r *http.Request, name string) *bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &b
}

// queryEnum parses an optional enum query parameter, rejecting unknown values
func queryEnum[E ~string](w http.ResponseWriter, r *http.Request, name string, valid func(E) bool) (*E, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	v := E(strings.ToUpper(raw))
	if !valid(v) {
		respondWithError(w, http.StatusBadRequest, domain.ErrorCodeBadRequest,
			fmt.Sprintf("Invalid %s: %s", name, raw))
		return nil, false
	}
	return &v, true
}

// respondServiceError maps service errors to HTTP status codes. Unexpected errors are
// logged and answered with a generic 500.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error, action string) {
	var fieldErr *service.FieldError
	var transitionErr *service.TransitionError
	var stockErr *service.InsufficientStockError

	switch {
	case errors.As(err, &fieldErr):
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Message: "Validation failed",
			Error:   domain.ErrorCodeValidation,
			Errors:  map[string]string{fieldErr.Field: fieldErr.Message},
		})
	case errors.As(err, &transitionErr):
		respondJSON(w, http.StatusConflict, domain.ErrorResponse{
			Message:         err.Error(),
			Error:           domain.ErrorCodeInvalidTransition,
			CurrentStatus:   transitionErr.From,
			RequestedStatus: transitionErr.To,
		})
	case errors.As(err, &stockErr):
		available, requested := stockErr.Available, stockErr.Requested
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Message:   "Insufficient stock",
			Error:     domain.ErrorCodeInsufficientStock,
			Available: &available,
			Requested: &requested,
		})
	case errors.Is(err, service.ErrInvalidTransition):
		respondWithError(w, http.StatusConflict, domain.ErrorCodeInvalidTransition, err.Error())
	case errors.Is(err, service.ErrInsufficientStock):
		respondWithError(w, http.StatusBadRequest, domain.ErrorCodeInsufficientStock, err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, domain.ErrorCodeValidation, err.Error())
	case errors.Is(err, service.ErrNotFound):
		respondWithError(w, http.StatusNotFound, domain.ErrorCodeNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		respondWithError(w, http.StatusConflict, domain.ErrorCodeConflict, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		respondWithError(w, http.StatusUnauthorized, domain.ErrorCodeUnauthorized, err.Error())
	case errors.Is(err, service.ErrPermissionDenied):
		respondWithError(w, http.StatusForbidden, domain.ErrorCodeForbidden, err.Error())
	default:
		logger.Error("failed to "+action, zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, domain.ErrorCodeInternal, "Internal server error")
	}
}
