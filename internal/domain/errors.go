package domain

// ErrorResponse is the JSON envelope for every failed request.
// Only Message is always present; the other fields depend on the failure.
type ErrorResponse struct {
	Message         string            `json:"message"`
	Error           string            `json:"error,omitempty"`
	UserRole        string            `json:"userRole,omitempty"`
	Errors          map[string]string `json:"errors,omitempty"`
	CurrentStatus   string            `json:"currentStatus,omitempty"`
	RequestedStatus string            `json:"requestedStatus,omitempty"`
	Available       *float64          `json:"available,omitempty"`
	Requested       *float64          `json:"requested,omitempty"`
}

// ValidationMessages maps validator tags to user-facing messages
var ValidationMessages = map[string]string{
	"required": "This field is required",
	"email":    "Must be a valid email address",
	"max":      "Exceeds maximum length",
	"min":      "Below minimum length",
	"gte":      "Must be greater than or equal to minimum value",
	"gt":       "Must be greater than minimum value",
	"lte":      "Must be less than or equal to maximum value",
	"uuid":     "Must be a valid UUID",
	"oneof":    "Must be one of the allowed values",
	"dive":     "Contains an invalid entry",
}

// GetValidationMessage returns a human-readable message for a validation tag
func GetValidationMessage(tag string) string {
	if msg, ok := ValidationMessages[tag]; ok {
		return msg
	}
	return "Validation failed: " + tag
}

// Error codes placed in ErrorResponse.Error
const (
	ErrorCodeValidation        = "VALIDATION_ERROR"
	ErrorCodeNotFound          = "NOT_FOUND"
	ErrorCodeBadRequest        = "BAD_REQUEST"
	ErrorCodeConflict          = "CONFLICT"
	ErrorCodeInvalidTransition = "INVALID_TRANSITION"
	ErrorCodeInsufficientStock = "INSUFFICIENT_STOCK"
	ErrorCodeUnauthorized      = "UNAUTHORIZED"
	ErrorCodeForbidden         = "FORBIDDEN"
	ErrorCodeInternal          = "INTERNAL_ERROR"
	ErrorCodeRateLimited       = "RATE_LIMITED"
)
