package handler

import (
	"net/http"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/service"
	"go.uber.org/zap"
)

type POSHandler struct {
	posService *service.POSService
	logger     *zap.Logger
}

func NewPOSHandler(posService *service.POSService, logger *zap.Logger) *POSHandler {
	return &POSHandler{
		posService: posService,
		logger:     logger,
	}
}

// Sell godoc
// @Summary Ring up a counter sale
// @Description Creates a paid, delivered POS order and decrements stock in the given warehouse.
// @Description Any line short on stock rejects the whole sale.
// @Tags POS
// @Accept json
// @Produce json
// @Param request body domain.POSSaleRequest true "Sale"
// @Success 201 {object} map[string]interface{} "{message, order}"
// @Failure 400 {object} domain.ErrorResponse "Validation failed or insufficient stock"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /pos/sales [post]
func (h *POSHandler) Sell(w http.ResponseWriter, r *http.Request) {
	var req domain.POSSaleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	order, err := h.posService.Sell(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "record sale")
		return
	}

	respondEntity(w, http.StatusCreated, "Sale recorded successfully", "order", order)
}
