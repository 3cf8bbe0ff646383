package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/service"
	"go.uber.org/zap"
)

// ImageHandler uploads and serves product images
type ImageHandler struct {
	productService *service.ProductService
	maxUploadMB    int64
	logger         *zap.Logger
}

func NewImageHandler(productService *service.ProductService, maxUploadMB int64, logger *zap.Logger) *ImageHandler {
	return &ImageHandler{
		productService: productService,
		maxUploadMB:    maxUploadMB,
		logger:         logger,
	}
}

// Upload godoc
// @Summary Upload product image
// @Description Replaces the current image; the previous file is deleted
// @Tags Products
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Product ID"
// @Param image formData file true "Image file (JPEG, PNG, WebP or GIF)"
// @Success 200 {object} map[string]interface{} "{message, product}"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 413 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /products/{id}/image [put]
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "product")
	if !ok {
		return
	}

	// Limit request size
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadMB*1024*1024)

	if err := r.ParseMultipartForm(h.maxUploadMB * 1024 * 1024); err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, domain.ErrorCodeBadRequest,
			fmt.Sprintf("File too large: maximum size is %dMB", h.maxUploadMB))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, domain.ErrorCodeBadRequest, "Invalid file upload: image field is required")
		return
	}
	defer file.Close()

	product, err := h.productService.SetImage(r.Context(), id, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		respondServiceError(w, h.logger, err, "upload product image")
		return
	}

	respondEntity(w, http.StatusOK, "Product image uploaded successfully", "product", product)
}

// Get godoc
// @Summary Download product image
// @Tags Products
// @Produce octet-stream
// @Param id path string true "Product ID"
// @Success 200
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /products/{id}/image [get]
func (h *ImageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "product")
	if !ok {
		return
	}

	reader, contentType, err := h.productService.GetImage(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "read product image")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=300")

	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("failed to stream product image", zap.String("product_id", id.String()), zap.Error(err))
	}
}
