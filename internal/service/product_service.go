package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/repository"
	"github.com/crumbhouse/bakery-api/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// allowedImageTypes lists the accepted product image content types
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// ProductService handles the product catalog and product images
type ProductService struct {
	productRepo *repository.ProductRepository
	storage     storage.Storage
	logger      *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(productRepo *repository.ProductRepository, store storage.Storage, logger *zap.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		storage:     store,
		logger:      logger,
	}
}

func (s *ProductService) Create(ctx context.Context, req *domain.CreateProductRequest) (*domain.Product, error) {
	if !req.Category.IsValid() {
		return nil, fieldError("category", "Must be one of the allowed values")
	}
	unit := req.Unit
	if unit == "" {
		unit = domain.UnitPiece
	}
	if !unit.IsValid() {
		return nil, fieldError("unit", "Must be one of the allowed values")
	}
	if err := requireNonNegative("price", req.Price); err != nil {
		return nil, err
	}
	if err := requireNonNegative("costPrice", req.CostPrice); err != nil {
		return nil, err
	}
	if req.MaxStockLevel > 0 && req.MaxStockLevel < req.MinStockLevel {
		return nil, fieldError("maxStockLevel", "Must not be below minStockLevel")
	}

	sku := strings.TrimSpace(req.SKU)
	if existing, err := s.productRepo.GetBySKU(ctx, sku); err != nil {
		return nil, fmt.Errorf("failed to check sku: %w", err)
	} else if existing != nil {
		return nil, ErrDuplicateSKU
	}

	product := &domain.Product{
		SKU:           sku,
		Name:          req.Name,
		Description:   req.Description,
		Category:      req.Category,
		Unit:          unit,
		Price:         req.Price.Round(2),
		CostPrice:     req.CostPrice.Round(2),
		MinStockLevel: req.MinStockLevel,
		MaxStockLevel: req.MaxStockLevel,
		ReorderPoint:  req.ReorderPoint,
		IsActive:      true,
		IsPublic:      req.IsPublic,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrDuplicateSKU
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("product created", zap.String("product_id", product.ID.String()), zap.String("sku", product.SKU))
	return product, nil
}

func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrProductNotFound, "product")
	}
	return product, nil
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateProductRequest) (*domain.Product, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.SKU != nil {
		sku := strings.TrimSpace(*req.SKU)
		if !strings.EqualFold(sku, product.SKU) {
			existing, err := s.productRepo.GetBySKU(ctx, sku)
			if err != nil {
				return nil, fmt.Errorf("failed to check sku: %w", err)
			}
			if existing != nil && existing.ID != product.ID {
				return nil, ErrDuplicateSKU
			}
		}
		product.SKU = sku
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Category != nil {
		if !req.Category.IsValid() {
			return nil, fieldError("category", "Must be one of the allowed values")
		}
		product.Category = *req.Category
	}
	if req.Unit != nil {
		if !req.Unit.IsValid() {
			return nil, fieldError("unit", "Must be one of the allowed values")
		}
		product.Unit = *req.Unit
	}
	if req.Price != nil {
		if err := requireNonNegative("price", *req.Price); err != nil {
			return nil, err
		}
		product.Price = req.Price.Round(2)
	}
	if req.CostPrice != nil {
		if err := requireNonNegative("costPrice", *req.CostPrice); err != nil {
			return nil, err
		}
		product.CostPrice = req.CostPrice.Round(2)
	}
	if req.MinStockLevel != nil {
		product.MinStockLevel = *req.MinStockLevel
	}
	if req.MaxStockLevel != nil {
		product.MaxStockLevel = *req.MaxStockLevel
	}
	if req.ReorderPoint != nil {
		product.ReorderPoint = *req.ReorderPoint
	}
	if req.IsPublic != nil {
		product.IsPublic = *req.IsPublic
	}
	if product.MaxStockLevel > 0 && product.MaxStockLevel < product.MinStockLevel {
		return nil, fieldError("maxStockLevel", "Must not be below minStockLevel")
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrDuplicateSKU
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

func (s *ProductService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.Product, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	product.IsActive = active
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// Delete removes a product that has no inventory rows and no order lines
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	deps, err := s.productRepo.CountDependents(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count product dependents: %w", err)
	}
	if deps.Any() {
		return ErrProductInUse
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if product.ImagePath != "" {
		if err := s.storage.Delete(ctx, product.ImagePath); err != nil {
			s.logger.Warn("failed to delete product image", zap.String("key", product.ImagePath), zap.Error(err))
		}
	}
	s.logger.Info("product deleted", zap.String("product_id", id.String()))
	return nil
}

func (s *ProductService) List(ctx context.Context, filters *repository.ProductFilters, opts repository.ListOptions) ([]domain.Product, int64, error) {
	products, total, err := s.productRepo.List(ctx, filters, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

// ListPublic returns active, public products in catalog form
func (s *ProductService) ListPublic(ctx context.Context, category *domain.ProductCategory, opts repository.ListOptions) ([]domain.PublicProduct, int64, error) {
	active, public := true, true
	products, total, err := s.productRepo.List(ctx, &repository.ProductFilters{
		Category: category,
		IsActive: &active,
		IsPublic: &public,
	}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list public products: %w", err)
	}

	catalog := make([]domain.PublicProduct, len(products))
	for i, p := range products {
		catalog[i] = domain.PublicProduct{
			ID:          p.ID,
			SKU:         p.SKU,
			Name:        p.Name,
			Description: p.Description,
			Category:    p.Category,
			Unit:        p.Unit,
			Price:       p.Price,
			HasImage:    p.ImagePath != "",
		}
	}
	return catalog, total, nil
}

// SetImage stores a new product image and deletes the one it replaces
func (s *ProductService) SetImage(ctx context.Context, id uuid.UUID, filename, contentType string, data io.Reader) (*domain.Product, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !allowedImageTypes[contentType] {
		return nil, fieldError("image", "Must be a JPEG, PNG, WebP or GIF image")
	}

	key, size, err := s.storage.Put(ctx, "products/"+id.String(), filename, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store product image: %w", err)
	}

	previous := product.ImagePath
	product.ImagePath = key
	product.ImageContentType = contentType
	if err := s.productRepo.Update(ctx, product); err != nil {
		_ = s.storage.Delete(ctx, key)
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	if previous != "" {
		if err := s.storage.Delete(ctx, previous); err != nil {
			s.logger.Warn("failed to delete replaced product image", zap.String("key", previous), zap.Error(err))
		}
	}

	s.logger.Info("product image stored",
		zap.String("product_id", id.String()),
		zap.String("key", key),
		zap.Int64("size", size))
	return product, nil
}

// GetImage opens the product image. The caller closes the reader.
func (s *ProductService) GetImage(ctx context.Context, id uuid.UUID) (io.ReadCloser, string, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if product.ImagePath == "" {
		return nil, "", ErrImageNotFound
	}
	reader, err := s.storage.Get(ctx, product.ImagePath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, "", ErrImageNotFound
		}
		return nil, "", fmt.Errorf("failed to read product image: %w", err)
	}
	contentType := product.ImageContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return reader, contentType, nil
}
