// Package service implements the inventory catalog: location lookups for the
// alert engine and the catalog management endpoints.
package service

import (
	"context"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"shelfsense_backend/internal/inventory/repository"
	"shelfsense_backend/platform/apperr"
	"shelfsense_backend/platform/logger"
)

// Service provides inventory catalog operations.
type Service struct {
	repo    repository.Repository
	baseURL string
	log     *logger.Logger
}

// New creates the inventory service. baseURL is the public URL embedded in
// shelf-label QR codes.
func New(repo repository.Repository, baseURL string, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

// Create adds a catalog entry for a location.
func (s *Service) Create(ctx context.Context, params repository.CreateItemParams) (repository.Item, error) {
	item, err := s.repo.Create(ctx, params)
	if err != nil {
		return repository.Item{}, err
	}
	s.log.Info("catalog entry created", "location", item.Location(), "product", item.ProductName)
	return item, nil
}

// Update modifies a catalog entry.
func (s *Service) Update(ctx context.Context, params repository.UpdateItemParams) (repository.Item, error) {
	return s.repo.Update(ctx, params)
}

// Delete removes a catalog entry.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Get returns one catalog entry.
func (s *Service) Get(ctx context.Context, id int64) (repository.Item, error) {
	return s.repo.Get(ctx, id)
}

// List returns all catalog entries.
func (s *Service) List(ctx context.Context) ([]repository.Item, error) {
	return s.repo.List(ctx)
}

// FindByLocation returns the entry at a location, or nil when the catalog
// does not know the location.
func (s *Service) FindByLocation(ctx context.Context, shelf, rack string) (*repository.Item, error) {
	return s.repo.FindByLocation(ctx, shelf, rack)
}

// SearchByName returns entries whose product name contains the substring,
// entries in preferredCategory first.
func (s *Service) SearchByName(ctx context.Context, substring, preferredCategory string) ([]repository.Item, error) {
	return s.repo.SearchByName(ctx, substring, preferredCategory)
}

// ShelfLabelPNG renders the QR code printed on a shelf's physical label.
// The code encodes the shelf's catalog URL so a phone scan opens its layout.
func (s *Service) ShelfLabelPNG(ctx context.Context, shelf string) ([]byte, error) {
	shelf = strings.TrimSpace(shelf)
	if shelf == "" {
		return nil, apperr.BadRequest("shelf name is required")
	}

	content := fmt.Sprintf("%s/shelves/%s", s.baseURL, shelf)
	png, err := qrcode.Encode(content, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode shelf label: %w", err)
	}
	return png, nil
}
