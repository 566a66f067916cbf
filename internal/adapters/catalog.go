// Package adapters binds the alert engine's collaborator ports to the
// services that own the data, keeping the modules decoupled from each other.
package adapters

import (
	"context"

	alertsvc "shelfsense_backend/internal/alerts/service"
	inventorysvc "shelfsense_backend/internal/inventory/service"
	"shelfsense_backend/internal/inventory/repository"
)

// CatalogReader adapts the inventory service to the alert engine's catalog
// lookup port.
type CatalogReader struct {
	inventory *inventorysvc.Service
}

// NewCatalogReader creates the catalog adapter.
func NewCatalogReader(inventory *inventorysvc.Service) *CatalogReader {
	return &CatalogReader{inventory: inventory}
}

// Compile-time check that CatalogReader implements the port.
var _ alertsvc.CatalogLookup = (*CatalogReader)(nil)

// Find returns the catalog entry at a location, nil when unknown.
func (a *CatalogReader) Find(ctx context.Context, shelf, rack string) (*alertsvc.CatalogEntry, error) {
	item, err := a.inventory.FindByLocation(ctx, shelf, rack)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	entry := toCatalogEntry(*item)
	return &entry, nil
}

// SearchByName returns catalog entries matching the substring, preferred
// category first.
func (a *CatalogReader) SearchByName(ctx context.Context, substring, preferredCategory string) ([]alertsvc.CatalogEntry, error) {
	items, err := a.inventory.SearchByName(ctx, substring, preferredCategory)
	if err != nil {
		return nil, err
	}
	entries := make([]alertsvc.CatalogEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, toCatalogEntry(item))
	}
	return entries, nil
}

func toCatalogEntry(item repository.Item) alertsvc.CatalogEntry {
	return alertsvc.CatalogEntry{
		ShelfName:     item.ShelfName,
		RackName:      item.RackName,
		ProductNumber: item.ProductNumber,
		ProductName:   item.ProductName,
		Category:      item.Category,
	}
}
