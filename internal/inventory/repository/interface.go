// Package repository provides data access for the inventory catalog.
package repository

import (
	"context"
	"time"
)

// Item is one catalog entry: the product expected at a (shelf, rack) location.
type Item struct {
	ID            int64     `json:"id"`
	ShelfName     string    `json:"shelfName"`
	RackName      string    `json:"rackName"`
	ProductNumber *string   `json:"productNumber,omitempty"`
	ProductName   string    `json:"productName"`
	Category      *string   `json:"category,omitempty"`
	Stock         int       `json:"stock"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Location renders the item's position as "shelf-rack".
func (i Item) Location() string {
	return i.ShelfName + "-" + i.RackName
}

// CreateItemParams holds the fields for creating a catalog entry.
type CreateItemParams struct {
	ShelfName     string
	RackName      string
	ProductNumber *string
	ProductName   string
	Category      *string
	Stock         int
}

// UpdateItemParams holds the optional fields for updating a catalog entry.
// Nil fields are left unchanged.
type UpdateItemParams struct {
	ID            int64
	ProductNumber *string
	ProductName   *string
	Category      *string
	Stock         *int
}

// Repository defines data access for catalog entries.
type Repository interface {
	// Create inserts a catalog entry. A second entry for an occupied
	// location fails with a conflict error.
	Create(ctx context.Context, params CreateItemParams) (Item, error)
	Update(ctx context.Context, params UpdateItemParams) (Item, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (Item, error)

	// FindByLocation returns the entry at a location, or nil when the
	// location is unknown to the catalog.
	FindByLocation(ctx context.Context, shelf, rack string) (*Item, error)
	List(ctx context.Context) ([]Item, error)
	// SearchByName returns entries whose product name contains the given
	// substring (case-insensitive). Entries in preferredCategory sort
	// first; "" means no preference.
	SearchByName(ctx context.Context, substring, preferredCategory string) ([]Item, error)
}
