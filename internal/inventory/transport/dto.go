package transport

import (
	"shelfsense_backend/internal/inventory/repository"
)

// CreateItemRequest creates a catalog entry.
type CreateItemRequest struct {
	ShelfName     string  `json:"shelfName" validate:"required,max=64"`
	RackName      string  `json:"rackName" validate:"required,max=64"`
	ProductNumber *string `json:"productNumber" validate:"omitempty,max=64"`
	ProductName   string  `json:"productName" validate:"required,max=255"`
	Category      *string `json:"category" validate:"omitempty,max=128"`
	Stock         int     `json:"stock" validate:"omitempty,min=0"`
}

// ToParams converts the request into repository params.
func (r CreateItemRequest) ToParams() repository.CreateItemParams {
	return repository.CreateItemParams{
		ShelfName:     r.ShelfName,
		RackName:      r.RackName,
		ProductNumber: r.ProductNumber,
		ProductName:   r.ProductName,
		Category:      r.Category,
		Stock:         r.Stock,
	}
}

// UpdateItemRequest updates a catalog entry. Nil fields are left unchanged.
type UpdateItemRequest struct {
	ProductNumber *string `json:"productNumber" validate:"omitempty,max=64"`
	ProductName   *string `json:"productName" validate:"omitempty,min=1,max=255"`
	Category      *string `json:"category" validate:"omitempty,max=128"`
	Stock         *int    `json:"stock" validate:"omitempty,min=0"`
}

// ToParams converts the request into repository params.
func (r UpdateItemRequest) ToParams(id int64) repository.UpdateItemParams {
	return repository.UpdateItemParams{
		ID:            id,
		ProductNumber: r.ProductNumber,
		ProductName:   r.ProductName,
		Category:      r.Category,
		Stock:         r.Stock,
	}
}

// ItemListResponse wraps the catalog listing.
type ItemListResponse struct {
	Items []repository.Item `json:"items"`
	Total int               `json:"total"`
}
