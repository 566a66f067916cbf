package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"shelfsense_backend/platform/apperr"
)

const itemNotFoundMessage = "catalog entry not found"

const itemColumns = `id, shelf_name, rack_name, product_number, product_name, category, stock, created_at, updated_at`

// Repo implements the inventory repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new inventory repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Create inserts a catalog entry.
func (r *Repo) Create(ctx context.Context, params CreateItemParams) (Item, error) {
	query := `
		INSERT INTO inventory (shelf_name, rack_name, product_number, product_name, category, stock)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + itemColumns

	item, err := scanItem(r.pool.QueryRow(ctx, query,
		params.ShelfName, params.RackName, params.ProductNumber,
		params.ProductName, params.Category, params.Stock))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Item{}, apperr.Conflict("location already has a catalog entry")
		}
		return Item{}, fmt.Errorf("create catalog entry: %w", err)
	}
	return item, nil
}

// Update updates a catalog entry; nil params leave the column unchanged.
func (r *Repo) Update(ctx context.Context, params UpdateItemParams) (Item, error) {
	query := `
		UPDATE inventory
		SET product_number = COALESCE($2, product_number),
			product_name = COALESCE($3, product_name),
			category = COALESCE($4, category),
			stock = COALESCE($5, stock),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + itemColumns

	item, err := scanItem(r.pool.QueryRow(ctx, query,
		params.ID, params.ProductNumber, params.ProductName, params.Category, params.Stock))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, apperr.NotFound(itemNotFoundMessage)
		}
		return Item{}, fmt.Errorf("update catalog entry: %w", err)
	}
	return item, nil
}

// Delete removes a catalog entry.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM inventory WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete catalog entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(itemNotFoundMessage)
	}
	return nil
}

// Get returns one catalog entry by ID.
func (r *Repo) Get(ctx context.Context, id int64) (Item, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory WHERE id = $1`

	item, err := scanItem(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, apperr.NotFound(itemNotFoundMessage)
		}
		return Item{}, fmt.Errorf("get catalog entry: %w", err)
	}
	return item, nil
}

// FindByLocation returns the entry at a location, or nil for an unknown one.
func (r *Repo) FindByLocation(ctx context.Context, shelf, rack string) (*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory WHERE shelf_name = $1 AND rack_name = $2`

	item, err := scanItem(r.pool.QueryRow(ctx, query, shelf, rack))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find catalog entry: %w", err)
	}
	return &item, nil
}

// List returns all catalog entries ordered by location.
func (r *Repo) List(ctx context.Context) ([]Item, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory ORDER BY shelf_name, rack_name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list catalog entries: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

// SearchByName returns entries matching the substring, preferred category first.
func (r *Repo) SearchByName(ctx context.Context, substring, preferredCategory string) ([]Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM inventory
		WHERE product_name ILIKE '%' || $1 || '%'
		ORDER BY CASE WHEN $2 <> '' AND category = $2 THEN 0 ELSE 1 END,
			product_name, shelf_name, rack_name`

	rows, err := r.pool.Query(ctx, query, substring, preferredCategory)
	if err != nil {
		return nil, fmt.Errorf("search catalog entries: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

func scanItem(row pgx.Row) (Item, error) {
	var item Item
	err := row.Scan(&item.ID, &item.ShelfName, &item.RackName, &item.ProductNumber,
		&item.ProductName, &item.Category, &item.Stock, &item.CreatedAt, &item.UpdatedAt)
	return item, err
}

func scanItems(rows pgx.Rows) ([]Item, error) {
	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan catalog entry: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog entries: %w", err)
	}
	return items, nil
}
