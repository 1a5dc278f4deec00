package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	apperrors "github.com/lojinha/backoffice/internal/errors"
	"github.com/lojinha/backoffice/internal/store/db"
)

// PgProductStore implements ProductStore using PostgreSQL as the data store.
type PgProductStore struct {
	db *pgxpool.Pool
}

// NewPgProductStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgProductStore(dbp *pgxpool.Pool) *PgProductStore {
	return &PgProductStore{db: dbp}
}

const productColumns = "id, name, description, price, category_ids, image_url, created_at, updated_at"

// FindPage returns one page of products plus the total count matching the
// same filter, ordered by updated_at DESC, id DESC for stable pagination.
func (p *PgProductStore) FindPage(ctx context.Context, spec PageSpec) ([]db.Product, int64, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+productColumns+`
		   FROM products
		  WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		  ORDER BY updated_at DESC, id DESC
		  LIMIT $2 OFFSET $3`,
		spec.Search, spec.Limit, spec.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find products: %w", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan products: %w", err)
	}

	var count int64
	err = p.db.QueryRow(ctx,
		`SELECT count(*) FROM products WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')`,
		spec.Search).Scan(&count)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}
	return products, count, nil
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgProductStore) FindByID(ctx context.Context, id uuid.UUID) (*db.Product, error) {
	row := p.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	product, err := scanProductRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return product, nil
}

// Create adds a new product. The category ids are stored as given; their
// existence is not checked, they are weak references.
func (p *PgProductStore) Create(ctx context.Context, name, description string, price int64, categoryIDs []uuid.UUID, imageURL string) (*db.Product, error) {
	if categoryIDs == nil {
		categoryIDs = []uuid.UUID{}
	}
	row := p.db.QueryRow(ctx,
		`INSERT INTO products (name, description, price, category_ids, image_url)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+productColumns,
		name, description, price, categoryIDs, imageURL)
	product, err := scanProductRow(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// Update modifies an existing product. An empty imageURL keeps the stored one.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgProductStore) Update(ctx context.Context, id uuid.UUID, name, description string, price int64, categoryIDs []uuid.UUID, imageURL string) (*db.Product, error) {
	if categoryIDs == nil {
		categoryIDs = []uuid.UUID{}
	}
	row := p.db.QueryRow(ctx,
		`UPDATE products
		    SET name = $2,
		        description = $3,
		        price = $4,
		        category_ids = $5,
		        image_url = COALESCE(NULLIF($6, ''), image_url),
		        updated_at = now()
		  WHERE id = $1
		  RETURNING `+productColumns,
		id, name, description, price, categoryIDs, imageURL)
	product, err := scanProductRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// DeleteByID removes a product by its unique identifier. Orders referencing
// the product keep their id lists as-is; the references dangle.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgProductStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	ct, err := p.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrProductNotFound
	}
	return nil
}

// CountDanglingOrderRefs counts orders holding at least one product id with
// no matching product row.
func (p *PgProductStore) CountDanglingOrderRefs(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.QueryRow(ctx,
		`SELECT count(*)
		   FROM orders o
		  WHERE EXISTS (
		        SELECT 1 FROM unnest(o.product_ids) AS d(pid)
		         WHERE d.pid NOT IN (SELECT id FROM products)
		  )`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count dangling product refs: %w", err)
	}
	return count, nil
}

func scanProduct(row pgx.CollectableRow) (db.Product, error) {
	var p db.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryIDs, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func scanProductRow(row pgx.Row) (*db.Product, error) {
	var p db.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryIDs, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
