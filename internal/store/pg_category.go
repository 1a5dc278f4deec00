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

// PgCategoryStore implements CategoryStore using PostgreSQL as the data store.
type PgCategoryStore struct {
	db *pgxpool.Pool
}

// NewPgCategoryStore creates a new instance of CategoryStore using a PostgreSQL connection pool.
func NewPgCategoryStore(dbp *pgxpool.Pool) *PgCategoryStore {
	return &PgCategoryStore{db: dbp}
}

const categoryColumns = "id, name, created_at, updated_at"

// FindPage returns one page of categories plus the total count matching the
// same filter. The order is fixed to updated_at DESC, id DESC so pages are
// stable for a given snapshot.
func (p *PgCategoryStore) FindPage(ctx context.Context, spec PageSpec) ([]db.Category, int64, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+categoryColumns+`
		   FROM categories
		  WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		  ORDER BY updated_at DESC, id DESC
		  LIMIT $2 OFFSET $3`,
		spec.Search, spec.Limit, spec.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find categories: %w", err)
	}
	categories, err := pgx.CollectRows(rows, scanCategory)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan categories: %w", err)
	}

	var count int64
	err = p.db.QueryRow(ctx,
		`SELECT count(*) FROM categories WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')`,
		spec.Search).Scan(&count)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count categories: %w", err)
	}
	return categories, count, nil
}

// FindAll retrieves every category, most recently updated first.
func (p *PgCategoryStore) FindAll(ctx context.Context) ([]db.Category, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+categoryColumns+` FROM categories ORDER BY updated_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to find all categories: %w", err)
	}
	categories, err := pgx.CollectRows(rows, scanCategory)
	if err != nil {
		return nil, fmt.Errorf("failed to scan categories: %w", err)
	}
	return categories, nil
}

// FindByID retrieves a category by its unique identifier.
// Returns ErrCategoryNotFound if no category exists with the given ID.
func (p *PgCategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*db.Category, error) {
	row := p.db.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	var c db.Category
	if err := row.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by ID: %w", err)
	}
	return &c, nil
}

// FindRefsByIDs resolves ids to {id, name} pairs; missing ids are dropped.
func (p *PgCategoryStore) FindRefsByIDs(ctx context.Context, ids []uuid.UUID) ([]db.CategoryRef, error) {
	if len(ids) == 0 {
		return []db.CategoryRef{}, nil
	}
	rows, err := p.db.Query(ctx,
		`SELECT id, name FROM categories WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve category refs: %w", err)
	}
	refs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (db.CategoryRef, error) {
		var ref db.CategoryRef
		err := row.Scan(&ref.ID, &ref.Name)
		return ref, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan category refs: %w", err)
	}
	return refs, nil
}

// Create adds a new category.
func (p *PgCategoryStore) Create(ctx context.Context, name string) (*db.Category, error) {
	row := p.db.QueryRow(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING `+categoryColumns, name)
	var c db.Category
	if err := row.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &c, nil
}

// Update renames an existing category.
// Returns ErrCategoryNotFound if no category exists with the given ID.
func (p *PgCategoryStore) Update(ctx context.Context, id uuid.UUID, name string) (*db.Category, error) {
	row := p.db.QueryRow(ctx,
		`UPDATE categories SET name = $2, updated_at = now() WHERE id = $1 RETURNING `+categoryColumns,
		id, name)
	var c db.Category
	if err := row.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return &c, nil
}

// DeleteByID removes a category and strips its id from every product that
// references it. Both steps run in one transaction, so a category delete
// that returns successfully leaves no product pointing at the deleted id.
func (p *PgCategoryStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return p.withTransaction(ctx, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete category by ID: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return apperrors.ErrCategoryNotFound
		}
		_, err = tx.Exec(ctx,
			`UPDATE products
			    SET category_ids = array_remove(category_ids, $1), updated_at = now()
			  WHERE $1 = ANY(category_ids)`, id)
		if err != nil {
			return fmt.Errorf("failed to remove category from products: %w", err)
		}
		return nil
	})
}

// PruneDanglingRefs rewrites every product whose category list holds at least
// one id with no matching category row, keeping the surviving ids in order.
// Safe to run at any time; running it twice is a no-op.
func (p *PgCategoryStore) PruneDanglingRefs(ctx context.Context) (int64, error) {
	ct, err := p.db.Exec(ctx,
		`UPDATE products p
		    SET category_ids = (
		        SELECT coalesce(array_agg(u.cid ORDER BY u.ord), '{}')
		          FROM unnest(p.category_ids) WITH ORDINALITY AS u(cid, ord)
		         WHERE u.cid IN (SELECT id FROM categories)
		    ),
		        updated_at = now()
		  WHERE EXISTS (
		        SELECT 1 FROM unnest(p.category_ids) AS d(cid)
		         WHERE d.cid NOT IN (SELECT id FROM categories)
		  )`)
	if err != nil {
		return 0, fmt.Errorf("failed to prune dangling category refs: %w", err)
	}
	return ct.RowsAffected(), nil
}

func (p *PgCategoryStore) withTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return apperrors.ErrTransactionBegin
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return apperrors.ErrTransactionRollback
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return apperrors.ErrTransactionCommit
	}
	return nil
}

func scanCategory(row pgx.CollectableRow) (db.Category, error) {
	var c db.Category
	err := row.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
