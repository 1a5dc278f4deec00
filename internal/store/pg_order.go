package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	apperrors "github.com/lojinha/backoffice/internal/errors"
	"github.com/lojinha/backoffice/internal/store/db"
)

// PgOrderStore implements OrderStore using PostgreSQL as the data store.
type PgOrderStore struct {
	db *pgxpool.Pool
}

// NewPgOrderStore creates a new instance of OrderStore using a PostgreSQL connection pool.
func NewPgOrderStore(dbp *pgxpool.Pool) *PgOrderStore {
	return &PgOrderStore{db: dbp}
}

const orderColumns = "id, order_date, product_ids, total, created_at, updated_at"

// FindPage returns one page of orders plus the total count, newest order
// date first. Orders carry no name, so the Search filter does not apply.
func (p *PgOrderStore) FindPage(ctx context.Context, spec PageSpec) ([]db.Order, int64, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+orderColumns+`
		   FROM orders
		  ORDER BY order_date DESC NULLS LAST, id DESC
		  LIMIT $1 OFFSET $2`,
		spec.Limit, spec.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find orders: %w", err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan orders: %w", err)
	}

	var count int64
	if err := p.db.QueryRow(ctx, `SELECT count(*) FROM orders`).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return orders, count, nil
}

// FindByID retrieves an order by its unique identifier.
// Returns ErrOrderNotFound if no order exists with the given ID.
func (p *PgOrderStore) FindByID(ctx context.Context, id uuid.UUID) (*db.Order, error) {
	row := p.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	order, err := scanOrderRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}
	return order, nil
}

// Create adds a new order. The product ids are stored as given, repeats
// included; their existence is not checked, they are weak references.
func (p *PgOrderStore) Create(ctx context.Context, date time.Time, productIDs []uuid.UUID, total int64) (*db.Order, error) {
	if productIDs == nil {
		productIDs = []uuid.UUID{}
	}
	row := p.db.QueryRow(ctx,
		`INSERT INTO orders (order_date, product_ids, total)
		 VALUES ($1, $2, $3)
		 RETURNING `+orderColumns,
		date, productIDs, total)
	order, err := scanOrderRow(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return order, nil
}

// Update modifies an existing order's details. A nil date keeps the stored
// order_date untouched.
// Returns ErrOrderNotFound if no order exists with the given ID.
func (p *PgOrderStore) Update(ctx context.Context, id uuid.UUID, date *time.Time, productIDs []uuid.UUID, total int64) (*db.Order, error) {
	if productIDs == nil {
		productIDs = []uuid.UUID{}
	}
	row := p.db.QueryRow(ctx,
		`UPDATE orders
		    SET order_date = COALESCE($2, order_date), product_ids = $3, total = $4, updated_at = now()
		  WHERE id = $1
		  RETURNING `+orderColumns,
		id, date, productIDs, total)
	order, err := scanOrderRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	return order, nil
}

// DeleteByID removes an order by its unique identifier.
// Returns ErrOrderNotFound if no order exists with the given ID.
func (p *PgOrderStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	ct, err := p.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete order by ID: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrOrderNotFound
	}
	return nil
}

// Totals returns the (date, total) projection of every order.
func (p *PgOrderStore) Totals(ctx context.Context) ([]db.OrderTotal, error) {
	rows, err := p.db.Query(ctx, `SELECT order_date, total FROM orders`)
	if err != nil {
		return nil, fmt.Errorf("failed to load order totals: %w", err)
	}
	totals, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (db.OrderTotal, error) {
		var t db.OrderTotal
		err := row.Scan(&t.Date, &t.Total)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan order totals: %w", err)
	}
	return totals, nil
}

func scanOrder(row pgx.CollectableRow) (db.Order, error) {
	var o db.Order
	err := row.Scan(&o.ID, &o.Date, &o.ProductIDs, &o.Total, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func scanOrderRow(row pgx.Row) (*db.Order, error) {
	var o db.Order
	err := row.Scan(&o.ID, &o.Date, &o.ProductIDs, &o.Total, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
