package database

import (
	"context"
	"errors"

	"github.com/example/order-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// EnsureSchema creates the orders table if it is missing. (email, product_id)
// is deliberately not unique: duplicate prevention lives in the service layer.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS orders (
  order_id   bigserial PRIMARY KEY,
  product_id bigint NOT NULL,
  email      text   NOT NULL,
  first_name text   NOT NULL,
  last_name  text   NOT NULL
);`)
	return err
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	err := r.pool.QueryRow(ctx, `
		SELECT order_id, product_id, email, first_name, last_name
		FROM orders WHERE order_id=$1
	`, id).Scan(&o.OrderID, &o.ProductID, &o.Email, &o.FirstName, &o.LastName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repo) GetAll(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT order_id, product_id, email, first_name, last_name
		FROM orders
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

// FindMatching returns all orders with exactly this email and product pair.
func (r *Repo) FindMatching(ctx context.Context, email string, productID int64) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT order_id, product_id, email, first_name, last_name
		FROM orders WHERE email=$1 AND product_id=$2
	`, email, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

// Save inserts the order and returns it with the assigned id.
func (r *Repo) Save(ctx context.Context, o *domain.Order) (*domain.Order, error) {
	saved := *o
	err := r.pool.QueryRow(ctx, `
		INSERT INTO orders (product_id, email, first_name, last_name)
		VALUES ($1,$2,$3,$4)
		RETURNING order_id
	`, o.ProductID, o.Email, o.FirstName, o.LastName).Scan(&saved.OrderID)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func scanOrders(rows pgx.Rows) ([]domain.Order, error) {
	orders := make([]domain.Order, 0)
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.OrderID, &o.ProductID, &o.Email, &o.FirstName, &o.LastName); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
