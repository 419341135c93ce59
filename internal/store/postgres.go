package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sodavend/internal/domain"
)

// PostgresOrderStore backs the order collection with a soda_orders table.
// It implements the same contract as FileOrderStore so the order service can
// be pointed at either backend through config.
type PostgresOrderStore struct {
	db *pgxpool.Pool
}

func NewPostgresOrderStore(connString string) (*PostgresOrderStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &PostgresOrderStore{db: pool}, nil
}

func (s *PostgresOrderStore) Close() {
	s.db.Close()
}

func (s *PostgresOrderStore) Orders(ctx context.Context) ([]domain.Order, error) {
	rows, err := s.db.Query(ctx,
		"SELECT id, soda, pin_code, is_complete FROM soda_orders ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.Soda, &o.PinCode, &o.IsComplete); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (s *PostgresOrderStore) Get(ctx context.Context, id int64) (domain.Order, error) {
	var o domain.Order
	err := s.db.QueryRow(ctx,
		"SELECT id, soda, pin_code, is_complete FROM soda_orders WHERE id = $1",
		id).Scan(&o.ID, &o.Soda, &o.PinCode, &o.IsComplete)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, fmt.Errorf("%w: id %d", ErrOrderNotFound, id)
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("query order: %w", err)
	}
	return o, nil
}

func (s *PostgresOrderStore) FindByPin(ctx context.Context, pin int) (domain.Order, error) {
	var o domain.Order
	err := s.db.QueryRow(ctx,
		"SELECT id, soda, pin_code, is_complete FROM soda_orders WHERE pin_code = $1 ORDER BY id LIMIT 1",
		pin).Scan(&o.ID, &o.Soda, &o.PinCode, &o.IsComplete)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, fmt.Errorf("%w: pin %d", ErrOrderNotFound, pin)
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("query order by pin: %w", err)
	}
	return o, nil
}

func (s *PostgresOrderStore) Exists(ctx context.Context, pin int) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM soda_orders WHERE pin_code = $1)", pin).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query pin existence: %w", err)
	}
	return exists, nil
}

func (s *PostgresOrderStore) SodaNameForPin(ctx context.Context, pin int) (string, error) {
	order, err := s.FindByPin(ctx, pin)
	if err != nil {
		return "", err
	}
	return order.Soda, nil
}

func (s *PostgresOrderStore) Append(ctx context.Context, order domain.Order) error {
	_, err := s.db.Exec(ctx,
		"INSERT INTO soda_orders (id, soda, pin_code, is_complete) VALUES ($1, $2, $3, $4)",
		order.ID, order.Soda, order.PinCode, order.IsComplete)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// SaveAll replaces the whole table contents in one transaction.
func (s *PostgresOrderStore) SaveAll(ctx context.Context, orders []domain.Order) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("tx begin failed: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM soda_orders"); err != nil {
		return fmt.Errorf("clear orders: %w", err)
	}
	for _, o := range orders {
		_, err := tx.Exec(ctx,
			"INSERT INTO soda_orders (id, soda, pin_code, is_complete) VALUES ($1, $2, $3, $4)",
			o.ID, o.Soda, o.PinCode, o.IsComplete)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (s *PostgresOrderStore) Update(ctx context.Context, order domain.Order) error {
	tag, err := s.db.Exec(ctx,
		"UPDATE soda_orders SET soda = $2, pin_code = $3, is_complete = $4 WHERE id = $1",
		order.ID, order.Soda, order.PinCode, order.IsComplete)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id %d", ErrOrderNotFound, order.ID)
	}
	return nil
}

func (s *PostgresOrderStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM soda_orders WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id %d", ErrOrderNotFound, id)
	}
	return nil
}

func (s *PostgresOrderStore) MarkComplete(ctx context.Context, pin int) error {
	// A pin with no order is a no-op, same as the file backend.
	_, err := s.db.Exec(ctx,
		"UPDATE soda_orders SET is_complete = TRUE WHERE pin_code = $1", pin)
	if err != nil {
		return fmt.Errorf("mark order complete: %w", err)
	}
	return nil
}

func (s *PostgresOrderStore) NextID(ctx context.Context) (int64, error) {
	var next int64
	err := s.db.QueryRow(ctx,
		"SELECT COALESCE(MAX(id), 0) + 1 FROM soda_orders").Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("query next order id: %w", err)
	}
	return next, nil
}

func (s *PostgresOrderStore) AllocatePin(ctx context.Context) (int, error) {
	rows, err := s.db.Query(ctx, "SELECT pin_code FROM soda_orders")
	if err != nil {
		return 0, fmt.Errorf("query used pins: %w", err)
	}
	defer rows.Close()

	used := make(map[int]bool)
	for rows.Next() {
		var pin int
		if err := rows.Scan(&pin); err != nil {
			return 0, fmt.Errorf("scan pin: %w", err)
		}
		used[pin] = true
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	return allocatePin(used)
}
