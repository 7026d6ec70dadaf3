package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pizzeria-system/internal/config"
	"pizzeria-system/internal/logger"
	"pizzeria-system/internal/models"
)

// PostgresStore persists orders in PostgreSQL. Orders are stored as a
// row plus their lines and the discount descriptor, and rebuilt into
// aggregates on read; observers are re-attached by the service layer.
type PostgresStore struct {
	pool    *pgxpool.Pool
	pricing *models.Pricing
	logger  *logger.Logger
}

// NewPostgresStore connects to the database and ensures the schema
func NewPostgresStore(ctx context.Context, cfg *config.Config, pricing *models.Pricing, log *logger.Logger) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	// Try to connect with retries
	var pool *pgxpool.Pool
	maxRetries := 5
	for i := 0; i < maxRetries; i++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = pool.Ping(pingCtx)
			cancel()
			if err == nil {
				break
			}
			pool.Close()
		}

		if i < maxRetries-1 {
			waitTime := time.Duration(i+1) * 2 * time.Second
			log.Error("db_connection_failed",
				fmt.Sprintf("Failed to connect to database, retrying in %v", waitTime),
				"startup", err, nil)
			time.Sleep(waitTime)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
	}

	store := &PostgresStore{pool: pool, pricing: pricing, logger: log}
	if err := store.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	log.Info("db_connected", "Connected to PostgreSQL database", "startup", nil)
	return store, nil
}

// ensureSchema creates the order tables and id sequence if missing
func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE SEQUENCE IF NOT EXISTS order_ids START 1`,
		`CREATE TABLE IF NOT EXISTS orders (
			id INTEGER PRIMARY KEY,
			status TEXT NOT NULL,
			discount_type TEXT NOT NULL DEFAULT 'none',
			discount_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
			discount_threshold DOUBLE PRECISION NOT NULL DEFAULT 0,
			discount_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS order_lines (
			order_id INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			price DOUBLE PRECISION NOT NULL,
			quantity INTEGER NOT NULL,
			PRIMARY KEY (order_id, position)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping tests the database connection
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// NextID returns the next value of the order id sequence
func (s *PostgresStore) NextID(ctx context.Context) (int, error) {
	var id int
	err := s.pool.QueryRow(ctx, `SELECT nextval('order_ids')`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate order id: %w", err)
	}
	return id, nil
}

// Save upserts the order row and rewrites its lines in one transaction
func (s *PostgresStore) Save(ctx context.Context, order *models.Order) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	spec := models.SpecFromPolicy(order.DiscountPolicy())
	_, err = tx.Exec(ctx,
		`INSERT INTO orders (id, status, discount_type, discount_rate, discount_threshold, discount_amount)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			discount_type = EXCLUDED.discount_type,
			discount_rate = EXCLUDED.discount_rate,
			discount_threshold = EXCLUDED.discount_threshold,
			discount_amount = EXCLUDED.discount_amount,
			updated_at = NOW()`,
		order.ID(), string(order.Status()), spec.Type, spec.Rate, spec.Threshold, spec.Amount)
	if err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_lines WHERE order_id = $1`, order.ID()); err != nil {
		return fmt.Errorf("failed to clear order lines: %w", err)
	}
	for i, line := range order.Lines() {
		_, err := tx.Exec(ctx,
			`INSERT INTO order_lines (order_id, position, name, price, quantity) VALUES ($1, $2, $3, $4, $5)`,
			order.ID(), i, line.Item.Name, line.Item.Price, line.Quantity)
		if err != nil {
			return fmt.Errorf("failed to save order line: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// Get loads an order by id and rebuilds the aggregate
func (s *PostgresStore) Get(ctx context.Context, id int) (*models.Order, error) {
	var (
		status string
		spec   models.DiscountSpec
	)
	err := s.pool.QueryRow(ctx,
		`SELECT status, discount_type, discount_rate, discount_threshold, discount_amount
		 FROM orders WHERE id = $1`, id).
		Scan(&status, &spec.Type, &spec.Rate, &spec.Threshold, &spec.Amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrOrderNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	order := models.NewOrder(id, s.pricing)
	if err := s.loadLines(ctx, order); err != nil {
		return nil, err
	}
	order.SetDiscountPolicy(models.PolicyFromSpec(&spec))
	// No observers are attached yet, so this sets state without fan-out.
	order.SetStatus(models.OrderStatus(status))
	return order, nil
}

// List loads all orders in ascending id order
func (s *PostgresStore) List(ctx context.Context) ([]*models.Order, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, status, discount_type, discount_rate, discount_threshold, discount_amount
		 FROM orders ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		var (
			id     int
			status string
			spec   models.DiscountSpec
		)
		if err := rows.Scan(&id, &status, &spec.Type, &spec.Rate, &spec.Threshold, &spec.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		order := models.NewOrder(id, s.pricing)
		order.SetDiscountPolicy(models.PolicyFromSpec(&spec))
		order.SetStatus(models.OrderStatus(status))
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}

	for _, order := range orders {
		if err := s.loadLines(ctx, order); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (s *PostgresStore) loadLines(ctx context.Context, order *models.Order) error {
	rows, err := s.pool.Query(ctx,
		`SELECT name, price, quantity FROM order_lines WHERE order_id = $1 ORDER BY position`,
		order.ID())
	if err != nil {
		return fmt.Errorf("failed to load order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			name     string
			price    float64
			quantity int
		)
		if err := rows.Scan(&name, &price, &quantity); err != nil {
			return fmt.Errorf("failed to scan order line: %w", err)
		}
		order.AddLine(models.MenuItem{Name: name, Price: price}, quantity)
	}
	return rows.Err()
}
