// Package repository implements data access on PostgreSQL.
package repository

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"

	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var (
	// ErrUserExists is returned when registering an email that is taken.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrOrderNotFound is returned when no order matches the lookup.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderExists is returned when an order with the same transaction
	// reference was already recorded.
	ErrOrderExists = errors.New("order already recorded for transaction reference")
	// ErrProductNotFound is returned when no product matches the lookup.
	ErrProductNotFound = errors.New("product not found")
	// ErrCategoryNotFound is returned when no category matches the lookup.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrCouponExists is returned when creating a coupon whose code is taken.
	ErrCouponExists = errors.New("coupon code already exists")
	// ErrCouponNotFound is returned when no coupon matches the code.
	ErrCouponNotFound = errors.New("coupon not found")
	// ErrBespokeRequestNotFound is returned when no enquiry matches the lookup.
	ErrBespokeRequestNotFound = errors.New("bespoke request not found")
	// ErrDeliveryDetailsNotFound is returned when a user has no cached
	// delivery details yet.
	ErrDeliveryDetailsNotFound = errors.New("delivery details not found")
)

// PostgresRepository provides access to the storefront data in PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a repository and brings the schema up to date.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// withRetry re-runs fn on transient database failures (serialization,
// deadlock, broken connections) with exponential backoff.
func (r *PostgresRepository) withRetry(ctx context.Context, fn func() error) error {
	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected {
				return retry.RetryableError(err)
			}
			return err
		}

		if isConnectionError(err) {
			return retry.RetryableError(err)
		}

		return err
	})
}

func isConnectionError(err error) bool {
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// Close closes the connection pool.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// CreateUser registers a new user.
func (r *PostgresRepository) CreateUser(ctx context.Context, email string, passwordHash []byte, displayName string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, display_name) VALUES ($1, $2, $3) RETURNING id`,
		strings.ToLower(email), passwordHash, displayName,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return 0, fmt.Errorf("%w: %s", ErrUserExists, email)
		}
		return 0, fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

// GetUserByEmail returns the user registered under the given email.
func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, display_name, is_admin, created_at FROM users WHERE email = $1`,
		strings.ToLower(email),
	)

	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Admin, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &u, nil
}

// GetUserByID returns the user with the given id.
func (r *PostgresRepository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, display_name, is_admin, created_at FROM users WHERE id = $1`,
		id,
	)

	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Admin, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &u, nil
}

// ListUsers returns all users, newest first.
func (r *PostgresRepository) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, email, password_hash, display_name, is_admin, created_at
		 FROM users
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Admin, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return users, nil
}

// SetUserAdmin grants or revokes the admin flag.
func (r *PostgresRepository) SetUserAdmin(ctx context.Context, userID int64, admin bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET is_admin = $2 WHERE id = $1`,
		userID, admin,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CreateOrder persists a new order. Missing id/reference/timestamps are
// assigned. A duplicate transaction reference maps to ErrOrderExists so the
// reconciliation flow can fall back to the idempotency lookup.
func (r *PostgresRepository) CreateOrder(ctx context.Context, o *model.Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Reference == "" {
		o.Reference = strings.ToUpper(o.ID[:8])
	}
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now

	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	delivery, err := json.Marshal(o.Delivery)
	if err != nil {
		return fmt.Errorf("marshal delivery: %w", err)
	}

	return r.withRetry(ctx, func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO orders (id, reference, user_id, user_email, items, delivery,
			                     tx_ref, tx_id, payment_status, paid_amount, paid_at,
			                     status, points_redeemed, stored_total, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
			o.ID, o.Reference, o.UserID, o.UserEmail, items, delivery,
			o.Payment.TxRef, o.Payment.TxID, o.Payment.Status, o.Payment.PaidAmount, o.Payment.PaidAt,
			string(o.Status), o.PointsRedeemed, o.StoredTotal, o.CreatedAt, o.UpdatedAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				return fmt.Errorf("%w: %s", ErrOrderExists, o.Payment.TxRef)
			}
			return fmt.Errorf("insert order: %w", err)
		}
		return nil
	})
}

const orderColumns = `id, reference, user_id, user_email, items, delivery,
	tx_ref, tx_id, payment_status, paid_amount, paid_at,
	status, points_redeemed, stored_total, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o        model.Order
		items    []byte
		delivery []byte
		status   string
	)
	err := row.Scan(&o.ID, &o.Reference, &o.UserID, &o.UserEmail, &items, &delivery,
		&o.Payment.TxRef, &o.Payment.TxID, &o.Payment.Status, &o.Payment.PaidAmount, &o.Payment.PaidAt,
		&status, &o.PointsRedeemed, &o.StoredTotal, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	if err := json.Unmarshal(delivery, &o.Delivery); err != nil {
		return nil, fmt.Errorf("unmarshal delivery: %w", err)
	}
	o.Status = model.OrderStatus(status)

	return &o, nil
}

// GetOrder returns an order by id.
func (r *PostgresRepository) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// FindOrderByTx returns the order recorded for a transaction reference or
// transaction id. This is the idempotency guard of the reconciliation flow.
func (r *PostgresRepository) FindOrderByTx(ctx context.Context, txRef, txID string) (*model.Order, error) {
	if txRef == "" && txID == "" {
		return nil, ErrOrderNotFound
	}

	var o *model.Order
	err := r.withRetry(ctx, func() error {
		row := r.pool.QueryRow(ctx,
			`SELECT `+orderColumns+` FROM orders
			 WHERE (tx_ref <> '' AND tx_ref = $1) OR (tx_id <> '' AND tx_id = $2)
			 ORDER BY created_at
			 LIMIT 1`,
			txRef, txID)

		var scanErr error
		o, scanErr = scanOrder(row)
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order by tx: %w", err)
	}
	return o, nil
}

// ListOrdersByUser returns a user's orders, newest first.
func (r *PostgresRepository) ListOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return r.listOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
}

// ListOrders returns orders for the admin screen, optionally filtered by status.
func (r *PostgresRepository) ListOrders(ctx context.Context, status model.OrderStatus, limit int) ([]model.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	if status == "" {
		return r.listOrders(ctx,
			`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC LIMIT $1`,
			limit)
	}
	return r.listOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE status = $1 ORDER BY created_at DESC LIMIT $2`,
		string(status), limit)
}

func (r *PostgresRepository) listOrders(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return orders, nil
}

// UpdateOrderStatus moves an order to a new status.
func (r *PostgresRepository) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// GetCart returns the user's cart lines.
func (r *PostgresRepository) GetCart(ctx context.Context, userID int64) ([]model.CartItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT product_id, name, unit_price, quantity, size, color, image_url
		 FROM cart_items
		 WHERE user_id = $1
		 ORDER BY product_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select cart: %w", err)
	}
	defer rows.Close()

	var items []model.CartItem
	for rows.Next() {
		var it model.CartItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.UnitPrice, &it.Quantity, &it.Size, &it.Color, &it.ImageURL); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

// UpsertCartItem adds a line to the cart or replaces its quantity.
func (r *PostgresRepository) UpsertCartItem(ctx context.Context, userID int64, item model.CartItem) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO cart_items (user_id, product_id, name, unit_price, quantity, size, color, image_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id, product_id, size, color)
		 DO UPDATE SET quantity = EXCLUDED.quantity, unit_price = EXCLUDED.unit_price`,
		userID, item.ProductID, item.Name, item.UnitPrice, item.Quantity, item.Size, item.Color, item.ImageURL,
	)
	if err != nil {
		return fmt.Errorf("upsert cart item: %w", err)
	}
	return nil
}

// RemoveCartItem deletes one line from the cart.
func (r *PostgresRepository) RemoveCartItem(ctx context.Context, userID int64, productID, size, color string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2 AND size = $3 AND color = $4`,
		userID, productID, size, color,
	)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	return nil
}

// ClearCart empties the user's cart.
func (r *PostgresRepository) ClearCart(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM cart_items WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// SaveDeliveryDetails caches the user's last-known delivery details.
func (r *PostgresRepository) SaveDeliveryDetails(ctx context.Context, userID int64, d model.DeliveryDetails) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO delivery_details (user_id, full_name, phone, address, city, state, country, pickup, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		 ON CONFLICT (user_id)
		 DO UPDATE SET full_name = EXCLUDED.full_name, phone = EXCLUDED.phone,
		               address = EXCLUDED.address, city = EXCLUDED.city,
		               state = EXCLUDED.state, country = EXCLUDED.country,
		               pickup = EXCLUDED.pickup, updated_at = now()`,
		userID, d.FullName, d.Phone, d.Address, d.City, d.State, d.Country, d.Pickup,
	)
	if err != nil {
		return fmt.Errorf("save delivery details: %w", err)
	}
	return nil
}

// GetDeliveryDetails returns the user's cached delivery details.
func (r *PostgresRepository) GetDeliveryDetails(ctx context.Context, userID int64) (*model.DeliveryDetails, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT full_name, phone, address, city, state, country, pickup
		 FROM delivery_details
		 WHERE user_id = $1`,
		userID,
	)

	var d model.DeliveryDetails
	err := row.Scan(&d.FullName, &d.Phone, &d.Address, &d.City, &d.State, &d.Country, &d.Pickup)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDeliveryDetailsNotFound
		}
		return nil, fmt.Errorf("get delivery details: %w", err)
	}

	return &d, nil
}

// CreateNotification stores a user notification.
func (r *PostgresRepository) CreateNotification(ctx context.Context, n *model.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO notifications (id, user_id, title, body, order_id, read, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		n.ID, n.UserID, n.Title, n.Body, n.OrderID, n.Read, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListNotificationsByUser returns a user's notifications, newest first.
func (r *PostgresRepository) ListNotificationsByUser(ctx context.Context, userID int64) ([]model.Notification, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, title, body, order_id, read, created_at
		 FROM notifications
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select notifications: %w", err)
	}
	defer rows.Close()

	var res []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &n.OrderID, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		res = append(res, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// MarkNotificationRead flags one notification as read.
func (r *PostgresRepository) MarkNotificationRead(ctx context.Context, userID int64, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}
