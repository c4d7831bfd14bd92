package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/model"
)

// CreateProduct inserts a catalog entry. A missing id is assigned.
func (r *PostgresRepository) CreateProduct(ctx context.Context, p *model.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	var categoryID *string
	if p.CategoryID != "" {
		categoryID = &p.CategoryID
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO products (id, name, description, price, stock, category_id,
		                       images, sizes, colors, featured, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.Name, p.Description, p.Price, p.Stock, categoryID,
		p.Images, p.Sizes, p.Colors, p.Featured, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

const productColumns = `id, name, description, price, stock, COALESCE(category_id, ''),
	images, sizes, colors, featured, created_at, updated_at`

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.CategoryID,
		&p.Images, &p.Sizes, &p.Colors, &p.Featured, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProduct returns a product by id.
func (r *PostgresRepository) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// ListProducts returns catalog entries, optionally scoped to a category or to
// featured items only.
func (r *PostgresRepository) ListProducts(ctx context.Context, categoryID string, featuredOnly bool) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var (
		conds []string
		args  []any
	)
	if categoryID != "" {
		args = append(args, categoryID)
		conds = append(conds, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if featuredOnly {
		conds = append(conds, "featured")
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return products, nil
}

// UpdateProduct replaces the mutable fields of a product.
func (r *PostgresRepository) UpdateProduct(ctx context.Context, p *model.Product) error {
	var categoryID *string
	if p.CategoryID != "" {
		categoryID = &p.CategoryID
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE products
		 SET name = $2, description = $3, price = $4, stock = $5, category_id = $6,
		     images = $7, sizes = $8, colors = $9, featured = $10, updated_at = now()
		 WHERE id = $1`,
		p.ID, p.Name, p.Description, p.Price, p.Stock, categoryID,
		p.Images, p.Sizes, p.Colors, p.Featured,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// DeleteProduct removes a product from the catalog.
func (r *PostgresRepository) DeleteProduct(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// CreateCategory inserts a category. The slug is derived from the name when
// absent.
func (r *PostgresRepository) CreateCategory(ctx context.Context, c *model.Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Slug == "" {
		c.Slug = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(c.Name)), " ", "-")
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO categories (id, name, slug, description, image_url, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Name, c.Slug, c.Description, c.ImageURL, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// ListCategories returns all categories ordered by name.
func (r *PostgresRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, slug, description, image_url, created_at
		 FROM categories
		 ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	var res []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ImageURL, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		res = append(res, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// GetCategoryBySlug returns a category by its slug.
func (r *PostgresRepository) GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, slug, description, image_url, created_at FROM categories WHERE slug = $1`,
		slug,
	)

	var c model.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ImageURL, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	return &c, nil
}

// DeleteCategory removes a category; products keep existing with no category.
func (r *PostgresRepository) DeleteCategory(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// CreateCoupon inserts a discount code. Codes are stored upper-case.
func (r *PostgresRepository) CreateCoupon(ctx context.Context, c *model.Coupon) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))

	_, err := r.pool.Exec(ctx,
		`INSERT INTO coupons (id, code, percent, expires_at, active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Code, c.Percent, c.ExpiresAt, c.Active, c.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%w: %s", ErrCouponExists, c.Code)
		}
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}

// GetCouponByCode returns a coupon by its code, case-insensitively.
func (r *PostgresRepository) GetCouponByCode(ctx context.Context, code string) (*model.Coupon, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, code, percent, expires_at, active, created_at FROM coupons WHERE code = $1`,
		strings.ToUpper(strings.TrimSpace(code)),
	)

	var c model.Coupon
	err := row.Scan(&c.ID, &c.Code, &c.Percent, &c.ExpiresAt, &c.Active, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon: %w", err)
	}

	return &c, nil
}

// ListCoupons returns all coupons, newest first.
func (r *PostgresRepository) ListCoupons(ctx context.Context) ([]model.Coupon, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, code, percent, expires_at, active, created_at
		 FROM coupons
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("select coupons: %w", err)
	}
	defer rows.Close()

	var res []model.Coupon
	for rows.Next() {
		var c model.Coupon
		if err := rows.Scan(&c.ID, &c.Code, &c.Percent, &c.ExpiresAt, &c.Active, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan coupon: %w", err)
		}
		res = append(res, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// SetCouponActive toggles a coupon on or off.
func (r *PostgresRepository) SetCouponActive(ctx context.Context, id string, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE coupons SET active = $2 WHERE id = $1`,
		id, active,
	)
	if err != nil {
		return fmt.Errorf("update coupon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCouponNotFound
	}
	return nil
}

// DeleteCoupon removes a coupon.
func (r *PostgresRepository) DeleteCoupon(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete coupon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCouponNotFound
	}
	return nil
}

// CreateBespokeRequest stores a custom-order enquiry.
func (r *PostgresRepository) CreateBespokeRequest(ctx context.Context, b *model.BespokeRequest) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = model.BespokeStatusNew
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO bespoke_requests (id, full_name, email, phone, description, budget, status, images, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		b.ID, b.FullName, b.Email, b.Phone, b.Description, b.Budget, string(b.Status), b.Images, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert bespoke request: %w", err)
	}
	return nil
}

// ListBespokeRequests returns custom-order enquiries, newest first.
func (r *PostgresRepository) ListBespokeRequests(ctx context.Context) ([]model.BespokeRequest, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, full_name, email, phone, description, budget, status, images, created_at
		 FROM bespoke_requests
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("select bespoke requests: %w", err)
	}
	defer rows.Close()

	var res []model.BespokeRequest
	for rows.Next() {
		var (
			b      model.BespokeRequest
			status string
		)
		if err := rows.Scan(&b.ID, &b.FullName, &b.Email, &b.Phone, &b.Description, &b.Budget, &status, &b.Images, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bespoke request: %w", err)
		}
		b.Status = model.BespokeRequestStatus(status)
		res = append(res, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// UpdateBespokeStatus moves an enquiry to a new handling state.
func (r *PostgresRepository) UpdateBespokeStatus(ctx context.Context, id string, status model.BespokeRequestStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE bespoke_requests SET status = $2 WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return fmt.Errorf("update bespoke request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBespokeRequestNotFound
	}
	return nil
}

// AddWishlistItem saves a product to the user's wishlist. Re-adding is a no-op.
func (r *PostgresRepository) AddWishlistItem(ctx context.Context, userID int64, productID string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO wishlist_items (user_id, product_id) VALUES ($1, $2)
		 ON CONFLICT (user_id, product_id) DO NOTHING`,
		userID, productID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return ErrProductNotFound
		}
		return fmt.Errorf("add wishlist item: %w", err)
	}
	return nil
}

// RemoveWishlistItem drops a product from the user's wishlist.
func (r *PostgresRepository) RemoveWishlistItem(ctx context.Context, userID int64, productID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`,
		userID, productID,
	)
	if err != nil {
		return fmt.Errorf("remove wishlist item: %w", err)
	}
	return nil
}

// ListWishlist returns the products on the user's wishlist, most recently
// added first.
func (r *PostgresRepository) ListWishlist(ctx context.Context, userID int64) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.id, p.name, p.description, p.price, p.stock, COALESCE(p.category_id, ''),
		        p.images, p.sizes, p.colors, p.featured, p.created_at, p.updated_at
		 FROM wishlist_items w
		 JOIN products p ON p.id = w.product_id
		 WHERE w.user_id = $1
		 ORDER BY w.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select wishlist: %w", err)
	}
	defer rows.Close()

	var res []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wishlist product: %w", err)
		}
		res = append(res, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}
