package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"gofalre.io/storefront/driver"
	"gofalre.io/storefront/models"
	"gofalre.io/storefront/models/enum"
	"gofalre.io/storefront/storage"
)

var _ Repository = (*repository)(nil)

type Repository interface {
	List(ctx context.Context, spec models.FilterSpec) (*models.ProductPage, error)
	Get(ctx context.Context, id string) (*models.Product, error)
	Invalidate(ctx context.Context, id string) error
}

type repository struct {
	conn   driver.PostgresPool
	cache  storage.Adapter
	logger *zap.Logger
}

func NewRepository(conn driver.PostgresPool, cache storage.Adapter, logger *zap.Logger) Repository {
	return &repository{
		conn:   conn,
		cache:  cache,
		logger: logger,
	}
}

const productColumns = `id, name, COALESCE(description, ''), price, sale_price, category, gender,
	sizes, is_new, is_sale, is_featured, stock, COALESCE(popularity, 0), created_at`

// List runs the filtered, sorted, paginated catalog query and the matching
// count query, then attaches images and colors in one batch round trip.
func (r *repository) List(ctx context.Context, spec models.FilterSpec) (*models.ProductPage, error) {
	page := spec.Page
	if page < 1 {
		page = 1
	}
	pageSize := spec.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	where, args := buildFilter(spec)

	var total int
	countQuery := "SELECT COUNT(*) FROM products" + where
	if err := r.conn.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count products", zap.Error(err))
		return nil, err
	}

	listQuery := fmt.Sprintf("SELECT %s FROM products%s ORDER BY %s LIMIT $%d OFFSET $%d",
		productColumns, where, orderBy(spec.Sort), len(args)+1, len(args)+2)
	listArgs := append(args, pageSize, (page-1)*pageSize)

	rows, err := r.conn.Query(ctx, listQuery, listArgs...)
	if err != nil {
		r.logger.Error("Failed to list products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error("Failed to scan product", zap.Error(err))
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachMedia(ctx, products); err != nil {
		return nil, err
	}

	return &models.ProductPage{
		Products: products,
		Pagination: models.Pagination{
			Total:       total,
			PerPage:     pageSize,
			CurrentPage: page,
			LastPage:    (total + pageSize - 1) / pageSize,
		},
	}, nil
}

// Get returns a single product, cache-aside through the injected adapter.
func (r *repository) Get(ctx context.Context, id string) (*models.Product, error) {
	cacheKey := productCacheKey(id)
	var cached models.Product

	// 嘗試從快取中獲取
	found, err := r.cache.Read(ctx, cacheKey, &cached)
	if err != nil {
		r.logger.Warn("Failed to get product from cache", zap.Error(err))
	}
	if found {
		return &cached, nil
	}

	query := fmt.Sprintf("SELECT %s FROM products WHERE id = $1", productColumns)
	product, err := scanProduct(r.conn.QueryRow(ctx, query, id))
	if err != nil {
		if err != pgx.ErrNoRows {
			r.logger.Error("Failed to get product", zap.String("product_id", id), zap.Error(err))
		}
		return nil, err
	}

	if err := r.attachMedia(ctx, []*models.Product{product}); err != nil {
		return nil, err
	}

	// 更新快取
	if err := r.cache.Write(ctx, cacheKey, product); err != nil {
		r.logger.Warn("Failed to cache product", zap.Error(err))
	}

	return product, nil
}

// Invalidate drops the cached copy of a product, typically in response to a
// catalog update event.
func (r *repository) Invalidate(ctx context.Context, id string) error {
	return r.cache.Remove(ctx, productCacheKey(id))
}

// attachMedia loads images and colors for every product in a single batch.
func (r *repository) attachMedia(ctx context.Context, products []*models.Product) error {
	if len(products) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, p := range products {
		batch.Queue("SELECT image_url FROM product_images WHERE product_id = $1 ORDER BY is_primary DESC, id ASC", p.ID)
		batch.Queue("SELECT name, hex_code FROM product_colors WHERE product_id = $1 ORDER BY id ASC", p.ID)
	}

	results := r.conn.SendBatch(ctx, batch)
	defer func() {
		if err := results.Close(); err != nil {
			r.logger.Warn("Failed to close batch results", zap.Error(err))
		}
	}()

	for _, p := range products {
		images, err := collectRows(results, func(rows pgx.Rows) (string, error) {
			var url string
			err := rows.Scan(&url)
			return url, err
		})
		if err != nil {
			r.logger.Error("Failed to load product images", zap.String("product_id", p.ID), zap.Error(err))
			return err
		}
		p.Images = images

		colors, err := collectRows(results, func(rows pgx.Rows) (models.Color, error) {
			var c models.Color
			err := rows.Scan(&c.Name, &c.Hex)
			return c, err
		})
		if err != nil {
			r.logger.Error("Failed to load product colors", zap.String("product_id", p.ID), zap.Error(err))
			return err
		}
		p.Colors = colors
	}

	return nil
}

func collectRows[T any](results pgx.BatchResults, scan func(pgx.Rows) (T, error)) ([]T, error) {
	rows, err := results.Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// buildFilter translates the FilterSpec into a parameterized WHERE clause.
func buildFilter(spec models.FilterSpec) (string, []any) {
	var clauses []string
	var args []any

	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if spec.Category != "" {
		add("category = $%d", spec.Category)
	}
	if spec.Gender != "" {
		add("gender = $%d", spec.Gender)
	}
	if spec.Size != "" {
		add("$%d = ANY(sizes)", spec.Size)
	}
	if spec.PriceMin > 0 {
		add("price >= $%d", spec.PriceMin)
	}
	if bounded(spec.PriceMax) {
		add("price <= $%d", spec.PriceMax)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// bounded reports whether the upper price bound is a real limit; +Inf and
// non-positive values mean unbounded.
func bounded(max float64) bool {
	return max > 0 && max < 1e18
}

// orderBy whitelists the ORDER BY expression per sort key.
func orderBy(key enum.SortKey) string {
	switch key {
	case enum.SortKeyPriceLow:
		return "price ASC"
	case enum.SortKeyPriceHigh:
		return "price DESC"
	case enum.SortKeyNewest:
		return "created_at DESC"
	case enum.SortKeyPopular:
		return "popularity DESC"
	default:
		return "is_featured DESC, id ASC"
	}
}

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.SalePrice, &p.Category, &p.Gender,
		&p.Sizes, &p.IsNew, &p.IsSale, &p.IsFeatured, &p.Stock, &p.Popularity, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func productCacheKey(id string) string {
	return "product:" + id
}
