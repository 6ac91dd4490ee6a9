package catalog

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/apperr"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/postgres"
)

const productColumns = `id, title, description, category, price, stock, sku, images, created_at, updated_at`

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Create(ctx context.Context, n NewProduct) (Product, error) {
	if err := n.Normalize(); err != nil {
		return Product{}, err
	}
	row := r.DB.QueryRow(ctx, `
		INSERT INTO products(id, title, description, category, price, stock, sku, images)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING `+productColumns,
		uuid.NewString(), n.Title, n.Description, n.Category, n.Price, n.Stock, n.SKU, n.Images)
	p, err := scanProduct(row)
	if postgres.IsUniqueViolation(err, "products_sku_key") {
		return Product{}, apperr.Conflict("SKU already exists. Please use a unique SKU.")
	}
	if err != nil {
		return Product{}, apperr.Persistence("create product", err)
	}
	return p, nil
}

func (r *Repo) Get(ctx context.Context, id string) (Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	if postgres.IsNoRows(err) {
		return Product{}, apperr.NotFound("product not found")
	}
	if err != nil {
		return Product{}, apperr.Persistence("get product", err)
	}
	return p, nil
}

// List returns products newest first.
func (r *Repo) List(ctx context.Context, f Filter) ([]Product, error) {
	var (
		where []string
		args  []any
	)
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+escapeLike(s)+"%")
		where = append(where, "(title ILIKE $1 OR description ILIKE $1 OR sku ILIKE $1)")
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		args = append(args, c)
		where = append(where, "lower(category) = lower($"+strconv.Itoa(len(args))+")")
	}
	q := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, apperr.Persistence("list products", err)
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, apperr.Persistence("scan product", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("list products", err)
	}
	return out, nil
}

func (r *Repo) Update(ctx context.Context, id string, patch ProductPatch) (Product, error) {
	if err := patch.Normalize(); err != nil {
		return Product{}, err
	}
	row := r.DB.QueryRow(ctx, `
		UPDATE products SET
			title       = COALESCE($2, title),
			description = COALESCE($3, description),
			category    = COALESCE($4, category),
			price       = COALESCE($5, price),
			stock       = COALESCE($6, stock),
			sku         = COALESCE($7, sku),
			images      = COALESCE($8, images),
			updated_at  = now()
		WHERE id = $1
		RETURNING `+productColumns,
		id, patch.Title, patch.Description, patch.Category, patch.Price, patch.Stock, patch.SKU, patch.Images)
	p, err := scanProduct(row)
	switch {
	case postgres.IsNoRows(err):
		return Product{}, apperr.NotFound("product not found")
	case postgres.IsUniqueViolation(err, "products_sku_key"):
		return Product{}, apperr.Conflict("SKU already exists. Please use a unique SKU.")
	case err != nil:
		return Product{}, apperr.Persistence("update product", err)
	}
	return p, nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return apperr.Persistence("delete product", err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("product not found")
	}
	return nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Category, &p.Price, &p.Stock,
		&p.SKU, &p.Images, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	if len(p.Images) > 0 {
		p.Image = p.Images[0]
	}
	return p, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
