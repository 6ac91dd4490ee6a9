package cart

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/apperr"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/postgres"
)

const linesQuery = `
	SELECT p.id, p.title, p.sku, COALESCE(p.images[1], ''), p.price, p.stock, c.quantity
	FROM cart_items c
	JOIN products p ON p.id = c.product_id
	WHERE c.user_id = $1
	ORDER BY c.added_at, c.product_id`

type Repo struct{ DB *pgxpool.Pool }

// Get returns the user's cart; a user without a cart gets an empty snapshot.
func (r *Repo) Get(ctx context.Context, userID string) (Snapshot, error) {
	return loadLines(ctx, r.DB, userID, linesQuery)
}

// Resolve loads the cart inside tx and locks its rows until tx ends, so two
// concurrent placements cannot consume the same cart. Carts that are missing,
// empty, or whose products were all deleted yield ErrEmptyCart.
func (r *Repo) Resolve(ctx context.Context, tx pgx.Tx, userID string) (Snapshot, error) {
	snap, err := loadLines(ctx, tx, userID, linesQuery+` FOR UPDATE OF c`)
	if err != nil {
		return Snapshot{}, err
	}
	if snap.Empty() {
		return Snapshot{}, apperr.ErrEmptyCart
	}
	return snap, nil
}

func (r *Repo) Clear(ctx context.Context, q postgres.Querier, userID string) error {
	if _, err := q.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1`, userID); err != nil {
		return apperr.Persistence("clear cart", err)
	}
	return nil
}

// Add puts quantity units of a product in the cart, on top of any already there.
func (r *Repo) Add(ctx context.Context, userID, productID string, quantity int) (Snapshot, error) {
	if quantity <= 0 {
		return Snapshot{}, apperr.Validation("quantity must be positive")
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO cart_items(user_id, product_id, quantity) VALUES ($1,$2,$3)
		ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		userID, productID, quantity)
	if postgres.IsForeignKeyViolation(err) {
		return Snapshot{}, apperr.NotFound("product not found")
	}
	if err != nil {
		return Snapshot{}, apperr.Persistence("add cart item", err)
	}
	return r.Get(ctx, userID)
}

// SetQuantity overwrites a line's quantity; zero removes it.
func (r *Repo) SetQuantity(ctx context.Context, userID, productID string, quantity int) (Snapshot, error) {
	if quantity < 0 {
		return Snapshot{}, apperr.Validation("quantity must not be negative")
	}
	if quantity == 0 {
		return r.Remove(ctx, userID, productID)
	}
	ct, err := r.DB.Exec(ctx,
		`UPDATE cart_items SET quantity=$3 WHERE user_id=$1 AND product_id=$2`,
		userID, productID, quantity)
	if err != nil {
		return Snapshot{}, apperr.Persistence("update cart item", err)
	}
	if ct.RowsAffected() == 0 {
		return Snapshot{}, apperr.NotFound("item not in cart")
	}
	return r.Get(ctx, userID)
}

func (r *Repo) Remove(ctx context.Context, userID, productID string) (Snapshot, error) {
	ct, err := r.DB.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1 AND product_id=$2`, userID, productID)
	if err != nil {
		return Snapshot{}, apperr.Persistence("remove cart item", err)
	}
	if ct.RowsAffected() == 0 {
		return Snapshot{}, apperr.NotFound("item not in cart")
	}
	return r.Get(ctx, userID)
}

func loadLines(ctx context.Context, q postgres.Querier, userID, query string) (Snapshot, error) {
	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return Snapshot{}, apperr.Persistence("load cart", err)
	}
	defer rows.Close()

	snap := Snapshot{UserID: userID, Lines: []Line{}}
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ProductID, &l.Title, &l.SKU, &l.Image, &l.Price, &l.Stock, &l.Quantity); err != nil {
			return Snapshot{}, apperr.Persistence("scan cart line", err)
		}
		snap.Lines = append(snap.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, apperr.Persistence("load cart", err)
	}
	return snap, nil
}
