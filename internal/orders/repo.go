package orders

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/apperr"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/cart"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/inventory"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/postgres"
)

const orderSelect = `
	SELECT o.id, o.user_id, u.name, u.email, o.address, o.total_amount,
	       o.payment_method, o.payment_status,
	       COALESCE(o.gateway_order_id, ''), COALESCE(o.payment_id, ''),
	       o.status, o.stock_restored,
	       COALESCE(o.cancelled_by, ''), COALESCE(o.cancel_reason, ''), o.cancelled_at,
	       o.created_at, o.updated_at
	FROM orders o
	JOIN users u ON u.id = o.user_id`

// Transition is the outcome of a lifecycle change.
type Transition struct {
	Order    Order
	From     Status
	Changed  bool
	Restored bool // stock was credited back by this call
}

type Repo struct {
	DB     *pgxpool.Pool
	Carts  *cart.Repo
	Ledger *inventory.Ledger
	Now    func() time.Time
}

func (r *Repo) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}

// Place converts the user's cart into an order in one transaction: resolve
// the cart, decrement stock, insert the order and its lines, clear the cart.
// Any failure rolls every step back.
func (r *Repo) Place(ctx context.Context, req PlaceRequest) (Order, error) {
	var o Order
	err := postgres.WithTx(ctx, r.DB, func(tx pgx.Tx) error {
		snap, err := r.Carts.Resolve(ctx, tx, req.UserID)
		if err != nil {
			return err
		}
		o = NewOrder(req, snap, r.now())
		if err := r.Ledger.Decrement(ctx, tx, snap.StockLines()); err != nil {
			return err
		}
		if err := insertOrder(ctx, tx, o); err != nil {
			return err
		}
		return r.Carts.Clear(ctx, tx, req.UserID)
	})
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

func insertOrder(ctx context.Context, tx pgx.Tx, o Order) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO orders(id, user_id, address, total_amount, payment_method, payment_status,
		                   gateway_order_id, payment_id, status, stock_restored, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,FALSE,$10,$10)`,
		o.ID, o.UserID, o.Address, o.TotalAmount, string(o.PaymentMethod), string(o.PaymentStatus),
		nullIfEmpty(o.GatewayOrderID), nullIfEmpty(o.PaymentID), string(o.Status), o.CreatedAt)
	if postgres.IsUniqueViolation(err, "orders_payment_id_key") {
		return apperr.Conflict("payment %s was already used for an order", o.PaymentID)
	}
	if err != nil {
		return apperr.Persistence("insert order", err)
	}
	for i, it := range o.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(order_id, position, product_id, title, sku, quantity, price)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			o.ID, i, it.ProductID, it.Title, it.SKU, it.Quantity, it.Price); err != nil {
			return apperr.Persistence("insert order item", err)
		}
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id string) (Order, error) {
	return getOrder(ctx, r.DB, id, false)
}

// Cancel applies an owner cancellation and restores stock at most once.
func (r *Repo) Cancel(ctx context.Context, id, userID, reason string) (Transition, error) {
	var tr Transition
	err := postgres.WithTx(ctx, r.DB, func(tx pgx.Tx) error {
		o, err := getOrder(ctx, tx, id, true)
		if err != nil {
			return err
		}
		tr.From = o.Status
		if err := o.CancelByUser(userID, reason, r.now()); err != nil {
			return err
		}
		tr.Changed = true
		if tr.Restored, err = r.Ledger.Restore(ctx, tx, o.ID, o.StockLines(), "user_cancel"); err != nil {
			return err
		}
		o.StockRestored = true
		tr.Order = o
		return updateState(ctx, tx, o)
	})
	return tr, err
}

// SetStatus applies an admin status change. Entering Rejected or Cancelled
// restores stock unless an earlier change already did.
func (r *Repo) SetStatus(ctx context.Context, id string, next Status) (Transition, error) {
	var tr Transition
	err := postgres.WithTx(ctx, r.DB, func(tx pgx.Tx) error {
		o, err := getOrder(ctx, tx, id, true)
		if err != nil {
			return err
		}
		tr.From = o.Status
		if tr.Changed, err = o.SetStatusByAdmin(next, r.now()); err != nil {
			return err
		}
		if o.Status.RestoresStock() {
			if tr.Restored, err = r.Ledger.Restore(ctx, tx, o.ID, o.StockLines(), "admin_"+string(next)); err != nil {
				return err
			}
			o.StockRestored = true
		}
		tr.Order = o
		if !tr.Changed {
			return nil
		}
		return updateState(ctx, tx, o)
	})
	return tr, err
}

func updateState(ctx context.Context, tx pgx.Tx, o Order) error {
	_, err := tx.Exec(ctx, `
		UPDATE orders SET status=$2, cancelled_by=$3, cancel_reason=$4, cancelled_at=$5, updated_at=$6
		WHERE id=$1`,
		o.ID, string(o.Status), nullIfEmpty(string(o.CancelledBy)), nullIfEmpty(o.CancelReason), o.CancelledAt, o.UpdatedAt)
	if err != nil {
		return apperr.Persistence("update order", err)
	}
	return nil
}

// ListByUser returns the user's orders, newest first.
func (r *Repo) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return r.list(ctx, orderSelect+` WHERE o.user_id=$1 ORDER BY o.created_at DESC`, userID)
}

// ListAll returns every order, newest first.
func (r *Repo) ListAll(ctx context.Context) ([]Order, error) {
	return r.list(ctx, orderSelect+` ORDER BY o.created_at DESC`)
}

func (r *Repo) list(ctx context.Context, q string, args ...any) ([]Order, error) {
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, apperr.Persistence("list orders", err)
	}
	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, apperr.Persistence("scan order", err)
		}
		out = append(out, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("list orders", err)
	}
	if err := attachItems(ctx, r.DB, out); err != nil {
		return nil, err
	}
	return out, nil
}

// OrderStat is the slice of an order the insights report needs.
type OrderStat struct {
	Total     decimal.Decimal
	Status    Status
	CreatedAt time.Time
}

func (r *Repo) Stats(ctx context.Context) (stats []OrderStat, users, products int, err error) {
	if err = r.DB.QueryRow(ctx,
		`SELECT (SELECT count(*) FROM users), (SELECT count(*) FROM products)`,
	).Scan(&users, &products); err != nil {
		return nil, 0, 0, apperr.Persistence("count users and products", err)
	}
	rows, err := r.DB.Query(ctx, `SELECT total_amount, status, created_at FROM orders`)
	if err != nil {
		return nil, 0, 0, apperr.Persistence("load order stats", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s OrderStat
		var st string
		if err := rows.Scan(&s.Total, &st, &s.CreatedAt); err != nil {
			return nil, 0, 0, apperr.Persistence("scan order stats", err)
		}
		s.Status = Status(st)
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, apperr.Persistence("load order stats", err)
	}
	return stats, users, products, nil
}

func getOrder(ctx context.Context, q postgres.Querier, id string, lock bool) (Order, error) {
	sql := orderSelect + ` WHERE o.id=$1`
	if lock {
		sql += ` FOR UPDATE OF o`
	}
	o, err := scanOrder(q.QueryRow(ctx, sql, id))
	if postgres.IsNoRows(err) {
		return Order{}, apperr.NotFound("Order not found")
	}
	if err != nil {
		return Order{}, apperr.Persistence("get order", err)
	}
	list := []Order{o}
	if err := attachItems(ctx, q, list); err != nil {
		return Order{}, err
	}
	return list[0], nil
}

func attachItems(ctx context.Context, q postgres.Querier, list []Order) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, len(list))
	idx := make(map[string]int, len(list))
	for i, o := range list {
		ids[i] = o.ID
		idx[o.ID] = i
		list[i].Items = []Item{}
	}
	rows, err := q.Query(ctx, `
		SELECT order_id, product_id, title, sku, quantity, price
		FROM order_items WHERE order_id = ANY($1)
		ORDER BY order_id, position`, ids)
	if err != nil {
		return apperr.Persistence("load order items", err)
	}
	defer rows.Close()
	for rows.Next() {
		var orderID string
		var it Item
		if err := rows.Scan(&orderID, &it.ProductID, &it.Title, &it.SKU, &it.Quantity, &it.Price); err != nil {
			return apperr.Persistence("scan order item", err)
		}
		i := idx[orderID]
		list[i].Items = append(list[i].Items, it)
	}
	if err := rows.Err(); err != nil {
		return apperr.Persistence("load order items", err)
	}
	return nil
}

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o                   Order
		c                   Customer
		method, pstatus, st string
		cancelledBy         string
	)
	err := row.Scan(&o.ID, &o.UserID, &c.Name, &c.Email, &o.Address, &o.TotalAmount,
		&method, &pstatus, &o.GatewayOrderID, &o.PaymentID, &st, &o.StockRestored,
		&cancelledBy, &o.CancelReason, &o.CancelledAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	o.Customer = &c
	o.PaymentMethod = PaymentMethod(method)
	o.PaymentStatus = PaymentStatus(pstatus)
	o.Status = Status(st)
	o.CancelledBy = Actor(cancelledBy)
	return o, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
