// Package inventory adjusts product stock on behalf of orders. Every
// operation runs inside the caller's transaction.
package inventory

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/apperr"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/logging"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/metrics"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/postgres"
)

type Line struct {
	ProductID string
	Quantity  int
}

type Ledger struct {
	Metrics *metrics.Metrics
}

// Decrement subtracts each line's quantity from its product. There is no
// availability check: stock may go negative, which is logged and counted.
func (l *Ledger) Decrement(ctx context.Context, tx pgx.Tx, lines []Line) error {
	log := logging.FromContext(ctx)
	for _, ln := range lines {
		var left int
		err := tx.QueryRow(ctx,
			`UPDATE products SET stock = stock - $2, updated_at = now() WHERE id=$1 RETURNING stock`,
			ln.ProductID, ln.Quantity,
		).Scan(&left)
		if postgres.IsNoRows(err) {
			return apperr.NotFound("product %s no longer exists", ln.ProductID)
		}
		if err != nil {
			return apperr.Persistence("decrement stock", err)
		}
		if left < 0 {
			log.Warn("stock_negative", zap.String("product_id", ln.ProductID), zap.Int("stock", left))
			l.Metrics.StockWentNegative()
		}
	}
	return nil
}

// Restore credits the lines of orderID back to stock at most once. The
// orders.stock_restored flag is flipped with a conditional update first; if
// another caller already flipped it nothing is credited and false is returned.
func (l *Ledger) Restore(ctx context.Context, tx pgx.Tx, orderID string, lines []Line, trigger string) (bool, error) {
	ct, err := tx.Exec(ctx,
		`UPDATE orders SET stock_restored = TRUE, updated_at = now() WHERE id=$1 AND NOT stock_restored`,
		orderID)
	if err != nil {
		return false, apperr.Persistence("mark stock restored", err)
	}
	if ct.RowsAffected() == 0 {
		return false, nil
	}

	log := logging.FromContext(ctx)
	for _, ln := range lines {
		ct, err := tx.Exec(ctx,
			`UPDATE products SET stock = stock + $2, updated_at = now() WHERE id=$1`,
			ln.ProductID, ln.Quantity)
		if err != nil {
			return false, apperr.Persistence("restore stock", err)
		}
		if ct.RowsAffected() == 0 {
			// product deleted since the order was placed
			log.Warn("stock_restore_skipped", zap.String("order_id", orderID), zap.String("product_id", ln.ProductID))
		}
	}
	log.Info("stock_restored", zap.String("order_id", orderID), zap.String("trigger", trigger), zap.Int("lines", len(lines)))
	l.Metrics.StockRestored(trigger)
	return true, nil
}
