package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repo struct{ DB *pgxpool.Pool }

// Insert appends the order and its items in one transaction and assigns
// the order id. Item rows keep their insertion order via the serial id.
func (r *Repo) Insert(ctx context.Context, o *Order) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o.ID = uuid.NewString()
	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, customer, total_price, created_at)
		VALUES ($1, $2, $3, $4)`,
		o.ID, o.Customer, o.TotalPrice, o.CreatedAt)
	if err != nil {
		return err
	}

	for _, it := range o.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items(order_id, product_id, qty, line_total)
			VALUES ($1, $2, $3, $4)`,
			o.ID, it.ProductID, it.Quantity, it.LineTotal)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// List returns all orders, newest first, with product display expansion.
func (r *Repo) List(ctx context.Context) ([]OrderView, error) {
	return r.list(ctx, 0)
}

// Recent returns at most limit orders, newest first.
func (r *Repo) Recent(ctx context.Context, limit int) ([]OrderView, error) {
	return r.list(ctx, limit)
}

func (r *Repo) list(ctx context.Context, limit int) ([]OrderView, error) {
	q := `SELECT id, customer, total_price, created_at FROM orders ORDER BY created_at DESC`
	var rows pgx.Rows
	var err error
	if limit > 0 {
		rows, err = r.DB.Query(ctx, q+` LIMIT $1`, limit)
	} else {
		rows, err = r.DB.Query(ctx, q)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderView
	ids := make([]string, 0)
	byID := map[string]int{}
	for rows.Next() {
		var o OrderView
		if err := rows.Scan(&o.ID, &o.Customer, &o.TotalPrice, &o.CreatedAt); err != nil {
			return nil, err
		}
		byID[o.ID] = len(out)
		ids = append(ids, o.ID)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	// products LEFT JOINed so items outlive product deletion
	irows, err := r.DB.Query(ctx, `
		SELECT oi.order_id, oi.product_id, oi.qty, oi.line_total,
		       p.name, p.price, p.expiry_date
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.id`, ids)
	if err != nil {
		return nil, err
	}
	defer irows.Close()

	for irows.Next() {
		var orderID string
		var item LineItemView
		var name *string
		var price decimal.NullDecimal
		var expiry *time.Time
		if err := irows.Scan(&orderID, &item.ProductID, &item.Quantity, &item.LineTotal,
			&name, &price, &expiry); err != nil {
			return nil, err
		}
		if name != nil && expiry != nil {
			item.Product = &ProductRef{Name: *name, Price: price.Decimal, ExpiryDate: *expiry}
		}
		i := byID[orderID]
		out[i].Items = append(out[i].Items, item)
	}
	return out, irows.Err()
}

// TotalBetween sums order totals over [start, end).
func (r *Repo) TotalBetween(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.DB.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_price), 0) FROM orders
		WHERE created_at >= $1 AND created_at < $2`, start, end,
	).Scan(&total)
	return total, err
}
