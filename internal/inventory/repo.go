package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound          = errors.New("product not found")
	ErrNameTaken         = errors.New("product with this name already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Repo persists products. Name uniqueness is case-insensitive, enforced by
// a unique index on lower(name).
type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Create(ctx context.Context, p *Product) error {
	p.ID = uuid.NewString()
	err := r.DB.QueryRow(ctx, `
		INSERT INTO products(id, name, price, quantity, expiry_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Price, p.Quantity, p.ExpiryDate,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrNameTaken
	}
	return err
}

func (r *Repo) FindByID(ctx context.Context, id string) (Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, price, quantity, expiry_date, created_at, updated_at
		FROM products WHERE id=$1`, id,
	).Scan(&p.ID, &p.Name, &p.Price, &p.Quantity, &p.ExpiryDate, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (r *Repo) List(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, price, quantity, expiry_date, created_at, updated_at
		FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Quantity, &p.ExpiryDate, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Update(ctx context.Context, p *Product) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE products
		SET name=$2, price=$3, quantity=$4, expiry_date=$5, updated_at=now()
		WHERE id=$1`,
		p.ID, p.Name, p.Price, p.Quantity, p.ExpiryDate)
	if isUniqueViolation(err) {
		return ErrNameTaken
	}
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Decrement reserves qty units of stock with a conditional update, so two
// concurrent orders cannot drive the quantity negative. Returns the
// remaining quantity, or ErrInsufficientStock when the guard does not match.
// Callers resolve the product first, so a missing row means lost stock,
// not a missing product.
func (r *Repo) Decrement(ctx context.Context, id string, qty int) (int, error) {
	var remaining int
	err := r.DB.QueryRow(ctx, `
		UPDATE products
		SET quantity = quantity - $2, updated_at = now()
		WHERE id = $1 AND quantity >= $2
		RETURNING quantity`, id, qty,
	).Scan(&remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrInsufficientStock
	}
	return remaining, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
