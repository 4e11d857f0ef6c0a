// Package sqlite provides a SQLite-backed implementation of ports.CartStore.
//
// Each cart is one row; its lines are kept as a JSON array since they are
// always read and written together.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jcmexdev/storefront-gateway/internal/api-gateway/core/domain/entity"
	"github.com/jcmexdev/storefront-gateway/internal/api-gateway/core/ports"

	// Pure-Go driver, registered as "sqlite". No CGO needed in the image.
	_ "modernc.org/sqlite"
)

var _ ports.CartStore = (*Repository)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS carts (
    id          TEXT PRIMARY KEY,

    -- JSON array of {item_id, name, price, quantity}.
    lines       TEXT NOT NULL DEFAULT '[]',

    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);
`

type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
//
//	repo, err := sqlite.Open("./data/carts.db")
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// Single writer connection; SQLite serialises writes anyway.
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

type lineRow struct {
	ItemID   string  `json:"item_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

func (r *Repository) Get(ctx context.Context, id string) (*entity.Cart, error) {
	const q = `SELECT id, lines, created_at, updated_at FROM carts WHERE id = ?`

	var (
		cart                 entity.Cart
		linesJSON            string
		createdAt, updatedAt string
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(&cart.ID, &linesJSON, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get cart %q: %w", id, err)
	}

	var rows []lineRow
	if err := json.Unmarshal([]byte(linesJSON), &rows); err != nil {
		return nil, fmt.Errorf("sqlite: decode lines of %q: %w", id, err)
	}
	cart.Lines = make([]entity.CartLine, len(rows))
	for i, l := range rows {
		cart.Lines[i] = entity.CartLine(l)
	}

	if cart.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	if cart.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, err
	}
	return &cart, nil
}

// Put upserts the cart row.
func (r *Repository) Put(ctx context.Context, cart *entity.Cart) error {
	const q = `
		INSERT INTO carts (id, lines, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			lines      = excluded.lines,
			updated_at = excluded.updated_at`

	linesJSON, err := encodeLines(cart)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, q,
		cart.ID,
		linesJSON,
		formatTimestamp(cart.CreatedAt),
		formatTimestamp(cart.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: put cart %q: %w", cart.ID, err)
	}
	return nil
}

// Update rewrites lines and updated_at of an existing row only.
func (r *Repository) Update(ctx context.Context, cart *entity.Cart) error {
	linesJSON, err := encodeLines(cart)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE carts SET lines = ?, updated_at = ? WHERE id = ?`,
		linesJSON, formatTimestamp(cart.UpdatedAt), cart.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: update cart %q: %w", cart.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: update cart %q: %w", cart.ID, err)
	}
	if n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func encodeLines(cart *entity.Cart) (string, error) {
	rows := make([]lineRow, len(cart.Lines))
	for i, l := range cart.Lines {
		rows[i] = lineRow(l)
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("sqlite: encode lines of %q: %w", cart.ID, err)
	}
	return string(b), nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM carts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete cart %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: delete cart %q: %w", id, err)
	}
	if n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return nil
}
