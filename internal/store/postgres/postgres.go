package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/store"
)

// Store keeps each collection in its own table. position preserves the order in
// which records were handed to Save.
type Store struct {
	db *sql.DB
}

var _ store.Repository = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	position INTEGER NOT NULL,
	id       BIGINT PRIMARY KEY,
	name     TEXT NOT NULL,
	price    BIGINT NOT NULL,
	color    TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS sales (
	position    INTEGER NOT NULL,
	id          BIGINT PRIMARY KEY,
	items       JSONB NOT NULL,
	item_status JSONB NOT NULL,
	total       BIGINT NOT NULL,
	discount    BIGINT NOT NULL,
	final_total BIGINT NOT NULL,
	status      TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);
`

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(4)
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) LoadProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, price, color
		FROM products
		ORDER BY position
	`)
	if err != nil {
		return nil, store.ReadError(store.CollectionProducts, err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 32)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Color); err != nil {
			return nil, store.ReadError(store.CollectionProducts, err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, store.ReadError(store.CollectionProducts, err)
	}
	return products, nil
}

func (s *Store) SaveProducts(ctx context.Context, products []domain.Product) error {
	err := s.replace(ctx, "products", func(tx *sql.Tx) error {
		for i, p := range products {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO products (position, id, name, price, color)
				VALUES ($1,$2,$3,$4,$5)
			`, i, p.ID, p.Name, p.Price, p.Color); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return saveError(store.CollectionProducts, err)
	}
	return nil
}

func (s *Store) LoadSales(ctx context.Context) ([]domain.Sale, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, items, item_status, total, discount, final_total, status, created_at
		FROM sales
		ORDER BY position
	`)
	if err != nil {
		return nil, store.ReadError(store.CollectionSales, err)
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0, 64)
	for rows.Next() {
		var (
			sale       domain.Sale
			itemsRaw   []byte
			statusRaw  []byte
			saleStatus string
		)
		if err := rows.Scan(&sale.ID, &itemsRaw, &statusRaw, &sale.Total, &sale.Discount, &sale.FinalTotal, &saleStatus, &sale.CreatedAt); err != nil {
			return nil, store.ReadError(store.CollectionSales, err)
		}
		if err := json.Unmarshal(itemsRaw, &sale.Items); err != nil {
			return nil, store.ReadError(store.CollectionSales, fmt.Errorf("sale %d items: %w", sale.ID, err))
		}
		if err := json.Unmarshal(statusRaw, &sale.ItemStatus); err != nil {
			return nil, store.ReadError(store.CollectionSales, fmt.Errorf("sale %d item status: %w", sale.ID, err))
		}
		sale.Status = domain.SaleStatus(saleStatus)
		sale.CreatedAt = sale.CreatedAt.UTC()
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, store.ReadError(store.CollectionSales, err)
	}
	return sales, nil
}

func (s *Store) SaveSales(ctx context.Context, sales []domain.Sale) error {
	err := s.replace(ctx, "sales", func(tx *sql.Tx) error {
		for i, sale := range sales {
			items := sale.Items
			if items == nil {
				items = []domain.CartLine{}
			}
			itemsRaw, err := json.Marshal(items)
			if err != nil {
				return err
			}
			itemStatus := sale.ItemStatus
			if itemStatus == nil {
				itemStatus = map[int64]domain.ItemStatus{}
			}
			statusRaw, err := json.Marshal(itemStatus)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO sales (position, id, items, item_status, total, discount, final_total, status, created_at)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			`, i, sale.ID, string(itemsRaw), string(statusRaw), sale.Total, sale.Discount, sale.FinalTotal, string(sale.Status), sale.CreatedAt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return saveError(store.CollectionSales, err)
	}
	return nil
}

// replace swaps the whole table content inside one transaction.
func (s *Store) replace(ctx context.Context, table string, insert func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return err
	}
	if err := insert(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func saveError(collection string, err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: duplicate %s id", store.ErrValidation, collection)
	}
	return store.WriteError(collection, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
