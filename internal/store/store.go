package store

import (
	"context"
	"errors"
	"fmt"

	"warungpos/backend/internal/domain"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("invalid input")
)

const (
	CollectionProducts = "products"
	CollectionSales    = "sales"
)

// StorageError reports a failed read or write of a whole collection.
// A collection that was never written is not an error; it loads as empty.
type StorageError struct {
	Op         string
	Collection string
	Err        error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func ReadError(collection string, err error) error {
	return &StorageError{Op: "read", Collection: collection, Err: err}
}

func WriteError(collection string, err error) error {
	return &StorageError{Op: "write", Collection: collection, Err: err}
}

// Repository persists each collection as a whole: Load returns every record in
// stored order and Save replaces the collection with exactly the given records.
type Repository interface {
	LoadProducts(ctx context.Context) ([]domain.Product, error)
	SaveProducts(ctx context.Context, products []domain.Product) error
	LoadSales(ctx context.Context) ([]domain.Sale, error)
	SaveSales(ctx context.Context, sales []domain.Sale) error
}
