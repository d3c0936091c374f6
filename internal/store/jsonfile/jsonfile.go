package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/store"
)

const (
	productsFile = "products.json"
	salesFile    = "sales.json"
)

// Store keeps each collection as an indented JSON array in its own file under dir.
type Store struct {
	mu  sync.Mutex
	dir string
}

var _ store.Repository = (*Store)(nil)

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

func (s *Store) LoadProducts(_ context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := s.read(productsFile, &products); err != nil {
		return nil, store.ReadError(store.CollectionProducts, err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

func (s *Store) SaveProducts(_ context.Context, products []domain.Product) error {
	if products == nil {
		products = []domain.Product{}
	}
	if err := s.write(productsFile, products); err != nil {
		return store.WriteError(store.CollectionProducts, err)
	}
	return nil
}

func (s *Store) LoadSales(_ context.Context) ([]domain.Sale, error) {
	var sales []domain.Sale
	if err := s.read(salesFile, &sales); err != nil {
		return nil, store.ReadError(store.CollectionSales, err)
	}
	if sales == nil {
		sales = []domain.Sale{}
	}
	return sales, nil
}

func (s *Store) SaveSales(_ context.Context, sales []domain.Sale) error {
	if sales == nil {
		sales = []domain.Sale{}
	}
	if err := s.write(salesFile, sales); err != nil {
		return store.WriteError(store.CollectionSales, err)
	}
	return nil
}

// read leaves dest untouched when the file does not exist yet or is empty.
func (s *Store) read(name string, dest any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return json.Unmarshal(data, dest)
}

// write replaces the file through a rename so a reader never sees half a collection.
func (s *Store) write(name string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
