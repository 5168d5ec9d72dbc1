package store

import (
	"bufio"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"slices"
	"sync"

	serrors "github.com/abgdnv/shopmanager/internal/errors"
	"github.com/abgdnv/shopmanager/pkg/fileutil"
)

// DefaultCapacity is the product limit used when none is configured.
const DefaultCapacity = 1000

var _ ProductStore = (*FileStore)(nil)

// FileStore implements ProductStore with an in-memory slice mirrored to a binary file.
type FileStore struct {
	mu       sync.RWMutex
	path     string
	capacity int
	products []Product
	dirty    bool
	logger   *slog.Logger
}

// NewFileStore creates an empty FileStore backed by path. Call Load to read existing data.
func NewFileStore(path string, capacity int, logger *slog.Logger) *FileStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &FileStore{
		path:     path,
		capacity: capacity,
		products: make([]Product, 0),
		logger:   logger.With("component", "product_store"),
	}
}

// Load reads the backing file. A missing, short or corrupt file leaves the store empty.
func (s *FileStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = make([]Product, 0)
	s.dirty = false
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Info("Product file not found, starting empty", "path", s.path)
		} else {
			s.logger.Warn("Unable to open product file, starting empty", "path", s.path, "error", err)
		}
		return nil
	}
	defer f.Close()

	products, err := decodeProducts(bufio.NewReader(f), s.capacity)
	if err != nil {
		s.logger.Warn("Unable to decode product file, starting empty", "path", s.path, "error", err)
		return nil
	}
	s.products = products
	s.logger.Debug("Products loaded", "path", s.path, "count", len(products))
	return nil
}

// Save writes the table to a temporary file and renames it over the backing file.
func (s *FileStore) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.save()
}

func (s *FileStore) save() error {
	if err := fileutil.WriteAtomic(s.path, func(w *bufio.Writer) error {
		return encodeProducts(w, s.products)
	}); err != nil {
		s.logger.Error("Unable to save products", "path", s.path, "error", err)
		return fmt.Errorf("%w: save products: %w", serrors.ErrIOFailure, err)
	}
	s.dirty = false
	s.logger.Debug("Products saved", "path", s.path, "count", len(s.products))
	return nil
}

// Add creates a new product and persists the table.
// On a save failure the product is kept in memory and returned along with the error.
func (s *FileStore) Add(name string, price float64, stock int32) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.products) >= s.capacity {
		return nil, fmt.Errorf("%w: limit is %d", serrors.ErrCapacityExceeded, s.capacity)
	}
	product := Product{
		ID:    s.nextID(),
		Name:  truncateName(name),
		Price: price,
		Stock: stock,
	}
	s.products = append(s.products, product)
	s.dirty = true
	return &product, s.save()
}

// Update applies the non-nil fields of patch and persists the table.
func (s *FileStore) Update(id int32, patch ProductPatch) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, serrors.ErrProductNotFound
	}
	p := &s.products[idx]
	if patch.Name != nil {
		p.Name = truncateName(*patch.Name)
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	updated := *p
	s.dirty = true
	return &updated, s.save()
}

// Delete removes a product and persists the table.
func (s *FileStore) Delete(id int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return serrors.ErrProductNotFound
	}
	s.products = slices.Delete(s.products, idx, idx+1)
	s.dirty = true
	return s.save()
}

// FindByID retrieves a product by its ID.
func (s *FileStore) FindByID(id int32) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, serrors.ErrProductNotFound
	}
	p := s.products[idx]
	return &p, nil
}

// FindByName retrieves the first product with an exactly matching name.
func (s *FileStore) FindByName(name string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.Name == name {
			return &p, nil
		}
	}
	return nil, serrors.ErrProductNotFound
}

// List returns a sequence over a snapshot taken each time iteration starts.
func (s *FileStore) List(lowStockOnly bool) iter.Seq[Product] {
	return func(yield func(Product) bool) {
		s.mu.RLock()
		snapshot := slices.Clone(s.products)
		s.mu.RUnlock()

		for _, p := range snapshot {
			if lowStockOnly && !p.Low() {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

// DecrementStock reduces the stock of a product in memory only.
func (s *FileStore) DecrementStock(id int32, qty int32) (int32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if qty <= 0 {
		return 0, fmt.Errorf("%w: quantity must be positive, got %d", serrors.ErrInvalidInput, qty)
	}
	idx := s.indexOf(id)
	if idx < 0 {
		return 0, serrors.ErrProductNotFound
	}
	p := &s.products[idx]
	if qty > p.Stock {
		return p.Stock, fmt.Errorf("%w: %d requested, %d available", serrors.ErrInsufficientStock, qty, p.Stock)
	}
	p.Stock -= qty
	s.dirty = true
	return p.Stock, nil
}

// Dirty reports whether the table holds changes that have not been saved.
func (s *FileStore) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Len returns the number of products.
func (s *FileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

func (s *FileStore) indexOf(id int32) int {
	return slices.IndexFunc(s.products, func(p Product) bool { return p.ID == id })
}

func (s *FileStore) nextID() int32 {
	var maxID int32
	for _, p := range s.products {
		maxID = max(maxID, p.ID)
	}
	return maxID + 1
}
