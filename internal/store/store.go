// Package store provides the product table and its binary file persistence.
package store

import "iter"

// LowStockThreshold is the stock level at or below which a product is reported as low.
const LowStockThreshold = 5

// Product represents a product record in the store.
type Product struct {
	ID    int32
	Name  string
	Price float64
	Stock int32
}

// Low reports whether the product stock is at or below LowStockThreshold.
func (p Product) Low() bool {
	return p.Stock <= LowStockThreshold
}

// ProductPatch carries the optional fields of an update. Nil fields are left unchanged.
type ProductPatch struct {
	Name  *string
	Price *float64
	Stock *int32
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., file, in-memory).
type ProductStore interface {
	// Load reads the backing file into memory.
	// A missing or corrupt file yields an empty store and no error.
	Load() error

	// Save writes the whole table to the backing file.
	Save() error

	// Add creates a new product with id max(existing)+1 and persists the table.
	// Returns ErrCapacityExceeded if the store is full.
	Add(name string, price float64, stock int32) (*Product, error)

	// Update applies the non-nil fields of patch and persists the table.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(id int32, patch ProductPatch) (*Product, error)

	// Delete removes a product, keeping the relative order of the rest, and persists the table.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Delete(id int32) error

	// FindByID retrieves a single product by its identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(id int32) (*Product, error)

	// FindByName retrieves the first product with the given name.
	// Returns ErrProductNotFound if no product has that name.
	FindByName(name string) (*Product, error)

	// List returns the products in insertion order, optionally only the low stock ones.
	List(lowStockOnly bool) iter.Seq[Product]

	// DecrementStock reduces the stock of a product in memory and returns the new level.
	// Returns ErrInsufficientStock if qty exceeds the stock. The caller persists.
	DecrementStock(id int32, qty int32) (int32, error)

	// Len returns the number of products.
	Len() int

	// Dirty reports whether the table changed since it was last loaded or saved.
	Dirty() bool
}
