// Package service provides the implementation of shop business logic.
package service

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	serrors "github.com/abgdnv/shopmanager/internal/errors"
	"github.com/abgdnv/shopmanager/internal/ledger"
	"github.com/abgdnv/shopmanager/internal/store"
	"github.com/abgdnv/shopmanager/pkg/fileutil"
	"github.com/go-playground/validator/v10"
)

// ShopService defines the operations available to the operator.
// It abstracts the product store and the sales ledger.
type ShopService interface {
	// FindByID retrieves a single product by its identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int32) (*ProductDto, error)

	// FindByName retrieves the first product with the given name.
	// Returns ErrProductNotFound if no product has that name.
	FindByName(ctx context.Context, name string) (*ProductDto, error)

	// FindAll returns the products in insertion order, optionally only those with low stock.
	// Returns an empty slice if no products match.
	FindAll(ctx context.Context, lowStockOnly bool) ([]ProductDto, error)

	// Create adds a new product.
	// Returns ErrInvalidInput on validation failure and ErrCapacityExceeded when the store is full.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// Update changes the fields set in product, keeping the rest.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id int32, product ProductUpdateDto) (*ProductDto, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id int32) error

	// RecordSale takes qty units out of stock and writes a ledger line.
	// Returns ErrInvalidInput, ErrProductNotFound or ErrInsufficientStock when the sale is refused.
	RecordSale(ctx context.Context, id int32, qty int32) (*SaleReceipt, error)

	// SalesReport aggregates the sales of the last days calendar days, today included.
	SalesReport(ctx context.Context, days int) (*ledger.Report, error)

	// ExportProducts writes the product table as CSV to path and returns the number of rows.
	ExportProducts(ctx context.Context, path string) (int, error)
}

// SalesLedger is the part of the ledger used by the service.
type SalesLedger interface {
	Append(productID int32, productName string, qty int32, unitPrice float64) (*ledger.Sale, error)
	GenerateReport(days int) (*ledger.Report, error)
}

var _ ShopService = (*Service)(nil)

// Service implements ShopService.
type Service struct {
	products store.ProductStore
	sales    SalesLedger
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService creates a new instance of ShopService with the provided store and ledger.
func NewService(products store.ProductStore, sales SalesLedger, logger *slog.Logger) *Service {
	return &Service{
		products: products,
		sales:    sales,
		validate: newValidator(),
		logger:   logger.With("component", "service"),
	}
}

// ProductCreateDto represents the data transfer object for creating a new product.
type ProductCreateDto struct {
	Name  string  `validate:"required,namebytes,singleline"`
	Price float64 `validate:"gte=0"`
	Stock int32   `validate:"gte=0"`
}

// ProductUpdateDto represents the data transfer object for updating a product.
// Nil fields are kept.
type ProductUpdateDto struct {
	Name  *string  `validate:"omitempty,min=1,namebytes,singleline"`
	Price *float64 `validate:"omitempty,gte=0"`
	Stock *int32   `validate:"omitempty,gte=0"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID       int32
	Name     string
	Price    float64
	Stock    int32
	LowStock bool
}

// SaleReceipt describes a recorded sale.
type SaleReceipt struct {
	Date           time.Time
	ProductID      int32
	ProductName    string
	Quantity       int32
	UnitPrice      float64
	Total          float64
	RemainingStock int32
	LowStock       bool
	// LedgerErr is set when the stock was taken but the ledger line could not be written.
	LedgerErr error
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("singleline", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), "\r\n")
	})
	// namebytes bounds the encoded length, which is what the product file stores.
	_ = v.RegisterValidation("namebytes", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= store.MaxNameBytes
	})
	return v
}

// validationError converts validator errors into ErrInvalidInput naming the failed fields.
func validationError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		failed := make([]string, 0, len(validationErrors))
		for _, fieldErr := range validationErrors {
			failed = append(failed, fieldErr.Field()+" failed on rule: "+fieldErr.Tag())
		}
		return fmt.Errorf("%w: %s", serrors.ErrInvalidInput, strings.Join(failed, "; "))
	}
	return fmt.Errorf("%w: %w", serrors.ErrInvalidInput, err)
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
func (s *Service) FindByID(_ context.Context, id int32) (*ProductDto, error) {
	product, err := s.products.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %d: %w", id, err)
	}
	return toDto(product), nil
}

// FindByName retrieves a product by its name and returns it as a ProductDto.
func (s *Service) FindByName(_ context.Context, name string) (*ProductDto, error) {
	product, err := s.products.FindByName(name)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by name %q: %w", name, err)
	}
	return toDto(product), nil
}

// FindAll retrieves the products and returns them as ProductDTOs.
func (s *Service) FindAll(_ context.Context, lowStockOnly bool) ([]ProductDto, error) {
	productDTOs := make([]ProductDto, 0, s.products.Len())
	for p := range s.products.List(lowStockOnly) {
		productDTOs = append(productDTOs, *toDto(&p))
	}
	return productDTOs, nil
}

// Create validates and stores a new product.
// A product that was added but could not be persisted is returned with the error.
func (s *Service) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	if err := s.validate.Struct(product); err != nil {
		return nil, validationError(err)
	}
	p, err := s.products.Add(product.Name, product.Price, product.Stock)
	if err != nil {
		if p != nil {
			return toDto(p), fmt.Errorf("failed to persist product %d: %w", p.ID, err)
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.logger.InfoContext(ctx, "Product created", "ID", p.ID, "Name", p.Name)
	return toDto(p), nil
}

// Update validates and applies a partial update.
func (s *Service) Update(ctx context.Context, id int32, product ProductUpdateDto) (*ProductDto, error) {
	if err := s.validate.Struct(product); err != nil {
		return nil, validationError(err)
	}
	updated, err := s.products.Update(id, store.ProductPatch{
		Name:  product.Name,
		Price: product.Price,
		Stock: product.Stock,
	})
	if err != nil {
		if updated != nil {
			return toDto(updated), fmt.Errorf("failed to persist product %d: %w", id, err)
		}
		return nil, fmt.Errorf("failed to update product with ID %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Product updated", "ID", updated.ID, "Name", updated.Name)
	return toDto(updated), nil
}

// DeleteByID deletes a product by its ID.
func (s *Service) DeleteByID(ctx context.Context, id int32) error {
	if err := s.products.Delete(id); err != nil {
		return fmt.Errorf("failed to delete product with ID %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Product deleted", "ID", id)
	return nil
}

// RecordSale decrements stock, appends a ledger line and persists the store.
// The stock decrement stands even if the ledger line cannot be written; the receipt carries that error.
// If the store cannot be saved the receipt is returned together with the error.
func (s *Service) RecordSale(ctx context.Context, id int32, qty int32) (*SaleReceipt, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive, got %d", serrors.ErrInvalidInput, qty)
	}
	product, err := s.products.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %d: %w", id, err)
	}
	remaining, err := s.products.DecrementStock(id, qty)
	if err != nil {
		s.logger.WarnContext(ctx, "Sale refused", "ID", id, "qty", qty, "stock", product.Stock, "error", err)
		return nil, fmt.Errorf("failed to sell product with ID %d: %w", id, err)
	}

	receipt := &SaleReceipt{
		ProductID:      product.ID,
		ProductName:    product.Name,
		Quantity:       qty,
		UnitPrice:      product.Price,
		Total:          float64(qty) * product.Price,
		RemainingStock: remaining,
		LowStock:       remaining <= store.LowStockThreshold,
	}
	sale, err := s.sales.Append(product.ID, product.Name, qty, product.Price)
	if err != nil {
		s.logger.ErrorContext(ctx, "Sale not written to ledger", "ID", id, "qty", qty, "error", err)
		receipt.LedgerErr = err
	} else {
		receipt.Date = sale.Date
		receipt.Total = sale.Total
	}

	if err := s.products.Save(); err != nil {
		return receipt, fmt.Errorf("failed to persist stock for product with ID %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Sale recorded", "ID", id, "qty", qty, "total", receipt.Total, "remaining", remaining)
	return receipt, nil
}

// SalesReport delegates to the ledger.
func (s *Service) SalesReport(ctx context.Context, days int) (*ledger.Report, error) {
	report, err := s.sales.GenerateReport(days)
	if err != nil {
		return nil, fmt.Errorf("failed to generate sales report: %w", err)
	}
	s.logger.DebugContext(ctx, "Sales report generated", "days", days, "rows", len(report.Rows))
	return report, nil
}

// ExportProducts writes id,name,price,stock rows to path.
func (s *Service) ExportProducts(ctx context.Context, path string) (int, error) {
	count := 0
	err := fileutil.WriteAtomic(path, func(w *bufio.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"id", "name", "price", "stock"}); err != nil {
			return err
		}
		for p := range s.products.List(false) {
			row := []string{
				strconv.Itoa(int(p.ID)),
				p.Name,
				strconv.FormatFloat(p.Price, 'f', 2, 64),
				strconv.Itoa(int(p.Stock)),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
			count++
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Unable to export products", "path", path, "error", err)
		return 0, fmt.Errorf("%w: export products to %s: %w", serrors.ErrIOFailure, path, err)
	}
	s.logger.InfoContext(ctx, "Products exported", "path", path, "count", count)
	return count, nil
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:       product.ID,
		Name:     product.Name,
		Price:    product.Price,
		Stock:    product.Stock,
		LowStock: product.Low(),
	}
}
