// Package app contains the application setup for the shop manager.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/abgdnv/shopmanager/internal/config"
	"github.com/abgdnv/shopmanager/internal/ledger"
	"github.com/abgdnv/shopmanager/internal/service"
	"github.com/abgdnv/shopmanager/internal/store"
	"github.com/abgdnv/shopmanager/internal/transport/console"
)

type Dependencies struct {
	ShopService service.ShopService
	Products    store.ProductStore
	Sales       *ledger.Ledger
	Config      *config.Config
	Logger      *slog.Logger
}

// SetupDependencies loads the product file and prepares the sales ledger.
// A ledger that cannot be created is logged and retried on the first sale.
func SetupDependencies(cfg *config.Config, logger *slog.Logger, opts ...ledger.Option) (*Dependencies, error) {
	products := store.NewFileStore(cfg.Storage.ProductsFile, cfg.Inventory.Capacity, logger)
	if err := products.Load(); err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	sales := ledger.New(cfg.Storage.SalesFile, logger, opts...)
	if err := sales.EnsureHeader(); err != nil {
		logger.Warn("Sales ledger not ready", "path", cfg.Storage.SalesFile, "error", err)
	}

	return &Dependencies{
		ShopService: service.NewService(products, sales, logger),
		Products:    products,
		Sales:       sales,
		Config:      cfg,
		Logger:      logger,
	}, nil
}

// SetupConsole creates the interactive menu over in and out.
func SetupConsole(deps *Dependencies, in io.Reader, out io.Writer) *console.Console {
	return console.New(deps.ShopService, in, out, deps.Config.Storage.ExportFile, deps.Logger)
}

// Shutdown writes the product table if it holds unsaved changes.
// An untouched table is never written, so a file that failed to load stays as it is.
func Shutdown(ctx context.Context, deps *Dependencies) error {
	if !deps.Products.Dirty() {
		deps.Logger.DebugContext(ctx, "No unsaved product changes on shutdown")
		return nil
	}
	if err := deps.Products.Save(); err != nil {
		deps.Logger.ErrorContext(ctx, "Unable to save products on shutdown", "error", err)
		return fmt.Errorf("failed to save products on shutdown: %w", err)
	}
	deps.Logger.DebugContext(ctx, "Products saved on shutdown", "count", deps.Products.Len())
	return nil
}
