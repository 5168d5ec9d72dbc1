package cli

import (
	"errors"
	"fmt"
	"strconv"

	serrors "github.com/abgdnv/shopmanager/internal/errors"
	"github.com/abgdnv/shopmanager/internal/service"
	"github.com/abgdnv/shopmanager/internal/transport/console"
	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var low bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := rootOpts.deps.ShopService.FindAll(cmd.Context(), low)
			if err != nil {
				return err
			}
			if len(products) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No products.")
				return nil
			}
			console.RenderProducts(cmd.OutOrStdout(), products)
			return nil
		},
	}
	cmd.Flags().BoolVar(&low, "low", false, "only products with low stock")
	return cmd
}

// NewFindCommand creates the find command.
func NewFindCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "find <name>",
		Short: "Show the first product with the given name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			product, err := rootOpts.deps.ShopService.FindByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			console.RenderProducts(cmd.OutOrStdout(), []service.ProductDto{*product})
			return nil
		},
	}
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	var dto service.ProductCreateDto
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			product, err := rootOpts.deps.ShopService.Create(cmd.Context(), dto)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added product %d.\n", product.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&dto.Name, "name", "", "product name")
	cmd.Flags().Float64Var(&dto.Price, "price", 0, "unit price")
	cmd.Flags().Int32Var(&dto.Stock, "stock", 0, "units in stock")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

// NewUpdateCommand creates the update command. Only the given flags are changed.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		name  string
		price float64
		stock int32
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var dto service.ProductUpdateDto
			if cmd.Flags().Changed("name") {
				dto.Name = &name
			}
			if cmd.Flags().Changed("price") {
				dto.Price = &price
			}
			if cmd.Flags().Changed("stock") {
				dto.Stock = &stock
			}
			if _, err := rootOpts.deps.ShopService.Update(cmd.Context(), id, dto); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated product %d.\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new product name")
	cmd.Flags().Float64Var(&price, "price", 0, "new unit price")
	cmd.Flags().Int32Var(&stock, "stock", 0, "new stock level")
	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := rootOpts.deps.ShopService.DeleteByID(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted product %d.\n", id)
			return nil
		},
	}
}

// NewSellCommand creates the sell command.
func NewSellCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sell <id> <qty>",
		Short: "Record a sale",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			qty, err := strconv.ParseInt(args[1], 10, 32)
			if err != nil {
				return fmt.Errorf("%w: quantity %q", serrors.ErrInvalidInput, args[1])
			}
			receipt, err := rootOpts.deps.ShopService.RecordSale(cmd.Context(), id, int32(qty))
			if receipt != nil {
				console.RenderReceipt(cmd.OutOrStdout(), receipt)
			}
			return err
		},
	}
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Report the sales of the last days, today included",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := rootOpts.deps.ShopService.SalesReport(cmd.Context(), days)
			if err != nil {
				return err
			}
			console.RenderReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", 1, "number of calendar days, 1 for today")
	return cmd
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the product table as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := out
			if path == "" {
				path = rootOpts.deps.Config.Storage.ExportFile
			}
			count, err := rootOpts.deps.ShopService.ExportProducts(cmd.Context(), path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d products to %s.\n", count, path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (overrides storage.export)")
	return cmd
}

// ErrorMessage returns the line to print for an error returned by a command.
// Refusals carry the underlying detail since there is no prompt to retry.
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, serrors.ErrInsufficientStock),
		errors.Is(err, serrors.ErrInvalidInput),
		errors.Is(err, serrors.ErrProductNotFound),
		errors.Is(err, serrors.ErrCapacityExceeded):
		return fmt.Sprintf("%s (%v)", console.Message(err), err)
	default:
		return console.Message(err)
	}
}

func parseID(arg string) (int32, error) {
	id, err := strconv.ParseInt(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: product id %q", serrors.ErrInvalidInput, arg)
	}
	return int32(id), nil
}
