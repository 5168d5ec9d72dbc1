package console

import (
	"errors"
	"fmt"
	"io"
	"strings"

	serrors "github.com/abgdnv/shopmanager/internal/errors"
	"github.com/abgdnv/shopmanager/internal/ledger"
	"github.com/abgdnv/shopmanager/internal/service"
)

// RenderProducts writes the product table.
func RenderProducts(w io.Writer, products []service.ProductDto) {
	fmt.Fprintf(w, "ID  Name                             Price    Stock  Low\n")
	fmt.Fprintf(w, "%s\n", strings.Repeat("-", 56))
	for _, p := range products {
		low := ""
		if p.LowStock {
			low = "YES"
		}
		fmt.Fprintf(w, "%-3d %-32s %7.2f %7d   %s\n", p.ID, p.Name, p.Price, p.Stock, low)
	}
}

// RenderReport writes the sales report rows and totals.
func RenderReport(w io.Writer, report *ledger.Report) {
	if report.NoSales {
		fmt.Fprintf(w, "No sales recorded yet.\n")
		return
	}
	fmt.Fprintf(w, "Sales since %s (%d day(s))\n", report.Since.Format(ledger.DateLayout), report.Days)
	fmt.Fprintf(w, "Date       ID  Name                           Qty  Price    Total\n")
	fmt.Fprintf(w, "%s\n", strings.Repeat("-", 64))
	for _, s := range report.Rows {
		fmt.Fprintf(w, "%-10s %-3d %-30s %4d %7.2f %8.2f\n",
			s.Date.Format(ledger.DateLayout), s.ProductID, s.ProductName, s.Quantity, s.UnitPrice, s.Total)
	}
	fmt.Fprintf(w, "%s\n", strings.Repeat("-", 64))
	fmt.Fprintf(w, "Total items sold: %d\nTotal revenue: %.2f\n", report.TotalQty, report.TotalRevenue)
}

// RenderReceipt writes the outcome of a recorded sale.
func RenderReceipt(w io.Writer, r *service.SaleReceipt) {
	fmt.Fprintf(w, "Sale recorded: %d x %s @ %.2f = %.2f\n", r.Quantity, r.ProductName, r.UnitPrice, r.Total)
	fmt.Fprintf(w, "Remaining stock: %d\n", r.RemainingStock)
	if r.LowStock {
		fmt.Fprintf(w, "Warning: stock of %s is low.\n", r.ProductName)
	}
	if r.LedgerErr != nil {
		fmt.Fprintf(w, "Warning: sale not written to the sales ledger: %v\n", r.LedgerErr)
	}
}

// Message maps an operation error to the line shown to the operator.
func Message(err error) string {
	switch {
	case errors.Is(err, serrors.ErrProductNotFound):
		return "Not found."
	case errors.Is(err, serrors.ErrCapacityExceeded):
		return "Product limit reached."
	case errors.Is(err, serrors.ErrInsufficientStock):
		return "Insufficient stock."
	case errors.Is(err, serrors.ErrInvalidInput):
		return "Invalid input."
	case errors.Is(err, serrors.ErrIOFailure):
		return fmt.Sprintf("Storage error: %v", err)
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
