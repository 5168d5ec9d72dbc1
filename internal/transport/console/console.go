// Package console implements the interactive numbered menu of the shop manager.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	serrors "github.com/abgdnv/shopmanager/internal/errors"
	"github.com/abgdnv/shopmanager/internal/service"
)

const menu = `
=== Shop Manager ===
1. List all products
2. Add product
3. Update product
4. Delete product
5. Record sale
6. List low stock products
7. Sales report
8. Export products to CSV
9. Exit
Choose an option: `

// errEOF ends the menu loop when the input is exhausted.
var errEOF = errors.New("end of input")

// Console runs the menu over a line-oriented input and a text output.
type Console struct {
	service    service.ShopService
	in         io.Reader
	out        io.Writer
	exportPath string
	logger     *slog.Logger

	lines chan string
	done  chan struct{}
}

// New creates a Console. exportPath is the target of the CSV export option.
func New(svc service.ShopService, in io.Reader, out io.Writer, exportPath string, logger *slog.Logger) *Console {
	return &Console{
		service:    svc,
		in:         in,
		out:        out,
		exportPath: exportPath,
		logger:     logger.With("component", "console"),
	}
}

// Run shows the menu until the operator exits, the input ends or ctx is cancelled.
func (c *Console) Run(ctx context.Context) error {
	c.lines = make(chan string)
	c.done = make(chan struct{})
	defer close(c.done)
	go c.readLines()

	for {
		c.printf("%s", menu)
		line, err := c.readLine(ctx)
		if err != nil {
			return c.finish(err)
		}
		choice, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			c.println("Invalid option.")
			continue
		}
		if choice == 9 {
			c.println("Goodbye.")
			return nil
		}
		if err := c.dispatch(ctx, choice); err != nil {
			return c.finish(err)
		}
	}
}

func (c *Console) finish(err error) error {
	if errors.Is(err, errEOF) {
		c.println("")
		return nil
	}
	return err
}

func (c *Console) dispatch(ctx context.Context, choice int) error {
	switch choice {
	case 1:
		return c.listProducts(ctx, false)
	case 2:
		return c.addProduct(ctx)
	case 3:
		return c.updateProduct(ctx)
	case 4:
		return c.deleteProduct(ctx)
	case 5:
		return c.recordSale(ctx)
	case 6:
		return c.listProducts(ctx, true)
	case 7:
		return c.salesReport(ctx)
	case 8:
		return c.exportProducts(ctx)
	default:
		c.println("Invalid option.")
		return nil
	}
}

func (c *Console) listProducts(ctx context.Context, lowStockOnly bool) error {
	products, err := c.service.FindAll(ctx, lowStockOnly)
	if err != nil {
		c.report(ctx, err)
		return nil
	}
	if len(products) == 0 {
		if lowStockOnly {
			c.println("No low stock products.")
		} else {
			c.println("No products.")
		}
		return nil
	}
	RenderProducts(c.out, products)
	return nil
}

func (c *Console) addProduct(ctx context.Context) error {
	name, err := c.prompt(ctx, "Name: ")
	if err != nil {
		return err
	}
	priceText, err := c.prompt(ctx, "Price: ")
	if err != nil {
		return err
	}
	stockText, err := c.prompt(ctx, "Stock: ")
	if err != nil {
		return err
	}
	price, priceErr := parsePrice(priceText)
	stock, stockErr := parseCount(stockText)
	if priceErr != nil || stockErr != nil {
		c.println("Invalid input.")
		return nil
	}

	product, err := c.service.Create(ctx, service.ProductCreateDto{Name: name, Price: price, Stock: stock})
	if err != nil {
		c.report(ctx, err)
		return nil
	}
	c.printf("Added product %d.\n", product.ID)
	return nil
}

func (c *Console) updateProduct(ctx context.Context) error {
	id, ok, err := c.promptID(ctx, "Product ID to update: ")
	if err != nil || !ok {
		return err
	}
	current, err := c.service.FindByID(ctx, id)
	if err != nil {
		c.report(ctx, err)
		return nil
	}

	var patch service.ProductUpdateDto
	name, err := c.prompt(ctx, fmt.Sprintf("Name [%s]: ", current.Name))
	if err != nil {
		return err
	}
	if name != "" {
		patch.Name = &name
	}
	priceText, err := c.prompt(ctx, fmt.Sprintf("Price [%.2f]: ", current.Price))
	if err != nil {
		return err
	}
	if priceText != "" {
		price, err := parsePrice(priceText)
		if err != nil {
			c.println("Invalid input.")
			return nil
		}
		patch.Price = &price
	}
	stockText, err := c.prompt(ctx, fmt.Sprintf("Stock [%d]: ", current.Stock))
	if err != nil {
		return err
	}
	if stockText != "" {
		stock, err := parseCount(stockText)
		if err != nil {
			c.println("Invalid input.")
			return nil
		}
		patch.Stock = &stock
	}

	if _, err := c.service.Update(ctx, id, patch); err != nil {
		c.report(ctx, err)
		return nil
	}
	c.println("Updated.")
	return nil
}

func (c *Console) deleteProduct(ctx context.Context) error {
	id, ok, err := c.promptID(ctx, "Product ID to delete: ")
	if err != nil || !ok {
		return err
	}
	if err := c.service.DeleteByID(ctx, id); err != nil {
		c.report(ctx, err)
		return nil
	}
	c.println("Deleted.")
	return nil
}

func (c *Console) recordSale(ctx context.Context) error {
	id, ok, err := c.promptID(ctx, "Product ID: ")
	if err != nil || !ok {
		return err
	}
	product, err := c.service.FindByID(ctx, id)
	if err != nil {
		c.report(ctx, err)
		return nil
	}
	qtyText, err := c.prompt(ctx, "Quantity: ")
	if err != nil {
		return err
	}
	qty, err := parseCount(qtyText)
	if err != nil || qty <= 0 {
		c.println("Invalid input.")
		return nil
	}

	receipt, err := c.service.RecordSale(ctx, id, qty)
	if receipt != nil {
		RenderReceipt(c.out, receipt)
	}
	if err != nil {
		if errors.Is(err, serrors.ErrInsufficientStock) {
			c.printf("Insufficient stock (%d available).\n", product.Stock)
			return nil
		}
		c.report(ctx, err)
	}
	return nil
}

func (c *Console) salesReport(ctx context.Context) error {
	daysText, err := c.prompt(ctx, "Number of days (1 = today): ")
	if err != nil {
		return err
	}
	days, err := strconv.Atoi(daysText)
	if err != nil || days < 1 {
		c.println("Invalid input.")
		return nil
	}
	report, err := c.service.SalesReport(ctx, days)
	if err != nil {
		c.report(ctx, err)
		return nil
	}
	RenderReport(c.out, report)
	return nil
}

func (c *Console) exportProducts(ctx context.Context) error {
	count, err := c.service.ExportProducts(ctx, c.exportPath)
	if err != nil {
		c.report(ctx, err)
		return nil
	}
	c.printf("Exported %d products to %s.\n", count, c.exportPath)
	return nil
}

// report prints the operator message for err and logs it.
func (c *Console) report(ctx context.Context, err error) {
	c.logger.WarnContext(ctx, "Operation failed", "error", err)
	c.println(Message(err))
}

// promptID asks for a product id. ok is false when the answer is not a number.
func (c *Console) promptID(ctx context.Context, label string) (int32, bool, error) {
	text, err := c.prompt(ctx, label)
	if err != nil {
		return 0, false, err
	}
	id, err := strconv.ParseInt(text, 10, 32)
	if err != nil {
		c.println("Invalid input.")
		return 0, false, nil
	}
	return int32(id), true, nil
}

func (c *Console) prompt(ctx context.Context, label string) (string, error) {
	c.printf("%s", label)
	line, err := c.readLine(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *Console) readLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-c.lines:
		if !ok {
			return "", errEOF
		}
		return line, nil
	}
}

// readLines feeds c.lines until the input ends or Run returns.
func (c *Console) readLines() {
	defer close(c.lines)
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		select {
		case c.lines <- scanner.Text():
		case <-c.done:
			return
		}
	}
	if err := scanner.Err(); err != nil {
		c.logger.Warn("Stopped reading input", "error", err)
	}
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

func parsePrice(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func parseCount(s string) (int32, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	return int32(n), err
}
