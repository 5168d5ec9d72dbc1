// Package ledger provides the append-only CSV sales ledger and the sales report built from it.
package ledger

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	serrors "github.com/abgdnv/shopmanager/internal/errors"
)

// Header is the first line of every ledger file.
const Header = "date,product_id,product_name,qty,price,total"

// DateLayout is the calendar date format of the date column.
const DateLayout = "2006-01-02"

const fieldCount = 6

// Sale is one ledger row. Name and price are snapshots taken at sale time.
type Sale struct {
	Date        time.Time
	ProductID   int32
	ProductName string
	Quantity    int32
	UnitPrice   float64
	Total       float64
}

// Report aggregates the sales of the last Days calendar days, today included.
type Report struct {
	Days         int
	Since        time.Time
	Rows         []Sale
	TotalQty     int64
	TotalRevenue float64
	// NoSales is set when the ledger file does not exist yet.
	NoSales bool
}

// Ledger owns the sales CSV file. Every call opens and closes the file.
type Ledger struct {
	path   string
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the source of "today".
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// New creates a Ledger backed by path.
func New(path string, logger *slog.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		path:   path,
		now:    time.Now,
		logger: logger.With("component", "sales_ledger"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the ledger file path.
func (l *Ledger) Path() string {
	return l.path
}

// EnsureHeader creates the ledger file with its header line if it does not exist.
func (l *Ledger) EnsureHeader() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil
		}
		l.logger.Error("Unable to create sales ledger", "path", l.path, "error", err)
		return fmt.Errorf("%w: create sales ledger: %w", serrors.ErrIOFailure, err)
	}
	_, err = f.WriteString(Header + "\n")
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		l.logger.Error("Unable to write sales ledger header", "path", l.path, "error", err)
		return fmt.Errorf("%w: write sales ledger header: %w", serrors.ErrIOFailure, err)
	}
	l.logger.Info("Sales ledger created", "path", l.path)
	return nil
}

// Append writes one sale dated today and returns it.
func (l *Ledger) Append(productID int32, productName string, qty int32, unitPrice float64) (*Sale, error) {
	if err := l.EnsureHeader(); err != nil {
		return nil, err
	}
	sale := Sale{
		Date:        startOfDay(l.now()),
		ProductID:   productID,
		ProductName: productName,
		Quantity:    qty,
		UnitPrice:   unitPrice,
		Total:       float64(qty) * unitPrice,
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		l.logger.Error("Unable to open sales ledger for append", "path", l.path, "error", err)
		return nil, fmt.Errorf("%w: append sale: %w", serrors.ErrIOFailure, err)
	}
	_, err = f.WriteString(FormatLine(sale))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		l.logger.Error("Unable to append sale", "path", l.path, "error", err)
		return nil, fmt.Errorf("%w: append sale: %w", serrors.ErrIOFailure, err)
	}
	l.logger.Debug("Sale appended", "product_id", productID, "qty", qty, "total", sale.Total)
	return &sale, nil
}

// GenerateReport sums the sales dated on or after today-(days-1).
func (l *Ledger) GenerateReport(days int) (*Report, error) {
	if days < 1 {
		return nil, fmt.Errorf("%w: days must be at least 1, got %d", serrors.ErrInvalidInput, days)
	}
	since := startOfDay(l.now()).AddDate(0, 0, -(days - 1))
	report := &Report{Days: days, Since: since, Rows: make([]Sale, 0)}

	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			report.NoSales = true
			return report, nil
		}
		l.logger.Error("Unable to open sales ledger", "path", l.path, "error", err)
		return nil, fmt.Errorf("%w: open sales ledger: %w", serrors.ErrIOFailure, err)
	}
	defer f.Close()

	for sale := range l.scan(f) {
		if sale.Date.Before(since) {
			continue
		}
		report.Rows = append(report.Rows, sale)
		report.TotalQty += int64(sale.Quantity)
		report.TotalRevenue += sale.Total
	}
	return report, nil
}

// scan yields the well-formed rows of r after its first line. Malformed rows are skipped.
func (l *Ledger) scan(r io.Reader) iter.Seq[Sale] {
	return func(yield func(Sale) bool) {
		scanner := bufio.NewScanner(r)
		loc := l.now().Location()
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			if lineNo == 1 {
				continue
			}
			sale, err := ParseLine(scanner.Text(), loc)
			if err != nil {
				l.logger.Debug("Skipping malformed sales row", "line", lineNo, "error", err)
				continue
			}
			if !yield(*sale) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			l.logger.Warn("Stopped reading sales ledger", "path", l.path, "line", lineNo, "error", err)
		}
	}
}

// FormatLine renders a sale as a ledger line, newline included.
// The name is always quoted; embedded quotes are doubled.
func FormatLine(s Sale) string {
	return fmt.Sprintf("%s,%d,%s,%d,%.2f,%.2f\n",
		s.Date.Format(DateLayout),
		s.ProductID,
		quote(s.ProductName),
		s.Quantity,
		s.UnitPrice,
		s.Total)
}

// ParseLine parses one ledger line with the date,int,"name",int,float,float grammar.
// The name must be quoted and non-empty. The date is interpreted as midnight in loc.
func ParseLine(line string, loc *time.Location) (*Sale, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = fieldCount
	r.LazyQuotes = true
	fields, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	// date and product_id never contain commas, so the third split is the raw name column
	if raw := strings.SplitN(line, ",", 3); !strings.HasPrefix(raw[2], `"`) {
		return nil, errors.New("parse product_name: not quoted")
	}
	if fields[2] == "" {
		return nil, errors.New("parse product_name: empty")
	}

	date, err := time.ParseInLocation(DateLayout, strings.TrimSpace(fields[0]), loc)
	if err != nil {
		return nil, fmt.Errorf("parse date: %w", err)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("parse product_id: %w", err)
	}
	qty, err := strconv.ParseInt(strings.TrimSpace(fields[3]), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("parse qty: %w", err)
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(fields[4]), 64)
	if err != nil {
		return nil, fmt.Errorf("parse price: %w", err)
	}
	total, err := strconv.ParseFloat(strings.TrimSpace(fields[5]), 64)
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	return &Sale{
		Date:        date,
		ProductID:   int32(id),
		ProductName: fields[2],
		Quantity:    int32(qty),
		UnitPrice:   price,
		Total:       total,
	}, nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
