package console

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	serrors "github.com/abgdnv/shopmanager/internal/errors"
	"github.com/abgdnv/shopmanager/internal/ledger"
	"github.com/abgdnv/shopmanager/internal/service"
	"github.com/abgdnv/shopmanager/internal/store"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedNow = func() time.Time {
	return time.Date(2026, time.October, 17, 15, 4, 5, 0, time.UTC)
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func newTestService(t *testing.T) (*service.Service, string) {
	dir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)
	products := store.NewFileStore(filepath.Join(dir, "products.dat"), store.DefaultCapacity, logger)
	require.NoError(t, products.Load())
	sales := ledger.New(filepath.Join(dir, "sales.csv"), logger, ledger.WithClock(fixedNow))
	return service.NewService(products, sales, logger), dir
}

func session(lines ...string) io.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

func Test_Console_Session(t *testing.T) {
	// given
	svc, dir := newTestService(t)
	var out bytes.Buffer
	input := session(
		"1",
		"2", "Pen", "1.5", "10",
		"2", "Notebook", "3.25", "4",
		"1",
		"5", "1", "3",
		"5", "2", "9",
		"6",
		"7", "1",
		"4", "9",
		"9",
	)
	c := New(svc, input, &out, filepath.Join(dir, "export.csv"), slog.New(slog.DiscardHandler))

	// when
	err := c.Run(context.Background())

	// then
	require.NoError(t, err)
	newGoldie(t).Assert(t, "session", out.Bytes())
}

func Test_Console_Update(t *testing.T) {
	// given
	svc, dir := newTestService(t)
	_, err := svc.Create(context.Background(), service.ProductCreateDto{Name: "Pen", Price: 1.5, Stock: 10})
	require.NoError(t, err)
	var out bytes.Buffer
	input := session(
		"3", "1", "", "2.75", "",
		"3", "1", "Blue Pen", "", "-1",
		"3", "abc",
		"9",
	)
	c := New(svc, input, &out, filepath.Join(dir, "export.csv"), slog.New(slog.DiscardHandler))

	// when
	err = c.Run(context.Background())

	// then
	require.NoError(t, err)
	p, err := svc.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Pen", p.Name)
	assert.Equal(t, 2.75, p.Price)
	assert.Equal(t, int32(10), p.Stock)
	assert.Equal(t, 1, strings.Count(out.String(), "Updated."))
	assert.Equal(t, 2, strings.Count(out.String(), "Invalid input."))
	assert.Contains(t, out.String(), "Price [1.50]: ")
	assert.Contains(t, out.String(), "Name [Pen]: ")
}

func Test_Console_Export(t *testing.T) {
	// given
	svc, dir := newTestService(t)
	_, err := svc.Create(context.Background(), service.ProductCreateDto{Name: "Pen", Price: 1.5, Stock: 10})
	require.NoError(t, err)
	exportPath := filepath.Join(dir, "export.csv")
	var out bytes.Buffer
	c := New(svc, session("8", "9"), &out, exportPath, slog.New(slog.DiscardHandler))

	// when
	err = c.Run(context.Background())

	// then
	require.NoError(t, err)
	assert.Contains(t, out.String(), fmt.Sprintf("Exported 1 products to %s.\n", exportPath))
	assert.FileExists(t, exportPath)
}

func Test_Console_InvalidInput(t *testing.T) {
	testCases := []struct {
		name     string
		input    []string
		expected string
	}{
		{name: "unknown option", input: []string{"42"}, expected: "Invalid option."},
		{name: "non numeric option", input: []string{"x"}, expected: "Invalid option."},
		{name: "bad price", input: []string{"2", "Pen", "cheap", "1"}, expected: "Invalid input."},
		{name: "negative stock", input: []string{"2", "Pen", "1", "-1"}, expected: "Invalid input."},
		{name: "empty name", input: []string{"2", "", "1", "1"}, expected: "Invalid input."},
		{name: "zero quantity", input: []string{"2", "Pen", "1", "1", "5", "1", "0"}, expected: "Invalid input."},
		{name: "unknown product sale", input: []string{"5", "7"}, expected: "Not found."},
		{name: "zero days", input: []string{"7", "0"}, expected: "Invalid input."},
		{name: "report without ledger", input: []string{"7", "3"}, expected: "No sales recorded yet."},
		{name: "empty low stock list", input: []string{"6"}, expected: "No low stock products."},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			svc, dir := newTestService(t)
			var out bytes.Buffer
			c := New(svc, session(append(tc.input, "9")...), &out, filepath.Join(dir, "export.csv"), slog.New(slog.DiscardHandler))
			// when
			err := c.Run(context.Background())
			// then
			require.NoError(t, err)
			assert.Contains(t, out.String(), tc.expected)
		})
	}
}

func Test_Console_EndOfInput(t *testing.T) {
	// given
	svc, dir := newTestService(t)
	var out bytes.Buffer
	c := New(svc, strings.NewReader("2\nPen\n"), &out, filepath.Join(dir, "export.csv"), slog.New(slog.DiscardHandler))

	// when
	err := c.Run(context.Background())

	// then
	require.NoError(t, err)
	all, err := svc.FindAll(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func Test_Console_Cancelled(t *testing.T) {
	// given
	svc, dir := newTestService(t)
	pr, pw := io.Pipe()
	defer pw.Close()
	ctx, cancel := context.WithCancel(context.Background())
	c := New(svc, pr, io.Discard, filepath.Join(dir, "export.csv"), slog.New(slog.DiscardHandler))
	errCh := make(chan error, 1)

	// when
	go func() {
		errCh <- c.Run(ctx)
	}()
	cancel()

	// then
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("console did not stop after cancellation")
	}
}

func Test_Message(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "not found", err: fmt.Errorf("wrap: %w", serrors.ErrProductNotFound), expected: "Not found."},
		{name: "capacity", err: serrors.ErrCapacityExceeded, expected: "Product limit reached."},
		{name: "insufficient stock", err: serrors.ErrInsufficientStock, expected: "Insufficient stock."},
		{name: "invalid input", err: serrors.ErrInvalidInput, expected: "Invalid input."},
		{name: "io failure", err: fmt.Errorf("%w: disk full", serrors.ErrIOFailure), expected: "Storage error: i/o failure: disk full"},
		{name: "other", err: errors.New("boom"), expected: "Error: boom"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Message(tc.err))
		})
	}
}
