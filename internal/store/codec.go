package store

import (
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"
)

// NameLength is the size of the on-disk name buffer, including the terminating NUL.
const NameLength = 64

// MaxNameBytes is the longest name that survives a save/load round trip.
const MaxNameBytes = NameLength - 1

// record is the fixed 88-byte on-disk layout of a product.
// The padding fields keep files written by the legacy shop manager readable.
type record struct {
	ID    int32
	Name  [NameLength]byte
	_     [4]byte
	Price float64
	Stock int32
	_     [4]byte
}

var byteOrder = binary.LittleEndian

func toRecord(p Product) record {
	r := record{ID: p.ID, Price: p.Price, Stock: p.Stock}
	copy(r.Name[:], truncateName(p.Name))
	return r
}

func fromRecord(r record) Product {
	n := 0
	for n < len(r.Name) && r.Name[n] != 0 {
		n++
	}
	return Product{ID: r.ID, Name: string(r.Name[:n]), Price: r.Price, Stock: r.Stock}
}

// truncateName cuts name to MaxNameBytes without splitting a UTF-8 sequence.
func truncateName(name string) string {
	if len(name) <= MaxNameBytes {
		return name
	}
	cut := MaxNameBytes
	for cut > 0 && !utf8.RuneStart(name[cut]) {
		cut--
	}
	return name[:cut]
}

// encodeProducts writes the count header followed by one record per product.
func encodeProducts(w io.Writer, products []Product) error {
	if err := binary.Write(w, byteOrder, int32(len(products))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	records := make([]record, len(products))
	for i, p := range products {
		records[i] = toRecord(p)
	}
	if err := binary.Write(w, byteOrder, records); err != nil {
		return fmt.Errorf("write records: %w", err)
	}
	return nil
}

// decodeProducts reads a count header and that many records.
// A count outside [0, capacity] is reported as corrupt.
func decodeProducts(r io.Reader, capacity int) ([]Product, error) {
	var count int32
	if err := binary.Read(r, byteOrder, &count); err != nil {
		return nil, fmt.Errorf("read count: %w", err)
	}
	if count < 0 || int(count) > capacity {
		return nil, fmt.Errorf("corrupt product file: count %d outside [0, %d]", count, capacity)
	}
	records := make([]record, count)
	if err := binary.Read(r, byteOrder, records); err != nil {
		return nil, fmt.Errorf("read %d records: %w", count, err)
	}
	products := make([]Product, count)
	for i, rec := range records {
		products[i] = fromRecord(rec)
	}
	return products, nil
}
