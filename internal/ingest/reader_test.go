package ingest

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestRowReader_ReadsRowsInOrder(t *testing.T) {
	src := strings.NewReader("ID,Type,Name\n1,Product,Widget\n2,Product,Gadget\n")
	rr, err := NewRowReader(src)
	if err != nil {
		t.Fatalf("NewRowReader() error = %v", err)
	}

	wantHeader := []string{"ID", "Type", "Name"}
	header := rr.Header()
	if len(header) != len(wantHeader) {
		t.Fatalf("Header() = %v, want %v", header, wantHeader)
	}
	for i := range wantHeader {
		if header[i] != wantHeader[i] {
			t.Errorf("Header()[%d] = %q, want %q", i, header[i], wantHeader[i])
		}
	}

	row, line, err := rr.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if line != 2 {
		t.Errorf("line = %d, want 2", line)
	}
	if row["ID"] != "1" || row["Type"] != "Product" || row["Name"] != "Widget" {
		t.Errorf("row = %v", row)
	}

	row, line, err = rr.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if line != 3 || row["Name"] != "Gadget" {
		t.Errorf("row = %v, line = %d", row, line)
	}

	if _, _, err = rr.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next() after last row error = %v, want io.EOF", err)
	}
}

func TestRowReader_StripsBOM(t *testing.T) {
	src := strings.NewReader("\uFEFFID,Type\n1,Product\n")
	rr, err := NewRowReader(src)
	if err != nil {
		t.Fatalf("NewRowReader() error = %v", err)
	}
	if got := rr.Header()[0]; got != "ID" {
		t.Errorf("Header()[0] = %q, want %q", got, "ID")
	}
}

func TestRowReader_ColumnCountMismatch(t *testing.T) {
	src := strings.NewReader("ID,Type,Name\n1,Product\n")
	rr, err := NewRowReader(src)
	if err != nil {
		t.Fatalf("NewRowReader() error = %v", err)
	}
	if _, _, err = rr.Next(); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("Next() error = %v, want ErrMalformedInput", err)
	}
}

func TestRowReader_EmptyStream(t *testing.T) {
	if _, err := NewRowReader(strings.NewReader("")); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("NewRowReader() error = %v, want ErrMalformedInput", err)
	}
}

func TestRowReader_QuotedFields(t *testing.T) {
	src := strings.NewReader("ID,Type,Name\n1,Product,\"Widget, Deluxe\"\n")
	rr, err := NewRowReader(src)
	if err != nil {
		t.Fatalf("NewRowReader() error = %v", err)
	}
	row, _, err := rr.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if row["Name"] != "Widget, Deluxe" {
		t.Errorf("Name = %q, want %q", row["Name"], "Widget, Deluxe")
	}
}
