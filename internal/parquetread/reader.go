package parquetread

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
)

const readBatchSize = 1024

// Reader wraps a parquet GenericReader for streaming rows of type T.
type Reader[T any] struct {
	file   *os.File
	pf     *parquet.File
	reader *parquet.GenericReader[T]
}

// Open opens a Parquet file and returns a streaming Reader.
func Open[T any](path string) (*Reader[T], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat parquet file: %w", err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	r := parquet.NewGenericReader[T](pf)
	return &Reader[T]{file: f, pf: pf, reader: r}, nil
}

// NumRows returns the total number of rows in the Parquet file.
func (r *Reader[T]) NumRows() int64 {
	return r.reader.NumRows()
}

// Read reads up to len(rows) records into the provided slice.
// Returns the number of rows read and io.EOF when done.
func (r *Reader[T]) Read(rows []T) (int, error) {
	n, err := r.reader.Read(rows)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("read parquet rows: %w", err)
	}
	return n, err
}

// FileSchema returns the schema as written in the file, for validating
// which columns the shard actually carries.
func (r *Reader[T]) FileSchema() *parquet.Schema {
	return r.pf.Schema()
}

// Close releases all resources.
func (r *Reader[T]) Close() error {
	if err := r.reader.Close(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

// ReadFile opens path, validates it carries the required columns, and reads
// every row.
func ReadFile[T any](path string, required []string) ([]T, error) {
	r, err := Open[T](path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	if err := ValidateSchema(r.FileSchema(), required); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	rows := make([]T, 0, r.NumRows())
	buf := make([]T, readBatchSize)
	for {
		n, readErr := r.Read(buf)
		rows = append(rows, buf[:n]...)
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("%s at row %d: %w", path, len(rows), readErr)
		}
	}
	return rows, nil
}

// Inspect reports the row count and file schema of a shard without binding a
// row type.
func Inspect(path string) (int64, *parquet.Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil, fmt.Errorf("open parquet file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return 0, nil, fmt.Errorf("stat parquet file: %w", err)
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return 0, nil, fmt.Errorf("open parquet: %w", err)
	}
	return pf.NumRows(), pf.Schema(), nil
}
