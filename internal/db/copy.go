package db

import (
	"github.com/jackc/pgx/v5"

	"github.com/gyeh/msarisk/internal/model"
)

// ChannelSource implements pgx.CopyFromSource by reading rows from a channel.
// This provides natural backpressure between the Parquet reader and COPY
// writer.
type ChannelSource struct {
	ch      <-chan model.CopyRow
	current model.CopyRow
	n       int64
}

// NewChannelSource creates a CopyFromSource backed by a channel.
func NewChannelSource(ch <-chan model.CopyRow) *ChannelSource {
	return &ChannelSource{ch: ch}
}

// Next advances to the next row. Returns false when the channel is closed.
func (s *ChannelSource) Next() bool {
	row, ok := <-s.ch
	if !ok {
		return false
	}
	s.current = row
	s.n++
	return true
}

// Values returns the current row's values in COPY column order.
func (s *ChannelSource) Values() ([]any, error) {
	return s.current.CopyValues(), nil
}

// Err always returns nil; producer errors are reported out of band.
func (s *ChannelSource) Err() error {
	return nil
}

// Count is the number of rows handed to COPY so far.
func (s *ChannelSource) Count() int64 {
	return s.n
}

var _ pgx.CopyFromSource = (*ChannelSource)(nil)
