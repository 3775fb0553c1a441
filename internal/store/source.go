package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/gyeh/msarisk/internal/model"
	"github.com/gyeh/msarisk/internal/parquetread"
)

// DefaultWorkers bounds concurrent shard reads within one dataset.
const DefaultWorkers = 4

// Source retrieves the four raw tables. Implementations must return an
// error rather than a partial table.
type Source interface {
	Name() string
	Services(ctx context.Context) ([]model.ServiceRow, error)
	Members(ctx context.Context) ([]model.MemberRow, error)
	Enrollment(ctx context.Context) ([]model.EnrollmentRow, error)
	Providers(ctx context.Context) ([]model.ProviderRow, error)
}

// FileSource reads Parquet shards laid out as <Root>/<dataset dir>/*.parquet.
type FileSource struct {
	Root    string
	Dirs    map[string]string // dataset name -> directory, overrides Dataset.Dir
	Workers int
}

// NewFileSource returns a FileSource with default directories.
func NewFileSource(root string, workers int) *FileSource {
	return &FileSource{Root: root, Workers: workers}
}

func (s *FileSource) Name() string { return "files:" + s.Root }

// Shards lists the shard paths of a dataset, sorted. A dataset with no
// shards is an error.
func (s *FileSource) Shards(ds model.Dataset) ([]string, error) {
	dir := ds.Dir
	if d, ok := s.Dirs[ds.Name]; ok && d != "" {
		dir = d
	}
	pattern := filepath.Join(s.Root, dir, "*.parquet")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no parquet shards match %s", pattern)
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *FileSource) Services(ctx context.Context) ([]model.ServiceRow, error) {
	return readDataset[model.ServiceRow](ctx, s, model.Services)
}

func (s *FileSource) Members(ctx context.Context) ([]model.MemberRow, error) {
	return readDataset[model.MemberRow](ctx, s, model.Members)
}

func (s *FileSource) Enrollment(ctx context.Context) ([]model.EnrollmentRow, error) {
	return readDataset[model.EnrollmentRow](ctx, s, model.Enrollment)
}

func (s *FileSource) Providers(ctx context.Context) ([]model.ProviderRow, error) {
	return readDataset[model.ProviderRow](ctx, s, model.Providers)
}

func readDataset[T any](ctx context.Context, s *FileSource, ds model.Dataset) ([]T, error) {
	paths, err := s.Shards(ds)
	if err != nil {
		return nil, err
	}
	return ReadShards[T](ctx, paths, ds.Required, s.Workers)
}

// ReadShards reads every shard with at most workers concurrent readers and
// concatenates the rows. Shard order in the result is not significant.
func ReadShards[T any](ctx context.Context, paths []string, required []string, workers int) ([]T, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	parts := make([][]T, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows, err := parquetread.ReadFile[T](path, required)
			if err != nil {
				return err
			}
			parts[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, p := range parts {
		total += len(p)
	}
	rows := make([]T, 0, total)
	for _, p := range parts {
		rows = append(rows, p...)
	}
	return rows, nil
}
