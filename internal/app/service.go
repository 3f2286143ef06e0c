// Package service drives multi-page reads against the mahasiswa backend and
// feeds the exporters.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/kampus/internal/adapters/export"
	"github.com/okian/kampus/internal/domain/model"
	"github.com/okian/kampus/pkg/logger"
	"github.com/okian/kampus/pkg/metrics"
)

// Defaults used when no option overrides them.
const (
	defaultWorkers  = 4
	defaultPageSize = 100

	// maxPages bounds a single FetchAll.
	maxPages = 10_000
)

// MahasiswaLister fetches one page of students.
type MahasiswaLister interface {
	ListMahasiswa(ctx context.Context, q model.ListQuery) (*model.MahasiswaPage, error)
}

// Service fetches complete result sets and exports them.
type Service struct {
	lister MahasiswaLister

	// Configuration
	workers  int
	pageSize int

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWorkers bounds the number of pages fetched at once.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithPageSize sets the limit used for queries that leave it unset.
func WithPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// New constructs a Service reading through lister.
func New(lister MahasiswaLister, opts ...Option) *Service {
	s := &Service{
		lister:   lister,
		workers:  defaultWorkers,
		pageSize: defaultPageSize,
		logger:   logger.New(io.Discard, slog.LevelError),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// FetchAll returns every student matching q. Page 1 is read first to learn the
// page count; the remaining pages are fetched concurrently and reassembled in
// page order. q.Page is ignored. The first failing page aborts the fetch.
func (s *Service) FetchAll(ctx context.Context, q model.ListQuery) ([]model.Mahasiswa, error) {
	q.Page = 1
	if q.Limit <= 0 {
		q.Limit = s.pageSize
	}

	first, err := s.lister.ListMahasiswa(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fetch page 1: %w", err)
	}

	total, err := pageCount(first, q.Limit)
	if err != nil {
		return nil, err
	}
	if total <= 1 {
		return append([]model.Mahasiswa(nil), first.Data...), nil
	}

	s.logger.Debug(ctx, "fetching remaining pages",
		logger.Int("total_pages", total),
		logger.Int("workers", s.workers))

	pages := make([][]model.Mahasiswa, total)
	pages[0] = first.Data

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for p := 2; p <= total; p++ {
		pq := q
		pq.Page = p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			page, err := s.lister.ListMahasiswa(gctx, pq)
			if err != nil {
				return fmt.Errorf("fetch page %d: %w", pq.Page, err)
			}
			pages[pq.Page-1] = page.Data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	n := 0
	for _, p := range pages {
		n += len(p)
	}
	out := make([]model.Mahasiswa, 0, n)
	for _, p := range pages {
		out = append(out, p...)
	}
	return out, nil
}

// pageCount checks the first page's totalPages against its count and the
// page size actually served, which may be below limit when the backend clamps
// it. A smaller totalPages than expected is trusted.
func pageCount(first *model.MahasiswaPage, limit int) (int, error) {
	total := first.TotalPages
	if total <= 1 {
		return total, nil
	}

	size := limit
	if n := len(first.Data); n < size {
		size = n
	}
	want := 0
	if size > 0 && first.Count > 0 {
		want = first.Count / size
		if first.Count%size != 0 {
			want++
		}
	}
	if total > want || total > maxPages {
		return 0, fmt.Errorf("%w: totalPages %d for count %d at page size %d",
			ErrInconsistentPage, total, first.Count, size)
	}
	return total, nil
}

// Export fetches every student matching q and writes them to w in format f.
// It returns the number of records written.
func (s *Service) Export(ctx context.Context, q model.ListQuery, f export.Format, w io.Writer) (int, error) {
	start := time.Now()

	data, err := s.FetchAll(ctx, q)
	if err != nil {
		return 0, err
	}
	if err := export.Write(w, f, data); err != nil {
		return 0, fmt.Errorf("write %s: %w", f, err)
	}

	elapsed := time.Since(start)
	metrics.RecordExport(string(f), len(data), float64(elapsed.Milliseconds()))
	s.logger.Info(ctx, "export finished",
		logger.String("format", string(f)),
		logger.Int("records", len(data)),
		logger.Duration("elapsed", elapsed))

	return len(data), nil
}
