package csvingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goliatone/go-formflow/internal/csvparse"
	"github.com/goliatone/go-formflow/pkg/logging"
	"github.com/goliatone/go-formflow/pkg/model"
)

// DefaultMaxBytes caps how much of a file Ingest reads.
const DefaultMaxBytes int64 = 32 << 20

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger attaches a logger for ingestion outcomes.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logging.OrDiscard(logger)
	}
}

// WithMaxBytes overrides the read limit. Files larger than n fail with
// ErrReadFailure. Non-positive values are ignored.
func WithMaxBytes(n int64) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxBytes = n
		}
	}
}

// Pipeline ingests CSV files. It holds no per-file state and is safe for
// concurrent use.
type Pipeline struct {
	logger   *slog.Logger
	maxBytes int64
}

// New constructs a Pipeline.
func New(options ...Option) *Pipeline {
	p := &Pipeline{
		logger:   logging.Discard(),
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(p)
	}
	return p
}

// Ingest reads file completely and returns one row per data record. Rows share
// the header-derived key slice. Failures are *IngestionError values.
func (p *Pipeline) Ingest(ctx context.Context, file model.FileHandle) ([]model.CsvRow, error) {
	if ctx == nil {
		return nil, errors.New("csvingest: context is required")
	}
	if file == nil {
		return nil, readFailure("", errors.New("no file selected"))
	}
	name := file.Name()

	text, err := p.readText(ctx, file)
	if err != nil {
		p.logger.Debug("csv read failed", slog.String("file", name), slog.Any("error", err))
		return nil, readFailure(name, err)
	}

	parsed, err := csvparse.Parse(text)
	if err != nil {
		p.logger.Debug("csv parse failed", slog.String("file", name), slog.Any("error", err))
		return nil, readFailure(name, fmt.Errorf("parse: %w", err))
	}
	if len(parsed.Rows) == 0 {
		p.logger.Debug("csv produced no rows", slog.String("file", name))
		return nil, emptyResult(name)
	}
	if parsed.Truncated > 0 {
		p.logger.Debug("csv rows carried surplus cells",
			slog.String("file", name),
			slog.Int("rows", parsed.Truncated),
		)
	}

	rows := make([]model.CsvRow, 0, len(parsed.Rows))
	for _, cells := range parsed.Rows {
		values := make(map[string]any, len(parsed.Header))
		for i, key := range parsed.Header {
			values[key] = cells[i]
		}
		rows = append(rows, model.NewCsvRow(parsed.Header, values))
	}

	p.logger.Debug("csv ingested",
		slog.String("file", name),
		slog.Int("rows", len(rows)),
		slog.Int("columns", len(parsed.Header)),
	)
	return rows, nil
}

func (p *Pipeline) readText(ctx context.Context, file model.FileHandle) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rc, err := file.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	limited := io.LimitReader(&contextReader{ctx: ctx, r: rc}, p.maxBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return "", err
	}
	if int64(len(data)) > p.maxBytes {
		return "", fmt.Errorf("file exceeds %d bytes", p.maxBytes)
	}
	return strings.ToValidUTF8(string(data), "\uFFFD"), nil
}

// contextReader stops reading once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
