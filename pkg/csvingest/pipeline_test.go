package csvingest_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/csvingest"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/testsupport"
)

func ingest(t *testing.T, file model.FileHandle, options ...csvingest.Option) []model.CsvRow {
	t.Helper()
	rows, err := csvingest.New(options...).Ingest(testsupport.Context(), file)
	if err != nil {
		t.Fatalf("ingest %s: %v", file.Name(), err)
	}
	return rows
}

func TestIngest_CoercesNumericColumns(t *testing.T) {
	rows := ingest(t, testsupport.NewMemoryFile("users.csv", testsupport.UsersCSV))
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	for i, row := range rows {
		if diff := cmp.Diff([]string{"id", "name", "email"}, row.Keys()); diff != "" {
			t.Fatalf("row %d keys mismatch (-want +got):\n%s", i, diff)
		}
		id, ok := row.Get("id")
		if !ok || id != float64(i+1) {
			t.Fatalf("row %d: expected id %v, got %v", i, float64(i+1), id)
		}
	}
	if name, _ := rows[1].Get("name"); name != "Jane" {
		t.Fatalf("expected Jane, got %v", name)
	}
}

func TestIngest_OpensFileOnce(t *testing.T) {
	file := testsupport.NewMemoryFile("users.csv", testsupport.HeaderOnlyCSV)

	_, err := csvingest.New().Ingest(testsupport.Context(), file)
	if !errors.Is(err, csvingest.ErrEmptyResult) {
		t.Fatalf("expected ErrEmptyResult, got %v", err)
	}
	if file.Opens != 1 {
		t.Fatalf("expected one open, got %d", file.Opens)
	}
}

func TestIngest_HeaderOnlyIsEmptyResult(t *testing.T) {
	file := csvingest.FileFromBytes("empty.csv", []byte("id,name,email\n\n"))

	rows, err := csvingest.New().Ingest(context.Background(), file)
	if rows != nil {
		t.Fatalf("expected nil rows, got %v", rows)
	}
	if !errors.Is(err, csvingest.ErrEmptyResult) || errors.Is(err, csvingest.ErrReadFailure) {
		t.Fatalf("expected only ErrEmptyResult, got %v", err)
	}

	var ingestErr *csvingest.IngestionError
	if !errors.As(err, &ingestErr) {
		t.Fatalf("expected *IngestionError, got %T", err)
	}
	if ingestErr.Kind != csvingest.KindEmptyResult || ingestErr.File != "empty.csv" {
		t.Fatalf("unexpected error fields %+v", ingestErr)
	}
}

func TestIngest_EmptyFileIsEmptyResult(t *testing.T) {
	_, err := csvingest.New().Ingest(context.Background(), csvingest.FileFromBytes("blank.csv", nil))
	if !errors.Is(err, csvingest.ErrEmptyResult) {
		t.Fatalf("expected ErrEmptyResult, got %v", err)
	}
}

type brokenFile struct{}

func (brokenFile) Name() string { return "broken.csv" }

func (brokenFile) Open() (io.ReadCloser, error) { return nil, errors.New("permission denied") }

func TestIngest_OpenFailureIsReadFailure(t *testing.T) {
	_, err := csvingest.New().Ingest(context.Background(), brokenFile{})
	if !errors.Is(err, csvingest.ErrReadFailure) {
		t.Fatalf("expected ErrReadFailure, got %v", err)
	}
	if !strings.Contains(err.Error(), "permission denied") {
		t.Fatalf("expected cause in %q", err)
	}
}

func TestIngest_InvalidUTF8IsReplaced(t *testing.T) {
	rows := ingest(t, csvingest.FileFromBytes("latin1.csv", []byte("name\ncaf\xe9\n")))
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if name, _ := rows[0].Get("name"); name != "caf\uFFFD" {
		t.Fatalf("expected replacement character, got %q", name)
	}
}

func TestIngest_MaxBytes(t *testing.T) {
	file := csvingest.FileFromBytes("big.csv", []byte("a,b\n1,2\n3,4\n"))

	_, err := csvingest.New(csvingest.WithMaxBytes(4)).Ingest(context.Background(), file)
	if !errors.Is(err, csvingest.ErrReadFailure) {
		t.Fatalf("expected ErrReadFailure over the limit, got %v", err)
	}

	if rows := ingest(t, file, csvingest.WithMaxBytes(1024)); len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
}

func TestIngest_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := csvingest.New().Ingest(ctx, csvingest.FileFromBytes("a.csv", []byte("a\n1\n")))
	if !errors.Is(err, csvingest.ErrReadFailure) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected read failure wrapping context.Canceled, got %v", err)
	}
}

func TestIngest_NilFile(t *testing.T) {
	_, err := csvingest.New().Ingest(context.Background(), nil)
	if !errors.Is(err, csvingest.ErrReadFailure) {
		t.Fatalf("expected ErrReadFailure, got %v", err)
	}
}

func TestIngest_RaggedRowsAndBooleans(t *testing.T) {
	rows := ingest(t, csvingest.FileFromBytes("flags.csv", []byte("name,active,score\nann,true\nbob,FALSE,3.5,extra\ncat,True,1\n")))
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	want := [][]any{
		{"ann", true, nil},
		{"bob", false, 3.5},
		{"cat", "True", 1.0},
	}
	for i, row := range rows {
		if diff := cmp.Diff(want[i], row.Values()); diff != "" {
			t.Fatalf("row %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestIngest_DelimiterOnlyLineIsRowOfNils(t *testing.T) {
	rows := ingest(t, csvingest.FileFromBytes("gaps.csv", []byte("a,b\n,\n")))
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if diff := cmp.Diff([]any{nil, nil}, rows[0].Values()); diff != "" {
		t.Fatalf("row mismatch (-want +got):\n%s", diff)
	}
}

func TestFileFromPathAndFS(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "people.csv")
	if err := os.WriteFile(path, []byte("id\n7\n"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	handle := csvingest.FileFromPath(path)
	if handle.Name() != "people.csv" {
		t.Fatalf("unexpected name %q", handle.Name())
	}
	if rows := ingest(t, handle); len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}

	fsys := fstest.MapFS{"data/people.csv": {Data: []byte("id\n8\n9\n")}}
	fsHandle := csvingest.FileFromFS(fsys, "data/people.csv")
	if fsHandle.Name() != "people.csv" {
		t.Fatalf("unexpected name %q", fsHandle.Name())
	}
	if rows := ingest(t, fsHandle); len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	_, err := csvingest.New().Ingest(context.Background(), csvingest.FileFromPath(filepath.Join(dir, "missing.csv")))
	if !errors.Is(err, csvingest.ErrReadFailure) {
		t.Fatalf("expected ErrReadFailure, got %v", err)
	}
}
