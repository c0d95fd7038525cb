// Package testsupport holds helpers shared by the package tests: golden file
// handling, CSV fixtures and in-memory file handles.
package testsupport

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/model"
)

// UsersCSV is the two-row fixture used across the engine tests.
const UsersCSV = "id,name,email\n1,Test,test@example.com\n2,Jane,jane@example.com"

// HeaderOnlyCSV has a header and no data rows.
const HeaderOnlyCSV = "id,name,email\n"

// MemoryFile is a model.FileHandle over an in-memory payload that counts how
// often it was opened.
type MemoryFile struct {
	FileName string
	Data     []byte
	Err      error
	Opens    int
}

// NewMemoryFile returns a handle named name holding content.
func NewMemoryFile(name, content string) *MemoryFile {
	return &MemoryFile{FileName: name, Data: []byte(content)}
}

// Name implements model.FileHandle.
func (f *MemoryFile) Name() string { return f.FileName }

// Open implements model.FileHandle. It fails with Err when set.
func (f *MemoryFile) Open() (io.ReadCloser, error) {
	f.Opens++
	if f.Err != nil {
		return nil, f.Err
	}
	return io.NopCloser(bytes.NewReader(f.Data)), nil
}

var _ model.FileHandle = (*MemoryFile)(nil)

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput runs render against a buffer and returns both the
// returned string and what was written, so tests can assert they match.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
