package csvingest

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goliatone/go-formflow/pkg/model"
)

// FileFromPath returns a handle that opens path on disk. The handle's name is
// the base name, matching what a file picker reports.
func FileFromPath(path string) model.FileHandle {
	return pathFile{path: path}
}

// FileFromBytes returns an in-memory handle.
func FileFromBytes(name string, data []byte) model.FileHandle {
	return bytesFile{name: name, data: append([]byte(nil), data...)}
}

// FileFromFS returns a handle that opens name inside fsys.
func FileFromFS(fsys fs.FS, name string) model.FileHandle {
	return fsFile{fsys: fsys, name: name}
}

type pathFile struct {
	path string
}

func (f pathFile) Name() string { return filepath.Base(f.path) }

func (f pathFile) Open() (io.ReadCloser, error) { return os.Open(f.path) }

// Path returns the full path the handle opens.
func (f pathFile) Path() string { return f.path }

type bytesFile struct {
	name string
	data []byte
}

func (f bytesFile) Name() string { return f.name }

func (f bytesFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

type fsFile struct {
	fsys fs.FS
	name string
}

func (f fsFile) Name() string { return filepath.Base(f.name) }

func (f fsFile) Open() (io.ReadCloser, error) { return f.fsys.Open(f.name) }
