package config_test

import (
	"io"
	"strings"
)

type namedFile string

func (f namedFile) Name() string { return string(f) }

func (f namedFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}
