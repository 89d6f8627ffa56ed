package billy

import (
	"github.com/go-git/go-billy/v5"
)

// file adapts a go-billy File to fs.File.
type file struct {
	f billy.File
}

func (w *file) Name() string {
	return w.f.Name()
}

func (w *file) Write(p []byte) (int, error) {
	n, err := w.f.Write(p)
	return n, wrap("write", w.f.Name(), err)
}

func (w *file) Close() error {
	return wrap("close", w.f.Name(), w.f.Close())
}
