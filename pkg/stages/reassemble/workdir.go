package reassemble

import (
	"path/filepath"

	"github.com/Schrubitteflau/compression-suite/pkg/ports"
)

// workDir is a scratch directory for stills, playlists and frame
// aliases. Everything written through it is removed on cleanup.
type workDir struct {
	fs      ports.FileSystem
	dir     string
	created bool
	files   []string
}

func newWorkDir(fs ports.FileSystem, dir string) *workDir {
	return &workDir{fs: fs, dir: dir}
}

func (w *workDir) path(name string) string {
	return filepath.Join(w.dir, name)
}

func (w *workDir) write(path string, data []byte) error {
	if err := w.ensure(); err != nil {
		return err
	}
	if err := w.fs.WriteFile(path, data); err != nil {
		return err
	}
	w.track(path)
	return nil
}

// track registers a file created outside write, e.g. a link alias.
func (w *workDir) track(path string) {
	w.files = append(w.files, path)
}

func (w *workDir) ensure() error {
	if w.created {
		return nil
	}
	if err := w.fs.MkdirAll(w.dir); err != nil {
		return err
	}
	w.created = true
	return nil
}

// cleanup removes tracked files and the directory itself. Failures are
// ignored, the scratch dir is not part of the output contract.
func (w *workDir) cleanup() {
	for _, f := range w.files {
		w.fs.Remove(f)
	}
	if w.created {
		w.fs.Remove(w.dir)
	}
	w.files = nil
	w.created = false
}
