package source

import (
	"fmt"
	"os"
	"sync"

	"fortio.org/safecast"
)

// FileSet owns the files of one run and resolves spans against them. It is
// safe for concurrent use; files are never removed, so a *File stays valid.
type FileSet struct {
	mu      sync.RWMutex
	files   []*File
	baseDir string // относительные пути в диагностиках считаются от неё
}

func NewFileSet() *FileSet { return &FileSet{} }

// SetBaseDir sets the directory diagnostic paths are made relative to.
func (fs *FileSet) SetBaseDir(dir string) {
	fs.mu.Lock()
	fs.baseDir = dir
	fs.mu.Unlock()
}

// BaseDir returns the base directory, defaulting to the working directory.
func (fs *FileSet) BaseDir() string {
	fs.mu.RLock()
	dir := fs.baseDir
	fs.mu.RUnlock()
	if dir == "" {
		dir, _ = os.Getwd()
	}
	return dir
}

// Add stores already normalized content under a new FileID. Adding the same
// path twice yields two files; the LSP relies on that for document versions.
func (fs *FileSet) Add(path string, content []byte, flags Flags) FileID {
	f := newFile(path, content, flags)
	fs.mu.Lock()
	defer fs.mu.Unlock()
	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("source: too many files: %w", err))
	}
	f.ID = FileID(n)
	fs.files = append(fs.files, f)
	return f.ID
}

// Load reads path, strips a BOM, folds CRLF and adds the result.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	content, flags := Normalize(content)
	return fs.Add(path, content, flags), nil
}

// AddVirtual adds content that did not come from disk (stdin, an editor
// buffer, a test).
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	return fs.Add(name, content, Virtual)
}

// Get returns the file for id, or nil if the set has no such file.
func (fs *FileSet) Get(id FileID) *File {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if int(id) >= len(fs.files) {
		return nil
	}
	return fs.files[id]
}

// Len reports how many files were added.
func (fs *FileSet) Len() int {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return len(fs.files)
}

// Resolve converts a span into 1-based positions. Spans of unknown files
// resolve to zero positions.
func (fs *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fs.Get(span.File)
	if f == nil {
		return LineCol{}, LineCol{}
	}
	return f.Position(span.Start), f.Position(span.End)
}
