package source

import (
	"os"
	"path/filepath"
	"slices"

	"fortio.org/safecast"
)

type FileID uint32

// Flags record what loading did to a file.
type Flags uint8

const (
	Virtual Flags = 1 << iota // не с диска: stdin, буфер редактора, тест
	HadBOM
	HadCRLF
)

// File is one component source. Content is normalized: no BOM, LF only.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	Flags   Flags

	newlines []uint32
}

// LineCol is a 1-based line and byte column.
type LineCol struct {
	Line uint32
	Col  uint32
}

func newFile(path string, content []byte, flags Flags) *File {
	f := &File{Path: normalizePath(path), Content: content, Flags: flags}
	for i, b := range content {
		if b != '\n' {
			continue
		}
		off, err := safecast.Conv[uint32](i)
		if err != nil {
			break
		}
		f.newlines = append(f.newlines, off)
	}
	return f
}

func (f *File) size() uint32 {
	n, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		return ^uint32(0)
	}
	return n
}

// Position converts a byte offset into a line and column. Offsets past the
// end are clamped.
func (f *File) Position(off uint32) LineCol {
	off = min(off, f.size())
	// newlines strictly before off
	line, _ := slices.BinarySearch(f.newlines, off)
	var lineStart uint32
	if line > 0 {
		lineStart = f.newlines[line-1] + 1
	}
	ln, err := safecast.Conv[uint32](line + 1)
	if err != nil {
		return LineCol{}
	}
	return LineCol{Line: ln, Col: off - lineStart + 1}
}

// Line returns the text of the 1-based line without its newline, or "" when
// the file has no such line.
func (f *File) Line(line uint32) string {
	if line == 0 || int(line) > len(f.newlines)+1 {
		return ""
	}
	var start uint32
	if line > 1 {
		start = f.newlines[line-2] + 1
	}
	end := f.size()
	if int(line) <= len(f.newlines) {
		end = f.newlines[line-1]
	}
	return string(f.Content[start:end])
}

// FormatPath renders the path as "absolute", "relative" (to baseDir) or
// "basename"; any other mode returns the stored path.
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := filepath.Abs(f.Path); err == nil {
			return normalizePath(abs)
		}
	case "relative":
		if baseDir == "" {
			baseDir, _ = os.Getwd()
		}
		if rel, err := RelativePath(f.Path, baseDir); err == nil {
			return rel
		}
	case "basename":
		return filepath.Base(f.Path)
	}
	return f.Path
}
