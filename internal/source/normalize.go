package source

import (
	"bytes"
	"path/filepath"
	"strings"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// Normalize strips a UTF-8 BOM and turns CRLF into LF. A lone CR is kept.
func Normalize(content []byte) ([]byte, Flags) {
	var flags Flags
	if rest, ok := bytes.CutPrefix(content, bom); ok {
		content = rest
		flags |= HadBOM
	}
	if bytes.Contains(content, []byte("\r\n")) {
		content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
		flags |= HadCRLF
	}
	return content, flags
}

// RelativePath returns path relative to baseDir, or the cleaned absolute path
// when path lies outside baseDir.
func RelativePath(path, baseDir string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return normalizePath(absPath), nil
	}
	return normalizePath(rel), nil
}

// normalizePath gives the same form on every platform.
func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}
