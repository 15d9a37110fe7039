package lsp

import (
	"net/url"
	"path/filepath"
)

// uriToPath turns a file URI (or a bare path) into an absolute OS path.
// Other schemes, such as untitled:, give "".
func uriToPath(uri string) string {
	u, err := url.Parse(uri)
	if uri == "" || err != nil {
		return ""
	}
	var p string
	switch u.Scheme {
	case "file":
		p = u.Path
	case "":
		p = uri
	default:
		return ""
	}
	// file:///C:/x
	if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	p = filepath.FromSlash(p)
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return p
}
