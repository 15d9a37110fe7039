package config

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"

	"sveltefmt/internal/diag"
)

func decodeTOML(path string, data []byte) (File, error) {
	var f File
	meta, err := toml.Decode(string(data), &f)
	if err != nil {
		return File{}, &Error{Path: path, code: diag.CfgInvalid, Err: fmt.Errorf("failed to parse TOML: %w", err)}
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return File{}, unknownKeys(path, keys)
	}
	return f, nil
}

// TOML renders c as a config file that reproduces it.
func (c Config) TOML() ([]byte, error) {
	o := c.Format
	out := struct {
		SortOrder      string `toml:"sort_order"`
		StrictMode     bool   `toml:"strict_mode"`
		BracketNewLine bool   `toml:"bracket_new_line"`
		PrintWidth     int    `toml:"print_width"`
		TabWidth       int    `toml:"tab_width"`
		UseTabs        bool   `toml:"use_tabs"`
		Parser         string `toml:"parser,omitempty"`
	}{o.SortOrder, o.StrictMode, o.BracketNewLine, o.PrintWidth, o.TabWidth, o.UseTabs, c.Parser}

	var buf bytes.Buffer
	if c.Path != "" {
		fmt.Fprintf(&buf, "# resolved from %s\n", c.Path)
	}
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
