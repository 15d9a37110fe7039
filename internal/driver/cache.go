package driver

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"sveltefmt/internal/version"
)

// bump when entry changes shape
const cacheSchema uint16 = 2

// Digest keys cache entries.
type Digest [sha256.Size]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Cache keeps formatted output on disk. Writers never block each other: an
// entry is written to a temp file and renamed into place, so readers see
// either nothing or a whole entry.
type Cache struct {
	dir string
}

type cacheEntry struct {
	Schema  uint16 `msgpack:"v"`
	Created int64  `msgpack:"t"` // unix seconds
	Sum     []byte `msgpack:"s"` // sha256 of Output
	Output  []byte `msgpack:"o"`
}

// OpenCache opens the cache under $XDG_CACHE_HOME/app, or ~/.cache/app.
func OpenCache(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenCacheDir(filepath.Join(base, app))
}

func OpenCacheDir(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) Dir() string { return c.dir }

// buildID ties entries to the binary that wrote them, so dev builds of
// different commits never share results.
var buildID = sync.OnceValue(func() string {
	info := version.Read()
	id := info.Version + "+" + info.GitCommit
	if info.Modified {
		id += "+dirty"
	}
	return id
})

// Key digests everything the output depends on. Parts are length-prefixed.
func Key(content []byte, fingerprint, build string) Digest {
	h := sha256.New()
	var n [binary.MaxVarintLen64]byte
	for _, part := range [][]byte{content, []byte(fingerprint), []byte(build)} {
		h.Write(n[:binary.PutUvarint(n[:], uint64(len(part)))])
		h.Write(part)
	}
	var d Digest
	h.Sum(d[:0])
	return d
}

func (c *Cache) pathFor(key Digest) string {
	name := key.String()
	// шардируем по первому байту
	return filepath.Join(c.dir, "fmt", name[:2], name+".mp")
}

func (c *Cache) Put(key Digest, output []byte) (err error) {
	if c == nil {
		return nil
	}
	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	sum := sha256.Sum256(output)
	data, err := msgpack.Marshal(&cacheEntry{
		Schema:  cacheSchema,
		Created: time.Now().Unix(),
		Sum:     sum[:],
		Output:  output,
	})
	if err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()
	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

// Get reads an entry. Misses, entries of another schema and entries whose
// checksum does not match all report ok=false; broken entries are removed.
func (c *Cache) Get(key Digest) (output []byte, ok bool, err error) {
	if c == nil {
		return nil, false, nil
	}
	p := c.pathFor(key)
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var e cacheEntry
	if err := msgpack.Unmarshal(data, &e); err != nil || e.Schema != cacheSchema {
		_ = os.Remove(p)
		return nil, false, nil
	}
	if sum := sha256.Sum256(e.Output); !bytes.Equal(sum[:], e.Sum) {
		_ = os.Remove(p)
		return nil, false, nil
	}
	return e.Output, true, nil
}

// Clear removes every entry. The directory is renamed away first so a
// concurrent run never reads a half-deleted tree.
func (c *Cache) Clear() error {
	if c == nil {
		return nil
	}
	old := fmt.Sprintf("%s.old-%d", c.dir, time.Now().UnixNano())
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}
