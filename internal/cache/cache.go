package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when Entry format changes
const schemaVersion uint16 = 1

// ErrSchema reports an entry written by an incompatible version.
var ErrSchema = errors.New("cache entry schema mismatch")

// Digest identifies one cached conversion.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Key mixes everything a conversion depends on: the converter version, the
// rule table and the unit content.
func Key(version, fingerprint string, content [32]byte) Digest {
	h := sha256.New()
	fmt.Fprintf(h, "perl2py\x00%d\x00%s\x00%s\x00", schemaVersion, version, fingerprint)
	h.Write(content[:])
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// Cache хранит результаты конвертации по ключу на диске.
// Thread-safe for concurrent access.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// Open initializes a cache in dir, or in $XDG_CACHE_HOME/perl2py
// (~/.cache/perl2py) when dir is empty.
func Open(dir string) (*Cache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, "perl2py")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

func (c *Cache) pathFor(key Digest) string {
	hexKey := key.String()
	// подкаталог по первым двум символам, чтобы не раздувать один каталог
	return filepath.Join(c.dir, "units", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes an entry. A nil cache ignores writes.
func (c *Cache) Put(key Digest, entry *Entry) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	entry.Schema = schemaVersion
	if err := msgpack.NewEncoder(f).Encode(entry); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	// Атомарная замена
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Get reads the entry of key. A missing entry is (false, nil); an entry of
// another schema is ErrSchema.
func (c *Cache) Get(key Digest, out *Entry) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	return decode(f, out)
}

func decode(r io.Reader, out *Entry) (bool, error) {
	if err := msgpack.NewDecoder(r).Decode(out); err != nil {
		return false, fmt.Errorf("decode cache entry: %w", err)
	}
	if out.Schema != schemaVersion {
		return false, fmt.Errorf("%w: got %d, want %d", ErrSchema, out.Schema, schemaVersion)
	}
	return true, nil
}

// DropAll invalidates the cache.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
