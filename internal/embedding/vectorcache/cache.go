package vectorcache

import (
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const vectorExt = ".vec"

// Cache persists embedding vectors on disk, one file per (model, text)
// pair, so identical documents are never re-encoded across runs. Files are
// written via temp-file plus atomic rename: a reader may observe the old
// or the new vector during a write, never a partial one.
type Cache struct {
	root   string
	logger *zap.Logger
}

func New(root string, logger *zap.Logger) *Cache {
	return &Cache{root: root, logger: logger}
}

// canonical normalizes line endings and surrounding whitespace so texts
// that differ only in formatting share a cache key.
func canonical(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimSpace(text)
}

func hashText(text string) string {
	sum := sha1.Sum([]byte(canonical(text)))
	return fmt.Sprintf("%x", sum)
}

// sanitizeModel makes a model name usable as a directory component.
func sanitizeModel(model string) string {
	model = strings.TrimSpace(model)
	if model == "" {
		model = "model"
	}
	model = strings.ReplaceAll(model, "/", "_")
	return strings.ReplaceAll(model, string(os.PathSeparator), "_")
}

func (c *Cache) path(model, text string) string {
	return filepath.Join(c.root, sanitizeModel(model), hashText(text)+vectorExt)
}

// Load returns the cached vector for the model/text pair, or false when
// there is none. A corrupt file counts as a miss.
func (c *Cache) Load(model, text string) ([]float32, bool) {
	path := c.path(model, text)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	if len(data) == 0 || len(data)%4 != 0 {
		c.logger.Warn("corrupt cached vector, re-encoding",
			zap.String("path", path),
			zap.Int("bytes", len(data)),
		)
		return nil, false
	}

	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, true
}

// Save persists a vector as raw little-endian float32 bytes. The write
// goes to a temp file first and is renamed over the destination, so an
// interrupted process cannot leave a truncated vector behind.
func (c *Cache) Save(model, text string, vec []float32) error {
	if len(vec) == 0 {
		return fmt.Errorf("refusing to cache an empty vector")
	}

	path := c.path(model, text)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	data := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing temp vector file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing vector file: %w", err)
	}

	return nil
}
