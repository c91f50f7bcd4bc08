// Package store holds the file primitives every persisted document goes
// through: tolerant reads and atomic whole-document writes.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/vytor/dominoscore/internal/logger"
)

var (
	// ErrMissing means the document does not exist.
	ErrMissing = errors.New("document missing")
	// ErrEmpty means the document exists but has zero length.
	ErrEmpty = errors.New("document empty")
	// ErrCorrupt means the document could not be decoded into the expected shape.
	ErrCorrupt = errors.New("document corrupt")
)

func log() *logger.Logger {
	return logger.Default().WithPrefix("store")
}

// Read returns the raw bytes at path, or ErrMissing / ErrEmpty.
func Read(path string) ([]byte, error) {
	if path == "" {
		return nil, ErrMissing
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrMissing
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	return data, nil
}

// Decode reads path and unmarshals it into dst. A JSON syntax error or a
// document of the wrong shape (e.g. an array where an object is expected)
// is reported as ErrCorrupt.
func Decode(path string, dst any) error {
	data, err := Read(path)
	if err != nil {
		return err
	}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return fmt.Errorf("%w: %s: null document", ErrCorrupt, path)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	return nil
}

// Load returns the document at path decoded as T, or def when it is missing,
// empty, unreadable JSON or of the wrong shape. A corrupt document is moved
// aside with Quarantine. Only failures to read the file itself are returned.
func Load[T any](path string, def T) (T, error) {
	var v T
	err := Decode(path, &v)
	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, ErrMissing):
		log().Debug("no document at %s, using default", path)
	case errors.Is(err, ErrEmpty):
		log().Warn("document %s is empty, using default", path)
	case errors.Is(err, ErrCorrupt):
		log().Error("failed to load %s: %v", path, err)
		if _, qErr := Quarantine(path); qErr != nil {
			log().Warn("could not move corrupt document aside: %v", qErr)
		}
	default:
		return def, err
	}
	return def, nil
}

// Write marshals v as indented JSON and writes it with WriteFile.
func Write(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return WriteFile(path, data)
}

// WriteFile replaces path with data atomically: the bytes go to a sibling
// temporary file which is synced and then renamed over path. On failure the
// temporary file is removed and path is left as it was.
func WriteFile(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log().Error("failed atomic write %s: %v", path, err)
		return fmt.Errorf("create dir for %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		log().Error("failed atomic write %s: %v", path, err)
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				log().Warn("failed to remove temp file %s: %v", tmpPath, rmErr)
			}
			log().Error("failed atomic write %s: %v", path, err)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", tmpPath, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", tmpPath, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	syncDir(dir)
	log().Debug("wrote %s (%d bytes)", path, len(data))
	return nil
}

// syncDir makes the rename durable where the platform allows it.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	defer d.Close()
	_ = d.Sync()
}

// Quarantine renames a corrupt document aside so later loads start clean.
// It returns the new path.
func Quarantine(path string) (string, error) {
	dst := fmt.Sprintf("%s.corrupt-%d", path, time.Now().Unix())
	if err := os.Rename(path, dst); err != nil {
		return "", fmt.Errorf("quarantine %s: %w", path, err)
	}
	log().Warn("moved corrupt document %s to %s", path, dst)
	return dst, nil
}

// Remove deletes path; a missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}
