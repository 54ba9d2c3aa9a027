package fileio

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ReadSource reads the whole file at path, decompressing it when the
// extension says so.
func ReadSource(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dump %s: %w", path, err)
	}
	defer f.Close()

	r, closeReader, err := DetectCompression(path).NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read dump %s: %w", path, err)
	}
	defer closeReader()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read dump %s: %w", path, err)
	}
	return data, nil
}

// artifactMode keeps the permissions of an existing destination; new files
// get 0644.
func artifactMode(path string) os.FileMode {
	if info, err := os.Stat(path); err == nil {
		return info.Mode().Perm()
	}
	return 0o644
}

// WriteArtifact replaces the file at path with data in one step: the bytes go
// to a temporary file in the same directory which is then renamed over path.
// A failed write leaves any previous artifact untouched.
func WriteArtifact(path string, data []byte) (err error) {
	var buf bytes.Buffer
	w, closeWriter, err := DetectCompression(path).NewWriter(&buf)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := closeWriter(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = os.Chmod(tmp.Name(), artifactMode(path)); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
