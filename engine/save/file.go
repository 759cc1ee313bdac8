package save

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// WriteFile writes a save blob to path, zstd-compressed. Parent directories
// are created as needed.
func WriteFile(path string, blob []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(enc)
	if _, err := bw.Write(blob); err != nil {
		enc.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("compress %s: %w", path, err)
	}
	return f.Close()
}

// ReadFile reads a blob written by WriteFile.
func ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	blob, err := io.ReadAll(bufio.NewReader(dec))
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", path, err)
	}
	return blob, nil
}
