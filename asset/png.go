package asset

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// Encode img as a PNG file at path, creating any missing parent folders.
func WritePNG(path string, img image.Image) error {
	if img == nil {
		return fmt.Errorf("asset: no image to write to %q", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err = png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("asset: could not encode %q: %w", path, err)
	}
	return f.Close()
}
