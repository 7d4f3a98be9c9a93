// Package stdimg reads and writes the image files grainer works on and
// converts them to and from grain.PixelBuffer.
package stdimg

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Fepozopo/grainer/pkg/grain"
)

// ErrInvalidFormat is returned for paths whose extension is not .jpeg, .jpg
// or .png.
var ErrInvalidFormat = errors.New("given file path is not a compatible image, must be .jpeg, .png or .jpg")

// DefaultJPEGQuality matches the quality PIL uses when none is given.
const DefaultJPEGQuality = 75

// Options controls encoding.
type Options struct {
	// JPEGQuality is 1..100; zero means DefaultJPEGQuality.
	JPEGQuality int
}

// ValidateExtension checks the lower-cased extension of path without
// touching the filesystem.
func ValidateExtension(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpeg", ".jpg", ".png":
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidFormat, path)
	}
}

// OutputPath returns "<dir>/<stem>-grained<ext>" for path, keeping the
// extension exactly as given.
func OutputPath(path string) string {
	ext := filepath.Ext(path)
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(filepath.Dir(path), stem+"-grained"+ext)
}

// Load validates the extension, decodes the file and applies any JPEG EXIF
// orientation so the buffer is upright.
func Load(path string) (*grain.PixelBuffer, string, error) {
	if err := ValidateExtension(path); err != nil {
		return nil, "", err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	img, format, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", path, err)
	}
	buf, err := FromImage(img)
	if err != nil {
		return nil, "", err
	}
	if format == "jpeg" {
		if o, err := jpegOrientation(b); err == nil {
			buf = AutoOrient(buf, o)
		}
	}
	return buf, format, nil
}

// Encode writes buf to w in the format implied by path's extension.
func Encode(w io.Writer, path string, buf *grain.PixelBuffer, opts Options) error {
	if err := ValidateExtension(path); err != nil {
		return err
	}
	img, err := ToImage(buf)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return png.Encode(w, img)
	default:
		q := opts.JPEGQuality
		if q <= 0 {
			q = DefaultJPEGQuality
		}
		if q > 100 {
			q = 100
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: q})
	}
}

// Save encodes buf and writes it to path. Nothing is written if encoding
// fails.
func Save(path string, buf *grain.PixelBuffer, opts Options) error {
	var out bytes.Buffer
	if err := Encode(&out, path, buf, opts); err != nil {
		return err
	}
	return os.WriteFile(path, out.Bytes(), 0o644)
}
