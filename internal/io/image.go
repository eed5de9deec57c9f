package ioutils

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration
	"path/filepath"
	"time"

	"golang.org/x/image/draw"
)

// Screenshots stores browser screenshots taken when sampling fails.
//
// WebDriver returns full-resolution PNGs, which add up quickly over a long
// unattended run; Save scales them down to fit MaxSize and re-encodes them
// as JPEG.
//
// Example usage:
//
//	shots := ioutils.NewScreenshots("/data/screenshots", 1280)
//	png, _ := session.Screenshot()
//	path, err := shots.Save(ctx, png, "pass 12 failed")
type Screenshots struct {
	Dir     string
	MaxSize int

	now func() time.Time
}

// NewScreenshots creates a Screenshots writing into dir. A maxSize of zero
// keeps the original dimensions.
func NewScreenshots(dir string, maxSize int) *Screenshots {
	return &Screenshots{Dir: dir, MaxSize: maxSize, now: time.Now}
}

// Save downscales data, writes it under Dir and returns the file path.
// The file name is the current time followed by the sanitized label.
func (s *Screenshots) Save(ctx context.Context, data []byte, label string) (string, error) {
	encoded, err := ResizeImage(ctx, data, s.MaxSize, s.MaxSize)
	if err != nil {
		return "", fmt.Errorf("resize screenshot: %w", err)
	}

	name := s.now().Format("20060102-150405")
	if label = SanitizeFileName(label); label != "" {
		name += " " + label
	}
	path := filepath.Join(s.Dir, name+".jpg")

	if err := WriteFile(ctx, path, encoded); err != nil {
		return "", err
	}
	return path, nil
}

// ResizeImage scales an image to fit within the given maximum dimensions and
// returns it JPEG-encoded.
//
// The aspect ratio is preserved. Images already within bounds, or a zero
// bound, keep their size but are still re-encoded. Scaling uses Catmull-Rom.
//
// Example:
//
//	// A 2560x1440 screenshot becomes 1280x720
//	resized, err := ResizeImage(ctx, png, 1280, 1280)
func ResizeImage(ctx context.Context, data []byte, maxWidth, maxHeight int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if maxWidth > 0 && maxHeight > 0 && (width > maxWidth || height > maxHeight) {
		ratio := float64(width) / float64(height)
		if float64(maxWidth)/float64(maxHeight) > ratio {
			// Height is the limiting factor
			width = int(float64(maxHeight) * ratio)
			height = maxHeight
		} else {
			height = int(float64(maxWidth) / ratio)
			width = maxWidth
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
