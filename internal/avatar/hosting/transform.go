package hosting

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // registers the GIF decoder
	_ "image/jpeg" // registers the JPEG decoder
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // registers the WebP decoder

	dErrors "contactbook/pkg/domain-errors"
)

// maxSourcePixels bounds decoded image size before any allocation.
const maxSourcePixels = 40_000_000

// Fill center-crops raw to a square and scales it to size×size, returning
// PNG bytes. Unsupported or oversized images are validation errors.
func Fill(raw []byte, size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid avatar size %d", size)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "file is not a supported image")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxSourcePixels {
		return nil, dErrors.New(dErrors.CodeValidation, "image dimensions are not supported")
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "file is not a supported image")
	}

	b := img.Bounds()
	side := min(b.Dx(), b.Dy())
	crop := image.Rect(0, 0, side, side).Add(image.Point{
		X: b.Min.X + (b.Dx()-side)/2,
		Y: b.Min.Y + (b.Dy()-side)/2,
	})

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, crop, draw.Src, nil)

	var out bytes.Buffer
	if err := png.Encode(&out, dst); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return out.Bytes(), nil
}
