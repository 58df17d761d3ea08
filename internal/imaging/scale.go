// Package imaging post-processes screenshots captured through the
// instrumentation layer: optional downscaling and format conversion.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

// Process re-encodes a captured PNG. scale in (0,1) shrinks the image;
// format is "png" or "jpg"/"jpeg" with quality 1-100 (default 80).
func Process(data []byte, format string, quality int, scale float64) ([]byte, string, error) {
	if format == "" {
		format = "png"
	}
	if quality <= 0 || quality > 100 {
		quality = 80
	}

	// No transformation needed: pass the original bytes through.
	if format == "png" && (scale <= 0 || scale >= 1) {
		return data, "png", nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode screenshot: %w", err)
	}

	if scale > 0 && scale < 1 {
		b := img.Bounds()
		w := int(float64(b.Dx()) * scale)
		h := int(float64(b.Dy()) * scale)
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		scaled := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, b, draw.Over, nil)
		img = scaled
	}

	var buf bytes.Buffer
	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", fmt.Errorf("encode png: %w", err)
		}
		return buf.Bytes(), "png", nil
	case "jpg", "jpeg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, "", fmt.Errorf("encode jpeg: %w", err)
		}
		return buf.Bytes(), "jpeg", nil
	default:
		return nil, "", fmt.Errorf("unsupported format %q (use png or jpg)", format)
	}
}
