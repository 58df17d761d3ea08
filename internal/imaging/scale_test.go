package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestProcessPassthrough(t *testing.T) {
	src := encodePNG(t, 10, 10)
	for _, tt := range []struct {
		name   string
		format string
		scale  float64
	}{
		{"defaults", "", 0},
		{"explicit png unscaled", "png", 0},
		{"scale one is identity", "png", 1},
	} {
		t.Run(tt.name, func(t *testing.T) {
			out, format, err := Process(src, tt.format, 0, tt.scale)
			if err != nil {
				t.Fatal(err)
			}
			if format != "png" {
				t.Errorf("format = %q", format)
			}
			if !bytes.Equal(out, src) {
				t.Error("unscaled png was re-encoded instead of passed through")
			}
		})
	}
}

func TestProcessScalesDown(t *testing.T) {
	src := encodePNG(t, 100, 40)
	out, format, err := Process(src, "png", 0, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if format != "png" {
		t.Errorf("format = %q", format)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 50 || b.Dy() != 20 {
		t.Errorf("scaled size = %dx%d, want 50x20", b.Dx(), b.Dy())
	}
}

func TestProcessJPEG(t *testing.T) {
	src := encodePNG(t, 10, 10)
	for _, alias := range []string{"jpg", "jpeg"} {
		t.Run(alias, func(t *testing.T) {
			out, format, err := Process(src, alias, 60, 0)
			if err != nil {
				t.Fatal(err)
			}
			if format != "jpeg" {
				t.Errorf("format = %q, want jpeg", format)
			}
			if _, err := jpeg.Decode(bytes.NewReader(out)); err != nil {
				t.Errorf("output is not valid jpeg: %v", err)
			}
		})
	}
}

func TestProcessTinyScaleClampsToOnePixel(t *testing.T) {
	src := encodePNG(t, 4, 4)
	out, _, err := Process(src, "png", 0, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() < 1 || b.Dy() < 1 {
		t.Errorf("scaled to empty image %dx%d", b.Dx(), b.Dy())
	}
}

func TestProcessRejectsUnknownFormat(t *testing.T) {
	src := encodePNG(t, 4, 4)
	if _, _, err := Process(src, "bmp", 0, 0); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestProcessRejectsGarbage(t *testing.T) {
	if _, _, err := Process([]byte("not an image"), "jpg", 0, 0); err == nil {
		t.Error("garbage input accepted")
	}
}
