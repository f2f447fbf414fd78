package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{200, 120, 0, 255})
		}
	}
	return img
}

func encodeJPEG(w, h int) []byte {
	var buf bytes.Buffer
	jpeg.Encode(&buf, solid(w, h), &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func encodePNG(w, h int) []byte {
	var buf bytes.Buffer
	png.Encode(&buf, solid(w, h))
	return buf.Bytes()
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name         string
		data         []byte
		wantW, wantH int
	}{
		{"small jpeg kept", encodeJPEG(50, 40), 50, 40},
		{"png converted", encodePNG(100, 100), 100, 100},
		{"wide downscaled", encodeJPEG(2048, 1024), 1024, 512},
		{"tall downscaled", encodePNG(600, 3000), 204, 1024},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			photo, err := Normalize(bytes.NewReader(tt.data))
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if photo.MIME != "image/jpeg" {
				t.Errorf("expected image/jpeg, got %s", photo.MIME)
			}
			if photo.Width != tt.wantW || photo.Height != tt.wantH {
				t.Errorf("expected %dx%d, got %dx%d", tt.wantW, tt.wantH, photo.Width, photo.Height)
			}

			cfg, format, err := image.DecodeConfig(bytes.NewReader(photo.Data))
			if err != nil {
				t.Fatalf("decoding result: %v", err)
			}
			if format != "jpeg" || cfg.Width != tt.wantW || cfg.Height != tt.wantH {
				t.Errorf("expected jpeg %dx%d, got %s %dx%d", tt.wantW, tt.wantH, format, cfg.Width, cfg.Height)
			}
		})
	}
}

func TestNormalizeRejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"text", []byte("not an image")},
		{"gif", []byte("GIF89a\x01\x00\x01\x00")},
		{"truncated jpeg", encodeJPEG(20, 20)[:30]},
		{"too large", append(encodePNG(1, 1), make([]byte, MaxUpload)...)},
	}
	for _, tt := range tests {
		_, err := Normalize(bytes.NewReader(tt.data))
		if !errors.Is(err, ErrUnsupported) {
			t.Errorf("%s: expected ErrUnsupported, got %v", tt.name, err)
		}
	}
}
