package httpserver

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xff})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestMakeThumb(t *testing.T) {
	tests := []struct {
		name         string
		w, h, side   int
		wantW, wantH int
	}{
		{"landscape", 400, 200, 256, 256, 128},
		{"portrait", 100, 300, 150, 50, 150},
		{"already small", 40, 30, 256, 40, 30},
		{"thin", 1000, 1, 100, 100, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := makeThumb(bytes.NewReader(pngBytes(t, tt.w, tt.h)), tt.side)
			require.NoError(t, err)
			cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, tt.wantW, cfg.Width)
			assert.Equal(t, tt.wantH, cfg.Height)
		})
	}
}

func TestMakeThumbTransparentBecomesWhite(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	out, err := makeThumb(&buf, 16)
	require.NoError(t, err)
	decoded, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	r, g, b, _ := decoded.At(8, 8).RGBA()
	assert.Greater(t, r>>8, uint32(0xf0))
	assert.Greater(t, g>>8, uint32(0xf0))
	assert.Greater(t, b>>8, uint32(0xf0))
}

func TestMakeThumbRejectsGarbage(t *testing.T) {
	_, err := makeThumb(bytes.NewReader([]byte("not an image")), 64)
	assert.Error(t, err)
}

func TestThumbEndpoint(t *testing.T) {
	site := newSite(t)
	site.writeUnder(site.cfg.DistDir, "assets/previous/a.png", string(pngBytes(t, 400, 200)))

	rec := site.get("/_thumb?path=/assets/previous/a.png")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.Width)

	rec = site.get("/_thumb?path=assets/previous/a.png&size=4")
	require.Equal(t, http.StatusOK, rec.Code)
	cfg, err = jpeg.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, thumbMin, cfg.Width, "size is clamped to the minimum")
}

func TestThumbEndpointErrors(t *testing.T) {
	site := newSite(t)
	site.write("assets/a.png", string(pngBytes(t, 10, 10)))
	site.write("assets/broken.png", "garbage")
	site.write("assets/logo.svg", "<svg/>")

	tests := []struct {
		target string
		want   int
	}{
		{"/_thumb", http.StatusBadRequest},
		{"/_thumb?path=assets/a.png&size=big", http.StatusBadRequest},
		{"/_thumb?path=../secret.png", http.StatusBadRequest},
		{"/_thumb?path=assets/none.png", http.StatusNotFound},
		{"/_thumb?path=assets", http.StatusNotFound},
		{"/_thumb?path=assets/broken.png", http.StatusNotFound},
		{"/_thumb?path=assets/logo.svg", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			assert.Equal(t, tt.want, site.get(tt.target).Code)
		})
	}
}
