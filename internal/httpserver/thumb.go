package httpserver

import (
	"bytes"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	// decoders
	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"eventsite/internal/apperr"
	"eventsite/internal/fsutil"
)

const (
	thumbDefault = 256
	thumbMin     = 16
	thumbMax     = 1024
)

// handleThumb scales an image under the dist root to fit ?size= pixels and
// returns it as JPEG. Nothing is written to disk.
func (s *Server) handleThumb(w http.ResponseWriter, r *http.Request, req request) error {
	rel := req.query.Get("path")
	if rel == "" {
		return apperr.BadRequest("Missing path")
	}
	size := thumbDefault
	if v := req.query.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return apperr.BadRequest("Bad size")
		}
		size = min(max(n, thumbMin), thumbMax)
	}
	abs, err := fsutil.Resolve(s.cfg.DistDir, rel)
	if err != nil {
		return apperr.BadRequest("Bad Request")
	}
	if !isRegular(s.fs, abs) || !isDecodableExt(strings.ToLower(filepath.Ext(abs))) {
		return apperr.NotFound("Not found")
	}
	data, err := s.fs.ReadFile(abs)
	if err != nil {
		return apperr.Internal("read image", err)
	}
	b, err := makeThumb(bytes.NewReader(data), size)
	if err != nil {
		s.log.Debug("thumbnail failed", "path", rel, "err", err)
		return apperr.NotFound("Not found")
	}
	serveBytes(w, r, filepath.Base(abs)+".jpg", "image/jpeg", "public, max-age=3600", b)
	return nil
}

func isDecodableExt(ext string) bool {
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return true
	default:
		return false
	}
}

func makeThumb(src io.Reader, maxSide int) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, os.ErrInvalid
	}

	nw, nh := w, h
	if w > h {
		if w > maxSide {
			nw = maxSide
			nh = int(float64(h) * (float64(maxSide) / float64(w)))
		}
	} else {
		if h > maxSide {
			nh = maxSide
			nw = int(float64(w) * (float64(maxSide) / float64(h)))
		}
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	// JPEG has no alpha; transparent areas come out white
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: 82}); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
