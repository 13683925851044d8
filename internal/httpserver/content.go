package httpserver

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const octetStream = "application/octet-stream"

// contentTypes is fixed rather than taken from the host mime database so that
// responses do not depend on the container image.
var contentTypes = map[string]string{
	".html":        "text/html; charset=utf-8",
	".js":          "application/javascript; charset=utf-8",
	".mjs":         "application/javascript; charset=utf-8",
	".css":         "text/css; charset=utf-8",
	".json":        "application/json; charset=utf-8",
	".map":         "application/json; charset=utf-8",
	".webmanifest": "application/manifest+json; charset=utf-8",
	".png":         "image/png",
	".jpg":         "image/jpeg",
	".jpeg":        "image/jpeg",
	".gif":         "image/gif",
	".svg":         "image/svg+xml",
	".ico":         "image/x-icon",
	".webp":        "image/webp",
	".avif":        "image/avif",
	".pdf":         "application/pdf",
	".txt":         "text/plain; charset=utf-8",
	".xml":         "application/xml; charset=utf-8",
	".woff":        "font/woff",
	".woff2":       "font/woff2",
	".ttf":         "font/ttf",
	".wasm":        "application/wasm",
}

func contentTypeForName(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return octetStream
}

// cachePolicy keeps documents, scripts, styles and JSON uncached so edits to
// config and locale files show up on the next load. Other assets may be
// cached briefly.
func cachePolicy(contentType string) string {
	mt := contentType
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	switch {
	case mt == "text/html",
		mt == "text/css",
		mt == "application/javascript",
		strings.HasSuffix(mt, "json"):
		return "no-store"
	default:
		return "public, max-age=3600"
	}
}

// etag is a strong validator over the response body.
func etag(data []byte) string {
	sum := blake2b.Sum256(data)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
