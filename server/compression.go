package server

import (
	"compress/gzip"
	"net/http"

	"github.com/klauspost/compress/gzhttp"

	"github.com/sambeau/benday/config"
)

// compressedTypes are the responses the API produces that are worth
// compressing: run results, journal listings and help pages.
var compressedTypes = []string{
	"application/json",
	"text/html",
	"text/markdown",
	"text/plain",
}

// compressionLevels maps compression.level to a gzip level.
var compressionLevels = map[string]int{
	"fastest": gzip.BestSpeed,
	"default": gzip.DefaultCompression,
	"best":    gzip.BestCompression,
}

// newCompressionHandler wraps h with gzip compression. It returns h as it is
// when compression is disabled or the level is "none".
func newCompressionHandler(h http.Handler, cfg config.CompressionConfig) http.Handler {
	if !cfg.Enabled || cfg.Level == "none" {
		return h
	}

	level, ok := compressionLevels[cfg.Level]
	if !ok {
		level = gzip.DefaultCompression
	}

	wrapper, err := gzhttp.NewWrapper(
		gzhttp.MinSize(cfg.MinSize),
		gzhttp.CompressionLevel(level),
		gzhttp.ContentTypes(compressedTypes),
	)
	if err != nil {
		return h
	}
	return wrapper(h)
}
