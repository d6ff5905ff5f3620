package server

import (
	"net/http"
	"path"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"
)

var knownCompressedExtensions = map[string]struct{}{
	".zip": {}, ".gz": {}, ".tgz": {}, ".bz2": {}, ".xz": {}, ".zst": {}, ".7z": {}, ".rar": {},
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {}, ".heic": {},
	".mp3": {}, ".mp4": {}, ".mkv": {}, ".mov": {}, ".webm": {}, ".ogg": {}, ".flac": {},
	".pdf": {}, ".docx": {}, ".pptx": {}, ".xlsx": {},
}

func isAlreadyCompressed(urlPath string) bool {
	ext := strings.ToLower(path.Ext(urlPath))
	_, ok := knownCompressedExtensions[ext]
	return ok
}

// zstdWriter compresses the body once a status that carries a body is
// written. The encoder is created on the first Write.
type zstdWriter struct {
	http.ResponseWriter

	encoder *zstd.Encoder

	wroteHeader bool
	compress    bool
}

func (z *zstdWriter) WriteHeader(status int) {
	if z.wroteHeader {
		z.ResponseWriter.WriteHeader(status)
		return
	}
	z.wroteHeader = true

	hasBody := status >= http.StatusOK && status != http.StatusNoContent && status != http.StatusNotModified
	if hasBody && z.Header().Get("Content-Encoding") == "" {
		z.compress = true
		z.Header().Del("Content-Length")
		z.Header().Set("Content-Encoding", "zstd")
		z.Header().Add("Vary", "Accept-Encoding")
	}
	z.ResponseWriter.WriteHeader(status)
}

func (z *zstdWriter) Write(data []byte) (int, error) {
	if !z.wroteHeader {
		// Sniffing must see the plain bytes.
		if z.Header().Get("Content-Type") == "" {
			z.Header().Set("Content-Type", http.DetectContentType(data))
		}
		z.WriteHeader(http.StatusOK)
	}
	if !z.compress {
		return z.ResponseWriter.Write(data)
	}
	if z.encoder == nil {
		encoder, err := zstd.NewWriter(z.ResponseWriter, zstd.WithEncoderConcurrency(1))
		if err != nil {
			return 0, err
		}
		z.encoder = encoder
	}
	return z.encoder.Write(data)
}

func (z *zstdWriter) Close() error {
	if z.encoder == nil {
		return nil
	}
	return z.encoder.Close()
}

// compressMiddleware applies zstd compression if the client accepts it.
// Range requests and files that are already compressed are served as is.
func compressMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "zstd") ||
			r.Header.Get("Range") != "" ||
			r.Method == http.MethodHead ||
			strings.HasPrefix(r.URL.Path, "/thumb/") ||
			isAlreadyCompressed(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		zw := &zstdWriter{ResponseWriter: w}
		defer func() {
			err := zw.Close()
			if err != nil {
				logrus.Debugf("Close zstd encoder for %q: %v", r.URL.Path, err)
			}
		}()
		next.ServeHTTP(zw, r)
	})
}
