package server

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"

	// decoders
	_ "image/gif"
	_ "image/png"

	"github.com/fioncat/gbrowse/browse"
	"github.com/fioncat/gbrowse/osutils"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// thumbnail returns a cached jpeg thumbnail of file. The cache key covers
// the path, size and mtime, so an edited image gets a new thumbnail.
func (s *Server) thumbnail(file *browse.Entity) ([]byte, error) {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s\x00%d\x00%d\x00%d", file.Path, file.Size, file.ModTime.UnixNano(), s.cfg.ThumbnailSize)))
	cachePath := filepath.Join(s.thumbDir, hex.EncodeToString(sum[:16])+".jpg")

	data, err := os.ReadFile(cachePath)
	if err == nil {
		return data, nil
	}

	data, err = makeThumb(file.Path, s.cfg.ThumbnailSize)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return nil, fmt.Errorf("open image %q: %w", file.RelPath, browse.ErrPermissionDenied)
		}
		return nil, err
	}

	err = osutils.EnsureFilePathDir(cachePath)
	if err == nil {
		err = os.WriteFile(cachePath, data, 0644)
	}
	if err != nil {
		logrus.Warnf("Write thumbnail cache for %q: %v", file.RelPath, err)
	}
	return data, nil
}

// Images above this many pixels are not decoded.
const maxThumbPixels = 64 << 20

var errImageTooLarge = errors.New("image too large for a thumbnail")

func makeThumb(absPath string, bound int) ([]byte, error) {
	f, err := os.Open(absPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, err
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxThumbPixels {
		return nil, fmt.Errorf("%w: %dx%d", errImageTooLarge, cfg.Width, cfg.Height)
	}
	_, err = f.Seek(0, io.SeekStart)
	if err != nil {
		return nil, err
	}

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, os.ErrInvalid
	}
	if bound <= 0 {
		bound = 256
	}

	nw, nh := w, h
	if w > h {
		if w > bound {
			nw = bound
			nh = int(float64(h) * (float64(bound) / float64(w)))
		}
	} else {
		if h > bound {
			nh = bound
			nw = int(float64(w) * (float64(bound) / float64(h)))
		}
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var out bytes.Buffer
	err = jpeg.Encode(&out, dst, &jpeg.Options{Quality: 82})
	if err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
