package handler

import (
	"context"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/fioncat/gbrowse/browse"
	"github.com/russross/blackfriday/v2"
	"github.com/sirupsen/logrus"
)

const attachmentType = "application/octet-stream"

type Dispatcher struct {
	registry *Registry
}

func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch selects the handler for file by its extension and produces the
// content to respond with. A zero-sized file always yields ContentEmpty,
// whatever its handler. Dispatch never panics on a missing file, it reports
// a ContentError instead.
func (d *Dispatcher) Dispatch(ctx context.Context, file *browse.Entity) *Content {
	if file.Kind != browse.KindFile {
		return &Content{
			Kind: ContentError,
			Err:  fmt.Errorf("handle %q: %w: not a file", file.RelPath, ErrHandlerFailure),
		}
	}
	if file.Size == 0 {
		return &Content{Kind: ContentEmpty, Filename: file.Name()}
	}
	if err := ctx.Err(); err != nil {
		return failure(file, err)
	}

	kind := d.registry.Lookup(file.Name())
	logrus.Debugf("Dispatch %q (%s) to %s handler", file.RelPath, humanize.Bytes(uint64(file.Size)), kind)
	return kinds[kind].render(ctx, file)
}

func renderAttachment(_ context.Context, file *browse.Entity) *Content {
	f, err := os.Open(file.Path)
	if err != nil {
		return failure(file, err)
	}
	return &Content{
		Kind:        ContentRaw,
		Body:        f,
		ContentType: attachmentType,
		Filename:    file.Name(),
		Size:        file.Size,
		ModTime:     file.ModTime,
	}
}

func renderText(ctx context.Context, file *browse.Entity) *Content {
	data, err := readFile(ctx, file)
	if err != nil {
		return failure(file, err)
	}
	if !utf8.Valid(data) {
		return failure(file, fmt.Errorf("content is not valid utf-8"))
	}
	return &Content{
		Kind:    ContentRender,
		View:    ViewText,
		Payload: string(data),
	}
}

func renderImage(_ context.Context, file *browse.Entity) *Content {
	return &Content{
		Kind:    ContentRender,
		View:    ViewImage,
		Payload: file.RelPath,
	}
}

func renderMarkdown(ctx context.Context, file *browse.Entity) *Content {
	data, err := readFile(ctx, file)
	if err != nil {
		return failure(file, err)
	}
	// Raw HTML embedded in the document is dropped, and links outside
	// http(s), ftp, mailto or absolute/dot-relative paths are not rendered
	// as links.
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.CommonHTMLFlags | blackfriday.SkipHTML | blackfriday.Safelink,
	})
	html := blackfriday.Run(data,
		blackfriday.WithExtensions(blackfriday.CommonExtensions),
		blackfriday.WithRenderer(renderer),
	)
	return &Content{
		Kind:    ContentRender,
		View:    ViewMarkdown,
		Payload: string(html),
	}
}

func readFile(ctx context.Context, file *browse.Entity) ([]byte, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(&ctxReader{ctx: ctx, r: f})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// ctxReader stops reading once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
