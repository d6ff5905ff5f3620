package handler

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/fioncat/gbrowse/browse"
)

var ErrHandlerFailure = errors.New("handler failure")

type ContentKind int

const (
	ContentRaw ContentKind = iota
	ContentRender
	ContentEmpty
	ContentError
)

func (k ContentKind) String() string {
	switch k {
	case ContentRaw:
		return "raw"
	case ContentRender:
		return "render"
	case ContentEmpty:
		return "empty"
	}
	return "error"
}

// View names the template a ContentRender result should be rendered with.
type View string

const (
	ViewText     View = "text"
	ViewImage    View = "image"
	ViewMarkdown View = "markdown"
)

// Content is the result of dispatching a file. Which fields are set depends
// on Kind:
//
//	ContentRaw:    Body, ContentType, Filename, Size, ModTime
//	ContentRender: View, Payload
//	ContentEmpty:  Filename
//	ContentError:  Err
//
// The caller must Close a Content to release Body.
type Content struct {
	Kind ContentKind

	Body        io.ReadSeekCloser
	ContentType string
	Filename    string
	Size        int64
	ModTime     time.Time

	View    View
	Payload string

	Err error
}

func (c *Content) Close() error {
	if c.Body == nil {
		return nil
	}
	return c.Body.Close()
}

// failure wraps err as a handler failure, or as browse.ErrPermissionDenied
// when the OS refused access. The returned error only names the relative
// path.
func failure(file *browse.Entity, err error) *Content {
	kind := ErrHandlerFailure
	if errors.Is(err, fs.ErrPermission) {
		kind = browse.ErrPermissionDenied
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		err = pathErr.Err
	}
	return &Content{
		Kind: ContentError,
		Err:  fmt.Errorf("handle %q: %w: %v", file.RelPath, kind, err),
	}
}
