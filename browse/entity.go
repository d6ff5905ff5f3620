package browse

import (
	"errors"
	"path"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotDirectory     = errors.New("not a directory")
)

type Kind int

const (
	KindNotFound Kind = iota
	KindDirectory
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindFile:
		return "file"
	}
	return "not found"
}

// Entity is the result of resolving a request path. Path is always the
// canonical location inside Root; both are empty for KindNotFound.
type Entity struct {
	Kind Kind

	Path    string
	RelPath string
	Root    string

	Size    int64
	ModTime time.Time
}

func (e *Entity) Found() bool {
	return e.Kind != KindNotFound
}

// Name returns the name the client asked for. It differs from the base of
// Path when the request went through a symlink.
func (e *Entity) Name() string {
	if e.RelPath == "" {
		return filepath.Base(e.Path)
	}
	return path.Base(e.RelPath)
}

type Entry struct {
	Name    string `json:"name"`
	RelPath string `json:"path"`

	IsFile bool `json:"isFile"`

	Size          int64  `json:"size"`
	SizeFormatted string `json:"sizeFormatted"`

	ModifiedAt time.Time `json:"lastModified"`

	Icon string `json:"icon,omitempty"`
}

func (e *Entry) IsParent() bool {
	return e.Name == parentName
}

// CleanRelPath takes a user path like "", ".", "/a/b", "a//b" or "../a", and
// returns a slash-based relative path without leading slash ("" means root).
// ".." segments can never climb above the root after cleaning.
func CleanRelPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "." || p == "/" {
		return ""
	}
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean("/" + p)
	p = strings.TrimPrefix(p, "/")
	if p == "." {
		return ""
	}
	return p
}

func joinRel(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}
