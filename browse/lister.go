package browse

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	parentName = ".."

	// parentSize is displayed for the ".." entry, it is not measured.
	parentSize = "4.0KB"
)

type Lister struct {
	browseRoot string
}

// NewLister expects the canonical browse root, see Resolver.BrowseRoot.
func NewLister(browseRoot string) *Lister {
	return &Lister{browseRoot: browseRoot}
}

// List enumerates the immediate children of dir, hidden files included, and
// prepends the ".." entry. The result is in directory order; use Sort to get
// the display order.
func (l *Lister) List(dir *Entity) ([]*Entry, error) {
	if dir.Kind != KindDirectory {
		return nil, fmt.Errorf("list %q: %w", dir.RelPath, ErrNotDirectory)
	}

	start := time.Now()
	ents, err := os.ReadDir(dir.Path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("list %q: %w", dir.RelPath, ErrPermissionDenied)
		}
		return nil, fmt.Errorf("read dir %q: %w", dir.RelPath, err)
	}

	entries := make([]*Entry, 0, len(ents)+1)
	entries = append(entries, l.parentEntry(dir))
	for _, ent := range ents {
		name := ent.Name()
		// Follow symlinks for size and type, fall back to the link itself
		// when it dangles.
		info, err := os.Stat(filepath.Join(dir.Path, name))
		if err != nil {
			info, err = ent.Info()
			if err != nil {
				logrus.Debugf("Skip entry %q in %q: %v", name, dir.RelPath, err)
				continue
			}
		}
		entries = append(entries, &Entry{
			Name:          name,
			RelPath:       joinRel(dir.RelPath, name),
			IsFile:        !info.IsDir(),
			Size:          info.Size(),
			SizeFormatted: FormatSize(info.Size()),
			ModifiedAt:    info.ModTime(),
		})
	}
	logrus.Debugf("List %q done, with %d entries, took %v", dir.RelPath, len(ents), time.Since(start))

	return entries, nil
}

func (l *Lister) parentEntry(dir *Entity) *Entry {
	parent := filepath.Dir(dir.Path)

	ent := &Entry{
		Name:          parentName,
		RelPath:       l.parentLink(dir),
		IsFile:        false,
		SizeFormatted: parentSize,
	}
	if info, err := os.Stat(parent); err == nil {
		ent.ModifiedAt = info.ModTime()
	}
	return ent
}

// parentLink returns "" (the root of the tree) when the parent directory
// carries the browse root's name. Only names are compared, so a nested
// directory that happens to share the browse root's name also links to the
// root.
func (l *Lister) parentLink(dir *Entity) string {
	parent := filepath.Dir(dir.Path)
	if filepath.Base(parent) == filepath.Base(l.browseRoot) {
		return ""
	}
	link := path.Dir(dir.RelPath)
	if link == "." {
		return ""
	}
	return link
}
