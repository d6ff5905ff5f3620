package browse

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Resolver maps client paths onto the configured mounts. The mount list is
// immutable after NewResolver, so a Resolver is safe for concurrent use.
type Resolver struct {
	roots      []string
	browseRoot string
}

// NewResolver canonicalizes the mounts. Order matters: when several mounts
// contain the same relative path, the first one wins. browseRoot must be one
// of the mounts, it is the directory served for the empty path.
func NewResolver(browseRoot string, mounts []string) (*Resolver, error) {
	if len(mounts) == 0 {
		return nil, errors.New("at least one mount is required")
	}

	roots := make([]string, 0, len(mounts))
	for _, mount := range mounts {
		root, err := canonicalDir(mount)
		if err != nil {
			return nil, fmt.Errorf("mount %q: %w", mount, err)
		}
		roots = append(roots, root)
	}

	root, err := canonicalDir(browseRoot)
	if err != nil {
		return nil, fmt.Errorf("browse root %q: %w", browseRoot, err)
	}
	var found bool
	for _, r := range roots {
		if r == root {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("browse root %q is not one of the mounts", browseRoot)
	}

	return &Resolver{
		roots:      roots,
		browseRoot: root,
	}, nil
}

func canonicalDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	stat, err := os.Stat(real)
	if err != nil {
		return "", err
	}
	if !stat.IsDir() {
		return "", ErrNotDirectory
	}
	return real, nil
}

func (r *Resolver) Roots() []string {
	roots := make([]string, len(r.roots))
	copy(roots, r.roots)
	return roots
}

func (r *Resolver) BrowseRoot() string {
	return r.browseRoot
}

// Resolve returns the entity for reqPath. A missing path, or one whose
// canonical location escapes every mount, yields a KindNotFound entity and a
// nil error. ErrPermissionDenied is only returned when no mount resolved the
// path and at least one of them failed with a permission error.
func (r *Resolver) Resolve(reqPath string) (*Entity, error) {
	rel := CleanRelPath(reqPath)
	if rel == "" {
		return r.stat(r.browseRoot, r.browseRoot, "")
	}
	if strings.ContainsRune(rel, 0) {
		return &Entity{Kind: KindNotFound, RelPath: rel}, nil
	}

	var permErr error
	for _, root := range r.roots {
		ent, err := r.resolveIn(root, rel)
		if err != nil {
			if permErr == nil {
				permErr = err
			}
			continue
		}
		if ent.Found() {
			return ent, nil
		}
	}
	if permErr != nil {
		return nil, permErr
	}

	return &Entity{Kind: KindNotFound, RelPath: rel}, nil
}

func (r *Resolver) resolveIn(root, rel string) (*Entity, error) {
	notFound := &Entity{Kind: KindNotFound, RelPath: rel}

	candidate := filepath.Join(root, filepath.FromSlash(rel))
	real, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			logrus.Debugf("Resolve %q in mount %q: %v", rel, root, err)
			return nil, fmt.Errorf("resolve %q: %w", rel, ErrPermissionDenied)
		}
		// Missing entries, ENOTDIR for "file.txt/x", symlink loops.
		return notFound, nil
	}

	if !within(root, real) {
		logrus.WithFields(logrus.Fields{
			"Root": root,
			"Path": rel,
		}).Warn("Rejected path escaping its mount")
		return notFound, nil
	}

	return r.stat(real, root, rel)
}

func (r *Resolver) stat(real, root, rel string) (*Entity, error) {
	info, err := os.Stat(real)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("stat %q: %w", rel, ErrPermissionDenied)
		}
		return &Entity{Kind: KindNotFound, RelPath: rel}, nil
	}

	ent := &Entity{
		Kind:    KindFile,
		Path:    real,
		RelPath: rel,
		Root:    root,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
	if info.IsDir() {
		ent.Kind = KindDirectory
	}
	return ent, nil
}

// within reports whether the canonical path p is root or lies below it.
func within(root, p string) bool {
	if p == root {
		return true
	}
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(p, prefix)
}
