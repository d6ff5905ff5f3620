package handler

import (
	"context"
	"fmt"
	"sort"

	"github.com/fioncat/gbrowse/browse"
)

type Kind int

const (
	KindDefault Kind = iota
	KindText
	KindImage
	KindMarkdown
)

const FolderIcon = "fas fa-folder"

type renderFunc func(ctx context.Context, file *browse.Entity) *Content

type kindInfo struct {
	name   string
	icon   string
	render renderFunc
}

// kinds is the dispatch table. Adding a handler kind means adding a constant
// above and an entry here.
var kinds = map[Kind]kindInfo{
	KindDefault: {
		name:   "default",
		icon:   "fas fa-file",
		render: renderAttachment,
	},
	KindText: {
		name:   "text",
		icon:   "fas fa-file-alt",
		render: renderText,
	},
	KindImage: {
		name:   "image",
		icon:   "fas fa-image",
		render: renderImage,
	},
	KindMarkdown: {
		name:   "markdown",
		icon:   "fab fa-markdown",
		render: renderMarkdown,
	},
}

func ParseKind(name string) (Kind, error) {
	for kind, info := range kinds {
		if info.name == name {
			return kind, nil
		}
	}
	return KindDefault, fmt.Errorf("unknown handler kind %q, available: %v", name, KindNames())
}

func KindNames() []string {
	names := make([]string, 0, len(kinds))
	for _, info := range kinds {
		names = append(names, info.name)
	}
	sort.Strings(names)
	return names
}

func (k Kind) String() string {
	info, ok := kinds[k]
	if !ok {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return info.name
}

func (k Kind) Icon() string {
	info, ok := kinds[k]
	if !ok {
		return kinds[KindDefault].icon
	}
	return info.icon
}
