package browse

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func listTestDir(t *testing.T, r *Resolver, path string) []*Entry {
	ent, err := r.Resolve(path)
	if err != nil {
		t.Fatal(err)
	}
	if ent.Kind != KindDirectory {
		t.Fatalf("Expect %q to be a directory, get %v", path, ent.Kind)
	}
	entries, err := NewLister(r.BrowseRoot()).List(ent)
	if err != nil {
		t.Fatal(err)
	}
	return entries
}

func entryNames(entries []*Entry) []string {
	names := make([]string, len(entries))
	for i, ent := range entries {
		names[i] = ent.Name
	}
	return names
}

func findEntry(t *testing.T, entries []*Entry, name string) *Entry {
	for _, ent := range entries {
		if ent.Name == name {
			return ent
		}
	}
	t.Fatalf("Could not find entry %q", name)
	return nil
}

func TestListRoundTrip(t *testing.T) {
	root := filepath.Join(testTempDir(t), "data")
	buildTestTree(t, root, testTree{
		"docs/readme.txt": "0123456789",
		"docs/photo.png":  "",
	})
	r := newTestResolver(t, root, root)

	entries := Sort(listTestDir(t, r, "docs/"), true, true)

	expectNames := []string{"..", "photo.png", "readme.txt"}
	if names := entryNames(entries); !reflect.DeepEqual(names, expectNames) {
		t.Fatalf("Unexpect names %v, expect %v", names, expectNames)
	}

	parent := entries[0]
	if parent.IsFile || parent.SizeFormatted != "4.0KB" || parent.RelPath != "" {
		t.Fatalf("Unexpect parent entry %+v", parent)
	}
	if parent.ModifiedAt.IsZero() {
		t.Fatal("Expect parent entry to carry the parent mtime")
	}

	readme := entries[2]
	expect := &Entry{
		Name:          "readme.txt",
		RelPath:       "docs/readme.txt",
		IsFile:        true,
		Size:          10,
		SizeFormatted: "10.0B",
		ModifiedAt:    readme.ModifiedAt,
	}
	if !reflect.DeepEqual(readme, expect) {
		t.Fatalf("Unexpect entry %+v, expect %+v", readme, expect)
	}

	photo := entries[1]
	if !photo.IsFile || photo.SizeFormatted != "0B" || photo.RelPath != "docs/photo.png" {
		t.Fatalf("Unexpect entry %+v", photo)
	}
}

func TestListHiddenAndDirectories(t *testing.T) {
	root := filepath.Join(testTempDir(t), "data")
	buildTestTree(t, root, testTree{
		".hidden":       "h",
		".config/":      "",
		"dir/child.txt": "c",
		"file.txt":      "f",
	})
	r := newTestResolver(t, root, root)

	entries := listTestDir(t, r, "")
	if len(entries) != 5 {
		t.Fatalf("Unexpect entries count %d, expect 5: %v", len(entries), entryNames(entries))
	}
	if findEntry(t, entries, ".hidden").IsFile != true {
		t.Fatal("Expect .hidden to be a file")
	}
	if findEntry(t, entries, ".config").IsFile {
		t.Fatal("Expect .config to be a directory")
	}
	if findEntry(t, entries, "dir").RelPath != "dir" {
		t.Fatal("Unexpect dir relative path")
	}
	// No recursion.
	for _, ent := range entries {
		if ent.Name == "child.txt" {
			t.Fatal("List should not recurse into sub directories")
		}
	}
}

func TestListParentLink(t *testing.T) {
	root := filepath.Join(testTempDir(t), "data")
	buildTestTree(t, root, testTree{
		"a/b/c/file.txt": "x",
		"x/data/y/":      "",
	})
	r := newTestResolver(t, root, root)

	cases := map[string]string{
		"":      "",
		"a":     "",
		"a/b":   "a",
		"a/b/c": "a/b",
		// The parent is named like the browse root, so it links to the
		// root even though the real parent is x/data.
		"x/data/y": "",
	}
	for path, expect := range cases {
		entries := listTestDir(t, r, path)
		parent := entries[0]
		if !parent.IsParent() {
			t.Fatalf("Expect first listed entry to be the parent, get %q", parent.Name)
		}
		if parent.RelPath != expect {
			t.Fatalf("Unexpect parent link %q for %q, expect %q", parent.RelPath, path, expect)
		}
	}
}

func TestListNotDirectory(t *testing.T) {
	root := filepath.Join(testTempDir(t), "data")
	buildTestTree(t, root, testTree{"file.txt": "x"})
	r := newTestResolver(t, root, root)

	ent, err := r.Resolve("file.txt")
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewLister(r.BrowseRoot()).List(ent)
	if !errors.Is(err, ErrNotDirectory) {
		t.Fatalf("Expect not directory error, get: %v", err)
	}
}
