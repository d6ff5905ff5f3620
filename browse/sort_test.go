package browse

import (
	"reflect"
	"testing"
)

func buildTestEntries(files []string, dirs []string) []*Entry {
	var entries []*Entry
	for _, name := range files {
		entries = append(entries, &Entry{Name: name, IsFile: true})
	}
	for _, name := range dirs {
		entries = append(entries, &Entry{Name: name})
	}
	return entries
}

func TestSortNatural(t *testing.T) {
	entries := buildTestEntries([]string{"file10", "file2", "file1"}, nil)

	sorted := Sort(entries, true, true)
	expect := []string{"file1", "file2", "file10"}
	if names := entryNames(sorted); !reflect.DeepEqual(names, expect) {
		t.Fatalf("Unexpect order %v, expect %v", names, expect)
	}

	again := Sort(sorted, true, true)
	if !reflect.DeepEqual(again, sorted) {
		t.Fatalf("Sort is not idempotent: %v", entryNames(again))
	}

	desc := Sort(entries, true, false)
	expect = []string{"file10", "file2", "file1"}
	if names := entryNames(desc); !reflect.DeepEqual(names, expect) {
		t.Fatalf("Unexpect descending order %v, expect %v", names, expect)
	}

	// Input is untouched.
	expect = []string{"file10", "file2", "file1"}
	if names := entryNames(entries); !reflect.DeepEqual(names, expect) {
		t.Fatalf("Sort modified its input: %v", names)
	}
}

func TestSortDirectoriesFirst(t *testing.T) {
	entries := buildTestEntries(
		[]string{"a.txt", "Zeta.md", "0.bin"},
		[]string{"zz", "..", "b", "A"},
	)

	sorted := Sort(entries, true, true)
	expect := []string{"..", "A", "b", "zz", "0.bin", "a.txt", "Zeta.md"}
	if names := entryNames(sorted); !reflect.DeepEqual(names, expect) {
		t.Fatalf("Unexpect order %v, expect %v", names, expect)
	}

	sorted = Sort(entries, false, true)
	expect = []string{"0.bin", "a.txt", "Zeta.md", "..", "A", "b", "zz"}
	if names := entryNames(sorted); !reflect.DeepEqual(names, expect) {
		t.Fatalf("Unexpect order %v, expect %v", names, expect)
	}

	// Descending keeps the parent inside the directory group, after the
	// other directories and before any file.
	sorted = Sort(entries, true, false)
	expect = []string{"zz", "b", "A", "..", "Zeta.md", "a.txt", "0.bin"}
	if names := entryNames(sorted); !reflect.DeepEqual(names, expect) {
		t.Fatalf("Unexpect order %v, expect %v", names, expect)
	}

	sorted = Sort(entries, false, false)
	expect = []string{"Zeta.md", "a.txt", "0.bin", "zz", "b", "A", ".."}
	if names := entryNames(sorted); !reflect.DeepEqual(names, expect) {
		t.Fatalf("Unexpect order %v, expect %v", names, expect)
	}

	for _, dirsFirst := range []bool{true, false} {
		for _, asc := range []bool{true, false} {
			sorted = Sort(entries, dirsFirst, asc)
			seenOther := false
			for _, ent := range sorted {
				isFirstGroup := ent.IsFile != dirsFirst
				if !isFirstGroup {
					seenOther = true
					continue
				}
				if seenOther {
					t.Fatalf("Group order broken with dirsFirst=%v asc=%v: %v", dirsFirst, asc, entryNames(sorted))
				}
			}
		}
	}
}

func TestSortParentPinned(t *testing.T) {
	entries := buildTestEntries(
		[]string{"file.txt"},
		[]string{"...", "_a", "..", "-", "!"},
	)

	sorted := Sort(entries, true, true)
	if sorted[0].Name != ".." {
		t.Fatalf("Expect parent first when ascending, get %v", entryNames(sorted))
	}

	sorted = Sort(entries, false, false)
	if sorted[len(sorted)-1].Name != ".." {
		t.Fatalf("Expect parent last when descending, get %v", entryNames(sorted))
	}

	// With directories first the parent closes the directory group.
	sorted = Sort(entries, true, false)
	if sorted[4].Name != ".." || sorted[5].Name != "file.txt" {
		t.Fatalf("Expect parent at the end of the directories, get %v", entryNames(sorted))
	}

	only := Sort(buildTestEntries(nil, []string{".."}), true, false)
	if len(only) != 1 || only[0].Name != ".." {
		t.Fatalf("Unexpect sort result %v", entryNames(only))
	}
}

func TestSortStable(t *testing.T) {
	entries := []*Entry{
		{Name: "File1", IsFile: true, RelPath: "first"},
		{Name: "file01", IsFile: true, RelPath: "second"},
		{Name: "FILE1", IsFile: true, RelPath: "third"},
	}
	for _, asc := range []bool{true, false} {
		sorted := Sort(entries, true, asc)
		for i := range entries {
			if sorted[i] != entries[i] {
				t.Fatalf("Equal keys should keep input order, asc=%v", asc)
			}
		}
	}
}

func TestCompareNatural(t *testing.T) {
	cases := []struct {
		a, b   string
		expect int
	}{
		{"file2", "file10", -1},
		{"file10", "file2", 1},
		{"File2", "file2", 0},
		{"file", "file1", -1},
		{"10", "abc", -1},
		{"a1b2", "a1b10", -1},
		{"img007", "img7", 0},
		{"v99999999999999999999999", "v100000000000000000000000", -1},
		{"b", "A", 1},
		{"", "a", -1},
	}
	for _, c := range cases {
		if got := CompareNatural(c.a, c.b); got != c.expect {
			t.Fatalf("Unexpect CompareNatural(%q, %q) = %d, expect %d", c.a, c.b, got, c.expect)
		}
	}
}

func TestNaturalKey(t *testing.T) {
	cases := map[string][]string{
		"":       {""},
		"abc":    {"abc"},
		"file10": {"file", "10", ""},
		"10":     {"", "10", ""},
		"a1b22c": {"a", "1", "b", "22", "c"},
	}
	for s, expect := range cases {
		if key := naturalKey(s); !reflect.DeepEqual(key, expect) {
			t.Fatalf("Unexpect key %q for %q, expect %q", key, s, expect)
		}
	}
}
