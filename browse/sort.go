package browse

import (
	"sort"
	"strings"
)

// Sort returns a new slice with directories and files sorted separately in
// natural order and concatenated, directories first when directoriesFirst.
// The ".." entry opens its group when ascending and closes it when
// descending. Entries with equal keys keep their input order.
func Sort(entries []*Entry, directoriesFirst, ascending bool) []*Entry {
	var dirs, files []*Entry
	for _, ent := range entries {
		if ent.IsFile {
			files = append(files, ent)
			continue
		}
		dirs = append(dirs, ent)
	}

	sortGroup(dirs, ascending)
	sortGroup(files, ascending)

	sorted := make([]*Entry, 0, len(entries))
	if directoriesFirst {
		sorted = append(sorted, dirs...)
		return append(sorted, files...)
	}
	sorted = append(sorted, files...)
	return append(sorted, dirs...)
}

func sortGroup(entries []*Entry, ascending bool) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		pa, pb := sortPriority(a, ascending), sortPriority(b, ascending)
		if pa != pb {
			return pa < pb
		}
		c := CompareNatural(a.Name, b.Name)
		if ascending {
			return c < 0
		}
		return c > 0
	})
}

// sortPriority pins ".." below every real entry when ascending and above
// every real entry when descending.
func sortPriority(ent *Entry, ascending bool) int {
	if !ent.IsParent() {
		return 0
	}
	if ascending {
		return -1
	}
	return 1
}

// CompareNatural compares two names split on digit runs. Digit runs compare
// as integers of any length, the rest case-insensitively, so "file2" sorts
// before "file10".
func CompareNatural(a, b string) int {
	ka, kb := naturalKey(a), naturalKey(b)
	for i := 0; i < len(ka) && i < len(kb); i++ {
		var c int
		if i%2 == 1 {
			c = compareDigits(ka[i], kb[i])
		} else {
			c = strings.Compare(strings.ToLower(ka[i]), strings.ToLower(kb[i]))
		}
		if c != 0 {
			return c
		}
	}
	switch {
	case len(ka) < len(kb):
		return -1
	case len(ka) > len(kb):
		return 1
	}
	return 0
}

// naturalKey splits s into text and digit tokens. Even indexes hold text
// (possibly empty), odd indexes hold digit runs, so two keys always compare
// tokens of the same type.
func naturalKey(s string) []string {
	key := make([]string, 0, 3)
	start := 0
	inDigits := false
	for i := 0; i < len(s); i++ {
		d := isDigit(s[i])
		if d == inDigits {
			continue
		}
		key = append(key, s[start:i])
		start = i
		inDigits = d
	}
	key = append(key, s[start:])
	if inDigits {
		key = append(key, "")
	}
	return key
}

func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return strings.Compare(a, b)
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
