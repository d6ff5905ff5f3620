package storage

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/fioncat/gbrowse/types"
)

func openTestBolt(t *testing.T) types.AccessStats {
	stats, err := OpenBolt(&types.Config{
		BaseDir:         t.TempDir(),
		OpenBoltTimeout: time.Second * 3,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { stats.Close() })
	return stats
}

func TestBolt(t *testing.T) {
	stats := openTestBolt(t)

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	count := 30
	for i := 0; i < count; i++ {
		path := fmt.Sprintf("dir-%d/file-%d.txt", i%3, i)
		for j := 0; j <= i; j++ {
			err := stats.Record(path, types.AccessView, now.Add(time.Duration(j)*time.Minute))
			if err != nil {
				t.Fatal(err)
			}
		}
		err := stats.Record(path, types.AccessDownload, now)
		if err != nil {
			t.Fatal(err)
		}
	}

	for i := 0; i < count; i++ {
		path := fmt.Sprintf("dir-%d/file-%d.txt", i%3, i)
		stat, err := stats.Get(path)
		if err != nil {
			t.Fatal(err)
		}
		expect := &types.AccessStat{
			Path:       path,
			Views:      uint64(i + 1),
			Downloads:  1,
			LastAccess: now.Add(time.Duration(i) * time.Minute),
		}
		if !reflect.DeepEqual(stat, expect) {
			t.Fatalf("Unexpect stat from bolt: %+v, expect %+v", stat, expect)
		}
	}

	list, err := stats.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != count {
		t.Fatalf("Unexpect list count %d, expect %d", len(list), count)
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].Total() < list[i].Total() {
			t.Fatalf("Expect list ordered by total, get %d before %d", list[i-1].Total(), list[i].Total())
		}
	}

	removed := "dir-1/file-10.txt"
	err = stats.Remove(removed)
	if err != nil {
		t.Fatal(err)
	}

	list, err = stats.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != count-1 {
		t.Fatalf("Unexpect list count %d, expect %d", len(list), count-1)
	}

	_, err = stats.Get(removed)
	if !errors.Is(err, ErrStatNotFound) {
		t.Fatalf("Expect err to be not found, get: %v", err)
	}
}

func TestBoltLocked(t *testing.T) {
	dir := t.TempDir()
	cfg := &types.Config{
		BaseDir:         dir,
		OpenBoltTimeout: time.Millisecond * 100,
	}
	stats, err := OpenBolt(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer stats.Close()

	_, err = OpenBolt(cfg)
	if err == nil {
		t.Fatal("Expect the second open to time out")
	}
}
