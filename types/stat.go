package types

import (
	"strconv"
	"time"

	"github.com/fioncat/gbrowse/browse"
)

// AccessStat counts how many times a file was served.
type AccessStat struct {
	Path string `json:"path"`

	Views     uint64 `json:"views"`
	Downloads uint64 `json:"downloads"`

	LastAccess time.Time `json:"lastAccess"`
}

type AccessKind int

const (
	AccessView AccessKind = iota
	AccessDownload
)

type AccessStats interface {
	Record(path string, kind AccessKind, at time.Time) error
	Get(path string) (*AccessStat, error)
	List() ([]*AccessStat, error)
	Remove(path string) error
	Close() error
}

func (s *AccessStat) Total() uint64 {
	return s.Views + s.Downloads
}

func (s *AccessStat) Row() []string {
	return []string{
		s.Path,
		strconv.FormatUint(s.Views, 10),
		strconv.FormatUint(s.Downloads, 10),
		browse.RelativeTime(s.LastAccess),
	}
}
