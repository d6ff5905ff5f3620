package browse

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

const timeLayout = "2006-01-02 15:04:05"

// FormatSize renders size in 1024-based units rounded to two decimals, with
// at least one decimal digit: 0B, 10.0B, 1.5KB, 4.0KB.
func FormatSize(size int64) string {
	if size <= 0 {
		return "0B"
	}

	unit := 0
	for v := size; v >= 1024 && unit < len(sizeUnits)-1; v /= 1024 {
		unit++
	}
	value := float64(size) / math.Pow(1024, float64(unit))
	value = math.Round(value*100) / 100

	s := strconv.FormatFloat(value, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s + sizeUnits[unit]
}

func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

// RelativeTime renders t like "3 days ago".
func RelativeTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}
