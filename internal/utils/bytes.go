package utils

import "github.com/dustin/go-humanize"

const (
	KiB int64 = 1 << 10
	MiB int64 = 1 << 20
)

// FormatBytes renders sizes the way the tool pages show them - `1.5 MiB`
func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(n))
}
