package proc

import (
	"os"
	"strconv"
	"strings"
)

// hostUptime reads the host uptime in whole seconds from /proc/uptime.
func hostUptime() (uint64, bool) {
	raw, err := os.ReadFile("/proc/uptime")
	if err != nil {
		return 0, false
	}
	fields := strings.Fields(string(raw))
	if len(fields) == 0 {
		return 0, false
	}
	secs, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || secs <= 0 {
		return 0, false
	}
	return uint64(secs), true
}
