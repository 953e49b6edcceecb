package camera

import (
	"bufio"
	"strconv"
	"strings"
)

// ParseFormatResolution extracts the Width/Height pair from v4l2-ctl
// --get-fmt-video output. Lines look like:
//
//	Width/Height      : 2560/1440
func ParseFormatResolution(output string) (int, int, bool) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "Width/Height") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		dims := strings.SplitN(strings.TrimSpace(parts[1]), "/", 2)
		if len(dims) != 2 {
			continue
		}
		width, errW := strconv.Atoi(strings.TrimSpace(dims[0]))
		height, errH := strconv.Atoi(strings.TrimSpace(dims[1]))
		if errW != nil || errH != nil || width <= 0 || height <= 0 {
			continue
		}
		return width, height, true
	}
	return 0, 0, false
}
