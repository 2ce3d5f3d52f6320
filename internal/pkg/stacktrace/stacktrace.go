package stacktrace

import (
	"bufio"
	"bytes"
	"strings"
)

const marker = "/internal/"

// InternalPaths keeps only the file:line frames of a debug.Stack dump that
// belong to this module's internal tree, trimmed to start at "internal/".
func InternalPaths(stack []byte) []string {
	var frames []string

	sc := bufio.NewScanner(bytes.NewReader(stack))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		at := strings.Index(line, marker)
		if at < 0 || !strings.Contains(line, ".go:") {
			continue
		}

		frame := line[at+1:]
		if sp := strings.IndexByte(frame, ' '); sp >= 0 {
			frame = frame[:sp]
		}
		frames = append(frames, frame)
	}

	return frames
}
