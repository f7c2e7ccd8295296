// Package subtitle renders engine segments as SubRip text.
package subtitle

import (
	"fmt"
	"strings"
	"time"

	"transcription-service/internal/domain/ports/adapter"
)

// ComposeSRT renders word-level segments as an SRT document: 1-based index,
// "HH:MM:SS,mmm --> HH:MM:SS,mmm" timing line, text, blank line.
func ComposeSRT(segments []adapter.Segment) string {
	var b strings.Builder
	for i, seg := range segments {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			i+1, Timestamp(seg.Start), Timestamp(seg.End), seg.Text)
	}
	return b.String()
}

// Timestamp formats seconds as an SRT timestamp, comma-separated millis.
func Timestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	d := time.Duration(seconds * float64(time.Second))
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	ms := (d - s*time.Second) / time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
