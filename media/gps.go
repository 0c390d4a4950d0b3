package media

import "strings"

// ScanGPSLines recovers GPS coordinates from a plain-text metadata dump.
//
// A line whose lowercased text contains "gps latitude" or "gps longitude"
// contributes the trimmed text after its last colon. Later lines win. The two
// coordinates are captured independently, so either may be nil.
//
// This is a textual heuristic over the dump's line layout, not a structured
// field read. Any change to how the reader lays out its lines can break it.
func ScanGPSLines(lines []string) (lat, lon *string) {
	for _, line := range lines {
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "gps latitude"):
			v := afterLastColon(line)
			lat = &v
		case strings.Contains(lower, "gps longitude"):
			v := afterLastColon(line)
			lon = &v
		}
	}
	return lat, lon
}

func afterLastColon(line string) string {
	if i := strings.LastIndexByte(line, ':'); i >= 0 {
		line = line[i+1:]
	}
	return strings.TrimSpace(line)
}
