package attendance

import "regexp"

// AttendanceDetector decides the attended flag of a line from its sign-in timestamp
type AttendanceDetector struct {
	pattern *regexp.Regexp
}

// Detector returns the detector for text lines or for flattened table rows
func (g *Grammar) Detector(tabular bool) AttendanceDetector {
	if tabular {
		return AttendanceDetector{pattern: g.TabularTimestamp}
	}
	return AttendanceDetector{pattern: g.Timestamp}
}

// Attended reports whether line holds a sign-in timestamp. A missing timestamp
// means the participant did not attend, not that data is missing.
func (d AttendanceDetector) Attended(line string) bool {
	return d.pattern.MatchString(line)
}
