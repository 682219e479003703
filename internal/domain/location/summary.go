package location

import (
	"regexp"
	"strings"
)

// The client-carried summary is the only cross-turn memory. By contract it
// begins with a location phrase such as "In Tokyo (friendly theme), ...".
var summaryLocationPattern = regexp.MustCompile(`In\s+([^,(]+)`)

// LocationFromSummary extracts the continuity location from a chat summary.
// The phrase ends at the first comma or opening parenthesis after "In ".
func LocationFromSummary(summary string) (string, bool) {
	if summary == "" {
		return "", false
	}
	match := summaryLocationPattern.FindStringSubmatch(summary)
	if match == nil {
		return "", false
	}
	name := strings.TrimSpace(match[1])
	if name == "" {
		return "", false
	}
	return name, true
}
