package ai

import (
	"regexp"
	"strings"
)

var bulletPrefix = regexp.MustCompile(`^(?:[-*•+]|\d+[.)])\s+`)

// ParseBullets extracts bullet lines from a model summary. Lines without a
// bullet marker are kept only when the summary has no marked lines at all.
// The result is advisory; the raw summary remains the source of truth.
func ParseBullets(summary string) []string {
	var marked, plain []string

	for _, line := range strings.Split(summary, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if loc := bulletPrefix.FindStringIndex(line); loc != nil {
			if item := strings.TrimSpace(line[loc[1]:]); item != "" {
				marked = append(marked, item)
			}
			continue
		}
		plain = append(plain, line)
	}

	if len(marked) > 0 {
		return marked
	}
	return plain
}
