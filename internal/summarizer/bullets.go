package summarizer

import (
	"regexp"
	"strings"
)

var reBulletLine = regexp.MustCompile(`^\s*([-*•]|\d+[.)])\s+`)

// clampBullets enforces the bullet cap on model output. The prompt asks for
// the limit, but the model is not trusted to honor it: lines are kept until
// max bullets have passed, then the rest is dropped. Non-bullet lines before
// the cap (headings, blank separators) survive untouched.
func clampBullets(text string, max int) string {
	if max <= 0 {
		return text
	}

	lines := strings.Split(text, "\n")
	var kept []string
	bullets := 0

	for _, line := range lines {
		if reBulletLine.MatchString(line) {
			if bullets >= max {
				continue
			}
			bullets++
		} else if bullets >= max && strings.TrimSpace(line) != "" {
			// Trailing prose after the cap goes with the dropped bullets.
			continue
		}
		kept = append(kept, line)
	}

	return strings.TrimRight(strings.Join(kept, "\n"), "\n")
}

func countBullets(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if reBulletLine.MatchString(line) {
			n++
		}
	}
	return n
}
