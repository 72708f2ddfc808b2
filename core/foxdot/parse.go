package foxdot

import (
	"regexp"
	"strings"
)

var (
	assignmentPattern = regexp.MustCompile(`^(\w+)\s*>>`)
	stopPattern       = regexp.MustCompile(`(\w+)\.stop\(\)`)
)

// ExtractPlayers returns the player names a piece of FoxDot source
// touches: assignment targets and explicit stops, in order of first
// appearance.
func ExtractPlayers(code string) []string {
	var players []string
	seen := map[string]bool{}
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			players = append(players, name)
		}
	}

	for _, line := range strings.Split(code, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if match := assignmentPattern.FindStringSubmatch(line); match != nil {
			add(match[1])
			continue
		}
		for _, match := range stopPattern.FindAllStringSubmatch(line, -1) {
			add(match[1])
		}
	}

	return players
}
