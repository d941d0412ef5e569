package resumeparse

import "strings"

// ParseSkills splits a comma-separated skill list. Tokens are trimmed,
// empty tokens dropped, and order and duplicates preserved. The result is
// never nil.
func ParseSkills(list string) []string {
	skills := []string{}
	for _, token := range strings.Split(list, ",") {
		token = strings.TrimSpace(token)
		if token != "" {
			skills = append(skills, token)
		}
	}
	return skills
}
