package db

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern builds an ILIKE pattern matching search as a literal substring.
// An empty search yields "" so queries can skip the predicate.
func ContainsPattern(search string) string {
	search = strings.TrimSpace(search)
	if search == "" {
		return ""
	}
	return "%" + likeEscaper.Replace(search) + "%"
}
