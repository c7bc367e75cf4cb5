package model

import "strings"

// SplitQuery splits a search query into case folded tokens. An item matches
// the query when any token is a substring of its title.
func SplitQuery(query string) []string {
	if query == "" {
		return nil
	}

	tokens := strings.Split(query, "|")
	for i, t := range tokens {
		tokens[i] = strings.ToLower(t)
	}

	return tokens
}
