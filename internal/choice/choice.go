// Package choice resolves enum-like option values by unambiguous
// prefix, so --order n means natural and --verify c means checker.
package choice

import (
	"fmt"
	"strings"
)

// Error reports a prefix that did not resolve to exactly one
// candidate. It is a configuration-time failure: nothing has run yet.
type Error struct {
	Given      string
	Candidates []string
	Matches    []string
}

func (e *Error) Error() string {
	if len(e.Matches) > 1 {
		return fmt.Sprintf("ambiguous option %q: matches %s",
			e.Given, strings.Join(e.Matches, ", "))
	}
	return fmt.Sprintf("unknown option %q: expected one of %s",
		e.Given, strings.Join(e.Candidates, ", "))
}

// Resolve returns the single candidate that given is a prefix of.
// An exact match always wins, even when it is also a proper prefix of
// another candidate. An empty string, a string matching nothing, or a
// prefix shared by several candidates yields an *Error.
func Resolve(given string, candidates []string) (string, error) {
	var matches []string
	for _, c := range candidates {
		if given == c {
			return c, nil
		}
		if given != "" && strings.HasPrefix(c, given) {
			matches = append(matches, c)
		}
	}
	if len(matches) == 1 {
		return matches[0], nil
	}
	return "", &Error{Given: given, Candidates: candidates, Matches: matches}
}
