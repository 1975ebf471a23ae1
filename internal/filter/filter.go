// Package filter decides which extracted messages are retained for storage.
package filter

import "strings"

// Skip reports whether a message carrying the given label list should be
// excluded from the output database. Labels are matched case-insensitively
// by substring, so "Inbox, Spam" and "spam" both count as spam.
//
// includeBoth overrides the individual toggles and retains everything.
// A message matching neither "spam" nor "trash" is never skipped.
func Skip(labels string, includeSpam, includeTrash, includeBoth bool) bool {
	if includeBoth {
		return false
	}

	lower := strings.ToLower(labels)
	if strings.Contains(lower, "spam") && !includeSpam {
		return true
	}
	if strings.Contains(lower, "trash") && !includeTrash {
		return true
	}
	return false
}
