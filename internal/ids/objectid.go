package ids

import "regexp"

// Upstream records are keyed by Mongo ObjectIds. Identifiers coming from
// cached session state are checked against this shape before any network call
// so that stale or malformed cache entries fail locally.
var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// IsObjectID reports whether s is a 24-character hex identifier.
func IsObjectID(s string) bool {
	return objectIDPattern.MatchString(s)
}
