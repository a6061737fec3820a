package util

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

// NewULID generates a new ULID string.
// ulid.Make is safe for concurrent use and monotonic within a millisecond.
func NewULID() string {
	return ulid.Make().String()
}

// NewSessionID returns the id that tags a session in logs. TCP sessions also
// use it as the player name on the scoreboard.
func NewSessionID() string {
	return NewULID()
}

// ShortID is the last eight characters of a ULID, enough to tell players
// apart in a scoreboard listing.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return strings.ToLower(id[len(id)-8:])
}
