package domain

import (
	"fmt"
	"strings"
)

// AccessLevel controls which audience may view a document.
// Values include AccessOwnerOnly, AccessARCReview, AccessCommunityPublic,
// AccessBoardOnly, and AccessStaffOnly. There is no ordering among levels.
type AccessLevel string

const (
	AccessOwnerOnly       AccessLevel = "owner_only"
	AccessARCReview       AccessLevel = "arc_review"
	AccessCommunityPublic AccessLevel = "community_public"
	AccessBoardOnly       AccessLevel = "board_only"
	AccessStaffOnly       AccessLevel = "staff_only"
)

// AccessLevels lists every valid access level.
var AccessLevels = []AccessLevel{
	AccessOwnerOnly,
	AccessARCReview,
	AccessCommunityPublic,
	AccessBoardOnly,
	AccessStaffOnly,
}

// ParseAccessLevel converts a raw string into an AccessLevel.
// Parameters:
//   - s: access level name, compared case-insensitively after trimming.
// Returns:
//   - AccessLevel: the matching level.
//   - error: non-nil if s names no known level.
func ParseAccessLevel(s string) (AccessLevel, error) {
	normalized := AccessLevel(strings.ToLower(strings.TrimSpace(s)))
	for _, level := range AccessLevels {
		if level == normalized {
			return level, nil
		}
	}
	return "", fmt.Errorf("unknown access level %q", s)
}

// Valid reports whether l is one of the closed set of access levels.
func (l AccessLevel) Valid() bool {
	for _, level := range AccessLevels {
		if level == l {
			return true
		}
	}
	return false
}

func (l AccessLevel) String() string {
	return string(l)
}
