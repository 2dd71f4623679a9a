package marketplace

import (
	"strings"

	"github.com/google/uuid"
)

// ItemID identifies an existing listing. The zero value means "no listing":
// submitting with it creates a new one.
//
// Identifiers are opaque. The braced UUID form ("{xxxxxxxx-...}") used by
// older clients is accepted; braces are dropped when the id is placed in a
// URL path.
type ItemID string

// NewItemID returns the canonical braced form of u.
// The nil UUID yields the zero ItemID.
func NewItemID(u uuid.UUID) ItemID {
	if u == uuid.Nil {
		return ""
	}
	return ItemID("{" + u.String() + "}")
}

// ParseItemID normalizes user input. Blank input and the nil UUID (in any
// accepted UUID form) yield the zero ItemID. Anything else is kept verbatim
// after trimming whitespace.
func ParseItemID(s string) ItemID {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if u, err := uuid.Parse(s); err == nil && u == uuid.Nil {
		return ""
	}
	return ItemID(s)
}

// IsZero reports whether the id is absent.
func (id ItemID) IsZero() bool {
	return id == ""
}

// PathSegment returns the id with any enclosing braces removed.
func (id ItemID) PathSegment() string {
	return strings.TrimSuffix(strings.TrimPrefix(string(id), "{"), "}")
}

// String implements fmt.Stringer.
func (id ItemID) String() string {
	return string(id)
}
