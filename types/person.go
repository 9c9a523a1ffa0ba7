package types

import "unicode/utf8"

// PersonID identifies a person (possible owner of objects).
//
// The empty PersonID is reserved: the ownership table uses it to mark free
// objects, and World.AddPerson treats it as a request for an auto-generated id.
type PersonID string

// NoOwner marks a free object in ownership listings.
const NoOwner PersonID = ""

// FreeMarker is the character printed for a free object in ownership strings.
const FreeMarker = '-'

// IsZero reports whether the id is the reserved empty id.
func (p PersonID) IsZero() bool {
	return p == NoOwner
}

// Initial returns the first character of the id, or FreeMarker for NoOwner.
//
// Ownership strings are built from initials, one character per object.
func (p PersonID) Initial() rune {
	if p == NoOwner {
		return FreeMarker
	}
	r, _ := utf8.DecodeRuneInString(string(p))

	return r
}
