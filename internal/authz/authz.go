// Package authz decides whether a signed-in identity may act on a contact.
//
// Precedence: an explicit assignment must match the caller's own phone; a
// contact with no assignment is open to everyone. Roles (admin included)
// never grant calling rights on their own.
package authz

import (
	"strings"

	"callcenter-go/internal/types"
)

// NormalizePhone keeps only the digits of s.
func NormalizePhone(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Assigned reports whether the contact has an assigned caller.
func Assigned(c types.Contact) bool {
	return NormalizePhone(c.AssignedCallerPhone) != ""
}

// CanCall reports whether identity may start, end or release a call on c.
// Evaluate it against freshly fetched contacts only.
func CanCall(identity types.Profile, c types.Contact) bool {
	assigned := NormalizePhone(c.AssignedCallerPhone)
	if assigned == "" {
		return true
	}
	own := NormalizePhone(identity.Phone)
	return own != "" && own == assigned
}

// Callable returns the subset of contacts identity may call, in order.
func Callable(identity types.Profile, contacts []types.Contact) []types.Contact {
	out := make([]types.Contact, 0, len(contacts))
	for _, c := range contacts {
		if CanCall(identity, c) {
			out = append(out, c)
		}
	}
	return out
}
