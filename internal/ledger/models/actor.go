package models

import (
	id "tally/pkg/domain"
)

// Scope is the row-visibility predicate computed from an actor. It is applied
// when queries are built, never as a post-fetch filter, so restricted rows
// are not transmitted even transiently.
type Scope struct {
	// All grants unrestricted visibility.
	All bool
	// UserID restricts to purchases owned by this user when All is false.
	UserID id.UserID
}

// ScopeFor computes the visibility predicate for an actor.
func ScopeFor(actor id.Actor) Scope {
	if actor.Role.Unrestricted() {
		return Scope{All: true}
	}
	return Scope{UserID: actor.ID}
}

// Allows reports whether a purchase's owner is visible under this scope.
// Stores use it to keep memory and SQL predicates in agreement.
func (s Scope) Allows(owner *id.UserID) bool {
	if s.All {
		return true
	}
	return owner != nil && *owner == s.UserID
}
