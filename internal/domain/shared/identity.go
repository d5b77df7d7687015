package shared

import "github.com/google/uuid"

// Identity is the acting user as seen by the domain: who is performing the
// operation and whether they hold the privilege level that gates discounts
// and manual rates. It is resolved once at the boundary and passed down;
// domain code never re-derives roles.
type Identity struct {
	UserID     uuid.UUID
	Username   string
	Privileged bool
}

// Anonymous is the zero identity used by internal jobs.
var Anonymous = Identity{}
