package types

import "time"

// a holder is one granted lease on a named lock
// the token is opaque to the server and must be presented to renew or release
// after ExpiresAt passes the sweeper reclaims the holding without a release
type Holder struct {
	Token     string
	Kind      LockKind
	ExpiresAt time.Time
}

// reports whether the lease has lapsed at the given instant
func (h *Holder) IsExpired(now time.Time) bool {
	return !h.ExpiresAt.After(now)
}
