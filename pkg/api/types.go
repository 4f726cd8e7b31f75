// Package api defines the wire types shared by the lockserver HTTP handlers
// and the Go client.
package api

import "time"

// HeaderLockToken carries the holder token on release and renew requests.
const HeaderLockToken = "X-Lock-Token"

// AcquireRequest asks for the lock named in the URL with the given kind
// ("exclusive" or "shared").
type AcquireRequest struct {
	Kind string `json:"kind"`
}

// AcquireResponse reports a granted holding. The token must be presented to
// renew or release it.
type AcquireResponse struct {
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RenewResponse reports the extended lease expiry.
type RenewResponse struct {
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ReleaseResponse acknowledges an explicit release.
type ReleaseResponse struct {
	Name     string `json:"name"`
	Released bool   `json:"released"`
}

// LockStatus is a point-in-time view of one lock name. Kind is "unlocked"
// when no holder exists.
type LockStatus struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	HolderCount int    `json:"holder_count"`
}
