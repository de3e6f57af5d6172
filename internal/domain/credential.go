package domain

import "time"

// CredentialKey is the fixed identifier of the single persisted credential.
// The bot manages exactly one seller identity, so there is never more than
// one record.
const CredentialKey = "bot_auth"

// Credential is the OAuth token pair issued by the marketplace plus the
// bookkeeping needed to decide when it must be refreshed.
type Credential struct {
	AccessToken  string
	RefreshToken string
	// ExpiresIn is the lifetime in seconds declared by the authorization
	// server at issuance.
	ExpiresIn int64
	// SavedAt is the unix-millisecond timestamp stamped by this process when
	// the credential was persisted. It is never taken from the authorization
	// server's clock.
	SavedAt int64
}

// FreshUntil returns the instant after which the credential must be refreshed.
// The skew is subtracted from the declared lifetime so renewal happens before
// the authorization server's own deadline.
func (c Credential) FreshUntil(skew time.Duration) time.Time {
	expiry := c.SavedAt + c.ExpiresIn*1000 - skew.Milliseconds()
	return time.UnixMilli(expiry)
}

// Expired reports whether the credential needs a refresh at the given instant.
// The boundary is inclusive: a credential is expired at exactly FreshUntil.
func (c Credential) Expired(now time.Time, skew time.Duration) bool {
	return !now.Before(c.FreshUntil(skew))
}
