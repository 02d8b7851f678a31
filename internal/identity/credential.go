package identity

import (
	"strings"
	"time"
)

const (
	CredentialHeader       = "X-Provider-Token"
	CredentialExpiryHeader = "X-Provider-Token-Expiry"
)

// Credential is the mailbox-provider access token obtained at sign-in.
// A zero Expiry means the caller did not report one.
type Credential struct {
	AccessToken string
	Expiry      time.Time
}

// Usable reports whether the credential is present and not expired at now.
func (c Credential) Usable(now time.Time) bool {
	if strings.TrimSpace(c.AccessToken) == "" {
		return false
	}
	if !c.Expiry.IsZero() && !now.Before(c.Expiry) {
		return false
	}
	return true
}

// CredentialFromHeaders builds a credential from request header values.
// An unparsable expiry is treated as already expired.
func CredentialFromHeaders(token string, expiry string) Credential {
	cred := Credential{AccessToken: strings.TrimSpace(token)}
	expiry = strings.TrimSpace(expiry)
	if expiry == "" {
		return cred
	}
	parsed, err := time.Parse(time.RFC3339, expiry)
	if err != nil {
		cred.Expiry = time.Unix(0, 0)
		return cred
	}
	cred.Expiry = parsed
	return cred
}
