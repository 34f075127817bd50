package validators

import (
	"context"
	"errors"
	"net"
	"net/mail"
	"strings"
)

var ErrInvalidEmail = errors.New("invalid email")

// Resolver is the subset of *net.Resolver used for domain checks.
type Resolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// NormalizeEmail lower-cases and trims email and rejects anything that is
// not a bare address.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || strings.LastIndex(email, "@") == len(email)-1 {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// IsEmailDomainValid reports whether the domain of email has an MX record
// or, failing that, resolves to an address.
func IsEmailDomainValid(ctx context.Context, r Resolver, email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}

	domain := email[at+1:]

	if mx, err := r.LookupMX(ctx, domain); err == nil && len(mx) > 0 {
		return true
	}

	if ips, err := r.LookupIPAddr(ctx, domain); err == nil && len(ips) > 0 {
		return true
	}

	return false
}
