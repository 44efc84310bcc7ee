// Package auth verifies department secrets. The comparison strategy is
// an interface so the registry can hold either literal secrets or
// bcrypt hashes without the session layer knowing which.
package auth

import "golang.org/x/crypto/bcrypt"

// Verifier checks a presented secret against the one stored in the
// department registry.
type Verifier interface {
	Verify(stored, presented string) bool
}

// PlainVerifier compares secrets byte for byte.
type PlainVerifier struct{}

func (PlainVerifier) Verify(stored, presented string) bool {
	return stored != "" && stored == presented
}

// BcryptVerifier expects the registry to hold bcrypt hashes.
type BcryptVerifier struct{}

func (BcryptVerifier) Verify(stored, presented string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(presented)) == nil
}

// ForMode returns the verifier selected by configuration; anything but
// "bcrypt" falls back to plain comparison.
func ForMode(mode string) Verifier {
	if mode == "bcrypt" {
		return BcryptVerifier{}
	}
	return PlainVerifier{}
}
