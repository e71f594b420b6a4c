package signer

import "io"

// Signer produces detached signatures for release artifacts
type Signer interface {
	// SignReader writes an armored detached signature over everything read from r
	SignReader(w io.Writer, r io.Reader) error

	// GetPublicKey returns the armored public key
	GetPublicKey() ([]byte, error)
}
