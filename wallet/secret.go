package wallet

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Secret wraps an ed25519 private key behind an opaque type with no default
// string rendering. Every fmt verb prints a redaction marker; the only export
// path for the raw material is the explicit Base58 method used for at-rest
// storage.
type Secret struct {
	key solana.PrivateKey
}

// NewSecret wraps an existing private key.
func NewSecret(key solana.PrivateKey) Secret {
	return Secret{key: key}
}

// NewRandomSecret generates a fresh keypair.
func NewRandomSecret() (Secret, error) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return Secret{}, fmt.Errorf("generate keypair: %w", err)
	}
	return Secret{key: key}, nil
}

// SecretFromBase58 decodes at-rest secret material.
func SecretFromBase58(encoded string) (Secret, error) {
	key, err := solana.PrivateKeyFromBase58(encoded)
	if err != nil {
		return Secret{}, fmt.Errorf("decode secret key: %w", err)
	}
	return Secret{key: key}, nil
}

// Base58 returns the textual encoding of the private key for at-rest storage.
// This is the only accessor exposing secret material; call sites should be
// easy to audit.
func (s Secret) Base58() string {
	return s.key.String()
}

// PublicKey derives the public key from the secret material. The public
// address is never stored independently of this derivation.
func (s Secret) PublicKey() solana.PublicKey {
	return s.key.PublicKey()
}

// Sign signs msg with the private key.
func (s Secret) Sign(msg []byte) ([]byte, error) {
	sig, err := s.key.Sign(msg)
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	return sig[:], nil
}

// IsZero reports whether the secret holds no key material.
func (s Secret) IsZero() bool {
	return len(s.key) == 0
}

// String implements fmt.Stringer without exposing key material.
func (s Secret) String() string { return "[REDACTED]" }

// GoString keeps %#v output free of key material.
func (s Secret) GoString() string { return "wallet.Secret{[REDACTED]}" }

// Format keeps every other fmt verb free of key material.
func (s Secret) Format(f fmt.State, verb rune) {
	fmt.Fprint(f, "[REDACTED]")
}
