// Package address defines the recipient address used throughout the reward
// ledger. Addresses are P2PKH base58check strings; parsing validates the
// checksum so a typo never becomes a registered asset.
package address

import (
	"fmt"

	"github.com/bsv-blockchain/go-sdk/script"
)

// HashSize is the length of a public key hash.
const HashSize = 20

// Address is a validated base58check address string.
type Address string

// Parse validates s and returns it as an Address.
func Parse(s string) (Address, error) {
	addr, err := script.NewAddressFromString(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrInvalidAddress, s, err)
	}
	return Address(addr.AddressString), nil
}

// Networks accepted by ParseNetwork. Testnet and regtest share a version
// byte.
const (
	Mainnet = "mainnet"
	Testnet = "testnet"
	Regtest = "regtest"
)

// ParseNetwork is Parse that also rejects addresses encoded for a network
// other than network.
func ParseNetwork(s, network string) (Address, error) {
	if network != Mainnet && network != Testnet && network != Regtest {
		return "", fmt.Errorf("%w: %q", ErrUnknownNetwork, network)
	}
	a, err := Parse(s)
	if err != nil {
		return "", err
	}
	hash, err := a.PubKeyHash()
	if err != nil {
		return "", err
	}
	want, err := script.NewAddressFromPublicKeyHash(hash, network == Mainnet)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	if want.AddressString != s {
		return "", fmt.Errorf("%w: %s is not a %s address", ErrWrongNetwork, s, network)
	}
	return a, nil
}

// MustParse is Parse for tests and constants; it panics on error.
func MustParse(s string) Address {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromPubKeyHash returns the mainnet address for a 20-byte public key hash.
func FromPubKeyHash(hash []byte) (Address, error) {
	if len(hash) != HashSize {
		return "", fmt.Errorf("%w: got %d bytes", ErrInvalidHash, len(hash))
	}
	addr, err := script.NewAddressFromPublicKeyHash(hash, true)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return Address(addr.AddressString), nil
}

// FromSeed derives a deterministic address whose hash is seed repeated.
// Intended for fixtures.
func FromSeed(seed byte) Address {
	hash := make([]byte, HashSize)
	for i := range hash {
		hash[i] = seed
	}
	a, err := FromPubKeyHash(hash)
	if err != nil {
		panic(err)
	}
	return a
}

// PubKeyHash returns the 20-byte hash encoded in the address.
func (a Address) PubKeyHash() ([]byte, error) {
	addr, err := script.NewAddressFromString(string(a))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return []byte(addr.PublicKeyHash), nil
}

// String implements fmt.Stringer.
func (a Address) String() string { return string(a) }

// IsZero reports whether a is the empty address.
func (a Address) IsZero() bool { return a == "" }
