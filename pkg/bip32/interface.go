package bip32

import (
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
)

// ExtendedKey wraps a BIP-32 extended key node. The key keeper only ever
// needs the EC private key for scalar derivation and the ability to walk
// further down the path; it never needs an on-chain address encoding.
type ExtendedKey interface {
	ECPubKey() (*btcec.PublicKey, error)
	ECPrivKey() (*btcec.PrivateKey, error)
	Derive(index uint32) (ExtendedKey, error)
	IsPrivate() bool
}

// HDWallet derives deterministic child keys from one seed.
type HDWallet interface {
	MasterKey() ExtendedKey
	// DerivePath walks a path like "m/1'/42" from the master key.
	DerivePath(path string) (ExtendedKey, error)
}

var (
	ErrInvalidSeed = errors.New("invalid seed")
	ErrInvalidPath = errors.New("invalid derivation path")
)
