package bip32

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
)

// keychainKey implements ExtendedKey over hdkeychain.
type keychainKey struct {
	key *hdkeychain.ExtendedKey
}

func (k *keychainKey) ECPubKey() (*btcec.PublicKey, error) { return k.key.ECPubKey() }
func (k *keychainKey) ECPrivKey() (*btcec.PrivateKey, error) { return k.key.ECPrivKey() }
func (k *keychainKey) IsPrivate() bool                      { return k.key.IsPrivate() }

func (k *keychainKey) Derive(index uint32) (ExtendedKey, error) {
	child, err := k.key.Derive(index)
	if err != nil {
		return nil, fmt.Errorf("derive child key: %w", err)
	}
	return &keychainKey{key: child}, nil
}

// Wallet is the HDWallet used by the key keeper to derive every coin
// blinding secret and the SBBS key from one seed.
type Wallet struct {
	masterKey *keychainKey
}

// NewMasterKeyFromSeed builds a master key from a BIP-39 seed. The network
// parameter only affects version bytes on a serialized string form, which
// this wallet never produces, so MainNetParams is fine for any deployment.
func NewMasterKeyFromSeed(seed []byte) (*Wallet, error) {
	if len(seed) < 16 || len(seed) > 64 {
		return nil, ErrInvalidSeed
	}
	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("derive master key: %w", err)
	}
	return &Wallet{masterKey: &keychainKey{key: master}}, nil
}

func (w *Wallet) MasterKey() ExtendedKey { return w.masterKey }

// DerivePath walks "m/1'/42"-style paths; a trailing "'" or "h" marks a
// hardened index.
func (w *Wallet) DerivePath(path string) (ExtendedKey, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == "m" {
		return w.masterKey, nil
	}
	if strings.HasPrefix(path, "m/") {
		path = path[2:]
	}

	var current ExtendedKey = w.masterKey
	for _, segment := range strings.Split(path, "/") {
		hardened := strings.HasSuffix(segment, "'") || strings.HasSuffix(segment, "h")
		if hardened {
			segment = segment[:len(segment)-1]
		}
		val, err := strconv.ParseUint(segment, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: segment %q", ErrInvalidPath, segment)
		}
		index := uint32(val)
		if hardened {
			index += hdkeychain.HardenedKeyStart
		}
		next, err := current.Derive(index)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}
