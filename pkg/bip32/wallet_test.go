package bip32

import (
	"encoding/hex"
	"testing"

	"github.com/dwoura/privchain-wallet/pkg/bip39"
)

func TestNewMasterKeyFromSeed(t *testing.T) {
	mnemonicService := bip39.NewMnemonicService()
	mnemonic, err := mnemonicService.GenerateMnemonic(128)
	if err != nil {
		t.Fatalf("generate mnemonic: %v", err)
	}
	seed := mnemonicService.MnemonicToSeed(mnemonic, "")

	wallet, err := NewMasterKeyFromSeed(seed)
	if err != nil {
		t.Fatalf("derive master key: %v", err)
	}
	if wallet.MasterKey() == nil {
		t.Fatalf("master key is nil")
	}
	if !wallet.MasterKey().IsPrivate() {
		t.Errorf("master key should be private")
	}
}

func TestNewMasterKeyFromSeedRejectsShortSeed(t *testing.T) {
	if _, err := NewMasterKeyFromSeed([]byte{1, 2, 3}); err != ErrInvalidSeed {
		t.Errorf("got %v, want ErrInvalidSeed", err)
	}
}

func TestDerivePath(t *testing.T) {
	seedHex := "fffcf9f6da3247d8a846f4b6113e617300000000000000000000000000000000"
	seed, err := hex.DecodeString(seedHex[:64])
	if err != nil {
		t.Fatalf("decode test vector seed: %v", err)
	}

	wallet, err := NewMasterKeyFromSeed(seed)
	if err != nil {
		t.Fatalf("derive master key: %v", err)
	}

	for _, path := range []string{"m/0", "m/0'", "m/44'/0'/0'/0/0"} {
		child, err := wallet.DerivePath(path)
		if err != nil {
			t.Errorf("derive path %s: %v", path, err)
			continue
		}
		if child.IsPrivate() != true {
			t.Errorf("path %s: expected a private child key", path)
		}
	}
}

func TestDerivePathSameSegmentsProduceSameKey(t *testing.T) {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i)
	}
	wallet, err := NewMasterKeyFromSeed(seed)
	if err != nil {
		t.Fatalf("derive master key: %v", err)
	}

	a, err := wallet.DerivePath("m/1/2/3")
	if err != nil {
		t.Fatalf("derive a: %v", err)
	}
	b, err := wallet.DerivePath("m/1/2/3")
	if err != nil {
		t.Fatalf("derive b: %v", err)
	}

	pubA, err := a.ECPubKey()
	if err != nil {
		t.Fatalf("pubkey a: %v", err)
	}
	pubB, err := b.ECPubKey()
	if err != nil {
		t.Fatalf("pubkey b: %v", err)
	}
	if !pubA.IsEqual(pubB) {
		t.Errorf("deriving the same path twice produced different keys")
	}
}

func TestDerivePathRejectsInvalidSegment(t *testing.T) {
	seed := make([]byte, 32)
	wallet, err := NewMasterKeyFromSeed(seed)
	if err != nil {
		t.Fatalf("derive master key: %v", err)
	}
	if _, err := wallet.DerivePath("m/not-a-number"); err == nil {
		t.Errorf("expected an error for a non-numeric path segment")
	}
}
