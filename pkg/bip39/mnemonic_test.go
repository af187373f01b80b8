package bip39

import (
	"encoding/hex"
	"testing"
)

func TestGenerateMnemonic(t *testing.T) {
	service := NewMnemonicService()

	mnemonic12, err := service.GenerateMnemonic(128)
	if err != nil {
		t.Fatalf("generate 12-word mnemonic: %v", err)
	}
	if !service.ValidateMnemonic(mnemonic12) {
		t.Errorf("generated 12-word mnemonic is invalid")
	}

	mnemonic24, err := service.GenerateMnemonic(256)
	if err != nil {
		t.Fatalf("generate 24-word mnemonic: %v", err)
	}
	if !service.ValidateMnemonic(mnemonic24) {
		t.Errorf("generated 24-word mnemonic is invalid")
	}
}

func TestMnemonicToSeed(t *testing.T) {
	service := NewMnemonicService()

	mnemonic := "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	expectedSeedHex := "5eb00bbddcf069084889a8ab9155568165f5c453ccb85e70811aaed6f6da5fc19a5ac40b389cd370d086206dec8aa6c43daea6690f20ad3d8d48b2d2ce9e38e4"

	if !service.ValidateMnemonic(mnemonic) {
		t.Fatalf("test vector mnemonic is invalid")
	}

	seed := service.MnemonicToSeed(mnemonic, "")
	seedHex := hex.EncodeToString(seed)
	if seedHex != expectedSeedHex {
		t.Errorf("got seed %s, want %s", seedHex, expectedSeedHex)
	}
}

func TestValidateMnemonicInvalid(t *testing.T) {
	service := NewMnemonicService()

	invalidMnemonic := "hello world invalid mnemonic phrase designed to fail validation check"
	if service.ValidateMnemonic(invalidMnemonic) {
		t.Errorf("expected validation to fail for a non-wordlist phrase")
	}
}
