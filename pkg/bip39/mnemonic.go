package bip39

import (
	"fmt"

	bip39lib "github.com/tyler-smith/go-bip39"
)

// MnemonicService wraps BIP-39 mnemonic generation and seed derivation for
// the wallet's single HD seed.
type MnemonicService struct{}

func NewMnemonicService() *MnemonicService {
	return &MnemonicService{}
}

// GenerateMnemonic creates a random mnemonic from bitSize bits of entropy
// (128 => 12 words, 256 => 24 words).
func (s *MnemonicService) GenerateMnemonic(bitSize int) (string, error) {
	entropy, err := bip39lib.NewEntropy(bitSize)
	if err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}
	mnemonic, err := bip39lib.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

func (s *MnemonicService) ValidateMnemonic(mnemonic string) bool {
	return bip39lib.IsMnemonicValid(mnemonic)
}

// MnemonicToSeed derives the BIP-39 seed. passphrase may be empty.
func (s *MnemonicService) MnemonicToSeed(mnemonic, passphrase string) []byte {
	return bip39lib.NewSeed(mnemonic, passphrase)
}
