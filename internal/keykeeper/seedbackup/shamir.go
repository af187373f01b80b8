// Package seedbackup splits and recovers the wallet's HD seed across
// multiple custodians, keeping a recovery path available without
// introducing a new transaction type.
package seedbackup

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/hashicorp/vault/shamir"
)

// Split breaks seedHex into parts shares, threshold of which are needed to
// recover it.
func Split(seedHex string, parts, threshold int) ([]string, error) {
	seedHex = strings.TrimPrefix(seedHex, "0x")
	secret, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, fmt.Errorf("invalid seed hex: %w", err)
	}

	shares, err := shamir.Split(secret, parts, threshold)
	if err != nil {
		return nil, fmt.Errorf("split seed: %w", err)
	}

	out := make([]string, 0, len(shares))
	for _, share := range shares {
		out = append(out, hex.EncodeToString(share))
	}
	return out, nil
}

// Recover reassembles the seed from at least `threshold` shares produced by Split.
func Recover(sharesHex []string) (string, error) {
	shares := make([][]byte, 0, len(sharesHex))
	for _, s := range sharesHex {
		s = strings.TrimPrefix(s, "0x")
		b, err := hex.DecodeString(s)
		if err != nil {
			return "", fmt.Errorf("invalid share hex: %w", err)
		}
		shares = append(shares, b)
	}

	secret, err := shamir.Combine(shares)
	if err != nil {
		return "", fmt.Errorf("combine shares: %w", err)
	}
	return hex.EncodeToString(secret), nil
}
