package txbuilder

import (
	"github.com/dwoura/privchain-wallet/internal/crypto"
)

// KernelID re-exports crypto.KernelID for callers within this package; the
// computation itself lives in crypto so the key keeper can derive the same
// id without importing txbuilder.
func KernelID(x, r crypto.Point, fee, minHeight, maxHeight, assetID uint64) []byte {
	return crypto.KernelID(x, r, fee, minHeight, maxHeight, assetID)
}
