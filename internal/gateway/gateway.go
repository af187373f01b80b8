// Package gateway implements C6: the transport boundary between this
// wallet's negotiation driver and the peer wallet / the chain node.
package gateway

import (
	"context"

	"github.com/dwoura/privchain-wallet/internal/txparams"
)

// Message is a bag of (id, value) pairs to ship to the peer — the wire
// form of a TxParameters diff in the original protocol.
type Message struct {
	TxID   txparams.TxID
	PeerID string
	Values map[txparams.ID]any
}

// Gateway is everything the negotiation driver needs from the outside
// world: sending parameters to the peer, registering the built transaction
// with the chain, and asking the node to confirm a kernel.
type Gateway interface {
	SendTxParameters(ctx context.Context, msg Message) error
	RegisterTx(ctx context.Context, txID txparams.TxID, tx any) error
	ConfirmKernel(ctx context.Context, txID txparams.TxID, kernelID []byte) error
	CurrentTip(ctx context.Context) (uint64, error)
}
