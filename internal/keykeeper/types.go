// Package keykeeper implements C2: an oracle for scalars/points/signatures
// that never exposes private material to its caller. Local is the
// synchronous reference implementation; Threaded wraps any Local-shaped
// keeper with a worker-goroutine/wake-channel pattern, grounded one-for-one
// on ThreadedPrivateKeyKeeper in the original source.
package keykeeper

import (
	"github.com/dwoura/privchain-wallet/internal/crypto"
)

// Status mirrors IPrivateKeyKeeper2::Status::Type.
type Status int

const (
	StatusOk Status = iota
	StatusInProgress
	StatusUserAbort
	StatusUnspecified
	StatusDeviceLost
)

// Output is a single output blob: a commitment plus an opaque range-proof
// payload (range proof construction itself is out of scope here; the
// payload is a deterministic placeholder derived from the commitment so
// tests can assert structure without a real bulletproof backend).
type Output struct {
	CoinID     uint64
	Commitment crypto.Point
	RangeProof []byte
}

// SignSenderParams is the input to SignSender. InputCoinIDs
// and OutputCoinIDs never leave this party's process: the keeper derives
// each coin's blinding secret internally from the HD seed and sums them,
// so the caller only ever learns public commitments/points, never a secret.
type SignSenderParams struct {
	Initial      bool
	NonceSlot    uint64
	InputCoinIDs []uint64
	OutputCoinIDs []uint64
	KernelFee    uint64
	MinHeight    uint64
	MaxHeight    uint64
	AssetID      uint64
	PeerExcess   crypto.Point // only used when !Initial
	PeerNonce    crypto.Point // only used when !Initial
	KernelID     []byte       // only used when !Initial
}

// SignSenderResult is the output of SignSender.
type SignSenderResult struct {
	PublicExcess crypto.Point
	PublicNonce  crypto.Point
	PartialSig   crypto.Scalar // zero value when Initial
	Offset       crypto.Scalar
}

// SignReceiverParams is the input to SignReceiver.
type SignReceiverParams struct {
	NonceSlot     uint64
	InputCoinIDs  []uint64
	OutputCoinIDs []uint64
	KernelFee     uint64
	MinHeight     uint64
	MaxHeight     uint64
	AssetID       uint64
	PeerExcess    crypto.Point
	PeerNonce     crypto.Point
	Amount        uint64
	SenderPK      []byte
	MyWalletID    string
}

// SignReceiverResult is the output of SignReceiver.
type SignReceiverResult struct {
	PublicExcess   crypto.Point
	PublicNonce    crypto.Point
	PartialSig     crypto.Scalar
	KernelID       []byte
	PaymentProofSig crypto.Scalar
	PaymentProofNonce crypto.Point
}

// SignAssetKernelParams/Result are analogous to SignSender, for asset
// control kernels.
type SignAssetKernelParams struct {
	AssetID  uint64
	CoinIDs  []uint64
	NonceSlot uint64
}

type SignAssetKernelResult struct {
	PublicExcess crypto.Point
	PublicNonce  crypto.Point
	Signature    crypto.Scalar
}

// Keeper is the synchronous capability surface. Every
// operation here has a mechanically derivable asynchronous shape (Async);
// Local implements Keeper directly, Threaded implements Async in terms of
// it on a worker goroutine.
type Keeper interface {
	DeriveSbbsKey(ownID string) (crypto.Scalar, Status, error)
	GeneratePublicKeys(coinIDs []uint64, createCoinKey bool) ([]crypto.Point, Status, error)
	GenerateOutputs(schemeHeight uint64, coinIDs []uint64) ([]Output, Status, error)
	SignSender(p SignSenderParams) (SignSenderResult, Status, error)
	SignReceiver(p SignReceiverParams) (SignReceiverResult, Status, error)
	SignAssetKernel(p SignAssetKernelParams) (SignAssetKernelResult, Status, error)
	AllocateNonceSlot() (uint64, Status, error)
	GenerateNonce(slot uint64) (crypto.Point, Status, error)
}
