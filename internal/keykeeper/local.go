package keykeeper

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/dwoura/privchain-wallet/internal/crypto"
	"github.com/dwoura/privchain-wallet/internal/model"
	"github.com/dwoura/privchain-wallet/pkg/bip32"
)

// Local is the synchronous reference Keeper. It derives coin blinding
// factors and the SBBS signing key from one HD seed, keyed by coin id;
// nonce secrets come from random per-slot seeds persisted in nonce_slots.
// The only secret scalar it returns to its caller is the SBBS key from
// DeriveSbbsKey.
type Local struct {
	db   *gorm.DB
	hd   bip32.HDWallet
}

func NewLocal(db *gorm.DB, hd bip32.HDWallet) *Local {
	return &Local{db: db, hd: hd}
}

// coinSecret derives the blinding scalar for a coin id deterministically:
// recomputing with the same id always yields the same scalar.
func (l *Local) coinSecret(coinID uint64) (crypto.Scalar, error) {
	key, err := l.hd.DerivePath(fmt.Sprintf("m/1'/%d", coinID))
	if err != nil {
		return crypto.Scalar{}, fmt.Errorf("derive coin %d: %w", coinID, err)
	}
	priv, err := key.ECPrivKey()
	if err != nil {
		return crypto.Scalar{}, fmt.Errorf("coin %d priv key: %w", coinID, err)
	}
	return crypto.ScalarFromBytes(priv.Serialize()), nil
}

// excessSum returns Σ output secrets − Σ input secrets, the party's
// contribution to the kernel's aggregated excess (GLOSSARY: Excess).
func (l *Local) excessSum(inputCoinIDs, outputCoinIDs []uint64) (crypto.Scalar, error) {
	var sum crypto.Scalar
	for _, id := range outputCoinIDs {
		s, err := l.coinSecret(id)
		if err != nil {
			return crypto.Scalar{}, err
		}
		sum = crypto.AddScalars(sum, s)
	}
	for _, id := range inputCoinIDs {
		s, err := l.coinSecret(id)
		if err != nil {
			return crypto.Scalar{}, err
		}
		s.Negate()
		sum = crypto.AddScalars(sum, s)
	}
	return sum, nil
}

func (l *Local) DeriveSbbsKey(ownID string) (crypto.Scalar, Status, error) {
	key, err := l.hd.DerivePath("m/2'/0")
	if err != nil {
		return crypto.Scalar{}, StatusUnspecified, err
	}
	priv, err := key.ECPrivKey()
	if err != nil {
		return crypto.Scalar{}, StatusUnspecified, err
	}
	base := crypto.ScalarFromBytes(priv.Serialize())
	return crypto.H(crypto.ScalarBytes(base), []byte(ownID)), StatusOk, nil
}

func (l *Local) GeneratePublicKeys(coinIDs []uint64, createCoinKey bool) ([]crypto.Point, Status, error) {
	out := make([]crypto.Point, 0, len(coinIDs))
	for _, id := range coinIDs {
		s, err := l.coinSecret(id)
		if err != nil {
			return nil, StatusUnspecified, err
		}
		out = append(out, crypto.ScalarBaseMul(s))
	}
	_ = createCoinKey // no distinct code path needed: derivation is identical either way
	return out, StatusOk, nil
}

func (l *Local) GenerateOutputs(schemeHeight uint64, coinIDs []uint64) ([]Output, Status, error) {
	outs := make([]Output, 0, len(coinIDs))
	for _, id := range coinIDs {
		s, err := l.coinSecret(id)
		if err != nil {
			return nil, StatusUnspecified, err
		}
		commitment := crypto.ScalarBaseMul(s)
		// Range proof construction is out of scope; this placeholder is
		// deterministic so re-entrant calls agree.
		proof := crypto.H(crypto.PointBytes(commitment), crypto.ScalarBytes(crypto.ScalarFromBytes([]byte{byte(schemeHeight)})))
		outs = append(outs, Output{CoinID: id, Commitment: commitment, RangeProof: crypto.ScalarBytes(proof)})
	}
	return outs, StatusOk, nil
}

func (l *Local) SignSender(p SignSenderParams) (SignSenderResult, Status, error) {
	excess, err := l.excessSum(p.InputCoinIDs, p.OutputCoinIDs)
	if err != nil {
		return SignSenderResult{}, StatusUnspecified, err
	}
	offset, err := l.deriveOffset(p.NonceSlot)
	if err != nil {
		return SignSenderResult{}, StatusUnspecified, err
	}
	nonceSecret, err := l.deriveNonceSecret(p.NonceSlot)
	if err != nil {
		return SignSenderResult{}, StatusUnspecified, err
	}

	publicExcess := crypto.ScalarBaseMul(excess)
	publicNonce := crypto.ScalarBaseMul(nonceSecret)

	if p.Initial {
		return SignSenderResult{
			PublicExcess: publicExcess,
			PublicNonce:  publicNonce,
			Offset:       offset,
		}, StatusOk, nil
	}

	x := crypto.AddPoints(publicExcess, p.PeerExcess)
	r := crypto.AddPoints(publicNonce, p.PeerNonce)
	c := crypto.Challenge(x, r, p.KernelID)
	partial := crypto.PartialSign(excess, nonceSecret, c)

	return SignSenderResult{
		PublicExcess: publicExcess,
		PublicNonce:  publicNonce,
		PartialSig:   partial,
		Offset:       offset,
	}, StatusOk, nil
}

func (l *Local) SignReceiver(p SignReceiverParams) (SignReceiverResult, Status, error) {
	excess, err := l.excessSum(p.InputCoinIDs, p.OutputCoinIDs)
	if err != nil {
		return SignReceiverResult{}, StatusUnspecified, err
	}
	nonceSecret, err := l.deriveNonceSecret(p.NonceSlot)
	if err != nil {
		return SignReceiverResult{}, StatusUnspecified, err
	}

	publicExcess := crypto.ScalarBaseMul(excess)
	publicNonce := crypto.ScalarBaseMul(nonceSecret)

	x := crypto.AddPoints(publicExcess, p.PeerExcess)
	r := crypto.AddPoints(publicNonce, p.PeerNonce)
	kernelID := crypto.KernelID(x, r, p.KernelFee, p.MinHeight, p.MaxHeight, p.AssetID)

	c := crypto.Challenge(x, r, kernelID)
	partial := crypto.PartialSign(excess, nonceSecret, c)

	sbbs, status, err := l.DeriveSbbsKey(p.MyWalletID)
	if err != nil || status != StatusOk {
		return SignReceiverResult{}, status, err
	}
	proofSig, proofNonce := crypto.SignPaymentProof(sbbs, kernelID, p.Amount, p.SenderPK)

	return SignReceiverResult{
		PublicExcess:      publicExcess,
		PublicNonce:       publicNonce,
		PartialSig:        partial,
		KernelID:          kernelID,
		PaymentProofSig:   proofSig,
		PaymentProofNonce: proofNonce,
	}, StatusOk, nil
}

func (l *Local) SignAssetKernel(p SignAssetKernelParams) (SignAssetKernelResult, Status, error) {
	excess, err := l.excessSum(p.CoinIDs, nil)
	if err != nil {
		return SignAssetKernelResult{}, StatusUnspecified, err
	}
	nonceSecret, err := l.deriveNonceSecret(p.NonceSlot)
	if err != nil {
		return SignAssetKernelResult{}, StatusUnspecified, err
	}
	publicExcess := crypto.ScalarBaseMul(excess)
	publicNonce := crypto.ScalarBaseMul(nonceSecret)
	c := crypto.Challenge(publicExcess, publicNonce, crypto.ScalarBytes(crypto.ScalarFromBytes([]byte{byte(p.AssetID)})))
	sig := crypto.PartialSign(excess, nonceSecret, c)
	return SignAssetKernelResult{PublicExcess: publicExcess, PublicNonce: publicNonce, Signature: sig}, StatusOk, nil
}

// AllocateNonceSlot creates a new persisted slot with a random seed and
// returns its index. The slot's UseCount column is neither read nor updated
// by this keeper, so a second signature with the same slot is not refused.
func (l *Local) AllocateNonceSlot() (uint64, Status, error) {
	seed, err := crypto.RandomScalar()
	if err != nil {
		return 0, StatusUnspecified, err
	}
	row := model.NonceSlot{Seed: crypto.ScalarBytes(seed)}
	if err := l.db.Create(&row).Error; err != nil {
		return 0, StatusUnspecified, fmt.Errorf("persist nonce slot: %w", err)
	}
	return row.Index, StatusOk, nil
}

func (l *Local) GenerateNonce(slot uint64) (crypto.Point, Status, error) {
	secret, err := l.deriveNonceSecret(slot)
	if err != nil {
		return crypto.Point{}, StatusUnspecified, err
	}
	return crypto.ScalarBaseMul(secret), StatusOk, nil
}

func (l *Local) deriveNonceSecret(slot uint64) (crypto.Scalar, error) {
	var row model.NonceSlot
	if err := l.db.First(&row, slot).Error; err != nil {
		return crypto.Scalar{}, fmt.Errorf("load nonce slot %d: %w", slot, err)
	}
	return crypto.ScalarFromBytes(row.Seed), nil
}

func (l *Local) deriveOffset(slot uint64) (crypto.Scalar, error) {
	secret, err := l.deriveNonceSecret(slot)
	if err != nil {
		return crypto.Scalar{}, err
	}
	return crypto.H(crypto.ScalarBytes(secret), []byte("offset")), nil
}
