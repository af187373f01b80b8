package keykeeper

import (
	"testing"

	"github.com/dwoura/privchain-wallet/internal/crypto"
	"github.com/dwoura/privchain-wallet/pkg/bip32"
)

func newTestLocal(t *testing.T) *Local {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i + 1)
	}
	wallet, err := bip32.NewMasterKeyFromSeed(seed)
	if err != nil {
		t.Fatalf("derive master key: %v", err)
	}
	return NewLocal(nil, wallet)
}

func TestCoinSecretIsDeterministic(t *testing.T) {
	l := newTestLocal(t)

	a, err := l.coinSecret(42)
	if err != nil {
		t.Fatalf("coinSecret: %v", err)
	}
	b, err := l.coinSecret(42)
	if err != nil {
		t.Fatalf("coinSecret: %v", err)
	}
	if !a.Equals(&b) {
		t.Errorf("coinSecret(42) returned different scalars across calls")
	}

	c, err := l.coinSecret(43)
	if err != nil {
		t.Fatalf("coinSecret: %v", err)
	}
	if a.Equals(&c) {
		t.Errorf("coinSecret produced the same scalar for two different coin ids")
	}
}

func TestExcessSumCancelsMatchingInputsAndOutputs(t *testing.T) {
	l := newTestLocal(t)

	sum, err := l.excessSum([]uint64{1, 2}, []uint64{1, 2})
	if err != nil {
		t.Fatalf("excessSum: %v", err)
	}
	if !sum.IsZero() {
		t.Errorf("excessSum of matching input/output coin sets should be zero")
	}
}

func TestExcessSumIsInputsNegatedPlusOutputs(t *testing.T) {
	l := newTestLocal(t)

	outputOnly, err := l.excessSum(nil, []uint64{7})
	if err != nil {
		t.Fatalf("excessSum: %v", err)
	}
	inputOnly, err := l.excessSum([]uint64{7}, nil)
	if err != nil {
		t.Fatalf("excessSum: %v", err)
	}

	sum := crypto.AddScalars(outputOnly, inputOnly)
	if !sum.IsZero() {
		t.Errorf("output-only and input-only excess of the same coin id should cancel")
	}
}

func TestDeriveSbbsKeyVariesByWalletID(t *testing.T) {
	l := newTestLocal(t)

	a, status, err := l.DeriveSbbsKey("wallet-a")
	if err != nil || status != StatusOk {
		t.Fatalf("DeriveSbbsKey: status=%v err=%v", status, err)
	}
	b, status, err := l.DeriveSbbsKey("wallet-b")
	if err != nil || status != StatusOk {
		t.Fatalf("DeriveSbbsKey: status=%v err=%v", status, err)
	}
	if a.Equals(&b) {
		t.Errorf("DeriveSbbsKey produced the same key for two different wallet ids")
	}
}

func TestGeneratePublicKeysMatchesCoinSecret(t *testing.T) {
	l := newTestLocal(t)

	pubs, status, err := l.GeneratePublicKeys([]uint64{5, 6}, false)
	if err != nil || status != StatusOk {
		t.Fatalf("GeneratePublicKeys: status=%v err=%v", status, err)
	}
	if len(pubs) != 2 {
		t.Fatalf("got %d public keys, want 2", len(pubs))
	}

	secret, err := l.coinSecret(5)
	if err != nil {
		t.Fatalf("coinSecret: %v", err)
	}
	want := crypto.ScalarBaseMul(secret)
	want.ToAffine()
	got := pubs[0]
	got.ToAffine()
	if !got.X.Equals(&want.X) || !got.Y.Equals(&want.Y) {
		t.Errorf("GeneratePublicKeys[0] did not match ScalarBaseMul(coinSecret(5))")
	}
}
