package crypto

import "testing"

func TestCommitDeterministic(t *testing.T) {
	blinding, err := RandomScalar()
	if err != nil {
		t.Fatalf("random scalar: %v", err)
	}

	c1 := Commit(100, blinding)
	c2 := Commit(100, blinding)
	c1.ToAffine()
	c2.ToAffine()
	if !c1.X.Equals(&c2.X) || !c1.Y.Equals(&c2.Y) {
		t.Errorf("Commit is not deterministic for the same value/blinding")
	}

	other := Commit(101, blinding)
	other.ToAffine()
	if c1.X.Equals(&other.X) && c1.Y.Equals(&other.Y) {
		t.Errorf("Commit produced the same point for different values")
	}
}

func TestPointBytesRoundTrip(t *testing.T) {
	k, err := RandomScalar()
	if err != nil {
		t.Fatalf("random scalar: %v", err)
	}
	p := ScalarBaseMul(k)

	encoded := PointBytes(p)
	decoded, err := PointFromBytes(encoded)
	if err != nil {
		t.Fatalf("parse point: %v", err)
	}

	p.ToAffine()
	decoded.ToAffine()
	if !p.X.Equals(&decoded.X) || !p.Y.Equals(&decoded.Y) {
		t.Errorf("point did not round-trip through PointBytes/PointFromBytes")
	}
}

func TestPartialSignAggregatesToValidSchnorrSignature(t *testing.T) {
	excessMe, err := RandomScalar()
	if err != nil {
		t.Fatalf("random scalar: %v", err)
	}
	excessPeer, err := RandomScalar()
	if err != nil {
		t.Fatalf("random scalar: %v", err)
	}
	nonceMe, err := RandomScalar()
	if err != nil {
		t.Fatalf("random scalar: %v", err)
	}
	noncePeer, err := RandomScalar()
	if err != nil {
		t.Fatalf("random scalar: %v", err)
	}

	x := AddPoints(ScalarBaseMul(excessMe), ScalarBaseMul(excessPeer))
	r := AddPoints(ScalarBaseMul(nonceMe), ScalarBaseMul(noncePeer))
	kernelID := []byte("test-kernel-id")

	c := Challenge(x, r, kernelID)
	sMe := PartialSign(excessMe, nonceMe, c)
	sPeer := PartialSign(excessPeer, noncePeer, c)
	s := AddScalars(sMe, sPeer)

	if !VerifySchnorr(s, r, x, kernelID) {
		t.Errorf("aggregated signature failed to verify")
	}

	sMeWrongNonce := PartialSign(excessMe, nonceMe, AddScalars(c, c))
	if VerifySchnorr(AddScalars(sMeWrongNonce, sPeer), r, x, kernelID) {
		t.Errorf("signature verified against a mismatched challenge")
	}
}

func TestKernelIDAgreesRegardlessOfComputingSide(t *testing.T) {
	x := ScalarBaseMul(ScalarFromBytes([]byte("excess")))
	r := ScalarBaseMul(ScalarFromBytes([]byte("nonce")))

	senderSide := KernelID(x, r, 100, 10, 20, 0)
	receiverSide := KernelID(x, r, 100, 10, 20, 0)
	if string(senderSide) != string(receiverSide) {
		t.Errorf("kernel id diverged between independent computations of the same inputs")
	}

	changedFee := KernelID(x, r, 101, 10, 20, 0)
	if string(senderSide) == string(changedFee) {
		t.Errorf("kernel id did not change when fee changed")
	}
}

func TestPaymentProofRoundTrip(t *testing.T) {
	sbbsKey, err := RandomScalar()
	if err != nil {
		t.Fatalf("random scalar: %v", err)
	}
	kernelID := []byte("kernel")
	senderPK := []byte("sender-pubkey")

	sig, nonce := SignPaymentProof(sbbsKey, kernelID, 500, senderPK)
	receiverPub := ScalarBaseMul(sbbsKey)

	if !VerifyPaymentProof(sig, nonce, receiverPub, kernelID, 500, senderPK) {
		t.Errorf("payment proof failed to verify against the signing key's own public key")
	}
	if VerifyPaymentProof(sig, nonce, receiverPub, kernelID, 501, senderPK) {
		t.Errorf("payment proof verified against a different bound amount")
	}
}
