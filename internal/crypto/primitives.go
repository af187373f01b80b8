// Package crypto implements the primitives the negotiation protocol treats
// as black boxes: scalar field, group with generator G, hash-to-scalar H,
// Pedersen commitment, and the Schnorr verify predicate used by the builder.
package crypto

import (
	"crypto/rand"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"lukechampine.com/blake3"
)

// Scalar is an element of the secp256k1 scalar field.
type Scalar = secp256k1.ModNScalar

// Point is a group element in Jacobian form, kept non-normalized between
// operations the way the underlying curve package prefers.
type Point = secp256k1.JacobianPoint

// RandomScalar draws a uniformly random non-zero scalar.
func RandomScalar() (Scalar, error) {
	for {
		var buf [32]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return Scalar{}, fmt.Errorf("random scalar: %w", err)
		}
		var s Scalar
		overflow := s.SetBytes(&buf)
		if overflow == 0 && !s.IsZero() {
			return s, nil
		}
	}
}

// ScalarFromBytes reduces an arbitrary-length byte string into a scalar.
func ScalarFromBytes(b []byte) Scalar {
	var s Scalar
	s.SetByteSlice(b)
	return s
}

// AddScalars returns a+b.
func AddScalars(a, b Scalar) Scalar {
	r := a
	r.Add(&b)
	return r
}

// MulScalars returns a*b.
func MulScalars(a, b Scalar) Scalar {
	r := a
	r.Mul(&b)
	return r
}

// G returns the curve's base point.
func G() Point {
	var one Scalar
	one.SetInt(1)
	var p Point
	secp256k1.ScalarBaseMultNonConst(&one, &p)
	return p
}

// pedersenH is the second Pedersen generator, derived deterministically as
// k·G with k the hash of a fixed domain tag, so both parties always agree on it without
// needing a separately-audited NUMS point baked into the binary.
var pedersenHCache *Point

func pedersenH() Point {
	if pedersenHCache != nil {
		return *pedersenHCache
	}
	k := ScalarFromBytes(blake3Hash([]byte("privchain-wallet/pedersen-h")))
	var p Point
	secp256k1.ScalarBaseMultNonConst(&k, &p)
	pedersenHCache = &p
	return p
}

// ScalarMul returns k*P.
func ScalarMul(k Scalar, p Point) Point {
	var r Point
	secp256k1.ScalarMultNonConst(&k, &p, &r)
	return r
}

// ScalarBaseMul returns k*G.
func ScalarBaseMul(k Scalar) Point {
	var r Point
	secp256k1.ScalarBaseMultNonConst(&k, &r)
	return r
}

// AddPoints returns p1+p2.
func AddPoints(p1, p2 Point) Point {
	var r Point
	secp256k1.AddNonConst(&p1, &p2, &r)
	return r
}

// Commit builds a Pedersen commitment value*H + blinding*G.
func Commit(value uint64, blinding Scalar) Point {
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(value >> (8 * (7 - i)))
	}
	v := ScalarFromBytes(buf[:])
	vh := ScalarMul(v, pedersenH())
	bg := ScalarBaseMul(blinding)
	return AddPoints(vh, bg)
}

func blake3Hash(data ...[]byte) []byte {
	h := blake3.New(32, nil)
	for _, d := range data {
		_, _ = h.Write(d)
	}
	return h.Sum(nil)
}

// H is the hash-to-scalar primitive used throughout: blake3 over the
// concatenation of its inputs, reduced mod the group order.
func H(data ...[]byte) Scalar {
	return ScalarFromBytes(blake3Hash(data...))
}

// PointBytes returns the compressed encoding of a point, used both for
// wire transmission and as H() input material.
func PointBytes(p Point) []byte {
	p.ToAffine()
	x := p.X
	y := p.Y
	pub := secp256k1.NewPublicKey(&x, &y)
	return pub.SerializeCompressed()
}

// PointFromBytes parses a compressed point.
func PointFromBytes(b []byte) (Point, error) {
	pub, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return Point{}, fmt.Errorf("parse point: %w", err)
	}
	var p Point
	pub.AsJacobian(&p)
	return p, nil
}

// ScalarBytes returns the 32-byte big-endian encoding of a scalar.
func ScalarBytes(s Scalar) []byte {
	b := s.Bytes()
	return b[:]
}
