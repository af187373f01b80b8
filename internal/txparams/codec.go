package txparams

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Codec turns a Go value into the length-prefixed byte buffer the store
// persists, and back. Deserialisation failures are surfaced the same way
// as an absent key (MissingParameter), never as a hard panic.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(b []byte) (any, error)
}

// codecs is the runtime Kind -> Codec registry.
var codecs = map[ID]Codec{}

func registerCodec(ids []ID, c Codec) {
	for _, id := range ids {
		codecs[id] = c
	}
}

func init() {
	registerCodec([]ID{
		Amount, Fee, MinHeight, MaxHeight, Lifetime, PeerResponseHeight,
		PeerMaxHeight, AssetID, CreateTime, KernelProofHeight,
		KernelUnconfirmedHeight, NonceSlotIndex, PeerProtoVersion, ChangeCoin,
		TransactionRegistered,
	}, uint64Codec{})

	registerCodec([]ID{IsSender, IsSelfTx, UserApproved}, boolCodec{})

	registerCodec([]ID{
		MyID, PeerID, MySecureWalletID, PeerSecureWalletID, Message,
		Status, SubState, TransactionType, FailureReason,
	}, stringCodec{})

	registerCodec([]ID{
		MyPublicExcess, MyPublicNonce, MySignature, MyOffset,
		PeerPublicExcess, PeerPublicNonce, PeerSignature, PeerOffset,
		PaymentConfirmation, KernelID,
	}, bytesCodec{})

	registerCodec([]ID{AmountList, Inputs, Outputs, PeerInputs, PeerOutputs}, uint64ListCodec{})
}

type uint64ListCodec struct{}

func (uint64ListCodec) Encode(v any) ([]byte, error) {
	list, ok := v.([]uint64)
	if !ok {
		return nil, fmt.Errorf("uint64ListCodec: expected []uint64, got %T", v)
	}
	buf := make([]byte, 8*len(list))
	for i, n := range list {
		binary.BigEndian.PutUint64(buf[i*8:], n)
	}
	return buf, nil
}

func (uint64ListCodec) Decode(b []byte) (any, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("uint64ListCodec: length %d not a multiple of 8", len(b))
	}
	out := make([]uint64, len(b)/8)
	for i := range out {
		out[i] = binary.BigEndian.Uint64(b[i*8:])
	}
	return out, nil
}

// codecFor falls back to the raw byte codec for any id not explicitly
// registered, so unknown wire ids (§6.1) are still persisted verbatim.
func codecFor(id ID) Codec {
	if c, ok := codecs[id]; ok {
		return c
	}
	return bytesCodec{}
}

// Encode serialises v for id as a length-prefixed buffer: [4-byte length][payload].
// The length prefix lets a wire message pack many (id, value) pairs back to
// back without ambiguity, even though a single DB row already knows its own
// length from the column.
func Encode(id ID, v any) ([]byte, error) {
	raw, err := codecFor(id).Encode(v)
	if err != nil {
		return nil, fmt.Errorf("encode param %d: %w", id, err)
	}
	buf := make([]byte, 4+len(raw))
	binary.BigEndian.PutUint32(buf, uint32(len(raw)))
	copy(buf[4:], raw)
	return buf, nil
}

// Decode reverses Encode. A malformed buffer is reported as an error, which
// the store layer treats identically to a missing key.
func Decode(id ID, framed []byte) (any, error) {
	if len(framed) < 4 {
		return nil, fmt.Errorf("decode param %d: short buffer", id)
	}
	n := binary.BigEndian.Uint32(framed)
	if uint32(len(framed)-4) != n {
		return nil, fmt.Errorf("decode param %d: length mismatch", id)
	}
	return codecFor(id).Decode(framed[4 : 4+n])
}

type uint64Codec struct{}

func (uint64Codec) Encode(v any) ([]byte, error) {
	n, ok := v.(uint64)
	if !ok {
		return nil, fmt.Errorf("uint64Codec: expected uint64, got %T", v)
	}
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b, nil
}

func (uint64Codec) Decode(b []byte) (any, error) {
	if len(b) != 8 {
		return nil, fmt.Errorf("uint64Codec: want 8 bytes, got %d", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

type boolCodec struct{}

func (boolCodec) Encode(v any) ([]byte, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, fmt.Errorf("boolCodec: expected bool, got %T", v)
	}
	if b {
		return []byte{1}, nil
	}
	return []byte{0}, nil
}

func (boolCodec) Decode(b []byte) (any, error) {
	if len(b) != 1 {
		return nil, fmt.Errorf("boolCodec: want 1 byte, got %d", len(b))
	}
	return b[0] != 0, nil
}

type stringCodec struct{}

func (stringCodec) Encode(v any) ([]byte, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("stringCodec: expected string, got %T", v)
	}
	return []byte(s), nil
}

func (stringCodec) Decode(b []byte) (any, error) {
	return string(b), nil
}

type bytesCodec struct{}

func (bytesCodec) Encode(v any) ([]byte, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("bytesCodec: expected []byte, got %T", v)
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (bytesCodec) Decode(b []byte) (any, error) {
	return bytes.Clone(b), nil
}
