package txparams

import (
	"context"
	"fmt"

	"github.com/dwoura/privchain-wallet/internal/crypto"
)

// The helpers below are thin, type-asserting conveniences over Store's
// any-typed Get/Set — call sites in the builder and driver want
// uint64/bool/[]byte/point/scalar directly, not an any they immediately
// cast.

func GetUint64(ctx context.Context, s *Store, txID TxID, id ID, subTxID uint32) (uint64, bool, error) {
	v, ok, err := s.Get(ctx, txID, id, subTxID)
	if err != nil || !ok {
		return 0, ok, err
	}
	n, okType := v.(uint64)
	if !okType {
		return 0, false, fmt.Errorf("param %d: expected uint64, got %T", id, v)
	}
	return n, true, nil
}

func SetUint64(ctx context.Context, s *Store, txID TxID, id ID, subTxID uint32, n uint64) error {
	return s.Set(ctx, txID, id, subTxID, n)
}

func GetBool(ctx context.Context, s *Store, txID TxID, id ID, subTxID uint32) (bool, bool, error) {
	v, ok, err := s.Get(ctx, txID, id, subTxID)
	if err != nil || !ok {
		return false, ok, err
	}
	b, okType := v.(bool)
	if !okType {
		return false, false, fmt.Errorf("param %d: expected bool, got %T", id, v)
	}
	return b, true, nil
}

func SetBool(ctx context.Context, s *Store, txID TxID, id ID, subTxID uint32, b bool) error {
	return s.Set(ctx, txID, id, subTxID, b)
}

func GetString(ctx context.Context, s *Store, txID TxID, id ID, subTxID uint32) (string, bool, error) {
	v, ok, err := s.Get(ctx, txID, id, subTxID)
	if err != nil || !ok {
		return "", ok, err
	}
	str, okType := v.(string)
	if !okType {
		return "", false, fmt.Errorf("param %d: expected string, got %T", id, v)
	}
	return str, true, nil
}

func SetString(ctx context.Context, s *Store, txID TxID, id ID, subTxID uint32, str string) error {
	return s.Set(ctx, txID, id, subTxID, str)
}

func GetBytes(ctx context.Context, s *Store, txID TxID, id ID, subTxID uint32) ([]byte, bool, error) {
	v, ok, err := s.Get(ctx, txID, id, subTxID)
	if err != nil || !ok {
		return nil, ok, err
	}
	b, okType := v.([]byte)
	if !okType {
		return nil, false, fmt.Errorf("param %d: expected []byte, got %T", id, v)
	}
	return b, true, nil
}

func SetBytes(ctx context.Context, s *Store, txID TxID, id ID, subTxID uint32, b []byte) error {
	return s.Set(ctx, txID, id, subTxID, b)
}

func GetUint64List(ctx context.Context, s *Store, txID TxID, id ID, subTxID uint32) ([]uint64, bool, error) {
	v, ok, err := s.Get(ctx, txID, id, subTxID)
	if err != nil || !ok {
		return nil, ok, err
	}
	list, okType := v.([]uint64)
	if !okType {
		return nil, false, fmt.Errorf("param %d: expected []uint64, got %T", id, v)
	}
	return list, true, nil
}

func SetUint64List(ctx context.Context, s *Store, txID TxID, id ID, subTxID uint32, list []uint64) error {
	return s.Set(ctx, txID, id, subTxID, list)
}

func GetPoint(ctx context.Context, s *Store, txID TxID, id ID, subTxID uint32) (crypto.Point, bool, error) {
	b, ok, err := GetBytes(ctx, s, txID, id, subTxID)
	if err != nil || !ok {
		return crypto.Point{}, ok, err
	}
	p, err := crypto.PointFromBytes(b)
	if err != nil {
		return crypto.Point{}, false, nil // malformed value treated as absent
	}
	return p, true, nil
}

func SetPoint(ctx context.Context, s *Store, txID TxID, id ID, subTxID uint32, p crypto.Point) error {
	return SetBytes(ctx, s, txID, id, subTxID, crypto.PointBytes(p))
}

func GetScalar(ctx context.Context, s *Store, txID TxID, id ID, subTxID uint32) (crypto.Scalar, bool, error) {
	b, ok, err := GetBytes(ctx, s, txID, id, subTxID)
	if err != nil || !ok {
		return crypto.Scalar{}, ok, err
	}
	return crypto.ScalarFromBytes(b), true, nil
}

func SetScalar(ctx context.Context, s *Store, txID TxID, id ID, subTxID uint32, v crypto.Scalar) error {
	return SetBytes(ctx, s, txID, id, subTxID, crypto.ScalarBytes(v))
}
