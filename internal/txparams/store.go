package txparams

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dwoura/privchain-wallet/internal/model"
	"github.com/dwoura/privchain-wallet/pkg/logger"
)

// TxID is the 128-bit transaction identifier, hex-encoded.
type TxID string

// NewTxID generates a fresh random 128-bit transaction id.
func NewTxID() (TxID, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate tx id: %w", err)
	}
	return TxID(hex.EncodeToString(b)), nil
}

// ErrMissingParameter: a missing key is not an error for Get, but
// GetMandatory fails with this.
type ErrMissingParameter struct {
	ID ID
}

func (e ErrMissingParameter) Error() string {
	return fmt.Sprintf("missing parameter %d", e.ID)
}

// Store is the C1 Parameter Store: a durable typed key/value map per
// (TxId, SubTxId, TxParameterID), with a best-effort Redis read cache and an
// observer dispatch (one notification per write) over the curated
// "interesting" subset.
type Store struct {
	db        *gorm.DB
	cache     *redis.Client
	observers []Observer
}

// Observer is notified, at most once per OnChange call but possibly
// batching several ids, when an "interesting" key changes for a txId.
type Observer interface {
	OnChange(txID TxID, ids []ID)
}

func New(db *gorm.DB, cache *redis.Client) *Store {
	return &Store{db: db, cache: cache}
}

func (s *Store) Subscribe(o Observer) {
	s.observers = append(s.observers, o)
}

func cacheKey(txID TxID, subTxID uint32, id ID) string {
	return fmt.Sprintf("txparam:%s:%d:%d", txID, subTxID, id)
}

// Set persists a value durably before returning: every parameter write is
// durable before any side-effect based on it. The caller is expected to
// perform network/chain side-effects only after Set returns nil.
func (s *Store) Set(ctx context.Context, txID TxID, id ID, subTxID uint32, v any) error {
	framed, err := Encode(id, v)
	if err != nil {
		return err
	}

	row := model.TxParameterRow{
		TxID:    string(txID),
		SubTxID: subTxID,
		ParamID: uint32(id),
		Value:   framed,
	}
	err = s.db.WithContext(ctx).
		Clauses(upsertClause()).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("persist parameter: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey(txID, subTxID, id), framed, time.Hour).Err(); err != nil {
			logger.Warn("txparams cache write failed", zap.Error(err))
		}
	}

	if id.Interesting() {
		s.notify(txID, []ID{id})
	}
	return nil
}

// Get returns (value, found, error). A missing key is found=false, err=nil.
func (s *Store) Get(ctx context.Context, txID TxID, id ID, subTxID uint32) (any, bool, error) {
	if s.cache != nil {
		if framed, err := s.cache.Get(ctx, cacheKey(txID, subTxID, id)).Bytes(); err == nil {
			v, err := Decode(id, framed)
			if err == nil {
				return v, true, nil
			}
		}
	}

	var row model.TxParameterRow
	err := s.db.WithContext(ctx).
		Where("tx_id = ? AND sub_tx_id = ? AND param_id = ?", string(txID), subTxID, uint32(id)).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load parameter: %w", err)
	}

	v, err := Decode(id, row.Value)
	if err != nil {
		// A malformed value is treated like an absent key.
		logger.Warn("txparams decode failed, treating as missing", zap.Uint32("param_id", uint32(id)), zap.Error(err))
		return nil, false, nil
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey(txID, subTxID, id), row.Value, time.Hour).Err()
	}
	return v, true, nil
}

// GetMandatory is Get, but a missing key fails with ErrMissingParameter.
func (s *Store) GetMandatory(ctx context.Context, txID TxID, id ID, subTxID uint32) (any, error) {
	v, ok, err := s.Get(ctx, txID, id, subTxID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrMissingParameter{ID: id}
	}
	return v, nil
}

// Has reports whether a key has ever been written, distinct from a zero value
// being written. Needed for the transient-vs-permanent InvalidContext
// decision: absence of KernelUnconfirmedHeight, not its value, marks
// "never observed".
func (s *Store) Has(ctx context.Context, txID TxID, id ID, subTxID uint32) (bool, error) {
	_, ok, err := s.Get(ctx, txID, id, subTxID)
	return ok, err
}

func (s *Store) Delete(ctx context.Context, txID TxID, id ID, subTxID uint32) error {
	if s.cache != nil {
		_ = s.cache.Del(ctx, cacheKey(txID, subTxID, id)).Err()
	}
	return s.db.WithContext(ctx).
		Where("tx_id = ? AND sub_tx_id = ? AND param_id = ?", string(txID), subTxID, uint32(id)).
		Delete(&model.TxParameterRow{}).Error
}

func (s *Store) notify(txID TxID, ids []ID) {
	for _, o := range s.observers {
		o.OnChange(txID, ids)
	}
}
