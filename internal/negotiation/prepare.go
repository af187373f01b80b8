package negotiation

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/dwoura/privchain-wallet/internal/model"
	"github.com/dwoura/privchain-wallet/internal/txparams"
)

// PrepareParameters mirrors SimpleTransaction::Creator::CheckAndCompleteParameters:
// it resolves the peer address, rejects a send to an expired owned address,
// updates the address book label on message change, auto-saves a new
// address-book entry on first contact with an unknown peer, and sets
// IsSelfTx so the driver never needs to re-derive it from the address book
// on every call.
func PrepareParameters(ctx context.Context, db *gorm.DB, store *txparams.Store, txID txparams.TxID) error {
	peerID, ok, err := txparams.GetString(ctx, store, txID, txparams.PeerID, 0)
	if err != nil {
		return err
	}
	if !ok {
		return fail(ReasonInvalidTransactionParameters, false, nil)
	}

	var addr model.Address
	err = db.WithContext(ctx).Where("wallet_id = ?", peerID).Take(&addr).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		newAddr := model.Address{WalletID: peerID, Owned: false, CreatedAt: time.Now()}
		if msg, ok, err := txparams.GetString(ctx, store, txID, txparams.Message, 0); err != nil {
			return err
		} else if ok {
			newAddr.Label = msg
		}
		if err := db.WithContext(ctx).Create(&newAddr).Error; err != nil {
			return err
		}
		return txparams.SetBool(ctx, store, txID, txparams.IsSelfTx, 0, false)

	case err != nil:
		return err

	default:
		if addr.Owned && addr.ExpiresAt != nil && addr.ExpiresAt.Before(time.Now()) {
			return fail(ReasonAddressExpired, false, nil)
		}
		if msg, ok, err := txparams.GetString(ctx, store, txID, txparams.Message, 0); err != nil {
			return err
		} else if ok && msg != addr.Label {
			addr.Label = msg
			if err := db.WithContext(ctx).Save(&addr).Error; err != nil {
				return err
			}
		}
		return txparams.SetBool(ctx, store, txID, txparams.IsSelfTx, 0, addr.Owned)
	}
}
