package negotiation

import (
	"context"

	"github.com/dwoura/privchain-wallet/internal/txparams"
)

// NewSend creates the parameters for a plain two-party transfer, mirroring
// CreateSimpleTransactionParameters: just TransactionType=Simple plus the
// caller-supplied fields. PrepareParameters fills in IsSelfTx afterwards by
// resolving PeerID against the address book.
func NewSend(ctx context.Context, store *txparams.Store, myWalletID, peerWalletID string, amount, fee uint64, message string) (txparams.TxID, error) {
	txID, err := txparams.NewTxID()
	if err != nil {
		return "", err
	}

	if err := txparams.SetString(ctx, store, txID, txparams.TransactionType, 0, "Simple"); err != nil {
		return "", err
	}
	if err := txparams.SetString(ctx, store, txID, txparams.MyID, 0, myWalletID); err != nil {
		return "", err
	}
	if err := txparams.SetString(ctx, store, txID, txparams.PeerID, 0, peerWalletID); err != nil {
		return "", err
	}
	if err := txparams.SetUint64(ctx, store, txID, txparams.Amount, 0, amount); err != nil {
		return "", err
	}
	if err := txparams.SetUint64(ctx, store, txID, txparams.Fee, 0, fee); err != nil {
		return "", err
	}
	if err := txparams.SetBool(ctx, store, txID, txparams.IsSender, 0, true); err != nil {
		return "", err
	}
	if message != "" {
		if err := txparams.SetString(ctx, store, txID, txparams.Message, 0, message); err != nil {
			return "", err
		}
	}
	return txID, nil
}
