package negotiation

import (
	"context"

	"github.com/dwoura/privchain-wallet/internal/txparams"
)

// NewSplit creates the parameters for a Split transaction: it degenerates
// to a self-addressed Simple transfer with more than one output amount, per
// CreateSplitTransactionParameters in the original source — no separate
// transaction type is implemented, the driver just sees IsSelfTx=true and
// an AmountList with len > 1.
func NewSplit(ctx context.Context, store *txparams.Store, myWalletID string, amounts []uint64, fee uint64) (txparams.TxID, error) {
	txID, err := txparams.NewTxID()
	if err != nil {
		return "", err
	}

	var total uint64
	for _, a := range amounts {
		total += a
	}

	if err := txparams.SetString(ctx, store, txID, txparams.TransactionType, 0, "Simple"); err != nil {
		return "", err
	}
	if err := txparams.SetString(ctx, store, txID, txparams.MyID, 0, myWalletID); err != nil {
		return "", err
	}
	if err := txparams.SetString(ctx, store, txID, txparams.PeerID, 0, myWalletID); err != nil {
		return "", err
	}
	if err := txparams.SetUint64List(ctx, store, txID, txparams.AmountList, 0, amounts); err != nil {
		return "", err
	}
	if err := txparams.SetUint64(ctx, store, txID, txparams.Amount, 0, total); err != nil {
		return "", err
	}
	if err := txparams.SetUint64(ctx, store, txID, txparams.Fee, 0, fee); err != nil {
		return "", err
	}
	if err := txparams.SetBool(ctx, store, txID, txparams.IsSender, 0, true); err != nil {
		return "", err
	}
	return txID, nil
}
