// Package negotiation implements C5: the per-txId state machine that
// drives a two-party transfer from Initial to Completed (or a terminal
// failure), calling into the C1 parameter store, C2 key keeper (via the
// C4 builder), C3 coin selector, and C6 gateway along the way. Grounded
// line-for-line on SimpleTransaction::UpdateImpl in simple_transaction.cpp.
package negotiation

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dwoura/privchain-wallet/internal/crypto"
	"github.com/dwoura/privchain-wallet/internal/gateway"
	"github.com/dwoura/privchain-wallet/internal/metrics"
	"github.com/dwoura/privchain-wallet/internal/model"
	"github.com/dwoura/privchain-wallet/internal/txbuilder"
	"github.com/dwoura/privchain-wallet/internal/txparams"
	"github.com/dwoura/privchain-wallet/internal/txparams/lock"
	"github.com/dwoura/privchain-wallet/pkg/config"
	"github.com/dwoura/privchain-wallet/pkg/logger"
	"go.uber.org/zap"
)

// registeredOk/registeredInvalidContext mirror proto::TxStatus's two codes
// this driver distinguishes; every other non-zero code is a hard failure.
const (
	registeredUnspecified    = 0
	registeredOk             = 1
	registeredInvalidContext = 2
)

type Driver struct {
	Store   *txparams.Store
	Builder *txbuilder.Builder
	Gateway gateway.Gateway
	DB      *gorm.DB
	Lock    lock.DistributedLock
	Config  config.NegotiationConfig
}

func New(store *txparams.Store, builder *txbuilder.Builder, gw gateway.Gateway, db *gorm.DB, l lock.DistributedLock, cfg config.NegotiationConfig) *Driver {
	return &Driver{Store: store, Builder: builder, Gateway: gw, DB: db, Lock: l, Config: cfg}
}

// Update advances txID by one step. It is safe to call repeatedly and from
// multiple replicas: the distributed lock below serializes concurrent
// calls for the same txID, and every sub-operation it calls is itself
// idempotent against the parameter store.
func (d *Driver) Update(ctx context.Context, txID txparams.TxID) (Outcome, error) {
	acquired, err := d.Lock.Acquire(ctx, string(txID), 30*time.Second)
	if err != nil {
		return Outcome{}, err
	}
	if !acquired {
		return Continue(TriggerImmediate), nil
	}
	defer d.Lock.Release(ctx, string(txID))

	outcome, err := d.update(ctx, txID)
	if err != nil {
		var negErr *Error
		if as, ok := err.(*Error); ok {
			negErr = as
		}
		if negErr != nil {
			return d.onFailed(ctx, txID, negErr)
		}
		return Outcome{}, err
	}
	return outcome, nil
}

func (d *Driver) update(ctx context.Context, txID txparams.TxID) (Outcome, error) {
	isSender, ok, err := txparams.GetBool(ctx, d.Store, txID, txparams.IsSender, 0)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return Outcome{}, fmt.Errorf("negotiation: %w", txparams.ErrMissingParameter{ID: txparams.IsSender})
	}
	isSelfTx, _, err := txparams.GetBool(ctx, d.Store, txID, txparams.IsSelfTx, 0)
	if err != nil {
		return Outcome{}, err
	}
	state, err := d.getState(ctx, txID)
	if err != nil {
		return Outcome{}, err
	}

	registered, haveRegistered, err := d.getRegistered(ctx, txID)
	if err != nil {
		return Outcome{}, err
	}

	if !haveRegistered {
		outcome, done, err := d.negotiate(ctx, txID, isSender, isSelfTx, state)
		if err != nil || done {
			return outcome, err
		}
	}

	return d.afterNegotiation(ctx, txID, registered, haveRegistered)
}

// negotiate runs everything up to (and including) building and submitting
// the transaction. done=true means the caller should return outcome as-is
// (a Continue that needs an external event, a DoneFailed, or an error);
// done=false means negotiation finished locally and the caller goes on to
// registration in the same call.
func (d *Driver) negotiate(ctx context.Context, txID txparams.TxID, isSender, isSelfTx bool, state State) (Outcome, bool, error) {
	if isSender {
		if err := d.Builder.SelectInputs(ctx, txID); err != nil {
			return Outcome{}, true, err
		}
		if err := d.Builder.AddChange(ctx, txID); err != nil {
			return Outcome{}, true, err
		}
		if err := d.Builder.GenerateNonce(ctx, txID); err != nil {
			return Outcome{}, true, err
		}
	}

	if isSelfTx || !isSender {
		height, _, err := txparams.GetUint64(ctx, d.Store, txID, txparams.MinHeight, 0)
		if err != nil {
			return Outcome{}, true, err
		}
		if err := d.Builder.CreateOutputs(ctx, txID, height); err != nil {
			return Outcome{}, true, err
		}
	}

	_, havePeerExcess, err := txparams.GetPoint(ctx, d.Store, txID, txparams.PeerPublicExcess, 0)
	if err != nil {
		return Outcome{}, true, err
	}

	if !isSelfTx && !havePeerExcess {
		// We are the initiator, still waiting on the peer's first reply.
		if state == StateInitial {
			if err := d.Builder.SignSenderInitial(ctx, txID); err != nil {
				return Outcome{}, true, err
			}
			if err := d.sendInvitation(ctx, txID, isSender); err != nil {
				return Outcome{}, true, err
			}
			if err := d.setState(ctx, txID, StateInvitation); err != nil {
				return Outcome{}, true, err
			}
		}
		return Continue(TriggerPeerResponse), true, nil
	}

	tip, err := d.Gateway.CurrentTip(ctx)
	if err != nil {
		return Outcome{}, true, err
	}
	if err := d.Builder.UpdateMaxHeight(ctx, txID, tip); err != nil {
		return DoneFailed(ReasonMaxHeightIsUnacceptable), true, nil
	}

	if err := d.Builder.CreateKernel(ctx, txID); err != nil {
		return Outcome{}, true, err
	}

	_, havePeerSig, err := txparams.GetScalar(ctx, d.Store, txID, txparams.PeerSignature, 0)
	if err != nil {
		return Outcome{}, true, err
	}

	if !isSelfTx && !havePeerSig {
		if state == StateInitial {
			// We were invited: countersign and reply, unless the invitation
			// exceeds our auto-accept ceilings and the user hasn't approved it.
			approved, err := d.autoAcceptOrApproved(ctx, txID)
			if err != nil {
				return Outcome{}, true, err
			}
			if !approved {
				return Continue(TriggerNone), true, nil
			}

			if err := d.Builder.SignReceiver(ctx, txID, "", ""); err != nil {
				return Outcome{}, true, err
			}
			if err := d.confirmInvitation(ctx, txID); err != nil {
				return Outcome{}, true, err
			}
			if _, haveProtoVer, err := txparams.GetUint64(ctx, d.Store, txID, txparams.PeerProtoVersion, 0); err != nil {
				return Outcome{}, true, err
			} else if haveProtoVer {
				if err := txparams.SetUint64(ctx, d.Store, txID, txparams.TransactionRegistered, 0, registeredOk); err != nil {
					return Outcome{}, true, err
				}
				if err := d.setState(ctx, txID, StateKernelConfirmation); err != nil {
					return Outcome{}, true, err
				}
				if err := d.confirmKernel(ctx, txID); err != nil {
					return Outcome{}, true, err
				}
			} else {
				if err := d.setState(ctx, txID, StateInvitationConfirmation); err != nil {
					return Outcome{}, true, err
				}
			}
			return Continue(TriggerPeerResponse), true, nil
		}
		// Either we are the initiator and the peer hasn't replied yet, or we
		// were invited, already replied, and wait for the registration verdict.
		return Continue(TriggerPeerResponse), true, nil
	}

	// Dispatch on the actual role rather than isSelfTx: by this point a
	// real two-party receiver has already produced its one signature back
	// in the invited-participant branch above and never reaches here
	// again, but isSender is the unambiguous discriminator regardless of
	// call order.
	if isSender {
		if err := d.Builder.SignSenderFinal(ctx, txID); err != nil {
			return Outcome{}, true, err
		}
	} else {
		if err := d.Builder.SignReceiver(ctx, txID, "", ""); err != nil {
			return Outcome{}, true, err
		}
	}

	if isSender {
		valid, err := d.Builder.IsPeerSignatureValid(ctx, txID)
		if err != nil {
			return Outcome{}, true, err
		}
		if !valid {
			return DoneFailed(ReasonInvalidPeerSignature), true, nil
		}
	}

	if err := d.Builder.FinalizeSignature(ctx, txID); err != nil {
		return Outcome{}, true, err
	}

	return Outcome{}, false, nil
}

func (d *Driver) afterNegotiation(ctx context.Context, txID txparams.TxID, registered uint64, haveRegistered bool) (Outcome, error) {
	if !haveRegistered {
		if expired, err := d.checkExpired(ctx, txID); err != nil {
			return Outcome{}, err
		} else if expired {
			return DoneFailed(ReasonTransactionExpired), nil
		}

		tx, err := d.Builder.CreateTransaction(ctx, txID)
		if err != nil {
			return DoneFailed(ReasonInvalidTransaction), nil
		}
		if err := d.Gateway.RegisterTx(ctx, txID, tx); err != nil {
			return Outcome{}, err
		}
		if err := d.setState(ctx, txID, StateRegistration); err != nil {
			return Outcome{}, err
		}
		return Continue(TriggerPeerResponse), nil
	}

	if registered == registeredInvalidContext {
		hasSeen, err := d.Store.Has(ctx, txID, txparams.KernelUnconfirmedHeight, 0)
		if err != nil {
			return Outcome{}, err
		}
		if hasSeen {
			return DoneFailed(ReasonFailedToRegister), nil
		}
	} else if registered != registeredOk {
		return DoneFailed(ReasonFailedToRegister), nil
	}

	proofHeight, haveProof, err := txparams.GetUint64(ctx, d.Store, txID, txparams.KernelProofHeight, 0)
	if err != nil {
		return Outcome{}, err
	}
	if !haveProof || proofHeight == 0 {
		if err := d.setState(ctx, txID, StateKernelConfirmation); err != nil {
			return Outcome{}, err
		}
		if err := d.confirmKernel(ctx, txID); err != nil {
			return Outcome{}, err
		}
		return Continue(TriggerNextTip), nil
	}

	if err := d.complete(ctx, txID, proofHeight); err != nil {
		return Outcome{}, err
	}
	return Done(StatusCompleted), nil
}

// autoAcceptOrApproved implements the SHOULD-level guard before an invited
// receiver signs: an invitation within the configured ceilings (0 = no
// ceiling) is accepted automatically; otherwise the driver waits for an
// explicit UserApproved=true parameter write.
func (d *Driver) autoAcceptOrApproved(ctx context.Context, txID txparams.TxID) (bool, error) {
	if approved, ok, err := txparams.GetBool(ctx, d.Store, txID, txparams.UserApproved, 0); err != nil {
		return false, err
	} else if ok && approved {
		return true, nil
	}

	amount, _, err := txparams.GetUint64(ctx, d.Store, txID, txparams.Amount, 0)
	if err != nil {
		return false, err
	}
	fee, _, err := txparams.GetUint64(ctx, d.Store, txID, txparams.Fee, 0)
	if err != nil {
		return false, err
	}

	if d.Config.MaxAutoAcceptAmount != 0 && amount > d.Config.MaxAutoAcceptAmount {
		return false, nil
	}
	if d.Config.MaxAutoAcceptFee != 0 && fee > d.Config.MaxAutoAcceptFee {
		return false, nil
	}
	return true, nil
}

func (d *Driver) getRegistered(ctx context.Context, txID txparams.TxID) (uint64, bool, error) {
	return txparams.GetUint64(ctx, d.Store, txID, txparams.TransactionRegistered, 0)
}

func (d *Driver) getState(ctx context.Context, txID txparams.TxID) (State, error) {
	s, ok, err := txparams.GetString(ctx, d.Store, txID, txparams.SubState, 0)
	if err != nil {
		return "", err
	}
	if !ok {
		return StateInitial, nil
	}
	return State(s), nil
}

func (d *Driver) setState(ctx context.Context, txID txparams.TxID, state State) error {
	return txparams.SetString(ctx, d.Store, txID, txparams.SubState, 0, string(state))
}

func (d *Driver) checkExpired(ctx context.Context, txID txparams.TxID) (bool, error) {
	maxHeight, ok, err := txparams.GetUint64(ctx, d.Store, txID, txparams.MaxHeight, 0)
	if err != nil || !ok {
		return false, err
	}
	tip, err := d.Gateway.CurrentTip(ctx)
	if err != nil {
		return false, err
	}
	return tip > maxHeight, nil
}

func (d *Driver) sendInvitation(ctx context.Context, txID txparams.TxID, isSender bool) error {
	amount, _, err := txparams.GetUint64(ctx, d.Store, txID, txparams.Amount, 0)
	if err != nil {
		return err
	}
	fee, _, err := txparams.GetUint64(ctx, d.Store, txID, txparams.Fee, 0)
	if err != nil {
		return err
	}
	minH, _, err := txparams.GetUint64(ctx, d.Store, txID, txparams.MinHeight, 0)
	if err != nil {
		return err
	}
	lifetime, _, err := txparams.GetUint64(ctx, d.Store, txID, txparams.Lifetime, 0)
	if err != nil {
		return err
	}
	maxH, _, err := txparams.GetUint64(ctx, d.Store, txID, txparams.MaxHeight, 0)
	if err != nil {
		return err
	}
	assetID, _, err := txparams.GetUint64(ctx, d.Store, txID, txparams.AssetID, 0)
	if err != nil {
		return err
	}
	myExcess, _, err := txparams.GetPoint(ctx, d.Store, txID, txparams.MyPublicExcess, 0)
	if err != nil {
		return err
	}
	myNonce, _, err := txparams.GetPoint(ctx, d.Store, txID, txparams.MyPublicNonce, 0)
	if err != nil {
		return err
	}
	peerID, _, err := txparams.GetString(ctx, d.Store, txID, txparams.PeerID, 0)
	if err != nil {
		return err
	}

	msg := gateway.Message{
		TxID: txID, PeerID: peerID,
		Values: map[txparams.ID]any{
			txparams.Amount:           amount,
			txparams.Fee:              fee,
			txparams.MinHeight:        minH,
			txparams.Lifetime:         lifetime,
			txparams.PeerMaxHeight:    maxH,
			txparams.IsSender:         !isSender,
			txparams.AssetID:          assetID,
			txparams.PeerPublicExcess: crypto.PointBytes(myExcess),
			txparams.PeerPublicNonce:  crypto.PointBytes(myNonce),
		},
	}
	if err := d.Gateway.SendTxParameters(ctx, msg); err != nil {
		return fail(ReasonFailedToSendParameters, false, err)
	}
	if metrics.Business != nil {
		metrics.Business.InvitationsSent.Inc()
	}
	return nil
}

func (d *Driver) confirmInvitation(ctx context.Context, txID txparams.TxID) error {
	myExcess, _, err := txparams.GetPoint(ctx, d.Store, txID, txparams.MyPublicExcess, 0)
	if err != nil {
		return err
	}
	myNonce, _, err := txparams.GetPoint(ctx, d.Store, txID, txparams.MyPublicNonce, 0)
	if err != nil {
		return err
	}
	mySig, _, err := txparams.GetScalar(ctx, d.Store, txID, txparams.MySignature, 0)
	if err != nil {
		return err
	}
	maxH, _, err := txparams.GetUint64(ctx, d.Store, txID, txparams.MaxHeight, 0)
	if err != nil {
		return err
	}
	outputs, _, err := txparams.GetUint64List(ctx, d.Store, txID, txparams.Outputs, 0)
	if err != nil {
		return err
	}
	offset, _, err := txparams.GetScalar(ctx, d.Store, txID, txparams.MyOffset, 0)
	if err != nil {
		return err
	}
	peerID, _, err := txparams.GetString(ctx, d.Store, txID, txparams.PeerID, 0)
	if err != nil {
		return err
	}

	values := map[txparams.ID]any{
		txparams.PeerPublicExcess: crypto.PointBytes(myExcess),
		txparams.PeerPublicNonce:  crypto.PointBytes(myNonce),
		txparams.PeerSignature:    crypto.ScalarBytes(mySig),
		txparams.PeerMaxHeight:    maxH,
		txparams.PeerOutputs:      outputs,
		txparams.PeerOffset:       crypto.ScalarBytes(offset),
	}

	if proof, ok, err := txparams.GetScalar(ctx, d.Store, txID, txparams.PaymentConfirmation, 0); err != nil {
		return err
	} else if ok {
		values[txparams.PaymentConfirmation] = crypto.ScalarBytes(proof)
	}

	if err := d.Gateway.SendTxParameters(ctx, gateway.Message{TxID: txID, PeerID: peerID, Values: values}); err != nil {
		return fail(ReasonFailedToSendParameters, false, err)
	}
	return nil
}

func (d *Driver) confirmKernel(ctx context.Context, txID txparams.TxID) error {
	kernelID, ok, err := txparams.GetBytes(ctx, d.Store, txID, txparams.KernelID, 0)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return d.Gateway.ConfirmKernel(ctx, txID, kernelID)
}

func (d *Driver) complete(ctx context.Context, txID txparams.TxID, proofHeight uint64) error {
	logger.Info("negotiation completed", zap.String("tx_id", string(txID)), zap.Uint64("proof_height", proofHeight))
	if metrics.Business != nil {
		metrics.Business.CompletionsTotal.Inc()
	}
	if err := txparams.SetString(ctx, d.Store, txID, txparams.Status, 0, string(StatusCompleted)); err != nil {
		return err
	}
	return d.DB.WithContext(ctx).Model(&model.TxRecord{}).
		Where("tx_id = ?", string(txID)).
		Updates(map[string]interface{}{"status": string(StatusCompleted)}).Error
}

func (d *Driver) onFailed(ctx context.Context, txID txparams.TxID, negErr *Error) (Outcome, error) {
	logger.Warn("negotiation failed", zap.String("tx_id", string(txID)), zap.String("reason", negErr.Reason.String()))
	if metrics.Business != nil {
		metrics.Business.FailuresTotal.WithLabelValues(negErr.Reason.String()).Inc()
	}
	if err := txparams.SetString(ctx, d.Store, txID, txparams.FailureReason, 0, negErr.Reason.String()); err != nil {
		return Outcome{}, err
	}
	if err := txparams.SetString(ctx, d.Store, txID, txparams.Status, 0, string(StatusFailed)); err != nil {
		return Outcome{}, err
	}
	_ = d.DB.WithContext(ctx).Model(&model.TxRecord{}).
		Where("tx_id = ?", string(txID)).
		Updates(map[string]interface{}{"status": string(StatusFailed)}).Error

	if negErr.Notify {
		if peerID, ok, _ := txparams.GetString(ctx, d.Store, txID, txparams.PeerID, 0); ok {
			_ = d.Gateway.SendTxParameters(ctx, gateway.Message{
				TxID: txID, PeerID: peerID,
				Values: map[txparams.ID]any{txparams.FailureReason: negErr.Reason.String()},
			})
		}
	}
	return DoneFailed(negErr.Reason), nil
}
