package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/dwoura/privchain-wallet/internal/txparams"
	"github.com/dwoura/privchain-wallet/pkg/logger"
)

// Task type constants, grounded on tasks.TypeEmailDelivery's naming scheme.
const (
	TypeRegisterTx   = "chain:register_tx"
	TypeConfirmKernel = "chain:confirm_kernel"
)

type RegisterTxPayload struct {
	TxID txparams.TxID `json:"tx_id"`
	Tx   json.RawMessage `json:"tx"`
}

type ConfirmKernelPayload struct {
	TxID     txparams.TxID `json:"tx_id"`
	KernelID []byte        `json:"kernel_id"`
}

func NewRegisterTxTask(txID txparams.TxID, tx any) (*asynq.Task, error) {
	rawTx, err := json.Marshal(tx)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(RegisterTxPayload{TxID: txID, Tx: rawTx})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeRegisterTx, payload, asynq.MaxRetry(10), asynq.Timeout(2*time.Minute), asynq.Queue("critical")), nil
}

func NewConfirmKernelTask(txID txparams.TxID, kernelID []byte) (*asynq.Task, error) {
	payload, err := json.Marshal(ConfirmKernelPayload{TxID: txID, KernelID: kernelID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeConfirmKernel, payload, asynq.MaxRetry(20), asynq.Timeout(time.Minute), asynq.Queue("default")), nil
}

// ChainClient is the boundary to the actual node RPC, out of scope here (no
// P2P/chain-client module exists in this repository): production wiring
// supplies an implementation that talks to a real node process.
type ChainClient interface {
	RegisterTx(ctx context.Context, txID txparams.TxID, tx json.RawMessage) (registered uint64, err error)
	ConfirmKernel(ctx context.Context, txID txparams.TxID, kernelID []byte) (proofHeight, unconfirmedHeight uint64, err error)
	CurrentTip(ctx context.Context) (uint64, error)
}

// TaskHandlers writes the node's verdict back into the parameter store so
// the negotiation driver picks it up on its next Update call; it never
// calls the driver directly, keeping the worker decoupled from C5.
type TaskHandlers struct {
	Store *txparams.Store
	Chain ChainClient
}

func (h *TaskHandlers) HandleRegisterTx(ctx context.Context, t *asynq.Task) error {
	var p RegisterTxPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("register_tx: unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	registered, err := h.Chain.RegisterTx(ctx, p.TxID, p.Tx)
	if err != nil {
		logger.Warn("register_tx: node rejected submission, will retry",
			zap.String("tx_id", string(p.TxID)), zap.Error(err))
		return err
	}

	if err := txparams.SetUint64(ctx, h.Store, p.TxID, txparams.TransactionRegistered, 0, registered); err != nil {
		return err
	}
	logger.Info("register_tx: submitted", zap.String("tx_id", string(p.TxID)), zap.Uint64("status", registered))
	return nil
}

func (h *TaskHandlers) HandleConfirmKernel(ctx context.Context, t *asynq.Task) error {
	var p ConfirmKernelPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("confirm_kernel: unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	proofHeight, unconfirmedHeight, err := h.Chain.ConfirmKernel(ctx, p.TxID, p.KernelID)
	if err != nil {
		return err
	}

	if unconfirmedHeight != 0 {
		if err := txparams.SetUint64(ctx, h.Store, p.TxID, txparams.KernelUnconfirmedHeight, 0, unconfirmedHeight); err != nil {
			return err
		}
	}
	if proofHeight != 0 {
		if err := txparams.SetUint64(ctx, h.Store, p.TxID, txparams.KernelProofHeight, 0, proofHeight); err != nil {
			return err
		}
		return nil
	}

	// Not confirmed yet; asynq's retry backoff stands in for the driver's
	// own tip-triggered re-poll, so the task keeps coming back until the
	// node has a proof or the caller gives up and archives it.
	return fmt.Errorf("confirm_kernel: kernel %x not yet in a block", p.KernelID)
}
