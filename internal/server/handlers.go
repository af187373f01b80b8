package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dwoura/privchain-wallet/internal/model"
	"github.com/dwoura/privchain-wallet/internal/negotiation"
	"github.com/dwoura/privchain-wallet/internal/txparams"
)

type Handlers struct {
	Store  *txparams.Store
	Driver *negotiation.Driver
	DB     *gorm.DB
}

type createSendRequest struct {
	MyWalletID   string `json:"my_wallet_id" binding:"required"`
	PeerWalletID string `json:"peer_wallet_id" binding:"required"`
	Amount       uint64 `json:"amount" binding:"required"`
	Fee          uint64 `json:"fee" binding:"required"`
	Message      string `json:"message"`
}

func (h *Handlers) CreateSend(c *gin.Context) {
	var req createSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()
	txID, err := negotiation.NewSend(ctx, h.Store, req.MyWalletID, req.PeerWalletID, req.Amount, req.Fee, req.Message)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	if err := negotiation.PrepareParameters(ctx, h.DB, h.Store, txID); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if err := h.DB.WithContext(ctx).Create(&model.TxRecord{
		TxID: string(txID), Role: "Sender", Status: string(negotiation.StatusPending), SubState: string(negotiation.StateInitial),
	}).Error; err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}

	outcome, err := h.Driver.Update(ctx, txID)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	success(c, gin.H{"tx_id": txID, "done": outcome.IsDone(), "status": outcome.Status()})
}

type createSplitRequest struct {
	MyWalletID string   `json:"my_wallet_id" binding:"required"`
	Amounts    []uint64 `json:"amounts" binding:"required"`
	Fee        uint64   `json:"fee"`
}

func (h *Handlers) CreateSplit(c *gin.Context) {
	var req createSplitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()
	txID, err := negotiation.NewSplit(ctx, h.Store, req.MyWalletID, req.Amounts, req.Fee)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	if err := txparams.SetBool(ctx, h.Store, txID, txparams.IsSelfTx, 0, true); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	if err := h.DB.WithContext(ctx).Create(&model.TxRecord{
		TxID: string(txID), Role: "SelfTx", Status: string(negotiation.StatusPending), SubState: string(negotiation.StateInitial),
	}).Error; err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}

	outcome, err := h.Driver.Update(ctx, txID)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	success(c, gin.H{"tx_id": txID, "done": outcome.IsDone(), "status": outcome.Status()})
}

func (h *Handlers) ApproveSend(c *gin.Context) {
	txID := txparams.TxID(c.Param("tx_id"))
	ctx := c.Request.Context()

	if err := txparams.SetBool(ctx, h.Store, txID, txparams.UserApproved, 0, true); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	outcome, err := h.Driver.Update(ctx, txID)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	success(c, gin.H{"done": outcome.IsDone(), "status": outcome.Status()})
}

func (h *Handlers) GetTx(c *gin.Context) {
	txID := c.Param("tx_id")
	var rec model.TxRecord
	if err := h.DB.WithContext(c.Request.Context()).Where("tx_id = ?", txID).Take(&rec).Error; err != nil {
		fail(c, http.StatusNotFound, err)
		return
	}
	success(c, rec)
}

func (h *Handlers) Tick(c *gin.Context) {
	txID := txparams.TxID(c.Param("tx_id"))
	outcome, err := h.Driver.Update(c.Request.Context(), txID)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	success(c, gin.H{"done": outcome.IsDone(), "status": outcome.Status(), "wait": outcome.Wait()})
}

func HealthCheck(c *gin.Context) {
	success(c, gin.H{"status": "UP", "service": "privchain-wallet"})
}
