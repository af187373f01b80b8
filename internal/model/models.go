package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TxRecord is the durable header row for a negotiation.
// The bulk of the per-tx state lives in TxParameterRow; this row exists so
// status and role can be indexed and listed without scanning the parameter
// table.
type TxRecord struct {
	TxID      string         `gorm:"type:char(32);primaryKey" json:"tx_id"`
	Role      string         `gorm:"type:varchar(16);not null" json:"role"` // Sender | Receiver | SelfTx
	Status    string         `gorm:"type:varchar(16);not null;index" json:"status"`
	SubState  string         `gorm:"type:varchar(32);not null" json:"sub_state"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (TxRecord) TableName() string { return "tx_records" }

// TxParameterRow is the persisted form of the C1 parameter store: one row
// per (TxID, SubTxID, ParamID), value opaque length-prefixed bytes.
type TxParameterRow struct {
	TxID      string    `gorm:"type:char(32);primaryKey;uniqueIndex:idx_tx_param" json:"tx_id"`
	SubTxID   uint32    `gorm:"primaryKey;uniqueIndex:idx_tx_param" json:"sub_tx_id"`
	ParamID   uint32    `gorm:"primaryKey;uniqueIndex:idx_tx_param" json:"param_id"`
	Value     []byte    `gorm:"type:bytea;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TxParameterRow) TableName() string { return "tx_parameters" }

// Coin is a UTXO tracked by the wallet.
type Coin struct {
	ID         uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	CommitID   string          `gorm:"type:varchar(128);not null;uniqueIndex" json:"commit_id"`
	Amount     decimal.Decimal `gorm:"type:decimal(38,0);not null" json:"amount"`
	AssetID    uint64          `gorm:"not null;default:0;index" json:"asset_id"`
	Maturity   uint64          `gorm:"not null;default:0" json:"maturity"`
	Status     string          `gorm:"type:varchar(16);not null;index" json:"status"` // Available|Outgoing|Spent|Incoming
	CreatedAt  time.Time       `json:"created_at"`
	SpentInTx  string          `gorm:"type:char(32)" json:"spent_in_tx,omitempty"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (Coin) TableName() string { return "coins" }

// Address is an address-book entry: either owned (we hold the
// private key) or a peer address auto-recorded on first contact.
type Address struct {
	WalletID  string         `gorm:"type:char(66);primaryKey" json:"wallet_id"`
	Owned     bool           `gorm:"not null" json:"owned"`
	Label     string         `gorm:"type:varchar(255)" json:"label"`
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Address) TableName() string { return "addresses" }

// NonceSlot is a persisted per-device entropy reservoir (GLOSSARY). UseCount
// is stored with the slot; the key keeper does not read or update it, so a
// second reveal of the slot's secret is not detected here.
type NonceSlot struct {
	Index     uint64    `gorm:"primaryKey;autoIncrement" json:"index"`
	Seed      []byte    `gorm:"type:bytea;not null" json:"-"`
	UseCount  uint32    `gorm:"not null;default:0" json:"use_count"`
	CreatedAt time.Time `json:"created_at"`
}

func (NonceSlot) TableName() string { return "nonce_slots" }
