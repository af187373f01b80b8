package txparams

// ID is the TxParameterID enum. Values are stable once shipped: they cross
// the wire and the database.
type ID uint32

const (
	// Header / shared negotiation state.
	Amount ID = iota + 1
	Fee
	AssetID
	MinHeight
	MaxHeight
	Lifetime
	PeerResponseHeight
	PeerMaxHeight
	IsSender
	IsSelfTx
	PeerID
	MyID
	MySecureWalletID
	PeerSecureWalletID
	CreateTime
	Status
	SubState
	TransactionType
	KernelID
	Message
	AmountList

	// Builder artefacts, ours.
	MyPublicExcess
	MyPublicNonce
	MySignature
	MyOffset
	Inputs
	Outputs
	ChangeCoin
	NonceSlotIndex

	// Builder artefacts, peer's (wire-carried, §6.1).
	PeerPublicExcess
	PeerPublicNonce
	PeerSignature
	PeerInputs
	PeerOutputs
	PeerOffset
	PeerProtoVersion

	// Payment proof and registration verdicts.
	PaymentConfirmation
	TransactionRegistered
	KernelProofHeight
	KernelUnconfirmedHeight

	// Failure / lifecycle.
	FailureReason
	UserApproved
)

// WireIDs are the TxParameterID values recognised as peer-message fields.
// Unknown ids received over the wire are persisted but do not drive state.
var WireIDs = map[ID]struct{}{
	Amount:                 {},
	Fee:                    {},
	MinHeight:              {},
	Lifetime:               {},
	AssetID:                {},
	IsSender:               {},
	PeerProtoVersion:       {},
	PeerPublicExcess:       {},
	PeerPublicNonce:        {},
	PeerSignature:          {},
	PeerInputs:             {},
	PeerOutputs:            {},
	PeerOffset:             {},
	PeerMaxHeight:          {},
	PaymentConfirmation:    {},
	TransactionRegistered:  {},
}

// InterestingKeys is the curated observer subset, lifted directly from
// ShouldNotifyAboutChanges in private_key_keeper.cpp's sibling
// simple_transaction.cpp.
var InterestingKeys = map[ID]struct{}{
	Amount:          {},
	Fee:             {},
	MinHeight:       {},
	PeerID:          {},
	MyID:            {},
	CreateTime:      {},
	IsSender:        {},
	Status:          {},
	TransactionType: {},
	KernelID:        {},
	AssetID:         {},
}

func (id ID) Interesting() bool {
	_, ok := InterestingKeys[id]
	return ok
}
