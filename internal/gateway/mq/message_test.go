package mq

import (
	"encoding/json"
	"testing"

	"github.com/dwoura/privchain-wallet/internal/gateway"
	"github.com/dwoura/privchain-wallet/internal/txparams"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	msg := gateway.Message{
		TxID:   txparams.TxID("tx-1"),
		PeerID: "peer-wallet-id",
		Values: map[txparams.ID]any{
			txparams.Amount:     uint64(5000),
			txparams.IsSender:   true,
			txparams.Message:    "for lunch",
			txparams.PeerOffset: []byte{1, 2, 3, 4},
		},
	}

	encoded, err := encodeEnvelope(msg)
	if err != nil {
		t.Fatalf("encodeEnvelope: %v", err)
	}

	txID, peerID, values, err := decodeEnvelope(encoded)
	if err != nil {
		t.Fatalf("decodeEnvelope: %v", err)
	}

	if txID != msg.TxID {
		t.Errorf("got tx id %q, want %q", txID, msg.TxID)
	}
	if peerID != msg.PeerID {
		t.Errorf("got peer id %q, want %q", peerID, msg.PeerID)
	}
	if len(values) != len(msg.Values) {
		t.Fatalf("got %d fields, want %d", len(values), len(msg.Values))
	}

	amount, ok := values[txparams.Amount].(uint64)
	if !ok || amount != 5000 {
		t.Errorf("got amount %v, want 5000", values[txparams.Amount])
	}
	isSender, ok := values[txparams.IsSender].(bool)
	if !ok || !isSender {
		t.Errorf("got is_sender %v, want true", values[txparams.IsSender])
	}
	message, ok := values[txparams.Message].(string)
	if !ok || message != "for lunch" {
		t.Errorf("got message %v, want %q", values[txparams.Message], "for lunch")
	}
}

func TestDecodeEnvelopeSkipsMalformedFields(t *testing.T) {
	good, err := encodeEnvelope(gateway.Message{
		TxID:   txparams.TxID("tx-2"),
		PeerID: "peer",
		Values: map[txparams.ID]any{txparams.Amount: uint64(1)},
	})
	if err != nil {
		t.Fatalf("encodeEnvelope: %v", err)
	}

	var env wireEnvelope
	if err := json.Unmarshal(good, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	env.Fields[uint32(txparams.Fee)] = []byte{0xFF}
	corrupted, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	_, _, values, err := decodeEnvelope(corrupted)
	if err != nil {
		t.Fatalf("decodeEnvelope should not fail on one bad field: %v", err)
	}
	if _, ok := values[txparams.Fee]; ok {
		t.Errorf("expected the malformed field to be dropped, not decoded")
	}
	if _, ok := values[txparams.Amount]; !ok {
		t.Errorf("expected the well-formed field to survive")
	}
}
