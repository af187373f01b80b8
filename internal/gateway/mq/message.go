package mq

import (
	"encoding/json"
	"fmt"

	"github.com/dwoura/privchain-wallet/internal/gateway"
	"github.com/dwoura/privchain-wallet/internal/txparams"
)

// wireEnvelope is the JSON form of a gateway.Message on the Kafka topic.
// Values are re-encoded through the same length-prefixed codec the
// parameter store uses, so a received envelope decodes with the exact same
// Decode call a local SetX call would use.
type wireEnvelope struct {
	TxID   string            `json:"tx_id"`
	PeerID string            `json:"peer_id"`
	Fields map[uint32][]byte `json:"fields"`
}

func encodeEnvelope(msg gateway.Message) ([]byte, error) {
	fields := make(map[uint32][]byte, len(msg.Values))
	for id, v := range msg.Values {
		framed, err := txparams.Encode(id, v)
		if err != nil {
			return nil, fmt.Errorf("mq: encode field %d: %w", id, err)
		}
		fields[uint32(id)] = framed
	}
	return json.Marshal(wireEnvelope{
		TxID:   string(msg.TxID),
		PeerID: msg.PeerID,
		Fields: fields,
	})
}

// decodeEnvelope unpacks the wire JSON and decodes each field through the
// same codec Store.Set/Get use, so the caller gets back the typed Go values
// (uint64, bool, string, []byte, []uint64) ready to hand to Store.Set.
func decodeEnvelope(b []byte) (txparams.TxID, string, map[txparams.ID]any, error) {
	var env wireEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return "", "", nil, fmt.Errorf("mq: decode envelope: %w", err)
	}
	values := make(map[txparams.ID]any, len(env.Fields))
	for rawID, framed := range env.Fields {
		id := txparams.ID(rawID)
		v, err := txparams.Decode(id, framed)
		if err != nil {
			continue
		}
		values[id] = v
	}
	return txparams.TxID(env.TxID), env.PeerID, values, nil
}
