// Package mq implements C6's Gateway interface over Kafka (peer parameter
// exchange), Redis (chain tip cache) and asynq (retryable submission to the
// node). Grounded on wallet-core-monolith's KafkaProducer, the
// wallet-core-version-autoMigrate KafkaConsumer, and wallet-core's
// asynq worker/client pair.
package mq

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/dwoura/privchain-wallet/internal/gateway"
	"github.com/dwoura/privchain-wallet/internal/txparams"
	"github.com/dwoura/privchain-wallet/pkg/logger"
)

const negotiationTopic = "wallet.negotiation.params"

// InboundHandler applies a received set of parameters to the local store
// and re-enters the negotiation driver for txID. It's a callback rather
// than a direct import of internal/negotiation so this package doesn't
// have to depend on the driver to depend on its transport.
type InboundHandler func(ctx context.Context, txID txparams.TxID, values map[txparams.ID]any) error

// KafkaTransport produces outbound peer messages and consumes the
// negotiation topic in a background goroutine, applying every received
// envelope through an InboundHandler.
type KafkaTransport struct {
	writer  *kafka.Writer
	reader  *kafka.Reader
	handler InboundHandler
}

// NewKafkaTransport builds the producer side. Call Listen to start
// consuming; a pure-sender (e.g. the ticker-only replica) can skip Listen.
func NewKafkaTransport(brokers []string) *KafkaTransport {
	return &KafkaTransport{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  negotiationTopic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			RequiredAcks:           kafka.RequireAll,
			BatchSize:              50,
			BatchTimeout:           10 * time.Millisecond,
		},
	}
}

func (t *KafkaTransport) SendTxParameters(ctx context.Context, msg gateway.Message) error {
	payload, err := encodeEnvelope(msg)
	if err != nil {
		return err
	}
	if err := t.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.PeerID),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("mq: publish negotiation params: %w", err)
	}
	return nil
}

// Listen starts the consumer loop. groupID should be unique per wallet
// identity (not per replica): every replica behind the same wallet id
// joins the same consumer group so a peer message goes to one replica, not
// to all of them. The offset is committed only after the handler succeeds,
// so a message can be delivered again after a restart.
func (t *KafkaTransport) Listen(ctx context.Context, brokers []string, groupID string, handler InboundHandler) {
	t.handler = handler
	t.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       negotiationTopic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.LastOffset,
	})
	go t.consumeLoop(ctx)
}

func (t *KafkaTransport) consumeLoop(ctx context.Context) {
	defer t.reader.Close()
	for {
		m, err := t.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("mq: fetch negotiation message failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		txID, _, values, err := decodeEnvelope(m.Value)
		if err != nil {
			logger.Error("mq: malformed negotiation envelope", zap.Error(err))
			continue
		}
		if err := t.handler(ctx, txID, values); err != nil {
			logger.Error("mq: inbound handler failed", zap.String("tx_id", string(txID)), zap.Error(err))
			continue
		}
		if err := t.reader.CommitMessages(ctx, m); err != nil {
			logger.Error("mq: commit offset failed", zap.Error(err))
		}
	}
}

func (t *KafkaTransport) Close() error {
	if t.reader != nil {
		_ = t.reader.Close()
	}
	return t.writer.Close()
}
