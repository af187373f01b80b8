package mq

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/dwoura/privchain-wallet/internal/gateway"
	"github.com/dwoura/privchain-wallet/internal/txparams"
)

const chainTipKey = "chain:tip:height"

// MQGateway implements gateway.Gateway: peer parameter exchange over Kafka,
// node submission/confirmation through an asynq retry queue, and the chain
// tip read from a Redis key an out-of-scope chain-sync process maintains.
type MQGateway struct {
	transport *KafkaTransport
	client    *asynq.Client
	cache     *redis.Client
}

func NewMQGateway(transport *KafkaTransport, redisAddr, redisPassword string, redisDB int, cache *redis.Client) *MQGateway {
	return &MQGateway{
		transport: transport,
		client:    asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr, Password: redisPassword, DB: redisDB}),
		cache:     cache,
	}
}

func (g *MQGateway) SendTxParameters(ctx context.Context, msg gateway.Message) error {
	return g.transport.SendTxParameters(ctx, msg)
}

func (g *MQGateway) RegisterTx(ctx context.Context, txID txparams.TxID, tx any) error {
	task, err := NewRegisterTxTask(txID, tx)
	if err != nil {
		return err
	}
	_, err = g.client.EnqueueContext(ctx, task)
	return err
}

func (g *MQGateway) ConfirmKernel(ctx context.Context, txID txparams.TxID, kernelID []byte) error {
	task, err := NewConfirmKernelTask(txID, kernelID)
	if err != nil {
		return err
	}
	_, err = g.client.EnqueueContext(ctx, task)
	return err
}

// CurrentTip reads the cached chain height. The cache is kept warm by an
// out-of-scope chain-sync process; a cold cache surfaces as an error rather
// than a silent stale zero, since the driver uses this value to decide
// whether a transaction has expired.
func (g *MQGateway) CurrentTip(ctx context.Context) (uint64, error) {
	v, err := g.cache.Get(ctx, chainTipKey).Uint64()
	if err != nil {
		return 0, fmt.Errorf("mq: chain tip unavailable: %w", err)
	}
	return v, nil
}

func (g *MQGateway) Close() error {
	return g.client.Close()
}
