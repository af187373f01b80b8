// Command walletd wires C1-C6 plus the ambient stack together and runs the
// daemon: HTTP + gRPC front doors, the negotiation ticker, the Kafka
// transport's inbound listener, and the asynq worker for chain submission.
// Grounded on wallet-core-version-autoMigrate/cmd/wallet-server/main.go.
package main

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"

	"github.com/dwoura/privchain-wallet/internal/gateway/mq"
	"github.com/dwoura/privchain-wallet/internal/keykeeper"
	"github.com/dwoura/privchain-wallet/internal/model"
	"github.com/dwoura/privchain-wallet/internal/negotiation"
	"github.com/dwoura/privchain-wallet/internal/server"
	"github.com/dwoura/privchain-wallet/internal/txbuilder"
	"github.com/dwoura/privchain-wallet/internal/txparams"
	"github.com/dwoura/privchain-wallet/internal/txparams/lock"
	"github.com/dwoura/privchain-wallet/pkg/bip32"
	"github.com/dwoura/privchain-wallet/pkg/bip39"
	"github.com/dwoura/privchain-wallet/pkg/config"
	"github.com/dwoura/privchain-wallet/pkg/database"
	"github.com/dwoura/privchain-wallet/pkg/logger"
)

func main() {
	config.Init()
	logger.Init(config.Global.App.Env)
	defer logger.Sync()

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		config.Global.DB.Host, config.Global.DB.User, config.Global.DB.Password,
		config.Global.DB.Name, config.Global.DB.Port, config.Global.DB.SSLMode)

	db, err := database.ConnectPostgres(dsn)
	if err != nil {
		logger.Fatal("postgres connection failed", zap.Error(err))
	}
	if config.Global.App.Env == "development" {
		if err := db.AutoMigrate(model.AllModels()...); err != nil {
			logger.Fatal("auto-migrate failed", zap.Error(err))
		}
	}

	rdb := database.ConnectRedis(config.Global.Redis.Addr, config.Global.Redis.Password, config.Global.Redis.DB)

	mnemonicService := bip39.NewMnemonicService()
	seed := mnemonicService.MnemonicToSeed(config.Global.Wallet.Mnemonic, "")
	masterKey, err := bip32.NewMasterKeyFromSeed(seed)
	if err != nil {
		logger.Fatal("master key derivation failed", zap.Error(err))
	}

	store := txparams.New(db, rdb)
	local := keykeeper.NewLocal(db, masterKey)
	keeper := keykeeper.NewSync(keykeeper.NewThreaded(local))
	builder := txbuilder.New(store, keeper, db)
	negotiationLock := lock.NewRedisLock(rdb)

	transport := mq.NewKafkaTransport(config.Global.Kafka.Brokers)
	gw := mq.NewMQGateway(transport, config.Global.Redis.Addr, config.Global.Redis.Password, config.Global.Redis.DB, rdb)

	driver := negotiation.New(store, builder, gw, db, negotiationLock, config.Global.Negotiation)

	ctx := context.Background()
	transport.Listen(ctx, config.Global.Kafka.Brokers, "wallet-negotiation", func(ctx context.Context, txID txparams.TxID, values map[txparams.ID]any) error {
		for id, v := range values {
			if _, ok := txparams.WireIDs[id]; !ok {
				continue
			}
			if err := store.Set(ctx, txID, id, 0, v); err != nil {
				return err
			}
		}
		_, err := driver.Update(ctx, txID)
		return err
	})

	worker := mq.NewWorker(config.Global.Redis.Addr, config.Global.Redis.Password, config.Global.Redis.DB, 10, &mq.TaskHandlers{
		Store: store,
		Chain: nil, // supplied by the node-facing deployment; out of scope here.
	})
	worker.Start()
	defer worker.Stop()

	ticker := negotiation.NewTicker(db, driver, negotiationLock)
	ticker.Start()
	defer ticker.Stop()

	handlers := &server.Handlers{Store: store, Driver: driver, DB: db}
	httpRouter := server.NewHTTPRouter(handlers)

	grpcServer, _ := server.NewGRPCServer()
	lis, err := net.Listen("tcp", ":"+config.Global.App.GRPCPort)
	if err != nil {
		logger.Fatal("grpc listen failed", zap.Error(err))
	}
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc server stopped", zap.Error(err))
		}
	}()

	logger.Info("walletd listening", zap.String("http_port", config.Global.App.HTTPPort), zap.String("grpc_port", config.Global.App.GRPCPort))
	if err := httpRouter.Run(":" + config.Global.App.HTTPPort); err != nil {
		logger.Fatal("http server stopped", zap.Error(err))
	}
}
