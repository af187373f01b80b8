package mq

import (
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/dwoura/privchain-wallet/pkg/logger"
)

// Worker is the asynq consumer side for RegisterTx/ConfirmKernel delivery,
// grounded on wallet-core's worker.Server.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

func NewWorker(redisAddr, redisPassword string, redisDB, concurrency int, handlers *TaskHandlers) *Worker {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr, Password: redisPassword, DB: redisDB},
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeRegisterTx, handlers.HandleRegisterTx)
	mux.HandleFunc(TypeConfirmKernel, handlers.HandleConfirmKernel)

	return &Worker{server: srv, mux: mux}
}

func (w *Worker) Start() {
	go func() {
		if err := w.server.Run(w.mux); err != nil {
			logger.Fatal("gateway worker failed", zap.Error(err))
		}
	}()
}

func (w *Worker) Stop() {
	w.server.Shutdown()
}
