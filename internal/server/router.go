// Package server is the ops-facing boundary: an HTTP router for
// health/metrics/swagger plus the negotiation control endpoints, grounded
// on wallet-core-version-autoMigrate's NewHTTPRouter.
package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/dwoura/privchain-wallet/internal/metrics"
)

func NewHTTPRouter(h *Handlers) *gin.Engine {
	metrics.Init()

	r := gin.Default()
	r.Use(metrics.GinMiddleware())

	r.GET("/health", HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	{
		tx := api.Group("/tx")
		tx.POST("/send", h.CreateSend)
		tx.POST("/split", h.CreateSplit)
		tx.GET("/:tx_id", h.GetTx)
		tx.POST("/:tx_id/approve", h.ApproveSend)
		tx.POST("/:tx_id/tick", h.Tick)
	}

	return r
}
