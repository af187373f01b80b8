package server

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// NewGRPCServer registers nothing but the standard health service: this
// wallet exposes its API over HTTP (router.go); the gRPC listener exists
// so an orchestrator can probe liveness the same way it would for the
// teacher's AddressService, grounded on wallet-core's NewGRPCServer.
func NewGRPCServer() (*grpc.Server, *health.Server) {
	s := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return s, hs
}
