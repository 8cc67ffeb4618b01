package grpc

import (
	"net"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"kost-service/internal/observability"
)

// ServiceName is the health-checked service name besides the overall "" entry.
const ServiceName = "kost.KostService"

// HealthServer exposes grpc.health.v1 for load balancers and orchestrators.
type HealthServer struct {
	server *grpclib.Server
	health *health.Server
	logger *zap.Logger
}

func NewHealthServer(logger *zap.Logger) *HealthServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	server := grpclib.NewServer(
		grpclib.StatsHandler(otelgrpc.NewServerHandler()),
		grpclib.ChainUnaryInterceptor(observability.GRPCServerMetricsUnaryInterceptor()),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(server, hs)
	s := &HealthServer{server: server, health: hs, logger: logger}
	s.SetServing(false)
	return s
}

// SetServing flips the reported status of the service.
func (s *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Serve blocks until the listener fails or Stop is called.
func (s *HealthServer) Serve(lis net.Listener) error {
	s.logger.Info("grpc health server listening", zap.String("addr", lis.Addr().String()))
	return s.server.Serve(lis)
}

func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}
