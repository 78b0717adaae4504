// Package grpc hosts the gRPC endpoint that task CRUD services register on.
// Every call passes through AuthInterceptor; the standard health service is
// registered and public.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/taskauth/internal/logging"
	"github.com/dmitrijs2005/taskauth/internal/server/auth"
	"github.com/dmitrijs2005/taskauth/internal/server/metrics"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type GRPCServer struct {
	address string
	srv     *grpc.Server
	health  *health.Server
	logger  logging.Logger
}

// NewGRPCServer builds a server whose calls are authenticated with v.
// Services are added through Register before Run.
func NewGRPCServer(address string, l logging.Logger, v auth.TokenVerifier, m *metrics.Metrics) *GRPCServer {
	if l == nil {
		l = logging.Nop{}
	}
	interceptor := NewAuthInterceptor(v, l, m, HealthMethodPrefix)

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(interceptor.Unary),
		grpc.ChainStreamInterceptor(interceptor.Stream),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	return &GRPCServer{
		address: address,
		srv:     srv,
		health:  hs,
		logger:  l.With("module", "grpc_server"),
	}
}

// Register adds a service implementation, e.g. a generated task CRUD server.
func (s *GRPCServer) Register(desc *grpc.ServiceDesc, impl interface{}) {
	s.srv.RegisterService(desc, impl)
	s.health.SetServingStatus(desc.ServiceName, healthpb.HealthCheckResponse_SERVING)
}

func (s *GRPCServer) Run(ctx context.Context) error {
	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		s.srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := s.srv.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return err
	}
	return nil
}
