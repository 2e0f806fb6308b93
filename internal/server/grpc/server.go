// Package grpc serves the issue tracker over gRPC without generated stubs:
// the service descriptor is declared by hand and payloads are
// google.protobuf.Struct documents.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/issuetracker/internal/logging"
	"github.com/dmitrijs2005/issuetracker/internal/server/services"
	"google.golang.org/grpc"
)

type Services struct {
	Issues      *services.IssueService
	Milestones  *services.MilestoneService
	Users       *services.UserService
	Attachments *services.AttachmentService
}

type GRPCServer struct {
	address string
	svc     Services
	logger  logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, svc Services) *GRPCServer {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		svc:     svc,
	}
}

// NewServer builds a *grpc.Server with the interceptors installed and the
// service registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.authInterceptor))
	srv := grpc.NewServer(opts...)
	srv.RegisterService(&ServiceDesc, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
