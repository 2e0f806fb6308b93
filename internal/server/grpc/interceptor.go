package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/issuetracker/internal/common"
	"github.com/dmitrijs2005/issuetracker/internal/server/auth"
	"github.com/dmitrijs2005/issuetracker/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// protectedMethods need an authenticated caller.
var protectedMethods = map[string]bool{
	FullMethod("CreateIssue"):     true,
	FullMethod("UpdateIssue"):     true,
	FullMethod("DeleteIssue"):     true,
	FullMethod("AttachMilestone"): true,
	FullMethod("CreateMilestone"): true,
	FullMethod("RequestUpload"):   true,
	FullMethod("MarkUploaded"):    true,
}

func (s *GRPCServer) authInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	var value string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AuthorizationHeaderName); len(values) > 0 {
			value = values[0]
		}
	}

	creds, err := auth.ParseAuthorization(value)
	if err != nil {
		return nil, toStatus(err)
	}

	var user *models.User
	switch creds.Scheme {
	case auth.SchemeBasic:
		user, err = s.svc.Users.Authenticate(ctx, creds.Login, creds.Password)
	case auth.SchemeBearer:
		user, err = s.svc.Users.Identify(ctx, creds.Token)
	}
	if err != nil {
		return nil, toStatus(err)
	}

	if user != nil {
		ctx = auth.ContextWithIdentity(ctx, auth.Identity{UserID: user.ID, Login: user.UserID, Name: user.Name})
	} else if protectedMethods[info.FullMethod] {
		return nil, toStatus(common.ErrorUnauthorized)
	}

	return handler(ctx, req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	attrs := []any{"method", info.FullMethod, "code", code.String(), "duration_ms", time.Since(start).Milliseconds()}
	if code == codes.Internal {
		s.logger.Error(ctx, "grpc request", append(attrs, "error", err)...)
		return resp, err
	}
	s.logger.Info(ctx, "grpc request", attrs...)
	return resp, err
}
