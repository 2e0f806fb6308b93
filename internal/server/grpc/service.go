package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "issuetracker.v1.IssueTracker"

// IssueTrackerServer is the server API. Requests are google.protobuf.Struct
// documents whose fields mirror the JSON bodies of the HTTP API.
type IssueTrackerServer interface {
	CreateIssue(context.Context, *structpb.Struct) (proto.Message, error)
	ListIssues(context.Context, *structpb.Struct) (proto.Message, error)
	GetIssue(context.Context, *structpb.Struct) (proto.Message, error)
	UpdateIssue(context.Context, *structpb.Struct) (proto.Message, error)
	DeleteIssue(context.Context, *structpb.Struct) (proto.Message, error)
	AttachMilestone(context.Context, *structpb.Struct) (proto.Message, error)
	CreateMilestone(context.Context, *structpb.Struct) (proto.Message, error)
	GetMilestone(context.Context, *structpb.Struct) (proto.Message, error)
	ListMilestones(context.Context, *structpb.Struct) (proto.Message, error)
	RequestUpload(context.Context, *structpb.Struct) (proto.Message, error)
	MarkUploaded(context.Context, *structpb.Struct) (proto.Message, error)
	ListAttachments(context.Context, *structpb.Struct) (proto.Message, error)
	GetDownloadURL(context.Context, *structpb.Struct) (proto.Message, error)
	RegisterUser(context.Context, *structpb.Struct) (proto.Message, error)
	Ping(context.Context, *structpb.Struct) (proto.Message, error)
}

// FullMethod returns the "/service/method" path of a method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unary(method string, call func(IssueTrackerServer, context.Context, *structpb.Struct) (proto.Message, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(IssueTrackerServer), ctx, req.(*structpb.Struct))
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*IssueTrackerServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateIssue", IssueTrackerServer.CreateIssue),
		unary("ListIssues", IssueTrackerServer.ListIssues),
		unary("GetIssue", IssueTrackerServer.GetIssue),
		unary("UpdateIssue", IssueTrackerServer.UpdateIssue),
		unary("DeleteIssue", IssueTrackerServer.DeleteIssue),
		unary("AttachMilestone", IssueTrackerServer.AttachMilestone),
		unary("CreateMilestone", IssueTrackerServer.CreateMilestone),
		unary("GetMilestone", IssueTrackerServer.GetMilestone),
		unary("ListMilestones", IssueTrackerServer.ListMilestones),
		unary("RequestUpload", IssueTrackerServer.RequestUpload),
		unary("MarkUploaded", IssueTrackerServer.MarkUploaded),
		unary("ListAttachments", IssueTrackerServer.ListAttachments),
		unary("GetDownloadURL", IssueTrackerServer.GetDownloadURL),
		unary("RegisterUser", IssueTrackerServer.RegisterUser),
		unary("Ping", IssueTrackerServer.Ping),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "issuetracker.proto",
}
