package grpc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dmitrijs2005/issuetracker/internal/common"
	"github.com/dmitrijs2005/issuetracker/internal/server/auth"
	"github.com/dmitrijs2005/issuetracker/internal/server/models"
	"github.com/dmitrijs2005/issuetracker/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func stringField(in *structpb.Struct, name string) string {
	return in.GetFields()[name].GetStringValue()
}

func idField(in *structpb.Struct, name string) (int64, error) {
	v, ok := in.GetFields()[name]
	if !ok {
		return 0, fmt.Errorf("%s is required: %w", name, common.ErrorValidation)
	}
	n := v.GetNumberValue()
	// float64(math.MaxInt64) rounds up to 2^63, so the bound is exclusive.
	if n <= 0 || n != math.Trunc(n) || n >= 1<<63 {
		return 0, fmt.Errorf("invalid %s: %w", name, common.ErrorValidation)
	}
	return int64(n), nil
}

func requester(ctx context.Context) int64 {
	id, _ := auth.IdentityFromContext(ctx)
	return id.UserID
}

func milestoneMap(m *models.Milestone) map[string]any {
	return map[string]any{
		"id":         m.ID,
		"subject":    m.Subject,
		"start_date": m.StartDate.Format(time.RFC3339),
		"end_date":   m.EndDate.Format(time.RFC3339),
	}
}

func attachmentMap(a *models.Attachment) map[string]any {
	return map[string]any{
		"id":         a.ID,
		"issue_id":   a.IssueID,
		"file_name":  a.FileName,
		"status":     a.UploadStatus,
		"created_at": a.CreatedAt.Format(time.RFC3339),
	}
}

func issueMap(i *models.Issue) map[string]any {
	out := map[string]any{
		"id":         i.ID,
		"subject":    i.Subject,
		"comment":    i.Comment,
		"owner_id":   i.OwnerID,
		"created_at": i.CreatedAt.Format(time.RFC3339),
		"updated_at": i.UpdatedAt.Format(time.RFC3339),
	}
	if i.Owner != nil {
		out["owner_name"] = i.Owner.Name
	}
	if i.Milestone != nil {
		out["milestone"] = milestoneMap(i.Milestone)
	}
	return out
}

func toStruct(m map[string]any) (proto.Message, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return s, nil
}

func (s *GRPCServer) CreateIssue(ctx context.Context, in *structpb.Struct) (proto.Message, error) {
	dto := services.IssueDto{Subject: stringField(in, "subject"), Comment: stringField(in, "comment")}

	issue, err := s.svc.Issues.Add(ctx, dto, requester(ctx))
	if err != nil {
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "issue created", "issue_id", issue.ID)
	return toStruct(issueMap(issue))
}

func (s *GRPCServer) ListIssues(ctx context.Context, _ *structpb.Struct) (proto.Message, error) {
	list, err := s.svc.Issues.List(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	items := make([]any, 0, len(list))
	for _, i := range list {
		items = append(items, issueMap(i))
	}
	return toStruct(map[string]any{"issues": items})
}

func (s *GRPCServer) GetIssue(ctx context.Context, in *structpb.Struct) (proto.Message, error) {
	id, err := idField(in, "id")
	if err != nil {
		return nil, toStatus(err)
	}
	issue, err := s.svc.Issues.FindByID(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(issueMap(issue))
}

func (s *GRPCServer) UpdateIssue(ctx context.Context, in *structpb.Struct) (proto.Message, error) {
	id, err := idField(in, "id")
	if err != nil {
		return nil, toStatus(err)
	}
	dto := services.IssueDto{Subject: stringField(in, "subject"), Comment: stringField(in, "comment")}

	issue, err := s.svc.Issues.Update(ctx, id, dto, requester(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(issueMap(issue))
}

func (s *GRPCServer) DeleteIssue(ctx context.Context, in *structpb.Struct) (proto.Message, error) {
	id, err := idField(in, "id")
	if err != nil {
		return nil, toStatus(err)
	}
	if err := s.svc.Issues.Delete(ctx, id, requester(ctx)); err != nil {
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "issue deleted", "issue_id", id)
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) AttachMilestone(ctx context.Context, in *structpb.Struct) (proto.Message, error) {
	issueID, err := idField(in, "issue_id")
	if err != nil {
		return nil, toStatus(err)
	}
	milestoneID, err := idField(in, "milestone_id")
	if err != nil {
		return nil, toStatus(err)
	}

	issue, err := s.svc.Issues.AttachMilestone(ctx, issueID, milestoneID, requester(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(issueMap(issue))
}

func (s *GRPCServer) CreateMilestone(ctx context.Context, in *structpb.Struct) (proto.Message, error) {
	m, err := s.svc.Milestones.Create(ctx, services.MilestoneDto{
		Subject:   stringField(in, "subject"),
		StartDate: stringField(in, "start_date"),
		EndDate:   stringField(in, "end_date"),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(milestoneMap(m))
}

func (s *GRPCServer) GetMilestone(ctx context.Context, in *structpb.Struct) (proto.Message, error) {
	id, err := idField(in, "id")
	if err != nil {
		return nil, toStatus(err)
	}
	m, err := s.svc.Milestones.FindByID(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(milestoneMap(m))
}

func (s *GRPCServer) ListMilestones(ctx context.Context, _ *structpb.Struct) (proto.Message, error) {
	list, err := s.svc.Milestones.List(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	items := make([]any, 0, len(list))
	for _, m := range list {
		items = append(items, milestoneMap(m))
	}
	return toStruct(map[string]any{"milestones": items})
}

func (s *GRPCServer) RequestUpload(ctx context.Context, in *structpb.Struct) (proto.Message, error) {
	issueID, err := idField(in, "issue_id")
	if err != nil {
		return nil, toStatus(err)
	}

	task, err := s.svc.Attachments.RequestUpload(ctx, issueID, stringField(in, "file_name"), requester(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]any{"attachment": attachmentMap(task.Attachment), "upload_url": task.URL})
}

func (s *GRPCServer) MarkUploaded(ctx context.Context, in *structpb.Struct) (proto.Message, error) {
	id, err := idField(in, "id")
	if err != nil {
		return nil, toStatus(err)
	}
	if err := s.svc.Attachments.MarkUploaded(ctx, id, requester(ctx)); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) ListAttachments(ctx context.Context, in *structpb.Struct) (proto.Message, error) {
	issueID, err := idField(in, "issue_id")
	if err != nil {
		return nil, toStatus(err)
	}
	list, err := s.svc.Attachments.List(ctx, issueID)
	if err != nil {
		return nil, toStatus(err)
	}

	items := make([]any, 0, len(list))
	for _, a := range list {
		items = append(items, attachmentMap(a))
	}
	return toStruct(map[string]any{"attachments": items})
}

func (s *GRPCServer) GetDownloadURL(ctx context.Context, in *structpb.Struct) (proto.Message, error) {
	id, err := idField(in, "id")
	if err != nil {
		return nil, toStatus(err)
	}
	url, err := s.svc.Attachments.DownloadURL(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]any{"url": url})
}

func (s *GRPCServer) RegisterUser(ctx context.Context, in *structpb.Struct) (proto.Message, error) {
	user, err := s.svc.Users.Register(ctx, stringField(in, "user_id"), stringField(in, "name"), stringField(in, "password"))
	if err != nil {
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return toStruct(map[string]any{"id": user.ID, "user_id": user.UserID, "name": user.Name})
}

func (s *GRPCServer) Ping(ctx context.Context, _ *structpb.Struct) (proto.Message, error) {
	return toStruct(map[string]any{"status": "OK"})
}
