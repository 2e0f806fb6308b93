package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/issuetracker/internal/common"
	"github.com/dmitrijs2005/issuetracker/internal/server/services"
)

func decodeIssue(w http.ResponseWriter, r *http.Request) (services.IssueDto, error) {
	var dto services.IssueDto
	err := decodeInput(w, r, &dto, func(get func(string) string) {
		dto.Subject = get("subject")
		dto.Comment = get("comment")
	})
	return dto, err
}

func (s *Server) listIssues(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Issues.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	views := make([]issueView, 0, len(list))
	for _, i := range list {
		views = append(views, newIssueView(i))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) showIssue(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	issue, err := s.svc.Issues.FindByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newIssueView(issue))
}

func (s *Server) createIssue(w http.ResponseWriter, r *http.Request) {
	dto, err := decodeIssue(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	issue, err := s.svc.Issues.Add(r.Context(), dto, identity(r).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "issue created", "issue_id", issue.ID, "owner", identity(r).Login)
	respond(w, r, http.StatusCreated, newIssueView(issue), "/issues")
}

func (s *Server) updateIssue(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	dto, err := decodeIssue(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	issue, err := s.svc.Issues.Update(r.Context(), id, dto, identity(r).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, newIssueView(issue), "/")
}

func (s *Server) deleteIssue(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Issues.Delete(r.Context(), id, identity(r).UserID); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "issue deleted", "issue_id", id, "owner", identity(r).Login)
	respond(w, r, http.StatusNoContent, nil, "/")
}

// overrideIssueMethod lets HTML forms, which can only POST, reach the
// update and delete handlers through a _method field.
func (s *Server) overrideIssueMethod(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.writeError(w, r, fmt.Errorf("invalid form: %v: %w", err, common.ErrorValidation))
		return
	}

	switch strings.ToLower(r.PostForm.Get("_method")) {
	case "put":
		s.updateIssue(w, r)
	case "delete":
		s.deleteIssue(w, r)
	default:
		w.Header().Set("Allow", "GET, PUT, DELETE")
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed", RequestID: RequestIDFromContext(r.Context())})
	}
}

func (s *Server) attachMilestone(w http.ResponseWriter, r *http.Request) {
	issueID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	milestoneID, err := pathID(r, "milestoneID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	issue, err := s.svc.Issues.AttachMilestone(r.Context(), issueID, milestoneID, identity(r).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, newIssueView(issue), fmt.Sprintf("/issues/%d", issueID))
}
