package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/issuetracker/internal/server/services"
)

func (s *Server) listMilestones(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Milestones.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	views := make([]milestoneView, 0, len(list))
	for _, m := range list {
		views = append(views, newMilestoneView(m))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) showMilestone(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	m, err := s.svc.Milestones.FindByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newMilestoneView(m))
}

func (s *Server) createMilestone(w http.ResponseWriter, r *http.Request) {
	var dto services.MilestoneDto
	err := decodeInput(w, r, &dto, func(get func(string) string) {
		dto.Subject = get("subject")
		dto.StartDate = firstNonEmpty(get("start_date"), get("startDate"))
		dto.EndDate = firstNonEmpty(get("end_date"), get("endDate"))
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	m, err := s.svc.Milestones.Create(r.Context(), dto)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, newMilestoneView(m), "/milestones")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
