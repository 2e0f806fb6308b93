package httpapi

import (
	"fmt"
	"net/http"
)

func (s *Server) listAttachments(w http.ResponseWriter, r *http.Request) {
	issueID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.svc.Attachments.List(r.Context(), issueID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	views := make([]attachmentView, 0, len(list))
	for _, a := range list {
		views = append(views, newAttachmentView(a))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) requestUpload(w http.ResponseWriter, r *http.Request) {
	issueID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var in struct {
		FileName string `json:"file_name"`
	}
	err = decodeInput(w, r, &in, func(get func(string) string) {
		in.FileName = get("file_name")
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	task, err := s.svc.Attachments.RequestUpload(r.Context(), issueID, in.FileName, identity(r).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// The upload URL is the whole point of the response, so this is JSON
	// even for form posts.
	writeJSON(w, http.StatusCreated, uploadView{Attachment: newAttachmentView(task.Attachment), UploadURL: task.URL})
}

func (s *Server) markUploaded(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Attachments.MarkUploaded(r.Context(), id, identity(r).UserID); err != nil {
		s.writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusNoContent, nil, fmt.Sprintf("/attachments/%d", id))
}

func (s *Server) downloadAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	url, err := s.svc.Attachments.DownloadURL(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}
