package httpapi

import (
	"net/http"
)

// registerUser creates an account. A taken login answers 409.
func (s *Server) registerUser(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID   string `json:"user_id"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	err := decodeInput(w, r, &in, func(get func(string) string) {
		in.UserID = firstNonEmpty(get("user_id"), get("userId"))
		in.Name = get("name")
		in.Password = get("password")
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.svc.Users.Register(r.Context(), in.UserID, in.Name, in.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "user registered", "user_id", user.ID)
	respond(w, r, http.StatusCreated, userView{ID: user.ID, UserID: user.UserID, Name: user.Name}, "/issues")
}
