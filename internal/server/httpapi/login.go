package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/issuetracker/internal/common"
	"github.com/dmitrijs2005/issuetracker/internal/server/auth"
)

// login exchanges Basic credentials for a bearer token.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	creds, err := auth.ParseAuthorization(r.Header.Get(common.AuthorizationHeaderName))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if creds.Scheme != auth.SchemeBasic {
		s.writeError(w, r, common.ErrorUnauthorized)
		return
	}

	user, err := s.svc.Users.Authenticate(r.Context(), creds.Login, creds.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	token, err := s.svc.Users.IssueToken(r.Context(), user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenView{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
	})
}
