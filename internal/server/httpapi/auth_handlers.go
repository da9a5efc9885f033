package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/storekeeper/internal/common"
	"github.com/dmitrijs2005/storekeeper/internal/server/services"
)

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.check(req); err != nil {
		s.respondError(w, r, err)
		return
	}

	user, err := s.auth.ValidateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if user == nil {
		s.respondError(w, r, common.Unauthorized(common.MsgInvalidLogin))
		return
	}

	res, err := s.auth.Login(r.Context(), user)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "logged in", "user_id", user.ID)
	s.respond(w, http.StatusOK, res)
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.check(req); err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.auth.Refresh(r.Context(), services.RefreshInput{UserID: req.UserID, RefreshToken: req.RefreshToken})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respond(w, http.StatusOK, res)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	p, ok := payloadFromContext(r.Context())
	if !ok {
		s.respondError(w, r, common.Unauthorized(common.MsgUnauthorized))
		return
	}

	res, err := s.auth.Logout(r.Context(), p.ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respond(w, http.StatusOK, res)
}
