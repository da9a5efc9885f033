package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/storekeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
)

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.check(req); err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.users.Create(r.Context(), services.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respond(w, http.StatusCreated, res)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := parsePageQuery(q)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	req := listUsersQuery{Name: q.Get("name"), pageQuery: page}
	if err := s.check(req); err != nil {
		s.respondError(w, r, err)
		return
	}

	take, pg := req.values()
	res, err := s.users.List(r.Context(), services.ListUsersInput{Name: req.Name, Take: take, Page: pg})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respond(w, http.StatusOK, res)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	res, err := s.users.ShowByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, res)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.check(req); err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.users.Update(r.Context(), chi.URLParam(r, "id"), services.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respond(w, http.StatusOK, res)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	res, err := s.users.DestroyByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, res)
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.check(req); err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.users.SendForgotPasswordEmail(r.Context(), req.Email)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respond(w, http.StatusCreated, res)
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.check(req); err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.users.ResetPassword(r.Context(), services.ResetPasswordInput{
		Token:              req.Token,
		NewPassword:        req.NewPassword,
		ConfirmNewPassword: req.ConfirmNewPassword,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respond(w, http.StatusCreated, res)
}
