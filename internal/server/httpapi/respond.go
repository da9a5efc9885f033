package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/storekeeper/internal/common"
)

const (
	msgInvalidPayload = "invalid request payload"
	maxBodyBytes      = 1 << 20
)

func (s *Server) respond(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error(context.Background(), "marshal response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":true,"message":["unknown error"],"data":null}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *Server) respondFailure(w http.ResponseWriter, status int, msgs ...string) {
	s.respond(w, status, common.Failure(msgs...))
}

// respondError turns err into a failure envelope. Unexpected errors are
// logged and reported without detail.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := common.StatusFromError(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	s.respondFailure(w, status, common.MessagesFromError(err)...)
}

// decodeJSON reads a single JSON object from the body into dst.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return common.BadRequest("request body is empty")
		}
		return common.BadRequest(msgInvalidPayload)
	}
	return nil
}
