package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"snagaudit/pkg/types"
)

type errorBody struct {
	Error string `json:"error"`
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrValidation), errors.Is(err, types.ErrAlreadySynced):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrConstraint):
		return http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrTranscription), errors.Is(err, types.ErrExtractionParse), errors.Is(err, types.ErrExternalService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err onto a status code. Unclassified errors are logged
// and reported without detail.
func (s *Service) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	entry := s.logger.WithError(err).WithField("path", r.URL.Path)
	message := err.Error()
	switch {
	case status == http.StatusInternalServerError:
		entry.Error("request failed")
		message = "internal server error"
	case status >= 500:
		entry.Error("upstream processing failed")
	default:
		entry.Debug("request rejected")
	}

	s.writeJSON(w, status, errorBody{Error: message})
}

func badRequest(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, types.ErrValidation)...)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid JSON body: %v", err)
	}
	return nil
}
