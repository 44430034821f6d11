package server

import "net/http"

func (s *Service) handleSyncSnag(w http.ResponseWriter, r *http.Request) {
	outcome, err := s.syncer.SyncSnag(r.Context(), r.PathValue("snagId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, outcome)
}

func (s *Service) handleSyncAudit(w http.ResponseWriter, r *http.Request) {
	results, err := s.syncer.SyncAudit(r.Context(), r.PathValue("auditId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"results": results})
}
