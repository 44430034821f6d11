package server

import (
	"encoding/json"
	"net/http"

	"snagaudit/pkg/types"
)

type auditsQuery struct {
	Limit uint64 `form:"limit"`
}

func (s *Service) handleListAudits(w http.ResponseWriter, r *http.Request) {
	var q auditsQuery
	if err := decoder.Decode(&q, r.URL.Query()); err != nil {
		s.writeError(w, r, badRequest("invalid query: %v", err))
		return
	}

	audits, err := s.pipeline.RecentAudits(r.Context(), q.Limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, audits)
}

func (s *Service) handleListSnags(w http.ResponseWriter, r *http.Request) {
	var filters types.SnagFilters
	if err := decoder.Decode(&filters, r.URL.Query()); err != nil {
		s.writeError(w, r, badRequest("invalid filters: %v", err))
		return
	}

	snags, err := s.pipeline.ListSnags(r.Context(), filters)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, snags)
}

func (s *Service) handleAuditDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.pipeline.AuditDetail(r.Context(), r.PathValue("auditId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, detail)
}

func (s *Service) handleMatchMedia(w http.ResponseWriter, r *http.Request) {
	matches, err := s.pipeline.SuggestMediaMatches(r.Context(), r.PathValue("auditId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
}

func (s *Service) handleSnagDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.pipeline.SnagDetail(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, detail)
}

func (s *Service) handleUpdateSnag(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	update, err := snagUpdateFrom(body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	snag, err := s.pipeline.UpdateSnag(r.Context(), r.PathValue("id"), update)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, snag)
}

// snagUpdateFrom keeps only whitelisted keys. A present null clears the
// field; unknown keys are ignored.
func snagUpdateFrom(body map[string]any) (types.SnagUpdate, error) {
	var update types.SnagUpdate

	fields := map[string]**string{
		"snag_description":    &update.Description,
		"project_name":        &update.ProjectName,
		"recommended_trade":   &update.RecommendedTrade,
		"recommended_builder": &update.RecommendedBuilder,
		"deadline":            &update.Deadline,
		"materials_needed":    &update.MaterialsNeeded,
		"plant_needed":        &update.PlantNeeded,
		"drawing_reference":   &update.DrawingReference,
		"additional_notes":    &update.AdditionalNotes,
	}

	for key, dst := range fields {
		raw, ok := body[key]
		if !ok {
			continue
		}
		value, err := stringField(key, raw)
		if err != nil {
			return types.SnagUpdate{}, err
		}
		*dst = &value
	}

	if raw, ok := body["status"]; ok {
		value, err := stringField("status", raw)
		if err != nil {
			return types.SnagUpdate{}, err
		}
		status := types.SnagStatus(value)
		update.Status = &status
	}

	return update, nil
}

func stringField(key string, raw any) (string, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case float64, bool:
		b, _ := json.Marshal(v)
		return string(b), nil
	default:
		return "", badRequest("%s must be a string", key)
	}
}

func (s *Service) handleAttachMedia(w http.ResponseWriter, r *http.Request) {
	var body struct {
		MediaIDs *[]string `json:"mediaIds"`
	}
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if body.MediaIDs == nil {
		s.writeError(w, r, badRequest("mediaIds array required"))
		return
	}

	detail, err := s.pipeline.AttachMedia(r.Context(), r.PathValue("id"), *body.MediaIDs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, detail)
}
