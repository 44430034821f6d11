package server

import (
	"io"
	"mime"
	"net/http"
	"path"
)

func (s *Service) handleMediaFile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	rc, err := s.pipeline.OpenMedia(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer rc.Close()

	if contentType := mime.TypeByExtension(path.Ext(name)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Cache-Control", "private, max-age=3600")

	if _, err := io.Copy(w, rc); err != nil {
		s.logger.WithError(err).WithField("name", name).Warn("failed to stream media")
	}
}
