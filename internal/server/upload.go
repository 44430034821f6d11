package server

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"snagaudit/internal/pipeline"
)

const multipartMemory = 32 << 20

type submissionForm struct {
	AuditID     string `form:"auditId"`
	ProjectName string `form:"projectName"`
}

type textSubmission struct {
	Text        string `json:"text"`
	ProjectName string `json:"projectName"`
	AuditID     string `json:"auditId"`
}

// parseMultipart caps the body at limit and decodes the text fields.
func (s *Service) parseMultipart(w http.ResponseWriter, r *http.Request, limit int64) (*submissionForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, badRequest("file too large")
		}
		return nil, badRequest("invalid multipart body: %v", err)
	}

	var fields submissionForm
	if err := decoder.Decode(&fields, r.MultipartForm.Value); err != nil {
		return nil, badRequest("invalid form fields: %v", err)
	}
	return &fields, nil
}

func (s *Service) handleUploadAudio(w http.ResponseWriter, r *http.Request) {
	fields, err := s.parseMultipart(w, r, s.config.MaxVoiceSize+(1<<20))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("audio")
	if err != nil {
		s.writeError(w, r, badRequest("no audio file provided"))
		return
	}
	defer file.Close()

	if header.Size > s.config.MaxVoiceSize {
		s.writeError(w, r, badRequest("file too large"))
		return
	}

	submission, err := s.pipeline.SubmitAudio(r.Context(), uploadFrom(file, header), fields.AuditID, fields.ProjectName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, submission)
}

func (s *Service) handleUploadText(w http.ResponseWriter, r *http.Request) {
	var body textSubmission
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	submission, err := s.pipeline.SubmitText(r.Context(), body.Text, body.AuditID, body.ProjectName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, submission)
}

func (s *Service) handleUploadMedia(w http.ResponseWriter, r *http.Request) {
	fields, err := s.parseMultipart(w, r, s.config.MaxMediaSize*pipeline.MaxMediaFiles)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["media"]
	if len(headers) == 0 {
		s.writeError(w, r, badRequest("no media files provided"))
		return
	}
	if len(headers) > pipeline.MaxMediaFiles {
		s.writeError(w, r, badRequest("at most %d media files per upload", pipeline.MaxMediaFiles))
		return
	}

	uploads := make([]pipeline.Upload, 0, len(headers))
	for _, header := range headers {
		if header.Size > s.config.MaxMediaSize {
			s.writeError(w, r, badRequest("file too large: %s", header.Filename))
			return
		}

		file, err := header.Open()
		if err != nil {
			s.writeError(w, r, fmt.Errorf("failed to open upload %s: %w", header.Filename, err))
			return
		}
		defer file.Close()

		uploads = append(uploads, uploadFrom(file, header))
	}

	auditID, media, err := s.pipeline.UploadMedia(r.Context(), fields.AuditID, uploads)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"auditId": auditID, "media": media})
}

func uploadFrom(file multipart.File, header *multipart.FileHeader) pipeline.Upload {
	return pipeline.Upload{
		Reader:      file,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}
}
