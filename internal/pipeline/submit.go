package pipeline

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"snagaudit/internal/metrics"
	"snagaudit/internal/utils"
	"snagaudit/pkg/types"

	"github.com/sirupsen/logrus"
)

var audioTypes = map[string]bool{
	"audio/mpeg":  true,
	"audio/mp3":   true,
	"audio/wav":   true,
	"audio/webm":  true,
	"audio/mp4":   true,
	"audio/x-m4a": true,
	"audio/m4a":   true,
}

var audioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".webm": true,
	".m4a":  true,
	".mp4":  true,
}

// ValidAudio accepts recordings by MIME type or file extension.
func ValidAudio(filename, contentType string) bool {
	return audioTypes[mediaType(contentType)] || audioExtensions[strings.ToLower(path.Ext(filename))]
}

// Upload is one file received from a client.
type Upload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// SubmitAudio stores the recording, transcribes it and records the extracted snags.
func (s *Service) SubmitAudio(ctx context.Context, audio Upload, auditID, projectName string) (*types.Submission, error) {
	if audio.Reader == nil {
		return nil, fmt.Errorf("no audio file provided: %w", types.ErrValidation)
	}
	if !ValidAudio(audio.Filename, audio.ContentType) {
		return nil, fmt.Errorf("invalid audio format %q: %w", audio.ContentType, types.ErrValidation)
	}

	key := voiceKey(audio.Filename)
	if err := s.files.Save(ctx, key, audio.Reader, audio.Size, audio.ContentType); err != nil {
		return nil, fmt.Errorf("failed to store recording: %w", err)
	}

	rc, err := s.files.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to reopen recording: %w", err)
	}
	defer rc.Close()

	transcript, err := s.extractor.Transcribe(ctx, rc, path.Base(key))
	if err != nil {
		metrics.Submissions.WithLabelValues("audio", "failed").Inc()
		return nil, err
	}

	submission, err := s.submit(ctx, transcript, auditID, projectName)
	if err != nil {
		metrics.Submissions.WithLabelValues("audio", "failed").Inc()
		return nil, err
	}
	submission.Transcript = transcript
	metrics.Submissions.WithLabelValues("audio", "ok").Inc()

	return submission, nil
}

// SubmitText records the snags extracted from typed text.
func (s *Service) SubmitText(ctx context.Context, text, auditID, projectName string) (*types.Submission, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no text provided: %w", types.ErrValidation)
	}

	submission, err := s.submit(ctx, text, auditID, projectName)
	if err != nil {
		metrics.Submissions.WithLabelValues("text", "failed").Inc()
		return nil, err
	}
	metrics.Submissions.WithLabelValues("text", "ok").Inc()

	return submission, nil
}

// submit extracts before writing anything, so a failed extraction stores nothing.
func (s *Service) submit(ctx context.Context, transcript, auditID, projectName string) (*types.Submission, error) {
	snags, err := s.extractor.Extract(ctx, transcript, s.project(projectName))
	if err != nil {
		return nil, err
	}

	auditID = newAuditID(auditID)
	if err := s.ensureAudit(ctx, auditID, projectName); err != nil {
		return nil, err
	}

	for i := range snags {
		snags[i].AuditID = auditID
		if err := s.snags.CreateSnag(ctx, &snags[i]); err != nil {
			return nil, fmt.Errorf("failed to store snag %d of %d: %w", i+1, len(snags), err)
		}
	}
	metrics.SnagsExtracted.Add(float64(len(snags)))

	s.logger.WithFields(logrus.Fields{"audit_id": auditID, "count": len(snags)}).Info("snags extracted")

	return &types.Submission{AuditID: auditID, Snags: snags}, nil
}

func voiceKey(filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, "\\", "/"))))
	if ext == "" || !audioExtensions[ext] {
		ext = ".webm"
	}
	return "voice/" + utils.NanoID() + ext
}

func mediaType(contentType string) string {
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
