package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"snagaudit/pkg/types"

	"github.com/sirupsen/logrus"
)

// Photo is an image handed to the vision model.
type Photo struct {
	Data        []byte
	ContentType string
}

// Model is the speech-to-text and language model backend.
type Model interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
	Complete(ctx context.Context, system, user string) (string, error)
	CompleteWithImages(ctx context.Context, prompt string, photos []Photo) (string, error)
}

type Service struct {
	model  Model
	logger logrus.FieldLogger
}

func New(model Model, logger logrus.FieldLogger) *Service {
	return &Service{model: model, logger: logger}
}

func (s *Service) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	if audio == nil {
		return "", fmt.Errorf("no audio provided: %w", types.ErrTranscription)
	}

	transcript, err := s.model.Transcribe(ctx, audio, filename)
	if err != nil {
		if errors.Is(err, types.ErrTranscription) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", types.ErrTranscription, err)
	}

	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return "", fmt.Errorf("empty transcript: %w", types.ErrTranscription)
	}

	s.logger.WithField("chars", len(transcript)).Debug("audio transcribed")

	return transcript, nil
}

// ExtractCandidates asks the model for the snags mentioned in transcript.
func (s *Service) ExtractCandidates(ctx context.Context, transcript string) ([]Candidate, error) {
	content, err := s.model.Complete(ctx, extractionPrompt, transcript)
	if err != nil {
		return nil, fmt.Errorf("failed to request snag extraction: %w: %w", types.ErrExternalService, err)
	}

	candidates, err := ParseCandidates(content)
	if err != nil {
		s.logger.WithError(err).WithField("response", truncate(content, 200)).Warn("unparseable extraction response")
		return nil, err
	}

	return candidates, nil
}

// Extract runs extraction and normalization in one step.
func (s *Service) Extract(ctx context.Context, transcript, defaultProject string) ([]types.Snag, error) {
	candidates, err := s.ExtractCandidates(ctx, transcript)
	if err != nil {
		return nil, err
	}
	return Normalize(candidates, defaultProject), nil
}

// MatchPhotos suggests which snag each photo shows, keyed by photo index.
// Suggestions are advisory; an unusable model answer yields no matches.
func (s *Service) MatchPhotos(ctx context.Context, photos []Photo, snags []types.Snag) (map[int]int, error) {
	if len(photos) == 0 || len(snags) == 0 {
		return map[int]int{}, nil
	}

	content, err := s.model.CompleteWithImages(ctx, matchPrompt(snags), photos)
	if err != nil {
		return nil, fmt.Errorf("failed to request photo matching: %w: %w", types.ErrExternalService, err)
	}

	return parseMatches(content, len(photos), len(snags)), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
