package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"snagaudit/internal/extract"
	"snagaudit/internal/metrics"
	"snagaudit/internal/utils"
	"snagaudit/pkg/types"

	"github.com/sirupsen/logrus"
)

const (
	MaxMediaFiles  = 20
	maxMatchPhotos = 10
	mediaKeyPrefix = "media/"
)

var mediaTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/heic":      true,
	"image/webp":      true,
	"video/mp4":       true,
	"video/quicktime": true,
	"video/webm":      true,
	"application/pdf": true,
}

var mediaExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".heic": true,
	".webp": true,
	".mp4":  true,
	".mov":  true,
	".webm": true,
	".pdf":  true,
}

func ValidMedia(filename, contentType string) bool {
	return mediaTypes[mediaType(contentType)] || mediaExtensions[strings.ToLower(path.Ext(filename))]
}

// UploadMedia stores files unassigned under the audit. Every file is
// checked before anything is written.
func (s *Service) UploadMedia(ctx context.Context, auditID string, uploads []Upload) (string, []types.Media, error) {
	if len(uploads) == 0 {
		return "", nil, fmt.Errorf("no media files provided: %w", types.ErrValidation)
	}
	if len(uploads) > MaxMediaFiles {
		return "", nil, fmt.Errorf("at most %d media files per upload: %w", MaxMediaFiles, types.ErrValidation)
	}
	for _, u := range uploads {
		if !ValidMedia(u.Filename, u.ContentType) {
			return "", nil, fmt.Errorf("invalid media format for %s: %w", u.Filename, types.ErrValidation)
		}
	}

	auditID = newAuditID(auditID)
	if err := s.ensureAudit(ctx, auditID, ""); err != nil {
		return "", nil, err
	}

	records := make([]types.Media, 0, len(uploads))
	for _, u := range uploads {
		name := safeFileName(u.Filename)
		key := mediaKeyPrefix + utils.NanoID() + "-" + name

		if err := s.files.Save(ctx, key, u.Reader, u.Size, u.ContentType); err != nil {
			return "", nil, fmt.Errorf("failed to store %s: %w", u.Filename, err)
		}

		media := &types.Media{
			AuditID:   auditID,
			FilePath:  key,
			FileName:  u.Filename,
			FileType:  u.ContentType,
			MediaType: types.MediaKindFromMIME(mediaType(u.ContentType)),
		}
		if err := s.media.CreateMedia(ctx, media); err != nil {
			return "", nil, err
		}

		metrics.MediaUploaded.WithLabelValues(string(media.MediaType)).Inc()
		records = append(records, media.WithURL())
	}

	s.logger.WithFields(logrus.Fields{"audit_id": auditID, "count": len(records)}).Info("media uploaded")

	return auditID, records, nil
}

// AttachMedia links each media to the snag, moving it off any previous
// snag. Unknown ids fail the call before anything is changed.
func (s *Service) AttachMedia(ctx context.Context, snagID string, mediaIDs []string) (*types.SnagDetail, error) {
	if _, err := s.snags.Snag(ctx, snagID); err != nil {
		return nil, err
	}

	for _, id := range mediaIDs {
		if _, err := s.media.Media(ctx, id); err != nil {
			return nil, fmt.Errorf("media %s: %w", id, err)
		}
	}

	for _, id := range mediaIDs {
		if err := s.media.ReassignMedia(ctx, id, snagID); err != nil {
			return nil, err
		}
	}

	s.logger.WithFields(logrus.Fields{"snag_id": snagID, "count": len(mediaIDs)}).Info("media attached")

	return s.SnagDetail(ctx, snagID)
}

// OpenMedia streams a stored media file by the name used in its URL.
func (s *Service) OpenMedia(ctx context.Context, name string) (io.ReadCloser, error) {
	if name == "" || name != path.Base(name) || strings.Contains(name, "..") {
		return nil, fmt.Errorf("invalid media name %q: %w", name, types.ErrValidation)
	}
	return s.files.Open(ctx, mediaKeyPrefix+name)
}

// SuggestMediaMatches asks the vision model which snag each of the audit's
// unassigned photos shows.
func (s *Service) SuggestMediaMatches(ctx context.Context, auditID string) ([]types.MediaMatch, error) {
	snags, err := s.snags.SnagsByAudit(ctx, auditID)
	if err != nil {
		return nil, err
	}
	media, err := s.media.MediaByAudit(ctx, auditID)
	if err != nil {
		return nil, err
	}

	var candidates []types.Media
	var photos []extract.Photo
	for _, m := range media {
		if m.MediaType != types.MediaKindPhoto || m.SnagID != nil || len(photos) == maxMatchPhotos {
			continue
		}

		data, err := s.readFile(ctx, m.FilePath)
		if err != nil {
			s.logger.WithError(err).WithField("media_id", m.ID).Warn("skipping unreadable photo")
			continue
		}

		candidates = append(candidates, m)
		photos = append(photos, extract.Photo{Data: data, ContentType: mediaType(m.FileType)})
	}

	matches := make([]types.MediaMatch, 0)
	if len(photos) == 0 || len(snags) == 0 {
		return matches, nil
	}

	indexes, err := s.extractor.MatchPhotos(ctx, photos, snags)
	if err != nil {
		return nil, err
	}

	for i, m := range candidates {
		if j, ok := indexes[i]; ok {
			matches = append(matches, types.MediaMatch{MediaID: m.ID, SnagID: snags[j].ID})
		}
	}

	return matches, nil
}

func (s *Service) readFile(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.files.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rc); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return buf.Bytes(), nil
}

// safeFileName keeps the base name and replaces anything outside a
// conservative character set.
func safeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	out := b.String()
	for strings.Contains(out, "..") {
		out = strings.ReplaceAll(out, "..", ".")
	}
	out = strings.Trim(out, ".")
	if out == "" {
		return "file"
	}
	return out
}
