package pipeline

import (
	"context"
	"io"

	"snagaudit/internal/extract"
	"snagaudit/internal/storage"
	"snagaudit/pkg/types"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type SnagStore interface {
	CreateSnag(ctx context.Context, snag *types.Snag) error
	Snag(ctx context.Context, id string) (*types.Snag, error)
	UpdateSnag(ctx context.Context, id string, update types.SnagUpdate) (*types.Snag, error)
	Snags(ctx context.Context, filters types.SnagFilters) ([]types.Snag, error)
	SnagsByAudit(ctx context.Context, auditID string) ([]types.Snag, error)
}

type MediaStore interface {
	CreateMedia(ctx context.Context, media *types.Media) error
	Media(ctx context.Context, id string) (*types.Media, error)
	MediaByAudit(ctx context.Context, auditID string) ([]types.Media, error)
	MediaBySnag(ctx context.Context, snagID string) ([]types.Media, error)
	ReassignMedia(ctx context.Context, mediaID, snagID string) error
}

type AuditStore interface {
	EnsureAudit(ctx context.Context, audit *types.Audit) error
	RecentAudits(ctx context.Context, limit uint64) ([]types.Audit, error)
}

type Extractor interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
	Extract(ctx context.Context, transcript, defaultProject string) ([]types.Snag, error)
	MatchPhotos(ctx context.Context, photos []extract.Photo, snags []types.Snag) (map[int]int, error)
}

type Options struct {
	Snags          SnagStore
	Media          MediaStore
	Audits         AuditStore
	Extractor      Extractor
	Files          storage.Backend
	DefaultProject string
	Logger         logrus.FieldLogger
}

// Service runs submissions end to end and owns media association.
type Service struct {
	snags          SnagStore
	media          MediaStore
	audits         AuditStore
	extractor      Extractor
	files          storage.Backend
	defaultProject string
	logger         logrus.FieldLogger
}

func New(opts Options) *Service {
	defaultProject := opts.DefaultProject
	if defaultProject == "" {
		defaultProject = "Unknown Project"
	}

	return &Service{
		snags:          opts.Snags,
		media:          opts.Media,
		audits:         opts.Audits,
		extractor:      opts.Extractor,
		files:          opts.Files,
		defaultProject: defaultProject,
		logger:         opts.Logger,
	}
}

func (s *Service) DefaultProject() string {
	return s.defaultProject
}

func newAuditID(auditID string) string {
	if auditID != "" {
		return auditID
	}
	return uuid.NewString()
}

func (s *Service) project(projectName string) string {
	if projectName != "" {
		return projectName
	}
	return s.defaultProject
}

func (s *Service) ensureAudit(ctx context.Context, auditID, projectName string) error {
	audit := &types.Audit{ID: auditID}
	if projectName != "" {
		audit.ProjectName = &projectName
	}
	return s.audits.EnsureAudit(ctx, audit)
}

const (
	defaultAuditLimit = 20
	maxAuditLimit     = 100
)

// RecentAudits lists the newest audits first.
func (s *Service) RecentAudits(ctx context.Context, limit uint64) ([]types.Audit, error) {
	switch {
	case limit == 0:
		limit = defaultAuditLimit
	case limit > maxAuditLimit:
		limit = maxAuditLimit
	}
	return s.audits.RecentAudits(ctx, limit)
}
