package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"snagaudit/internal/pipeline"
	"snagaudit/internal/tasksync"
	"snagaudit/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

type Service struct {
	logger   logrus.FieldLogger
	config   *types.Config
	pipeline *pipeline.Service
	syncer   *tasksync.Syncer

	handler http.Handler
	server  *http.Server
}

func New(
	config *types.Config,
	logger logrus.FieldLogger,
	pipeline *pipeline.Service,
	syncer *tasksync.Syncer,
) *Service {
	mux := flow.New()

	s := &Service{
		logger:   logger,
		config:   config,
		pipeline: pipeline,
		syncer:   syncer,
	}

	s.buildRouter(mux)
	s.handler = s.corsHandler().Handler(mux)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", config.ServerPort),
		Handler:           s.handler,
		ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler is the fully wrapped router.
func (s *Service) Handler() http.Handler {
	return s.handler
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, fmt.Errorf("route %w", types.ErrNotFound))
	})
	r.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})

	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/api/health", s.instrument("/api/health", s.handleHealth), http.MethodGet)
	r.Handle("/metrics", promhttp.Handler(), http.MethodGet)

	r.HandleFunc("/api/upload/voice", s.instrument("/api/upload/voice", s.handleUploadAudio), http.MethodPost)
	r.HandleFunc("/api/upload/process", s.instrument("/api/upload/process", s.handleUploadAudio), http.MethodPost)
	r.HandleFunc("/api/upload/text", s.instrument("/api/upload/text", s.handleUploadText), http.MethodPost)
	r.HandleFunc("/api/upload/media", s.instrument("/api/upload/media", s.handleUploadMedia), http.MethodPost)

	r.HandleFunc("/api/audits", s.instrument("/api/audits", s.handleListAudits), http.MethodGet)

	// audit routes go first so "audit" is never read as a snag id
	r.HandleFunc("/api/snags", s.instrument("/api/snags", s.handleListSnags), http.MethodGet)
	r.HandleFunc("/api/snags/audit/:auditId", s.instrument("/api/snags/audit/:auditId", s.handleAuditDetail), http.MethodGet)
	r.HandleFunc("/api/snags/audit/:auditId/match-media", s.instrument("/api/snags/audit/:auditId/match-media", s.handleMatchMedia), http.MethodPost)
	r.HandleFunc("/api/snags/:id", s.instrument("/api/snags/:id", s.handleSnagDetail), http.MethodGet)
	r.HandleFunc("/api/snags/:id", s.instrument("/api/snags/:id", s.handleUpdateSnag), http.MethodPatch)
	r.HandleFunc("/api/snags/:id/attach-media", s.instrument("/api/snags/:id/attach-media", s.handleAttachMedia), http.MethodPost)

	r.HandleFunc("/api/clickup/sync/:snagId", s.instrument("/api/clickup/sync/:snagId", s.handleSyncSnag), http.MethodPost)
	r.HandleFunc("/api/clickup/sync-audit/:auditId", s.instrument("/api/clickup/sync-audit/:auditId", s.handleSyncAudit), http.MethodPost)

	r.HandleFunc("/uploads/media/:name", s.instrument("/uploads/media/:name", s.handleMediaFile), http.MethodGet)
}

// corsHandler allows local development origins and the configured list.
func (s *Service) corsHandler() *cors.Cors {
	allowed := make(map[string]bool, len(s.config.AllowedOrigins))
	for _, o := range s.config.AllowedOrigins {
		allowed[strings.TrimRight(strings.TrimSpace(o), "/")] = true
	}

	return cors.New(cors.Options{
		AllowOriginFunc: func(origin string) bool {
			return localOrigin(origin) || allowed[origin]
		},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
}

// localOrigin matches origins whose host is exactly localhost or 127.0.0.1.
func localOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}

	switch u.Hostname() {
	case "localhost", "127.0.0.1":
		return true
	}
	return false
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
