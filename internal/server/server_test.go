package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"snagaudit/internal/extract"
	"snagaudit/internal/mocks"
	"snagaudit/internal/pipeline"
	"snagaudit/internal/tasksync"
	"snagaudit/pkg/types"

	"github.com/sirupsen/logrus"
)

type harness struct {
	t       *testing.T
	model   *mocks.Model
	tracker *mocks.Tracker
	files   *mocks.Files
	handler http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	snags := mocks.NewSnagStore()
	media := mocks.NewMediaStore()
	files := mocks.NewFiles()
	model := &mocks.Model{}
	tracker := mocks.NewTracker()

	pipe := pipeline.New(pipeline.Options{
		Snags:     snags,
		Media:     media,
		Audits:    mocks.NewAuditStore(),
		Extractor: extract.New(model, logger),
		Files:     files,
		Logger:    logger,
	})
	syncer := tasksync.New(snags, media, files, tracker, logger)

	config := &types.Config{
		ServerPort:     0,
		MaxVoiceSize:   1 << 20,
		MaxMediaSize:   1 << 20,
		AllowedOrigins: []string{"https://snags.example.com"},
	}

	return &harness{
		t:       t,
		model:   model,
		tracker: tracker,
		files:   files,
		handler: New(config, logger, pipe, syncer).Handler(),
	}
}

func (h *harness) do(method, path, contentType string, body io.Reader) *httptest.ResponseRecorder {
	h.t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func (h *harness) doJSON(method, path string, body any, out any) int {
	h.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			h.t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}

	rec := h.do(method, path, "application/json", reader)
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			h.t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code
}

type filePart struct {
	field, name, contentType, content string
}

func multipartBody(t *testing.T, fields map[string]string, files ...filePart) (string, io.Reader) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.name))
		header.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(header)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = part.Write([]byte(f.content))
	}
	_ = w.Close()
	return w.FormDataContentType(), &buf
}

func (h *harness) submitText(reply string) types.Submission {
	h.t.Helper()

	h.model.Reply = reply
	var sub types.Submission
	code := h.doJSON(http.MethodPost, "/api/upload/text", map[string]string{"text": "site walk", "projectName": "Site A"}, &sub)
	if code != http.StatusOK {
		h.t.Fatalf("text upload status = %d", code)
	}
	return sub
}

func TestHealth(t *testing.T) {
	h := newHarness(t)

	var body map[string]string
	if code := h.doJSON(http.MethodGet, "/api/health", nil, &body); code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("health = %d %v", code, body)
	}
}

func TestUploadText(t *testing.T) {
	h := newHarness(t)
	sub := h.submitText(`Here you go: [{"snag_description":"Leaky tap"}]`)

	if sub.AuditID == "" || len(sub.Snags) != 1 || sub.Snags[0].ProjectName != "Site A" {
		t.Fatalf("submission = %+v", sub)
	}

	var errBody errorBody
	if code := h.doJSON(http.MethodPost, "/api/upload/text", map[string]string{"text": " "}, &errBody); code != http.StatusBadRequest {
		t.Errorf("blank text status = %d", code)
	}
	if !strings.Contains(errBody.Error, "no text provided") {
		t.Errorf("error = %q", errBody.Error)
	}

	h.model.Reply = "no JSON here"
	if code := h.doJSON(http.MethodPost, "/api/upload/text", map[string]string{"text": "x"}, nil); code != http.StatusBadGateway {
		t.Errorf("unparseable extraction status = %d, want 502", code)
	}
}

func TestUploadVoice(t *testing.T) {
	h := newHarness(t)
	h.model.Transcript = "the tap leaks"
	h.model.Reply = `[{"snag_description":"Leaky tap"}]`

	contentType, body := multipartBody(t, map[string]string{"auditId": "audit-7", "projectName": "Site B"},
		filePart{"audio", "memo.webm", "audio/webm", "webm bytes"})
	rec := h.do(http.MethodPost, "/api/upload/voice", contentType, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var sub types.Submission
	_ = json.Unmarshal(rec.Body.Bytes(), &sub)
	if sub.AuditID != "audit-7" || sub.Transcript != "the tap leaks" || sub.Snags[0].ProjectName != "Site B" {
		t.Errorf("submission = %+v", sub)
	}

	contentType, body = multipartBody(t, nil)
	if rec := h.do(http.MethodPost, "/api/upload/process", contentType, body); rec.Code != http.StatusBadRequest {
		t.Errorf("missing audio status = %d", rec.Code)
	}
}

func TestUploadMediaAndServe(t *testing.T) {
	h := newHarness(t)

	contentType, body := multipartBody(t, map[string]string{"auditId": "audit-1"},
		filePart{"media", "tap.jpg", "image/jpeg", "jpeg bytes"},
		filePart{"media", "plan.pdf", "application/pdf", "pdf bytes"})
	rec := h.do(http.MethodPost, "/api/upload/media", contentType, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var out struct {
		AuditID string        `json:"auditId"`
		Media   []types.Media `json:"media"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	if out.AuditID != "audit-1" || len(out.Media) != 2 {
		t.Fatalf("response = %+v", out)
	}
	if out.Media[0].MediaType != types.MediaKindPhoto || out.Media[1].MediaType != types.MediaKindDrawing {
		t.Errorf("kinds = %s, %s", out.Media[0].MediaType, out.Media[1].MediaType)
	}

	file := h.do(http.MethodGet, out.Media[0].URL, "", nil)
	if file.Code != http.StatusOK || file.Body.String() != "jpeg bytes" {
		t.Errorf("serve = %d %q", file.Code, file.Body.String())
	}
	if file.Header().Get("Content-Type") != "image/jpeg" {
		t.Errorf("content type = %q", file.Header().Get("Content-Type"))
	}

	if missing := h.do(http.MethodGet, "/uploads/media/nothing.jpg", "", nil); missing.Code != http.StatusNotFound {
		t.Errorf("missing file status = %d", missing.Code)
	}

	contentType, body = multipartBody(t, nil, filePart{"media", "run.exe", "application/x-msdownload", "MZ"})
	if rec := h.do(http.MethodPost, "/api/upload/media", contentType, body); rec.Code != http.StatusBadRequest {
		t.Errorf("bad media type status = %d", rec.Code)
	}
}

func TestUploadMediaRejectsTooManyFiles(t *testing.T) {
	h := newHarness(t)

	parts := make([]filePart, 0, pipeline.MaxMediaFiles+1)
	for i := 0; i <= pipeline.MaxMediaFiles; i++ {
		parts = append(parts, filePart{"media", fmt.Sprintf("photo-%d.jpg", i), "image/jpeg", "jpeg"})
	}
	contentType, body := multipartBody(t, map[string]string{"auditId": "audit-1"}, parts...)

	rec := h.do(http.MethodPost, "/api/upload/media", contentType, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "at most 20 media files") {
		t.Errorf("body = %s", rec.Body.String())
	}
	if keys := h.files.Keys(); len(keys) != 0 {
		t.Errorf("stored %d files, want none", len(keys))
	}
}

func TestSnagRoutes(t *testing.T) {
	h := newHarness(t)
	sub := h.submitText(`[{"snag_description":"Leaky tap","deadline":"Friday"},{"snag_description":"Cracked tile"}]`)
	id := sub.Snags[0].ID

	var detail types.SnagDetail
	if code := h.doJSON(http.MethodGet, "/api/snags/"+id, nil, &detail); code != http.StatusOK || detail.ID != id {
		t.Fatalf("detail = %d %+v", code, detail)
	}
	if detail.Media == nil {
		t.Errorf("media should encode as an empty list")
	}

	if code := h.doJSON(http.MethodGet, "/api/snags/missing", nil, nil); code != http.StatusNotFound {
		t.Errorf("missing snag status = %d", code)
	}

	var updated types.Snag
	code := h.doJSON(http.MethodPatch, "/api/snags/"+id, map[string]any{"status": "completed", "deadline": nil, "audit_id": "hijack"}, &updated)
	if code != http.StatusOK {
		t.Fatalf("patch status = %d", code)
	}
	if updated.Status != types.SnagStatusCompleted || updated.Deadline != nil || updated.AuditID != sub.AuditID {
		t.Errorf("updated = %+v", updated)
	}

	if code := h.doJSON(http.MethodPatch, "/api/snags/"+id, map[string]any{"id": "x"}, nil); code != http.StatusBadRequest {
		t.Errorf("no valid updates status = %d", code)
	}
	if code := h.doJSON(http.MethodPatch, "/api/snags/"+id, map[string]any{"status": "closed"}, nil); code != http.StatusBadRequest {
		t.Errorf("bad status = %d", code)
	}

	var list []types.Snag
	if code := h.doJSON(http.MethodGet, "/api/snags?status=completed", nil, &list); code != http.StatusOK || len(list) != 1 || list[0].ID != id {
		t.Errorf("filtered list = %d %+v", code, list)
	}

	var audit types.AuditDetail
	if code := h.doJSON(http.MethodGet, "/api/snags/audit/"+sub.AuditID, nil, &audit); code != http.StatusOK || len(audit.Snags) != 2 {
		t.Errorf("audit detail = %d %+v", code, audit)
	}

	var audits []types.Audit
	if code := h.doJSON(http.MethodGet, "/api/audits?limit=5", nil, &audits); code != http.StatusOK || len(audits) != 1 {
		t.Errorf("audits = %d %+v", code, audits)
	}
}

func TestAttachMediaRoute(t *testing.T) {
	h := newHarness(t)
	sub := h.submitText(`[{"snag_description":"Leaky tap"},{"snag_description":"Cracked tile"}]`)

	contentType, body := multipartBody(t, map[string]string{"auditId": sub.AuditID},
		filePart{"media", "tap.jpg", "image/jpeg", "jpeg"})
	rec := h.do(http.MethodPost, "/api/upload/media", contentType, body)
	var uploaded struct {
		Media []types.Media `json:"media"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &uploaded)
	mediaID := uploaded.Media[0].ID

	for _, snag := range sub.Snags {
		var detail types.SnagDetail
		code := h.doJSON(http.MethodPost, "/api/snags/"+snag.ID+"/attach-media", map[string]any{"mediaIds": []string{mediaID}}, &detail)
		if code != http.StatusOK || len(detail.Media) != 1 {
			t.Fatalf("attach to %s = %d %+v", snag.ID, code, detail)
		}
	}

	var first types.SnagDetail
	h.doJSON(http.MethodGet, "/api/snags/"+sub.Snags[0].ID, nil, &first)
	if len(first.Media) != 0 {
		t.Errorf("first snag still has media: %+v", first.Media)
	}

	if code := h.doJSON(http.MethodPost, "/api/snags/"+sub.Snags[0].ID+"/attach-media", map[string]any{}, nil); code != http.StatusBadRequest {
		t.Errorf("missing mediaIds status = %d", code)
	}
	if code := h.doJSON(http.MethodPost, "/api/snags/"+sub.Snags[0].ID+"/attach-media", map[string]any{"mediaIds": []string{"nope"}}, nil); code != http.StatusNotFound {
		t.Errorf("unknown media status = %d", code)
	}
}

func TestClickUpRoutes(t *testing.T) {
	h := newHarness(t)
	sub := h.submitText(`[{"snag_description":"Leaky tap","deadline":"ASAP"},{"snag_description":"Cracked tile"}]`)

	var outcome types.SyncOutcome
	if code := h.doJSON(http.MethodPost, "/api/clickup/sync/"+sub.Snags[0].ID, nil, &outcome); code != http.StatusOK {
		t.Fatalf("sync status = %d", code)
	}
	if outcome.Task.ID == "" || outcome.Snag == nil || !outcome.Snag.Synced() {
		t.Errorf("outcome = %+v", outcome)
	}
	if h.tracker.Tasks[0].Priority != types.TaskPriorityUrgent {
		t.Errorf("priority = %d, want urgent", h.tracker.Tasks[0].Priority)
	}

	var errBody errorBody
	if code := h.doJSON(http.MethodPost, "/api/clickup/sync/"+sub.Snags[0].ID, nil, &errBody); code != http.StatusBadRequest {
		t.Errorf("resync status = %d", code)
	}
	if !strings.Contains(errBody.Error, "already synced") {
		t.Errorf("error = %q", errBody.Error)
	}

	var bulk struct {
		Results []types.SyncResult `json:"results"`
	}
	if code := h.doJSON(http.MethodPost, "/api/clickup/sync-audit/"+sub.AuditID, nil, &bulk); code != http.StatusOK {
		t.Fatalf("bulk status = %d", code)
	}
	if len(bulk.Results) != 2 || bulk.Results[0].Status != types.SyncStatusSkipped || bulk.Results[1].Status != types.SyncStatusCreated {
		t.Errorf("results = %+v", bulk.Results)
	}
}

func TestNotFoundAndCORS(t *testing.T) {
	h := newHarness(t)

	var errBody errorBody
	if code := h.doJSON(http.MethodGet, "/api/nothing", nil, &errBody); code != http.StatusNotFound || errBody.Error == "" {
		t.Errorf("unknown route = %d %+v", code, errBody)
	}

	for origin, allowed := range map[string]bool{
		"http://localhost:5173":          true,
		"http://127.0.0.1:3000":          true,
		"https://snags.example.com":      true,
		"https://evil.example.com":       false,
		"http://evil-localhost.example":  false,
		"http://localhost.evil.example":  false,
		"https://127.0.0.1.evil.example": false,
	} {
		req := httptest.NewRequest(http.MethodOptions, "/api/snags", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
		rec := httptest.NewRecorder()
		h.handler.ServeHTTP(rec, req)

		got := rec.Header().Get("Access-Control-Allow-Origin") == origin
		if got != allowed {
			t.Errorf("origin %s allowed = %v, want %v", origin, got, allowed)
		}
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{types.ErrValidation, http.StatusBadRequest},
		{types.ErrAlreadySynced, http.StatusBadRequest},
		{types.ErrSnagNotFound, http.StatusNotFound},
		{fmt.Errorf("x: %w", types.ErrConstraint), http.StatusUnprocessableEntity},
		{types.ErrTranscription, http.StatusBadGateway},
		{types.ErrExtractionParse, http.StatusBadGateway},
		{types.ErrExternalService, http.StatusBadGateway},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestMetricsExposeRequests(t *testing.T) {
	h := newHarness(t)
	h.do(http.MethodGet, "/api/health", "", nil)

	rec := h.do(http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `snagaudit_http_requests_total{code="200",method="GET",route="/api/health"}`) {
		t.Errorf("metrics output missing health request counter")
	}
}
