package extract

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"snagaudit/pkg/types"

	"github.com/sirupsen/logrus"
)

type stubModel struct {
	transcript string
	reply      string
	err        error

	system, user string
	photos       int
}

func (m *stubModel) Transcribe(_ context.Context, audio io.Reader, _ string) (string, error) {
	if _, err := io.ReadAll(audio); err != nil {
		return "", err
	}
	return m.transcript, m.err
}

func (m *stubModel) Complete(_ context.Context, system, user string) (string, error) {
	m.system, m.user = system, user
	return m.reply, m.err
}

func (m *stubModel) CompleteWithImages(_ context.Context, prompt string, photos []Photo) (string, error) {
	m.user, m.photos = prompt, len(photos)
	return m.reply, m.err
}

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestTranscribe(t *testing.T) {
	ctx := context.Background()

	svc := New(&stubModel{transcript: "  kitchen tap leaks \n"}, quietLogger())
	got, err := svc.Transcribe(ctx, strings.NewReader("audio"), "a.webm")
	if err != nil || got != "kitchen tap leaks" {
		t.Fatalf("Transcribe() = %q, %v", got, err)
	}

	for name, model := range map[string]*stubModel{
		"backend error": {err: errors.New("boom")},
		"blank":         {transcript: "  "},
	} {
		_, err := New(model, quietLogger()).Transcribe(ctx, strings.NewReader("audio"), "a.webm")
		if !errors.Is(err, types.ErrTranscription) {
			t.Errorf("%s: err = %v, want ErrTranscription", name, err)
		}
	}

	if _, err := svc.Transcribe(ctx, nil, ""); !errors.Is(err, types.ErrTranscription) {
		t.Errorf("nil audio: err = %v, want ErrTranscription", err)
	}
}

func TestExtract(t *testing.T) {
	model := &stubModel{reply: `Here you go: [{"snag_description":"Leaky tap","project_name":""}]`}
	svc := New(model, quietLogger())

	snags, err := svc.Extract(context.Background(), "the tap leaks", "Site A")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(snags) != 1 || snags[0].Description != "Leaky tap" || snags[0].ProjectName != "Site A" {
		t.Fatalf("Extract() = %+v", snags)
	}
	if model.system != extractionPrompt || model.user != "the tap leaks" {
		t.Errorf("prompt not forwarded: system=%q user=%q", model.system, model.user)
	}
}

func TestExtractFailures(t *testing.T) {
	ctx := context.Background()

	_, err := New(&stubModel{reply: "nothing useful"}, quietLogger()).ExtractCandidates(ctx, "x")
	if !errors.Is(err, types.ErrExtractionParse) {
		t.Errorf("unparseable: err = %v, want ErrExtractionParse", err)
	}

	_, err = New(&stubModel{err: errors.New("timeout")}, quietLogger()).ExtractCandidates(ctx, "x")
	if !errors.Is(err, types.ErrExternalService) {
		t.Errorf("backend: err = %v, want ErrExternalService", err)
	}
}

func TestMatchPhotos(t *testing.T) {
	ctx := context.Background()
	snags := []types.Snag{{Description: "Leaky tap"}, {Description: "Cracked tile"}}
	photos := []Photo{{Data: []byte{1}}, {Data: []byte{2}}}

	model := &stubModel{reply: `{"0": 1, "1": -1}`}
	got, err := New(model, quietLogger()).MatchPhotos(ctx, photos, snags)
	if err != nil {
		t.Fatalf("MatchPhotos() error = %v", err)
	}
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("MatchPhotos() = %v, want map[0:1]", got)
	}
	if model.photos != 2 || !strings.Contains(model.user, "1: Cracked tile") {
		t.Errorf("prompt = %q, photos = %d", model.user, model.photos)
	}

	empty, err := New(&stubModel{}, quietLogger()).MatchPhotos(ctx, nil, snags)
	if err != nil || len(empty) != 0 {
		t.Errorf("no photos: got %v, %v", empty, err)
	}
}
