package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/minutes/internal/extractor"
	"github.com/MikeSquared-Agency/minutes/internal/processor"
	"github.com/MikeSquared-Agency/minutes/internal/store"
	"github.com/MikeSquared-Agency/minutes/internal/transcript"
)

type fakeRunner struct {
	results []processor.FileResult
	err     error
	got     []processor.RunRequest
}

func (f *fakeRunner) Run(_ context.Context, req processor.RunRequest) ([]processor.FileResult, error) {
	f.got = append(f.got, req)
	return f.results, f.err
}

func (f *fakeRunner) Stats() processor.RunStats {
	return processor.RunStats{Runs: 3, Stored: 2}
}

type fakeTranscripts map[string]*transcript.Record

func (f fakeTranscripts) GetTranscriptBySource(_ context.Context, sourceID string) (*transcript.Record, error) {
	if sourceID == "broken" {
		return nil, errors.New("connection reset")
	}
	rec, ok := f[sourceID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return rec, nil
}

func newTestServer(token string, runner *fakeRunner) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	records := fakeTranscripts{"doc-1": {SourceID: "doc-1", Title: "Renewal call", EntityType: "client", EntityID: "alice-co"}}
	return NewServer(8760, token, runner, records, logger)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer("", &fakeRunner{})

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv := newTestServer("secret", &fakeRunner{})

	// Status stays public even when a token is configured.
	req := httptest.NewRequest("GET", "/api/v1/minutes/status", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body struct {
		Agent   string             `json:"agent"`
		LastRun processor.RunStats `json:"last_run"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Agent != "minutes" {
		t.Errorf("expected agent minutes, got %q", body.Agent)
	}
	if body.LastRun.Runs != 3 || body.LastRun.Stored != 2 {
		t.Errorf("unexpected stats %+v", body.LastRun)
	}
}

func TestProcessEndpoint(t *testing.T) {
	runner := &fakeRunner{results: []processor.FileResult{
		{Document: extractor.DocumentHandle{ID: "doc-1"}, Status: processor.StatusStored, EntityType: "client", EntityID: "alice-co"},
		{Document: extractor.DocumentHandle{ID: "doc-2"}, Status: processor.StatusSkipped},
	}}
	srv := newTestServer("", runner)

	req := httptest.NewRequest("POST", "/api/v1/minutes/process", strings.NewReader(`{"meeting_url":"https://meet.google.com/abc-defg-hij"}`))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(runner.got) != 1 || runner.got[0].MeetingURL != "https://meet.google.com/abc-defg-hij" {
		t.Errorf("unexpected run requests %+v", runner.got)
	}

	var body ProcessResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Count != 2 || body.Results[0].EntityID != "alice-co" || body.Results[1].Status != processor.StatusSkipped {
		t.Errorf("unexpected response %+v", body)
	}
}

func TestProcessEndpoint_EmptyBodyScansAll(t *testing.T) {
	runner := &fakeRunner{}
	srv := newTestServer("", runner)

	req := httptest.NewRequest("POST", "/api/v1/minutes/process", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(runner.got) != 1 || runner.got[0].MeetingURL != "" {
		t.Errorf("expected one unfiltered run, got %+v", runner.got)
	}
	if !strings.Contains(w.Body.String(), `"results":[]`) {
		t.Errorf("expected empty results array, got %s", w.Body.String())
	}
}

func TestProcessEndpoint_InvalidJSON(t *testing.T) {
	runner := &fakeRunner{}
	srv := newTestServer("", runner)

	req := httptest.NewRequest("POST", "/api/v1/minutes/process", strings.NewReader(`{"meeting_url":`))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if len(runner.got) != 0 {
		t.Error("expected no run for invalid input")
	}
}

func TestProcessEndpoint_ListingFailure(t *testing.T) {
	srv := newTestServer("", &fakeRunner{err: errors.New("list documents: api error 403")})

	req := httptest.NewRequest("POST", "/api/v1/minutes/process", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", w.Code)
	}
}

func TestProcessEndpoint_RequiresToken(t *testing.T) {
	runner := &fakeRunner{}
	srv := newTestServer("secret", runner)

	for _, header := range []string{"", "Bearer wrong", "secret"} {
		req := httptest.NewRequest("POST", "/api/v1/minutes/process", strings.NewReader(`{}`))
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Authorization %q: expected 401, got %d", header, w.Code)
		}
	}

	req := httptest.NewRequest("POST", "/api/v1/minutes/process", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with valid token, got %d", w.Code)
	}
	if len(runner.got) != 1 {
		t.Errorf("expected exactly one authorised run, got %d", len(runner.got))
	}
}

func TestGetTranscript(t *testing.T) {
	srv := newTestServer("", &fakeRunner{})

	tests := []struct {
		path string
		want int
	}{
		{"/api/v1/minutes/transcripts/doc-1", http.StatusOK},
		{"/api/v1/minutes/transcripts/missing", http.StatusNotFound},
		{"/api/v1/minutes/transcripts/broken", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", tt.path, nil)
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, req)
		if w.Code != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.path, tt.want, w.Code)
		}
	}

	req := httptest.NewRequest("GET", "/api/v1/minutes/transcripts/doc-1", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	var rec transcript.Record
	if err := json.NewDecoder(w.Body).Decode(&rec); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if rec.EntityID != "alice-co" {
		t.Errorf("expected alice-co, got %q", rec.EntityID)
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	srv := newTestServer("", &fakeRunner{})

	req := httptest.NewRequest("GET", "/nonexistent", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
