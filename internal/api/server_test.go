package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/batchsort/pkg/observability"
	"github.com/matzehuels/batchsort/pkg/pipeline"
)

const menuJSON = `{
  "name": "main-menu",
  "panels": [
    {"name": "HUD", "widgets": [
      {"id": "bg",    "depth": 0, "material": "ui", "texture": "atlas", "rect": {"x": 0,  "y": 0,  "w": 100, "h": 100}},
      {"id": "icon",  "depth": 1, "material": "icons", "rect": {"x": 10, "y": 10, "w": 10, "h": 10}},
      {"id": "frame", "depth": 2, "material": "ui", "texture": "atlas", "rect": {"x": 50, "y": 50, "w": 10, "h": 10}},
      {"id": "badge", "depth": 3, "material": "icons", "rect": {"x": 70, "y": 70, "w": 10, "h": 10}}
    ]}
  ]
}`

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	srv := New(pipeline.NewRunner(nil, nil, logger), logger, opts...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func decodeError(t *testing.T, data []byte) errorResponse {
	t.Helper()
	var e errorResponse
	if err := json.Unmarshal(data, &e); err != nil {
		t.Fatalf("decode error body %q: %v", data, err)
	}
	return e
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, data := do(t, http.MethodGet, ts.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var h healthResponse
	if err := json.Unmarshal(data, &h); err != nil {
		t.Fatal(err)
	}
	if h.Status != "ok" {
		t.Errorf("status = %q", h.Status)
	}
	if resp.Header.Get("Content-Type") != "application/json" {
		t.Errorf("content type = %q", resp.Header.Get("Content-Type"))
	}
}

func TestOptimizeAndFetchReport(t *testing.T) {
	ts := newTestServer(t)

	resp, data := do(t, http.MethodPost, ts.URL+"/v1/optimize", menuJSON)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("optimize status = %d: %s", resp.StatusCode, data)
	}
	var rep pipeline.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		t.Fatal(err)
	}
	if rep.Before != 4 || rep.After != 2 {
		t.Errorf("draw calls = %d -> %d, want 4 -> 2", rep.Before, rep.After)
	}
	if got := rep.Result.Panel("HUD").Widget("frame").Depth; got != 1 {
		t.Errorf("frame depth = %d, want 1", got)
	}

	resp, data = do(t, http.MethodGet, ts.URL+"/v1/reports/"+rep.ID, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get report status = %d: %s", resp.StatusCode, data)
	}
	var stored pipeline.Report
	if err := json.Unmarshal(data, &stored); err != nil {
		t.Fatal(err)
	}
	if stored.ID != rep.ID || stored.After != 2 {
		t.Errorf("stored report = %s/%d", stored.ID, stored.After)
	}

	resp, data = do(t, http.MethodGet, ts.URL+"/v1/reports?limit=5", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(data), rep.ID) {
		t.Errorf("list %s does not contain %s", data, rep.ID)
	}
}

func TestOptimizeQueryOptions(t *testing.T) {
	ts := newTestServer(t)

	resp, data := do(t, http.MethodPost, ts.URL+"/v1/optimize?panel=Nope", menuJSON)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown panel status = %d, want 404", resp.StatusCode)
	}
	if e := decodeError(t, data); e.Code != "PANEL_NOT_FOUND" {
		t.Errorf("code = %q", e.Code)
	}

	resp, data = do(t, http.MethodPost, ts.URL+"/v1/optimize?apply_unchanged=maybe", menuJSON)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad bool status = %d, want 400", resp.StatusCode)
	}
	if e := decodeError(t, data); e.Code != "INVALID_INPUT" {
		t.Errorf("code = %q", e.Code)
	}
}

func TestOptimizeRejectsBadScenes(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name string
		body string
	}{
		{"not json", "{"},
		{"unknown field", `{"panels": [{"name": "p", "widgets": [{"id": "a", "colour": "red"}]}]}`},
		{"duplicate widget", `{"panels": [{"name": "p", "widgets": [{"id": "a"}, {"id": "a"}]}]}`},
		{"empty panel name", `{"panels": [{"name": "", "widgets": []}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := do(t, http.MethodPost, ts.URL+"/v1/optimize", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", resp.StatusCode, data)
			}
			if e := decodeError(t, data); e.Code == "" || e.Message == "" {
				t.Errorf("error body = %+v", e)
			}
		})
	}
}

func TestBodyTooLarge(t *testing.T) {
	ts := newTestServer(t, WithMaxBodyBytes(16))
	resp, _ := do(t, http.MethodPost, ts.URL+"/v1/optimize", menuJSON)
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", resp.StatusCode)
	}
}

func TestReportNotFound(t *testing.T) {
	ts := newTestServer(t)
	resp, data := do(t, http.MethodGet, ts.URL+"/v1/reports/missing", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if e := decodeError(t, data); e.Code != "REPORT_NOT_FOUND" {
		t.Errorf("code = %q", e.Code)
	}
}

func TestCount(t *testing.T) {
	ts := newTestServer(t)
	resp, data := do(t, http.MethodPost, ts.URL+"/v1/count", menuJSON)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	var rep pipeline.CountReport
	if err := json.Unmarshal(data, &rep); err != nil {
		t.Fatal(err)
	}
	if rep.Total != 4 || len(rep.Panels) != 1 || rep.Panels[0].DrawCalls != 4 {
		t.Errorf("count = %+v", rep)
	}
}

func TestRoutingErrors(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := do(t, http.MethodGet, ts.URL+"/v1/nothing", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown route status = %d, want 404", resp.StatusCode)
	}
	resp, _ = do(t, http.MethodGet, ts.URL+"/v1/optimize", "")
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("wrong method status = %d, want 405", resp.StatusCode)
	}
}

type recordingServerHooks struct {
	observability.NoopServerHooks
	mu       sync.Mutex
	statuses []int
}

func (h *recordingServerHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}

func TestServerHooks(t *testing.T) {
	hooks := &recordingServerHooks{}
	observability.SetServerHooks(hooks)
	t.Cleanup(observability.Reset)

	ts := newTestServer(t)
	do(t, http.MethodGet, ts.URL+"/healthz", "")
	do(t, http.MethodGet, ts.URL+"/v1/reports/missing", "")

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.statuses) != 2 || hooks.statuses[0] != 200 || hooks.statuses[1] != 404 {
		t.Errorf("statuses = %v, want [200 404]", hooks.statuses)
	}
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	logger := log.New(io.Discard)
	srv := New(pipeline.NewRunner(nil, nil, logger), logger)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
